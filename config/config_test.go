package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(APIURLEnv, "")

	conf, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", conf.APIURL)
	assert.Equal(t, ":8080", conf.Listen)
	assert.Equal(t, ModeWeb, conf.Mode)
	assert.Zero(t, conf.PollInterval)
	assert.Equal(t, 10*time.Second, conf.RequestTimeout)
	assert.Zero(t, conf.MaxRetries)
	assert.Equal(t, "USD", conf.Currency)
	assert.Equal(t, time.Local, conf.Location())
}

func TestLoad_EnvOverridesDefaultURL(t *testing.T) {
	t.Setenv(APIURLEnv, "https://bot.example.com")

	conf, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "https://bot.example.com", conf.APIURL)

	conf, err = Load([]string{"--api-url", "http://10.0.0.1:8000"})
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.1:8000", conf.APIURL)
}

func TestLoad_Flags(t *testing.T) {
	t.Setenv(APIURLEnv, "")

	conf, err := Load([]string{
		"--api-url", "http://backend:9000",
		"--mode", "terminal",
		"--poll-interval", "30s",
		"--max-retries", "2",
		"--currency", "EUR",
		"--timezone", "UTC",
		"--tls-domains", "a.example.com, b.example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, "http://backend:9000", conf.APIURL)
	assert.Equal(t, ModeTerminal, conf.Mode)
	assert.Equal(t, 30*time.Second, conf.PollInterval)
	assert.Equal(t, 2, conf.MaxRetries)
	assert.Equal(t, "EUR", conf.Currency)
	assert.Equal(t, time.UTC, conf.Location())
	assert.Equal(t, []string{"a.example.com", "b.example.com"}, conf.TLSDomains)
}

func TestLoad_Yaml(t *testing.T) {
	t.Setenv(APIURLEnv, "")
	path := writeConfig(t, `
api_url: http://trading-backend:8000
listen: 127.0.0.1:9090
poll_interval: 1m
request_timeout: 3s
timezone: UTC
`)

	conf, err := Load([]string{"--config", path})
	require.NoError(t, err)

	assert.Equal(t, path, conf.Path)
	assert.Equal(t, "http://trading-backend:8000", conf.APIURL)
	assert.Equal(t, "127.0.0.1:9090", conf.Listen)
	assert.Equal(t, time.Minute, conf.PollInterval)
	assert.Equal(t, 3*time.Second, conf.RequestTimeout)
	// unspecified fields keep defaults
	assert.Equal(t, ModeWeb, conf.Mode)
	assert.Equal(t, "USD", conf.Currency)
}

func TestLoad_FlagsOverrideYaml(t *testing.T) {
	path := writeConfig(t, "api_url: http://from-file:8000\npoll_interval: 1m\n")

	conf, err := Load([]string{"--config", path, "--poll-interval", "0s"})
	require.NoError(t, err)

	assert.Equal(t, "http://from-file:8000", conf.APIURL)
	assert.Zero(t, conf.PollInterval)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv(APIURLEnv, "")

	tests := []struct {
		name string
		args []string
	}{
		{name: "relative url", args: []string{"--api-url", "localhost:8000"}},
		{name: "bad scheme", args: []string{"--api-url", "ftp://host"}},
		{name: "bad mode", args: []string{"--mode", "gui"}},
		{name: "negative poll", args: []string{"--poll-interval", "-1s"}},
		{name: "zero timeout", args: []string{"--request-timeout", "0s"}},
		{name: "negative retries", args: []string{"--max-retries", "-1"}},
		{name: "unknown currency", args: []string{"--currency", "ZZZ"}},
		{name: "unknown timezone", args: []string{"--timezone", "Mars/Olympus"}},
		{name: "bad log level", args: []string{"--log-level", "loud"}},
		{name: "unknown flag", args: []string{"--pair", "BTC_USDT"}},
		{name: "missing file", args: []string{"--config", "/does/not/exist.yaml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.args)
			assert.Error(t, err)
		})
	}
}

func TestLoad_SetupSkipsValidation(t *testing.T) {
	conf, err := Load([]string{"--setup", "--api-url", "not a url"})
	require.NoError(t, err)
	assert.True(t, conf.Setup)
}

func TestSave_RoundTrip(t *testing.T) {
	t.Setenv(APIURLEnv, "")
	path := filepath.Join(t.TempDir(), "out.yaml")

	conf := Default()
	conf.APIURL = "http://saved:8000"
	conf.PollInterval = 45 * time.Second
	conf.Mode = ModeTerminal
	require.NoError(t, Save(path, conf))

	loaded, err := Load([]string{"--config", path})
	require.NoError(t, err)
	assert.Equal(t, "http://saved:8000", loaded.APIURL)
	assert.Equal(t, 45*time.Second, loaded.PollInterval)
	assert.Equal(t, ModeTerminal, loaded.Mode)
}
