package config

import (
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vadiminshakov/marti-dashboard/internal/format"
)

// APIURLEnv overrides the default backend address.
const APIURLEnv = "DASHBOARD_API_URL"

const (
	ModeWeb      = "web"
	ModeTerminal = "terminal"
)

const (
	defaultAPIURL         = "http://localhost:8000"
	defaultListen         = ":8080"
	defaultRequestTimeout = 10 * time.Second
	defaultCurrency       = "USD"
	defaultTimezone       = "Local"
	defaultCertCacheDir   = "cert-cache"
	defaultLogLevel       = "info"
)

// Config is set once at startup and passed explicitly to every component.
type Config struct {
	APIURL         string
	Listen         string
	Mode           string
	PollInterval   time.Duration
	RequestTimeout time.Duration
	MaxRetries     int
	Currency       string
	Timezone       string
	TLSDomains     []string
	CertCacheDir   string
	LogLevel       string

	// Setup requests the interactive config wizard instead of running the dashboard.
	Setup bool
	// Path of the yaml file the config was read from, if any.
	Path string

	location *time.Location
}

// ConfigTmp is the yaml representation of Config.
type ConfigTmp struct {
	APIURL         string        `yaml:"api_url"`
	Listen         string        `yaml:"listen,omitempty"`
	Mode           string        `yaml:"mode,omitempty"`
	PollInterval   time.Duration `yaml:"poll_interval,omitempty"`
	RequestTimeout time.Duration `yaml:"request_timeout,omitempty"`
	MaxRetries     int           `yaml:"max_retries,omitempty"`
	Currency       string        `yaml:"currency,omitempty"`
	Timezone       string        `yaml:"timezone,omitempty"`
	TLSDomains     []string      `yaml:"tls_domains,omitempty"`
	CertCacheDir   string        `yaml:"cert_cache_dir,omitempty"`
	LogLevel       string        `yaml:"log_level,omitempty"`
}

// Default returns the configuration used when nothing is specified.
func Default() Config {
	apiURL := defaultAPIURL
	if env := strings.TrimSpace(os.Getenv(APIURLEnv)); env != "" {
		apiURL = env
	}
	return Config{
		APIURL:         apiURL,
		Listen:         defaultListen,
		Mode:           ModeWeb,
		RequestTimeout: defaultRequestTimeout,
		Currency:       defaultCurrency,
		Timezone:       defaultTimezone,
		CertCacheDir:   defaultCertCacheDir,
		LogLevel:       defaultLogLevel,
	}
}

// Load builds the configuration from command line arguments (without the program
// name). Values from --config are applied first, explicit flags override them.
func Load(args []string) (Config, error) {
	fs := flag.NewFlagSet("marti-dashboard", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	defaults := Default()
	path := fs.String("config", "", "path to yaml config")
	apiURL := fs.String("api-url", defaults.APIURL, "backend base url, env "+APIURLEnv)
	listen := fs.String("listen", defaults.Listen, "dashboard listen address")
	mode := fs.String("mode", defaults.Mode, "render mode: web or terminal")
	poll := fs.Duration("poll-interval", 0, "refresh interval, 0 disables polling")
	timeout := fs.Duration("request-timeout", defaults.RequestTimeout, "backend request timeout")
	retries := fs.Int("max-retries", 0, "retries of a failed backend request")
	currency := fs.String("currency", defaults.Currency, "display currency code")
	tz := fs.String("timezone", defaults.Timezone, "timezone of displayed timestamps")
	domains := fs.String("tls-domains", "", "comma separated domains for automatic TLS")
	certCache := fs.String("cert-cache", defaults.CertCacheDir, "directory of cached TLS certificates")
	logLevel := fs.String("log-level", defaults.LogLevel, "debug, info, warn or error")
	setup := fs.Bool("setup", false, "run the interactive config wizard")

	if err := fs.Parse(args); err != nil {
		return Config{}, errors.Wrap(err, "parse flags")
	}

	conf := defaults
	if *path != "" {
		fromFile, err := getYaml(*path)
		if err != nil {
			return Config{}, err
		}
		conf = fromFile
		conf.Path = *path
	}
	conf.Setup = *setup

	// explicitly set flags win over the yaml file
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "api-url":
			conf.APIURL = *apiURL
		case "listen":
			conf.Listen = *listen
		case "mode":
			conf.Mode = *mode
		case "poll-interval":
			conf.PollInterval = *poll
		case "request-timeout":
			conf.RequestTimeout = *timeout
		case "max-retries":
			conf.MaxRetries = *retries
		case "currency":
			conf.Currency = *currency
		case "timezone":
			conf.Timezone = *tz
		case "tls-domains":
			conf.TLSDomains = splitList(*domains)
		case "cert-cache":
			conf.CertCacheDir = *certCache
		case "log-level":
			conf.LogLevel = *logLevel
		}
	})

	if conf.Setup {
		return conf, nil
	}
	if err := conf.Validate(); err != nil {
		return Config{}, err
	}
	return conf, nil
}

func getYaml(path string) (Config, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "read config %s", path)
	}

	var tmp ConfigTmp
	if err := yaml.Unmarshal(f, &tmp); err != nil {
		return Config{}, errors.Wrapf(err, "parse config %s", path)
	}

	conf := Default()
	if tmp.APIURL != "" {
		conf.APIURL = tmp.APIURL
	}
	if tmp.Listen != "" {
		conf.Listen = tmp.Listen
	}
	if tmp.Mode != "" {
		conf.Mode = tmp.Mode
	}
	if tmp.RequestTimeout != 0 {
		conf.RequestTimeout = tmp.RequestTimeout
	}
	if tmp.Currency != "" {
		conf.Currency = tmp.Currency
	}
	if tmp.Timezone != "" {
		conf.Timezone = tmp.Timezone
	}
	if tmp.CertCacheDir != "" {
		conf.CertCacheDir = tmp.CertCacheDir
	}
	if tmp.LogLevel != "" {
		conf.LogLevel = tmp.LogLevel
	}
	conf.PollInterval = tmp.PollInterval
	conf.MaxRetries = tmp.MaxRetries
	conf.TLSDomains = tmp.TLSDomains
	return conf, nil
}

// Validate checks the configuration and resolves the timezone.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("incorrect 'api_url' param %q: must be an absolute http(s) url", c.APIURL)
	}
	if c.Mode != ModeWeb && c.Mode != ModeTerminal {
		return fmt.Errorf("incorrect 'mode' param %q: must be %s or %s", c.Mode, ModeWeb, ModeTerminal)
	}
	if c.Mode == ModeWeb && c.Listen == "" {
		return errors.New("incorrect 'listen' param: must not be empty in web mode")
	}
	if c.PollInterval < 0 {
		return fmt.Errorf("incorrect 'poll_interval' param %s: must not be negative", c.PollInterval)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("incorrect 'request_timeout' param %s: must be positive", c.RequestTimeout)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("incorrect 'max_retries' param %d: must not be negative", c.MaxRetries)
	}
	c.Currency = strings.ToUpper(strings.TrimSpace(c.Currency))
	if !format.KnownCurrency(c.Currency) {
		return fmt.Errorf("incorrect 'currency' param %q: unknown currency code", c.Currency)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("incorrect 'log_level' param %q", c.LogLevel)
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return errors.Wrapf(err, "incorrect 'timezone' param %q", c.Timezone)
	}
	c.location = loc
	return nil
}

// Location returns the timezone of displayed timestamps.
func (c Config) Location() *time.Location {
	if c.location != nil {
		return c.location
	}
	if loc, err := time.LoadLocation(c.Timezone); err == nil {
		return loc
	}
	return time.Local
}

// Save writes conf as yaml to path.
func Save(path string, conf Config) error {
	tmp := ConfigTmp{
		APIURL:         conf.APIURL,
		Listen:         conf.Listen,
		Mode:           conf.Mode,
		PollInterval:   conf.PollInterval,
		RequestTimeout: conf.RequestTimeout,
		MaxRetries:     conf.MaxRetries,
		Currency:       conf.Currency,
		Timezone:       conf.Timezone,
		TLSDomains:     conf.TLSDomains,
		CertCacheDir:   conf.CertCacheDir,
		LogLevel:       conf.LogLevel,
	}
	data, err := yaml.Marshal(tmp)
	if err != nil {
		return errors.Wrap(err, "marshal config")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "write config %s", path)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
