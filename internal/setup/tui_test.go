package setup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadiminshakov/marti-dashboard/config"
)

func TestValidators(t *testing.T) {
	assert.NoError(t, validateURL("http://localhost:8000"))
	assert.NoError(t, validateURL("https://bot.example.com/api"))
	assert.Error(t, validateURL("localhost:8000"))
	assert.Error(t, validateURL(""))

	assert.NoError(t, validateDuration("0s"))
	assert.NoError(t, validateDuration("30s"))
	assert.Error(t, validateDuration("-1s"))
	assert.Error(t, validateDuration("often"))

	assert.NoError(t, validatePositiveDuration("5s"))
	assert.Error(t, validatePositiveDuration("0s"))

	assert.NoError(t, validateRetries("0"))
	assert.Error(t, validateRetries("-2"))
	assert.Error(t, validateRetries("x"))

	assert.NoError(t, validateCurrency("usd"))
	assert.Error(t, validateCurrency("ZZZ"))

	assert.NoError(t, validateTimezone("UTC"))
	assert.Error(t, validateTimezone("Nowhere/City"))

	assert.Error(t, validateNotEmpty("  "))
}

func TestApply(t *testing.T) {
	conf := config.Default()
	conf.APIURL = "http://localhost:8000"

	require.NoError(t, apply(&conf, "1m", "3s", "2"))
	assert.Equal(t, time.Minute, conf.PollInterval)
	assert.Equal(t, 3*time.Second, conf.RequestTimeout)
	assert.Equal(t, 2, conf.MaxRetries)

	assert.Error(t, apply(&conf, "soon", "3s", "2"))
	assert.Error(t, apply(&conf, "1m", "3s", "-1"))
}
