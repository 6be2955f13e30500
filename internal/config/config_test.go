package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cbrbot/internal/entity"
)

// inTempDir runs the test from an empty directory so a developer's .env is not picked up.
func inTempDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

// unsetEnv clears keys for the duration of the test.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()

	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestNewDefaults(t *testing.T) {
	inTempDir(t)
	unsetEnv(t, "WORKERS", "CBR_URL", "HTTP_TIMEOUT", "CURRENCIES", "PIVOT_CURRENCY", "LOG_FILE", "SESSION_TTL")
	t.Setenv("BOT_TOKEN", "123:abc")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.Telegram.Token)
	assert.Equal(t, 4, cfg.Telegram.Workers)
	assert.Equal(t, "https://www.cbr.ru/scripts/XML_daily.asp", cfg.CBR.URL)
	assert.Equal(t, 10*time.Second, cfg.CBR.Timeout)
	assert.Equal(t, "bot.log", cfg.App.LogFile)
	assert.Equal(t, 30*time.Minute, cfg.App.SessionTTL)

	set, err := cfg.CurrencySet()
	require.NoError(t, err)
	assert.Equal(t, entity.RUB, set.Pivot())
	assert.Equal(t, []entity.Currency{entity.RUB, entity.USD, entity.EUR, entity.CNY}, set.Codes())
}

func TestNewRequiresToken(t *testing.T) {
	inTempDir(t)
	unsetEnv(t, "BOT_TOKEN")

	_, err := New()
	assert.Error(t, err)
}

func TestNewReadsEnvFile(t *testing.T) {
	dir := inTempDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("BOT_TOKEN=from-file\nCURRENCIES=rub,usd,gbp\nMETRICS_ADDR=\n"), 0o600))

	unsetEnv(t, "BOT_TOKEN", "CURRENCIES", "METRICS_ADDR")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Telegram.Token)
	assert.Empty(t, cfg.App.MetricsAddr)

	set, err := cfg.CurrencySet()
	require.NoError(t, err)
	assert.Equal(t, []entity.Currency{entity.RUB, entity.USD, "GBP"}, set.Codes())
}

func TestNewRejectsPivotOutsideSet(t *testing.T) {
	inTempDir(t)
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("CURRENCIES", "USD,EUR")
	t.Setenv("PIVOT_CURRENCY", "RUB")

	_, err := New()
	require.Error(t, err)
	assert.True(t, errors.Is(err, entity.ErrUnsupportedCurrency))
}

func TestNewRejectsNonPositiveWorkers(t *testing.T) {
	inTempDir(t)
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("WORKERS", "0")

	_, err := New()
	assert.Error(t, err)
}
