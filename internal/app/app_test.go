package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/dojo/internal/services/pipeline"
)

// clearEnv removes variables that would otherwise leak host configuration into the test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"DOJO_CONFIG", "DOJO_EDGAR_CONTACT", "EMAIL_ADDRESS", "DOJO_EDGAR_MODE",
		"DOJO_ALPHAVANTAGE_API_KEY", "AV_API_KEY", "ALPHA_VANTAGE_API_KEY",
		"DOJO_EODHD_API_KEY", "EODHD_API_KEY", "DOJO_QUOTE_PROVIDER", "DOJO_LOG_LEVEL",
		"DOJO_STORAGE_BACKEND", "DOJO_STORAGE_PATH",
	} {
		t.Setenv(name, "")
	}
}

func writeTestConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dojo.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestNewApp_InitializesServices(t *testing.T) {
	clearEnv(t)
	path := writeTestConfig(t, `
[clients.edgar]
contact = "Test Runner test@example.com"

[logging]
outputs = []
`)

	a, err := NewApp(Options{ConfigPath: path})
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.Config)
	assert.NotNil(t, a.Logger)
	assert.NotNil(t, a.EDGAR)
	assert.NotNil(t, a.Resolver)
	assert.NotNil(t, a.Pipeline)
	assert.NotNil(t, a.Frames)
	assert.Nil(t, a.Quotes)
	assert.Nil(t, a.Storage)
	assert.False(t, a.StartupTime.IsZero())
}

func TestNewApp_MissingContact(t *testing.T) {
	clearEnv(t)
	path := writeTestConfig(t, "[logging]\noutputs = []\n")

	_, err := NewApp(Options{ConfigPath: path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "clients.edgar.contact")
}

func TestNewApp_QuotesRequireKey(t *testing.T) {
	clearEnv(t)
	path := writeTestConfig(t, `
[clients.edgar]
contact = "Test Runner test@example.com"
`)

	_, err := NewApp(Options{ConfigPath: path, NeedQuotes: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "clients.alphavantage.api_key")
}

func TestNewApp_QuotesConfigured(t *testing.T) {
	clearEnv(t)
	path := writeTestConfig(t, `
[clients.edgar]
contact = "Test Runner test@example.com"

[clients.eodhd]
api_key = "demo"

[quote]
provider = "eodhd"
`)

	a, err := NewApp(Options{ConfigPath: path, NeedQuotes: true, LogLevel: "error"})
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.Quotes)
	assert.Equal(t, "error", a.Config.Logging.Level)
}

func TestNewApp_CheckWithoutStorage(t *testing.T) {
	clearEnv(t)
	path := writeTestConfig(t, `
[clients.edgar]
contact = "Test Runner test@example.com"

[clients.alphavantage]
api_key = "demo"
`)

	a, err := NewApp(Options{ConfigPath: path, NeedQuotes: true})
	require.NoError(t, err)
	defer a.Close()

	_, err = a.Pipeline.CheckOpportunity(t.Context(), "AAPL")
	assert.ErrorIs(t, err, pipeline.ErrNoStore)
}

func TestResolveConfigPath(t *testing.T) {
	clearEnv(t)
	assert.Equal(t, "explicit.toml", resolveConfigPath("explicit.toml"))

	t.Setenv("DOJO_CONFIG", "/etc/dojo/dojo.toml")
	assert.Equal(t, "/etc/dojo/dojo.toml", resolveConfigPath(""))

	t.Setenv("DOJO_CONFIG", "")
	assert.Equal(t, filepath.Join("config", "dojo.toml"), resolveConfigPath(""))
}

func TestNewApp_EmbeddedStorage(t *testing.T) {
	clearEnv(t)
	t.Setenv("DOJO_STORAGE_BACKEND", "badger")
	t.Setenv("DOJO_STORAGE_PATH", filepath.Join(t.TempDir(), "data"))
	path := writeTestConfig(t, `
[clients.edgar]
contact = "Test Runner test@example.com"
`)

	a, err := NewApp(Options{ConfigPath: path, NeedStorage: true})
	require.NoError(t, err)
	require.NotNil(t, a.Storage)

	records, err := a.Storage.ValuationStore().ListValuations(t.Context(), "META")
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NoError(t, a.Close())
}

func TestNewApp_WantStorageUnavailable(t *testing.T) {
	clearEnv(t)
	path := writeTestConfig(t, `
[clients.edgar]
contact = "Test Runner test@example.com"

[storage]
backend = "sqlite"
`)

	a, err := NewApp(Options{ConfigPath: path, WantQuotes: true, WantStorage: true})
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.Quotes)
	assert.Nil(t, a.Storage)

	_, err = NewApp(Options{ConfigPath: path, NeedStorage: true})
	assert.Error(t, err)
}
