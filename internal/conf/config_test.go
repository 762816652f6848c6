package conf

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
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
search:
  endpoint: "http://backend:9000/api/v1/metadata/search"
  locale: "de"
  max_results_per_provider: 25
  provider_timeout: 30s
log:
  level: "debug"
  format: "json"
  output: "console"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "http://backend:9000/api/v1/metadata/search", cfg.Search.Endpoint)
	assert.Equal(t, "de", cfg.Search.Locale)
	assert.Equal(t, 25, cfg.Search.MaxResultsPerProvider)
	assert.Equal(t, 30*time.Second, cfg.Search.ProviderTimeout)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, `
log:
  level: "info"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "en", cfg.Search.Locale)
	assert.Equal(t, 60*time.Second, cfg.Search.ProviderTimeout)
	assert.Equal(t, 1<<20, cfg.Search.MaxFrameBuffer)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
