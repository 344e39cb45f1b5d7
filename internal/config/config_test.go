package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSources(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	doc := `sources:
  - id: meta-main
    name: "Conta principal"
    url: https://example.com/export.csv
  - id: meta-alt
    name: "Conta secundária"
    url: https://example.com/alt.csv
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	sources, err := LoadSources(path)
	require.NoError(t, err)
	require.Len(t, sources, 2)
	// el orden del archivo se conserva: el primero es el default
	assert.Equal(t, "meta-main", sources[0].ID)
	assert.Equal(t, "Conta principal", sources[0].Name)
	assert.Equal(t, "https://example.com/alt.csv", sources[1].URL)
}

func TestLoadSourcesMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sources:\n  - name: sin-id\n"), 0o600))

	_, err := LoadSources(path)
	assert.Error(t, err)
}

func TestLoadSourcesMissingFile(t *testing.T) {
	_, err := LoadSources(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "")
	cfg := FromEnv()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sources.yaml", cfg.SourcesFile)
	assert.False(t, cfg.KeepRagged)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "3")
	t.Setenv("REPORT_KEEP_RAGGED", "true")
	cfg := FromEnv()
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "3s", cfg.HTTPTimeout.String())
	assert.True(t, cfg.KeepRagged)
}
