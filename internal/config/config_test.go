package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-openapi/testify/v2/assert"
	"github.com/go-openapi/testify/v2/require"

	"github.com/polybench/polybench/internal/dsl"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := loadDefaults()
	require.NoError(t, err)

	assert.Equal(t, ".polybench/cache", cfg.CacheDir)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, "console", cfg.Report.Format)
	assert.Equal(t, "dark", cfg.Chart.Theme)
	assert.Equal(t, 900, cfg.Chart.Width)
	assert.Equal(t, "anvil", cfg.Anvil.BinaryPath)

	for _, lang := range dsl.AllLangs() {
		_, ok := cfg.RuntimeEnvs[lang]
		assert.True(t, ok, "expected runtime env for %s", lang)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	yamlContent := "cachedir: /tmp/cache\nchart:\n  theme: light\n  width: 1200\n"
	file := filepath.Join(dir, "polybench.yaml")
	require.NoError(t, os.WriteFile(file, []byte(yamlContent), 0o600))

	cfg, err := Load(file)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/cache", cfg.CacheDir)
	assert.Equal(t, "light", cfg.Chart.Theme)
	assert.Equal(t, 1200, cfg.Chart.Width)
	// unspecified fields keep the embedded default
	assert.Equal(t, "out", cfg.OutputDir)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
