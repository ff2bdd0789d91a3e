package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docprep.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFile_MergesWithDefaults(t *testing.T) {
	viper.Reset()
	path := writeConfigFile(t, `
log_level: debug
segmenter:
  enabled: true
budget:
  max_long_edge: 1024
`)

	cfg, err := NewLoader().LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Segmenter.Enabled)
	assert.Equal(t, 1024, cfg.Budget.MaxLongEdge)

	// Everything the file does not mention keeps its default.
	assert.InDelta(t, 120, cfg.Quality.BlurHigh, 1e-9)
	assert.Equal(t, 85, cfg.Budget.InitialQuality)
	assert.Equal(t, 5, cfg.Parallel.MaxWorkers)
}

func TestLoadFile_Missing(t *testing.T) {
	viper.Reset()
	_, err := NewLoader().LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestLoadFile_FailsValidation(t *testing.T) {
	viper.Reset()
	path := writeConfigFile(t, "log_level: chatty\n")

	_, err := NewLoader().LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation")
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	viper.Reset()

	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 1568, cfg.Budget.MaxLongEdge)
	assert.False(t, cfg.Segmenter.Enabled)
}

func TestLoad_EnvOverride(t *testing.T) {
	viper.Reset()
	t.Setenv("DOCPREP_LOG_LEVEL", "warn")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestConfigFileUsed(t *testing.T) {
	viper.Reset()
	path := writeConfigFile(t, "log_level: info\n")

	l := NewLoader()
	_, err := l.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, l.ConfigFileUsed())
}
