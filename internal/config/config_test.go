package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_Validates(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			"bad log level",
			func(c *Config) { c.LogLevel = "chatty" },
			"log_level",
		},
		{
			"blur thresholds out of order",
			func(c *Config) { c.Quality.BlurLow = c.Quality.BlurHigh + 1 },
			"blur",
		},
		{
			"contrast thresholds out of order",
			func(c *Config) { c.Quality.ContrastMedium = c.Quality.ContrastHigh + 1 },
			"contrast",
		},
		{
			"brightness bands not nested",
			func(c *Config) { c.Quality.BrightnessOptimalMax = c.Quality.BrightnessUsableMax + 1 },
			"brightness",
		},
		{
			"resolution thresholds inverted",
			func(c *Config) { c.Quality.ResolutionGood = c.Quality.ResolutionMin - 1 },
			"resolution",
		},
		{
			"boundary area window inverted",
			func(c *Config) { c.Boundary.MinAreaRatio = 0.96 },
			"area ratio",
		},
		{
			"rectangularity above one",
			func(c *Config) { c.Boundary.MinRectangularity = 1.5 },
			"rectangularity",
		},
		{
			"segmenter area ratio zero",
			func(c *Config) { c.Segmenter.MinAreaRatio = 0 },
			"segmenter",
		},
		{
			"segmenter max regions zero",
			func(c *Config) { c.Segmenter.MaxRegions = 0 },
			"max_regions",
		},
		{
			"budget limits zero",
			func(c *Config) { c.Budget.MaxBytes = 0 },
			"budget",
		},
		{
			"quality floor above initial",
			func(c *Config) { c.Budget.QualityFloor = c.Budget.InitialQuality + 1 },
			"floor",
		},
		{
			"quality step zero",
			func(c *Config) { c.Budget.QualityStep = 0 },
			"quality_step",
		},
		{
			"negative min dimension",
			func(c *Config) { c.Budget.MinDimension = -1 },
			"min_dimension",
		},
		{
			"no workers",
			func(c *Config) { c.Parallel.MaxWorkers = 0 },
			"max_workers",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPipelineConfig_CarriesComponents(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Segmenter.Enabled = true
	cfg.Budget.MaxLongEdge = 1024

	pcfg := cfg.PipelineConfig()
	assert.True(t, pcfg.Segmenter.Enabled)
	assert.Equal(t, 1024, pcfg.Budget.MaxLongEdge)
	assert.Equal(t, cfg.Quality, pcfg.Quality)
}

func TestYAML_RoundTrips(t *testing.T) {
	out, err := DefaultConfig().YAML()
	require.NoError(t, err)
	assert.Contains(t, string(out), "log_level: info")
	assert.Contains(t, string(out), "max_long_edge: 1568")
	assert.Contains(t, string(out), "quality_floor: 40")
}
