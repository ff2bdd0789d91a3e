// Package config loads and validates the application configuration from
// YAML files, environment variables and flag bindings.
package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/scanforge/docprep/internal/boundary"
	"github.com/scanforge/docprep/internal/budget"
	"github.com/scanforge/docprep/internal/enhance"
	"github.com/scanforge/docprep/internal/orientation"
	"github.com/scanforge/docprep/internal/pipeline"
	"github.com/scanforge/docprep/internal/quality"
)

// Config is the root configuration.
type Config struct {
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose"`

	Quality     quality.Config           `mapstructure:"quality" yaml:"quality"`
	Orientation orientation.Config       `mapstructure:"orientation" yaml:"orientation"`
	Boundary    boundary.Config          `mapstructure:"boundary" yaml:"boundary"`
	Segmenter   boundary.SegmenterConfig `mapstructure:"segmenter" yaml:"segmenter"`
	Enhance     enhance.Config           `mapstructure:"enhance" yaml:"enhance"`
	Budget      budget.Config            `mapstructure:"budget" yaml:"budget"`
	Parallel    pipeline.ParallelConfig  `mapstructure:"parallel" yaml:"parallel"`
}

// DefaultConfig returns the configuration with all component defaults.
func DefaultConfig() Config {
	return Config{
		LogLevel:    "info",
		Quality:     quality.DefaultConfig(),
		Orientation: orientation.DefaultConfig(),
		Boundary:    boundary.DefaultConfig(),
		Segmenter:   boundary.DefaultSegmenterConfig(),
		Enhance:     enhance.DefaultConfig(),
		Budget:      budget.DefaultConfig(),
		Parallel:    pipeline.DefaultParallelConfig(),
	}
}

// Validate checks the configuration for internally inconsistent values.
func (c Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q (want debug, info, warn or error)", c.LogLevel)
	}

	if !(c.Quality.BlurHigh > c.Quality.BlurMedium && c.Quality.BlurMedium > c.Quality.BlurLow && c.Quality.BlurLow > 0) {
		return fmt.Errorf("quality blur thresholds must satisfy high > medium > low > 0")
	}
	if !(c.Quality.ContrastHigh > c.Quality.ContrastMedium && c.Quality.ContrastMedium > c.Quality.ContrastLow && c.Quality.ContrastLow > 0) {
		return fmt.Errorf("quality contrast thresholds must satisfy high > medium > low > 0")
	}
	if c.Quality.BrightnessUsableMin > c.Quality.BrightnessOptimalMin ||
		c.Quality.BrightnessOptimalMin >= c.Quality.BrightnessOptimalMax ||
		c.Quality.BrightnessOptimalMax > c.Quality.BrightnessUsableMax {
		return fmt.Errorf("quality brightness bands must nest: usable_min <= optimal_min < optimal_max <= usable_max")
	}
	if c.Quality.ResolutionMin <= 0 || c.Quality.ResolutionGood <= c.Quality.ResolutionMin {
		return fmt.Errorf("quality resolution thresholds must satisfy good > min > 0")
	}

	if c.Boundary.MinAreaRatio <= 0 || c.Boundary.MaxAreaRatio >= 1 ||
		c.Boundary.MinAreaRatio >= c.Boundary.MaxAreaRatio {
		return fmt.Errorf("boundary area ratio window must satisfy 0 < min < max < 1")
	}
	if c.Boundary.MinRectangularity <= 0 || c.Boundary.MinRectangularity > 1 {
		return fmt.Errorf("boundary min_rectangularity must be in (0, 1]")
	}
	if c.Segmenter.MinAreaRatio <= 0 || c.Segmenter.MinAreaRatio >= c.Boundary.MaxAreaRatio {
		return fmt.Errorf("segmenter min_area_ratio must be in (0, boundary max_area_ratio)")
	}
	if c.Segmenter.MaxRegions < 1 {
		return fmt.Errorf("segmenter max_regions must be at least 1")
	}

	if c.Budget.MaxLongEdge <= 0 || c.Budget.MaxMegapixels <= 0 || c.Budget.MaxBytes <= 0 {
		return fmt.Errorf("budget limits must be positive")
	}
	if c.Budget.QualityFloor < 1 || c.Budget.QualityFloor > c.Budget.InitialQuality || c.Budget.InitialQuality > 100 {
		return fmt.Errorf("budget qualities must satisfy 1 <= floor <= initial <= 100")
	}
	if c.Budget.QualityStep <= 0 {
		return fmt.Errorf("budget quality_step must be positive")
	}
	if c.Budget.MinDimension < 0 {
		return fmt.Errorf("budget min_dimension must not be negative")
	}

	if c.Parallel.MaxWorkers < 1 {
		return fmt.Errorf("parallel max_workers must be at least 1")
	}
	return nil
}

// PipelineConfig converts the loaded configuration into a pipeline config.
func (c Config) PipelineConfig() pipeline.Config {
	return pipeline.Config{
		Quality:     c.Quality,
		Orientation: c.Orientation,
		Boundary:    c.Boundary,
		Segmenter:   c.Segmenter,
		Enhance:     c.Enhance,
		Budget:      c.Budget,
		Parallel:    c.Parallel,
	}
}

// YAML renders the configuration as YAML, as shown by `docprep config`.
func (c Config) YAML() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	return out, nil
}
