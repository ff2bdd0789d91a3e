package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the base name for configuration files (without extension).
	ConfigFileName = "docprep"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "DOCPREP"
)

// Loader reads configuration from files, environment variables and bound
// flags, in that order of increasing precedence.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader on the global viper instance so cobra flag
// bindings take effect.
func NewLoader() *Loader {
	return &Loader{v: viper.GetViper()}
}

// Load reads configuration from the search paths, applies environment
// overrides and defaults, and validates the result. A missing config file
// is not an error.
func (l *Loader) Load() (*Config, error) {
	l.v.SetConfigName(ConfigFileName)
	l.v.SetConfigType("yaml")
	l.addConfigPaths()
	l.setupEnvironment()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}
	return l.unmarshal()
}

// LoadFile reads configuration from a specific file path.
func (l *Loader) LoadFile(path string) (*Config, error) {
	if path == "" {
		return l.Load()
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", path)
	}

	l.v.SetConfigFile(path)
	l.setupEnvironment()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return l.unmarshal()
}

func (l *Loader) unmarshal() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// ConfigFileUsed returns the path of the config file that was read, if any.
func (l *Loader) ConfigFileUsed() string { return l.v.ConfigFileUsed() }

// Viper returns the underlying viper instance for flag binding.
func (l *Loader) Viper() *viper.Viper { return l.v }

func (l *Loader) addConfigPaths() {
	l.v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(home)
	}
	l.v.AddConfigPath("/etc/docprep")
	if configDir, exists := os.LookupEnv("XDG_CONFIG_HOME"); exists {
		l.v.AddConfigPath(filepath.Join(configDir, "docprep"))
	} else if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(filepath.Join(home, ".config", "docprep"))
	}
}

func (l *Loader) setupEnvironment() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.AutomaticEnv()
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

// setDefaults registers every configuration key with its default so that
// partial config files and env overrides merge cleanly.
func (l *Loader) setDefaults() {
	d := DefaultConfig()

	l.v.SetDefault("log_level", d.LogLevel)
	l.v.SetDefault("verbose", d.Verbose)

	l.v.SetDefault("quality.blur_high", d.Quality.BlurHigh)
	l.v.SetDefault("quality.blur_medium", d.Quality.BlurMedium)
	l.v.SetDefault("quality.blur_low", d.Quality.BlurLow)
	l.v.SetDefault("quality.contrast_high", d.Quality.ContrastHigh)
	l.v.SetDefault("quality.contrast_medium", d.Quality.ContrastMedium)
	l.v.SetDefault("quality.contrast_low", d.Quality.ContrastLow)
	l.v.SetDefault("quality.brightness_optimal_min", d.Quality.BrightnessOptimalMin)
	l.v.SetDefault("quality.brightness_optimal_max", d.Quality.BrightnessOptimalMax)
	l.v.SetDefault("quality.brightness_usable_min", d.Quality.BrightnessUsableMin)
	l.v.SetDefault("quality.brightness_usable_max", d.Quality.BrightnessUsableMax)
	l.v.SetDefault("quality.resolution_min", d.Quality.ResolutionMin)
	l.v.SetDefault("quality.resolution_good", d.Quality.ResolutionGood)

	l.v.SetDefault("orientation.enabled", d.Orientation.Enabled)
	l.v.SetDefault("orientation.min_line_count", d.Orientation.MinLineCount)
	l.v.SetDefault("orientation.min_vertical_lines", d.Orientation.MinVerticalLines)
	l.v.SetDefault("orientation.vertical_dominance", d.Orientation.VerticalDominance)
	l.v.SetDefault("orientation.angle_tolerance", d.Orientation.AngleTolerance)
	l.v.SetDefault("orientation.analysis_max_dim", d.Orientation.AnalysisMaxDim)

	l.v.SetDefault("boundary.enabled", d.Boundary.Enabled)
	l.v.SetDefault("boundary.min_area_ratio", d.Boundary.MinAreaRatio)
	l.v.SetDefault("boundary.max_area_ratio", d.Boundary.MaxAreaRatio)
	l.v.SetDefault("boundary.min_rectangularity", d.Boundary.MinRectangularity)
	l.v.SetDefault("boundary.min_vertices", d.Boundary.MinVertices)
	l.v.SetDefault("boundary.max_vertices", d.Boundary.MaxVertices)
	l.v.SetDefault("boundary.blur_sigma", d.Boundary.BlurSigma)
	l.v.SetDefault("boundary.edge_threshold", d.Boundary.EdgeThreshold)
	l.v.SetDefault("boundary.dilate_kernel", d.Boundary.DilateKernel)
	l.v.SetDefault("boundary.dilate_iterations", d.Boundary.DilateIterations)
	l.v.SetDefault("boundary.analysis_max_dim", d.Boundary.AnalysisMaxDim)
	l.v.SetDefault("boundary.crop_padding", d.Boundary.CropPadding)

	l.v.SetDefault("segmenter.enabled", d.Segmenter.Enabled)
	l.v.SetDefault("segmenter.min_area_ratio", d.Segmenter.MinAreaRatio)
	l.v.SetDefault("segmenter.max_regions", d.Segmenter.MaxRegions)
	l.v.SetDefault("segmenter.row_tolerance", d.Segmenter.RowTolerance)

	l.v.SetDefault("enhance.clahe.grid_size", d.Enhance.CLAHE.GridSize)
	l.v.SetDefault("enhance.clahe.clip_limit", d.Enhance.CLAHE.ClipLimit)
	l.v.SetDefault("enhance.denoise.radius", d.Enhance.Denoise.Radius)
	l.v.SetDefault("enhance.sharpen.strength", d.Enhance.Sharpen.Strength)
	l.v.SetDefault("enhance.sharpen.blur_sigma", d.Enhance.Sharpen.BlurSigma)
	l.v.SetDefault("enhance.deskew.min_angle", d.Enhance.Deskew.MinAngle)
	l.v.SetDefault("enhance.deskew.max_angle", d.Enhance.Deskew.MaxAngle)
	l.v.SetDefault("enhance.deskew.sample_stride", d.Enhance.Deskew.SampleStride)

	l.v.SetDefault("budget.max_long_edge", d.Budget.MaxLongEdge)
	l.v.SetDefault("budget.max_megapixels", d.Budget.MaxMegapixels)
	l.v.SetDefault("budget.max_bytes", d.Budget.MaxBytes)
	l.v.SetDefault("budget.min_dimension", d.Budget.MinDimension)
	l.v.SetDefault("budget.initial_quality", d.Budget.InitialQuality)
	l.v.SetDefault("budget.quality_floor", d.Budget.QualityFloor)
	l.v.SetDefault("budget.quality_step", d.Budget.QualityStep)

	l.v.SetDefault("parallel.max_workers", d.Parallel.MaxWorkers)
}
