package enhance

import (
	"image"

	"github.com/anthonynsimon/bild/effect"
)

// DenoiseConfig controls noise suppression strength.
type DenoiseConfig struct {
	// Radius is the median filter radius in pixels; zero disables the stage.
	Radius float64 `mapstructure:"radius" yaml:"radius"`
}

// Denoise suppresses sensor noise and compression artifacts with a median
// filter, which flattens speckle while keeping text edges hard.
func Denoise(img image.Image, cfg DenoiseConfig) Result {
	if img == nil {
		return skipped(img, "nil image")
	}
	if cfg.Radius <= 0 {
		return skipped(img, "denoising disabled")
	}
	return Result{Image: effect.Median(img, cfg.Radius), Applied: true}
}
