// Package enhance provides the image enhancement stages run between
// geometric normalization and budget enforcement: local contrast
// equalization, denoising, sharpening and small-angle deskew. Every stage
// is a pure image-to-image function that returns its input unchanged, with
// a reason, on any internal failure.
package enhance

import "image"

// Result carries a stage outcome. Applied distinguishes a transformed image
// from a deliberate or fail-open no-op; Reason explains no-ops.
type Result struct {
	Image   image.Image
	Applied bool
	Reason  string
}

// skipped builds a no-op result passing the input through.
func skipped(img image.Image, reason string) Result {
	return Result{Image: img, Reason: reason}
}

// Config bundles the tunable strengths of all enhancement stages.
type Config struct {
	CLAHE   CLAHEConfig   `mapstructure:"clahe" yaml:"clahe"`
	Denoise DenoiseConfig `mapstructure:"denoise" yaml:"denoise"`
	Sharpen SharpenConfig `mapstructure:"sharpen" yaml:"sharpen"`
	Deskew  DeskewConfig  `mapstructure:"deskew" yaml:"deskew"`
}

// DefaultConfig returns moderate strengths suitable for low-quality input.
func DefaultConfig() Config {
	return Config{
		CLAHE:   CLAHEConfig{GridSize: 8, ClipLimit: 2.5},
		Denoise: DenoiseConfig{Radius: 1},
		Sharpen: SharpenConfig{Strength: 0.6, BlurSigma: 2},
		Deskew:  DeskewConfig{MinAngle: 0.5, MaxAngle: 15, SampleStride: 2},
	}
}

// AggressiveConfig returns maximum strengths for images classified as
// barely usable.
func AggressiveConfig() Config {
	return Config{
		CLAHE:   CLAHEConfig{GridSize: 8, ClipLimit: 4},
		Denoise: DenoiseConfig{Radius: 2},
		Sharpen: SharpenConfig{Strength: 1.2, BlurSigma: 3},
		Deskew:  DeskewConfig{MinAngle: 0.5, MaxAngle: 15, SampleStride: 2},
	}
}
