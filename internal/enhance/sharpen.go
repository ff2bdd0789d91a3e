package enhance

import (
	"image"

	"github.com/disintegration/imaging"
)

// SharpenConfig controls unsharp masking.
type SharpenConfig struct {
	// Strength scales the high-frequency component added back; zero disables
	// the stage.
	Strength float64 `mapstructure:"strength" yaml:"strength"`
	// BlurSigma is the Gaussian sigma of the mask.
	BlurSigma float64 `mapstructure:"blur_sigma" yaml:"blur_sigma"`
}

// Sharpen applies an unsharp mask: each channel becomes
// original*(1+strength) - blurred*strength, clamped to the valid range.
func Sharpen(img image.Image, cfg SharpenConfig) Result {
	if img == nil {
		return skipped(img, "nil image")
	}
	if cfg.Strength <= 0 || cfg.BlurSigma <= 0 {
		return skipped(img, "sharpening disabled")
	}

	src := imaging.Clone(img)
	blurred := imaging.Blur(img, cfg.BlurSigma)
	s := cfg.Strength
	for i := 0; i < len(src.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			v := float64(src.Pix[i+c])*(1+s) - float64(blurred.Pix[i+c])*s
			src.Pix[i+c] = uint8(clamp255(v))
		}
	}
	return Result{Image: src, Applied: true}
}
