// Package budget resizes and re-encodes processed images so they fit the
// dimension, pixel-count and byte-size limits of downstream vision models.
package budget

import (
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/scanforge/docprep/internal/raster"
)

// Config holds the output limits. Defaults target the common vision-model
// envelope of a 1568px long edge, about 1.15 megapixels and a bit under
// five megabytes per image.
type Config struct {
	MaxLongEdge   int     `mapstructure:"max_long_edge" yaml:"max_long_edge"`
	MaxMegapixels float64 `mapstructure:"max_megapixels" yaml:"max_megapixels"`
	MaxBytes      int     `mapstructure:"max_bytes" yaml:"max_bytes"`
	// MinDimension keeps text legible: downscaling never pushes the short
	// edge below this many pixels even if the byte limit is then missed.
	MinDimension   int `mapstructure:"min_dimension" yaml:"min_dimension"`
	InitialQuality int `mapstructure:"initial_quality" yaml:"initial_quality"`
	QualityFloor   int `mapstructure:"quality_floor" yaml:"quality_floor"`
	QualityStep    int `mapstructure:"quality_step" yaml:"quality_step"`
}

// DefaultConfig returns the standard vision-model output limits.
func DefaultConfig() Config {
	return Config{
		MaxLongEdge:    1568,
		MaxMegapixels:  1.15,
		MaxBytes:       4608 * 1024,
		MinDimension:   200,
		InitialQuality: 85,
		QualityFloor:   40,
		QualityStep:    10,
	}
}

// tokensPerPixelDivisor approximates vision-model token cost as
// width*height divided by this constant.
const tokensPerPixelDivisor = 750

// Result is the final encoded output of the pipeline.
type Result struct {
	Data      []byte
	MediaType string
	Width     int
	Height    int
	// Quality is the JPEG quality the final encode used.
	Quality int
	// WithinBudget is false when even the quality floor could not satisfy
	// the byte limit; the smallest attempt is still returned.
	WithinBudget bool
	// TokenCost estimates the vision-model tokens this image will consume.
	TokenCost int
}

// Enforcer applies the output limits. It is stateless and safe for
// concurrent use.
type Enforcer struct {
	cfg Config
}

// NewEnforcer returns an enforcer with the given limits.
func NewEnforcer(cfg Config) *Enforcer { return &Enforcer{cfg: cfg} }

// Apply downscales img to the dimension and pixel limits, then re-encodes
// at decreasing JPEG quality until the byte limit is met or the quality
// floor is reached. Transparency is flattened against white before
// encoding.
func (e *Enforcer) Apply(img image.Image) (Result, error) {
	resized := e.resize(img)
	b := resized.Bounds()

	flat := raster.Flatten(resized)
	quality := e.cfg.InitialQuality
	data, err := raster.EncodeJPEG(flat, quality)
	if err != nil {
		return Result{}, err
	}
	for len(data) > e.cfg.MaxBytes && quality-e.cfg.QualityStep >= e.cfg.QualityFloor {
		quality -= e.cfg.QualityStep
		if data, err = raster.EncodeJPEG(flat, quality); err != nil {
			return Result{}, err
		}
	}

	return Result{
		Data:         data,
		MediaType:    "image/jpeg",
		Width:        b.Dx(),
		Height:       b.Dy(),
		Quality:      quality,
		WithinBudget: len(data) <= e.cfg.MaxBytes,
		TokenCost:    b.Dx() * b.Dy() / tokensPerPixelDivisor,
	}, nil
}

// resize scales img down to honor the long-edge and megapixel limits,
// backing off to the minimum-dimension floor when the limits would make
// the short edge too small to read.
func (e *Enforcer) resize(img image.Image) image.Image {
	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	if w == 0 || h == 0 {
		return img
	}

	scale := 1.0
	if long := math.Max(w, h); long > float64(e.cfg.MaxLongEdge) {
		scale = float64(e.cfg.MaxLongEdge) / long
	}
	if mp := w * h / 1e6; mp > e.cfg.MaxMegapixels {
		scale = math.Min(scale, math.Sqrt(e.cfg.MaxMegapixels/mp))
	}
	if scale >= 1 {
		return img
	}

	// Never shrink the short edge below the legibility floor, unless it
	// already started below it.
	if short := math.Min(w, h); short*scale < float64(e.cfg.MinDimension) && short > float64(e.cfg.MinDimension) {
		scale = float64(e.cfg.MinDimension) / short
	}

	nw := int(math.Round(w * scale))
	nh := int(math.Round(h * scale))
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	return imaging.Resize(img, nw, nh, imaging.Lanczos)
}
