package enhance

import (
	"fmt"
	"image"
	"math"

	"github.com/scanforge/docprep/internal/geometry"
	"github.com/scanforge/docprep/internal/raster"
)

// DeskewConfig controls small-angle skew correction.
type DeskewConfig struct {
	// MinAngle is the smallest skew worth correcting, in degrees.
	MinAngle float64 `mapstructure:"min_angle" yaml:"min_angle"`
	// MaxAngle is the largest skew treated as skew rather than intentional
	// rotation, in degrees.
	MaxAngle float64 `mapstructure:"max_angle" yaml:"max_angle"`
	// SampleStride subsamples foreground pixels during angle estimation.
	SampleStride int `mapstructure:"sample_stride" yaml:"sample_stride"`
}

const minForegroundPoints = 64

// Deskew estimates the dominant text angle from the minimal rotated
// rectangle around the dark foreground and rotates the image to level it.
// Angles below MinAngle are left alone, and angles above MaxAngle are
// assumed intentional and also left alone.
func Deskew(img image.Image, cfg DeskewConfig) Result {
	if img == nil {
		return skipped(img, "nil image")
	}
	angle, ok := EstimateSkew(img, cfg)
	if !ok {
		return skipped(img, "not enough foreground to estimate skew")
	}
	abs := math.Abs(angle)
	if abs < cfg.MinAngle {
		return skipped(img, fmt.Sprintf("skew %.2f° below correction threshold", angle))
	}
	if abs > cfg.MaxAngle {
		return skipped(img, fmt.Sprintf("angle %.2f° treated as intentional rotation", angle))
	}
	return Result{Image: geometry.RotateBilinear(img, -angle), Applied: true}
}

// EstimateSkew returns the angle in degrees of the minimal rotated
// rectangle enclosing the dark foreground, normalized to (-45, 45].
func EstimateSkew(img image.Image, cfg DeskewConfig) (float64, bool) {
	gray := raster.Grayscale(img)
	threshold := raster.OtsuThreshold(raster.Histogram(gray))

	stride := cfg.SampleStride
	if stride < 1 {
		stride = 1
	}
	b := gray.Bounds()
	pts := make([]geometry.Point, 0, 1024)
	for y := b.Min.Y; y < b.Max.Y; y += stride {
		for x := b.Min.X; x < b.Max.X; x += stride {
			if gray.GrayAt(x, y).Y < threshold {
				pts = append(pts, geometry.Point{X: float64(x), Y: float64(y)})
			}
		}
	}
	if len(pts) < minForegroundPoints {
		return 0, false
	}
	rect := geometry.MinAreaRect(pts)
	return geometry.MinAreaRectAngle(rect), true
}
