// Package quality scores incoming document photos on blur, contrast,
// brightness and resolution, and classifies them into the level that
// drives pipeline stage selection.
package quality

import (
	"fmt"
	"image"

	"github.com/scanforge/docprep/internal/raster"
)

// Level classifies overall image quality.
type Level string

const (
	LevelHigh   Level = "high"
	LevelMedium Level = "medium"
	LevelLow    Level = "low"
	LevelReject Level = "reject"
)

// Config holds the calibration thresholds for each quality metric. The
// defaults are empirically tuned on phone photos of paperwork and should be
// revalidated against a labeled corpus when the upstream capture conditions
// change.
type Config struct {
	// Variance of the Laplacian response; higher means sharper.
	BlurHigh   float64 `mapstructure:"blur_high" yaml:"blur_high"`
	BlurMedium float64 `mapstructure:"blur_medium" yaml:"blur_medium"`
	BlurLow    float64 `mapstructure:"blur_low" yaml:"blur_low"`

	// Standard deviation of grayscale intensities.
	ContrastHigh   float64 `mapstructure:"contrast_high" yaml:"contrast_high"`
	ContrastMedium float64 `mapstructure:"contrast_medium" yaml:"contrast_medium"`
	ContrastLow    float64 `mapstructure:"contrast_low" yaml:"contrast_low"`

	// Mean intensity band in which brightness scores 100, and the outer
	// band beyond which it scores 0.
	BrightnessOptimalMin float64 `mapstructure:"brightness_optimal_min" yaml:"brightness_optimal_min"`
	BrightnessOptimalMax float64 `mapstructure:"brightness_optimal_max" yaml:"brightness_optimal_max"`
	BrightnessUsableMin  float64 `mapstructure:"brightness_usable_min" yaml:"brightness_usable_min"`
	BrightnessUsableMax  float64 `mapstructure:"brightness_usable_max" yaml:"brightness_usable_max"`

	// Shorter image dimension, in pixels, at which resolution scores 0
	// and 100 respectively.
	ResolutionMin  int `mapstructure:"resolution_min" yaml:"resolution_min"`
	ResolutionGood int `mapstructure:"resolution_good" yaml:"resolution_good"`
}

// DefaultConfig returns the default metric thresholds.
func DefaultConfig() Config {
	return Config{
		BlurHigh:             120,
		BlurMedium:           60,
		BlurLow:              25,
		ContrastHigh:         55,
		ContrastMedium:       35,
		ContrastLow:          18,
		BrightnessOptimalMin: 90,
		BrightnessOptimalMax: 185,
		BrightnessUsableMin:  40,
		BrightnessUsableMax:  235,
		ResolutionMin:        300,
		ResolutionGood:       1000,
	}
}

// Report is the outcome of a quality assessment. All sub-scores are in
// [0, 100]. Level is reject or low whenever any sub-score falls below the
// hard floor, regardless of the average.
type Report struct {
	Blur            float64            `json:"blur"`
	Contrast        float64            `json:"contrast"`
	Brightness      float64            `json:"brightness"`
	Resolution      float64            `json:"resolution"`
	Level           Level              `json:"level"`
	Recommendations []string           `json:"recommendations"`
	Metrics         map[string]float64 `json:"metrics"`
	DecodeFailed    bool               `json:"decode_failed,omitempty"`
}

// hardFloor is the sub-score below which the overall level is capped at low.
const hardFloor = 25

// Assessor scores images. It is stateless and safe for concurrent use.
type Assessor struct {
	cfg Config
}

// NewAssessor returns an assessor with the given thresholds.
func NewAssessor(cfg Config) *Assessor { return &Assessor{cfg: cfg} }

// Assess decodes raw bytes and scores the image. Malformed input never
// returns an error; it degrades to a reject report flagged as a decode
// failure.
func (a *Assessor) Assess(data []byte) Report {
	img, _, err := raster.Decode(data)
	if err != nil {
		return Report{
			Level:        LevelReject,
			DecodeFailed: true,
			Recommendations: []string{
				"the file could not be decoded as an image; re-capture or re-export it in a standard format",
			},
			Metrics: map[string]float64{"decode_error": 1},
		}
	}
	return a.AssessImage(img)
}

// AssessImage scores an already-decoded image.
func (a *Assessor) AssessImage(img image.Image) Report {
	gray := raster.Grayscale(img)
	mean, stddev := raster.GrayStats(gray)
	edgeVar := LaplacianVariance(gray)
	b := img.Bounds()
	shortEdge := min(b.Dx(), b.Dy())

	r := Report{
		Blur:       thresholdScore(edgeVar, a.cfg.BlurLow, a.cfg.BlurMedium, a.cfg.BlurHigh),
		Contrast:   thresholdScore(stddev, a.cfg.ContrastLow, a.cfg.ContrastMedium, a.cfg.ContrastHigh),
		Brightness: a.brightnessScore(mean),
		Resolution: a.resolutionScore(shortEdge),
		Metrics: map[string]float64{
			"edge_variance":   edgeVar,
			"intensity_std":   stddev,
			"intensity_mean":  mean,
			"short_edge_px":   float64(shortEdge),
			"width_px":        float64(b.Dx()),
			"height_px":       float64(b.Dy()),
		},
	}
	r.Level = classify(r.Blur, r.Contrast, r.Brightness, r.Resolution)
	r.Recommendations = a.recommendations(r)
	return r
}

// classify aggregates sub-scores into an overall level. Any sub-score below
// the hard floor caps the level at low, or reject when the average is also
// poor.
func classify(scores ...float64) Level {
	var sum float64
	anyBelowFloor := false
	for _, s := range scores {
		sum += s
		if s < hardFloor {
			anyBelowFloor = true
		}
	}
	avg := sum / float64(len(scores))
	if anyBelowFloor {
		if avg < 40 {
			return LevelReject
		}
		return LevelLow
	}
	switch {
	case avg >= 70:
		return LevelHigh
	case avg >= 45:
		return LevelMedium
	case avg >= 25:
		return LevelLow
	default:
		return LevelReject
	}
}

// thresholdScore maps a raw metric value to [0, 100] by piecewise-linear
// interpolation through the anchors (0, 0), (low, 25), (medium, 50),
// (high, 75), saturating at 100 for values of twice the high threshold.
func thresholdScore(v, low, medium, high float64) float64 {
	switch {
	case v <= 0:
		return 0
	case v < low:
		return 25 * v / low
	case v < medium:
		return 25 + 25*(v-low)/(medium-low)
	case v < high:
		return 50 + 25*(v-medium)/(high-medium)
	case v < 2*high:
		return 75 + 25*(v-high)/high
	default:
		return 100
	}
}

// brightnessScore is maximal inside the optimal band and decays linearly to
// zero at the usable bounds in both directions.
func (a *Assessor) brightnessScore(mean float64) float64 {
	c := a.cfg
	switch {
	case mean >= c.BrightnessOptimalMin && mean <= c.BrightnessOptimalMax:
		return 100
	case mean < c.BrightnessUsableMin || mean > c.BrightnessUsableMax:
		return 0
	case mean < c.BrightnessOptimalMin:
		return 100 * (mean - c.BrightnessUsableMin) / (c.BrightnessOptimalMin - c.BrightnessUsableMin)
	default:
		return 100 * (c.BrightnessUsableMax - mean) / (c.BrightnessUsableMax - c.BrightnessOptimalMax)
	}
}

// resolutionScore ramps from 0 at the minimum usable short edge to 100 at
// the good short edge.
func (a *Assessor) resolutionScore(shortEdge int) float64 {
	if shortEdge <= a.cfg.ResolutionMin {
		return 0
	}
	if shortEdge >= a.cfg.ResolutionGood {
		return 100
	}
	return 100 * float64(shortEdge-a.cfg.ResolutionMin) / float64(a.cfg.ResolutionGood-a.cfg.ResolutionMin)
}

// recommendations emits a human-readable note for every weak metric plus a
// closing remark for the overall level.
func (a *Assessor) recommendations(r Report) []string {
	var recs []string
	if r.Blur < 50 {
		recs = append(recs, "the image is blurry; hold the camera steady and make sure the document is in focus")
	}
	if r.Contrast < 50 {
		recs = append(recs, "contrast is low; avoid shadows and photograph against a plain, contrasting background")
	}
	if r.Brightness < 50 {
		if m := r.Metrics["intensity_mean"]; m < a.cfg.BrightnessOptimalMin {
			recs = append(recs, "the image is too dark; retake it with more light")
		} else {
			recs = append(recs, "the image is overexposed; reduce direct light or flash glare")
		}
	}
	if r.Resolution < 50 {
		recs = append(recs, "resolution is low; move closer to the document or use a higher camera setting")
	}
	switch r.Level {
	case LevelHigh:
		recs = append(recs, "image quality is good; no enhancement needed")
	case LevelMedium:
		recs = append(recs, "image quality is acceptable; light enhancement will be applied")
	case LevelLow:
		recs = append(recs, "image quality is poor; aggressive enhancement will be applied and extraction accuracy may suffer")
	case LevelReject:
		recs = append(recs, "image quality is very poor; consider re-capturing the document")
	}
	return recs
}

// LaplacianVariance computes the variance of the 4-neighbor Laplacian
// response over a grayscale image. Low variance indicates an out-of-focus
// or motion-blurred image.
func LaplacianVariance(g *image.Gray) float64 {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 3 || h < 3 {
		return 0
	}
	n := (w - 2) * (h - 2)
	var sum, sumSq float64
	for y := 1; y < h-1; y++ {
		row := y * g.Stride
		for x := 1; x < w-1; x++ {
			i := row + x
			v := -4*float64(g.Pix[i]) +
				float64(g.Pix[i-1]) + float64(g.Pix[i+1]) +
				float64(g.Pix[i-g.Stride]) + float64(g.Pix[i+g.Stride])
			sum += v
			sumSq += v * v
		}
	}
	mean := sum / float64(n)
	variance := sumSq/float64(n) - mean*mean
	if variance < 0 {
		variance = 0
	}
	return variance
}

// String implements fmt.Stringer for diagnostics.
func (r Report) String() string {
	return fmt.Sprintf("level=%s blur=%.0f contrast=%.0f brightness=%.0f resolution=%.0f",
		r.Level, r.Blur, r.Contrast, r.Brightness, r.Resolution)
}
