// Package orientation corrects 0/90/180/270 degree rotation of document
// photos. Embedded orientation metadata is authoritative when present; a
// conservative line-direction analysis is used as fallback. The corrector
// never rotates below its confidence thresholds: leaving a rotated image
// untouched is preferred over mis-rotating a correct one.
package orientation

import (
	"image"

	"github.com/disintegration/imaging"
)

// Config controls orientation correction behavior.
type Config struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Line-analysis fallback thresholds.
	MinLineCount      int     `mapstructure:"min_line_count" yaml:"min_line_count"`
	MinVerticalLines  int     `mapstructure:"min_vertical_lines" yaml:"min_vertical_lines"`
	VerticalDominance float64 `mapstructure:"vertical_dominance" yaml:"vertical_dominance"`
	AngleTolerance    float64 `mapstructure:"angle_tolerance" yaml:"angle_tolerance"`

	// Long edge the image is scaled to before line analysis.
	AnalysisMaxDim int `mapstructure:"analysis_max_dim" yaml:"analysis_max_dim"`
}

// DefaultConfig provides sensible defaults.
func DefaultConfig() Config {
	return Config{
		Enabled:           true,
		MinLineCount:      5,
		MinVerticalLines:  4,
		VerticalDominance: 1.5,
		AngleTolerance:    20,
		AnalysisMaxDim:    640,
	}
}

// Source identifies how the rotation decision was made.
type Source string

const (
	SourceNone     Source = "none"
	SourceMetadata Source = "metadata"
	SourceLines    Source = "lines"
)

// Result is the outcome of orientation correction.
type Result struct {
	Image   image.Image
	Angle   int // rotation applied, one of 0, 90, 180, 270
	Applied bool
	Source  Source
	Reason  string
}

// Corrector detects and corrects coarse rotation. It is stateless and safe
// for concurrent use.
type Corrector struct {
	cfg Config
}

// NewCorrector returns a corrector with the given configuration.
func NewCorrector(cfg Config) *Corrector { return &Corrector{cfg: cfg} }

// Correct returns img rotated upright. raw is the original encoded buffer
// and is consulted for an embedded orientation tag before any content
// analysis; pass nil to force content-based detection.
func (c *Corrector) Correct(raw []byte, img image.Image) Result {
	if img == nil {
		return Result{Reason: "nil image"}
	}
	if !c.cfg.Enabled {
		return Result{Image: img, Source: SourceNone, Reason: "orientation disabled"}
	}

	if tag, ok := exifOrientation(raw); ok && tag != orientTopLeft {
		out, angle := applyExifOrientation(img, tag)
		return Result{Image: out, Angle: angle, Applied: true, Source: SourceMetadata}
	}

	return c.correctFromContent(img)
}

// correctFromContent runs the line-direction fallback: extract straight
// line segments, classify them as horizontal or vertical, and rotate only
// when vertical lines clearly dominate.
func (c *Corrector) correctFromContent(img image.Image) Result {
	small := imaging.Fit(img, c.cfg.AnalysisMaxDim, c.cfg.AnalysisMaxDim, imaging.Linear)
	lines := detectLines(small)
	if len(lines) < c.cfg.MinLineCount {
		return Result{
			Image:  img,
			Source: SourceNone,
			Reason: "too few line segments for orientation analysis",
		}
	}

	horizontal, vertical := 0, 0
	for _, ln := range lines {
		switch classifyLine(ln.Theta, c.cfg.AngleTolerance) {
		case lineHorizontal:
			horizontal++
		case lineVertical:
			vertical++
		}
	}

	if vertical >= c.cfg.MinVerticalLines &&
		float64(vertical) > float64(horizontal)*c.cfg.VerticalDominance {
		return Result{
			Image:   imaging.Rotate90(img),
			Angle:   90,
			Applied: true,
			Source:  SourceLines,
		}
	}

	return Result{Image: img, Source: SourceLines, Reason: "no dominant vertical line direction"}
}

type lineClass int

const (
	lineOther lineClass = iota
	lineHorizontal
	lineVertical
)

// classifyLine buckets a Hough line by the direction it runs in the image.
// theta is the angle of the line's normal in degrees [0, 180). A normal
// near 90 means the line itself runs horizontally; a normal near 0 or 180
// means it runs vertically.
func classifyLine(theta, tolerance float64) lineClass {
	switch {
	case theta >= 90-tolerance && theta <= 90+tolerance:
		return lineHorizontal
	case theta <= tolerance || theta >= 180-tolerance:
		return lineVertical
	default:
		return lineOther
	}
}
