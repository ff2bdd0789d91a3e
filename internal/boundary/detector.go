package boundary

import (
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/scanforge/docprep/internal/mempool"
)

// Result is the outcome of boundary detection on one frame. When no contour
// survives filtering the input image is passed through unchanged with
// Cropped=false and a reason; detection never fails hard.
type Result struct {
	Image   image.Image
	Cropped bool
	Region  *Region
	Reason  string
}

// Detector finds the single dominant document region in a frame. It is
// stateless and safe for concurrent use.
type Detector struct {
	cfg Config
}

// NewDetector returns a detector with the given configuration.
func NewDetector(cfg Config) *Detector { return &Detector{cfg: cfg} }

// Config returns the detector configuration.
func (d *Detector) Config() Config { return d.cfg }

// Apply isolates the dominant document region and rectifies or crops it.
func (d *Detector) Apply(img image.Image) Result {
	if img == nil {
		return Result{Reason: "nil image"}
	}
	if !d.cfg.Enabled {
		return Result{Image: img, Reason: "boundary detection disabled"}
	}

	candidates := d.findCandidates(img, d.cfg.MinAreaRatio, false)
	if len(candidates) == 0 {
		return Result{Image: img, Reason: "no document-shaped contour found"}
	}

	b := img.Bounds()
	frameArea := float64(b.Dx() * b.Dy())
	best := candidates[0]
	for _, c := range candidates[1:] {
		if regionScore(c, frameArea) > regionScore(best, frameArea) {
			best = c
		}
	}

	out := extractRegion(img, best, d.cfg.CropPadding)
	region := best
	return Result{Image: out, Cropped: true, Region: &region}
}

// findCandidates runs the contour pipeline at analysis scale and returns
// surviving regions in full-resolution coordinates. withAdaptive adds an
// Otsu foreground mask to the edge mask for robustness to uneven lighting.
func (d *Detector) findCandidates(img image.Image, minAreaRatio float64, withAdaptive bool) []Region {
	small := img
	b := img.Bounds()
	if b.Dx() > d.cfg.AnalysisMaxDim || b.Dy() > d.cfg.AnalysisMaxDim {
		small = imaging.Fit(img, d.cfg.AnalysisMaxDim, d.cfg.AnalysisMaxDim, imaging.Linear)
	}

	mask, w, h := edgeMask(small, d.cfg)
	if withAdaptive {
		am, _, _ := adaptiveMask(small)
		mask = combineMasks(mask, am)
	}
	defer mempool.PutBool(mask)

	// A document outline in the edge mask is a thin loop carrying roughly
	// perimeter-many pixels, so the component floor scales with the
	// perimeter of the smallest admissible region, not its area.
	minPixels := int(2 * math.Sqrt(minAreaRatio*float64(w*h)))
	stats, kept, labels := connectedComponents(mask, w, h, minPixels)

	sx := float64(b.Dx()) / float64(w)
	sy := float64(b.Dy()) / float64(h)

	var regions []Region
	for i, st := range stats {
		contour := traceContour(labels, w, h, kept[i], st)
		if len(contour) < 4 {
			continue
		}
		r, ok := candidateFromContour(contour, w, h, d.cfg, minAreaRatio)
		if !ok {
			continue
		}
		regions = append(regions, scaleRegion(r, sx, sy))
	}
	return regions
}
