package boundary

import (
	"fmt"
	"image"
	"sort"
)

// SegmentResult is the outcome of multi-document segmentation.
type SegmentResult struct {
	Images  []image.Image
	Regions []Region
	// Delegated is set when zero or one region was found and the frame was
	// handed to single-document detection instead.
	Delegated bool
	Reason    string
}

// Segmenter finds several document regions in one frame, such as two ID
// cards photographed side by side. Frames with fewer than two regions are
// delegated to the single-document detector.
type Segmenter struct {
	cfg      SegmenterConfig
	detector *Detector
}

// NewSegmenter returns a segmenter sharing the detector's contour pipeline.
func NewSegmenter(cfg SegmenterConfig, detector *Detector) *Segmenter {
	return &Segmenter{cfg: cfg, detector: detector}
}

// Apply segments the frame into individually cropped document regions,
// ordered top-to-bottom then left-to-right and capped at MaxRegions.
func (s *Segmenter) Apply(img image.Image) SegmentResult {
	if img == nil {
		return SegmentResult{Reason: "nil image"}
	}

	regions := s.detector.findCandidates(img, s.cfg.MinAreaRatio, true)
	if len(regions) < 2 {
		res := s.detector.Apply(img)
		out := SegmentResult{
			Images:    []image.Image{res.Image},
			Delegated: true,
			Reason:    fmt.Sprintf("found %d region(s); using single-document detection", len(regions)),
		}
		if res.Region != nil {
			out.Regions = []Region{*res.Region}
		}
		return out
	}

	sortRegions(regions, float64(img.Bounds().Dy())*s.cfg.RowTolerance)
	if len(regions) > s.cfg.MaxRegions {
		regions = regions[:s.cfg.MaxRegions]
	}

	images := make([]image.Image, 0, len(regions))
	for _, r := range regions {
		images = append(images, extractRegion(img, r, s.detector.Config().CropPadding))
	}
	return SegmentResult{Images: images, Regions: regions}
}

// sortRegions orders regions top-to-bottom, breaking ties left-to-right for
// regions whose vertical centers fall within rowTolerance of each other.
func sortRegions(regions []Region, rowTolerance float64) {
	sort.SliceStable(regions, func(i, j int) bool {
		yi := (regions[i].Box.MinY + regions[i].Box.MaxY) / 2
		yj := (regions[j].Box.MinY + regions[j].Box.MaxY) / 2
		if d := yi - yj; d > rowTolerance || d < -rowTolerance {
			return yi < yj
		}
		return regions[i].Box.MinX < regions[j].Box.MinX
	})
}
