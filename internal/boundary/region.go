package boundary

import (
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/scanforge/docprep/internal/geometry"
)

// Region is a detected document candidate: a quadrilateral when the contour
// reduced cleanly to four corners, otherwise an axis-aligned bounding box.
// Rectangularity is the contour area divided by the area of its minimal
// enclosing rotated rectangle.
type Region struct {
	Quad           [4]geometry.Point `json:"quad,omitempty"`
	HasQuad        bool              `json:"has_quad"`
	Box            geometry.Box      `json:"box"`
	AreaRatio      float64           `json:"area_ratio"`
	Rectangularity float64           `json:"rectangularity"`
}

// regionScore is area times rectangularity, the selection criterion among
// surviving candidates.
func regionScore(r Region, frameArea float64) float64 {
	return r.AreaRatio * frameArea * r.Rectangularity
}

// candidateFromContour filters a traced contour through the area-ratio,
// vertex-count and rectangularity gates and converts survivors to a Region.
func candidateFromContour(contour []geometry.Point, frameW, frameH int, cfg Config, minAreaRatio float64) (Region, bool) {
	if len(contour) < 3 {
		return Region{}, false
	}
	frameArea := float64(frameW * frameH)
	area := geometry.PolygonArea(contour)
	ratio := area / frameArea
	if ratio < minAreaRatio || ratio > cfg.MaxAreaRatio {
		return Region{}, false
	}

	approx := approxPolygon(contour, 0.02*contourPerimeter(contour))
	if len(approx) < cfg.MinVertices || len(approx) > cfg.MaxVertices {
		return Region{}, false
	}

	minRect := geometry.MinAreaRect(contour)
	rectArea := geometry.PolygonArea(minRect)
	if rectArea <= 0 {
		return Region{}, false
	}
	rectangularity := area / rectArea
	if rectangularity > 1 {
		rectangularity = 1
	}
	if rectangularity < cfg.MinRectangularity {
		return Region{}, false
	}

	r := Region{
		Box:            geometry.BoundingBox(contour),
		AreaRatio:      ratio,
		Rectangularity: rectangularity,
	}
	if len(approx) == 4 {
		r.Quad = geometry.OrderQuad(approx)
		r.HasQuad = true
	}
	return r, true
}

// approxPolygon runs Douglas-Peucker on a closed contour by temporarily
// splitting it at its two most distant points, mirroring how external
// contours are reduced to corner polygons.
func approxPolygon(contour []geometry.Point, epsilon float64) []geometry.Point {
	n := len(contour)
	if n <= 4 || epsilon <= 0 {
		return append([]geometry.Point(nil), contour...)
	}
	// Anchor the split at the two points farthest apart so both halves
	// carry real corners.
	ai, bi := 0, n/2
	best := -1.0
	for i := 0; i < n; i += max(n/64, 1) {
		for j := i + 1; j < n; j += max(n/64, 1) {
			if d := geometry.Dist(contour[i], contour[j]); d > best {
				best = d
				ai, bi = i, j
			}
		}
	}
	if ai > bi {
		ai, bi = bi, ai
	}
	first := append([]geometry.Point(nil), contour[ai:bi+1]...)
	second := append([]geometry.Point(nil), contour[bi:]...)
	second = append(second, contour[:ai+1]...)

	sa := geometry.SimplifyPolygon(first, epsilon)
	sb := geometry.SimplifyPolygon(second, epsilon)
	// Join halves, dropping the duplicated split points.
	out := append([]geometry.Point(nil), sa...)
	if len(sb) > 2 {
		out = append(out, sb[1:len(sb)-1]...)
	}
	return out
}

func contourPerimeter(pts []geometry.Point) float64 {
	var p float64
	for i := range pts {
		p += geometry.Dist(pts[i], pts[(i+1)%len(pts)])
	}
	return p
}

// scaleRegion maps a region from analysis coordinates back to the
// full-resolution frame.
func scaleRegion(r Region, sx, sy float64) Region {
	out := r
	out.Box = geometry.Box{
		MinX: r.Box.MinX * sx, MinY: r.Box.MinY * sy,
		MaxX: r.Box.MaxX * sx, MaxY: r.Box.MaxY * sy,
	}
	if r.HasQuad {
		for i, p := range r.Quad {
			out.Quad[i] = geometry.Point{X: p.X * sx, Y: p.Y * sy}
		}
	}
	return out
}

// extractRegion lifts a region out of the full-resolution frame: a
// perspective warp into a straight rectangle when a clean quadrilateral is
// available, otherwise an axis-aligned crop with padding.
func extractRegion(img image.Image, r Region, padding float64) image.Image {
	if r.HasQuad {
		if warped := rectifyQuad(img, r.Quad); warped != nil {
			return warped
		}
	}
	pad := math.Max(r.Box.Width(), r.Box.Height()) * padding
	rect := r.Box.Expand(pad, pad).ToRect(img.Bounds())
	if rect.Empty() {
		return img
	}
	return imaging.Crop(img, rect)
}

// rectifyQuad warps the ordered quadrilateral into a top-down rectangle
// whose dimensions come from the measured side lengths.
func rectifyQuad(img image.Image, quad [4]geometry.Point) image.Image {
	topW := geometry.Dist(quad[0], quad[1])
	bottomW := geometry.Dist(quad[3], quad[2])
	leftH := geometry.Dist(quad[0], quad[3])
	rightH := geometry.Dist(quad[1], quad[2])
	dstW := int(math.Round(math.Max(topW, bottomW)))
	dstH := int(math.Round(math.Max(leftH, rightH)))
	if dstW < 2 || dstH < 2 {
		return nil
	}
	return geometry.WarpPerspective(img, quad, dstW, dstH)
}
