package boundary

import "github.com/scanforge/docprep/internal/geometry"

// traceContour extracts the outer boundary polygon of a labeled component
// using Moore-neighbor tracing, restricted to the component's bounding box.
// Collinear intermediate points are dropped as the contour is built.
func traceContour(labels []int, w, h, label int, st componentStats) []geometry.Point {
	sx, sy := findBoundaryStart(labels, w, h, label, st)
	if sx == -1 {
		return nil
	}

	pts := make([]geometry.Point, 0, 64)
	push := func(x, y int) {
		p := geometry.Point{X: float64(x), Y: float64(y)}
		if n := len(pts); n >= 2 {
			a, b := pts[n-2], pts[n-1]
			if (b.X-a.X)*(p.Y-b.Y)-(b.Y-a.Y)*(p.X-b.X) == 0 {
				pts = pts[:n-1]
			}
		}
		pts = append(pts, p)
	}

	cx, cy := sx, sy
	bx, by := sx-1, sy
	startCx, startCy, startBx, startBy := cx, cy, bx, by
	push(cx, cy)

	maxSteps := 4*w*h + 8
	for range maxSteps {
		nx, ny, nbx, nby, found := nextBoundaryPixel(labels, w, h, label, cx, cy, bx, by)
		if !found {
			break
		}
		bx, by = nbx, nby
		cx, cy = nx, ny
		if n := len(pts); n == 0 || pts[n-1].X != float64(cx) || pts[n-1].Y != float64(cy) {
			push(cx, cy)
		}
		if cx == startCx && cy == startCy && bx == startBx && by == startBy {
			break
		}
	}

	if n := len(pts); n >= 2 && pts[0] == pts[n-1] {
		pts = pts[:n-1]
	}
	return pts
}

func findBoundaryStart(labels []int, w, h, label int, st componentStats) (int, int) {
	for y := st.minY; y <= st.maxY; y++ {
		for x := st.minX; x <= st.maxX; x++ {
			if isLabel(labels, w, h, label, x, y) &&
				(!isLabel(labels, w, h, label, x+1, y) || !isLabel(labels, w, h, label, x-1, y) ||
					!isLabel(labels, w, h, label, x, y+1) || !isLabel(labels, w, h, label, x, y-1)) {
				return x, y
			}
		}
	}
	return -1, -1
}

func isLabel(labels []int, w, h, label, x, y int) bool {
	if x < 0 || y < 0 || x >= w || y >= h {
		return false
	}
	return labels[y*w+x] == label
}

// nextBoundaryPixel walks the Moore neighborhood clockwise starting after
// the backtrack direction and returns the next component pixel.
func nextBoundaryPixel(labels []int, w, h, label, cx, cy, bx, by int) (int, int, int, int, bool) {
	// 8-neighborhood clockwise: E, SE, S, SW, W, NW, N, NE.
	ndx := [8]int{1, 1, 0, -1, -1, -1, 0, 1}
	ndy := [8]int{0, 1, 1, 1, 0, -1, -1, -1}

	start := 0
	dx, dy := bx-cx, by-cy
	for i := range 8 {
		if ndx[i] == dx && ndy[i] == dy {
			start = (i + 1) % 8
			break
		}
	}

	for k := range 8 {
		i := (start + k) % 8
		tx, ty := cx+ndx[i], cy+ndy[i]
		if isLabel(labels, w, h, label, tx, ty) {
			return tx, ty, cx, cy, true
		}
		bx, by = tx, ty
	}
	return 0, 0, bx, by, false
}
