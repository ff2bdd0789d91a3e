package geometry

import "math"

// PolygonArea returns the absolute area of a simple polygon via the
// shoelace formula.
func PolygonArea(pts []Point) float64 {
	if len(pts) < 3 {
		return 0
	}
	var sum float64
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		sum += p.X*q.Y - q.X*p.Y
	}
	return math.Abs(sum) / 2
}

// SimplifyPolygon reduces the number of points in a polygon using
// Douglas-Peucker simplification with the given tolerance epsilon.
func SimplifyPolygon(pts []Point, epsilon float64) []Point {
	if len(pts) <= 3 || epsilon <= 0 {
		return append([]Point(nil), pts...)
	}
	keep := make([]bool, len(pts))
	keep[0] = true
	keep[len(pts)-1] = true
	dpSimplify(pts, 0, len(pts)-1, epsilon, keep)
	out := make([]Point, 0, len(pts))
	for i, k := range keep {
		if k {
			out = append(out, pts[i])
		}
	}
	return out
}

func dpSimplify(pts []Point, start, end int, eps float64, keep []bool) {
	if end <= start+1 {
		return
	}
	maxDist := -1.0
	index := -1
	for i := start + 1; i < end; i++ {
		d := perpendicularDistance(pts[i], pts[start], pts[end])
		if d > maxDist {
			maxDist = d
			index = i
		}
	}
	if maxDist > eps {
		dpSimplify(pts, start, index, eps, keep)
		keep[index] = true
		dpSimplify(pts, index, end, eps, keep)
	}
}

func perpendicularDistance(p, a, b Point) float64 {
	vx, vy := b.X-a.X, b.Y-a.Y
	if vx == 0 && vy == 0 {
		return Dist(p, a)
	}
	num := math.Abs((p.X-a.X)*vy - (p.Y-a.Y)*vx)
	return num / math.Hypot(vx, vy)
}

// ConvexHull computes the convex hull of pts using the monotone chain
// algorithm. The hull is returned in counter-clockwise order without
// repeating the first point.
func ConvexHull(pts []Point) []Point {
	n := len(pts)
	if n <= 1 {
		return append([]Point(nil), pts...)
	}
	p := make([]Point, n)
	copy(p, pts)
	sortByXY(p)
	p = dedupePoints(p)
	if len(p) <= 1 {
		return p
	}
	lower := halfHull(p, false)
	upper := halfHull(p, true)
	hull := make([]Point, 0, len(lower)+len(upper)-2)
	hull = append(hull, lower[:len(lower)-1]...)
	hull = append(hull, upper[:len(upper)-1]...)
	return hull
}

func halfHull(p []Point, reversed bool) []Point {
	out := make([]Point, 0, len(p))
	iter := func(i int) Point {
		if reversed {
			return p[len(p)-1-i]
		}
		return p[i]
	}
	for i := range p {
		pt := iter(i)
		for len(out) >= 2 && cross(out[len(out)-2], out[len(out)-1], pt) <= 0 {
			out = out[:len(out)-1]
		}
		out = append(out, pt)
	}
	return out
}

func sortByXY(p []Point) {
	// Insertion sort; hull inputs here are typically small contours.
	for i := 1; i < len(p); i++ {
		v := p[i]
		j := i - 1
		for j >= 0 && (p[j].X > v.X || (p[j].X == v.X && p[j].Y > v.Y)) {
			p[j+1] = p[j]
			j--
		}
		p[j+1] = v
	}
}

func dedupePoints(p []Point) []Point {
	out := p[:0]
	for i, pt := range p {
		if i == 0 || pt != p[i-1] {
			out = append(out, pt)
		}
	}
	return out
}

func cross(o, a, b Point) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

// MinAreaRect computes the minimum-area enclosing rotated rectangle of pts
// using rotating calipers over the convex hull. The four corners are
// returned in counter-clockwise order. Degenerate inputs fall back to a
// unit-thickness rectangle.
func MinAreaRect(pts []Point) []Point {
	if len(pts) == 0 {
		return nil
	}
	hull := ConvexHull(pts)
	switch len(hull) {
	case 0:
		return nil
	case 1:
		p := hull[0]
		return []Point{p, {p.X + 1, p.Y}, {p.X + 1, p.Y + 1}, {p.X, p.Y + 1}}
	case 2:
		a, b := hull[0], hull[1]
		return []Point{a, b, {b.X, b.Y + 1}, {a.X, a.Y + 1}}
	}

	bestArea := math.Inf(1)
	var bu, bv Point
	var bMinS, bMaxS, bMinT, bMaxT float64
	for i := range hull {
		a := hull[i]
		b := hull[(i+1)%len(hull)]
		dx, dy := b.X-a.X, b.Y-a.Y
		l := math.Hypot(dx, dy)
		if l == 0 {
			continue
		}
		ux, uy := dx/l, dy/l
		vx, vy := -uy, ux
		minS, maxS := math.Inf(1), math.Inf(-1)
		minT, maxT := math.Inf(1), math.Inf(-1)
		for _, p := range hull {
			s := p.X*ux + p.Y*uy
			t := p.X*vx + p.Y*vy
			minS = math.Min(minS, s)
			maxS = math.Max(maxS, s)
			minT = math.Min(minT, t)
			maxT = math.Max(maxT, t)
		}
		area := (maxS - minS) * (maxT - minT)
		if area < bestArea {
			bestArea = area
			bu, bv = Point{ux, uy}, Point{vx, vy}
			bMinS, bMaxS, bMinT, bMaxT = minS, maxS, minT, maxT
		}
	}
	corner := func(s, t float64) Point {
		return Point{X: bu.X*s + bv.X*t, Y: bu.Y*s + bv.Y*t}
	}
	return []Point{corner(bMinS, bMinT), corner(bMaxS, bMinT), corner(bMaxS, bMaxT), corner(bMinS, bMaxT)}
}

// MinAreaRectAngle returns the orientation of the minimum-area rectangle's
// longer side in degrees, normalized to (-45, 45]. Small magnitudes
// correspond to nearly axis-aligned content.
func MinAreaRectAngle(rect []Point) float64 {
	if len(rect) != 4 {
		return 0
	}
	e0 := Dist(rect[0], rect[1])
	e1 := Dist(rect[1], rect[2])
	var dx, dy float64
	if e0 >= e1 {
		dx, dy = rect[1].X-rect[0].X, rect[1].Y-rect[0].Y
	} else {
		dx, dy = rect[2].X-rect[1].X, rect[2].Y-rect[1].Y
	}
	angle := math.Atan2(dy, dx) * 180 / math.Pi
	for angle <= -45 {
		angle += 90
	}
	for angle > 45 {
		angle -= 90
	}
	return angle
}

// OrderQuad orders four corner points as top-left, top-right, bottom-right,
// bottom-left using the coordinate sum/difference heuristic.
func OrderQuad(pts []Point) [4]Point {
	var out [4]Point
	if len(pts) != 4 {
		return out
	}
	minSum, maxSum := math.Inf(1), math.Inf(-1)
	minDiff, maxDiff := math.Inf(1), math.Inf(-1)
	for _, p := range pts {
		sum := p.X + p.Y
		diff := p.Y - p.X
		if sum < minSum {
			minSum = sum
			out[0] = p // top-left
		}
		if sum > maxSum {
			maxSum = sum
			out[2] = p // bottom-right
		}
		if diff < minDiff {
			minDiff = diff
			out[1] = p // top-right
		}
		if diff > maxDiff {
			maxDiff = diff
			out[3] = p // bottom-left
		}
	}
	return out
}
