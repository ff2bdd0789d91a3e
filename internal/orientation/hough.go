package orientation

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/effect"

	"github.com/scanforge/docprep/internal/raster"
)

// Line is a straight line in Hesse normal form: theta is the angle of the
// normal in degrees [0, 180), rho the signed distance from the origin.
type Line struct {
	Theta float64
	Rho   float64
	Votes int
}

const (
	houghThetaStep = 1.0 // degrees per accumulator bin
	houghRhoStep   = 2.0 // pixels per accumulator bin
	edgeThreshold  = 96  // Sobel magnitude above which a pixel is an edge
	maxLines       = 200
)

// detectLines extracts straight line segments from an image using Sobel
// edge detection followed by a Hough transform. Peaks are local maxima in
// the accumulator above a vote threshold scaled to the image size.
func detectLines(img image.Image) []Line {
	gray := raster.Grayscale(effect.Sobel(img))
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 8 || h < 8 {
		return nil
	}

	nTheta := int(180 / houghThetaStep)
	maxRho := math.Hypot(float64(w), float64(h))
	nRho := int(2*maxRho/houghRhoStep) + 1
	acc := make([]int, nTheta*nRho)

	sins := make([]float64, nTheta)
	coss := make([]float64, nTheta)
	for t := range nTheta {
		rad := float64(t) * houghThetaStep * math.Pi / 180
		sins[t] = math.Sin(rad)
		coss[t] = math.Cos(rad)
	}

	for y := range h {
		row := y * gray.Stride
		for x := range w {
			if gray.Pix[row+x] < edgeThreshold {
				continue
			}
			for t := range nTheta {
				rho := float64(x)*coss[t] + float64(y)*sins[t]
				r := int((rho + maxRho) / houghRhoStep)
				if r >= 0 && r < nRho {
					acc[t*nRho+r]++
				}
			}
		}
	}

	minVotes := min(w, h) / 4
	if minVotes < 30 {
		minVotes = 30
	}

	var lines []Line
	for t := range nTheta {
		for r := range nRho {
			v := acc[t*nRho+r]
			if v < minVotes || !isAccumulatorPeak(acc, nTheta, nRho, t, r) {
				continue
			}
			lines = append(lines, Line{
				Theta: float64(t) * houghThetaStep,
				Rho:   float64(r)*houghRhoStep - maxRho,
				Votes: v,
			})
			if len(lines) >= maxLines {
				return lines
			}
		}
	}
	return lines
}

// isAccumulatorPeak reports whether cell (t, r) is a strict local maximum in
// its 3x3 neighborhood. Theta wraps around at 180 degrees.
func isAccumulatorPeak(acc []int, nTheta, nRho, t, r int) bool {
	v := acc[t*nRho+r]
	for dt := -1; dt <= 1; dt++ {
		for dr := -1; dr <= 1; dr++ {
			if dt == 0 && dr == 0 {
				continue
			}
			nt := (t + dt + nTheta) % nTheta
			nr := r + dr
			if nr < 0 || nr >= nRho {
				continue
			}
			n := acc[nt*nRho+nr]
			if n > v || (n == v && (dt < 0 || (dt == 0 && dr < 0))) {
				return false
			}
		}
	}
	return true
}
