package boundary

import (
	"image"

	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"

	"github.com/scanforge/docprep/internal/mempool"
	"github.com/scanforge/docprep/internal/raster"
)

// edgeMask builds a binary edge mask from an image: Gaussian blur for noise
// suppression, Sobel edge response, threshold, then morphological dilation
// to reconnect broken document outlines. The returned mask must be released
// via mempool.PutBool.
func edgeMask(img image.Image, cfg Config) ([]bool, int, int) {
	blurred := img
	if cfg.BlurSigma > 0 {
		blurred = imaging.Blur(img, cfg.BlurSigma)
	}
	edges := raster.Grayscale(effect.Sobel(blurred))
	w, h := edges.Bounds().Dx(), edges.Bounds().Dy()

	mask := mempool.GetBool(w * h)
	for y := range h {
		row := y * edges.Stride
		for x := range w {
			if edges.Pix[row+x] >= cfg.EdgeThreshold {
				mask[y*w+x] = true
			}
		}
	}

	for range max(cfg.DilateIterations, 0) {
		mask = dilateMask(mask, w, h, cfg.DilateKernel)
	}
	return mask, w, h
}

// adaptiveMask binarizes the grayscale image with an Otsu threshold,
// keeping whichever side of the threshold is the minority as foreground so
// both light-on-dark and dark-on-light documents produce usable regions.
func adaptiveMask(img image.Image) ([]bool, int, int) {
	gray := raster.Grayscale(img)
	w, h := gray.Bounds().Dx(), gray.Bounds().Dy()
	t := raster.OtsuThreshold(raster.Histogram(gray))

	bright := 0
	for _, p := range gray.Pix {
		if p > t {
			bright++
		}
	}
	foregroundBright := bright*2 <= len(gray.Pix)

	mask := mempool.GetBool(w * h)
	for y := range h {
		row := y * gray.Stride
		for x := range w {
			p := gray.Pix[row+x]
			if (foregroundBright && p > t) || (!foregroundBright && p <= t) {
				mask[y*w+x] = true
			}
		}
	}
	return mask, w, h
}

// combineMasks ORs b into a in place and releases b.
func combineMasks(a, b []bool) []bool {
	for i := range a {
		if b[i] {
			a[i] = true
		}
	}
	mempool.PutBool(b)
	return a
}

// dilateMask expands true regions of the mask with a square kernel. The
// input mask is released and a pooled replacement returned.
func dilateMask(mask []bool, w, h, kernel int) []bool {
	if kernel <= 1 {
		return mask
	}
	half := kernel / 2
	out := mempool.GetBool(w * h)
	for y := range h {
		for x := range w {
			if !mask[y*w+x] {
				continue
			}
			for ky := -half; ky <= half; ky++ {
				ny := y + ky
				if ny < 0 || ny >= h {
					continue
				}
				for kx := -half; kx <= half; kx++ {
					nx := x + kx
					if nx >= 0 && nx < w {
						out[ny*w+nx] = true
					}
				}
			}
		}
	}
	mempool.PutBool(mask)
	return out
}
