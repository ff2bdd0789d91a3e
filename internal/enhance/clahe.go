package enhance

import (
	"fmt"
	"image"
	"image/color"
)

// CLAHEConfig controls contrast-limited adaptive histogram equalization.
type CLAHEConfig struct {
	// GridSize is the number of tiles per axis.
	GridSize int `mapstructure:"grid_size" yaml:"grid_size"`
	// ClipLimit caps each histogram bin at ClipLimit times the uniform bin
	// height before the cumulative mapping is built.
	ClipLimit float64 `mapstructure:"clip_limit" yaml:"clip_limit"`
}

// CLAHE equalizes local contrast on the luminance channel only, leaving
// chrominance untouched so colors do not shift. Each tile gets a
// clip-limited histogram mapping and pixels blend the four surrounding
// tile mappings bilinearly to avoid visible tile seams.
func CLAHE(img image.Image, cfg CLAHEConfig) Result {
	if img == nil {
		return skipped(img, "nil image")
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if cfg.GridSize < 2 || cfg.ClipLimit <= 1 {
		return skipped(img, "contrast equalization disabled")
	}
	if w < cfg.GridSize*4 || h < cfg.GridSize*4 {
		return skipped(img, fmt.Sprintf("image %dx%d too small for %dx%d tile grid", w, h, cfg.GridSize, cfg.GridSize))
	}

	// Split into luminance plus chrominance once up front.
	yp := make([]uint8, w*h)
	cb := make([]uint8, w*h)
	cr := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			py, pcb, pcr := color.RGBToYCbCr(uint8(r>>8), uint8(g>>8), uint8(bl>>8))
			i := y*w + x
			yp[i], cb[i], cr[i] = py, pcb, pcr
		}
	}

	luts := tileMappings(yp, w, h, cfg)

	gs := cfg.GridSize
	tileW := float64(w) / float64(gs)
	tileH := float64(h) / float64(gs)
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		// Fractional tile coordinates of the pixel center, shifted so tile
		// centers sit at integer positions.
		ty := (float64(y)+0.5)/tileH - 0.5
		t0y, fy := splitTileCoord(ty, gs)
		for x := 0; x < w; x++ {
			tx := (float64(x)+0.5)/tileW - 0.5
			t0x, fx := splitTileCoord(tx, gs)

			v := yp[y*w+x]
			v00 := float64(luts[t0y*gs+t0x][v])
			v10 := float64(luts[t0y*gs+min(t0x+1, gs-1)][v])
			v01 := float64(luts[min(t0y+1, gs-1)*gs+t0x][v])
			v11 := float64(luts[min(t0y+1, gs-1)*gs+min(t0x+1, gs-1)][v])
			eq := (v00*(1-fx)+v10*fx)*(1-fy) + (v01*(1-fx)+v11*fx)*fy

			i := y*w + x
			r, g, bl := color.YCbCrToRGB(uint8(clamp255(eq)), cb[i], cr[i])
			o := out.PixOffset(x, y)
			out.Pix[o+0] = r
			out.Pix[o+1] = g
			out.Pix[o+2] = bl
			out.Pix[o+3] = 0xff
		}
	}
	return Result{Image: out, Applied: true}
}

// tileMappings builds one clip-limited equalization LUT per grid tile.
func tileMappings(yp []uint8, w, h int, cfg CLAHEConfig) [][256]uint8 {
	gs := cfg.GridSize
	luts := make([][256]uint8, gs*gs)
	for ty := 0; ty < gs; ty++ {
		y0 := ty * h / gs
		y1 := (ty + 1) * h / gs
		for tx := 0; tx < gs; tx++ {
			x0 := tx * w / gs
			x1 := (tx + 1) * w / gs

			var hist [256]int
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					hist[yp[y*w+x]]++
				}
			}
			n := (y1 - y0) * (x1 - x0)
			clipHistogram(&hist, n, cfg.ClipLimit)

			// Cumulative mapping scaled to the full 0..255 range.
			cum := 0
			for v := 0; v < 256; v++ {
				cum += hist[v]
				luts[ty*gs+tx][v] = uint8(clamp255(float64(cum) * 255 / float64(n)))
			}
		}
	}
	return luts
}

// clipHistogram caps bins at clipLimit times the uniform height and
// redistributes the excess evenly across all bins.
func clipHistogram(hist *[256]int, n int, clipLimit float64) {
	limit := int(clipLimit * float64(n) / 256)
	if limit < 1 {
		limit = 1
	}
	excess := 0
	for v := range hist {
		if hist[v] > limit {
			excess += hist[v] - limit
			hist[v] = limit
		}
	}
	share := excess / 256
	rem := excess % 256
	for v := range hist {
		hist[v] += share
		if v < rem {
			hist[v]++
		}
	}
}

// splitTileCoord separates a fractional tile coordinate into the lower tile
// index and the interpolation weight, clamping at the grid border.
func splitTileCoord(t float64, gs int) (int, float64) {
	if t < 0 {
		return 0, 0
	}
	i := int(t)
	if i >= gs-1 {
		return gs - 1, 0
	}
	return i, t - float64(i)
}

func clamp255(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
