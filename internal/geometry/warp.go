package geometry

import (
	"image"
	"image/color"
	"math"
)

// WarpPerspective maps the quadrilateral srcQuad (ordered TL, TR, BR, BL)
// from src into a dstW x dstH rectangle using the inverse homography and
// bilinear sampling. Returns nil when the quad is degenerate.
func WarpPerspective(src image.Image, srcQuad [4]Point, dstW, dstH int) image.Image {
	if dstW <= 0 || dstH <= 0 {
		return nil
	}
	dst := [4]Point{
		{0, 0},
		{float64(dstW - 1), 0},
		{float64(dstW - 1), float64(dstH - 1)},
		{0, float64(dstH - 1)},
	}
	h, ok := ComputeHomography(dst, srcQuad)
	if !ok {
		return nil
	}
	sb := src.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	for y := range dstH {
		for x := range dstW {
			sx, sy := h.Apply(float64(x), float64(y))
			out.Set(x, y, bilinearSample(src, sx+float64(sb.Min.X), sy+float64(sb.Min.Y)))
		}
	}
	return out
}

// RotateBilinear rotates src by angle degrees about its center with bilinear
// interpolation, replicating edge pixels for samples outside the frame. The
// output has the same dimensions as the input; it is intended for the small
// angles used by deskew.
func RotateBilinear(src image.Image, angle float64) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 || angle == 0 {
		return src
	}
	rad := angle * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	cx, cy := float64(w-1)/2, float64(h-1)/2
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			// Inverse-map destination pixel back into the source frame.
			dx, dy := float64(x)-cx, float64(y)-cy
			sx := cos*dx + sin*dy + cx
			sy := -sin*dx + cos*dy + cy
			out.Set(x, y, bilinearSample(src, sx+float64(b.Min.X), sy+float64(b.Min.Y)))
		}
	}
	return out
}

// bilinearSample samples src at a fractional coordinate, clamping to the
// nearest edge pixel outside the bounds.
func bilinearSample(src image.Image, x, y float64) color.Color {
	b := src.Bounds()
	x = math.Max(float64(b.Min.X), math.Min(x, float64(b.Max.X-1)))
	y = math.Max(float64(b.Min.Y), math.Min(y, float64(b.Max.Y-1)))
	x0, y0 := int(x), int(y)
	x1, y1 := x0+1, y0+1
	if x1 >= b.Max.X {
		x1 = b.Max.X - 1
	}
	if y1 >= b.Max.Y {
		y1 = b.Max.Y - 1
	}
	fx, fy := x-float64(x0), y-float64(y0)
	c00 := toFloatRGBA(src.At(x0, y0))
	c10 := toFloatRGBA(src.At(x1, y0))
	c01 := toFloatRGBA(src.At(x0, y1))
	c11 := toFloatRGBA(src.At(x1, y1))
	r := lerp(lerp(c00.r, c10.r, fx), lerp(c01.r, c11.r, fx), fy)
	g := lerp(lerp(c00.g, c10.g, fx), lerp(c01.g, c11.g, fx), fy)
	bl := lerp(lerp(c00.b, c10.b, fx), lerp(c01.b, c11.b, fx), fy)
	a := lerp(lerp(c00.a, c10.a, fx), lerp(c01.a, c11.a, fx), fy)
	return color.RGBA{uint8(r + 0.5), uint8(g + 0.5), uint8(bl + 0.5), uint8(a + 0.5)}
}

type floatRGBA struct{ r, g, b, a float64 }

func toFloatRGBA(c color.Color) floatRGBA {
	r, g, b, a := c.RGBA()
	return floatRGBA{float64(r >> 8), float64(g >> 8), float64(b >> 8), float64(a >> 8)}
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }
