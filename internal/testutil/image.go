// Package testutil generates synthetic document photos for tests: text
// pages, skewed and rotated variants, documents on cluttered backgrounds
// and multi-document frames.
package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"math/rand"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Uniform returns a solid-color image.
func Uniform(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{c}, image.Point{}, draw.Src)
	return img
}

// TextPage returns a light-gray page filled with lines of dark text, sharp
// and well-contrasted, with a mean intensity inside the optimal exposure
// band.
func TextPage(width, height int) *image.RGBA {
	return TextPageColors(width, height, color.RGBA{175, 175, 175, 255}, color.RGBA{24, 24, 24, 255})
}

// TextPageColors returns a page of text lines in the given background and
// ink colors, for simulating washed-out or inverted captures.
func TextPageColors(width, height int, background, ink color.Color) *image.RGBA {
	img := Uniform(width, height, background)
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(ink),
		Face: basicfont.Face7x13,
	}
	lineHeight := basicfont.Face7x13.Metrics().Height.Ceil() + 6
	margin := width / 10
	line := "the quick brown fox jumps over the lazy dog 0123456789"
	for y := margin; y < height-margin; y += lineHeight {
		drawer.Dot = fixed.P(margin, y)
		drawer.DrawString(line)
	}
	return img
}

// BlurredTextPage returns a text page blurred beyond legibility.
func BlurredTextPage(width, height int, sigma float64) image.Image {
	return imaging.Blur(TextPage(width, height), sigma)
}

// SkewedTextPage returns a text page rotated by a small angle, padded with
// the page background so no dark corners appear.
func SkewedTextPage(width, height int, angle float64) image.Image {
	return imaging.Rotate(TextPage(width, height), angle, color.RGBA{175, 175, 175, 255})
}

// VerticalLinePage returns a white page covered in long dark vertical
// strokes, the signature of a text document photographed sideways.
func VerticalLinePage(width, height int) *image.RGBA {
	img := Uniform(width, height, color.White)
	margin := height / 10
	for x := width / 8; x < width-width/8; x += width / 12 {
		for y := margin; y < height-margin; y++ {
			for t := range 3 {
				img.Set(x+t, y, color.RGBA{16, 16, 16, 255})
			}
		}
	}
	return img
}

// DocumentOnClutter draws a bright document rectangle covering roughly
// areaRatio of the frame on a busy multi-color background.
func DocumentOnClutter(width, height int, areaRatio float64) *image.RGBA {
	rng := rand.New(rand.NewSource(42))
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	// Cluttered background: random colored patches covering nearly the
	// whole frame.
	for range 200 {
		w := rng.Intn(width/4) + 8
		h := rng.Intn(height/4) + 8
		x := rng.Intn(width)
		y := rng.Intn(height)
		c := color.RGBA{uint8(rng.Intn(200)), uint8(rng.Intn(200)), uint8(rng.Intn(200)), 255}
		draw.Draw(img, image.Rect(x, y, x+w, y+h), &image.Uniform{c}, image.Point{}, draw.Src)
	}

	rect := centeredRect(width, height, areaRatio)
	// Drop shadow around the page, as a phone photo would show.
	shadow := max(width, height) / 50
	draw.Draw(img, rect.Inset(-shadow), &image.Uniform{color.RGBA{22, 22, 26, 255}}, image.Point{}, draw.Src)
	draw.Draw(img, rect, &image.Uniform{color.RGBA{245, 245, 240, 255}}, image.Point{}, draw.Src)

	// A few text-like strokes so the document interior is not uniform.
	for y := rect.Min.Y + rect.Dy()/6; y < rect.Max.Y-rect.Dy()/6; y += rect.Dy() / 10 {
		draw.Draw(img,
			image.Rect(rect.Min.X+rect.Dx()/10, y, rect.Max.X-rect.Dx()/10, y+2),
			&image.Uniform{color.RGBA{40, 40, 40, 255}}, image.Point{}, draw.Src)
	}
	return img
}

// TwoDocuments draws two spatially separated bright rectangles, each
// covering roughly areaRatio of the frame, side by side on a dark
// background.
func TwoDocuments(width, height int, areaRatio float64) *image.RGBA {
	img := Uniform(width, height, color.RGBA{30, 45, 60, 255})

	docW, docH := rectDims(width, height, areaRatio)
	gap := (width - 2*docW) / 3
	y0 := (height - docH) / 2
	for i := range 2 {
		x0 := gap + i*(docW+gap)
		draw.Draw(img, image.Rect(x0, y0, x0+docW, y0+docH),
			&image.Uniform{color.RGBA{240, 238, 230, 255}}, image.Point{}, draw.Src)
	}
	return img
}

// centeredRect returns a centered rectangle covering areaRatio of the frame
// at a 3:2 aspect.
func centeredRect(width, height int, areaRatio float64) image.Rectangle {
	w, h := rectDims(width, height, areaRatio)
	x0 := (width - w) / 2
	y0 := (height - h) / 2
	return image.Rect(x0, y0, x0+w, y0+h)
}

func rectDims(width, height int, areaRatio float64) (int, int) {
	area := areaRatio * float64(width*height)
	// 3:2 landscape aspect.
	h := intSqrt(area / 1.5)
	w := int(1.5 * float64(h))
	if w >= width {
		w = width - 2
	}
	if h >= height {
		h = height - 2
	}
	return w, h
}

func intSqrt(v float64) int {
	n := 1
	for n*n < int(v) {
		n++
	}
	return n
}

// EncodePNG encodes img as PNG bytes.
func EncodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// EncodeJPEG encodes img as JPEG bytes at the given quality.
func EncodeJPEG(t *testing.T, img image.Image, quality int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}))
	return buf.Bytes()
}
