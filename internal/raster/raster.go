// Package raster provides decoding, encoding and pixel-level helpers shared
// by all pipeline stages. The common currency between stages is the standard
// library image.Image; every stage consumes one image and produces a new one.
package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"math"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DecodeError reports that the input bytes could not be decoded as an image.
// It is the only failure in the pipeline that is surfaced to callers as a
// named outcome; everything downstream fails open instead.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("raster: decode failed: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Metadata captures lightweight information about a decoded image.
type Metadata struct {
	Format      string  `json:"format"`
	MediaType   string  `json:"media_type"`
	SizeBytes   int     `json:"size_bytes"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	AspectRatio float64 `json:"aspect_ratio"`
}

// mediaTypes maps the format names reported by image.Decode to media types.
var mediaTypes = map[string]string{
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"webp": "image/webp",
	"tiff": "image/tiff",
}

// MediaTypeForFormat returns the media type for a decoder format name,
// or application/octet-stream if the format is unknown.
func MediaTypeForFormat(format string) string {
	if mt, ok := mediaTypes[format]; ok {
		return mt
	}
	return "application/octet-stream"
}

// Decode decodes raw image bytes into an image plus metadata. Malformed or
// unsupported input returns a *DecodeError.
func Decode(data []byte) (image.Image, Metadata, error) {
	if len(data) == 0 {
		return nil, Metadata{}, &DecodeError{Err: fmt.Errorf("empty input")}
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, Metadata{}, &DecodeError{Err: err}
	}
	b := img.Bounds()
	meta := Metadata{
		Format:      format,
		MediaType:   MediaTypeForFormat(format),
		SizeBytes:   len(data),
		Width:       b.Dx(),
		Height:      b.Dy(),
		AspectRatio: float64(b.Dx()) / float64(b.Dy()),
	}
	return img, meta, nil
}

// EncodeJPEG encodes img as JPEG at the given quality (1-100).
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	if img == nil {
		return nil, fmt.Errorf("raster: encode: nil image")
	}
	if quality < 1 {
		quality = 1
	}
	if quality > 100 {
		quality = 100
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("raster: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Flatten composites img over an opaque white background, removing any alpha
// channel or palette so the result is safe to encode with a lossy codec.
func Flatten(img image.Image) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Over)
	return out
}

// Grayscale converts img to an 8-bit grayscale image using Rec. 601 luminance
// weights, matching the weighting used throughout the analysis stages.
func Grayscale(img image.Image) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			lum := 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(bl>>8)
			out.SetGray(x-b.Min.X, y-b.Min.Y, color.Gray{Y: uint8(lum + 0.5)})
		}
	}
	return out
}

// GrayStats returns the mean and standard deviation of pixel intensities.
func GrayStats(g *image.Gray) (mean, stddev float64) {
	n := len(g.Pix)
	if n == 0 {
		return 0, 0
	}
	var sum, sumSq float64
	for _, p := range g.Pix {
		v := float64(p)
		sum += v
		sumSq += v * v
	}
	mean = sum / float64(n)
	variance := sumSq/float64(n) - mean*mean
	if variance < 0 {
		variance = 0
	}
	stddev = math.Sqrt(variance)
	return mean, stddev
}

// Histogram returns the 256-bin intensity histogram of a grayscale image.
func Histogram(g *image.Gray) [256]int {
	var h [256]int
	for _, p := range g.Pix {
		h[p]++
	}
	return h
}

// OtsuThreshold computes a global binarization threshold from an intensity
// histogram by maximizing between-class variance.
func OtsuThreshold(hist [256]int) uint8 {
	total := 0
	for _, c := range hist {
		total += c
	}
	if total == 0 {
		return 128
	}
	var sumAll float64
	for i, c := range hist {
		sumAll += float64(i) * float64(c)
	}
	var sumB, wB float64
	bestVar := -1.0
	best := 128
	for t := range 256 {
		wB += float64(hist[t])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(t) * float64(hist[t])
		mB := sumB / wB
		mF := (sumAll - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > bestVar {
			bestVar = between
			best = t
		}
	}
	return uint8(best)
}
