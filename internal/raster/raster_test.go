package raster

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scanforge/docprep/internal/testutil"
)

func TestDecode_PNG(t *testing.T) {
	data := testutil.EncodePNG(t, testutil.Uniform(32, 16, color.White))

	img, meta, err := Decode(data)
	require.NoError(t, err)
	require.NotNil(t, img)
	assert.Equal(t, "png", meta.Format)
	assert.Equal(t, "image/png", meta.MediaType)
	assert.Equal(t, 32, meta.Width)
	assert.Equal(t, 16, meta.Height)
	assert.Equal(t, len(data), meta.SizeBytes)
	assert.InDelta(t, 2.0, meta.AspectRatio, 1e-9)
}

func TestDecode_JPEG(t *testing.T) {
	data := testutil.EncodeJPEG(t, testutil.Uniform(10, 10, color.Black), 90)

	_, meta, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", meta.Format)
	assert.Equal(t, "image/jpeg", meta.MediaType)
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"garbage", []byte("definitely not an image")},
		{"truncated png header", []byte{0x89, 0x50, 0x4e}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Decode(tt.data)
			require.Error(t, err)
			var de *DecodeError
			assert.True(t, errors.As(err, &de))
		})
	}
}

func TestMediaTypeForFormat(t *testing.T) {
	assert.Equal(t, "image/webp", MediaTypeForFormat("webp"))
	assert.Equal(t, "application/octet-stream", MediaTypeForFormat("xpm"))
}

func TestEncodeJPEG_RoundTrip(t *testing.T) {
	data, err := EncodeJPEG(testutil.Uniform(20, 20, color.White), 85)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	img, meta, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", meta.Format)
	assert.Equal(t, 20, img.Bounds().Dx())
}

func TestEncodeJPEG_NilImage(t *testing.T) {
	_, err := EncodeJPEG(nil, 85)
	assert.Error(t, err)
}

func TestFlatten_CompositesOverWhite(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	// Fully transparent image flattens to white.
	out := Flatten(src)
	r, g, b, a := out.At(1, 1).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0xffff), g)
	assert.Equal(t, uint32(0xffff), b)
	assert.Equal(t, uint32(0xffff), a)
}

func TestGrayscale_KnownValues(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 1))
	src.Set(0, 0, color.RGBA{255, 0, 0, 255})
	src.Set(1, 0, color.RGBA{0, 255, 0, 255})
	src.Set(2, 0, color.RGBA{0, 0, 255, 255})

	g := Grayscale(src)
	assert.Equal(t, uint8(76), g.GrayAt(0, 0).Y)  // 0.299 * 255
	assert.Equal(t, uint8(150), g.GrayAt(1, 0).Y) // 0.587 * 255
	assert.Equal(t, uint8(29), g.GrayAt(2, 0).Y)  // 0.114 * 255
}

func TestGrayStats(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 2, 1))
	g.Pix[0] = 0
	g.Pix[1] = 200

	mean, stddev := GrayStats(g)
	assert.InDelta(t, 100, mean, 1e-9)
	assert.InDelta(t, 100, stddev, 1e-9)
}

func TestOtsuThreshold_Bimodal(t *testing.T) {
	var hist [256]int
	hist[40] = 500
	hist[200] = 500

	th := OtsuThreshold(hist)
	assert.GreaterOrEqual(t, th, uint8(40))
	assert.Less(t, th, uint8(200))
}

func TestOtsuThreshold_EmptyHistogram(t *testing.T) {
	var hist [256]int
	assert.Equal(t, uint8(128), OtsuThreshold(hist))
}
