package enhance

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scanforge/docprep/internal/raster"
	"github.com/scanforge/docprep/internal/testutil"
)

// lowContrastPage draws text at a murky 30-level separation from its
// background, the kind of washed-out photo local equalization exists for.
func lowContrastPage(width, height int) image.Image {
	return testutil.TextPageColors(width, height, color.Gray{Y: 140}, color.Gray{Y: 110})
}

func TestCLAHE_RaisesLocalContrast(t *testing.T) {
	img := lowContrastPage(400, 400)
	_, before := raster.GrayStats(raster.Grayscale(img))

	// A high clip limit makes the stretch decisive.
	res := CLAHE(img, CLAHEConfig{GridSize: 4, ClipLimit: 64})
	require.True(t, res.Applied, "reason: %s", res.Reason)
	assert.Equal(t, img.Bounds().Dx(), res.Image.Bounds().Dx())
	assert.Equal(t, img.Bounds().Dy(), res.Image.Bounds().Dy())

	_, after := raster.GrayStats(raster.Grayscale(res.Image))
	assert.Greater(t, after, before)
}

func TestCLAHE_DefaultConfigApplies(t *testing.T) {
	res := CLAHE(lowContrastPage(320, 320), DefaultConfig().CLAHE)
	require.True(t, res.Applied)
}

func TestCLAHE_Skips(t *testing.T) {
	img := testutil.Uniform(64, 64, color.White)

	tests := []struct {
		name string
		cfg  CLAHEConfig
	}{
		{"grid too coarse", CLAHEConfig{GridSize: 1, ClipLimit: 2.5}},
		{"clip limit off", CLAHEConfig{GridSize: 8, ClipLimit: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := CLAHE(img, tt.cfg)
			assert.False(t, res.Applied)
			assert.Same(t, img, res.Image)
			assert.NotEmpty(t, res.Reason)
		})
	}

	t.Run("image smaller than tile grid", func(t *testing.T) {
		tiny := testutil.Uniform(20, 20, color.White)
		res := CLAHE(tiny, DefaultConfig().CLAHE)
		assert.False(t, res.Applied)
		assert.Same(t, tiny, res.Image)
	})

	t.Run("nil image", func(t *testing.T) {
		res := CLAHE(nil, DefaultConfig().CLAHE)
		assert.False(t, res.Applied)
	})
}

func TestClipHistogram_PreservesMassAndCapsBins(t *testing.T) {
	var hist [256]int
	n := 2560
	hist[100] = n

	clipHistogram(&hist, n, 2.0)

	limit := int(2.0 * float64(n) / 256)
	total := 0
	for _, c := range hist {
		total += c
	}
	assert.Equal(t, n, total, "clipping must preserve total mass")
	// Every bin received an even share of the redistributed excess, and the
	// spike is capped at the limit plus its own share.
	assert.Greater(t, hist[0], 0)
	assert.Greater(t, hist[255], 0)
	assert.LessOrEqual(t, hist[100], limit+hist[0]+1)
}

func TestSplitTileCoord(t *testing.T) {
	i, f := splitTileCoord(-0.3, 8)
	assert.Equal(t, 0, i)
	assert.Zero(t, f)

	i, f = splitTileCoord(2.4, 8)
	assert.Equal(t, 2, i)
	assert.InDelta(t, 0.4, f, 1e-9)

	i, f = splitTileCoord(7.2, 8)
	assert.Equal(t, 7, i)
	assert.Zero(t, f)
}

func TestDenoise_RemovesSpeckle(t *testing.T) {
	img := testutil.Uniform(64, 64, color.Gray{Y: 128})
	for _, p := range [][2]int{{10, 10}, {20, 35}, {40, 12}, {50, 50}} {
		img.Set(p[0], p[1], color.White)
	}

	res := Denoise(img, DenoiseConfig{Radius: 1})
	require.True(t, res.Applied)

	gray := raster.Grayscale(res.Image)
	for _, p := range [][2]int{{10, 10}, {20, 35}, {40, 12}, {50, 50}} {
		assert.InDelta(t, 128, gray.GrayAt(p[0], p[1]).Y, 3, "speckle at %v survived", p)
	}
}

func TestDenoise_DisabledRadius(t *testing.T) {
	img := testutil.Uniform(16, 16, color.White)
	res := Denoise(img, DenoiseConfig{Radius: 0})
	assert.False(t, res.Applied)
	assert.Same(t, img, res.Image)
}

func TestSharpen_RaisesEdgeContrast(t *testing.T) {
	img := testutil.BlurredTextPage(320, 240, 2)
	_, before := raster.GrayStats(raster.Grayscale(img))

	res := Sharpen(img, DefaultConfig().Sharpen)
	require.True(t, res.Applied)
	assert.Equal(t, img.Bounds().Dx(), res.Image.Bounds().Dx())

	_, after := raster.GrayStats(raster.Grayscale(res.Image))
	assert.Greater(t, after, before)
}

func TestSharpen_Disabled(t *testing.T) {
	img := testutil.Uniform(16, 16, color.White)

	res := Sharpen(img, SharpenConfig{Strength: 0, BlurSigma: 2})
	assert.False(t, res.Applied)
	assert.Same(t, img, res.Image)
}

func TestDeskew_CorrectsSmallSkew(t *testing.T) {
	cfg := DefaultConfig().Deskew
	img := testutil.SkewedTextPage(800, 600, 3)

	angle, ok := EstimateSkew(img, cfg)
	require.True(t, ok)
	assert.InDelta(t, 3, absf(angle), 1.5)

	res := Deskew(img, cfg)
	require.True(t, res.Applied, "reason: %s", res.Reason)

	residual, ok := EstimateSkew(res.Image, cfg)
	require.True(t, ok)
	assert.Less(t, absf(residual), 1.0)
}

func TestDeskew_BelowThresholdSkips(t *testing.T) {
	res := Deskew(testutil.SkewedTextPage(400, 300, 0.2), DefaultConfig().Deskew)
	assert.False(t, res.Applied)
	assert.NotEmpty(t, res.Reason)
}

func TestDeskew_LargeAngleTreatedAsIntentional(t *testing.T) {
	res := Deskew(testutil.SkewedTextPage(400, 300, 25), DefaultConfig().Deskew)
	assert.False(t, res.Applied)
	assert.Contains(t, res.Reason, "intentional")
}

func TestDeskew_NoForeground(t *testing.T) {
	res := Deskew(testutil.Uniform(200, 200, color.White), DefaultConfig().Deskew)
	assert.False(t, res.Applied)
	assert.Contains(t, res.Reason, "foreground")
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
