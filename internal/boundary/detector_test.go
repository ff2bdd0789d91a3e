package boundary

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scanforge/docprep/internal/geometry"
	"github.com/scanforge/docprep/internal/testutil"
)

func TestDetector_CropsDocumentOnClutter(t *testing.T) {
	d := NewDetector(DefaultConfig())
	img := testutil.DocumentOnClutter(800, 600, 0.4)

	res := d.Apply(img)
	require.True(t, res.Cropped, "reason: %s", res.Reason)
	require.NotNil(t, res.Region)
	assert.GreaterOrEqual(t, res.Region.Rectangularity, 0.65)

	// The crop should isolate the page, not hand back most of the frame.
	b := res.Image.Bounds()
	outRatio := float64(b.Dx()*b.Dy()) / float64(800*600)
	assert.Greater(t, outRatio, 0.3)
	assert.Less(t, outRatio, 0.55)
}

func TestDetector_NoContourPassthrough(t *testing.T) {
	d := NewDetector(DefaultConfig())
	img := testutil.Uniform(640, 480, color.Gray{Y: 140})

	res := d.Apply(img)
	assert.False(t, res.Cropped)
	assert.Same(t, img, res.Image)
	assert.Nil(t, res.Region)
	assert.NotEmpty(t, res.Reason)
}

func TestDetector_Disabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = false
	d := NewDetector(cfg)
	img := testutil.DocumentOnClutter(400, 300, 0.4)

	res := d.Apply(img)
	assert.False(t, res.Cropped)
	assert.Same(t, img, res.Image)
}

func TestDetector_NilImage(t *testing.T) {
	res := NewDetector(DefaultConfig()).Apply(nil)
	assert.False(t, res.Cropped)
	assert.Nil(t, res.Image)
}

func TestRegionScore(t *testing.T) {
	big := Region{AreaRatio: 0.5, Rectangularity: 0.9}
	small := Region{AreaRatio: 0.2, Rectangularity: 1.0}
	assert.Greater(t, regionScore(big, 1000), regionScore(small, 1000))
}

func TestCandidateFromContour_Square(t *testing.T) {
	contour := []geometry.Point{
		{X: 100, Y: 100}, {X: 300, Y: 100}, {X: 300, Y: 300}, {X: 100, Y: 300},
	}

	r, ok := candidateFromContour(contour, 400, 400, DefaultConfig(), 0.15)
	require.True(t, ok)
	assert.True(t, r.HasQuad)
	assert.InDelta(t, 0.25, r.AreaRatio, 1e-9)
	assert.InDelta(t, 1.0, r.Rectangularity, 1e-6)
}

func TestCandidateFromContour_TooSmall(t *testing.T) {
	contour := []geometry.Point{
		{X: 10, Y: 10}, {X: 30, Y: 10}, {X: 30, Y: 30}, {X: 10, Y: 30},
	}

	_, ok := candidateFromContour(contour, 400, 400, DefaultConfig(), 0.15)
	assert.False(t, ok)
}

func TestCandidateFromContour_TriangleRejected(t *testing.T) {
	contour := []geometry.Point{
		{X: 50, Y: 50}, {X: 350, Y: 50}, {X: 200, Y: 350},
	}

	_, ok := candidateFromContour(contour, 400, 400, DefaultConfig(), 0.15)
	assert.False(t, ok)
}

func TestConnectedComponents(t *testing.T) {
	// Two blobs in an 8x4 mask: a 2x3 block and an isolated pair joined
	// diagonally, which 8-connectivity must treat as one component.
	w, h := 8, 4
	mask := make([]bool, w*h)
	for _, p := range [][2]int{{1, 0}, {2, 0}, {1, 1}, {2, 1}, {1, 2}, {2, 2}} {
		mask[p[1]*w+p[0]] = true
	}
	mask[1*w+5] = true
	mask[2*w+6] = true

	stats, kept, labels := connectedComponents(mask, w, h, 1)
	require.Len(t, stats, 2)
	require.Len(t, kept, 2)
	assert.Equal(t, 6, stats[0].count)
	assert.Equal(t, 2, stats[1].count)
	assert.Equal(t, stats[1].minX, 5)
	assert.Equal(t, stats[1].maxX, 6)

	// The diagonal pair shares one label.
	assert.Equal(t, labels[1*w+5], labels[2*w+6])

	// A floor above the small blob's size drops it.
	stats, _, _ = connectedComponents(mask, w, h, 3)
	assert.Len(t, stats, 1)
}

func TestDilateMask(t *testing.T) {
	w, h := 5, 5
	mask := make([]bool, w*h)
	mask[2*w+2] = true

	out := dilateMask(mask, w, h, 3)
	count := 0
	for _, v := range out {
		if v {
			count++
		}
	}
	assert.Equal(t, 9, count)
	assert.True(t, out[1*w+1])
	assert.True(t, out[3*w+3])
	assert.False(t, out[0])
}

func TestAdaptiveMask_MinorityIsForeground(t *testing.T) {
	// Small bright patch on a dark frame: the bright side is the minority
	// and must come out as foreground.
	img := testutil.Uniform(40, 40, color.Gray{Y: 30})
	for y := 10; y < 20; y++ {
		for x := 10; x < 20; x++ {
			img.Set(x, y, color.Gray{Y: 220})
		}
	}

	mask, w, h := adaptiveMask(img)
	require.Equal(t, 40, w)
	require.Equal(t, 40, h)
	count := 0
	for _, v := range mask {
		if v {
			count++
		}
	}
	assert.Equal(t, 100, count)
	assert.True(t, mask[15*w+15])
}
