package orientation

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scanforge/docprep/internal/testutil"
)

func TestCorrect_VerticalLinesRotate90(t *testing.T) {
	c := NewCorrector(DefaultConfig())
	img := testutil.VerticalLinePage(600, 800)

	res := c.Correct(nil, img)
	require.True(t, res.Applied)
	assert.Equal(t, 90, res.Angle)
	assert.Equal(t, SourceLines, res.Source)
	// A 90-degree rotation swaps the dimensions.
	assert.Equal(t, 800, res.Image.Bounds().Dx())
	assert.Equal(t, 600, res.Image.Bounds().Dy())
}

func TestCorrect_HorizontalTextNoOp(t *testing.T) {
	c := NewCorrector(DefaultConfig())
	img := testutil.TextPage(800, 600)

	res := c.Correct(nil, img)
	assert.False(t, res.Applied)
	assert.Zero(t, res.Angle)
	assert.Same(t, img, res.Image)
}

func TestCorrect_UniformImageTooFewLines(t *testing.T) {
	c := NewCorrector(DefaultConfig())
	img := testutil.Uniform(400, 400, color.White)

	res := c.Correct(nil, img)
	assert.False(t, res.Applied)
	assert.NotEmpty(t, res.Reason)
}

func TestCorrect_Disabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = false
	c := NewCorrector(cfg)
	img := testutil.VerticalLinePage(600, 800)

	res := c.Correct(nil, img)
	assert.False(t, res.Applied)
	assert.Equal(t, SourceNone, res.Source)
}

func TestClassifyLine(t *testing.T) {
	tests := []struct {
		name  string
		theta float64
		want  lineClass
	}{
		{"normal at 90 is a horizontal line", 90, lineHorizontal},
		{"normal near 90", 75, lineHorizontal},
		{"normal at 0 is a vertical line", 0, lineVertical},
		{"normal near 180", 165, lineVertical},
		{"diagonal", 45, lineOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyLine(tt.theta, 20))
		})
	}
}

func TestDetectLines_FindsVerticalStrokes(t *testing.T) {
	lines := detectLines(testutil.VerticalLinePage(400, 400))
	require.NotEmpty(t, lines)

	vertical := 0
	for _, ln := range lines {
		if classifyLine(ln.Theta, 20) == lineVertical {
			vertical++
		}
	}
	assert.GreaterOrEqual(t, vertical, 4)
}

func TestExifOrientation_NoMetadata(t *testing.T) {
	_, ok := exifOrientation(nil)
	assert.False(t, ok)

	data := testutil.EncodePNG(t, testutil.Uniform(8, 8, color.White))
	_, ok = exifOrientation(data)
	assert.False(t, ok)
}

func TestApplyExifOrientation(t *testing.T) {
	// 4x2 so rotations are visible in the dimensions.
	img := testutil.Uniform(4, 2, color.White)

	tests := []struct {
		tag       int
		wantW     int
		wantAngle int
	}{
		{orientTopLeft, 4, 0},
		{orientTopRight, 4, 0},
		{orientBottomRight, 4, 180},
		{orientBottomLeft, 4, 0},
		{orientLeftTop, 2, 90},
		{orientRightTop, 2, 270},
		{orientRightBottom, 2, 270},
		{orientLeftBottom, 2, 90},
	}
	for _, tt := range tests {
		out, angle := applyExifOrientation(img, tt.tag)
		assert.Equal(t, tt.wantW, out.Bounds().Dx(), "tag %d width", tt.tag)
		assert.Equal(t, tt.wantAngle, angle, "tag %d angle", tt.tag)
	}
}
