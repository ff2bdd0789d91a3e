package pipeline

import (
	"image/color"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scanforge/docprep/internal/quality"
	"github.com/scanforge/docprep/internal/testutil"
)

func newTestPipeline(opts ...func(*Builder)) *Pipeline {
	b := NewBuilder().WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	for _, opt := range opts {
		opt(b)
	}
	return b.Build()
}

// stageSeen reports whether the stage was either applied or recorded as a
// skip, meaning it ran at all.
func stageSeen(res *Result, name string) bool {
	for _, s := range res.Metadata.StagesApplied {
		if s == name {
			return true
		}
	}
	for _, s := range res.Metadata.StagesSkipped {
		if s.Name == name {
			return true
		}
	}
	return false
}

func TestProcess_SharpTextPage(t *testing.T) {
	p := newTestPipeline()
	data := testutil.EncodePNG(t, testutil.TextPage(1200, 1600))

	res, err := p.Process(data)
	require.NoError(t, err)
	assert.NotEqual(t, quality.LevelReject, res.Report.Level)
	require.Len(t, res.Documents, 1)

	doc := res.Documents[0]
	assert.Equal(t, "image/jpeg", doc.MediaType)
	assert.True(t, doc.WithinBudget)
	assert.LessOrEqual(t, max(doc.Width, doc.Height), 1568)
	assert.LessOrEqual(t, doc.Width*doc.Height, 1_160_000)
	assert.Positive(t, doc.TokenCost)

	assert.Contains(t, res.Metadata.StagesApplied, StageBudget)
	assert.Equal(t, len(doc.Data), res.Metadata.FinalBytes)
	assert.Equal(t, len(data), res.Metadata.OriginalBytes)
	assert.NotEmpty(t, res.Metadata.Timings)
}

func TestProcess_DecodeFailurePassthrough(t *testing.T) {
	p := newTestPipeline()
	data := []byte("these bytes are not an image")

	res, err := p.Process(data)
	require.NoError(t, err)
	assert.True(t, res.Metadata.DecodeFailed)
	assert.Equal(t, quality.LevelReject, res.Report.Level)
	require.Len(t, res.Documents, 1)
	assert.Equal(t, data, res.Documents[0].Data)
	assert.Equal(t, "application/octet-stream", res.Documents[0].MediaType)
	assert.Equal(t, len(data), res.Metadata.FinalBytes)
}

func TestProcess_PoorInputRunsFullChain(t *testing.T) {
	p := newTestPipeline()
	data := testutil.EncodePNG(t, testutil.BlurredTextPage(350, 260, 8))

	res, err := p.Process(data)
	require.NoError(t, err)
	assert.Contains(t, []quality.Level{quality.LevelLow, quality.LevelReject}, res.Report.Level)

	for _, stage := range []string{StageCLAHE, StageDenoise, StageSharpen, StageDeskew} {
		assert.True(t, stageSeen(res, stage), "stage %s never ran", stage)
	}
	require.Len(t, res.Documents, 1)
}

func TestStagesForTier(t *testing.T) {
	p := newTestPipeline()

	names := func(tier quality.Level) []string {
		var out []string
		for _, st := range p.stagesForTier(tier) {
			out = append(out, st.name)
		}
		return out
	}

	assert.Empty(t, names(quality.LevelHigh))
	assert.Equal(t, []string{StageCLAHE, StageDenoise}, names(quality.LevelMedium))
	assert.Equal(t, []string{StageCLAHE, StageDenoise, StageSharpen, StageDeskew}, names(quality.LevelLow))
	assert.Equal(t, []string{StageCLAHE, StageDenoise, StageSharpen, StageDeskew}, names(quality.LevelReject))
}

func TestProcessCapture_CropsDocument(t *testing.T) {
	p := newTestPipeline()
	data := testutil.EncodePNG(t, testutil.DocumentOnClutter(800, 600, 0.4))

	res, err := p.ProcessCapture(data)
	require.NoError(t, err)
	assert.True(t, res.Metadata.Cropped)
	assert.Contains(t, res.Metadata.StagesApplied, StageBoundary)
	require.Len(t, res.Metadata.Regions, 1)
	assert.Zero(t, res.Metadata.RotationAngle)
	require.Len(t, res.Documents, 1)

	// The crop sheds the cluttered background.
	assert.Less(t, res.Documents[0].Width*res.Documents[0].Height, 800*600*55/100)
}

func TestProcessCapture_SegmentsTwoDocuments(t *testing.T) {
	p := newTestPipeline(func(b *Builder) { b.WithSegmentation(true) })
	data := testutil.EncodePNG(t, testutil.TwoDocuments(800, 600, 0.15))

	res, err := p.ProcessCapture(data)
	require.NoError(t, err)
	assert.Contains(t, res.Metadata.StagesApplied, StageSegment)
	assert.True(t, res.Metadata.Cropped)
	require.Len(t, res.Documents, 2)
	require.Len(t, res.Metadata.Regions, 2)
	assert.Less(t, res.Metadata.Regions[0].Box.MinX, res.Metadata.Regions[1].Box.MinX)
}

func TestProcessCapture_UniformFramePassesThrough(t *testing.T) {
	p := newTestPipeline()
	data := testutil.EncodePNG(t, testutil.Uniform(640, 480, color.Gray{Y: 140}))

	res, err := p.ProcessCapture(data)
	require.NoError(t, err)
	require.Len(t, res.Documents, 1)
	assert.False(t, res.Metadata.Cropped)
	assert.True(t, stageSeen(res, StageBoundary))
	assert.Equal(t, 640, res.Documents[0].Width)
	assert.Equal(t, 480, res.Documents[0].Height)
}
