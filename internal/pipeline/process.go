package pipeline

import (
	"fmt"
	"image"
	"time"

	"github.com/scanforge/docprep/internal/boundary"
	"github.com/scanforge/docprep/internal/enhance"
	"github.com/scanforge/docprep/internal/quality"
	"github.com/scanforge/docprep/internal/raster"
)

// Stage names as they appear in Metadata.StagesApplied.
const (
	StageOrientation = "orientation"
	StageBoundary    = "boundary"
	StageSegment     = "segment"
	StageCLAHE       = "clahe"
	StageDenoise     = "denoise"
	StageSharpen     = "sharpen"
	StageDeskew      = "deskew"
	StageBudget      = "budget"
)

// StageTiming records the wall time one stage took during a run.
type StageTiming struct {
	Name     string        `json:"name"`
	Duration time.Duration `json:"duration_ns"`
}

// StageSkip records a stage that ran but left the image untouched, with the
// reason, so callers can tell a deliberate no-op from a fail-open one.
type StageSkip struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Metadata accumulates what one pipeline run actually did. It is created
// once per run and owned by the caller after return.
type Metadata struct {
	Tier          quality.Level     `json:"tier"`
	StagesApplied []string          `json:"stages_applied"`
	StagesSkipped []StageSkip       `json:"stages_skipped,omitempty"`
	Timings       []StageTiming     `json:"timings,omitempty"`
	OriginalBytes int               `json:"original_bytes"`
	FinalBytes    int               `json:"final_bytes"`
	RotationAngle int               `json:"rotation_angle"`
	Cropped       bool              `json:"cropped"`
	Regions       []boundary.Region `json:"regions,omitempty"`
	DecodeFailed  bool              `json:"decode_failed,omitempty"`
}

// Document is one normalized output image.
type Document struct {
	Data         []byte `json:"-"`
	MediaType    string `json:"media_type"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Quality      int    `json:"quality"`
	WithinBudget bool   `json:"within_budget"`
	TokenCost    int    `json:"token_cost"`
}

// Result is the outcome of one pipeline run. Capture runs with segmentation
// enabled may return several documents; all other runs return exactly one.
type Result struct {
	Report    quality.Report `json:"report"`
	Documents []Document     `json:"documents"`
	Metadata  Metadata       `json:"metadata"`
}

// Process normalizes a single image: assess quality, run the tier's
// enhancement chain, enforce the output budget. Malformed input is not an
// error; the original bytes flow through untouched with a decode-failure
// report so the caller can still attempt extraction.
func (p *Pipeline) Process(data []byte) (*Result, error) {
	report := p.assessor.Assess(data)
	if report.DecodeFailed {
		return p.passthrough(data, report), nil
	}
	img, meta, err := raster.Decode(data)
	if err != nil {
		return p.passthrough(data, report), nil
	}

	res := &Result{
		Report: report,
		Metadata: Metadata{
			Tier:          report.Level,
			OriginalBytes: meta.SizeBytes,
		},
	}
	if err := p.finish(res, p.runTier(img, report.Level, res)); err != nil {
		return nil, err
	}
	p.logRun(res)
	return res, nil
}

// ProcessCapture normalizes an uncontrolled photograph of paperwork:
// orientation correction and boundary detection (or multi-document
// segmentation) run before the quality-tiered chain.
func (p *Pipeline) ProcessCapture(data []byte) (*Result, error) {
	report := p.assessor.Assess(data)
	if report.DecodeFailed {
		return p.passthrough(data, report), nil
	}
	img, meta, err := raster.Decode(data)
	if err != nil {
		return p.passthrough(data, report), nil
	}

	res := &Result{
		Report: report,
		Metadata: Metadata{
			Tier:          report.Level,
			OriginalBytes: meta.SizeBytes,
		},
	}

	img = p.correctOrientation(data, img, res)
	regions := p.isolateDocuments(img, res)

	var docs []image.Image
	for _, region := range regions {
		docs = append(docs, p.runTier(region, report.Level, res))
	}
	if err := p.finish(res, docs...); err != nil {
		return nil, err
	}
	p.logRun(res)
	return res, nil
}

// correctOrientation applies EXIF or content-based 90°-multiple rotation.
func (p *Pipeline) correctOrientation(data []byte, img image.Image, res *Result) image.Image {
	done := p.startStage(res, StageOrientation)
	or := p.corrector.Correct(data, img)
	done()
	if or.Applied {
		res.Metadata.StagesApplied = append(res.Metadata.StagesApplied, StageOrientation)
		res.Metadata.RotationAngle = or.Angle
	} else {
		p.recordSkip(res, StageOrientation, or.Reason)
	}
	return or.Image
}

// isolateDocuments crops the frame down to its document regions, using the
// segmenter when enabled and falling back to single-document detection.
func (p *Pipeline) isolateDocuments(img image.Image, res *Result) []image.Image {
	if p.cfg.Segmenter.Enabled {
		done := p.startStage(res, StageSegment)
		seg := p.segmenter.Apply(img)
		done()
		if !seg.Delegated {
			res.Metadata.StagesApplied = append(res.Metadata.StagesApplied, StageSegment)
			res.Metadata.Cropped = true
			res.Metadata.Regions = seg.Regions
			return seg.Images
		}
		p.recordSkip(res, StageSegment, seg.Reason)
		if len(seg.Regions) == 1 {
			res.Metadata.StagesApplied = append(res.Metadata.StagesApplied, StageBoundary)
			res.Metadata.Cropped = true
			res.Metadata.Regions = seg.Regions
		}
		return seg.Images
	}

	done := p.startStage(res, StageBoundary)
	det := p.detector.Apply(img)
	done()
	if det.Cropped {
		res.Metadata.StagesApplied = append(res.Metadata.StagesApplied, StageBoundary)
		res.Metadata.Cropped = true
		res.Metadata.Regions = []boundary.Region{*det.Region}
	} else {
		p.recordSkip(res, StageBoundary, det.Reason)
	}
	return []image.Image{det.Image}
}

// tierStage pairs a stage name with its transform.
type tierStage struct {
	name string
	fn   func(image.Image) enhance.Result
}

// stagesForTier resolves the tier to its ordered enhancement chain. Budget
// enforcement always runs afterwards and is not part of the chain.
func (p *Pipeline) stagesForTier(tier quality.Level) []tierStage {
	moderate := p.cfg.Enhance
	switch tier {
	case quality.LevelHigh:
		return nil
	case quality.LevelMedium:
		return []tierStage{
			{StageCLAHE, func(img image.Image) enhance.Result { return enhance.CLAHE(img, moderate.CLAHE) }},
			{StageDenoise, func(img image.Image) enhance.Result { return enhance.Denoise(img, moderate.Denoise) }},
		}
	case quality.LevelLow:
		return fullChain(moderate)
	default:
		return fullChain(enhance.AggressiveConfig())
	}
}

func fullChain(cfg enhance.Config) []tierStage {
	return []tierStage{
		{StageCLAHE, func(img image.Image) enhance.Result { return enhance.CLAHE(img, cfg.CLAHE) }},
		{StageDenoise, func(img image.Image) enhance.Result { return enhance.Denoise(img, cfg.Denoise) }},
		{StageSharpen, func(img image.Image) enhance.Result { return enhance.Sharpen(img, cfg.Sharpen) }},
		{StageDeskew, func(img image.Image) enhance.Result { return enhance.Deskew(img, cfg.Deskew) }},
	}
}

// runTier executes the tier's enhancement chain on one image.
func (p *Pipeline) runTier(img image.Image, tier quality.Level, res *Result) image.Image {
	for _, st := range p.stagesForTier(tier) {
		done := p.startStage(res, st.name)
		out := st.fn(img)
		done()
		if out.Applied {
			res.Metadata.StagesApplied = append(res.Metadata.StagesApplied, st.name)
			img = out.Image
		} else {
			p.recordSkip(res, st.name, out.Reason)
		}
	}
	return img
}

// finish runs budget enforcement on each image and fills in the documents.
func (p *Pipeline) finish(res *Result, images ...image.Image) error {
	for _, img := range images {
		done := p.startStage(res, StageBudget)
		out, err := p.enforcer.Apply(img)
		done()
		if err != nil {
			return fmt.Errorf("enforcing output budget: %w", err)
		}
		res.Metadata.StagesApplied = append(res.Metadata.StagesApplied, StageBudget)
		res.Metadata.FinalBytes += len(out.Data)
		res.Documents = append(res.Documents, Document{
			Data:         out.Data,
			MediaType:    out.MediaType,
			Width:        out.Width,
			Height:       out.Height,
			Quality:      out.Quality,
			WithinBudget: out.WithinBudget,
			TokenCost:    out.TokenCost,
		})
		observeDocument(out)
	}
	observeRun(res)
	return nil
}

// passthrough returns the original bytes untouched for input that could not
// be decoded.
func (p *Pipeline) passthrough(data []byte, report quality.Report) *Result {
	res := &Result{
		Report: report,
		Documents: []Document{{
			Data:      data,
			MediaType: "application/octet-stream",
		}},
		Metadata: Metadata{
			Tier:          report.Level,
			OriginalBytes: len(data),
			FinalBytes:    len(data),
			DecodeFailed:  true,
		},
	}
	observeRun(res)
	p.logger.Warn("input could not be decoded, passing bytes through",
		"bytes", len(data))
	return res
}

// startStage begins timing a stage; the returned func records the timing.
func (p *Pipeline) startStage(res *Result, name string) func() {
	start := time.Now()
	return func() {
		d := time.Since(start)
		res.Metadata.Timings = append(res.Metadata.Timings, StageTiming{Name: name, Duration: d})
		observeStage(name, d)
	}
}

func (p *Pipeline) recordSkip(res *Result, name, reason string) {
	res.Metadata.StagesSkipped = append(res.Metadata.StagesSkipped, StageSkip{Name: name, Reason: reason})
}

func (p *Pipeline) logRun(res *Result) {
	p.logger.Info("pipeline run complete",
		"tier", res.Metadata.Tier,
		"stages", res.Metadata.StagesApplied,
		"documents", len(res.Documents),
		"original_bytes", res.Metadata.OriginalBytes,
		"final_bytes", res.Metadata.FinalBytes,
	)
}
