// Package pipeline drives document-photo normalization: quality assessment
// selects a processing tier, the tier selects an ordered enhancement chain,
// and budget enforcement produces the final vision-model-ready bytes.
package pipeline

import (
	"log/slog"

	"github.com/scanforge/docprep/internal/boundary"
	"github.com/scanforge/docprep/internal/budget"
	"github.com/scanforge/docprep/internal/enhance"
	"github.com/scanforge/docprep/internal/orientation"
	"github.com/scanforge/docprep/internal/quality"
)

// Config holds configuration for the pipeline and its components.
type Config struct {
	Quality     quality.Config
	Orientation orientation.Config
	Boundary    boundary.Config
	Segmenter   boundary.SegmenterConfig
	// Enhance holds the moderate-strength stage parameters used for LOW
	// tier input; REJECT tier input gets enhance.AggressiveConfig().
	Enhance  enhance.Config
	Budget   budget.Config
	Parallel ParallelConfig
}

// DefaultConfig returns a default pipeline config with component defaults.
func DefaultConfig() Config {
	return Config{
		Quality:     quality.DefaultConfig(),
		Orientation: orientation.DefaultConfig(),
		Boundary:    boundary.DefaultConfig(),
		Segmenter:   boundary.DefaultSegmenterConfig(),
		Enhance:     enhance.DefaultConfig(),
		Budget:      budget.DefaultConfig(),
		Parallel:    DefaultParallelConfig(),
	}
}

// Builder constructs a Pipeline with fluent configuration.
type Builder struct {
	cfg    Config
	logger *slog.Logger
}

// NewBuilder creates a new pipeline builder with defaults.
func NewBuilder() *Builder { return &Builder{cfg: DefaultConfig()} }

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.cfg = cfg
	return b
}

// WithLogger sets the logger used for per-run summaries.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithOrientation toggles content-based orientation correction.
func (b *Builder) WithOrientation(enabled bool) *Builder {
	b.cfg.Orientation.Enabled = enabled
	return b
}

// WithBoundaryCrop toggles document boundary detection and cropping.
func (b *Builder) WithBoundaryCrop(enabled bool) *Builder {
	b.cfg.Boundary.Enabled = enabled
	return b
}

// WithSegmentation toggles multi-document segmentation for capture runs.
func (b *Builder) WithSegmentation(enabled bool) *Builder {
	b.cfg.Segmenter.Enabled = enabled
	return b
}

// WithBudget overrides the output limits.
func (b *Builder) WithBudget(cfg budget.Config) *Builder {
	b.cfg.Budget = cfg
	return b
}

// WithMaxWorkers sets the batch worker-pool size.
func (b *Builder) WithMaxWorkers(n int) *Builder {
	if n > 0 {
		b.cfg.Parallel.MaxWorkers = n
	}
	return b
}

// Build constructs the pipeline with all components wired.
func (b *Builder) Build() *Pipeline {
	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}
	detector := boundary.NewDetector(b.cfg.Boundary)
	return &Pipeline{
		cfg:       b.cfg,
		logger:    logger,
		assessor:  quality.NewAssessor(b.cfg.Quality),
		corrector: orientation.NewCorrector(b.cfg.Orientation),
		detector:  detector,
		segmenter: boundary.NewSegmenter(b.cfg.Segmenter, detector),
		enforcer:  budget.NewEnforcer(b.cfg.Budget),
	}
}

// Pipeline holds the wired components. It is stateless across runs and safe
// for concurrent use; every run owns its own image copies end to end.
type Pipeline struct {
	cfg       Config
	logger    *slog.Logger
	assessor  *quality.Assessor
	corrector *orientation.Corrector
	detector  *boundary.Detector
	segmenter *boundary.Segmenter
	enforcer  *budget.Enforcer
}

// New constructs a pipeline from a configuration.
func New(cfg Config) *Pipeline {
	return NewBuilder().WithConfig(cfg).Build()
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() Config { return p.cfg }
