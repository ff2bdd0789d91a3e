package pipeline

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

// ParallelConfig holds configuration for batch processing.
type ParallelConfig struct {
	// MaxWorkers bounds concurrent pipeline invocations. Each invocation is
	// CPU- and memory-intensive, so the default stays small rather than
	// scaling with the host core count.
	MaxWorkers int `mapstructure:"max_workers" yaml:"max_workers"`
}

// DefaultParallelConfig returns the default worker-pool size.
func DefaultParallelConfig() ParallelConfig {
	return ParallelConfig{MaxWorkers: 5}
}

// BatchItem pairs one input's result with its error. Exactly one of Result
// and Err is set.
type BatchItem struct {
	Result *Result
	Err    error
}

// ProcessBatch runs Process over all inputs on a bounded worker pool and
// returns results in input order. Cancelling ctx abandons unstarted inputs;
// runs already in flight complete. Per-input failures land in the
// corresponding BatchItem rather than failing the batch.
func (p *Pipeline) ProcessBatch(ctx context.Context, inputs [][]byte) ([]BatchItem, error) {
	return p.processBatch(ctx, inputs, p.Process)
}

// ProcessCaptureBatch is ProcessBatch for the document-capture entry point.
func (p *Pipeline) ProcessCaptureBatch(ctx context.Context, inputs [][]byte) ([]BatchItem, error) {
	return p.processBatch(ctx, inputs, p.ProcessCapture)
}

func (p *Pipeline) processBatch(
	ctx context.Context,
	inputs [][]byte,
	run func([]byte) (*Result, error),
) ([]BatchItem, error) {
	if len(inputs) == 0 {
		return nil, errors.New("no inputs provided")
	}

	workers := p.cfg.Parallel.MaxWorkers
	if workers <= 0 {
		workers = DefaultParallelConfig().MaxWorkers
	}

	items := make([]BatchItem, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, data := range inputs {
		if err := ctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			res, err := run(data)
			items[i] = BatchItem{Result: res, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return items, err
	}
	return items, nil
}
