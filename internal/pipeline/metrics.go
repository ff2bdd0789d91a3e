package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/scanforge/docprep/internal/budget"
)

var (
	runsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docprep_pipeline_runs_total",
			Help: "Total number of pipeline runs",
		},
		[]string{"tier"},
	)

	decodeFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "docprep_decode_failures_total",
			Help: "Inputs that could not be decoded and were passed through",
		},
	)

	stageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docprep_stage_duration_seconds",
			Help:    "Per-stage processing duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"stage"},
	)

	outputBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "docprep_output_bytes",
			Help:    "Size of normalized output images in bytes",
			Buckets: []float64{50 * 1024, 100 * 1024, 250 * 1024, 500 * 1024, 1024 * 1024, 2 * 1024 * 1024, 4 * 1024 * 1024},
		},
	)

	tokenCost = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "docprep_token_cost",
			Help:    "Estimated vision-model token cost per output image",
			Buckets: []float64{100, 250, 500, 1000, 1500, 2000, 3000},
		},
	)

	budgetUnsatisfiedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "docprep_budget_unsatisfied_total",
			Help: "Outputs that still exceeded the byte budget at the quality floor",
		},
	)
)

func observeRun(res *Result) {
	runsTotal.WithLabelValues(string(res.Metadata.Tier)).Inc()
	if res.Metadata.DecodeFailed {
		decodeFailuresTotal.Inc()
	}
}

func observeStage(name string, d time.Duration) {
	stageDuration.WithLabelValues(name).Observe(d.Seconds())
}

func observeDocument(out budget.Result) {
	outputBytes.Observe(float64(len(out.Data)))
	tokenCost.Observe(float64(out.TokenCost))
	if !out.WithinBudget {
		budgetUnsatisfiedTotal.Inc()
	}
}
