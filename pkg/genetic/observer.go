package genetic

import (
	"context"
	"time"
)

// GenerationReport is the per-generation snapshot handed to observers
// after ranking and before reproduction. Best is a private copy, safe
// to retain. Mean, worst and standard deviation cover the finite
// scores only, so a degenerate individual cannot poison the summary.
type GenerationReport struct {
	Generation int           `json:"generation"`
	Best       Chromosome    `json:"best"`
	BestScore  float64       `json:"best_score"`
	MeanScore  float64       `json:"mean_score"`
	WorstScore float64       `json:"worst_score"`
	StdDev     float64       `json:"std_dev"`
	Elapsed    time.Duration `json:"elapsed"`
}

// Observer consumes generation reports. Observers run synchronously
// inside the optimization loop; a slow sink must enforce its own
// timeout.
type Observer interface {
	// Name identifies the observer in failure logs.
	Name() string
	// ObserveGeneration delivers one report. A returned error is logged
	// and swallowed; it never aborts the run.
	ObserveGeneration(ctx context.Context, report GenerationReport) error
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(ctx context.Context, report GenerationReport) error

// Name implements Observer.
func (f ObserverFunc) Name() string { return "func" }

// ObserveGeneration implements Observer.
func (f ObserverFunc) ObserveGeneration(ctx context.Context, report GenerationReport) error {
	return f(ctx, report)
}
