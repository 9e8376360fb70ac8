package metrics

import (
	"context"

	"github.com/quantfunk/genfolio/pkg/genetic"
)

// Observer mirrors generation reports into the Prometheus gauges. Label
// cardinality is bounded by the asset list, which is fixed per run.
type Observer struct {
	assets []string
}

// NewObserver creates a metrics observer for the given asset names, in
// registry order.
func NewObserver(assets []string) *Observer {
	return &Observer{assets: assets}
}

// Name implements genetic.Observer.
func (o *Observer) Name() string { return "metrics" }

// ObserveGeneration implements genetic.Observer. It never fails: gauge
// updates are in-process.
func (o *Observer) ObserveGeneration(_ context.Context, report genetic.GenerationReport) error {
	Generation.Set(float64(report.Generation))
	BestScore.Set(report.BestScore)
	MeanScore.Set(report.MeanScore)
	WorstScore.Set(report.WorstScore)
	ScoreStdDev.Set(report.StdDev)
	RunDurationSeconds.Set(report.Elapsed.Seconds())
	GenerationsTotal.Inc()

	for i, name := range o.assets {
		if i < len(report.Best) {
			BestWeight.WithLabelValues(name).Set(report.Best[i])
		}
	}
	return nil
}
