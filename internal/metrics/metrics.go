// Package metrics exposes Prometheus instrumentation for optimization
// runs: per-generation gauges, run counters and the HTTP server that
// serves them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Optimization progress metrics
var (
	// Generation is the index of the most recently ranked generation.
	Generation = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "genfolio_generation",
		Help: "Index of the most recently ranked generation",
	})

	// BestScore is the top fitness score of the current generation.
	BestScore = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "genfolio_best_score",
		Help: "Best fitness score of the current generation",
	})

	// MeanScore is the mean finite fitness score of the current generation.
	MeanScore = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "genfolio_mean_score",
		Help: "Mean finite fitness score of the current generation",
	})

	// WorstScore is the worst finite fitness score of the current generation.
	WorstScore = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "genfolio_worst_score",
		Help: "Worst finite fitness score of the current generation",
	})

	// ScoreStdDev is the fitness standard deviation of the current generation.
	ScoreStdDev = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "genfolio_score_stddev",
		Help: "Fitness standard deviation of the current generation",
	})

	// BestWeight tracks the current best allocation per asset.
	BestWeight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "genfolio_best_weight",
		Help: "Weight of each asset in the current best allocation",
	}, []string{"asset"})

	// GenerationsTotal counts generations ranked across all runs.
	GenerationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "genfolio_generations_total",
		Help: "Total number of generations ranked",
	})

	// RunDurationSeconds is the elapsed wall time of the current run.
	RunDurationSeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "genfolio_run_duration_seconds",
		Help: "Elapsed wall time of the current optimization run",
	})

	// ObserverErrors counts swallowed telemetry sink failures per observer.
	ObserverErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "genfolio_observer_errors_total",
		Help: "Total number of swallowed observer failures",
	}, []string{"observer"})
)
