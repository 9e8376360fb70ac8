// Package telemetry contains the per-generation observer sinks: a
// TimescaleDB recorder, a NATS publisher and a Redis snapshot. Each one
// implements genetic.Observer and is wired independently by
// configuration; the engine treats them all as fallible telemetry it
// never waits on.
package telemetry

import (
	"time"

	"github.com/google/uuid"

	"github.com/quantfunk/genfolio/pkg/genetic"
)

// GenerationEvent is the wire form of a generation report shared by the
// NATS publisher and the Redis snapshot.
type GenerationEvent struct {
	RunID      uuid.UUID `json:"run_id"`
	Generation int       `json:"generation"`
	BestScore  float64   `json:"best_score"`
	MeanScore  float64   `json:"mean_score"`
	WorstScore float64   `json:"worst_score"`
	StdDev     float64   `json:"std_dev"`
	Weights    []float64 `json:"weights"`
	ElapsedMS  int64     `json:"elapsed_ms"`
	Timestamp  time.Time `json:"timestamp"`
}

// newGenerationEvent converts an engine report into its wire form.
func newGenerationEvent(runID uuid.UUID, report genetic.GenerationReport) GenerationEvent {
	return GenerationEvent{
		RunID:      runID,
		Generation: report.Generation,
		BestScore:  report.BestScore,
		MeanScore:  report.MeanScore,
		WorstScore: report.WorstScore,
		StdDev:     report.StdDev,
		Weights:    report.Best,
		ElapsedMS:  report.Elapsed.Milliseconds(),
		Timestamp:  time.Now().UTC(),
	}
}
