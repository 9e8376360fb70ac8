package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/quantfunk/genfolio/internal/config"
	"github.com/quantfunk/genfolio/pkg/genetic"
)

// Circuit breaker thresholds for the generation recorder. The database
// is pure telemetry, so the breaker trips fast and recovers quickly
// rather than stalling the optimization loop on every write.
const (
	dbMinRequests     = 10
	dbFailureRatio    = 0.6
	dbOpenTimeout     = 15 * time.Second
	dbHalfOpenMaxReqs = 5
	dbCountInterval   = 10 * time.Second

	// writeTimeout bounds a single INSERT so a stalled connection
	// cannot block a generation.
	writeTimeout = 2 * time.Second
)

// PoolInterface is the slice of pgxpool.Pool the recorder needs; the
// indirection lets tests substitute a pgxmock pool.
type PoolInterface interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

const createGenerationStatsSQL = `
CREATE TABLE IF NOT EXISTS generation_stats (
	time        TIMESTAMPTZ      NOT NULL DEFAULT now(),
	run_id      UUID             NOT NULL,
	generation  INTEGER          NOT NULL,
	best_score  DOUBLE PRECISION NOT NULL,
	mean_score  DOUBLE PRECISION NOT NULL,
	worst_score DOUBLE PRECISION NOT NULL,
	std_dev     DOUBLE PRECISION NOT NULL,
	best_weights JSONB           NOT NULL,
	UNIQUE (run_id, generation)
)`

const createHypertableSQL = `
SELECT create_hypertable('generation_stats', 'time', if_not_exists => TRUE, migrate_data => TRUE)`

const insertGenerationSQL = `
INSERT INTO generation_stats (run_id, generation, best_score, mean_score, worst_score, std_dev, best_weights)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (run_id, generation) DO UPDATE SET
	best_score = EXCLUDED.best_score,
	mean_score = EXCLUDED.mean_score,
	worst_score = EXCLUDED.worst_score,
	std_dev = EXCLUDED.std_dev,
	best_weights = EXCLUDED.best_weights`

// Recorder writes one row per generation into the generation_stats
// hypertable. Writes go through a circuit breaker so a dead database
// degrades to dropped telemetry instead of a 2s stall per generation.
type Recorder struct {
	pool    PoolInterface
	runID   uuid.UUID
	breaker *gobreaker.CircuitBreaker
	log     zerolog.Logger
}

// NewRecorder creates a recorder for one optimization run.
func NewRecorder(pool PoolInterface, runID uuid.UUID) *Recorder {
	logger := config.NewLogger("timescale_recorder")

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "generation_recorder",
		MaxRequests: dbHalfOpenMaxReqs,
		Interval:    dbCountInterval,
		Timeout:     dbOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= dbMinRequests && ratio >= dbFailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Recorder circuit breaker state changed")
		},
	})

	return &Recorder{
		pool:    pool,
		runID:   runID,
		breaker: breaker,
		log:     logger,
	}
}

// Name implements genetic.Observer.
func (r *Recorder) Name() string { return "timescale" }

// EnsureSchema creates the generation_stats table and promotes it to a
// hypertable. A missing timescaledb extension is tolerated: the table
// then stays a plain PostgreSQL table.
func (r *Recorder) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, createGenerationStatsSQL); err != nil {
		return fmt.Errorf("failed to create generation_stats: %w", err)
	}

	if _, err := r.pool.Exec(ctx, createHypertableSQL); err != nil {
		r.log.Warn().Err(err).Msg("Could not create hypertable, using a plain table")
	}
	return nil
}

// ObserveGeneration implements genetic.Observer by upserting one row
// keyed on (run_id, generation). Errors surface to the engine, which
// logs and discards them.
func (r *Recorder) ObserveGeneration(ctx context.Context, report genetic.GenerationReport) error {
	weights, err := json.Marshal(report.Best)
	if err != nil {
		return fmt.Errorf("failed to marshal best weights: %w", err)
	}

	_, err = r.breaker.Execute(func() (interface{}, error) {
		writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
		defer cancel()

		return r.pool.Exec(writeCtx, insertGenerationSQL,
			r.runID,
			report.Generation,
			report.BestScore,
			report.MeanScore,
			report.WorstScore,
			report.StdDev,
			string(weights),
		)
	})
	if err != nil {
		return fmt.Errorf("failed to record generation %d: %w", report.Generation, err)
	}

	r.log.Debug().
		Int("generation", report.Generation).
		Float64("best_score", report.BestScore).
		Msg("Generation recorded")

	return nil
}
