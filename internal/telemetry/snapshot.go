package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/quantfunk/genfolio/internal/config"
	"github.com/quantfunk/genfolio/pkg/genetic"
)

// snapshotOpTimeout bounds each Redis write so a slow server cannot
// block the generation loop.
const snapshotOpTimeout = 500 * time.Millisecond

// Snapshot keeps the latest generation of a run under a TTL key in
// Redis, giving UIs a cheap "where is this run now" lookup without
// touching the database.
type Snapshot struct {
	client *redis.Client
	runID  uuid.UUID
	key    string
	ttl    time.Duration
	log    zerolog.Logger
}

// NewSnapshot creates the snapshot sink for one run. A zero ttl means
// the key never expires.
func NewSnapshot(client *redis.Client, runID uuid.UUID, ttl time.Duration) *Snapshot {
	return &Snapshot{
		client: client,
		runID:  runID,
		key:    fmt.Sprintf("genfolio:run:%s", runID),
		ttl:    ttl,
		log:    config.NewLogger("redis_snapshot"),
	}
}

// Name implements genetic.Observer.
func (s *Snapshot) Name() string { return "redis" }

// Key returns the Redis key the snapshot is stored under.
func (s *Snapshot) Key() string { return s.key }

// ObserveGeneration implements genetic.Observer by overwriting the run
// snapshot with the latest generation event.
func (s *Snapshot) ObserveGeneration(ctx context.Context, report genetic.GenerationReport) error {
	data, err := json.Marshal(newGenerationEvent(s.runID, report))
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	opCtx, cancel := context.WithTimeout(ctx, snapshotOpTimeout)
	defer cancel()

	if err := s.client.Set(opCtx, s.key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store snapshot: %w", err)
	}

	s.log.Debug().
		Int("generation", report.Generation).
		Str("key", s.key).
		Msg("Run snapshot stored")

	return nil
}

// Latest reads the most recent snapshot of a run. Returns redis.Nil
// wrapped when no snapshot exists.
func Latest(ctx context.Context, client *redis.Client, runID uuid.UUID) (*GenerationEvent, error) {
	opCtx, cancel := context.WithTimeout(ctx, snapshotOpTimeout)
	defer cancel()

	data, err := client.Get(opCtx, fmt.Sprintf("genfolio:run:%s", runID)).Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var event GenerationEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &event, nil
}
