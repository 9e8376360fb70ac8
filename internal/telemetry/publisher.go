package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/quantfunk/genfolio/internal/config"
	"github.com/quantfunk/genfolio/pkg/genetic"
)

// subjectPrefix namespaces generation events on the bus.
// Pattern: genfolio.runs.{run_id}.generations
const subjectPrefix = "genfolio.runs."

// Publisher emits one JSON GenerationEvent per generation on a
// run-scoped NATS subject, so dashboards can follow a run live.
type Publisher struct {
	nc      *nats.Conn
	runID   uuid.UUID
	subject string
	log     zerolog.Logger
}

// NewPublisher connects to NATS and prepares the run subject.
func NewPublisher(natsURL string, runID uuid.UUID) (*Publisher, error) {
	logger := config.NewLogger("nats_publisher")

	nc, err := nats.Connect(
		natsURL,
		nats.Name("genfolio"),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	subject := fmt.Sprintf("%s%s.generations", subjectPrefix, runID)

	logger.Info().
		Str("nats_url", natsURL).
		Str("subject", subject).
		Msg("Generation publisher connected")

	return &Publisher{
		nc:      nc,
		runID:   runID,
		subject: subject,
		log:     logger,
	}, nil
}

// Name implements genetic.Observer.
func (p *Publisher) Name() string { return "nats" }

// Subject returns the run-scoped subject events are published on.
func (p *Publisher) Subject() string { return p.subject }

// ObserveGeneration implements genetic.Observer by publishing the
// report as a GenerationEvent.
func (p *Publisher) ObserveGeneration(ctx context.Context, report genetic.GenerationReport) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !p.nc.IsConnected() {
		return fmt.Errorf("publisher not connected")
	}

	data, err := json.Marshal(newGenerationEvent(p.runID, report))
	if err != nil {
		return fmt.Errorf("failed to marshal generation event: %w", err)
	}

	if err := p.nc.Publish(p.subject, data); err != nil {
		return fmt.Errorf("failed to publish generation event: %w", err)
	}

	p.log.Debug().
		Int("generation", report.Generation).
		Str("subject", p.subject).
		Msg("Generation event published")

	return nil
}

// Close flushes pending events and drops the connection.
func (p *Publisher) Close() {
	if p.nc == nil {
		return
	}
	if err := p.nc.Flush(); err != nil {
		p.log.Warn().Err(err).Msg("Failed to flush NATS connection")
	}
	p.nc.Close()
}
