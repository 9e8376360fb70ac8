package telemetry

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfunk/genfolio/pkg/genetic"
)

func testReport() genetic.GenerationReport {
	return genetic.GenerationReport{
		Generation: 3,
		Best:       genetic.Chromosome{0.25, 0.75},
		BestScore:  0.42,
		MeanScore:  0.3,
		WorstScore: 0.1,
		StdDev:     0.05,
	}
}

func TestRecorderObserveGeneration(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	runID := uuid.New()
	recorder := NewRecorder(mock, runID)

	mock.ExpectExec("INSERT INTO generation_stats").
		WithArgs(runID, 3, 0.42, 0.3, 0.1, 0.05, `[0.25,0.75]`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = recorder.ObserveGeneration(context.Background(), testReport())

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecorderWriteFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	recorder := NewRecorder(mock, uuid.New())

	mock.ExpectExec("INSERT INTO generation_stats").
		WillReturnError(assert.AnError)

	err = recorder.ObserveGeneration(context.Background(), testReport())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to record generation 3")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecorderBreakerOpensAfterRepeatedFailures(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	recorder := NewRecorder(mock, uuid.New())
	ctx := context.Background()

	for i := 0; i < dbMinRequests; i++ {
		mock.ExpectExec("INSERT INTO generation_stats").
			WillReturnError(assert.AnError)
		assert.Error(t, recorder.ObserveGeneration(ctx, testReport()))
	}

	// Breaker is open now: the write is rejected without touching the pool.
	err = recorder.ObserveGeneration(ctx, testReport())

	require.Error(t, err)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecorderEnsureSchema(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	recorder := NewRecorder(mock, uuid.New())

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS generation_stats").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec("create_hypertable").
		WillReturnResult(pgxmock.NewResult("SELECT", 1))

	require.NoError(t, recorder.EnsureSchema(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecorderEnsureSchemaToleratesMissingExtension(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	recorder := NewRecorder(mock, uuid.New())

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS generation_stats").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec("create_hypertable").
		WillReturnError(assert.AnError)

	// Hypertable promotion is best-effort.
	require.NoError(t, recorder.EnsureSchema(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}
