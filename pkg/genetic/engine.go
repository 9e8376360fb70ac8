// Package genetic implements a generational genetic algorithm that
// searches for the portfolio allocation maximizing a risk/return
// utility score.
package genetic

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ============================================================================
// CONFIGURATION
// ============================================================================

// Config holds the tunable parameters of an optimization run. It is
// immutable for the lifetime of the run.
type Config struct {
	PopulationSize int           `json:"population_size"`
	Generations    int           `json:"generations"`
	CrossoverRate  float64       `json:"crossover_rate"`
	MutationRate   float64       `json:"mutation_rate"`
	Elitism        int           `json:"elitism"`
	Selection      SelectionType `json:"selection"`
	Seed           int64         `json:"seed"` // 0 selects a time-based seed
}

// DefaultConfig returns the conventional starting parameters.
func DefaultConfig() Config {
	return Config{
		PopulationSize: 50,
		Generations:    200,
		CrossoverRate:  0.7,
		MutationRate:   0.1,
		Elitism:        2,
		Selection:      SelectionRoulette,
	}
}

// Validate rejects configurations the engine cannot run.
func (c Config) Validate() error {
	if c.PopulationSize < 1 {
		return fmt.Errorf("population size must be at least 1, got %d", c.PopulationSize)
	}
	if c.Generations < 0 {
		return fmt.Errorf("generations must not be negative, got %d", c.Generations)
	}
	if c.CrossoverRate < 0 || c.CrossoverRate > 1 {
		return fmt.Errorf("crossover rate must be in [0, 1], got %g", c.CrossoverRate)
	}
	if c.MutationRate < 0 || c.MutationRate > 1 {
		return fmt.Errorf("mutation rate must be in [0, 1], got %g", c.MutationRate)
	}
	if c.Elitism < 0 || c.Elitism > c.PopulationSize {
		return fmt.Errorf("elitism must be in [0, population size], got %d", c.Elitism)
	}
	if _, err := NewSelector(c.Selection); err != nil {
		return err
	}
	return nil
}

// ============================================================================
// ENGINE
// ============================================================================

// Result is the outcome of a completed optimization run.
type Result struct {
	Weights     Chromosome    `json:"weights"`
	Score       float64       `json:"score"`
	Generations int           `json:"generations"`
	Duration    time.Duration `json:"duration"`
}

// Engine owns the population and drives the generational loop. It is
// single-threaded: one run at a time, one RNG, synchronous observers.
type Engine struct {
	registry  *Registry
	cfg       Config
	selector  Selector
	observers []Observer
	onObsErr  func(observer string)
	rng       *rand.Rand
	seed      int64
	log       zerolog.Logger
}

// NewEngine validates the configuration and prepares an engine. The RNG
// is seeded from cfg.Seed, or from the current time when the seed is
// zero; use SetSeed for reproducible results.
func NewEngine(registry *Registry, cfg Config) (*Engine, error) {
	if registry == nil {
		return nil, fmt.Errorf("registry must not be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	selector, err := NewSelector(cfg.Selection)
	if err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Engine{
		registry: registry,
		cfg:      cfg,
		selector: selector,
		rng:      rand.New(rand.NewSource(seed)), // #nosec G404 -- non-cryptographic use, seeded for reproducible searches
		seed:     seed,
		log:      log.With().Str("component", "engine").Logger(),
	}, nil
}

// SetSeed replaces the RNG with one seeded for reproducible results.
func (e *Engine) SetSeed(seed int64) {
	e.seed = seed
	e.rng = rand.New(rand.NewSource(seed)) // #nosec G404 -- non-cryptographic use, seeded for reproducible searches
}

// SetLogger replaces the engine logger.
func (e *Engine) SetLogger(logger zerolog.Logger) {
	e.log = logger
}

// AddObserver registers an observer for generation reports. Observers
// are invoked synchronously in registration order.
func (e *Engine) AddObserver(obs Observer) {
	e.observers = append(e.observers, obs)
}

// SetObserverErrorHook installs a callback fired after an observer
// error or panic has been logged and swallowed, so callers can count
// failures without changing the never-abort contract.
func (e *Engine) SetObserverErrorHook(fn func(observer string)) {
	e.onObsErr = fn
}

// Config returns the run configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Run executes the generational loop and returns the best allocation of
// the final population. Reports are emitted once per generation with a
// 0-based index, plus a final report at index == generations after the
// last reproduction. Context cancellation aborts between generations.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	e.log.Info().
		Int("population", e.cfg.PopulationSize).
		Int("generations", e.cfg.Generations).
		Str("selection", string(e.cfg.Selection)).
		Int64("seed", e.seed).
		Msg("Starting optimization")

	population := e.initialPopulation()

	for gen := 0; gen < e.cfg.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("optimization aborted at generation %d: %w", gen, err)
		}

		ranked := e.rank(population)
		e.report(ctx, gen, ranked, start)
		population = e.nextGeneration(ranked)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("optimization aborted at generation %d: %w", e.cfg.Generations, err)
	}

	ranked := e.rank(population)
	e.report(ctx, e.cfg.Generations, ranked, start)

	best := ranked[0]
	result := &Result{
		Weights:     best.Chromosome.Clone(),
		Score:       best.Fitness,
		Generations: e.cfg.Generations,
		Duration:    time.Since(start),
	}

	e.log.Info().
		Float64("best_score", result.Score).
		Dur("duration", result.Duration).
		Msg("Optimization complete")

	return result, nil
}

// rank evaluates every chromosome exactly once and sorts the population
// by fitness descending. The sort is stable so equal scores keep their
// relative order.
func (e *Engine) rank(population []Chromosome) []Individual {
	ranked := make([]Individual, len(population))
	for i, c := range population {
		ranked[i] = Individual{Chromosome: c, Fitness: Fitness(c, e.registry)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Fitness > ranked[j].Fitness
	})
	return ranked
}

// nextGeneration builds the successor population: the top chromosomes
// carry over as copies, the rest come from selection, crossover and a
// mutation_rate chance of mutation.
func (e *Engine) nextGeneration(ranked []Individual) []Chromosome {
	next := make([]Chromosome, 0, e.cfg.PopulationSize)

	for i := 0; i < e.cfg.Elitism; i++ {
		next = append(next, ranked[i].Chromosome.Clone())
	}

	for len(next) < e.cfg.PopulationSize {
		parent1 := e.selector.Pick(e.rng, ranked)
		parent2 := e.selector.Pick(e.rng, ranked)

		child := e.crossover(parent1, parent2)
		if e.rng.Float64() < e.cfg.MutationRate {
			child = e.mutate(child)
		}
		next = append(next, child)
	}

	return next
}

// report builds the generation snapshot and fans it out to observers.
func (e *Engine) report(ctx context.Context, gen int, ranked []Individual, start time.Time) {
	rep := e.buildReport(gen, ranked, time.Since(start))

	e.log.Debug().
		Int("generation", rep.Generation).
		Float64("best_score", rep.BestScore).
		Float64("mean_score", rep.MeanScore).
		Msg("Generation ranked")

	for _, obs := range e.observers {
		e.notify(ctx, obs, rep)
	}
}

// notify delivers one report to one observer. Errors and panics are
// logged and swallowed so a broken sink cannot abort the optimization.
func (e *Engine) notify(ctx context.Context, obs Observer, rep GenerationReport) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Warn().
				Str("observer", obs.Name()).
				Int("generation", rep.Generation).
				Interface("panic", r).
				Msg("Observer panicked")
			if e.onObsErr != nil {
				e.onObsErr(obs.Name())
			}
		}
	}()

	if err := obs.ObserveGeneration(ctx, rep); err != nil {
		e.log.Warn().
			Err(err).
			Str("observer", obs.Name()).
			Int("generation", rep.Generation).
			Msg("Observer failed")
		if e.onObsErr != nil {
			e.onObsErr(obs.Name())
		}
	}
}

// buildReport summarizes a ranked generation. Aggregate statistics
// cover finite scores only.
func (e *Engine) buildReport(gen int, ranked []Individual, elapsed time.Duration) GenerationReport {
	finite := make([]float64, 0, len(ranked))
	for _, ind := range ranked {
		if isFinite(ind.Fitness) {
			finite = append(finite, ind.Fitness)
		}
	}

	rep := GenerationReport{
		Generation: gen,
		Best:       ranked[0].Chromosome.Clone(),
		BestScore:  ranked[0].Fitness,
		Elapsed:    elapsed,
	}
	if len(finite) > 0 {
		rep.MeanScore = stat.Mean(finite, nil)
		rep.WorstScore = floats.Min(finite)
	}
	if len(finite) > 1 {
		rep.StdDev = stat.StdDev(finite, nil)
	}
	return rep
}
