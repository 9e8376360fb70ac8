// Portfolio allocation optimizer CLI
// Searches for the asset weighting that maximizes the risk/return
// utility score, streaming per-generation telemetry to the configured
// sinks.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/quantfunk/genfolio/internal/config"
	"github.com/quantfunk/genfolio/internal/metrics"
	"github.com/quantfunk/genfolio/internal/telemetry"
	"github.com/quantfunk/genfolio/pkg/genetic"
)

// ============================================================================
// CLI FLAGS
// ============================================================================

var (
	configPath = flag.String("config", "gen.conf", "Path to the INI configuration file")
	assetSpec  = flag.String("assets", "", "Asset universe as NAME:RETURN:RISK,... (overrides the [assets] section)")

	// GA parameters; a present config file overrides these
	population    = flag.Int("population", 50, "Population size")
	generations   = flag.Int("generations", 200, "Number of generations")
	crossoverRate = flag.Float64("crossover", 0.7, "Crossover rate in [0,1]")
	mutationRate  = flag.Float64("mutation", 0.1, "Mutation rate in [0,1]")
	elitism       = flag.Int("elitism", 2, "Number of elites copied unchanged per generation")
	selection     = flag.String("selection", "roulette", "Parent selection strategy (roulette, tournament)")
	seed          = flag.Int64("seed", 0, "RNG seed (0 = time-based)")

	// Output
	metricsPort = flag.Int("metrics-port", 0, "Expose Prometheus metrics on this port (0 = disabled)")
	verbose     = flag.Bool("verbose", false, "Enable verbose logging")
)

// flagDefaults maps flag values onto viper paths; they sit below the
// config file in precedence, matching the legacy tool.
func flagDefaults() map[string]interface{} {
	return map[string]interface{}{
		"ga.population":     *population,
		"ga.generations":    *generations,
		"ga.crossover_rate": *crossoverRate,
		"ga.mutation_rate":  *mutationRate,
		"ga.elitism":        *elitism,
		"ga.selection":      *selection,
		"ga.seed":           *seed,
	}
}

// ============================================================================
// MAIN
// ============================================================================

func main() {
	// .env is optional; it carries DATABASE_URL and friends in dev
	_ = godotenv.Load()

	flag.Parse()

	cfg, err := config.Load(*configPath, flagDefaults())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	config.InitLogger(cfg.Log.Level, cfg.Log.Format)

	if *metricsPort > 0 {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Port = *metricsPort
	}

	assets, err := resolveAssets(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid asset universe")
	}

	registry, err := genetic.NewRegistry(assets)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid asset registry")
	}

	engine, err := genetic.NewEngine(registry, cfg.EngineConfig())
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid engine configuration")
	}
	engine.SetLogger(config.NewLogger("engine"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runID := uuid.New()
	log.Info().
		Str("run_id", runID.String()).
		Int("assets", registry.Size()).
		Msg("Starting portfolio optimization")

	cleanup, err := wireObservers(ctx, cfg, engine, registry, runID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire telemetry")
	}
	defer cleanup()

	if cfg.Metrics.Enabled {
		server := metrics.NewServer(cfg.Metrics.Port, log.Logger)
		if err := server.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start metrics server")
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(shutdownCtx)
		}()
	}

	result, err := engine.Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Optimization failed")
	}

	printAllocation(registry, result, runID)
}

// resolveAssets picks the asset universe: the -assets flag wins over
// the [assets] section of the config file.
func resolveAssets(cfg *config.Config) ([]genetic.Asset, error) {
	if *assetSpec != "" {
		return config.ParseAssetSpecs(*assetSpec)
	}

	assets, err := cfg.AssetList()
	if err != nil {
		return nil, err
	}
	if len(assets) == 0 {
		return nil, fmt.Errorf("no assets configured: pass -assets or an [assets] section")
	}
	return assets, nil
}

// wireObservers attaches the enabled telemetry sinks to the engine and
// returns a cleanup closing their connections.
func wireObservers(ctx context.Context, cfg *config.Config, engine *genetic.Engine, registry *genetic.Registry, runID uuid.UUID) (func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.Metrics.Enabled {
		engine.AddObserver(metrics.NewObserver(registry.Names()))
		engine.SetObserverErrorHook(func(observer string) {
			metrics.ObserverErrors.WithLabelValues(observer).Inc()
		})
	}

	if cfg.Telemetry.TimescaleEnabled {
		pool, err := pgxpool.New(ctx, cfg.Telemetry.GetDSN())
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("failed to connect to TimescaleDB: %w", err)
		}
		closers = append(closers, pool.Close)

		recorder := telemetry.NewRecorder(pool, runID)
		if err := recorder.EnsureSchema(ctx); err != nil {
			cleanup()
			return nil, err
		}
		engine.AddObserver(recorder)
	}

	if cfg.Telemetry.NATSEnabled {
		publisher, err := telemetry.NewPublisher(cfg.Telemetry.NATSURL, runID)
		if err != nil {
			cleanup()
			return nil, err
		}
		closers = append(closers, publisher.Close)
		engine.AddObserver(publisher)
	}

	if cfg.Telemetry.RedisEnabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Telemetry.RedisAddr,
			Password: cfg.Telemetry.RedisPassword,
			DB:       cfg.Telemetry.RedisDB,
		})
		closers = append(closers, func() { _ = client.Close() })
		engine.AddObserver(telemetry.NewSnapshot(client, runID, cfg.Telemetry.SnapshotTTL()))
	}

	return cleanup, nil
}

// printAllocation renders the optimized weights on stdout.
func printAllocation(registry *genetic.Registry, result *genetic.Result, runID uuid.UUID) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("OPTIMIZED ALLOCATION")
	t.SetStyle(table.StyleRounded)

	t.AppendHeader(table.Row{"Asset", "Weight", "Return", "Risk"})
	for i, asset := range registry.Assets() {
		t.AppendRow(table.Row{
			asset.Name,
			fmt.Sprintf("%.2f%%", result.Weights[i]*100),
			fmt.Sprintf("%.4f", asset.ExpectedReturn),
			fmt.Sprintf("%.4f", asset.Risk),
		})
	}
	t.AppendFooter(table.Row{"Score", fmt.Sprintf("%.6f", result.Score), "", ""})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignFooter: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})

	t.Render()

	fmt.Printf("\nRun %s finished in %s over %d generations\n",
		runID, result.Duration.Round(time.Millisecond), result.Generations)
}
