package config

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/quantfunk/genfolio/pkg/genetic"
)

// Config holds all application configuration
type Config struct {
	GA        GAConfig          `mapstructure:"ga"`
	Assets    map[string]string `mapstructure:"assets"`
	Telemetry TelemetryConfig   `mapstructure:"telemetry"`
	Log       LogConfig         `mapstructure:"log"`
	Metrics   MetricsConfig     `mapstructure:"metrics"`
}

// GAConfig mirrors the [GA] section of the configuration file
type GAConfig struct {
	Population    int     `mapstructure:"population"`
	Generations   int     `mapstructure:"generations"`
	CrossoverRate float64 `mapstructure:"crossover_rate"`
	MutationRate  float64 `mapstructure:"mutation_rate"`
	Selection     string  `mapstructure:"selection"`
	Elitism       int     `mapstructure:"elitism"`
	Seed          int64   `mapstructure:"seed"` // 0 = time-based seed
}

// TelemetryConfig controls the per-generation observer sinks
type TelemetryConfig struct {
	TimescaleEnabled   bool   `mapstructure:"timescale_enabled"`
	TimescaleDSN       string `mapstructure:"timescale_dsn"`
	NATSEnabled        bool   `mapstructure:"nats_enabled"`
	NATSURL            string `mapstructure:"nats_url"`
	RedisEnabled       bool   `mapstructure:"redis_enabled"`
	RedisAddr          string `mapstructure:"redis_addr"`
	RedisPassword      string `mapstructure:"redis_password"`
	RedisDB            int    `mapstructure:"redis_db"`
	SnapshotTTLSeconds int    `mapstructure:"snapshot_ttl_seconds"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "console" or "json"
}

// MetricsConfig contains Prometheus settings
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// Load loads configuration from an INI file and environment variables.
// flagDefaults carries CLI flag values keyed by viper path; they sit
// between the built-in defaults and the file, so a present config file
// overrides the command line the same way the legacy tool behaved. A
// missing file is not an error.
func Load(configPath string, flagDefaults map[string]interface{}) (*Config, error) {
	v := viper.New()

	// Enable environment variable overrides
	v.AutomaticEnv()
	v.SetEnvPrefix("GENFOLIO")

	// Set defaults, then layer flag values on top
	setDefaults(v)
	for key, value := range flagDefaults {
		v.SetDefault(key, value)
	}

	// Read config file
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			v.SetConfigType("ini")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
		// Absent file: flags and defaults apply
	} else {
		v.SetConfigName("gen")
		v.SetConfigType("ini")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	// Unmarshal into struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration using comprehensive validation
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// GA defaults mirror genetic.DefaultConfig
	ga := genetic.DefaultConfig()
	v.SetDefault("ga.population", ga.PopulationSize)
	v.SetDefault("ga.generations", ga.Generations)
	v.SetDefault("ga.crossover_rate", ga.CrossoverRate)
	v.SetDefault("ga.mutation_rate", ga.MutationRate)
	v.SetDefault("ga.selection", string(ga.Selection))
	v.SetDefault("ga.elitism", ga.Elitism)
	v.SetDefault("ga.seed", int64(0))

	// Telemetry defaults: all sinks off until enabled
	v.SetDefault("telemetry.timescale_enabled", false)
	v.SetDefault("telemetry.timescale_dsn", "")
	v.SetDefault("telemetry.nats_enabled", false)
	v.SetDefault("telemetry.nats_url", "nats://localhost:4222")
	v.SetDefault("telemetry.redis_enabled", false)
	v.SetDefault("telemetry.redis_addr", "localhost:6379")
	v.SetDefault("telemetry.redis_db", 0)
	v.SetDefault("telemetry.snapshot_ttl_seconds", 300)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Metrics defaults
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.port", 9100)
}

// EngineConfig maps the [GA] section onto the engine configuration.
func (c *Config) EngineConfig() genetic.Config {
	return genetic.Config{
		PopulationSize: c.GA.Population,
		Generations:    c.GA.Generations,
		CrossoverRate:  c.GA.CrossoverRate,
		MutationRate:   c.GA.MutationRate,
		Elitism:        c.GA.Elitism,
		Selection:      genetic.SelectionType(c.GA.Selection),
		Seed:           c.GA.Seed,
	}
}

// AssetList parses the [assets] section into registry assets, in
// name-sorted order so runs are reproducible regardless of map order.
func (c *Config) AssetList() ([]genetic.Asset, error) {
	if len(c.Assets) == 0 {
		return nil, nil
	}

	names := make([]string, 0, len(c.Assets))
	for name := range c.Assets {
		names = append(names, name)
	}
	sort.Strings(names)

	assets := make([]genetic.Asset, 0, len(names))
	for _, name := range names {
		ret, risk, err := parseAssetValue(c.Assets[name])
		if err != nil {
			return nil, fmt.Errorf("asset %q: %w", name, err)
		}
		assets = append(assets, genetic.Asset{Name: name, ExpectedReturn: ret, Risk: risk})
	}
	return assets, nil
}

// ParseAssetSpecs parses the CLI form "NAME:RETURN:RISK,NAME:RETURN:RISK".
func ParseAssetSpecs(spec string) ([]genetic.Asset, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, nil
	}

	var assets []genetic.Asset
	for _, entry := range strings.Split(spec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		parts := strings.Split(entry, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("asset %q: want NAME:RETURN:RISK", entry)
		}

		name := strings.TrimSpace(parts[0])
		ret, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("asset %q: bad return: %w", name, err)
		}
		risk, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("asset %q: bad risk: %w", name, err)
		}

		assets = append(assets, genetic.Asset{Name: name, ExpectedReturn: ret, Risk: risk})
	}
	return assets, nil
}

// parseAssetValue parses the file form "RETURN, RISK".
func parseAssetValue(value string) (float64, float64, error) {
	parts := strings.Split(value, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("want \"RETURN, RISK\", got %q", value)
	}

	ret, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad return: %w", err)
	}
	risk, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad risk: %w", err)
	}
	if math.IsNaN(ret) || math.IsInf(ret, 0) || math.IsNaN(risk) || math.IsInf(risk, 0) {
		return 0, 0, fmt.Errorf("return and risk must be finite")
	}
	return ret, risk, nil
}

// GetDSN returns the TimescaleDB connection string, falling back to the
// DATABASE_URL environment variable.
func (c *TelemetryConfig) GetDSN() string {
	if c.TimescaleDSN != "" {
		return c.TimescaleDSN
	}
	return os.Getenv("DATABASE_URL")
}

// SnapshotTTL returns the Redis snapshot TTL as time.Duration.
func (c *TelemetryConfig) SnapshotTTL() time.Duration {
	return time.Duration(c.SnapshotTTLSeconds) * time.Second
}

// GetMetricsAddr returns the metrics server listen address.
func (c *MetricsConfig) GetMetricsAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}
