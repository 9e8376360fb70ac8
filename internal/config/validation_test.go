package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig returns a configuration that passes validation.
func validConfig() *Config {
	return &Config{
		GA: GAConfig{
			Population:    50,
			Generations:   200,
			CrossoverRate: 0.7,
			MutationRate:  0.1,
			Selection:     "roulette",
			Elitism:       2,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func TestValidateValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidateGA(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{
			name:   "zero population",
			mutate: func(c *Config) { c.GA.Population = 0 },
			field:  "ga.population",
		},
		{
			name:   "negative generations",
			mutate: func(c *Config) { c.GA.Generations = -1 },
			field:  "ga.generations",
		},
		{
			name:   "crossover rate above one",
			mutate: func(c *Config) { c.GA.CrossoverRate = 1.5 },
			field:  "ga.crossover_rate",
		},
		{
			name:   "negative mutation rate",
			mutate: func(c *Config) { c.GA.MutationRate = -0.1 },
			field:  "ga.mutation_rate",
		},
		{
			name:   "elitism exceeds population",
			mutate: func(c *Config) { c.GA.Elitism = 51 },
			field:  "ga.elitism",
		},
		{
			name:   "negative elitism",
			mutate: func(c *Config) { c.GA.Elitism = -1 },
			field:  "ga.elitism",
		},
		{
			name:   "unknown selection",
			mutate: func(c *Config) { c.GA.Selection = "ranked" },
			field:  "ga.selection",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()

			require.Error(t, err)
			var verrs ValidationErrors
			require.ErrorAs(t, err, &verrs)
			require.Len(t, verrs, 1)
			assert.Equal(t, tt.field, verrs[0].Field)
		})
	}
}

func TestValidateAssets(t *testing.T) {
	cfg := validConfig()
	cfg.Assets = map[string]string{
		"VUSA": "0.10, 0.02",
		"CNDX": "not-a-number, 0.05",
	}

	err := cfg.Validate()

	require.Error(t, err)
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 1)
	assert.Equal(t, "assets.CNDX", verrs[0].Field)
}

func TestValidateTelemetry(t *testing.T) {
	t.Run("timescale enabled without DSN", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "")

		cfg := validConfig()
		cfg.Telemetry.TimescaleEnabled = true

		err := cfg.Validate()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "telemetry.timescale_dsn")
	})

	t.Run("timescale DSN from environment", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/genfolio")

		cfg := validConfig()
		cfg.Telemetry.TimescaleEnabled = true

		assert.NoError(t, cfg.Validate())
	})

	t.Run("bad NATS URL scheme", func(t *testing.T) {
		cfg := validConfig()
		cfg.Telemetry.NATSEnabled = true
		cfg.Telemetry.NATSURL = "http://localhost:4222"

		err := cfg.Validate()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "telemetry.nats_url")
	})

	t.Run("redis enabled without address", func(t *testing.T) {
		cfg := validConfig()
		cfg.Telemetry.RedisEnabled = true
		cfg.Telemetry.RedisAddr = ""

		err := cfg.Validate()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "telemetry.redis_addr")
	})

	t.Run("negative snapshot TTL", func(t *testing.T) {
		cfg := validConfig()
		cfg.Telemetry.SnapshotTTLSeconds = -1

		err := cfg.Validate()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "telemetry.snapshot_ttl_seconds")
	})
}

func TestValidateLog(t *testing.T) {
	cfg := validConfig()
	cfg.Log.Level = "loud"
	cfg.Log.Format = "xml"

	err := cfg.Validate()

	require.Error(t, err)
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 2)
}

func TestValidateMetrics(t *testing.T) {
	cfg := validConfig()
	cfg.Metrics.Enabled = true
	cfg.Metrics.Port = 70000

	err := cfg.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "metrics.port")
}
