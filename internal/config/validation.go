package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Configuration validation failed with %d error(s):\n\n", len(ve)))
	for i, err := range ve {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	sb.WriteString("\nPlease fix the above errors and try again.\n")
	return sb.String()
}

// Validate performs comprehensive configuration validation
func (c *Config) Validate() error {
	var errors ValidationErrors

	errors = append(errors, c.validateGA()...)
	errors = append(errors, c.validateAssets()...)
	errors = append(errors, c.validateTelemetry()...)
	errors = append(errors, c.validateLog()...)
	errors = append(errors, c.validateMetrics()...)

	if len(errors) > 0 {
		return errors
	}

	return nil
}

func (c *Config) validateGA() ValidationErrors {
	var errors ValidationErrors

	if c.GA.Population < 1 {
		errors = append(errors, ValidationError{
			Field:   "ga.population",
			Message: fmt.Sprintf("Population must be at least 1, got %d", c.GA.Population),
		})
	}

	if c.GA.Generations < 0 {
		errors = append(errors, ValidationError{
			Field:   "ga.generations",
			Message: fmt.Sprintf("Generations must not be negative, got %d", c.GA.Generations),
		})
	}

	if c.GA.CrossoverRate < 0 || c.GA.CrossoverRate > 1 {
		errors = append(errors, ValidationError{
			Field:   "ga.crossover_rate",
			Message: fmt.Sprintf("Invalid crossover_rate %.2f. Must be between 0-1", c.GA.CrossoverRate),
		})
	}

	if c.GA.MutationRate < 0 || c.GA.MutationRate > 1 {
		errors = append(errors, ValidationError{
			Field:   "ga.mutation_rate",
			Message: fmt.Sprintf("Invalid mutation_rate %.2f. Must be between 0-1", c.GA.MutationRate),
		})
	}

	if c.GA.Elitism < 0 || (c.GA.Population >= 1 && c.GA.Elitism > c.GA.Population) {
		errors = append(errors, ValidationError{
			Field:   "ga.elitism",
			Message: fmt.Sprintf("Elitism must be between 0 and the population size, got %d", c.GA.Elitism),
		})
	}

	switch c.GA.Selection {
	case "roulette", "tournament":
	default:
		errors = append(errors, ValidationError{
			Field:   "ga.selection",
			Message: fmt.Sprintf("Invalid selection '%s'. Must be 'roulette' or 'tournament'", c.GA.Selection),
		})
	}

	return errors
}

func (c *Config) validateAssets() ValidationErrors {
	var errors ValidationErrors

	for name, value := range c.Assets {
		if _, _, err := parseAssetValue(value); err != nil {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("assets.%s", name),
				Message: err.Error(),
			})
		}
	}

	return errors
}

func (c *Config) validateTelemetry() ValidationErrors {
	var errors ValidationErrors

	if c.Telemetry.TimescaleEnabled && c.Telemetry.GetDSN() == "" {
		errors = append(errors, ValidationError{
			Field:   "telemetry.timescale_dsn",
			Message: "TimescaleDB DSN is required when the recorder is enabled (set it or DATABASE_URL)",
		})
	}

	if c.Telemetry.NATSEnabled {
		if c.Telemetry.NATSURL == "" {
			errors = append(errors, ValidationError{
				Field:   "telemetry.nats_url",
				Message: "NATS URL is required when the publisher is enabled",
			})
		} else if !strings.HasPrefix(c.Telemetry.NATSURL, "nats://") {
			errors = append(errors, ValidationError{
				Field:   "telemetry.nats_url",
				Message: "NATS URL must start with 'nats://'",
			})
		}
	}

	if c.Telemetry.RedisEnabled && c.Telemetry.RedisAddr == "" {
		errors = append(errors, ValidationError{
			Field:   "telemetry.redis_addr",
			Message: "Redis address is required when the snapshot sink is enabled",
		})
	}

	if c.Telemetry.SnapshotTTLSeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   "telemetry.snapshot_ttl_seconds",
			Message: "Snapshot TTL must not be negative",
		})
	}

	return errors
}

func (c *Config) validateLog() ValidationErrors {
	var errors ValidationErrors

	switch strings.ToLower(c.Log.Level) {
	case "", "trace", "debug", "info", "warn", "error", "fatal", "panic":
	default:
		errors = append(errors, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("Invalid log level '%s'", c.Log.Level),
		})
	}

	switch c.Log.Format {
	case "", "console", "json":
	default:
		errors = append(errors, ValidationError{
			Field:   "log.format",
			Message: fmt.Sprintf("Invalid log format '%s'. Must be 'console' or 'json'", c.Log.Format),
		})
	}

	return errors
}

func (c *Config) validateMetrics() ValidationErrors {
	var errors ValidationErrors

	if c.Metrics.Enabled && (c.Metrics.Port < 1 || c.Metrics.Port > 65535) {
		errors = append(errors, ValidationError{
			Field:   "metrics.port",
			Message: fmt.Sprintf("Invalid port %d. Must be between 1-65535", c.Metrics.Port),
		})
	}

	return errors
}
