// Package config provides YAML/env configuration loading for the
// neighbourhood engine and its CLI.
package config

import "errors"

// percentageChangeMax is the largest watcher.percentage_change Validate
// accepts: the growth-fraction threshold must lie in (0,1].
const percentageChangeMax = 1.0

// Config is the top-level configuration struct for hyperball.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Engine  EngineConfig  `mapstructure:"engine"`
	Watcher WatcherConfig `mapstructure:"watcher"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// EngineConfig holds the HLL counter shape and HyperBall depth shared by
// every counter array the engine allocates.
type EngineConfig struct {
	// Log2M is log2(m), the register count exponent (m = 1<<Log2M).
	Log2M uint8 `mapstructure:"log2m"`

	// H is the number of static HyperBall iterations (neighbourhood radius).
	H int `mapstructure:"h"`

	// Seed seeds the Jenkins mix; every counter array in one engine shares it.
	Seed uint64 `mapstructure:"seed"`

	// ExpectedElements is the upper bound on distinct elements per counter,
	// used to derive registerSize via hll.RegisterSizeFor.
	ExpectedElements uint64 `mapstructure:"expected_elements"`
}

// WatcherConfig holds the top-node watcher's firing thresholds.
type WatcherConfig struct {
	// PercentageChange is the minimum (count_after-count_before)/count_before
	// growth fraction a touched vertex must clear to be considered for the
	// descending set.
	PercentageChange float64 `mapstructure:"percentage_change"`

	// MinNodeCount is the minimum count_after a touched vertex must reach
	// to be considered, filtering out noise on tiny counters.
	MinNodeCount uint64 `mapstructure:"min_node_count"`

	// UpdateIntervalMs is the minimum time between callback firings.
	UpdateIntervalMs int64 `mapstructure:"update_interval_ms"`

	// CounterCapacity caps the descending (ratio, vertex) set size; the
	// lowest-ratio entry is evicted on overflow.
	CounterCapacity int `mapstructure:"counter_capacity"`
}

// ServerConfig holds the optional long-running server's listener settings.
type ServerConfig struct {
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	Enabled bool   `mapstructure:"enabled"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Sentinel errors for configuration validation.
var (
	// ErrInvalidLog2M indicates engine.log2m falls outside the HLL's
	// supported register-count exponent range.
	ErrInvalidLog2M = errors.New("engine.log2m out of range")
	// ErrInvalidH indicates engine.h is negative.
	ErrInvalidH = errors.New("engine.h must be non-negative")
	// ErrInvalidExpectedElements indicates engine.expected_elements is zero.
	ErrInvalidExpectedElements = errors.New("engine.expected_elements must be positive")
	// ErrInvalidPercentageChange indicates watcher.percentage_change is out of (0,1].
	ErrInvalidPercentageChange = errors.New("watcher.percentage_change must be in (0,1]")
	// ErrInvalidCounterCapacity indicates watcher.counter_capacity is not positive.
	ErrInvalidCounterCapacity = errors.New("watcher.counter_capacity must be positive")
	// ErrInvalidUpdateInterval indicates watcher.update_interval_ms is negative.
	ErrInvalidUpdateInterval = errors.New("watcher.update_interval_ms must be non-negative")
	// ErrInvalidPort indicates server.port is outside the valid TCP range.
	ErrInvalidPort = errors.New("server.port out of range")
)

const (
	minLog2M = 4
	maxLog2M = 30
	maxPort  = 65535
)

// Validate checks that every field is within the range the engine and
// watcher packages require, returning the first violation found.
func (c *Config) Validate() error {
	if c.Engine.Log2M < minLog2M || c.Engine.Log2M > maxLog2M {
		return ErrInvalidLog2M
	}

	if c.Engine.H < 0 {
		return ErrInvalidH
	}

	if c.Engine.ExpectedElements == 0 {
		return ErrInvalidExpectedElements
	}

	if c.Watcher.PercentageChange <= 0 || c.Watcher.PercentageChange > percentageChangeMax {
		return ErrInvalidPercentageChange
	}

	if c.Watcher.CounterCapacity <= 0 {
		return ErrInvalidCounterCapacity
	}

	if c.Watcher.UpdateIntervalMs < 0 {
		return ErrInvalidUpdateInterval
	}

	if c.Server.Enabled && (c.Server.Port <= 0 || c.Server.Port > maxPort) {
		return ErrInvalidPort
	}

	return nil
}
