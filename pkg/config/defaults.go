package config

// Engine defaults.
const (
	DefaultEngineLog2M            = 7
	DefaultEngineH                = 3
	DefaultEngineSeed             = 0
	DefaultEngineExpectedElements = 1 << 20
)

// Watcher defaults.
const (
	DefaultWatcherPercentageChange = 0.1
	DefaultWatcherMinNodeCount     = 10
	DefaultWatcherUpdateIntervalMs = 1000
	DefaultWatcherCounterCapacity  = 100
)

// Server defaults.
const (
	DefaultServerEnabled = false
	DefaultServerHost    = "0.0.0.0"
	DefaultServerPort    = 8080
)

// Logging defaults.
const (
	DefaultLoggingLevel  = "info"
	DefaultLoggingFormat = "json"
)
