package observability

import "log/slog"

// AppMode distinguishes the surface the process is running behind, so logs
// and resource attributes can be filtered by it.
type AppMode string

const (
	// ModeCLI marks a one-shot command invocation (e.g. union, vc, bfs).
	ModeCLI AppMode = "cli"

	// ModeServer marks a long-running process serving Count/AddEdges over
	// a network listener.
	ModeServer AppMode = "server"
)

// defaultShutdownTimeoutSec bounds how long Providers.Shutdown waits for
// pending spans/metrics to flush when Config.ShutdownTimeoutSec is unset.
const defaultShutdownTimeoutSec = 5

// Config configures Init. The zero value is usable: OTLPEndpoint empty
// selects no-op tracer/meter providers with zero export overhead.
type Config struct {
	// ServiceName identifies this process in traces, metrics, and logs.
	ServiceName string

	// ServiceVersion and Environment are optional resource attributes.
	ServiceVersion string
	Environment    string

	// Mode records which surface (CLI, server) emitted the telemetry.
	Mode AppMode

	// LogLevel is the minimum slog level emitted.
	LogLevel slog.Level

	// LogJSON selects JSON log records; text otherwise.
	LogJSON bool

	// ShutdownTimeoutSec bounds Providers.Shutdown; 0 uses
	// defaultShutdownTimeoutSec.
	ShutdownTimeoutSec int

	// OTLPEndpoint, when non-empty, enables OTLP/gRPC export of traces and
	// metrics to this endpoint.
	OTLPEndpoint string
	OTLPInsecure bool
	OTLPHeaders  map[string]string

	// TraceVerbose disables the attribute allow-list filter on exported
	// spans; used for local debugging against a collector.
	TraceVerbose bool

	// DebugTrace forces the always-on sampler, overriding SampleRatio and
	// any OTEL_TRACES_SAMPLER environment setting.
	DebugTrace bool

	// SampleRatio sets a parent-based TraceIDRatio sampler when no
	// OTEL_TRACES_SAMPLER is set and DebugTrace is false. 0 falls back to
	// parent-based always-on.
	SampleRatio float64
}

// DefaultConfig returns sane defaults for CLI invocations: no-op export,
// info-level text logs to stderr.
func DefaultConfig() Config {
	return Config{
		ServiceName:        "hyperball",
		Mode:               ModeCLI,
		LogLevel:           slog.LevelInfo,
		ShutdownTimeoutSec: defaultShutdownTimeoutSec,
	}
}
