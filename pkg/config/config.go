package config

import "time"

// Config is the root configuration structure for the gateway.
type Config struct {
	// Server contains HTTP listener configuration including timeouts,
	// body limits, and CORS origins.
	Server ServerConfig `yaml:"server"`

	// Sessions controls session idle expiry and the sweep schedule.
	Sessions SessionsConfig `yaml:"sessions"`

	// Provider selects the upstream model provider. The provider credential
	// is never configured here; each session supplies its own.
	Provider ProviderConfig `yaml:"provider"`

	// Relay contains streaming settings shared by the SSE and WebSocket
	// transports.
	Relay RelayConfig `yaml:"relay"`

	// Telemetry contains configuration for logging, metrics, and tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Audit controls the exchange audit trail.
	Audit AuditConfig `yaml:"audit"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Default: ":8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the server-wide response write deadline. Streams can
	// run for minutes, so the default is 0 (none); RequestTimeout bounds
	// the non-streaming routes instead.
	// Default: 0
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// RequestTimeout bounds non-streaming requests, including the provider
	// call made by /api/chat.
	// Default: 120s
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// MaxBodyBytes caps request bodies.
	// Default: 10485760 (10 MiB)
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// CORSOrigins lists the allowed browser origins. ["*"] allows any.
	// Default: ["*"]
	CORSOrigins []string `yaml:"cors_origins"`
}

// SessionsConfig contains session lifecycle configuration.
type SessionsConfig struct {
	// IdleTimeout is how long a session may go without activity before it
	// expires. It can be changed by a config reload.
	// Default: 30m
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// SweepInterval is how often expired sessions are removed.
	// Default: 1m
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// ProviderConfig contains configuration for the upstream provider.
type ProviderConfig struct {
	// Type selects the wire protocol.
	// Options: "anthropic", "openai"
	// Default: "anthropic"
	Type string `yaml:"type"`

	// BaseURL overrides the provider's API endpoint.
	// Example: "https://api.anthropic.com/v1"
	BaseURL string `yaml:"base_url"`

	// Model is the model requested for every exchange.
	// Default: "claude-sonnet-4-5"
	Model string `yaml:"model"`

	// MaxTokens is the completion token limit.
	// Default: 4096
	MaxTokens int `yaml:"max_tokens"`

	// Timeout bounds a non-streaming completion and the wait for response
	// headers on a stream.
	// Default: 5m
	Timeout time.Duration `yaml:"timeout"`

	// APIVersion is sent as the anthropic-version header.
	// Default: "2023-06-01"
	APIVersion string `yaml:"api_version"`
}

// RelayConfig contains streaming configuration.
type RelayConfig struct {
	// WebSocketEnabled exposes GET /api/stream/ws.
	// Default: true
	WebSocketEnabled bool `yaml:"websocket_enabled"`

	// WriteTimeout is the deadline for writing a single frame to a client.
	// A client that stops reading for longer is treated as disconnected.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit. It can be changed by a config
	// reload.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactPII enables pattern-based redaction of log values in addition
	// to masking of credential fields.
	// Default: true
	RedactPII bool `yaml:"redact_pii"`

	// RedactPatterns contains custom redaction patterns.
	RedactPatterns []RedactPattern `yaml:"redact_patterns"`
}

// RedactPattern defines a custom redaction pattern.
type RedactPattern struct {
	// Name is a descriptive name for the pattern.
	Name string `yaml:"name"`

	// Pattern is the regular expression to match.
	Pattern string `yaml:"pattern"`

	// Replacement is the string to replace matches with.
	Replacement string `yaml:"replacement"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "gateway"
	Namespace string `yaml:"namespace"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether spans are exported.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP gRPC collector endpoint.
	// Example: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Insecure disables TLS for the collector connection.
	// Default: true
	Insecure bool `yaml:"insecure"`

	// ServiceName is the service name in traces.
	// Default: "agentic-gateway"
	ServiceName string `yaml:"service_name"`
}

// AuditConfig contains exchange audit trail configuration.
type AuditConfig struct {
	// Enabled controls whether exchanges are recorded.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Backend selects the store.
	// Options: "memory", "sqlite"
	// Default: "memory"
	Backend string `yaml:"backend"`

	// Driver selects the database/sql driver for the sqlite backend:
	// "sqlite" is the pure-Go driver, "sqlite3" the cgo one.
	// Default: "sqlite"
	Driver string `yaml:"driver"`

	// Path is the database file for the sqlite backend.
	// Default: "data/audit.db"
	Path string `yaml:"path"`

	// RetentionDays is how long records are kept. 0 keeps them forever.
	// Default: 30
	RetentionDays int `yaml:"retention_days"`

	// PruneSchedule is a cron expression for the pruning job.
	// Default: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string `yaml:"prune_schedule"`

	// MaxRecords caps the memory backend.
	// Default: 10000
	MaxRecords int `yaml:"max_records"`
}
