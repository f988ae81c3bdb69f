package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "GATEWAY_"

// LoadConfig loads configuration from a YAML file at the specified path.
// Fields missing from the file keep their defaults. The result is validated
// but environment variables are not consulted; use LoadConfigWithEnvOverrides
// for that.
func LoadConfig(path string) (*Config, error) {
	cfg, err := loadFile(path)
	if err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides named GATEWAY_SECTION_FIELD (for example
// GATEWAY_SERVER_LISTEN_ADDRESS). An empty path loads defaults only.
// Environment variables always take precedence over the file.
//
// The loading sequence is:
// 1. Start from defaults
// 2. Decode YAML from file
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(cfg)
	return cfg, nil
}

// envOverride binds one environment variable to a config field.
type envOverride struct {
	name  string
	apply func(cfg *Config, val string) error
}

func stringVar(set func(*Config, string)) func(*Config, string) error {
	return func(cfg *Config, val string) error {
		set(cfg, val)
		return nil
	}
}

func durationVar(set func(*Config, time.Duration)) func(*Config, string) error {
	return func(cfg *Config, val string) error {
		d, err := time.ParseDuration(val)
		if err != nil {
			return err
		}
		set(cfg, d)
		return nil
	}
}

func intVar(set func(*Config, int)) func(*Config, string) error {
	return func(cfg *Config, val string) error {
		i, err := strconv.Atoi(val)
		if err != nil {
			return err
		}
		set(cfg, i)
		return nil
	}
}

func boolVar(set func(*Config, bool)) func(*Config, string) error {
	return func(cfg *Config, val string) error {
		b, err := strconv.ParseBool(val)
		if err != nil {
			return err
		}
		set(cfg, b)
		return nil
	}
}

var envOverrides = []envOverride{
	// Server overrides
	{"SERVER_LISTEN_ADDRESS", stringVar(func(c *Config, v string) { c.Server.ListenAddress = v })},
	{"SERVER_READ_TIMEOUT", durationVar(func(c *Config, d time.Duration) { c.Server.ReadTimeout = d })},
	{"SERVER_WRITE_TIMEOUT", durationVar(func(c *Config, d time.Duration) { c.Server.WriteTimeout = d })},
	{"SERVER_IDLE_TIMEOUT", durationVar(func(c *Config, d time.Duration) { c.Server.IdleTimeout = d })},
	{"SERVER_SHUTDOWN_TIMEOUT", durationVar(func(c *Config, d time.Duration) { c.Server.ShutdownTimeout = d })},
	{"SERVER_REQUEST_TIMEOUT", durationVar(func(c *Config, d time.Duration) { c.Server.RequestTimeout = d })},
	{"SERVER_MAX_BODY_BYTES", intVar(func(c *Config, i int) { c.Server.MaxBodyBytes = int64(i) })},
	{"SERVER_CORS_ORIGINS", stringVar(func(c *Config, v string) { c.Server.CORSOrigins = splitList(v) })},

	// Session overrides
	{"SESSIONS_IDLE_TIMEOUT", durationVar(func(c *Config, d time.Duration) { c.Sessions.IdleTimeout = d })},
	{"SESSIONS_SWEEP_INTERVAL", durationVar(func(c *Config, d time.Duration) { c.Sessions.SweepInterval = d })},

	// Provider overrides
	{"PROVIDER_TYPE", stringVar(func(c *Config, v string) { c.Provider.Type = v })},
	{"PROVIDER_BASE_URL", stringVar(func(c *Config, v string) { c.Provider.BaseURL = v })},
	{"PROVIDER_MODEL", stringVar(func(c *Config, v string) { c.Provider.Model = v })},
	{"PROVIDER_MAX_TOKENS", intVar(func(c *Config, i int) { c.Provider.MaxTokens = i })},
	{"PROVIDER_TIMEOUT", durationVar(func(c *Config, d time.Duration) { c.Provider.Timeout = d })},
	{"PROVIDER_API_VERSION", stringVar(func(c *Config, v string) { c.Provider.APIVersion = v })},

	// Relay overrides
	{"RELAY_WEBSOCKET_ENABLED", boolVar(func(c *Config, b bool) { c.Relay.WebSocketEnabled = b })},
	{"RELAY_WRITE_TIMEOUT", durationVar(func(c *Config, d time.Duration) { c.Relay.WriteTimeout = d })},

	// Telemetry overrides
	{"TELEMETRY_LOGGING_LEVEL", stringVar(func(c *Config, v string) { c.Telemetry.Logging.Level = v })},
	{"TELEMETRY_LOGGING_FORMAT", stringVar(func(c *Config, v string) { c.Telemetry.Logging.Format = v })},
	{"TELEMETRY_METRICS_ENABLED", boolVar(func(c *Config, b bool) { c.Telemetry.Metrics.Enabled = b })},
	{"TELEMETRY_METRICS_PATH", stringVar(func(c *Config, v string) { c.Telemetry.Metrics.Path = v })},
	{"TELEMETRY_TRACING_ENABLED", boolVar(func(c *Config, b bool) { c.Telemetry.Tracing.Enabled = b })},
	{"TELEMETRY_TRACING_ENDPOINT", stringVar(func(c *Config, v string) { c.Telemetry.Tracing.Endpoint = v })},
	{"TELEMETRY_TRACING_SAMPLE_RATIO", func(c *Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		c.Telemetry.Tracing.SampleRatio = f
		return nil
	}},

	// Audit overrides
	{"AUDIT_ENABLED", boolVar(func(c *Config, b bool) { c.Audit.Enabled = b })},
	{"AUDIT_BACKEND", stringVar(func(c *Config, v string) { c.Audit.Backend = v })},
	{"AUDIT_DRIVER", stringVar(func(c *Config, v string) { c.Audit.Driver = v })},
	{"AUDIT_PATH", stringVar(func(c *Config, v string) { c.Audit.Path = v })},
	{"AUDIT_RETENTION_DAYS", intVar(func(c *Config, i int) { c.Audit.RetentionDays = i })},
	{"AUDIT_PRUNE_SCHEDULE", stringVar(func(c *Config, v string) { c.Audit.PruneSchedule = v })},
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. A variable that is set but cannot be parsed is an error.
func applyEnvOverrides(cfg *Config) error {
	var errs []FieldError
	for _, o := range envOverrides {
		val, ok := os.LookupEnv(EnvPrefix + o.name)
		if !ok || val == "" {
			continue
		}
		if err := o.apply(cfg, val); err != nil {
			errs = append(errs, FieldError{
				Field:   EnvPrefix + o.name,
				Message: fmt.Sprintf("invalid value %q: %v", val, err),
			})
		}
	}
	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
