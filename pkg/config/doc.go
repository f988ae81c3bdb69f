// Package config provides configuration management for the gateway.
//
// Configuration is read from a YAML file, overlaid with environment
// variables, and validated before use. Every field has a default, so the
// gateway also runs with no file at all.
//
// # Configuration Loading
//
//	cfg, err := config.LoadConfig("gateway.yaml")                 // file only
//	cfg, err := config.LoadConfigWithEnvOverrides("gateway.yaml") // file + env
//	cfg, err := config.LoadConfigWithEnvOverrides("")             // defaults + env
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention GATEWAY_SECTION_FIELD:
//
//   - GATEWAY_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - GATEWAY_SESSIONS_IDLE_TIMEOUT overrides sessions.idle_timeout
//   - GATEWAY_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// A variable that is set but cannot be parsed fails the load.
//
// There is no provider API key setting; every session brings
// its own credential.
//
// # Hot Reload
//
// Watcher re-reads the file when it changes. The gateway applies the log
// level and the session idle timeout from the new configuration; other
// fields take effect on restart. A file that fails validation is logged and
// ignored.
//
// # Validation
//
// Validation errors include field paths:
//
//	configuration validation failed with 2 errors:
//	  - provider.type: invalid provider type "gemini": must be 'anthropic' or 'openai'
//	  - sessions.idle_timeout: idle timeout must be positive
//
// # Example Configuration
//
//	server:
//	  listen_address: ":8080"
//	  cors_origins: ["https://app.example.com"]
//
//	sessions:
//	  idle_timeout: 30m
//	  sweep_interval: 1m
//
//	provider:
//	  type: anthropic
//	  model: claude-sonnet-4-5
//
//	audit:
//	  backend: sqlite
//	  path: data/audit.db
//
//	telemetry:
//	  logging:
//	    level: info
//	    format: json
package config
