package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gateway.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.ListenAddress != ":8080" {
		t.Errorf("listen address = %q", cfg.Server.ListenAddress)
	}
	if cfg.Server.WriteTimeout != 0 {
		t.Errorf("write timeout = %v, want 0 for streaming", cfg.Server.WriteTimeout)
	}
	if cfg.Server.MaxBodyBytes != 10<<20 {
		t.Errorf("max body bytes = %d", cfg.Server.MaxBodyBytes)
	}
	if cfg.Sessions.IdleTimeout != 30*time.Minute || cfg.Sessions.SweepInterval != time.Minute {
		t.Errorf("sessions = %+v", cfg.Sessions)
	}
	if cfg.Provider.Type != "anthropic" || cfg.Provider.Model != "claude-sonnet-4-5" || cfg.Provider.MaxTokens != 4096 {
		t.Errorf("provider = %+v", cfg.Provider)
	}
	if !cfg.Relay.WebSocketEnabled {
		t.Error("websocket should be enabled by default")
	}
	if !cfg.Audit.Enabled || cfg.Audit.Backend != "memory" || cfg.Audit.RetentionDays != 30 {
		t.Errorf("audit = %+v", cfg.Audit)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("Default() does not validate: %v", err)
	}
}

func TestApplyDefaults_Idempotent(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	first := *cfg
	ApplyDefaults(cfg)

	if cfg.Server.ListenAddress != first.Server.ListenAddress ||
		cfg.Sessions.IdleTimeout != first.Sessions.IdleTimeout ||
		len(cfg.Server.CORSOrigins) != len(first.Server.CORSOrigins) {
		t.Error("ApplyDefaults() changed an already-defaulted config")
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{
		Server:   ServerConfig{ListenAddress: "127.0.0.1:9000"},
		Sessions: SessionsConfig{IdleTimeout: time.Minute},
		Provider: ProviderConfig{Type: "openai", Model: "gpt-4o"},
	}
	ApplyDefaults(cfg)

	if cfg.Server.ListenAddress != "127.0.0.1:9000" {
		t.Errorf("listen address = %q", cfg.Server.ListenAddress)
	}
	if cfg.Sessions.IdleTimeout != time.Minute {
		t.Errorf("idle timeout = %v", cfg.Sessions.IdleTimeout)
	}
	if cfg.Provider.Type != "openai" || cfg.Provider.Model != "gpt-4o" {
		t.Errorf("provider = %+v", cfg.Provider)
	}
}

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_address: "0.0.0.0:9090"
  read_timeout: 60s
  cors_origins: ["https://app.example.com"]

sessions:
  idle_timeout: 10m

provider:
  type: openai
  base_url: "https://api.openai.com/v1"
  model: gpt-4o

relay:
  websocket_enabled: false

telemetry:
  logging:
    level: debug
    format: text

audit:
  backend: sqlite
  driver: sqlite3
  path: ./audit.db
  retention_days: 0
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.ListenAddress != "0.0.0.0:9090" || cfg.Server.ReadTimeout != time.Minute {
		t.Errorf("server = %+v", cfg.Server)
	}
	if len(cfg.Server.CORSOrigins) != 1 || cfg.Server.CORSOrigins[0] != "https://app.example.com" {
		t.Errorf("cors origins = %v", cfg.Server.CORSOrigins)
	}
	if cfg.Sessions.IdleTimeout != 10*time.Minute {
		t.Errorf("idle timeout = %v", cfg.Sessions.IdleTimeout)
	}
	if cfg.Sessions.SweepInterval != time.Minute {
		t.Errorf("sweep interval default not applied: %v", cfg.Sessions.SweepInterval)
	}
	if cfg.Provider.Type != "openai" || cfg.Provider.Model != "gpt-4o" {
		t.Errorf("provider = %+v", cfg.Provider)
	}
	if cfg.Relay.WebSocketEnabled {
		t.Error("explicit websocket_enabled: false was ignored")
	}
	if cfg.Telemetry.Logging.Level != "debug" || cfg.Telemetry.Logging.Format != "text" {
		t.Errorf("logging = %+v", cfg.Telemetry.Logging)
	}
	if cfg.Audit.Driver != "sqlite3" || cfg.Audit.RetentionDays != 0 {
		t.Errorf("audit = %+v", cfg.Audit)
	}
}

func TestLoadConfig_EmptyFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Server.ListenAddress != DefaultListenAddress || !cfg.Relay.WebSocketEnabled {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "malformed yaml",
			content: "server: [unclosed",
			wantErr: "failed to parse",
		},
		{
			name:    "unknown field",
			content: "server:\n  listen_addr: \":80\"\n",
			wantErr: "failed to parse",
		},
		{
			name:    "invalid provider type",
			content: "provider:\n  type: gemini\n",
			wantErr: "provider.type",
		},
		{
			name:    "negative idle timeout",
			content: "sessions:\n  idle_timeout: -1m\n",
			wantErr: "sessions.idle_timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("LoadConfig() succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want os.ErrNotExist", err)
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_address: ":8080"
sessions:
  idle_timeout: 10m
`)

	t.Setenv("GATEWAY_SERVER_LISTEN_ADDRESS", "127.0.0.1:7000")
	t.Setenv("GATEWAY_SESSIONS_IDLE_TIMEOUT", "45m")
	t.Setenv("GATEWAY_PROVIDER_MAX_TOKENS", "1024")
	t.Setenv("GATEWAY_RELAY_WEBSOCKET_ENABLED", "false")
	t.Setenv("GATEWAY_SERVER_CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("GATEWAY_TELEMETRY_TRACING_SAMPLE_RATIO", "0.25")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
	}

	if cfg.Server.ListenAddress != "127.0.0.1:7000" {
		t.Errorf("listen address = %q", cfg.Server.ListenAddress)
	}
	if cfg.Sessions.IdleTimeout != 45*time.Minute {
		t.Errorf("idle timeout = %v", cfg.Sessions.IdleTimeout)
	}
	if cfg.Provider.MaxTokens != 1024 {
		t.Errorf("max tokens = %d", cfg.Provider.MaxTokens)
	}
	if cfg.Relay.WebSocketEnabled {
		t.Error("websocket override ignored")
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "https://b.example" {
		t.Errorf("cors origins = %v", cfg.Server.CORSOrigins)
	}
	if cfg.Telemetry.Tracing.SampleRatio != 0.25 {
		t.Errorf("sample ratio = %v", cfg.Telemetry.Tracing.SampleRatio)
	}
}

func TestLoadConfigWithEnvOverrides_NoFile(t *testing.T) {
	t.Setenv("GATEWAY_PROVIDER_TYPE", "openai")

	cfg, err := LoadConfigWithEnvOverrides("")
	if err != nil {
		t.Fatalf("error = %v", err)
	}
	if cfg.Provider.Type != "openai" {
		t.Errorf("provider type = %q", cfg.Provider.Type)
	}
}

func TestLoadConfigWithEnvOverrides_InvalidValue(t *testing.T) {
	t.Setenv("GATEWAY_SESSIONS_IDLE_TIMEOUT", "forever")

	_, err := LoadConfigWithEnvOverrides("")

	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	if verr.Errors[0].Field != "GATEWAY_SESSIONS_IDLE_TIMEOUT" {
		t.Errorf("field = %q", verr.Errors[0].Field)
	}
}
