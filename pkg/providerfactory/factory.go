// Package providerfactory builds provider adapters for individual sessions.
package providerfactory

import (
	"fmt"
	"log/slog"
	"net/http"

	"agentic/gateway/pkg/providers"
	"agentic/gateway/pkg/providers/anthropic"
	"agentic/gateway/pkg/providers/openai"
	"agentic/gateway/pkg/session"
)

// Supported provider types.
const (
	TypeAnthropic = "anthropic"
	TypeOpenAI    = "openai"
)

// NewProvider creates an adapter for config.Type. An empty type is inferred
// from the name and defaults to Anthropic.
func NewProvider(config providers.ProviderConfig, client *http.Client, health *providers.HealthTracker) (providers.Provider, error) {
	providerType := config.Type
	if providerType == "" {
		providerType = inferProviderType(config.Name)
		config.Type = providerType
	}

	var (
		provider providers.Provider
		err      error
	)
	switch providerType {
	case TypeAnthropic:
		provider, err = anthropic.NewProvider(config, client, health)
	case TypeOpenAI:
		provider, err = openai.NewProvider(config, client, health)
	default:
		return nil, &providers.ConfigError{
			Provider: config.Name,
			Field:    "type",
			Message:  fmt.Sprintf("unsupported provider type: %q (supported: anthropic, openai)", providerType),
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create provider %q: %w", config.Name, err)
	}
	return provider, nil
}

// Factory creates per-session adapters that share one connection pool and
// one health record.
type Factory struct {
	config providers.ProviderConfig
	client *http.Client
	health *providers.HealthTracker
}

// New validates config and returns a Factory. config.APIKey is ignored;
// each session supplies its own.
func New(config providers.ProviderConfig) (*Factory, error) {
	if config.Type == "" {
		config.Type = inferProviderType(config.Name)
	}
	if config.Name == "" {
		config.Name = config.Type
	}
	switch config.Type {
	case TypeAnthropic, TypeOpenAI:
	default:
		return nil, &providers.ConfigError{
			Provider: config.Name,
			Field:    "type",
			Message:  fmt.Sprintf("unsupported provider type: %q (supported: anthropic, openai)", config.Type),
		}
	}
	config.APIKey = ""

	f := &Factory{
		config: config,
		client: providers.NewHTTPClient(config),
		health: providers.NewHealthTracker(config.Name),
	}

	slog.Info("provider factory initialized",
		"provider", config.Name,
		"type", config.Type,
		"base_url", config.BaseURL,
		"model", config.Model,
	)
	return f, nil
}

// ForCredential returns an adapter that authenticates with cred.
func (f *Factory) ForCredential(cred session.Credential) (providers.Provider, error) {
	config := f.config
	config.APIKey = cred
	return NewProvider(config, f.client, f.health)
}

// Name returns the configured provider name.
func (f *Factory) Name() string {
	return f.config.Name
}

// Model returns the configured default model.
func (f *Factory) Model() string {
	return f.config.Model
}

// Health returns the shared health snapshot.
func (f *Factory) Health() providers.Health {
	return f.health.Snapshot()
}

// Close releases idle pooled connections.
func (f *Factory) Close() error {
	f.client.CloseIdleConnections()
	slog.Info("provider factory closed", "provider", f.config.Name)
	return nil
}

func inferProviderType(name string) string {
	switch name {
	case TypeOpenAI:
		return TypeOpenAI
	default:
		return TypeAnthropic
	}
}
