package anthropic

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"agentic/gateway/pkg/providers"
)

const (
	// DefaultBaseURL is the public API root.
	DefaultBaseURL = "https://api.anthropic.com"

	// DefaultAnthropicVersion is the API version to use
	DefaultAnthropicVersion = "2023-06-01"

	// DefaultMaxTokens is sent when neither the request nor the config sets
	// max_tokens, which the API requires.
	DefaultMaxTokens = 4096

	messagesPath = "/v1/messages"
)

// Provider is the Anthropic adapter.
type Provider struct {
	*providers.HTTPProvider
}

// NewProvider creates an adapter bound to config.APIKey. client and health
// may be shared between adapters built for different sessions.
func NewProvider(config providers.ProviderConfig, client *http.Client, health *providers.HealthTracker) (*Provider, error) {
	if config.Name == "" {
		config.Name = "anthropic"
	}
	if config.APIKey.Reveal() == "" {
		return nil, &providers.ConfigError{
			Provider: config.Name,
			Field:    "api_key",
			Message:  "API key is required for Anthropic",
		}
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.APIVersion == "" {
		config.APIVersion = DefaultAnthropicVersion
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = DefaultMaxTokens
	}

	return &Provider{
		HTTPProvider: providers.NewHTTPProvider(config, client, health),
	}, nil
}

// Complete sends the conversation and returns the assistant's reply.
func (p *Provider) Complete(ctx context.Context, req *providers.Request) (*providers.Completion, error) {
	if err := providers.ValidateRequest(req); err != nil {
		return nil, err
	}

	if timeout := p.Config().Timeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	body := transformRequest(req, p.Config())

	var resp messagesResponse
	if err := p.DoJSONRequest(ctx, http.MethodPost, p.url(), body, &resp, p.headers(false)); err != nil {
		return nil, err
	}

	completion := transformResponse(&resp)
	slog.DebugContext(ctx, "completion request succeeded",
		"provider", p.Name(),
		"model", completion.Model,
		"input_tokens", completion.Usage.InputTokens,
		"output_tokens", completion.Usage.OutputTokens,
	)
	return completion, nil
}

// StreamComplete sends the conversation with streaming enabled.
func (p *Provider) StreamComplete(ctx context.Context, req *providers.Request) (providers.Stream, error) {
	if err := providers.ValidateRequest(req); err != nil {
		return nil, err
	}

	body := transformRequest(req, p.Config())
	body.Stream = true

	payload, err := marshal(body)
	if err != nil {
		return nil, err
	}

	resp, err := p.DoRequest(ctx, http.MethodPost, p.url(), payload, p.headers(true))
	if err != nil {
		return nil, err
	}

	return newStream(p.Name(), resp.Body), nil
}

func (p *Provider) url() string {
	return fmt.Sprintf("%s%s", p.Config().BaseURL, messagesPath)
}

func (p *Provider) headers(stream bool) map[string]string {
	headers := map[string]string{
		"x-api-key":         p.Config().APIKey.Reveal(),
		"anthropic-version": p.Config().APIVersion,
		"Content-Type":      "application/json",
	}
	if stream {
		headers["Accept"] = "text/event-stream"
	}
	return headers
}
