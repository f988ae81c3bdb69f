package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"agentic/gateway/pkg/providers"
)

// DefaultBaseURL is the public API root.
const DefaultBaseURL = "https://api.openai.com/v1"

var errNoChoices = errors.New("response contained no choices")

// Provider is the OpenAI-compatible adapter.
type Provider struct {
	*providers.HTTPProvider
}

// NewProvider creates an adapter bound to config.APIKey.
func NewProvider(config providers.ProviderConfig, client *http.Client, health *providers.HealthTracker) (*Provider, error) {
	if config.Name == "" {
		config.Name = "openai"
	}
	if config.APIKey.Reveal() == "" {
		return nil, &providers.ConfigError{
			Provider: config.Name,
			Field:    "api_key",
			Message:  "API key is required for OpenAI",
		}
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	config.BaseURL = strings.TrimSuffix(config.BaseURL, "/")

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

	var resp chatResponse
	if err := p.DoJSONRequest(ctx, http.MethodPost, p.url(), transformRequest(req, p.Config()), &resp, p.headers(false)); err != nil {
		return nil, err
	}

	completion, err := transformResponse(&resp)
	if err != nil {
		return nil, &providers.ParseError{Provider: p.Name(), Cause: err}
	}

	slog.DebugContext(ctx, "completion request succeeded",
		"provider", p.Name(),
		"model", completion.Model,
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

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := p.DoRequest(ctx, http.MethodPost, p.url(), payload, p.headers(true))
	if err != nil {
		return nil, err
	}
	return newStream(p.Name(), resp.Body), nil
}

func (p *Provider) url() string {
	return p.Config().BaseURL + "/chat/completions"
}

func (p *Provider) headers(stream bool) map[string]string {
	headers := map[string]string{
		"Authorization": "Bearer " + p.Config().APIKey.Reveal(),
		"Content-Type":  "application/json",
	}
	if stream {
		headers["Accept"] = "text/event-stream"
	}
	return headers
}
