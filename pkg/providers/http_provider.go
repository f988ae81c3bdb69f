package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"agentic/gateway/pkg/telemetry/tracing"
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 * 1024

// NewHTTPClient builds a pooled HTTP client for config. The client has no
// overall timeout so long streams are not cut off; non-streaming calls bound
// themselves with a context deadline instead.
func NewHTTPClient(config ProviderConfig) *http.Client {
	maxIdle := config.MaxIdleConns
	if maxIdle == 0 {
		maxIdle = 100
	}
	maxIdlePerHost := config.MaxIdleConnsPerHost
	if maxIdlePerHost == 0 {
		maxIdlePerHost = 10
	}
	idleTimeout := config.IdleConnTimeout
	if idleTimeout == 0 {
		idleTimeout = 90 * time.Second
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          maxIdle,
		MaxIdleConnsPerHost:   maxIdlePerHost,
		IdleConnTimeout:       idleTimeout,
		ResponseHeaderTimeout: config.Timeout,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{Transport: transport}
}

// HTTPProvider is the base for HTTP adapters. It issues exactly one request
// per call and records the outcome on a shared HealthTracker.
type HTTPProvider struct {
	config ProviderConfig
	client *http.Client
	health *HealthTracker
}

// NewHTTPProvider creates a base provider. client and health may be shared
// across many providers; nil values get private defaults.
func NewHTTPProvider(config ProviderConfig, client *http.Client, health *HealthTracker) *HTTPProvider {
	if client == nil {
		client = NewHTTPClient(config)
	}
	if health == nil {
		health = NewHealthTracker(config.Name)
	}
	return &HTTPProvider{
		config: config,
		client: client,
		health: health,
	}
}

// Name returns the provider's configured name.
func (p *HTTPProvider) Name() string {
	return p.config.Name
}

// Config returns the provider's configuration.
func (p *HTTPProvider) Config() ProviderConfig {
	return p.config
}

// Health returns the shared health tracker.
func (p *HTTPProvider) Health() *HealthTracker {
	return p.health
}

// DoRequest performs one HTTP request and maps failures to typed errors.
// On success the caller owns the response body.
func (p *HTTPProvider) DoRequest(ctx context.Context, method, url string, body []byte, headers map[string]string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}
	if req.Header.Get("Content-Type") == "" && body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	tracing.Inject(ctx, req.Header)

	slog.Debug("sending request to provider",
		"provider", p.config.Name,
		"method", method,
		"url", url,
	)

	resp, err := p.client.Do(req)
	if err != nil {
		mapped := p.mapTransportError(ctx, err)
		if !errors.Is(err, context.Canceled) {
			p.health.RecordFailure(mapped)
		}
		return nil, mapped
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		p.health.RecordSuccess()
		return resp, nil
	}

	errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	resp.Body.Close()
	errType, message := extractErrorMessage(errorBody)

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		p.health.RecordRejected()
		return nil, &AuthError{
			Provider: p.config.Name,
			Message:  message,
		}

	case http.StatusTooManyRequests:
		p.health.RecordRejected()
		return nil, &RateLimitError{
			Provider:   p.config.Name,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Message:    message,
		}

	default:
		providerErr := &ProviderError{
			Provider:   p.config.Name,
			StatusCode: resp.StatusCode,
			Type:       errType,
			Message:    message,
		}
		if resp.StatusCode >= 500 {
			p.health.RecordFailure(providerErr)
		} else {
			p.health.RecordRejected()
		}
		return nil, providerErr
	}
}

// DoJSONRequest performs a JSON request and decodes the response into
// respBody.
func (p *HTTPProvider) DoJSONRequest(ctx context.Context, method, url string, reqBody interface{}, respBody interface{}, headers map[string]string) error {
	var bodyBytes []byte
	var err error
	if reqBody != nil {
		bodyBytes, err = json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	resp, err := p.DoRequest(ctx, method, url, bodyBytes, headers)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	responseBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{
			Provider: p.config.Name,
			Cause:    fmt.Errorf("failed to read response: %w", err),
		}
	}

	if respBody != nil && len(responseBytes) > 0 {
		if err := json.Unmarshal(responseBytes, respBody); err != nil {
			return &ParseError{
				Provider:    p.config.Name,
				RawResponse: string(responseBytes),
				Cause:       fmt.Errorf("failed to unmarshal response: %w", err),
			}
		}
	}

	return nil
}

func (p *HTTPProvider) mapTransportError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return ctx.Err()
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &TimeoutError{Provider: p.config.Name, Timeout: p.config.Timeout}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TimeoutError{Provider: p.config.Name, Timeout: p.config.Timeout}
	}
	return &TransportError{Provider: p.config.Name, Cause: err}
}

// extractErrorMessage pulls the message out of the error bodies used by the
// supported providers:
//
//	{"type":"error","error":{"type":"invalid_request_error","message":"..."}}
//	{"error":{"message":"...","type":"..."}}
func extractErrorMessage(body []byte) (string, string) {
	var envelope struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if envelope.Error.Message != "" {
			return envelope.Error.Type, envelope.Error.Message
		}
		if envelope.Message != "" {
			return "", envelope.Message
		}
	}

	text := strings.TrimSpace(string(body))
	if len(text) > 200 {
		text = text[:200]
	}
	if text == "" {
		text = "empty error response"
	}
	return "", text
}

// parseRetryAfter parses the Retry-After header value.
// It supports both delay-seconds and HTTP-date formats.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}

	var seconds int
	if _, err := fmt.Sscanf(header, "%d", &seconds); err == nil {
		return time.Duration(seconds) * time.Second
	}

	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}

	return 0
}
