package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"agentic/gateway/pkg/proxy/types"
	"agentic/gateway/pkg/relay"
	"agentic/gateway/pkg/session"
	"agentic/gateway/pkg/sse"
)

// Client talks to a gateway over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client. Streaming calls run until the stream
// ends, so a client-wide Timeout also bounds them.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger used for skipped stream frames.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// New returns a client for the gateway at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     slog.Default(),
		userAgent:  "gateway-client",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the gateway URL the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Reply is the result of SendMessage.
type Reply struct {
	Response string
	History  []session.Turn
}

// CreateSession opens a session bound to apiKey and returns its ID.
func (c *Client) CreateSession(ctx context.Context, apiKey string) (string, error) {
	var out types.CreateSessionResponse
	req := types.CreateSessionRequest{APIKey: apiKey}
	if err := c.doJSON(ctx, http.MethodPost, "/api/session", nil, req, &out); err != nil {
		return "", err
	}
	return out.SessionID, nil
}

// SendMessage sends one message and waits for the complete reply.
func (c *Client) SendMessage(ctx context.Context, sessionID, message, systemPrompt string) (*Reply, error) {
	var out types.ChatResponse
	req := types.ChatRequest{SessionID: sessionID, Message: message, SystemPrompt: systemPrompt}
	if err := c.doJSON(ctx, http.MethodPost, "/api/chat", nil, req, &out); err != nil {
		return nil, err
	}
	return &Reply{Response: out.Response, History: out.ConversationHistory}, nil
}

// StreamMessage sends one message and calls fn for every frame until the
// stream ends. Frames that are not valid JSON are skipped. An error from fn
// stops the stream and is returned.
func (c *Client) StreamMessage(ctx context.Context, sessionID, message, systemPrompt string, fn func(relay.Frame) error) error {
	req := types.ChatRequest{SessionID: sessionID, Message: message, SystemPrompt: systemPrompt}
	resp, err := c.do(ctx, http.MethodPost, "/api/stream", nil, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	reader := sse.NewReader(resp.Body)
	for {
		ev, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read stream: %w", err)
		}

		var frame relay.Frame
		if err := json.Unmarshal([]byte(ev.Data), &frame); err != nil {
			c.logger.Debug("skipping malformed stream frame", "data", ev.Data, "error", err)
			continue
		}
		if err := fn(frame); err != nil {
			return err
		}
	}
}

// GetHistory returns the session's conversation so far.
func (c *Client) GetHistory(ctx context.Context, sessionID string) ([]session.Turn, error) {
	var out types.HistoryResponse
	q := url.Values{"sessionId": {sessionID}}
	if err := c.doJSON(ctx, http.MethodGet, "/api/history", q, nil, &out); err != nil {
		return nil, err
	}
	return out.ConversationHistory, nil
}

// DeleteSession ends the session. Deleting an unknown session succeeds.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	q := url.Values{"sessionId": {sessionID}}
	return c.doJSON(ctx, http.MethodDelete, "/api/session", q, nil, nil)
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	resp, err := c.do(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// do sends the request and returns the response when it is 2xx. Any other
// status is consumed and returned as *APIError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (*http.Response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json, text/event-stream")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()
	return nil, parseAPIError(resp)
}

func parseAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	var body types.ErrorResponse
	if err := json.Unmarshal(data, &body); err == nil && body.Error != "" {
		apiErr.Message = body.Error
		apiErr.Code = body.Code
		return apiErr
	}

	apiErr.Message = strings.TrimSpace(string(data))
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
