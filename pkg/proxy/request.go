package proxy

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"agentic/gateway/pkg/proxy/types"
)

// DefaultMaxBodyBytes is the request body limit used when none is configured.
const DefaultMaxBodyBytes = 10 * 1024 * 1024

// Client-facing validation messages.
const (
	MessageAPIKeyRequired     = "API key is required"
	MessageSessionRequired    = "Session ID is required"
	MessageChatFieldsRequired = "Session ID and message are required"
)

// RequestError represents a request parsing or validation error.
type RequestError struct {
	Message string
	Field   string
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// DecodeJSON reads a JSON request body into dst. The body is capped at
// maxBytes (DefaultMaxBodyBytes when <= 0); an oversized, empty, or
// malformed body yields a *RequestError.
func DecodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, dst any) error {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	body := http.MaxBytesReader(w, r.Body, maxBytes)
	defer body.Close()

	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return &RequestError{
				Message: fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxErr.Limit),
				Field:   "body",
			}
		case errors.Is(err, io.EOF):
			return &RequestError{Message: "Request body is required", Field: "body"}
		default:
			return &RequestError{Message: "Request body must be valid JSON", Field: "body"}
		}
	}
	return nil
}

// ParseCreateSessionRequest parses and validates a POST /api/session body.
func ParseCreateSessionRequest(w http.ResponseWriter, r *http.Request, maxBytes int64) (*types.CreateSessionRequest, error) {
	var req types.CreateSessionRequest
	if err := DecodeJSON(w, r, maxBytes, &req); err != nil {
		return nil, err
	}
	req.APIKey = strings.TrimSpace(req.APIKey)
	if req.APIKey == "" {
		return nil, &RequestError{Message: MessageAPIKeyRequired, Field: "apiKey"}
	}
	return &req, nil
}

// ParseChatRequest parses and validates a POST /api/chat or /api/stream body.
func ParseChatRequest(w http.ResponseWriter, r *http.Request, maxBytes int64) (*types.ChatRequest, error) {
	var req types.ChatRequest
	if err := DecodeJSON(w, r, maxBytes, &req); err != nil {
		return nil, err
	}
	if req.SessionID == "" || req.Message == "" {
		return nil, &RequestError{Message: MessageChatFieldsRequired, Field: "sessionId"}
	}
	return &req, nil
}

// RequireSessionID returns the sessionId query parameter.
func RequireSessionID(r *http.Request) (string, error) {
	id := r.URL.Query().Get("sessionId")
	if id == "" {
		return "", &RequestError{Message: MessageSessionRequired, Field: "sessionId"}
	}
	return id, nil
}

// QueryInt returns the named query parameter as an int, or def when it is
// absent.
func QueryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, &RequestError{Message: fmt.Sprintf("%s must be a non-negative integer", name), Field: name}
	}
	return n, nil
}
