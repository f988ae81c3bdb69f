package providers

import (
	"errors"
	"fmt"
	"time"
)

// ProviderError is a failure reported by the provider itself, either as an
// HTTP error status or as an error event inside a stream.
type ProviderError struct {
	// Provider is the name of the provider that returned the error
	Provider string

	// StatusCode is the HTTP status code (0 for in-stream errors)
	StatusCode int

	// Type is the provider's error type, when it reports one
	Type string

	// Message is the provider's error message
	Message string
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider %q error (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("provider %q error: %s", e.Provider, e.Message)
}

// AuthError means the provider rejected the session's credential (HTTP 401
// or 403).
type AuthError struct {
	Provider string
	Message  string
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return fmt.Sprintf("provider %q authentication failed: %s", e.Provider, e.Message)
}

// RateLimitError means the provider throttled the credential (HTTP 429).
type RateLimitError struct {
	Provider string

	// RetryAfter is the provider's suggested wait, if any. The gateway does
	// not retry; it is passed on for the caller's benefit.
	RetryAfter time.Duration

	Message string
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("provider %q rate limit exceeded (retry after %s): %s",
			e.Provider, e.RetryAfter, e.Message)
	}
	return fmt.Sprintf("provider %q rate limit exceeded: %s", e.Provider, e.Message)
}

// TransportError is a network-level failure reaching the provider.
type TransportError struct {
	Provider string
	Cause    error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("provider %q transport error: %v", e.Provider, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// TimeoutError means the request exceeded its deadline.
type TimeoutError struct {
	Provider string
	Timeout  time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("provider %q request timeout after %s", e.Provider, e.Timeout)
}

// ParseError means the provider's response could not be decoded.
type ParseError struct {
	Provider string

	// RawResponse is the body or event data that failed to parse
	RawResponse string

	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("provider %q response parse error: %v", e.Provider, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// StreamError is a failure while reading an open stream.
type StreamError struct {
	Provider string
	Message  string
	Cause    error
}

// Error implements the error interface.
func (e *StreamError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("provider %q stream error: %s: %v", e.Provider, e.Message, e.Cause)
	}
	return fmt.Sprintf("provider %q stream error: %s", e.Provider, e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *StreamError) Unwrap() error {
	return e.Cause
}

// ValidationError is a request rejected before it was sent.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field %q: %s", e.Field, e.Message)
}

// ConfigError is an invalid adapter configuration.
type ConfigError struct {
	Provider string
	Field    string
	Message  string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("provider %q configuration error for field %q: %s",
		e.Provider, e.Field, e.Message)
}

// IsTransportError reports whether err means the exchange with the provider
// broke, as opposed to the provider answering with a failure.
func IsTransportError(err error) bool {
	var (
		transportErr *TransportError
		timeoutErr   *TimeoutError
		parseErr     *ParseError
		streamErr    *StreamError
	)
	return errors.As(err, &transportErr) ||
		errors.As(err, &timeoutErr) ||
		errors.As(err, &parseErr) ||
		errors.As(err, &streamErr)
}

// IsProviderError reports whether err was reported by the provider.
func IsProviderError(err error) bool {
	var (
		providerErr  *ProviderError
		authErr      *AuthError
		rateLimitErr *RateLimitError
	)
	return errors.As(err, &providerErr) ||
		errors.As(err, &authErr) ||
		errors.As(err, &rateLimitErr)
}

// UserMessage returns a short description of err that is safe to show to the
// gateway's caller. It never includes credentials or raw response bodies.
func UserMessage(err error) string {
	var (
		providerErr  *ProviderError
		authErr      *AuthError
		rateLimitErr *RateLimitError
		timeoutErr   *TimeoutError
	)
	switch {
	case errors.As(err, &authErr):
		return "Provider rejected the session credential"
	case errors.As(err, &rateLimitErr):
		return "Provider rate limit exceeded"
	case errors.As(err, &timeoutErr):
		return "Provider request timed out"
	case errors.As(err, &providerErr):
		if providerErr.Message != "" {
			return providerErr.Message
		}
		return "Provider returned an error"
	case IsTransportError(err):
		return "Failed to reach provider"
	default:
		return "Provider request failed"
	}
}
