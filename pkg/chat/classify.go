package chat

import (
	"errors"

	"agentic/gateway/pkg/providers"
	"agentic/gateway/pkg/relay"
	"agentic/gateway/pkg/session"
)

// errorType names the class of err for metrics labels and audit records.
func errorType(err error) string {
	var (
		authErr      *providers.AuthError
		rateErr      *providers.RateLimitError
		timeoutErr   *providers.TimeoutError
		providerErr  *providers.ProviderError
		parseErr     *providers.ParseError
		streamErr    *providers.StreamError
		transportErr *providers.TransportError
		validateErr  *providers.ValidationError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, session.ErrSessionNotFound):
		return "session_not_found"
	case errors.Is(err, relay.ErrClientGone):
		return "client_gone"
	case errors.Is(err, relay.ErrIncompleteStream):
		return "incomplete_stream"
	case errors.As(err, &authErr):
		return "auth"
	case errors.As(err, &rateErr):
		return "rate_limit"
	case errors.As(err, &timeoutErr):
		return "timeout"
	case errors.As(err, &providerErr):
		return "provider"
	case errors.As(err, &parseErr):
		return "parse"
	case errors.As(err, &streamErr):
		return "stream"
	case errors.As(err, &transportErr):
		return "transport"
	case errors.As(err, &validateErr):
		return "validation"
	default:
		return "internal"
	}
}

// outcomeFor classifies a failed non-streaming exchange.
func outcomeFor(err error) relay.Outcome {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return relay.OutcomeSessionGone
	case providers.IsProviderError(err):
		return relay.OutcomeProviderError
	default:
		return relay.OutcomeTransportError
	}
}
