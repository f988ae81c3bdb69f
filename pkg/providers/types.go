package providers

import (
	"time"

	"agentic/gateway/pkg/session"
)

// ProviderConfig configures an adapter.
type ProviderConfig struct {
	// Name is the adapter name reported in logs, metrics and errors.
	Name string

	// Type selects the adapter implementation ("anthropic", "openai").
	Type string

	// BaseURL is the API root, without the endpoint path.
	BaseURL string

	// APIKey is the caller's credential. It is set per session.
	APIKey session.Credential

	// Model is used when a Request does not name one.
	Model string

	// MaxTokens is used when a Request does not set one.
	MaxTokens int

	// APIVersion is sent to providers that version their API by header.
	APIVersion string

	// Timeout bounds a non-streaming round trip and the wait for response
	// headers on a streaming one.
	Timeout time.Duration

	// Connection pool settings.
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration
}

// Request is a provider-agnostic completion request.
type Request struct {
	// History is the full conversation, oldest first, ending with the
	// user turn to answer.
	History []session.Turn

	// System carries per-call system instructions. They are never stored in
	// the conversation.
	System string

	// Model overrides ProviderConfig.Model.
	Model string

	// MaxTokens overrides ProviderConfig.MaxTokens.
	MaxTokens int
}

// Completion is the result of a non-streaming call.
type Completion struct {
	Content    string
	Model      string
	StopReason string
	Usage      Usage
}

// Usage reports token consumption when the provider includes it.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Health is a point-in-time view of a provider's recent outcomes.
type Health struct {
	Healthy               bool
	ConsecutiveFailures   int
	LastError             string
	LastCheck             time.Time
	LastSuccessfulRequest time.Time
	TotalRequests         int64
	FailedRequests        int64
}
