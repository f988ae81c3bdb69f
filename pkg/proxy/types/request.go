package types

// CreateSessionRequest is the body of POST /api/session.
type CreateSessionRequest struct {
	// APIKey is the provider credential used for every exchange in the
	// session. It is held in memory only.
	APIKey string `json:"apiKey"`
}

// ChatRequest is the body of POST /api/chat and POST /api/stream.
type ChatRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`

	// SystemPrompt applies to this exchange only and is not stored.
	SystemPrompt string `json:"systemPrompt,omitempty"`
}

// StreamStart is the first message a client sends on /api/stream/ws. The
// session is named in the upgrade request's query.
type StreamStart struct {
	Message      string `json:"message"`
	SystemPrompt string `json:"systemPrompt,omitempty"`
}
