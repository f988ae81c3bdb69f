package audit

import (
	"context"
	"time"
)

// Transport values for Record.Transport.
const (
	TransportHTTP      = "http"
	TransportSSE       = "sse"
	TransportWebSocket = "websocket"
)

// Record describes one exchange.
type Record struct {
	ID        string `json:"id"`
	SessionID string `json:"sessionId"`
	RequestID string `json:"requestId,omitempty"`
	Transport string `json:"transport"`

	Provider string `json:"provider"`
	Model    string `json:"model"`

	// Outcome is how the exchange ended: completed, provider_error,
	// transport_error, disconnected or session_gone.
	Outcome    string `json:"outcome"`
	StopReason string `json:"stopReason,omitempty"`

	// ErrorType is the Go type of the failure, never its message.
	ErrorType string `json:"errorType,omitempty"`

	Frames        int `json:"frames"`
	ResponseBytes int `json:"responseBytes"`
	InputTokens   int `json:"inputTokens,omitempty"`
	OutputTokens  int `json:"outputTokens,omitempty"`

	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"durationNs"`
}

// Query selects records. Zero fields do not filter.
type Query struct {
	SessionID string

	// Since excludes records started before it.
	Since time.Time

	// Limit caps the result size. Values <= 0 use DefaultQueryLimit.
	Limit int
}

// DefaultQueryLimit and MaxQueryLimit bound Query.Limit.
const (
	DefaultQueryLimit = 100
	MaxQueryLimit     = 1000
)

func (q *Query) limit() int {
	switch {
	case q == nil || q.Limit <= 0:
		return DefaultQueryLimit
	case q.Limit > MaxQueryLimit:
		return MaxQueryLimit
	default:
		return q.Limit
	}
}

// Store persists audit records.
type Store interface {
	// Store saves a record.
	Store(ctx context.Context, record *Record) error

	// Query returns matching records, newest first.
	Query(ctx context.Context, query *Query) ([]*Record, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int64, error)

	// DeleteBefore removes records started before cutoff and reports how
	// many were removed.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Ping reports whether the store is usable.
	Ping(ctx context.Context) error

	Close() error
}
