package relay

import "errors"

// State is a relay's position in its lifecycle.
type State int

const (
	StateIdle State = iota
	StateStreaming
	StateCompleted
	StateFailed
)

// String returns the state name used in logs.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStreaming:
		return "streaming"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Outcome classifies how an exchange ended. It is used as a metrics label
// and in the exchange audit trail.
type Outcome string

const (
	OutcomeCompleted      Outcome = "completed"
	OutcomeProviderError  Outcome = "provider_error"
	OutcomeTransportError Outcome = "transport_error"
	OutcomeDisconnected   Outcome = "disconnected"
	OutcomeSessionGone    Outcome = "session_gone"
)

// ErrClientGone means the client stopped accepting frames.
var ErrClientGone = errors.New("client disconnected")

// ErrIncompleteStream means the provider stream ended without a terminal
// event.
var ErrIncompleteStream = errors.New("provider stream ended without a terminal event")
