package handlers

import (
	"context"
	"time"

	"agentic/gateway/pkg/chat"
	"agentic/gateway/pkg/relay"
	"agentic/gateway/pkg/session"
)

// SessionStore is the session operations the handlers need.
// *session.Store implements it.
type SessionStore interface {
	Create(cred session.Credential) (string, error)
	Get(id string) (*session.Session, error)
	Delete(id string) bool
}

// ChatService runs exchanges. *chat.Service implements it.
type ChatService interface {
	Send(ctx context.Context, req chat.SendRequest) (*chat.SendResult, error)
	Stream(ctx context.Context, req chat.SendRequest, newSink chat.SinkFactory) (relay.Result, error)
}

// Limits bounds what a client may send and how long a frame write may block.
type Limits struct {
	// MaxBodyBytes caps JSON request bodies and WebSocket messages.
	MaxBodyBytes int64

	// WriteTimeout is the per-frame write deadline on streams.
	WriteTimeout time.Duration
}
