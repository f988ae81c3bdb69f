package session

import (
	"sync"
	"sync/atomic"
	"time"
)

// Session is a server-held conversation bound to one caller's credential.
//
// Handlers receive a *Session from Store.Get for the duration of a single
// request and must not retain it afterwards.
type Session struct {
	id         string
	credential Credential
	createdAt  time.Time

	// lastActive holds UnixNano so the sweeper can read it without taking mu.
	lastActive atomic.Int64

	mu      sync.Mutex
	history ConversationLog
	removed bool
}

func newSession(id string, cred Credential, now time.Time) *Session {
	s := &Session{
		id:         id,
		credential: cred,
		createdAt:  now,
	}
	s.lastActive.Store(now.UnixNano())
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Credential returns the provider credential bound to the session.
func (s *Session) Credential() Credential {
	return s.credential
}

// CreatedAt returns the creation time.
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// LastActiveAt returns the time of the last append, or the creation time.
func (s *Session) LastActiveAt() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

// History returns a snapshot of the conversation in insertion order.
func (s *Session) History() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Snapshot()
}

// Len returns the number of turns in the conversation.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Len()
}

// append adds t under the session lock. It fails once the session has been
// removed from its store.
func (s *Session) append(t Turn, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.removed {
		return ErrSessionNotFound
	}
	s.history.Append(t)
	s.lastActive.Store(now.UnixNano())
	return nil
}

// markRemoved waits out any in-flight append and then rejects later ones.
func (s *Session) markRemoved() {
	s.mu.Lock()
	s.removed = true
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	return now.Sub(s.LastActiveAt())
}
