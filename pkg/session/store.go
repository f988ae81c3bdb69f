package session

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// DefaultIdleTimeout is used when no idle timeout is configured.
const DefaultIdleTimeout = 30 * time.Minute

// maxIDAttempts bounds the collision retry in Create.
const maxIDAttempts = 8

// Observer receives lifecycle notifications from a Store. The metrics
// collector implements it.
type Observer interface {
	SessionCreated()
	SessionDeleted()
	SessionsExpired(n int)
	SessionsActive(n int)
}

type nopObserver struct{}

func (nopObserver) SessionCreated()     {}
func (nopObserver) SessionDeleted()     {}
func (nopObserver) SessionsExpired(int) {}
func (nopObserver) SessionsActive(int)  {}

// Option configures a Store.
type Option func(*Store)

// WithIdleTimeout sets the idle period after which a session expires.
// Non-positive values disable expiry.
func WithIdleTimeout(d time.Duration) Option {
	return func(s *Store) {
		s.idleTimeout.Store(int64(d))
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithObserver registers a lifecycle observer.
func WithObserver(o Observer) Option {
	return func(s *Store) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithLogger sets the logger used for lifecycle events.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithIDGenerator overrides session id generation.
func WithIDGenerator(gen func() (string, error)) Option {
	return func(s *Store) {
		s.newID = gen
	}
}

// Store is a concurrent registry of sessions.
//
// mu guards only the sessions map. Conversation state is guarded by each
// Session's own mutex, so unrelated sessions proceed in parallel.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	idleTimeout atomic.Int64
	now         func() time.Time
	newID       func() (string, error)
	observer    Observer
	logger      *slog.Logger
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		sessions: make(map[string]*Session),
		now:      time.Now,
		newID:    randomID,
		observer: nopObserver{},
		logger:   slog.Default().With("component", "session.store"),
	}
	s.idleTimeout.Store(int64(DefaultIdleTimeout))
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func randomID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Create registers a new session bound to cred and returns its id.
func (s *Store) Create(cred Credential) (string, error) {
	now := s.now()

	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id, err := s.newID()
		if err != nil {
			return "", fmt.Errorf("failed to generate session id: %w", err)
		}

		s.mu.Lock()
		if _, exists := s.sessions[id]; exists {
			s.mu.Unlock()
			continue
		}
		s.sessions[id] = newSession(id, cred, now)
		active := len(s.sessions)
		s.mu.Unlock()

		s.observer.SessionCreated()
		s.observer.SessionsActive(active)
		s.logger.Debug("session created", "session_id", id)
		return id, nil
	}

	return "", fmt.Errorf("failed to allocate unique session id after %d attempts", maxIDAttempts)
}

// Get returns the live session for id. Expired sessions that have not been
// swept yet are reported as not found.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok || s.expired(sess, s.now()) {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// AppendTurn appends t to the session's log and refreshes its activity time.
// It returns ErrSessionNotFound if the session was deleted or expired since
// the caller looked it up.
func (s *Store) AppendTurn(id string, t Turn) error {
	if !t.Role.Valid() {
		return fmt.Errorf("%w: role %q", ErrInvalidTurn, t.Role)
	}

	sess, err := s.Get(id)
	if err != nil {
		return err
	}
	return sess.append(t, s.now())
}

// Delete removes the session immediately. Deleting an absent session is not
// an error; the return value reports whether anything was removed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	active := len(s.sessions)
	s.mu.Unlock()

	if !ok {
		return false
	}

	sess.markRemoved()
	s.observer.SessionDeleted()
	s.observer.SessionsActive(active)
	s.logger.Debug("session deleted", "session_id", id)
	return true
}

// SweepExpired removes sessions idle for longer than the idle timeout and
// returns how many were removed.
func (s *Store) SweepExpired(now time.Time) int {
	if s.IdleTimeout() <= 0 {
		return 0
	}

	s.mu.RLock()
	var candidates []string
	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			candidates = append(candidates, id)
		}
	}
	s.mu.RUnlock()

	if len(candidates) == 0 {
		return 0
	}

	removed := make([]*Session, 0, len(candidates))
	s.mu.Lock()
	for _, id := range candidates {
		sess, ok := s.sessions[id]
		// Recheck: the session may have been touched since the scan.
		if !ok || !s.expired(sess, now) {
			continue
		}
		delete(s.sessions, id)
		removed = append(removed, sess)
	}
	active := len(s.sessions)
	s.mu.Unlock()

	for _, sess := range removed {
		sess.markRemoved()
	}

	if len(removed) > 0 {
		s.observer.SessionsExpired(len(removed))
		s.observer.SessionsActive(active)
		s.logger.Info("expired sessions swept",
			"removed", len(removed),
			"active", active,
		)
	}
	return len(removed)
}

// Len returns the number of registered sessions, including expired ones not
// yet swept.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Now returns the current time according to the store's clock.
func (s *Store) Now() time.Time {
	return s.now()
}

// IdleTimeout returns the current idle timeout.
func (s *Store) IdleTimeout() time.Duration {
	return time.Duration(s.idleTimeout.Load())
}

// SetIdleTimeout changes the idle timeout at runtime.
func (s *Store) SetIdleTimeout(d time.Duration) {
	s.idleTimeout.Store(int64(d))
}

func (s *Store) expired(sess *Session, now time.Time) bool {
	timeout := s.IdleTimeout()
	if timeout <= 0 {
		return false
	}
	return sess.idleSince(now) > timeout
}
