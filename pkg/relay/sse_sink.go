package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"agentic/gateway/pkg/sse"
)

// SSESink writes frames as Server-Sent Events on an HTTP response.
type SSESink struct {
	writer       *sse.Writer
	rc           *http.ResponseController
	writeTimeout time.Duration

	mu     sync.Mutex
	closed bool
}

// NewSSESink sends the event-stream headers and returns a sink. After this
// call the response status is committed; later failures can only be reported
// as frames.
func NewSSESink(w http.ResponseWriter, writeTimeout time.Duration) (*SSESink, error) {
	writer, err := sse.NewWriter(w)
	if err != nil {
		return nil, err
	}

	sse.SetHeaders(w)
	w.WriteHeader(http.StatusOK)

	rc := http.NewResponseController(w)
	if err := rc.Flush(); err != nil {
		return nil, fmt.Errorf("failed to flush SSE headers: %w", err)
	}

	return &SSESink{
		writer:       writer,
		rc:           rc,
		writeTimeout: writeTimeout,
	}, nil
}

// Send writes one frame. It blocks while the client is not reading.
func (s *SSESink) Send(ctx context.Context, f Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClientGone
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal frame: %w", err)
	}

	if s.writeTimeout > 0 {
		if err := s.rc.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil && !errors.Is(err, http.ErrNotSupported) {
			return err
		}
	}
	return s.writer.WriteData(payload)
}

// Close marks the sink closed. The HTTP response itself ends when the
// handler returns.
func (s *SSESink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if s.writeTimeout > 0 {
		_ = s.rc.SetWriteDeadline(time.Time{})
	}
	return nil
}
