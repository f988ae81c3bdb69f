package relay

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// closeGracePeriod bounds the wait for the close handshake.
const closeGracePeriod = time.Second

// WebSocketSink writes frames as JSON text messages on a WebSocket.
//
// gorilla/websocket allows one concurrent writer; the relay is that writer.
type WebSocketSink struct {
	conn         *websocket.Conn
	writeTimeout time.Duration

	mu     sync.Mutex
	closed bool
}

// NewWebSocketSink wraps an upgraded connection.
func NewWebSocketSink(conn *websocket.Conn, writeTimeout time.Duration) *WebSocketSink {
	return &WebSocketSink{conn: conn, writeTimeout: writeTimeout}
}

// Watch returns a context that is cancelled when the peer goes away. It runs
// the connection's read loop, which gorilla requires for control frames to
// be processed; data messages received meanwhile are discarded.
func (s *WebSocketSink) Watch(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		defer cancel()
		for {
			if _, _, err := s.conn.NextReader(); err != nil {
				return
			}
		}
	}()
	return ctx, cancel
}

// Send writes one frame.
func (s *WebSocketSink) Send(ctx context.Context, f Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClientGone
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if s.writeTimeout > 0 {
		if err := s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil {
			return err
		}
	}
	return s.conn.WriteJSON(f)
}

// Close sends a normal closure and closes the connection.
func (s *WebSocketSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGracePeriod))
	return s.conn.Close()
}
