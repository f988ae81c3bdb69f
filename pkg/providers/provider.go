package providers

import "context"

// Provider is the interface every completion adapter implements.
//
// A Provider value is bound to one credential. The gateway builds one per
// request from the session's key, so implementations should be cheap to
// construct and share their HTTP client.
type Provider interface {
	// Name returns the adapter name used in logs and metrics.
	Name() string

	// Complete sends the conversation and returns the full assistant message.
	Complete(ctx context.Context, req *Request) (*Completion, error)

	// StreamComplete sends the conversation and returns a Stream of events.
	// An error here means no event was produced and the stream never began.
	StreamComplete(ctx context.Context, req *Request) (Stream, error)
}

// Stream is a finite, non-restartable sequence of StreamEvents.
//
// Next blocks until the next event is available. After a DoneEvent or
// ErrorEvent has been returned, Next returns io.EOF. A non-nil error other
// than io.EOF means the transport failed; no further events follow.
//
// Close releases the underlying connection and may be called at any time,
// including concurrently with a blocked Next.
type Stream interface {
	Next(ctx context.Context) (StreamEvent, error)
	Close() error
}
