package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"agentic/gateway/pkg/providers"
	"agentic/gateway/pkg/session"
)

// Sink is the client-facing side of a relay. Send may block to apply
// backpressure and must return an error once the client is gone.
type Sink interface {
	Send(ctx context.Context, f Frame) error
	Close() error
}

// Committer appends a turn to a session's conversation. *session.Store
// implements it.
type Committer interface {
	AppendTurn(sessionID string, turn session.Turn) error
}

// StreamOpener starts the provider call. It is invoked once per Run.
type StreamOpener func(ctx context.Context) (providers.Stream, error)

// Result summarizes a finished relay.
type Result struct {
	State   State
	Outcome Outcome

	// Text is the accumulated assistant text. It was committed only when
	// State is StateCompleted.
	Text string

	// Frames counts frames successfully written to the sink.
	Frames int

	StopReason string
	Duration   time.Duration

	// Err describes why the relay failed; nil on completion.
	Err error
}

// Option configures a Relay.
type Option func(*Relay)

// WithLogger sets the relay's logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Relay) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithFrameHook registers a callback invoked after each frame is written.
func WithFrameHook(fn func(Frame)) Option {
	return func(r *Relay) {
		r.onFrame = fn
	}
}

// Relay forwards one provider stream to one sink. A Relay runs once.
type Relay struct {
	sessionID string
	open      StreamOpener
	sink      Sink
	committer Committer
	logger    *slog.Logger
	onFrame   func(Frame)

	state     State
	text      strings.Builder
	frames    int
	closeOnce sync.Once
	ran       bool
}

// New creates a relay in the Idle state.
func New(sessionID string, open StreamOpener, sink Sink, committer Committer, opts ...Option) *Relay {
	r := &Relay{
		sessionID: sessionID,
		open:      open,
		sink:      sink,
		committer: committer,
		logger:    slog.Default().With("component", "relay"),
		state:     StateIdle,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State returns the current state. It is not safe to call concurrently with
// Run.
func (r *Relay) State() State {
	return r.state
}

// Run drives the relay to a terminal state. Cancelling ctx is treated as a
// client disconnect.
func (r *Relay) Run(ctx context.Context) Result {
	start := time.Now()
	if r.ran || r.state.Terminal() {
		return Result{State: r.state, Outcome: OutcomeTransportError, Err: errors.New("relay already ran")}
	}
	r.ran = true
	defer r.closeSink()

	res := r.run(ctx)
	res.Text = r.text.String()
	res.Frames = r.frames
	res.Duration = time.Since(start)

	r.logger.Debug("relay finished",
		"session_id", r.sessionID,
		"state", res.State.String(),
		"outcome", string(res.Outcome),
		"frames", res.Frames,
		"error", res.Err,
	)
	return res
}

func (r *Relay) run(ctx context.Context) Result {
	stream, err := r.open(ctx)
	if err != nil {
		return r.failStream(ctx, err)
	}
	defer stream.Close()

	for {
		if err := ctx.Err(); err != nil {
			return r.disconnected(err)
		}

		ev, err := stream.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = ErrIncompleteStream
			}
			return r.failStream(ctx, err)
		}
		if err := providers.ValidateEvent(ev); err != nil {
			return r.failStream(ctx, &providers.ParseError{Cause: err})
		}

		// A stream may finish after the client left without noticing ctx.
		// Its terminal event is never delivered, so nothing is committed.
		if providers.IsTerminal(ev) && ctx.Err() != nil {
			return r.disconnected(ctx.Err())
		}

		r.state = StateStreaming

		switch e := ev.(type) {
		case providers.TextEvent:
			r.text.WriteString(e.Content)
			if err := r.send(ctx, FrameFor(e)); err != nil {
				return r.disconnected(err)
			}

		case providers.ToolUseEvent, providers.ToolResultEvent:
			if err := r.send(ctx, FrameFor(e)); err != nil {
				return r.disconnected(err)
			}

		case providers.ErrorEvent:
			if err := r.send(ctx, FrameFor(e)); err != nil {
				return r.disconnected(err)
			}
			r.state = StateFailed
			return Result{
				State:   StateFailed,
				Outcome: OutcomeProviderError,
				Err:     &providers.ProviderError{Message: e.Message},
			}

		case providers.DoneEvent:
			return r.complete(ctx, e)
		}
	}
}

// complete commits the assistant turn and then sends the done frame. A
// client that sees done can rely on the turn being in history.
func (r *Relay) complete(ctx context.Context, done providers.DoneEvent) Result {
	if err := ctx.Err(); err != nil {
		return r.disconnected(err)
	}
	if err := r.committer.AppendTurn(r.sessionID, session.AssistantTurn(r.text.String())); err != nil {
		r.state = StateFailed
		msg := "Failed to save response"
		outcome := OutcomeTransportError
		if errors.Is(err, session.ErrSessionNotFound) {
			msg = "Invalid or expired session"
			outcome = OutcomeSessionGone
		}
		_ = r.send(ctx, ErrorFrame(msg))
		return Result{State: StateFailed, Outcome: outcome, Err: fmt.Errorf("failed to commit assistant turn: %w", err)}
	}

	r.state = StateCompleted
	res := Result{State: StateCompleted, Outcome: OutcomeCompleted, StopReason: done.StopReason}
	if err := r.send(ctx, FrameFor(done)); err != nil {
		// The turn is already committed; the client just missed the marker.
		r.logger.Debug("done frame not delivered", "session_id", r.sessionID, "error", err)
	}
	return res
}

// failStream handles a failure to open or read the provider stream.
func (r *Relay) failStream(ctx context.Context, err error) Result {
	if ctx.Err() != nil {
		return r.disconnected(ctx.Err())
	}

	r.state = StateFailed
	outcome := OutcomeTransportError
	if providers.IsProviderError(err) {
		outcome = OutcomeProviderError
	}

	msg := providers.UserMessage(err)
	if errors.Is(err, ErrIncompleteStream) {
		msg = "Stream ended unexpectedly"
	}
	if sendErr := r.send(ctx, ErrorFrame(msg)); sendErr != nil {
		return r.disconnected(sendErr)
	}
	return Result{State: StateFailed, Outcome: outcome, Err: err}
}

func (r *Relay) disconnected(cause error) Result {
	r.state = StateFailed
	return Result{
		State:   StateFailed,
		Outcome: OutcomeDisconnected,
		Err:     fmt.Errorf("%w: %v", ErrClientGone, cause),
	}
}

func (r *Relay) send(ctx context.Context, f Frame) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.sink.Send(ctx, f); err != nil {
		return err
	}
	r.frames++
	if r.onFrame != nil {
		r.onFrame(f)
	}
	return nil
}

func (r *Relay) closeSink() {
	r.closeOnce.Do(func() {
		if err := r.sink.Close(); err != nil {
			r.logger.Debug("sink close failed", "session_id", r.sessionID, "error", err)
		}
	})
}
