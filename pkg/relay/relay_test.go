package relay

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"agentic/gateway/pkg/providers"
	"agentic/gateway/pkg/session"
)

// fakeStream replays events, then returns tailErr (io.EOF when nil).
type fakeStream struct {
	events  []providers.StreamEvent
	tailErr error
	nexts   atomic.Int32
	closed  atomic.Bool
}

func (s *fakeStream) Next(ctx context.Context) (providers.StreamEvent, error) {
	n := int(s.nexts.Add(1)) - 1
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n < len(s.events) {
		return s.events[n], nil
	}
	if s.tailErr != nil {
		return nil, s.tailErr
	}
	return nil, io.EOF
}

func (s *fakeStream) Close() error {
	s.closed.Store(true)
	return nil
}

func opener(s *fakeStream) StreamOpener {
	return func(context.Context) (providers.Stream, error) { return s, nil }
}

type recordingSink struct {
	mu       sync.Mutex
	frames   []Frame
	failAt   int // 1-based send index that fails; 0 never
	sends    int
	closes   int
	gate     chan struct{}
	inSend   chan struct{}
	sendOnce sync.Once
}

func (s *recordingSink) Send(ctx context.Context, f Frame) error {
	if s.gate != nil {
		s.sendOnce.Do(func() { close(s.inSend) })
		<-s.gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sends++
	if s.failAt > 0 && s.sends >= s.failAt {
		return errors.New("broken pipe")
	}
	s.frames = append(s.frames, f)
	return nil
}

func (s *recordingSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closes++
	return nil
}

type recordingCommitter struct {
	mu    sync.Mutex
	turns []session.Turn
	err   error
}

func (c *recordingCommitter) AppendTurn(id string, t session.Turn) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.turns = append(c.turns, t)
	return nil
}

func frameTypes(frames []Frame) []providers.EventKind {
	out := make([]providers.EventKind, len(frames))
	for i, f := range frames {
		out[i] = f.Type
	}
	return out
}

func equalKinds(a, b []providers.EventKind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRelay_Scenarios(t *testing.T) {
	tests := []struct {
		name        string
		events      []providers.StreamEvent
		tailErr     error
		commitErr   error
		wantState   State
		wantOutcome Outcome
		wantFrames  []providers.EventKind
		wantCommit  []session.Turn
		wantLastMsg string
	}{
		{
			name: "text then done commits once",
			events: []providers.StreamEvent{
				providers.TextEvent{Content: "Hi"},
				providers.TextEvent{Content: " there"},
				providers.DoneEvent{StopReason: "end_turn"},
			},
			wantState:   StateCompleted,
			wantOutcome: OutcomeCompleted,
			wantFrames:  []providers.EventKind{providers.KindText, providers.KindText, providers.KindDone},
			wantCommit:  []session.Turn{session.AssistantTurn("Hi there")},
		},
		{
			name: "provider error commits nothing",
			events: []providers.StreamEvent{
				providers.TextEvent{Content: "Hi"},
				providers.ErrorEvent{Message: "boom"},
			},
			wantState:   StateFailed,
			wantOutcome: OutcomeProviderError,
			wantFrames:  []providers.EventKind{providers.KindText, providers.KindError},
			wantLastMsg: "boom",
		},
		{
			name: "tool events are forwarded but not accumulated",
			events: []providers.StreamEvent{
				providers.TextEvent{Content: "Checking."},
				providers.ToolUseEvent{ID: "t1", Name: "read_file", Input: json.RawMessage(`{"path":"a"}`)},
				providers.ToolResultEvent{ToolUseID: "t1", Result: json.RawMessage(`"ok"`)},
				providers.DoneEvent{},
			},
			wantState:   StateCompleted,
			wantOutcome: OutcomeCompleted,
			wantFrames: []providers.EventKind{
				providers.KindText, providers.KindToolUse, providers.KindToolResult, providers.KindDone,
			},
			wantCommit: []session.Turn{session.AssistantTurn("Checking.")},
		},
		{
			name:        "done with no text commits empty turn",
			events:      []providers.StreamEvent{providers.DoneEvent{}},
			wantState:   StateCompleted,
			wantOutcome: OutcomeCompleted,
			wantFrames:  []providers.EventKind{providers.KindDone},
			wantCommit:  []session.Turn{session.AssistantTurn("")},
		},
		{
			name:        "transport failure becomes one error frame",
			events:      []providers.StreamEvent{providers.TextEvent{Content: "Hi"}},
			tailErr:     &providers.StreamError{Provider: "p", Message: "connection reset"},
			wantState:   StateFailed,
			wantOutcome: OutcomeTransportError,
			wantFrames:  []providers.EventKind{providers.KindText, providers.KindError},
			wantLastMsg: "Failed to reach provider",
		},
		{
			name:        "stream ending without terminal event",
			events:      []providers.StreamEvent{providers.TextEvent{Content: "Hi"}},
			wantState:   StateFailed,
			wantOutcome: OutcomeTransportError,
			wantFrames:  []providers.EventKind{providers.KindText, providers.KindError},
			wantLastMsg: "Stream ended unexpectedly",
		},
		{
			name:        "malformed event is a transport failure",
			events:      []providers.StreamEvent{providers.ToolUseEvent{ID: "t1"}},
			wantState:   StateFailed,
			wantOutcome: OutcomeTransportError,
			wantFrames:  []providers.EventKind{providers.KindError},
		},
		{
			name: "session deleted before commit",
			events: []providers.StreamEvent{
				providers.TextEvent{Content: "Hi"},
				providers.DoneEvent{},
			},
			commitErr:   session.ErrSessionNotFound,
			wantState:   StateFailed,
			wantOutcome: OutcomeSessionGone,
			wantFrames:  []providers.EventKind{providers.KindText, providers.KindError},
			wantLastMsg: "Invalid or expired session",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stream := &fakeStream{events: tt.events, tailErr: tt.tailErr}
			sink := &recordingSink{}
			committer := &recordingCommitter{err: tt.commitErr}

			r := New("sess-1", opener(stream), sink, committer)
			if r.State() != StateIdle {
				t.Fatalf("initial State() = %s", r.State())
			}

			res := r.Run(context.Background())

			if res.State != tt.wantState {
				t.Errorf("State = %s, want %s", res.State, tt.wantState)
			}
			if r.State() != tt.wantState {
				t.Errorf("relay State() = %s, want %s", r.State(), tt.wantState)
			}
			if res.Outcome != tt.wantOutcome {
				t.Errorf("Outcome = %s, want %s", res.Outcome, tt.wantOutcome)
			}
			if got := frameTypes(sink.frames); !equalKinds(got, tt.wantFrames) {
				t.Errorf("frames = %v, want %v", got, tt.wantFrames)
			}
			if res.Frames != len(tt.wantFrames) {
				t.Errorf("Result.Frames = %d, want %d", res.Frames, len(tt.wantFrames))
			}
			if len(committer.turns) != len(tt.wantCommit) {
				t.Fatalf("committed %+v, want %+v", committer.turns, tt.wantCommit)
			}
			for i := range tt.wantCommit {
				if committer.turns[i] != tt.wantCommit[i] {
					t.Errorf("commit %d = %+v, want %+v", i, committer.turns[i], tt.wantCommit[i])
				}
			}
			if tt.wantLastMsg != "" {
				if last := sink.frames[len(sink.frames)-1]; last.Content != tt.wantLastMsg {
					t.Errorf("last frame content = %q, want %q", last.Content, tt.wantLastMsg)
				}
			}
			if (res.Err == nil) != (tt.wantState == StateCompleted) {
				t.Errorf("Err = %v for state %s", res.Err, res.State)
			}
			if sink.closes != 1 {
				t.Errorf("sink closed %d times, want 1", sink.closes)
			}
			if !stream.closed.Load() {
				t.Error("provider stream not closed")
			}
		})
	}
}

func TestRelay_CommitPrecedesDoneFrame(t *testing.T) {
	stream := &fakeStream{events: []providers.StreamEvent{
		providers.TextEvent{Content: "4"},
		providers.DoneEvent{},
	}}
	committer := &recordingCommitter{}
	var committedAtDone int

	sink := &recordingSink{}
	hook := WithFrameHook(func(f Frame) {
		if f.Type == providers.KindDone {
			committer.mu.Lock()
			committedAtDone = len(committer.turns)
			committer.mu.Unlock()
		}
	})

	New("s", opener(stream), sink, committer, hook).Run(context.Background())

	if committedAtDone != 1 {
		t.Errorf("turns committed when done was sent = %d, want 1", committedAtDone)
	}
}

func TestRelay_OpenFailure(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantOutcome Outcome
		wantMsg     string
	}{
		{
			name:        "auth rejected",
			err:         &providers.AuthError{Provider: "p", Message: "invalid x-api-key"},
			wantOutcome: OutcomeProviderError,
			wantMsg:     "Provider rejected the session credential",
		},
		{
			name:        "unreachable",
			err:         &providers.TransportError{Provider: "p", Cause: errors.New("dial tcp: refused")},
			wantOutcome: OutcomeTransportError,
			wantMsg:     "Failed to reach provider",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &recordingSink{}
			committer := &recordingCommitter{}
			open := func(context.Context) (providers.Stream, error) { return nil, tt.err }

			res := New("s", open, sink, committer).Run(context.Background())

			if res.State != StateFailed || res.Outcome != tt.wantOutcome {
				t.Errorf("result = %s/%s", res.State, res.Outcome)
			}
			if len(sink.frames) != 1 || sink.frames[0].Type != providers.KindError {
				t.Fatalf("frames = %+v, want one error frame", sink.frames)
			}
			if sink.frames[0].Content != tt.wantMsg {
				t.Errorf("error content = %q, want %q", sink.frames[0].Content, tt.wantMsg)
			}
			if len(committer.turns) != 0 {
				t.Error("failed open committed a turn")
			}
		})
	}
}

func TestRelay_ClientDisconnectMidStream(t *testing.T) {
	stream := &fakeStream{events: []providers.StreamEvent{
		providers.TextEvent{Content: "a"},
		providers.TextEvent{Content: "b"},
		providers.TextEvent{Content: "c"},
		providers.DoneEvent{},
	}}
	sink := &recordingSink{failAt: 2}
	committer := &recordingCommitter{}

	res := New("s", opener(stream), sink, committer).Run(context.Background())

	if res.Outcome != OutcomeDisconnected || !errors.Is(res.Err, ErrClientGone) {
		t.Errorf("result = %s, err %v", res.Outcome, res.Err)
	}
	if len(committer.turns) != 0 {
		t.Error("disconnect committed a partial turn")
	}
	if n := stream.nexts.Load(); n != 2 {
		t.Errorf("stream read %d times after disconnect, want 2", n)
	}
	if !stream.closed.Load() {
		t.Error("provider stream not closed after disconnect")
	}
	if sink.closes != 1 {
		t.Errorf("sink closed %d times", sink.closes)
	}
}

func TestRelay_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stream := &fakeStream{events: []providers.StreamEvent{providers.DoneEvent{}}}
	sink := &recordingSink{}
	committer := &recordingCommitter{}

	res := New("s", opener(stream), sink, committer).Run(ctx)

	if res.Outcome != OutcomeDisconnected {
		t.Errorf("Outcome = %s, want disconnected", res.Outcome)
	}
	if len(sink.frames) != 0 {
		t.Errorf("frames written to gone client: %+v", sink.frames)
	}
	if len(committer.turns) != 0 {
		t.Error("cancelled relay committed")
	}
}

// deafStream ignores ctx and runs cancel just before it yields its last
// event, like a provider that finishes as the client goes away.
type deafStream struct {
	events []providers.StreamEvent
	cancel context.CancelFunc
	n      int
}

func (s *deafStream) Next(context.Context) (providers.StreamEvent, error) {
	if s.n >= len(s.events) {
		return nil, io.EOF
	}
	if s.n == len(s.events)-1 {
		s.cancel()
	}
	ev := s.events[s.n]
	s.n++
	return ev, nil
}

func (s *deafStream) Close() error { return nil }

func TestRelay_DisconnectBeforeTerminalEvent(t *testing.T) {
	tests := []struct {
		name     string
		terminal providers.StreamEvent
	}{
		{name: "done", terminal: providers.DoneEvent{StopReason: "end_turn"}},
		{name: "error", terminal: providers.ErrorEvent{Message: "overloaded"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			stream := &deafStream{
				events: []providers.StreamEvent{providers.TextEvent{Content: "Hi"}, tt.terminal},
				cancel: cancel,
			}
			open := func(context.Context) (providers.Stream, error) { return stream, nil }
			sink := &recordingSink{}
			committer := &recordingCommitter{}

			res := New("s", open, sink, committer).Run(ctx)

			if res.State != StateFailed || res.Outcome != OutcomeDisconnected {
				t.Errorf("result = %s/%s, want failed/disconnected", res.State, res.Outcome)
			}
			if !errors.Is(res.Err, ErrClientGone) {
				t.Errorf("Err = %v, want ErrClientGone", res.Err)
			}
			if len(committer.turns) != 0 {
				t.Errorf("committed %d turns after disconnect", len(committer.turns))
			}
			if got := frameTypes(sink.frames); !equalKinds(got, []providers.EventKind{providers.KindText}) {
				t.Errorf("frames = %v, want [text]", got)
			}
			if sink.closes != 1 {
				t.Errorf("sink closed %d times", sink.closes)
			}
		})
	}
}

func TestRelay_CancelledBetweenEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream := &deafStream{events: []providers.StreamEvent{
		providers.TextEvent{Content: "a"},
		providers.TextEvent{Content: "b"},
		providers.DoneEvent{},
	}, cancel: func() {}}
	sink := &recordingSink{}
	committer := &recordingCommitter{}

	res := New("s", func(context.Context) (providers.Stream, error) { return stream, nil }, sink, committer,
		WithFrameHook(func(Frame) { cancel() }),
	).Run(ctx)

	if res.Outcome != OutcomeDisconnected {
		t.Errorf("Outcome = %s, want disconnected", res.Outcome)
	}
	if stream.n != 1 {
		t.Errorf("stream read %d events after cancel, want 1", stream.n)
	}
	if len(committer.turns) != 0 {
		t.Error("cancelled relay committed")
	}
}

func TestRelay_Backpressure(t *testing.T) {
	stream := &fakeStream{events: []providers.StreamEvent{
		providers.TextEvent{Content: "a"},
		providers.TextEvent{Content: "b"},
		providers.DoneEvent{},
	}}
	sink := &recordingSink{gate: make(chan struct{}), inSend: make(chan struct{})}
	committer := &recordingCommitter{}

	done := make(chan Result, 1)
	go func() {
		done <- New("s", opener(stream), sink, committer).Run(context.Background())
	}()

	<-sink.inSend
	time.Sleep(20 * time.Millisecond)
	if n := stream.nexts.Load(); n != 1 {
		t.Errorf("relay read %d events while the sink was blocked, want 1", n)
	}
	close(sink.gate)

	select {
	case res := <-done:
		if res.State != StateCompleted {
			t.Errorf("State = %s", res.State)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not finish")
	}
}

func TestRelay_RunsOnce(t *testing.T) {
	stream := &fakeStream{events: []providers.StreamEvent{providers.DoneEvent{}}}
	sink := &recordingSink{}
	committer := &recordingCommitter{}
	r := New("s", opener(stream), sink, committer)

	r.Run(context.Background())
	second := r.Run(context.Background())

	if second.Err == nil {
		t.Error("second Run() returned no error")
	}
	if !second.State.Terminal() {
		t.Errorf("second Run() state = %s, want terminal", second.State)
	}
	if len(committer.turns) != 1 {
		t.Errorf("committed %d turns across two runs, want 1", len(committer.turns))
	}
	if sink.closes != 1 {
		t.Errorf("sink closed %d times, want 1", sink.closes)
	}
}

func TestRelay_CommitsThroughStore(t *testing.T) {
	store := session.NewStore()
	id, _ := store.Create("key")
	_ = store.AppendTurn(id, session.UserTurn("hello"))

	stream := &fakeStream{events: []providers.StreamEvent{
		providers.TextEvent{Content: "Hi"},
		providers.TextEvent{Content: " there"},
		providers.DoneEvent{},
	}}
	New(id, opener(stream), &recordingSink{}, store).Run(context.Background())

	sess, _ := store.Get(id)
	history := sess.History()
	want := []session.Turn{session.UserTurn("hello"), session.AssistantTurn("Hi there")}
	if len(history) != len(want) {
		t.Fatalf("history = %+v", history)
	}
	for i := range want {
		if history[i] != want[i] {
			t.Errorf("history[%d] = %+v, want %+v", i, history[i], want[i])
		}
	}
}

func TestState_String(t *testing.T) {
	tests := map[State]string{
		StateIdle:      "idle",
		StateStreaming: "streaming",
		StateCompleted: "completed",
		StateFailed:    "failed",
		State(42):      "unknown",
	}
	for state, want := range tests {
		if got := state.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", state, got, want)
		}
	}
	if StateStreaming.Terminal() || !StateFailed.Terminal() || !StateCompleted.Terminal() {
		t.Error("Terminal() classification wrong")
	}
}
