package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	testhelpers "agentic/gateway/internal/providers"
	"agentic/gateway/pkg/providers"
)

func TestProvider_StreamText(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()
	mock.SetResponse("/v1/messages", testhelpers.MockResponse{
		StreamEvents: testhelpers.AnthropicTextStream("Hi", " there"),
	})

	provider := newTestProvider(t, mock.URL())
	stream, err := provider.StreamComplete(context.Background(), testhelpers.TestRequest("hello"))
	if err != nil {
		t.Fatalf("StreamComplete() error = %v", err)
	}
	defer stream.Close()

	events, err := testhelpers.DrainStream(t, stream)
	if err != nil {
		t.Fatalf("stream error = %v", err)
	}

	want := []providers.StreamEvent{
		providers.TextEvent{Content: "Hi"},
		providers.TextEvent{Content: " there"},
		providers.DoneEvent{StopReason: "end_turn"},
	}
	if len(events) != len(want) {
		t.Fatalf("events = %+v, want %+v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("event %d = %+v, want %+v", i, events[i], want[i])
		}
	}

	var sent messagesRequest
	_ = json.Unmarshal(mock.LastRequestBody(), &sent)
	if !sent.Stream {
		t.Error("stream flag not set on request")
	}
	if got := mock.LastRequestHeader().Get("Accept"); got != "text/event-stream" {
		t.Errorf("Accept = %q", got)
	}
}

func TestProvider_StreamToolUse(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()
	mock.SetResponse("/v1/messages", testhelpers.MockResponse{
		StreamEvents: []string{
			testhelpers.AnthropicEvent("message_start", map[string]interface{}{"message": map[string]interface{}{"id": "m"}}),
			testhelpers.AnthropicTextDelta("Let me check."),
			testhelpers.AnthropicEvent("content_block_start", map[string]interface{}{
				"index": 1,
				"content_block": map[string]interface{}{
					"type": "tool_use", "id": "toolu_1", "name": "read_file", "input": map[string]interface{}{},
				},
			}),
			testhelpers.AnthropicEvent("content_block_delta", map[string]interface{}{
				"index": 1,
				"delta": map[string]interface{}{"type": "input_json_delta", "partial_json": `{"path":`},
			}),
			testhelpers.AnthropicEvent("content_block_delta", map[string]interface{}{
				"index": 1,
				"delta": map[string]interface{}{"type": "input_json_delta", "partial_json": `"main.go"}`},
			}),
			testhelpers.AnthropicEvent("content_block_stop", map[string]interface{}{"index": 1}),
			testhelpers.AnthropicEvent("message_delta", map[string]interface{}{
				"delta": map[string]interface{}{"stop_reason": "tool_use"},
			}),
			testhelpers.AnthropicEvent("message_stop", nil),
		},
	})

	provider := newTestProvider(t, mock.URL())
	stream, err := provider.StreamComplete(context.Background(), testhelpers.TestRequest("read main.go"))
	if err != nil {
		t.Fatalf("StreamComplete() error = %v", err)
	}
	defer stream.Close()

	events, err := testhelpers.DrainStream(t, stream)
	if err != nil {
		t.Fatalf("stream error = %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("events = %+v, want 3", events)
	}

	tool, ok := events[1].(providers.ToolUseEvent)
	if !ok {
		t.Fatalf("event 1 = %T, want ToolUseEvent", events[1])
	}
	if tool.ID != "toolu_1" || tool.Name != "read_file" {
		t.Errorf("tool = %+v", tool)
	}
	if string(tool.Input) != `{"path":"main.go"}` {
		t.Errorf("tool input = %s", tool.Input)
	}
	if done, ok := events[2].(providers.DoneEvent); !ok || done.StopReason != "tool_use" {
		t.Errorf("final event = %+v", events[2])
	}
}

func TestProvider_StreamErrorEvent(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()
	mock.SetResponse("/v1/messages", testhelpers.MockResponse{
		StreamEvents: []string{
			testhelpers.AnthropicTextDelta("Hi"),
			testhelpers.AnthropicStreamError("overloaded_error", "Overloaded"),
		},
	})

	provider := newTestProvider(t, mock.URL())
	stream, err := provider.StreamComplete(context.Background(), testhelpers.TestRequest("hello"))
	if err != nil {
		t.Fatalf("StreamComplete() error = %v", err)
	}
	defer stream.Close()

	events, err := testhelpers.DrainStream(t, stream)
	if err != nil {
		t.Fatalf("stream error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("events = %+v", events)
	}
	if ev, ok := events[1].(providers.ErrorEvent); !ok || ev.Message != "Overloaded" {
		t.Errorf("final event = %+v, want ErrorEvent{Overloaded}", events[1])
	}
}

func TestProvider_StreamTruncated(t *testing.T) {
	tests := []struct {
		name     string
		response testhelpers.MockResponse
	}{
		{
			name: "connection dropped",
			response: testhelpers.MockResponse{
				StreamEvents:    []string{testhelpers.AnthropicTextDelta("Hi")},
				DropAfterEvents: true,
			},
		},
		{
			name: "clean close without message_stop",
			response: testhelpers.MockResponse{
				StreamEvents: []string{testhelpers.AnthropicTextDelta("Hi")},
			},
		},
		{
			name: "malformed event",
			response: testhelpers.MockResponse{
				StreamEvents: []string{"event: content_block_delta\ndata: {not json"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testhelpers.NewMockServer()
			defer mock.Close()
			mock.SetResponse("/v1/messages", tt.response)

			provider := newTestProvider(t, mock.URL())
			stream, err := provider.StreamComplete(context.Background(), testhelpers.TestRequest("hello"))
			if err != nil {
				t.Fatalf("StreamComplete() error = %v", err)
			}
			defer stream.Close()

			_, err = testhelpers.DrainStream(t, stream)
			if err == nil {
				t.Fatal("expected stream error, got clean end")
			}
			if !providers.IsTransportError(err) {
				t.Errorf("error = %v, want transport error", err)
			}
		})
	}
}

func TestProvider_StreamHTTPError(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()
	mock.SetResponse("/v1/messages", testhelpers.MockAuthError())

	provider := newTestProvider(t, mock.URL())
	stream, err := provider.StreamComplete(context.Background(), testhelpers.TestRequest("hello"))
	if stream != nil {
		t.Error("stream returned alongside error")
	}
	var authErr *providers.AuthError
	testhelpers.AssertErrorAs(t, err, &authErr)
}

func TestProvider_StreamContextCancel(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()
	mock.SetResponse("/v1/messages", testhelpers.MockResponse{
		StreamEvents: []string{testhelpers.AnthropicTextDelta("Hi")},
		HoldOpen:     true,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	provider := newTestProvider(t, mock.URL())
	stream, err := provider.StreamComplete(ctx, testhelpers.TestRequest("hello"))
	if err != nil {
		t.Fatalf("StreamComplete() error = %v", err)
	}
	defer stream.Close()

	if _, err := stream.Next(ctx); err != nil {
		t.Fatalf("first Next() error = %v", err)
	}

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err = stream.Next(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Next() after cancel error = %v, want context.Canceled", err)
	}
}

func TestStream_EOFAfterTerminal(t *testing.T) {
	body := io.NopCloser(strings.NewReader(strings.Join(testhelpers.AnthropicTextStream("x"), "\n\n") + "\n\n"))
	s := newStream("anthropic", body)

	events, err := testhelpers.DrainStream(t, s)
	if err != nil {
		t.Fatalf("drain error = %v", err)
	}
	if !providers.IsTerminal(events[len(events)-1]) {
		t.Errorf("last event %+v is not terminal", events[len(events)-1])
	}
	if _, err := s.Next(context.Background()); err != io.EOF {
		t.Errorf("Next() after terminal = %v, want io.EOF", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
