package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"agentic/gateway/pkg/providers"
	"agentic/gateway/pkg/sse"
)

// toolBlock accumulates a tool_use content block across deltas.
type toolBlock struct {
	id    string
	name  string
	input strings.Builder
}

// stream decodes Anthropic's SSE sequence into providers.StreamEvents.
type stream struct {
	provider   string
	body       io.ReadCloser
	reader     *sse.Reader
	tools      map[int]*toolBlock
	stopReason string
	finished   bool
	closeOnce  sync.Once
	closeErr   error
}

func newStream(provider string, body io.ReadCloser) *stream {
	return &stream{
		provider: provider,
		body:     body,
		reader:   sse.NewReader(body),
		tools:    make(map[int]*toolBlock),
	}
}

// Next returns the next event, skipping bookkeeping events that carry no
// client-visible output.
func (s *stream) Next(ctx context.Context) (providers.StreamEvent, error) {
	for {
		if s.finished {
			return nil, io.EOF
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, err := s.reader.Next()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, &providers.StreamError{
					Provider: s.provider,
					Message:  "stream ended before message_stop",
				}
			}
			return nil, &providers.StreamError{
				Provider: s.provider,
				Message:  "failed to read stream",
				Cause:    err,
			}
		}

		var event streamEvent
		if raw.Data != "" {
			if err := json.Unmarshal([]byte(raw.Data), &event); err != nil {
				return nil, &providers.ParseError{
					Provider:    s.provider,
					RawResponse: raw.Data,
					Cause:       fmt.Errorf("failed to parse stream event: %w", err),
				}
			}
		}
		if event.Type == "" {
			event.Type = raw.Event
		}

		out, err := s.handle(&event)
		if err != nil {
			return nil, err
		}
		if out != nil {
			return out, nil
		}
	}
}

// handle applies one event to the stream state and returns the event to
// surface, or nil when there is nothing to surface yet.
func (s *stream) handle(event *streamEvent) (providers.StreamEvent, error) {
	switch event.Type {
	case "message_start", "ping":
		return nil, nil

	case "content_block_start":
		block := event.ContentBlock
		if block == nil {
			return nil, nil
		}
		switch block.Type {
		case "tool_use":
			tb := &toolBlock{id: block.ID, name: block.Name}
			// Inputs normally arrive through input_json_delta; a non-empty
			// object here is kept as the starting value.
			if len(block.Input) > 0 && string(block.Input) != "{}" {
				tb.input.Write(block.Input)
			}
			s.tools[event.Index] = tb
		case "text":
			if block.Text != "" {
				return providers.TextEvent{Content: block.Text}, nil
			}
		}
		return nil, nil

	case "content_block_delta":
		if event.Delta == nil {
			return nil, nil
		}
		switch event.Delta.Type {
		case "text_delta":
			if event.Delta.Text != "" {
				return providers.TextEvent{Content: event.Delta.Text}, nil
			}
		case "input_json_delta":
			if tb, ok := s.tools[event.Index]; ok {
				tb.input.WriteString(event.Delta.PartialJSON)
			}
		}
		return nil, nil

	case "content_block_stop":
		tb, ok := s.tools[event.Index]
		if !ok {
			return nil, nil
		}
		delete(s.tools, event.Index)

		input := tb.input.String()
		if input == "" {
			input = "{}"
		}
		if !json.Valid([]byte(input)) {
			return nil, &providers.ParseError{
				Provider:    s.provider,
				RawResponse: input,
				Cause:       fmt.Errorf("tool %q input is not valid JSON", tb.name),
			}
		}
		return providers.ToolUseEvent{
			ID:    tb.id,
			Name:  tb.name,
			Input: json.RawMessage(input),
		}, nil

	case "message_delta":
		if event.Delta != nil && event.Delta.StopReason != "" {
			s.stopReason = event.Delta.StopReason
		}
		return nil, nil

	case "message_stop":
		s.finished = true
		return providers.DoneEvent{StopReason: s.stopReason}, nil

	case "error":
		s.finished = true
		msg := "provider reported an error"
		if event.Error != nil && event.Error.Message != "" {
			msg = event.Error.Message
		}
		return providers.ErrorEvent{Message: msg}, nil

	default:
		// Event types added to the API later are skipped.
		return nil, nil
	}
}

// Close releases the response body. It is safe to call more than once.
func (s *stream) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.body.Close()
	})
	return s.closeErr
}

func marshal(v interface{}) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	return b, nil
}
