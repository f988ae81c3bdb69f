package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"agentic/gateway/pkg/providers"
	"agentic/gateway/pkg/sse"
)

const doneMarker = "[DONE]"

type pendingTool struct {
	id   string
	name string
	args strings.Builder
}

type stream struct {
	provider     string
	body         io.ReadCloser
	reader       *sse.Reader
	tools        map[int]*pendingTool
	queue        []providers.StreamEvent
	finishReason string
	finished     bool
	closeOnce    sync.Once
	closeErr     error
}

func newStream(provider string, body io.ReadCloser) *stream {
	return &stream{
		provider: provider,
		body:     body,
		reader:   sse.NewReader(body),
		tools:    make(map[int]*pendingTool),
	}
}

// Next returns the next event.
func (s *stream) Next(ctx context.Context) (providers.StreamEvent, error) {
	for {
		if len(s.queue) > 0 {
			ev := s.queue[0]
			s.queue = s.queue[1:]
			return ev, nil
		}
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
			// Some compatible servers close after the final choice without
			// sending [DONE].
			if errors.Is(err, io.EOF) && s.finishReason != "" {
				s.finish()
				continue
			}
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, &providers.StreamError{
					Provider: s.provider,
					Message:  "stream ended before completion",
				}
			}
			return nil, &providers.StreamError{
				Provider: s.provider,
				Message:  "failed to read stream",
				Cause:    err,
			}
		}

		if raw.Data == doneMarker {
			s.finish()
			continue
		}
		if raw.Data == "" {
			continue
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(raw.Data), &chunk); err != nil {
			return nil, &providers.ParseError{
				Provider:    s.provider,
				RawResponse: raw.Data,
				Cause:       fmt.Errorf("failed to parse stream chunk: %w", err),
			}
		}

		if chunk.Error != nil {
			s.finished = true
			msg := chunk.Error.Message
			if msg == "" {
				msg = "provider reported an error"
			}
			return providers.ErrorEvent{Message: msg}, nil
		}

		if err := s.apply(&chunk); err != nil {
			return nil, err
		}
	}
}

func (s *stream) apply(chunk *streamChunk) error {
	for _, choice := range chunk.Choices {
		if choice.Index != 0 {
			continue
		}
		if choice.Delta != nil {
			if choice.Delta.Content != "" {
				s.queue = append(s.queue, providers.TextEvent{Content: choice.Delta.Content})
			}
			for _, tc := range choice.Delta.ToolCalls {
				pt, ok := s.tools[tc.Index]
				if !ok {
					pt = &pendingTool{}
					s.tools[tc.Index] = pt
				}
				if tc.ID != "" {
					pt.id = tc.ID
				}
				if tc.Function.Name != "" {
					pt.name = tc.Function.Name
				}
				pt.args.WriteString(tc.Function.Arguments)
			}
		}
		if choice.FinishReason != nil && *choice.FinishReason != "" {
			s.finishReason = *choice.FinishReason
			if err := s.flushTools(); err != nil {
				return err
			}
		}
	}
	return nil
}

// flushTools queues accumulated tool calls in index order.
func (s *stream) flushTools() error {
	indexes := make([]int, 0, len(s.tools))
	for i := range s.tools {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)

	for _, i := range indexes {
		pt := s.tools[i]
		args := pt.args.String()
		if args == "" {
			args = "{}"
		}
		if !json.Valid([]byte(args)) {
			return &providers.ParseError{
				Provider:    s.provider,
				RawResponse: args,
				Cause:       fmt.Errorf("tool %q arguments are not valid JSON", pt.name),
			}
		}
		s.queue = append(s.queue, providers.ToolUseEvent{
			ID:    pt.id,
			Name:  pt.name,
			Input: json.RawMessage(args),
		})
	}
	s.tools = make(map[int]*pendingTool)
	return nil
}

func (s *stream) finish() {
	if err := s.flushTools(); err != nil {
		s.queue = append(s.queue, providers.ErrorEvent{Message: "malformed tool call arguments"})
		s.finished = true
		return
	}
	s.queue = append(s.queue, providers.DoneEvent{StopReason: s.finishReason})
	s.finished = true
}

// Close releases the response body.
func (s *stream) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.body.Close()
	})
	return s.closeErr
}
