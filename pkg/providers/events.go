package providers

import (
	"encoding/json"
	"errors"
)

// EventKind names a StreamEvent variant on the wire.
type EventKind string

const (
	KindText       EventKind = "text"
	KindToolUse    EventKind = "tool_use"
	KindToolResult EventKind = "tool_result"
	KindError      EventKind = "error"
	KindDone       EventKind = "done"
)

// StreamEvent is one incremental unit of provider output. The set of
// implementations is closed.
type StreamEvent interface {
	Kind() EventKind
	streamEvent()
}

// TextEvent carries a fragment of assistant text.
type TextEvent struct {
	Content string
}

// ToolUseEvent reports that the model wants the client to run a tool.
type ToolUseEvent struct {
	ID    string
	Name  string
	Input json.RawMessage
}

// ToolResultEvent carries the result of a tool run.
type ToolResultEvent struct {
	ToolUseID string
	Result    json.RawMessage
}

// ErrorEvent is a provider-reported failure. It ends the stream.
type ErrorEvent struct {
	Message string
}

// DoneEvent marks successful completion. It ends the stream.
type DoneEvent struct {
	StopReason string
}

func (TextEvent) Kind() EventKind       { return KindText }
func (ToolUseEvent) Kind() EventKind    { return KindToolUse }
func (ToolResultEvent) Kind() EventKind { return KindToolResult }
func (ErrorEvent) Kind() EventKind      { return KindError }
func (DoneEvent) Kind() EventKind       { return KindDone }

func (TextEvent) streamEvent()       {}
func (ToolUseEvent) streamEvent()    {}
func (ToolResultEvent) streamEvent() {}
func (ErrorEvent) streamEvent()      {}
func (DoneEvent) streamEvent()       {}

// IsTerminal reports whether ev ends a stream.
func IsTerminal(ev StreamEvent) bool {
	switch ev.(type) {
	case DoneEvent, ErrorEvent:
		return true
	default:
		return false
	}
}

// ValidateEvent rejects events that are missing their required fields.
func ValidateEvent(ev StreamEvent) error {
	switch e := ev.(type) {
	case nil:
		return errors.New("nil stream event")
	case ToolUseEvent:
		if e.Name == "" {
			return errors.New("tool_use event without tool name")
		}
		if len(e.Input) > 0 && !json.Valid(e.Input) {
			return errors.New("tool_use event with malformed input")
		}
	case ToolResultEvent:
		if len(e.Result) > 0 && !json.Valid(e.Result) {
			return errors.New("tool_result event with malformed result")
		}
	}
	return nil
}
