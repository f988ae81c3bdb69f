package providers

import (
	"encoding/json"
	"testing"
)

func TestStreamEvent_Kinds(t *testing.T) {
	tests := []struct {
		event    StreamEvent
		kind     EventKind
		terminal bool
	}{
		{TextEvent{Content: "x"}, KindText, false},
		{ToolUseEvent{Name: "t"}, KindToolUse, false},
		{ToolResultEvent{ToolUseID: "1"}, KindToolResult, false},
		{ErrorEvent{Message: "boom"}, KindError, true},
		{DoneEvent{}, KindDone, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if got := tt.event.Kind(); got != tt.kind {
				t.Errorf("Kind() = %q, want %q", got, tt.kind)
			}
			if got := IsTerminal(tt.event); got != tt.terminal {
				t.Errorf("IsTerminal() = %v, want %v", got, tt.terminal)
			}
		})
	}
}

func TestValidateEvent(t *testing.T) {
	tests := []struct {
		name    string
		event   StreamEvent
		wantErr bool
	}{
		{name: "nil", event: nil, wantErr: true},
		{name: "text", event: TextEvent{Content: "hi"}},
		{name: "tool use", event: ToolUseEvent{ID: "1", Name: "read", Input: json.RawMessage(`{"a":1}`)}},
		{name: "tool use without name", event: ToolUseEvent{ID: "1"}, wantErr: true},
		{name: "tool use bad input", event: ToolUseEvent{Name: "read", Input: json.RawMessage(`{`)}, wantErr: true},
		{name: "tool result", event: ToolResultEvent{ToolUseID: "1", Result: json.RawMessage(`"ok"`)}},
		{name: "tool result bad json", event: ToolResultEvent{Result: json.RawMessage(`nope`)}, wantErr: true},
		{name: "done", event: DoneEvent{StopReason: "end_turn"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEvent(tt.event)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEvent() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
