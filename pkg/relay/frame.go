package relay

import (
	"encoding/json"

	"agentic/gateway/pkg/providers"
)

// Frame is the wire form of one stream event:
//
//	{"type":"text","content":"Hi"}
//	{"type":"tool_use","toolName":"read_file","toolInput":{...},"toolUseId":"toolu_1"}
//	{"type":"error","content":"Overloaded"}
//	{"type":"done"}
type Frame struct {
	Type       providers.EventKind `json:"type"`
	Content    string              `json:"content,omitempty"`
	ToolName   string              `json:"toolName,omitempty"`
	ToolInput  json.RawMessage     `json:"toolInput,omitempty"`
	ToolResult json.RawMessage     `json:"toolResult,omitempty"`
	ToolUseID  string              `json:"toolUseId,omitempty"`
}

// FrameFor converts a provider event to its wire frame.
func FrameFor(ev providers.StreamEvent) Frame {
	switch e := ev.(type) {
	case providers.TextEvent:
		return Frame{Type: providers.KindText, Content: e.Content}
	case providers.ToolUseEvent:
		return Frame{Type: providers.KindToolUse, ToolName: e.Name, ToolInput: e.Input, ToolUseID: e.ID}
	case providers.ToolResultEvent:
		return Frame{Type: providers.KindToolResult, ToolResult: e.Result, ToolUseID: e.ToolUseID}
	case providers.ErrorEvent:
		return ErrorFrame(e.Message)
	case providers.DoneEvent:
		return Frame{Type: providers.KindDone}
	default:
		return ErrorFrame("unknown stream event")
	}
}

// ErrorFrame returns an error frame carrying msg.
func ErrorFrame(msg string) Frame {
	if msg == "" {
		msg = "Stream error"
	}
	return Frame{Type: providers.KindError, Content: msg}
}
