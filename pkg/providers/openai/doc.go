// Package openai implements providers.Provider for OpenAI-compatible chat
// completions endpoints (POST {base_url}/chat/completions).
//
// System instructions are sent as a leading "system" message. In streaming
// mode, content deltas become TextEvents, tool_calls deltas are accumulated
// per index and surfaced as ToolUseEvents once the choice finishes, and the
// "data: [DONE]" marker becomes the DoneEvent. Servers that close the stream
// after a finish_reason without sending [DONE] are treated as complete.
package openai
