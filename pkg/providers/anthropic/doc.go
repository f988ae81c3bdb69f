// Package anthropic implements providers.Provider for Anthropic's Messages
// API (version 2023-06-01).
//
// Complete performs a single POST to /v1/messages. StreamComplete performs the
// same request with "stream": true and returns a providers.Stream that decodes
// the SSE event sequence:
//
//	message_start        ignored
//	content_block_start  opens a text or tool_use block
//	content_block_delta  text_delta becomes a TextEvent; input_json_delta is
//	                     accumulated for the open tool_use block
//	content_block_stop   closes the block; a tool_use block becomes a
//	                     ToolUseEvent
//	message_delta        records the stop reason
//	message_stop         DoneEvent
//	error                ErrorEvent
//	ping                 ignored
//
// The credential is sent in the x-api-key header and is never logged.
package anthropic
