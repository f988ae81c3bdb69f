// Package types defines the JSON bodies of the gateway's HTTP API.
//
// Field names are camelCase to match the browser and editor clients:
//
//	POST /api/session   {"apiKey": "sk-ant-..."}
//	                 -> {"sessionId": "...", "message": "Session created successfully"}
//	POST /api/chat      {"sessionId": "...", "message": "Hi", "systemPrompt": "..."}
//	                 -> {"response": "...", "conversationHistory": [{"role": "user", "content": "Hi"}, ...]}
//
// Errors always use ErrorResponse:
//
//	{"error": "Invalid or expired session", "code": "session_not_found"}
package types
