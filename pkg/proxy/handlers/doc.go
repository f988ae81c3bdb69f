// Package handlers implements the gateway's HTTP routes.
//
//	POST   /api/session     SessionHandler    create a session for an API key
//	DELETE /api/session     SessionHandler    delete a session (idempotent)
//	POST   /api/chat        ChatHandler       one exchange, JSON reply
//	POST   /api/stream      StreamHandler     one exchange, SSE frames
//	GET    /api/stream/ws   WebSocketHandler  one exchange, WebSocket frames
//	GET    /api/history     HistoryHandler    a session's conversation
//	GET    /admin/exchanges ExchangesHandler  exchange audit records
//	GET    /                DocsHandler       API documentation page
//
// Each handler follows the same pattern:
//
//  1. Check the method (405 otherwise)
//  2. Parse and validate the body or query with the proxy helpers
//  3. Call the session store or chat service
//  4. Write JSON with proxy.WriteJSONResponse, or map the error with
//     proxy.WriteError
//
// The streaming handlers hand the chat service a sink factory instead of a
// sink. The service calls it only after the session, provider, and user
// turn are in place, so pre-stream failures still get a JSON status while
// everything after the first byte is reported as an error frame.
package handlers
