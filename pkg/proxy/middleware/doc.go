// Package middleware provides HTTP middleware for cross-cutting concerns.
//
// The gateway chains them as:
//
//	handler = RequestID(Logging(Recovery(CORS(handler))))
//
// RequestID is outermost so the access log and panic log carry the ID, and
// Logging wraps Recovery so a recovered panic is logged as a 500.
// with TimeoutMiddleware applied per route to the non-streaming endpoints
// only. Streams are bounded by the provider and by client disconnects.
//
// # Request ID
//
// RequestIDMiddleware reuses a client's X-Request-ID or generates a UUID. The
// ID is stored with logging.WithRequestID, so every ...Context log call made
// while serving the request carries it, and it is echoed in the response.
//
// # Logging
//
// LoggingMiddleware writes one "request completed" record per request with
// method, path, status, latency, and bytes written. 4xx responses log at WARN
// and 5xx at ERROR. Its response writer forwards Flush and supports Unwrap so
// the SSE and WebSocket transports work through it.
//
// # CORS
//
// CORSMiddleware answers preflight requests for the configured origins:
//
//	server:
//	  cors_origins: ["https://app.example.com"]
//
// # Recovery
//
// RecoveryMiddleware turns a panic into a 500 with the standard error body:
//
//	{"error": "An internal error occurred. Please try again later.", "code": "internal_error"}
//
// The panic value and stack are logged, never returned.
package middleware
