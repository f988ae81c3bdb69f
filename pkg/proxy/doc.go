// Package proxy holds the HTTP edge of the gateway: request parsing, the
// error-to-status mapping, and JSON response helpers shared by the route
// handlers in proxy/handlers and the middleware in proxy/middleware.
//
// # Error Contract
//
// Every failure answered with a status code goes through HandleError, so the
// mapping lives in one place:
//
//	400 invalid_request    missing fields, malformed or oversized body
//	401 session_not_found  unknown or expired session ID
//	405 method_not_allowed route does not serve the method
//	500 provider_error     provider reported a failure or could not be reached
//	500 internal_error     anything else; the detail is logged, not returned
//
// The body is always:
//
//	{"error": "Invalid or expired session", "code": "session_not_found"}
//
// Once a stream has started the status is committed, so failures become a
// terminal error frame whose content is StreamErrorMessage(err).
//
// # Request Bodies
//
// DecodeJSON caps bodies with http.MaxBytesReader (10 MiB unless configured)
// and reports oversized, empty, or malformed JSON as a 400.
package proxy
