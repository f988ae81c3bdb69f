package types

// Error codes carried in ErrorResponse.Code.
const (
	// CodeInvalidRequest is a malformed or incomplete request body or query.
	CodeInvalidRequest = "invalid_request"

	// CodeSessionNotFound is an unknown or expired session ID.
	CodeSessionNotFound = "session_not_found"

	// CodeProviderError is a failure reported by or while reaching the provider.
	CodeProviderError = "provider_error"

	// CodeMethodNotAllowed is a request with an unsupported HTTP method.
	CodeMethodNotAllowed = "method_not_allowed"

	// CodeNotFound is a request for an unknown route.
	CodeNotFound = "not_found"

	// CodeUnavailable is a route whose backing feature is disabled.
	CodeUnavailable = "unavailable"

	// CodeInternalError is any other server-side failure.
	CodeInternalError = "internal_error"
)

// ErrorResponse is the body of every non-2xx JSON response.
//
//	{"error": "Invalid or expired session", "code": "session_not_found"}
type ErrorResponse struct {
	// Error is a human-readable message safe to show to end users.
	Error string `json:"error"`

	// Code is a stable machine-readable reason.
	Code string `json:"code"`
}

// NewErrorResponse creates an error response.
func NewErrorResponse(code, message string) *ErrorResponse {
	return &ErrorResponse{Error: message, Code: code}
}
