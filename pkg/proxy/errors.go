package proxy

import (
	"errors"
	"net/http"

	"agentic/gateway/pkg/providers"
	"agentic/gateway/pkg/proxy/types"
	"agentic/gateway/pkg/session"
)

// Client-facing messages for errors that are not provider failures.
const (
	MessageInvalidSession = "Invalid or expired session"
	MessageInternal       = "An internal error occurred. Please try again later."
)

// HandleError maps err to an HTTP status and response body. It is the only
// place the gateway decides status codes for failures:
//
//	RequestError, providers.ValidationError  400 invalid_request
//	session.ErrSessionNotFound               401 session_not_found
//	provider and transport failures          500 provider_error
//	anything else                            500 internal_error
//
// Provider messages come from providers.UserMessage and never carry
// credentials or raw upstream bodies.
//
// Example usage:
//
//	if err != nil {
//	    status, errResp := HandleError(err)
//	    WriteErrorResponse(w, status, errResp)
//	    return
//	}
func HandleError(err error) (int, *types.ErrorResponse) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return http.StatusBadRequest, types.NewErrorResponse(types.CodeInvalidRequest, reqErr.Message)
	}

	var valErr *providers.ValidationError
	if errors.As(err, &valErr) {
		return http.StatusBadRequest, types.NewErrorResponse(types.CodeInvalidRequest, valErr.Message)
	}

	if errors.Is(err, session.ErrSessionNotFound) {
		return http.StatusUnauthorized, types.NewErrorResponse(types.CodeSessionNotFound, MessageInvalidSession)
	}

	if providers.IsProviderError(err) || providers.IsTransportError(err) {
		return http.StatusInternalServerError, types.NewErrorResponse(types.CodeProviderError, providers.UserMessage(err))
	}

	return http.StatusInternalServerError, types.NewErrorResponse(types.CodeInternalError, MessageInternal)
}

// StreamErrorMessage returns the content of the error frame sent when err
// ends a stream that already has an open sink.
func StreamErrorMessage(err error) string {
	_, errResp := HandleError(err)
	return errResp.Error
}
