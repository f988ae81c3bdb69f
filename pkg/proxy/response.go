package proxy

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"agentic/gateway/pkg/proxy/types"
)

// WriteJSONResponse writes data as a JSON response with the given status.
//
// Example usage:
//
//	WriteJSONResponse(w, http.StatusOK, &types.HistoryResponse{...})
func WriteJSONResponse(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON response: %w", err)
	}
	return nil
}

// WriteErrorResponse writes an error body with the given status.
func WriteErrorResponse(w http.ResponseWriter, statusCode int, errResp *types.ErrorResponse) error {
	return WriteJSONResponse(w, statusCode, errResp)
}

// WriteError maps err with HandleError, logs it, and writes the response.
// Client errors log at WARN and server errors at ERROR.
func WriteError(ctx context.Context, w http.ResponseWriter, err error) {
	status, errResp := HandleError(err)

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	slog.Log(ctx, level, "request failed",
		"status", status,
		"code", errResp.Code,
		"error", err,
	)

	if werr := WriteErrorResponse(w, status, errResp); werr != nil {
		slog.ErrorContext(ctx, "failed to write error response", "error", werr)
	}
}

// WriteMethodNotAllowed answers a request whose method the route does not
// serve.
func WriteMethodNotAllowed(w http.ResponseWriter, allowed ...string) {
	for _, m := range allowed {
		w.Header().Add("Allow", m)
	}
	_ = WriteErrorResponse(w, http.StatusMethodNotAllowed,
		types.NewErrorResponse(types.CodeMethodNotAllowed, "Method not allowed"))
}
