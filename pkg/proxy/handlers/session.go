package handlers

import (
	"log/slog"
	"net/http"

	"agentic/gateway/pkg/proxy"
	"agentic/gateway/pkg/proxy/middleware"
	"agentic/gateway/pkg/proxy/types"
	"agentic/gateway/pkg/session"
)

// SessionHandler serves POST and DELETE /api/session.
type SessionHandler struct {
	store  SessionStore
	limits Limits
}

// NewSessionHandler creates a session handler.
func NewSessionHandler(store SessionStore, limits Limits) *SessionHandler {
	return &SessionHandler{store: store, limits: limits}
}

// ServeHTTP implements http.Handler.
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.create(w, r)
	case http.MethodDelete:
		h.delete(w, r)
	default:
		proxy.WriteMethodNotAllowed(w, http.MethodPost, http.MethodDelete)
	}
}

func (h *SessionHandler) create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := proxy.ParseCreateSessionRequest(w, r, h.limits.MaxBodyBytes)
	if err != nil {
		proxy.WriteError(ctx, w, err)
		return
	}

	id, err := h.store.Create(session.Credential(req.APIKey))
	if err != nil {
		proxy.WriteError(ctx, w, err)
		return
	}

	slog.InfoContext(ctx, "session created",
		"request_id", middleware.GetRequestID(ctx),
		"session_id", id,
	)

	if err := proxy.WriteJSONResponse(w, http.StatusOK, &types.CreateSessionResponse{
		SessionID: id,
		Message:   "Session created successfully",
	}); err != nil {
		slog.ErrorContext(ctx, "failed to write response", "error", err)
	}
}

// delete is idempotent: an unknown session is reported as deleted.
func (h *SessionHandler) delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := proxy.RequireSessionID(r)
	if err != nil {
		proxy.WriteError(ctx, w, err)
		return
	}

	existed := h.store.Delete(id)
	slog.InfoContext(ctx, "session deleted",
		"request_id", middleware.GetRequestID(ctx),
		"session_id", id,
		"existed", existed,
	)

	if err := proxy.WriteJSONResponse(w, http.StatusOK, &types.MessageResponse{
		Message: "Session deleted successfully",
	}); err != nil {
		slog.ErrorContext(ctx, "failed to write response", "error", err)
	}
}
