package handlers

import (
	"log/slog"
	"net/http"

	"agentic/gateway/pkg/proxy"
	"agentic/gateway/pkg/proxy/types"
)

// HistoryHandler serves GET /api/history.
type HistoryHandler struct {
	store SessionStore
}

// NewHistoryHandler creates a history handler.
func NewHistoryHandler(store SessionStore) *HistoryHandler {
	return &HistoryHandler{store: store}
}

// ServeHTTP implements http.Handler.
func (h *HistoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		proxy.WriteMethodNotAllowed(w, http.MethodGet)
		return
	}
	ctx := r.Context()

	id, err := proxy.RequireSessionID(r)
	if err != nil {
		proxy.WriteError(ctx, w, err)
		return
	}

	sess, err := h.store.Get(id)
	if err != nil {
		proxy.WriteError(ctx, w, err)
		return
	}

	if err := proxy.WriteJSONResponse(w, http.StatusOK, &types.HistoryResponse{
		ConversationHistory: sess.History(),
	}); err != nil {
		slog.ErrorContext(ctx, "failed to write response", "error", err)
	}
}
