package handlers

import (
	"log/slog"
	"net/http"

	"agentic/gateway/pkg/audit"
	"agentic/gateway/pkg/chat"
	"agentic/gateway/pkg/proxy"
	"agentic/gateway/pkg/proxy/middleware"
	"agentic/gateway/pkg/proxy/types"
	"agentic/gateway/pkg/session"
)

// ChatHandler serves POST /api/chat.
type ChatHandler struct {
	service ChatService
	limits  Limits
}

// NewChatHandler creates a non-streaming chat handler.
func NewChatHandler(service ChatService, limits Limits) *ChatHandler {
	return &ChatHandler{service: service, limits: limits}
}

// ServeHTTP implements http.Handler.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		proxy.WriteMethodNotAllowed(w, http.MethodPost)
		return
	}
	ctx := r.Context()

	req, err := proxy.ParseChatRequest(w, r, h.limits.MaxBodyBytes)
	if err != nil {
		proxy.WriteError(ctx, w, err)
		return
	}

	result, err := h.service.Send(ctx, chat.SendRequest{
		SessionID:    req.SessionID,
		Message:      req.Message,
		SystemPrompt: req.SystemPrompt,
		RequestID:    middleware.GetRequestID(ctx),
		Transport:    audit.TransportHTTP,
	})
	if err != nil {
		proxy.WriteError(ctx, w, err)
		return
	}

	history := result.History
	if history == nil {
		history = []session.Turn{}
	}
	if err := proxy.WriteJSONResponse(w, http.StatusOK, &types.ChatResponse{
		Response:            result.Response,
		ConversationHistory: history,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to write response", "error", err)
	}
}
