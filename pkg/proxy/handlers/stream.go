package handlers

import (
	"log/slog"
	"net/http"

	"agentic/gateway/pkg/audit"
	"agentic/gateway/pkg/chat"
	"agentic/gateway/pkg/proxy"
	"agentic/gateway/pkg/proxy/middleware"
	"agentic/gateway/pkg/relay"
)

// StreamHandler serves POST /api/stream as Server-Sent Events.
//
// Validation, session lookup, and provider construction fail with a normal
// JSON status. Once the event stream opens the status is 200 and every
// failure is an error frame.
type StreamHandler struct {
	service ChatService
	limits  Limits
}

// NewStreamHandler creates an SSE stream handler.
func NewStreamHandler(service ChatService, limits Limits) *StreamHandler {
	return &StreamHandler{service: service, limits: limits}
}

// ServeHTTP implements http.Handler.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
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

	var committed bool
	newSink := func() (relay.Sink, error) {
		sink, err := relay.NewSSESink(w, h.limits.WriteTimeout)
		if err != nil {
			return nil, err
		}
		committed = true
		return sink, nil
	}

	_, err = h.service.Stream(ctx, chat.SendRequest{
		SessionID:    req.SessionID,
		Message:      req.Message,
		SystemPrompt: req.SystemPrompt,
		RequestID:    middleware.GetRequestID(ctx),
		Transport:    audit.TransportSSE,
	}, newSink)
	if err == nil {
		return
	}
	if committed {
		slog.ErrorContext(ctx, "stream failed after headers were sent", "error", err)
		return
	}
	proxy.WriteError(ctx, w, err)
}
