package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"agentic/gateway/pkg/audit"
	"agentic/gateway/pkg/chat"
	"agentic/gateway/pkg/proxy"
	"agentic/gateway/pkg/proxy/middleware"
	"agentic/gateway/pkg/proxy/types"
	"agentic/gateway/pkg/relay"
)

// startMessageTimeout bounds the wait for the client's first message.
const startMessageTimeout = 30 * time.Second

// WebSocketHandler serves GET /api/stream/ws. It carries the same frames as
// /api/stream over a WebSocket:
//
//	GET /api/stream/ws?sessionId=...   (upgrade)
//	client -> {"message": "Hi", "systemPrompt": "..."}
//	server -> {"type":"text","content":"Hel"} ... {"type":"done"}
//
// The session is checked before the upgrade so an unknown session still gets
// a 401. The server closes the connection after the terminal frame.
type WebSocketHandler struct {
	service  ChatService
	store    SessionStore
	limits   Limits
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates a WebSocket stream handler. allowedOrigins is
// the CORS origin list; browsers from other origins are refused.
func NewWebSocketHandler(service ChatService, store SessionStore, limits Limits, allowedOrigins []string) *WebSocketHandler {
	return &WebSocketHandler{
		service: service,
		store:   store,
		limits:  limits,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

// ServeHTTP implements http.Handler.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		proxy.WriteMethodNotAllowed(w, http.MethodGet)
		return
	}
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	sessionID, err := proxy.RequireSessionID(r)
	if err != nil {
		proxy.WriteError(ctx, w, err)
		return
	}
	if _, err := h.store.Get(sessionID); err != nil {
		proxy.WriteError(ctx, w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already answered the client.
		slog.WarnContext(ctx, "websocket upgrade failed",
			"request_id", requestID,
			"error", err,
		)
		return
	}

	if h.limits.MaxBodyBytes > 0 {
		conn.SetReadLimit(h.limits.MaxBodyBytes)
	}
	sink := relay.NewWebSocketSink(conn, h.limits.WriteTimeout)

	var start types.StreamStart
	_ = conn.SetReadDeadline(time.Now().Add(startMessageTimeout))
	if err := conn.ReadJSON(&start); err != nil {
		slog.WarnContext(ctx, "failed to read websocket start message",
			"request_id", requestID,
			"error", err,
		)
		h.fail(ctx, sink, &proxy.RequestError{Message: "First message must be valid JSON", Field: "message"})
		return
	}
	_ = conn.SetReadDeadline(time.Time{})

	if start.Message == "" {
		h.fail(ctx, sink, &proxy.RequestError{Message: proxy.MessageChatFieldsRequired, Field: "message"})
		return
	}

	streamCtx, cancel := sink.Watch(ctx)
	defer cancel()

	_, err = h.service.Stream(streamCtx, chat.SendRequest{
		SessionID:    sessionID,
		Message:      start.Message,
		SystemPrompt: start.SystemPrompt,
		RequestID:    requestID,
		Transport:    audit.TransportWebSocket,
	}, func() (relay.Sink, error) {
		return sink, nil
	})
	if err != nil {
		// The relay never ran, so the sink is still open.
		h.fail(ctx, sink, err)
	}
}

// fail sends one error frame and closes the connection.
func (h *WebSocketHandler) fail(ctx context.Context, sink *relay.WebSocketSink, err error) {
	msg := proxy.StreamErrorMessage(err)
	if serr := sink.Send(ctx, relay.ErrorFrame(msg)); serr != nil {
		slog.DebugContext(ctx, "failed to send websocket error frame", "error", serr)
	}
	_ = sink.Close()
}

// originChecker allows same-host requests, requests without an Origin
// header, and the configured origins.
func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || slices.Contains(allowed, "*") {
			return true
		}
		for _, o := range allowed {
			if strings.EqualFold(o, origin) {
				return true
			}
		}
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
}
