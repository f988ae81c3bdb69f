package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"agentic/gateway/pkg/audit"
	"agentic/gateway/pkg/proxy"
	"agentic/gateway/pkg/proxy/types"
)

// ExchangesHandler serves GET /admin/exchanges from the audit store.
//
// Query parameters:
//
//	sessionId  only this session's exchanges
//	since      RFC 3339 lower bound on start time
//	limit      page size, default 100, max 1000
type ExchangesHandler struct {
	store audit.Store
}

// NewExchangesHandler creates an audit listing handler. store may be nil
// when auditing is disabled; the route then answers 404.
func NewExchangesHandler(store audit.Store) *ExchangesHandler {
	return &ExchangesHandler{store: store}
}

// ServeHTTP implements http.Handler.
func (h *ExchangesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		proxy.WriteMethodNotAllowed(w, http.MethodGet)
		return
	}
	ctx := r.Context()

	if h.store == nil {
		_ = proxy.WriteErrorResponse(w, http.StatusNotFound,
			types.NewErrorResponse(types.CodeUnavailable, "Exchange audit is disabled"))
		return
	}

	limit, err := proxy.QueryInt(r, "limit", audit.DefaultQueryLimit)
	if err != nil {
		proxy.WriteError(ctx, w, err)
		return
	}

	query := &audit.Query{
		SessionID: r.URL.Query().Get("sessionId"),
		Limit:     limit,
	}
	if raw := r.URL.Query().Get("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			proxy.WriteError(ctx, w, &proxy.RequestError{Message: "since must be an RFC 3339 timestamp", Field: "since"})
			return
		}
		query.Since = since
	}

	records, err := h.store.Query(ctx, query)
	if err != nil {
		proxy.WriteError(ctx, w, err)
		return
	}
	total, err := h.store.Count(ctx)
	if err != nil {
		proxy.WriteError(ctx, w, err)
		return
	}

	if records == nil {
		records = []*audit.Record{}
	}
	if err := proxy.WriteJSONResponse(w, http.StatusOK, &types.ExchangesResponse{
		Exchanges: records,
		Count:     len(records),
		Total:     total,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to write response", "error", err)
	}
}
