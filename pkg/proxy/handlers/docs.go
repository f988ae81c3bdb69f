package handlers

import (
	_ "embed"
	"net/http"

	"agentic/gateway/pkg/proxy"
	"agentic/gateway/pkg/proxy/types"
)

//go:embed static/index.html
var docsPage []byte

// DocsHandler serves the API documentation page at GET /.
type DocsHandler struct{}

// NewDocsHandler creates a documentation handler.
func NewDocsHandler() *DocsHandler {
	return &DocsHandler{}
}

// ServeHTTP implements http.Handler.
func (h *DocsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		_ = proxy.WriteErrorResponse(w, http.StatusNotFound,
			types.NewErrorResponse(types.CodeNotFound, "Not found"))
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		proxy.WriteMethodNotAllowed(w, http.MethodGet, http.MethodHead)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(docsPage)
}
