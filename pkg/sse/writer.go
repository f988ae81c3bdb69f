package sse

import (
	"fmt"
	"net/http"
)

// SetHeaders sets the headers for a Server-Sent Events response.
func SetHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
}

// Writer writes data-only frames to an HTTP response.
type Writer struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewWriter returns a Writer for w. It fails if w cannot flush, since an
// unflushed event stream would be delivered all at once.
func NewWriter(w http.ResponseWriter) (*Writer, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("response writer does not support flushing")
	}
	return &Writer{w: w, flusher: flusher}, nil
}

// WriteData writes one frame in the form "data: <payload>\n\n" and flushes.
// The payload must not contain newlines; JSON from encoding/json never does.
func (w *Writer) WriteData(payload []byte) error {
	if _, err := fmt.Fprintf(w.w, "data: %s\n\n", payload); err != nil {
		return fmt.Errorf("failed to write SSE frame: %w", err)
	}
	w.flusher.Flush()
	return nil
}

// WriteComment writes a comment line, which clients ignore. It is used as a
// keepalive.
func (w *Writer) WriteComment(text string) error {
	if _, err := fmt.Fprintf(w.w, ": %s\n\n", text); err != nil {
		return fmt.Errorf("failed to write SSE comment: %w", err)
	}
	w.flusher.Flush()
	return nil
}
