package middleware

import (
	"context"
	"net/http"
	"time"
)

// TimeoutMiddleware bounds a request with a context deadline. Handlers and
// the provider calls they make observe the deadline through the request
// context and report it through their normal error path, so the response is
// always written by the handler goroutine.
//
// Streaming routes are mounted without it; a stream ends when the provider
// finishes or the client leaves.
//
// Example usage:
//
//	handler = TimeoutMiddleware(120 * time.Second)(handler)
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if timeout <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
