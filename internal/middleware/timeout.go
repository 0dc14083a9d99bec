package middleware

import (
	"context"
	"net/http"
	"time"
)

const (
	// DefaultRequestTimeout bounds one request end to end. It has to
	// leave room for a moderation call, a generation call and a
	// synthesis call in sequence.
	DefaultRequestTimeout = 30 * time.Second
)

// Timeout enforces a deadline on request handlers. The context carries
// the deadline so in-flight LLM and synthesis calls are cancelled with
// the request.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			r = r.WithContext(ctx)

			handler := http.TimeoutHandler(next, timeout, "Request Timeout")
			handler.ServeHTTP(w, r)
		})
	}
}
