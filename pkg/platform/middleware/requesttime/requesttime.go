// Package requesttime provides middleware for request-scoped time.
// All operations within a single HTTP request use the same "now" timestamp,
// which keeps window calculations and audit timestamps consistent even when a
// request straddles a window boundary.
package requesttime

import (
	"context"
	"net/http"
	"time"

	"trustplane/pkg/requestcontext"
)

// Now returns the request-scoped time, falling back to the wall clock when
// the middleware did not run (background jobs, tests).
func Now(ctx context.Context) time.Time {
	return requestcontext.Now(ctx)
}

// Middleware captures the current time at the start of the request and stores
// it in the context for consistent time references throughout the request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		now := time.Now()
		ctx := requestcontext.WithTime(r.Context(), now)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
