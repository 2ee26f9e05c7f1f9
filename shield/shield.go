// Package shield provides the HTTP hardening middleware for the markpin API:
// security headers, request body limits, and per-IP rate limiting.
//
// Usage:
//
//	r := chi.NewRouter()
//	rl := shield.NewRateLimiter(db, "/health")
//	rl.StartReloader(done)
//	for _, mw := range shield.DefaultStack(rl) {
//	    r.Use(mw)
//	}
package shield

import "net/http"

// MaxIngestBody bounds an ingest payload. Scraped projects run to hundreds of
// comments, not megabytes of them.
const MaxIngestBody = 4 << 20

// DefaultStack returns the standard middleware chain. rl may be nil to skip
// rate limiting.
func DefaultStack(rl *RateLimiter) []func(http.Handler) http.Handler {
	stack := []func(http.Handler) http.Handler{
		SecurityHeaders(DefaultHeaders()),
		MaxJSONBody(MaxIngestBody),
	}
	if rl != nil {
		stack = append(stack, rl.Middleware)
	}
	return stack
}
