package httpapi

import (
	"net/http"

	"golang.org/x/time/rate"
)

// limiter guards the POST endpoints when configured. Nil means no limit,
// which is the default.
var limiter *rate.Limiter

// SetRateLimit installs a process-wide token bucket for inference endpoints.
// rps <= 0 disables the limiter.
func SetRateLimit(rps int) {
	if rps <= 0 {
		limiter = nil
		return
	}
	limiter = rate.NewLimiter(rate.Limit(rps), rps)
}

// rateLimitMiddleware rejects requests with 429 once the bucket is drained.
func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if limiter != nil && !limiter.Allow() {
			IncrementBackpressure("rate_limit")
			writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}
