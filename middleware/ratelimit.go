package middleware

import (
	"net/http"

	"github.com/orbitlms/authgate"
)

// KeyFunc derives the rate-limit key for a request. Returning "" skips
// limiting for that request.
type KeyFunc func(*http.Request) string

// KeyByPrincipal keys the window on the authenticated subject. Anonymous
// requests are not limited; put the route behind the policy table if that
// matters.
func KeyByPrincipal(r *http.Request) string {
	principal, ok := authgate.PrincipalFromContext(r.Context())
	if !ok {
		return ""
	}
	return principal.Subject
}

// RateLimit bounds request volume per key through the engine's fixed-window
// limiter. Over-budget requests get 429; a counter-store outage follows the
// engine's failure policy (503 when fail-closed, unlimited when fail-open).
func RateLimit(engine *authgate.Engine, key KeyFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			if k == "" {
				next.ServeHTTP(w, r)
				return
			}

			allowed, err := engine.TryAcquire(r.Context(), k)
			if err != nil {
				http.Error(w, "service unavailable", http.StatusServiceUnavailable)
				return
			}
			if !allowed {
				http.Error(w, "too many requests", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
