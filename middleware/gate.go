package middleware

import (
	"net/http"
	"strings"

	"github.com/orbitlms/authgate"
)

// Gate is the per-request authentication stage. It reads the configured
// token header, validates the token, and attaches the resolved principal to
// the request context. A missing, malformed, expired, or tampered token
// yields an anonymous pass-through, and the authorization stage decides
// what anonymous may reach. Infrastructure failures (directory down under
// fail-closed) are a different class: demoting a valid-token holder to
// anonymous would turn an outage into 401s, so those get 503.
func Gate(engine *authgate.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				next.ServeHTTP(w, r)
				return
			}

			header, scheme := engine.TokenHeader()
			token, ok := stripScheme(r.Header.Get(header), scheme)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			principal, err := engine.ValidateToken(r.Context(), token)
			if err != nil {
				if authgate.TokenErrorKind(err) {
					// Anonymous pass-through; any route requiring
					// authentication rejects downstream.
					next.ServeHTTP(w, r)
					return
				}
				http.Error(w, "service unavailable", http.StatusServiceUnavailable)
				return
			}

			ctx := authgate.WithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func stripScheme(value, scheme string) (string, bool) {
	if !strings.HasPrefix(value, scheme) {
		return "", false
	}

	token := value[len(scheme):]
	if token == "" {
		return "", false
	}

	return token, true
}
