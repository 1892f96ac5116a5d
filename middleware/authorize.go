package middleware

import (
	"net/http"

	"github.com/orbitlms/authgate"
)

// Authorize is the authorization stage: it evaluates the data-driven policy
// table against the principal the gate attached (or didn't). Anonymous
// requests to protected routes get 401, authenticated requests without the
// required role get 403. Must run after [Gate].
func Authorize(policy *authgate.Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, _ := authgate.PrincipalFromContext(r.Context())

			if !policy.Evaluate(principal, r.Method, r.URL.Path) {
				if principal == nil {
					http.Error(w, "unauthorized", http.StatusUnauthorized)
					return
				}
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
