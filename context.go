package authgate

import "context"

type principalContextKey struct{}

// WithPrincipal attaches the verified principal to ctx for the remainder of
// one request's processing. Principals are never stored in package-level
// state, so concurrent requests cannot cross-contaminate identities.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext returns the principal attached by the authentication
// gate, or (nil, false) for an anonymous request.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	if ctx == nil {
		return nil, false
	}

	p, ok := ctx.Value(principalContextKey{}).(*Principal)
	if !ok || p == nil {
		return nil, false
	}
	return p, true
}
