package flows

import (
	"context"
)

// TokenClaims is the flow-local shape of a verified token.
type TokenClaims struct {
	Subject string
	Role    string
	UserID  int64
}

// PrincipalRecord is the resolved request identity the validate flow hands
// back to the host. Roles come from the directory, not the token: role
// changes since issuance take effect on the next request.
type PrincipalRecord struct {
	Subject string
	UserID  int64
	Roles   []string
}

// ValidateErrors carries host-level sentinel errors for the validate flow.
type ValidateErrors struct {
	EngineNotReady error
	Unknown        error
}

// ValidateDeps captures the validate flow dependencies.
type ValidateDeps struct {
	ParseToken   func(token string) (*TokenClaims, error)
	FindIdentity func(ctx context.Context, identifier string) (*IdentityRecord, error)

	MetricInc func(int)
	Metrics   ValidateMetrics

	Errors ValidateErrors
}

// ValidateMetrics carries metric IDs incremented by the validate flow.
type ValidateMetrics struct {
	ValidateSuccess int
	ValidateFailure int
}

// RunValidate verifies a raw token and resolves the current principal.
// Token-level failures propagate the parser's error unchanged so the gate
// can decide to absorb them; a verified token whose subject no longer
// exists in the directory fails with Errors.Unknown.
func RunValidate(ctx context.Context, token string, deps ValidateDeps) (*PrincipalRecord, error) {
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.ParseToken == nil || deps.FindIdentity == nil {
		return nil, deps.Errors.EngineNotReady
	}

	claims, err := deps.ParseToken(token)
	if err != nil {
		deps.MetricInc(deps.Metrics.ValidateFailure)
		return nil, err
	}

	identity, err := deps.FindIdentity(ctx, claims.Subject)
	if err != nil {
		deps.MetricInc(deps.Metrics.ValidateFailure)
		return nil, err
	}
	if identity == nil {
		deps.MetricInc(deps.Metrics.ValidateFailure)
		return nil, deps.Errors.Unknown
	}

	deps.MetricInc(deps.Metrics.ValidateSuccess)
	return &PrincipalRecord{
		Subject: identity.Username,
		UserID:  identity.ID,
		Roles:   identity.Roles,
	}, nil
}
