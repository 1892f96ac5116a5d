package authgate

import (
	"context"
	"errors"

	"github.com/orbitlms/authgate/internal/flows"
	"github.com/orbitlms/authgate/jwt"
)

// ErrUnknownSubject is returned by ValidateToken when a token verifies but
// its subject no longer exists in the directory.
var ErrUnknownSubject = errors.New("token subject no longer exists")

// ValidateToken verifies a raw token string and resolves the current
// principal. The role claim inside the token is informational only: roles
// are re-read from the directory so changes since issuance take effect
// immediately. Token-level failures come back as the jwt package sentinels
// ([jwt.ErrMalformed], [jwt.ErrSignatureInvalid], [jwt.ErrExpired]); the
// authentication gate absorbs all of them into an anonymous pass-through.
func (e *Engine) ValidateToken(ctx context.Context, token string) (*Principal, error) {
	if e == nil || e.jwtManager == nil || e.directory == nil {
		return nil, ErrEngineNotReady
	}

	deps := flows.ValidateDeps{
		ParseToken:   e.parseTokenClaims,
		FindIdentity: e.findIdentityRecord,
		MetricInc:    e.metricInc,
		Metrics: flows.ValidateMetrics{
			ValidateSuccess: int(MetricValidateSuccess),
			ValidateFailure: int(MetricValidateFailure),
		},
		Errors: flows.ValidateErrors{
			EngineNotReady: ErrEngineNotReady,
			Unknown:        ErrUnknownSubject,
		},
	}

	record, err := flows.RunValidate(ctx, token, deps)
	if err != nil {
		return nil, err
	}
	return &Principal{
		Subject: record.Subject,
		UserID:  record.UserID,
		Roles:   record.Roles,
	}, nil
}

func (e *Engine) parseTokenClaims(token string) (*flows.TokenClaims, error) {
	claims, err := e.jwtManager.Parse(token)
	if err != nil {
		return nil, err
	}
	return &flows.TokenClaims{
		Subject: claims.Subject,
		Role:    claims.Role,
		UserID:  claims.UserID,
	}, nil
}

// IssueToken signs a token directly, bypassing the login flow. Intended for
// test fixtures and administrative tooling; production callers go through
// [Engine.Login].
func (e *Engine) IssueToken(subject, role string, userID int64) (string, error) {
	if e == nil || e.jwtManager == nil {
		return "", ErrEngineNotReady
	}
	return e.jwtManager.Issue(subject, role, userID)
}

// TokenErrorKind reports whether err is one of the token validation
// sentinels, which the gate treats as "anonymous" rather than failures.
func TokenErrorKind(err error) bool {
	return errors.Is(err, jwt.ErrMalformed) ||
		errors.Is(err, jwt.ErrSignatureInvalid) ||
		errors.Is(err, jwt.ErrExpired) ||
		errors.Is(err, ErrUnknownSubject)
}
