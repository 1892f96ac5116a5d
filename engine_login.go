package authgate

import (
	"context"

	"github.com/orbitlms/authgate/internal/flows"
)

// Login turns an identifier (username or email) and plaintext password into
// a signed access token or one of the login sentinel errors. See
// [flows.RunLogin] for the ordering invariants; the configured
// FailurePolicy decides whether counter-store outages surface as
// [ErrStoreUnavailable] or degrade to "not locked".
func (e *Engine) Login(ctx context.Context, identifier, pass string) (string, error) {
	if e == nil || e.jwtManager == nil || e.directory == nil {
		return "", ErrEngineNotReady
	}

	deps := flows.LoginDeps{
		IsLocked:      e.ledgerIsLocked,
		RecordFailure: e.ledgerRecordFailure,
		RecordSuccess: e.ledgerRecordSuccess,

		FindIdentity:   e.findIdentityRecord,
		VerifyPassword: e.hasher.Matches,
		IssueToken:     e.jwtManager.Issue,

		MetricInc: e.metricInc,
		EmitAudit: e.emitAudit,

		Metrics: flows.LoginMetrics{
			LoginSuccess: int(MetricLoginSuccess),
			LoginFailure: int(MetricLoginFailure),
			LoginLockout: int(MetricLoginLockout),
		},
		Events: flows.LoginEvents{
			LoginSuccess: EventLoginSuccess,
			LoginFailure: EventLoginFailure,
			LoginLockout: EventLoginLockout,
		},
		Errors: flows.LoginErrors{
			EngineNotReady:     ErrEngineNotReady,
			BadCredential:      ErrBadCredential,
			AccountLocked:      ErrAccountLocked,
			AccountDisabled:    ErrAccountDisabled,
			AccountAdminLocked: ErrAccountAdminLocked,
		},
	}

	return flows.RunLogin(ctx, identifier, pass, deps)
}

// ledgerIsLocked applies the store failure policy: under FailOpen an
// unreachable store reads as "not locked".
func (e *Engine) ledgerIsLocked(ctx context.Context, identity string) (bool, error) {
	sctx, cancel := e.storeContext(ctx)
	defer cancel()

	locked, err := e.ledger.IsLocked(sctx, identity)
	if err != nil {
		if e.failOpen() {
			return false, nil
		}
		return false, e.wrapStoreError(err)
	}
	return locked, nil
}

func (e *Engine) ledgerRecordFailure(ctx context.Context, identity string) (int64, error) {
	sctx, cancel := e.storeContext(ctx)
	defer cancel()

	count, err := e.ledger.RecordFailure(sctx, identity)
	if err != nil {
		if e.failOpen() {
			return 0, nil
		}
		return 0, e.wrapStoreError(err)
	}
	return count, nil
}

func (e *Engine) ledgerRecordSuccess(ctx context.Context, identity string) error {
	sctx, cancel := e.storeContext(ctx)
	defer cancel()

	if err := e.ledger.RecordSuccess(sctx, identity); err != nil {
		if e.failOpen() {
			return nil
		}
		return e.wrapStoreError(err)
	}
	return nil
}

func (e *Engine) findIdentityRecord(ctx context.Context, identifier string) (*flows.IdentityRecord, error) {
	identity, err := e.directory.FindByUsernameOrEmail(ctx, identifier)
	if err != nil {
		return nil, e.wrapDirectoryError(err)
	}
	if identity == nil {
		return nil, nil
	}
	return &flows.IdentityRecord{
		ID:           identity.ID,
		Username:     identity.Username,
		PasswordHash: identity.PasswordHash,
		Roles:        identity.Roles,
		Enabled:      identity.Enabled,
		Locked:       identity.Locked,
	}, nil
}
