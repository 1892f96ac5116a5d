package flows

import (
	"context"
)

// IdentityRecord is the flow-local account model. The host maps its
// directory type into this shape so the flow packages stay dependency-free.
type IdentityRecord struct {
	ID           int64
	Username     string
	PasswordHash string
	Roles        []string
	Enabled      bool
	Locked       bool
}

func (r *IdentityRecord) primaryRole() string {
	if len(r.Roles) == 0 {
		return "UNKNOWN"
	}
	return r.Roles[0]
}

// LoginMetrics carries metric IDs incremented by the login flow.
type LoginMetrics struct {
	LoginSuccess int
	LoginFailure int
	LoginLockout int
}

// LoginEvents carries audit event names emitted by the login flow.
type LoginEvents struct {
	LoginSuccess string
	LoginFailure string
	LoginLockout string
}

// LoginErrors carries host-level sentinel errors returned by the login flow.
type LoginErrors struct {
	EngineNotReady     error
	BadCredential      error
	AccountLocked      error
	AccountDisabled    error
	AccountAdminLocked error
}

// LoginDeps captures the login flow dependencies. The ledger functions are
// expected to have the host's store failure policy already applied.
type LoginDeps struct {
	IsLocked      func(ctx context.Context, identity string) (bool, error)
	RecordFailure func(ctx context.Context, identity string) (int64, error)
	RecordSuccess func(ctx context.Context, identity string) error

	FindIdentity   func(ctx context.Context, identifier string) (*IdentityRecord, error)
	VerifyPassword func(password, hash string) (bool, error)
	IssueToken     func(subject, role string, userID int64) (string, error)

	MetricInc func(int)
	EmitAudit func(ctx context.Context, event string, success bool, identity string, err error)

	Metrics LoginMetrics
	Events  LoginEvents
	Errors  LoginErrors
}

// RunLogin turns an identifier/password pair into a signed token or a
// rejection. Ordering invariants:
//
//   - A locked identity fails before any directory or credential work.
//   - An unknown identifier records a failure and folds into BadCredential,
//     indistinguishable from a wrong password.
//   - The attempt counter is cleared on credential match before the
//     enabled/admin-locked checks run, so a disabled account presenting the
//     correct password still clears its brute-force counter even though
//     login is ultimately refused.
func RunLogin(ctx context.Context, identifier, password string, deps LoginDeps) (string, error) {
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = func(context.Context, string, bool, string, error) {}
	}
	if deps.IsLocked == nil ||
		deps.RecordFailure == nil ||
		deps.RecordSuccess == nil ||
		deps.FindIdentity == nil ||
		deps.VerifyPassword == nil ||
		deps.IssueToken == nil {
		return "", deps.Errors.EngineNotReady
	}

	locked, err := deps.IsLocked(ctx, identifier)
	if err != nil {
		return "", err
	}
	if locked {
		deps.MetricInc(deps.Metrics.LoginLockout)
		deps.EmitAudit(ctx, deps.Events.LoginLockout, false, identifier, deps.Errors.AccountLocked)
		return "", deps.Errors.AccountLocked
	}

	identity, err := deps.FindIdentity(ctx, identifier)
	if err != nil {
		return "", err
	}
	if identity == nil {
		// Unknown identity costs an attempt like a wrong password would.
		return "", deps.failCredential(ctx, identifier)
	}

	match, err := deps.VerifyPassword(password, identity.PasswordHash)
	if err != nil {
		return "", err
	}
	if !match {
		return "", deps.failCredential(ctx, identifier)
	}

	if err := deps.RecordSuccess(ctx, identifier); err != nil {
		return "", err
	}

	if !identity.Enabled {
		deps.MetricInc(deps.Metrics.LoginFailure)
		deps.EmitAudit(ctx, deps.Events.LoginFailure, false, identifier, deps.Errors.AccountDisabled)
		return "", deps.Errors.AccountDisabled
	}
	if identity.Locked {
		deps.MetricInc(deps.Metrics.LoginFailure)
		deps.EmitAudit(ctx, deps.Events.LoginFailure, false, identifier, deps.Errors.AccountAdminLocked)
		return "", deps.Errors.AccountAdminLocked
	}

	token, err := deps.IssueToken(identity.Username, identity.primaryRole(), identity.ID)
	if err != nil {
		return "", err
	}

	deps.MetricInc(deps.Metrics.LoginSuccess)
	deps.EmitAudit(ctx, deps.Events.LoginSuccess, true, identifier, nil)
	return token, nil
}

func (d LoginDeps) failCredential(ctx context.Context, identifier string) error {
	if _, err := d.RecordFailure(ctx, identifier); err != nil {
		return err
	}
	d.MetricInc(d.Metrics.LoginFailure)
	d.EmitAudit(ctx, d.Events.LoginFailure, false, identifier, d.Errors.BadCredential)
	return d.Errors.BadCredential
}
