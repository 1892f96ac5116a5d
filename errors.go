package authgate

import "errors"

var (
	// ErrBadCredential is returned by Login for a wrong password or an
	// unknown identity. The two cases are deliberately indistinguishable
	// so the API boundary cannot leak account existence.
	ErrBadCredential = errors.New("bad credential")
	// ErrAccountLocked is returned by Login while the failed-attempt
	// counter for the identity is at or above the lockout threshold.
	ErrAccountLocked = errors.New("account temporarily locked")
	// ErrAccountDisabled is returned by Login when the identity is
	// administratively disabled.
	ErrAccountDisabled = errors.New("account disabled")
	// ErrAccountAdminLocked is returned by Login when the identity carries
	// the administrative lock flag (distinct from the brute-force lock).
	ErrAccountAdminLocked = errors.New("account locked by administrator")
	// ErrRateLimited is returned when a fixed-window request budget is
	// exhausted for a key.
	ErrRateLimited = errors.New("rate limit exceeded")
	// ErrStoreUnavailable wraps Redis failures from the ledger and the
	// rate limiter. Never retried internally; whether it surfaces or is
	// absorbed depends on the configured FailurePolicy.
	ErrStoreUnavailable = errors.New("counter store unavailable")
	// ErrDirectoryUnavailable wraps identity-store failures during login
	// or principal resolution.
	ErrDirectoryUnavailable = errors.New("identity directory unavailable")
	// ErrEngineNotReady is returned when an Engine method is invoked
	// before Build wired all dependencies.
	ErrEngineNotReady = errors.New("engine not initialized")
)
