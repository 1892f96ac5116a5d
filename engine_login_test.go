package authgate

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
)

func TestLoginIssuesVerifiableToken(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	token, err := env.engine.Login(ctx, "alice", "correct-horse")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Errorf("token %q is not a three-segment JWT", token)
	}

	principal, err := env.engine.ValidateToken(ctx, token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if principal.Subject != "alice" || principal.UserID != 7 {
		t.Errorf("principal = %+v", principal)
	}
	if !principal.HasRole(RoleStudent) {
		t.Errorf("principal roles = %v, want STUDENT", principal.Roles)
	}

	ev := env.waitForAudit(t, EventLoginSuccess)
	if !ev.Success || ev.Identity != "alice" {
		t.Errorf("audit event = %+v", ev)
	}
}

func TestLoginByEmail(t *testing.T) {
	env := newTestEnv(t, nil)

	token, err := env.engine.Login(context.Background(), "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login by email failed: %v", err)
	}

	// The token subject is the canonical username, not the identifier
	// the caller typed.
	principal, err := env.engine.ValidateToken(context.Background(), token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if principal.Subject != "alice" {
		t.Errorf("subject = %q, want alice", principal.Subject)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t, nil)

	mustLoginErr(t, env, "alice", "wrong-horse", ErrBadCredential)

	count, err := env.engine.FailureCount(context.Background(), "alice")
	if err != nil {
		t.Fatalf("FailureCount failed: %v", err)
	}
	if count != 1 {
		t.Errorf("failure count = %d, want 1", count)
	}
}

func TestLoginUnknownIdentifierIndistinguishable(t *testing.T) {
	env := newTestEnv(t, nil)

	// Unknown identifiers get the same error as a wrong password and
	// cost an attempt under the identifier used.
	mustLoginErr(t, env, "nobody", "whatever-pass", ErrBadCredential)

	count, err := env.engine.FailureCount(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("FailureCount failed: %v", err)
	}
	if count != 1 {
		t.Errorf("failure count = %d, want 1", count)
	}
}

func TestLoginLockoutAfterThreshold(t *testing.T) {
	env := newTestEnv(t, nil)

	for i := 0; i < 5; i++ {
		mustLoginErr(t, env, "alice", "wrong-horse", ErrBadCredential)
	}

	lookupsBefore := env.directory.lookups.Load()

	// The lock check runs before any directory or credential work, so
	// even the correct password is refused without a lookup.
	mustLoginErr(t, env, "alice", "correct-horse", ErrAccountLocked)
	if got := env.directory.lookups.Load(); got != lookupsBefore {
		t.Errorf("directory consulted %d times during lockout, want 0", got-lookupsBefore)
	}

	ev := env.waitForAudit(t, EventLoginLockout)
	if ev.Identity != "alice" {
		t.Errorf("lockout event = %+v", ev)
	}
}

func TestLoginSuccessClearsAttempts(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		mustLoginErr(t, env, "alice", "wrong-horse", ErrBadCredential)
	}

	if _, err := env.engine.Login(ctx, "alice", "correct-horse"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	count, err := env.engine.FailureCount(ctx, "alice")
	if err != nil {
		t.Fatalf("FailureCount failed: %v", err)
	}
	if count != 0 {
		t.Errorf("failure count = %d after success, want 0", count)
	}
}

func TestLoginDisabledAccountClearsCounterButRefuses(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	env.directory.put(Identity{
		ID:           8,
		Username:     "bob",
		PasswordHash: mustHash(t, "bob-secret"),
		Roles:        []string{RoleTeacher},
		Enabled:      false,
	})

	for i := 0; i < 3; i++ {
		mustLoginErr(t, env, "bob", "wrong-horse", ErrBadCredential)
	}

	// Correct password: refused for being disabled, but the brute-force
	// counter clears because the credential itself checked out.
	mustLoginErr(t, env, "bob", "bob-secret", ErrAccountDisabled)

	count, err := env.engine.FailureCount(ctx, "bob")
	if err != nil {
		t.Fatalf("FailureCount failed: %v", err)
	}
	if count != 0 {
		t.Errorf("failure count = %d, want 0", count)
	}
}

func TestLoginAdminLockedAccount(t *testing.T) {
	env := newTestEnv(t, nil)

	env.directory.put(Identity{
		ID:           9,
		Username:     "mallory",
		PasswordHash: mustHash(t, "mallory-secret"),
		Roles:        []string{RoleStudent},
		Enabled:      true,
		Locked:       true,
	})

	mustLoginErr(t, env, "mallory", "mallory-secret", ErrAccountAdminLocked)
}

func TestLoginPrimaryRoleIsFirstRole(t *testing.T) {
	env := newTestEnv(t, nil)

	env.directory.put(Identity{
		ID:           10,
		Username:     "dora",
		PasswordHash: mustHash(t, "dora-secret"),
		Roles:        []string{RoleAdmin, RoleTeacher},
		Enabled:      true,
	})

	token, err := env.engine.Login(context.Background(), "dora", "dora-secret")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	claims, err := env.engine.jwtManager.Parse(token)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if claims.Role != RoleAdmin {
		t.Errorf("role claim = %q, want ADMIN", claims.Role)
	}
}

func TestLoginStoreDownFailClosed(t *testing.T) {
	env := newTestEnv(t, nil)
	env.redis.Close()

	mustLoginErr(t, env, "alice", "correct-horse", ErrStoreUnavailable)
}

func TestLoginStoreDownFailOpen(t *testing.T) {
	env := newTestEnv(t, func(cfg *Config) {
		cfg.Store.OnFailure = FailOpen
	})
	env.redis.Close()

	// Lockout protection degrades to nothing, login still works.
	token, err := env.engine.Login(context.Background(), "alice", "correct-horse")
	if err != nil {
		t.Fatalf("Login under fail-open failed: %v", err)
	}
	if token == "" {
		t.Error("expected a token under fail-open")
	}

	// Failed attempts are absorbed too.
	mustLoginErr(t, env, "alice", "wrong-horse", ErrBadCredential)
}

func TestLoginDirectoryErrorSurfaces(t *testing.T) {
	env := newTestEnv(t, nil)
	env.directory.err = errors.New("connection refused")

	mustLoginErr(t, env, "alice", "correct-horse", ErrDirectoryUnavailable)
}

func TestLoginConcurrentFailuresAllCounted(t *testing.T) {
	env := newTestEnv(t, func(cfg *Config) {
		// High threshold so no goroutine hits the lockout fast path.
		cfg.Attempts.Threshold = 100
	})
	ctx := context.Background()

	const workers = 20
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := env.engine.Login(ctx, "alice", "wrong-horse")
			if !errors.Is(err, ErrBadCredential) {
				t.Errorf("Login error = %v, want ErrBadCredential", err)
			}
		}()
	}
	wg.Wait()

	count, err := env.engine.FailureCount(ctx, "alice")
	if err != nil {
		t.Fatalf("FailureCount failed: %v", err)
	}
	if count != workers {
		t.Errorf("failure count = %d after %d concurrent failures", count, workers)
	}
}

func TestLoginMetrics(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	mustLoginErr(t, env, "alice", "wrong-horse", ErrBadCredential)
	if _, err := env.engine.Login(ctx, "alice", "correct-horse"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	snap := env.engine.MetricsSnapshot()
	if got := snap.Counters[MetricLoginFailure]; got != 1 {
		t.Errorf("login failures = %d, want 1", got)
	}
	if got := snap.Counters[MetricLoginSuccess]; got != 1 {
		t.Errorf("login successes = %d, want 1", got)
	}
}
