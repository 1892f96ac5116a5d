package authgate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/orbitlms/authgate/jwt"
)

func TestValidateTokenRereadsRoles(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	token, err := env.engine.Login(ctx, "alice", "correct-horse")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	// Promote alice after issuance. The token still carries STUDENT in
	// its role claim, but validation resolves roles from the directory.
	env.directory.put(Identity{
		ID:           7,
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: mustHash(t, "correct-horse"),
		Roles:        []string{RoleAdmin},
		Enabled:      true,
	})

	principal, err := env.engine.ValidateToken(ctx, token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if !principal.HasRole(RoleAdmin) {
		t.Errorf("roles = %v, want promoted ADMIN role", principal.Roles)
	}
	if principal.HasRole(RoleStudent) {
		t.Errorf("roles = %v, stale STUDENT role survived", principal.Roles)
	}
}

func TestValidateTokenTamperedSignature(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	token, err := env.engine.Login(ctx, "alice", "correct-horse")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	parts := strings.Split(token, ".")
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = env.engine.ValidateToken(ctx, tampered)
	if !errors.Is(err, jwt.ErrSignatureInvalid) {
		t.Fatalf("expected signature error, got %v", err)
	}
	if !TokenErrorKind(err) {
		t.Error("signature errors must be gate-absorbable")
	}
}

func TestValidateTokenUnknownSubject(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	token, err := env.engine.IssueToken("ghost", RoleStudent, 99)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	_, err = env.engine.ValidateToken(ctx, token)
	if !errors.Is(err, ErrUnknownSubject) {
		t.Fatalf("expected ErrUnknownSubject, got %v", err)
	}
	if !TokenErrorKind(err) {
		t.Error("unknown-subject errors must be gate-absorbable")
	}
}

func TestValidateTokenMalformed(t *testing.T) {
	env := newTestEnv(t, nil)

	_, err := env.engine.ValidateToken(context.Background(), "garbage")
	if !errors.Is(err, jwt.ErrMalformed) {
		t.Fatalf("expected malformed error, got %v", err)
	}
}

func TestValidateTokenDirectoryErrorNotAbsorbable(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	token, err := env.engine.Login(ctx, "alice", "correct-horse")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	env.directory.err = errors.New("connection refused")

	_, err = env.engine.ValidateToken(ctx, token)
	if !errors.Is(err, ErrDirectoryUnavailable) {
		t.Fatalf("expected directory error, got %v", err)
	}
	// Infrastructure failures are not token failures; the gate must not
	// silently treat them as anonymous.
	if TokenErrorKind(err) {
		t.Error("directory outages must not be gate-absorbable")
	}
}

func TestValidateMetrics(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	token, err := env.engine.Login(ctx, "alice", "correct-horse")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if _, err := env.engine.ValidateToken(ctx, token); err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if _, err := env.engine.ValidateToken(ctx, "garbage"); err == nil {
		t.Fatal("expected garbage token to fail")
	}

	snap := env.engine.MetricsSnapshot()
	if got := snap.Counters[MetricValidateSuccess]; got != 1 {
		t.Errorf("validate successes = %d, want 1", got)
	}
	if got := snap.Counters[MetricValidateFailure]; got != 1 {
		t.Errorf("validate failures = %d, want 1", got)
	}
}
