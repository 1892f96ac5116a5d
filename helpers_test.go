package authgate

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/orbitlms/authgate/password"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

// mapDirectory is an in-test IdentityDirectory keyed by username or email.
type mapDirectory struct {
	identities map[string]Identity
	lookups    atomic.Int64
	err        error
}

func newMapDirectory() *mapDirectory {
	return &mapDirectory{identities: make(map[string]Identity)}
}

func (d *mapDirectory) put(identity Identity) {
	d.identities[strings.ToLower(identity.Username)] = identity
	if identity.Email != "" {
		d.identities[strings.ToLower(identity.Email)] = identity
	}
}

func (d *mapDirectory) FindByUsernameOrEmail(_ context.Context, identifier string) (*Identity, error) {
	d.lookups.Add(1)
	if d.err != nil {
		return nil, d.err
	}
	identity, ok := d.identities[strings.ToLower(identifier)]
	if !ok {
		return nil, nil
	}
	out := identity
	return &out, nil
}

type testEnv struct {
	engine    *Engine
	redis     *miniredis.Miniredis
	directory *mapDirectory
	sink      *ChannelSink
}

func mustHash(t *testing.T, plain string) string {
	t.Helper()

	hasher, err := password.NewHasher(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewHasher failed: %v", err)
	}
	hash, err := hasher.Hash(plain)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	return hash
}

// newTestEnv builds an engine over miniredis and a map directory seeded
// with one enabled account: alice / correct-horse, role STUDENT.
func newTestEnv(t *testing.T, mutate func(*Config)) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	dir := newMapDirectory()
	dir.put(Identity{
		ID:           7,
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: mustHash(t, "correct-horse"),
		Roles:        []string{RoleStudent},
		Enabled:      true,
	})

	cfg := DefaultConfig()
	cfg.Token.Secret = testSecret
	cfg.Store.OpTimeout = time.Second
	if mutate != nil {
		mutate(&cfg)
	}

	hasher, err := password.NewHasher(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewHasher failed: %v", err)
	}

	sink := NewChannelSink(64)
	engine, err := New().
		WithConfig(cfg).
		WithRedis(client).
		WithDirectory(dir).
		WithAuditSink(sink).
		WithHasher(hasher).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	return &testEnv{engine: engine, redis: mr, directory: dir, sink: sink}
}

// waitForAudit blocks until the sink delivers an event of the given type.
// Delivery is asynchronous, so tests wait instead of polling counters.
func (env *testEnv) waitForAudit(t *testing.T, eventType string) AuditEvent {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-env.sink.Events():
			if ev.EventType == eventType {
				return ev
			}
		case <-deadline:
			t.Fatalf("no %q audit event within deadline", eventType)
		}
	}
}

func mustLoginErr(t *testing.T, env *testEnv, identifier, pass string, want error) {
	t.Helper()

	_, err := env.engine.Login(context.Background(), identifier, pass)
	if !errors.Is(err, want) {
		t.Fatalf("Login(%q) error = %v, want %v", identifier, err, want)
	}
}
