package directory

import (
	"context"
	"testing"

	"github.com/orbitlms/authgate"
)

func TestMemoryLookupByUsernameAndEmail(t *testing.T) {
	dir := NewMemory()
	dir.Put(authgate.Identity{
		ID:       7,
		Username: "Alice",
		Email:    "Alice@Example.com",
		Roles:    []string{authgate.RoleStudent},
		Enabled:  true,
	})

	ctx := context.Background()
	for _, identifier := range []string{"alice", "ALICE", "alice@example.com", "Alice@Example.com"} {
		identity, err := dir.FindByUsernameOrEmail(ctx, identifier)
		if err != nil {
			t.Fatalf("lookup %q failed: %v", identifier, err)
		}
		if identity == nil {
			t.Fatalf("lookup %q found nothing", identifier)
		}
		if identity.ID != 7 {
			t.Errorf("lookup %q returned id %d", identifier, identity.ID)
		}
	}
}

func TestMemoryUnknownIdentifier(t *testing.T) {
	dir := NewMemory()

	identity, err := dir.FindByUsernameOrEmail(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if identity != nil {
		t.Errorf("expected (nil, nil) for unknown identifier, got %+v", identity)
	}
}

func TestMemorySetFlags(t *testing.T) {
	dir := NewMemory()
	dir.Put(authgate.Identity{
		ID:       7,
		Username: "alice",
		Email:    "alice@example.com",
		Enabled:  true,
	})

	dir.SetFlags("alice", false, true)

	identity, err := dir.FindByUsernameOrEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if identity == nil {
		t.Fatal("identity vanished after SetFlags")
	}
	if identity.Enabled || !identity.Locked {
		t.Errorf("flags = enabled=%v locked=%v, want disabled and locked", identity.Enabled, identity.Locked)
	}
}

func TestMemoryReturnsCopies(t *testing.T) {
	dir := NewMemory()
	dir.Put(authgate.Identity{ID: 7, Username: "alice", Enabled: true})

	first, err := dir.FindByUsernameOrEmail(context.Background(), "alice")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	first.Enabled = false

	second, err := dir.FindByUsernameOrEmail(context.Background(), "alice")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if !second.Enabled {
		t.Error("mutating a returned identity must not affect the store")
	}
}
