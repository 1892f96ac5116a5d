package directory

import (
	"context"
	"strings"
	"sync"

	"github.com/orbitlms/authgate"
)

var _ authgate.IdentityDirectory = (*Memory)(nil)

// Memory is an in-memory IdentityDirectory for tests and examples. Safe
// for concurrent use.
type Memory struct {
	mu         sync.RWMutex
	byUsername map[string]authgate.Identity
	byEmail    map[string]authgate.Identity
}

// NewMemory returns an empty in-memory directory.
func NewMemory() *Memory {
	return &Memory{
		byUsername: make(map[string]authgate.Identity),
		byEmail:    make(map[string]authgate.Identity),
	}
}

// Put stores or replaces an identity, indexed by username and email.
func (m *Memory) Put(identity authgate.Identity) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.byUsername[strings.ToLower(identity.Username)] = identity
	if identity.Email != "" {
		m.byEmail[strings.ToLower(identity.Email)] = identity
	}
}

// SetFlags updates the enabled/locked flags of a stored identity.
func (m *Memory) SetFlags(username string, enabled, locked bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	identity, ok := m.byUsername[strings.ToLower(username)]
	if !ok {
		return
	}
	identity.Enabled = enabled
	identity.Locked = locked
	m.byUsername[strings.ToLower(identity.Username)] = identity
	if identity.Email != "" {
		m.byEmail[strings.ToLower(identity.Email)] = identity
	}
}

// FindByUsernameOrEmail implements [authgate.IdentityDirectory].
func (m *Memory) FindByUsernameOrEmail(_ context.Context, identifier string) (*authgate.Identity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	key := strings.ToLower(identifier)
	if identity, ok := m.byUsername[key]; ok {
		out := identity
		return &out, nil
	}
	if identity, ok := m.byEmail[key]; ok {
		out := identity
		return &out, nil
	}
	return nil, nil
}
