package authgate

import "context"

// Well-known role codes from the course platform. The Engine treats roles as
// opaque strings; these constants exist so the policy table and the demo
// server agree on spelling.
const (
	RoleAdmin   = "ADMIN"
	RoleTeacher = "TEACHER"
	RoleStudent = "STUDENT"
)

// Identity is the account record returned by an [IdentityDirectory].
// The Engine only reads it: the password hash feeds credential
// verification, Roles feed the issued token and the Principal, and the
// Enabled/Locked flags gate login.
type Identity struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Roles        []string
	Enabled      bool
	Locked       bool
}

// PrimaryRole returns the first role label, or "UNKNOWN" when the identity
// carries none. The primary role is what gets embedded in issued tokens.
func (id Identity) PrimaryRole() string {
	if len(id.Roles) == 0 {
		return "UNKNOWN"
	}
	return id.Roles[0]
}

// HasRole reports whether the identity carries the given role label.
func (id Identity) HasRole(role string) bool {
	for _, r := range id.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IdentityDirectory is the read-only identity store the Engine consults
// during login and principal resolution. Implementations must be safe for
// concurrent use. Lookups that find nothing return (nil, nil); errors are
// reserved for infrastructure failures.
type IdentityDirectory interface {
	FindByUsernameOrEmail(ctx context.Context, identifier string) (*Identity, error)
}

// Principal is the verified identity attached to a single request's
// context by the authentication gate. It lives for one request and is
// never shared across requests or persisted.
type Principal struct {
	Subject string
	UserID  int64
	Roles   []string
}

// HasRole reports whether the principal carries the given role label.
func (p *Principal) HasRole(role string) bool {
	if p == nil {
		return false
	}
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the principal carries at least one of the
// given role labels.
func (p *Principal) HasAnyRole(roles ...string) bool {
	for _, role := range roles {
		if p.HasRole(role) {
			return true
		}
	}
	return false
}
