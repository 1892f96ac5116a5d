package authgate

import (
	"strconv"
	"strings"
)

// AccessKind enumerates the required-access variants a route can declare.
type AccessKind uint8

const (
	// AccessPublic allows anonymous requests.
	AccessPublic AccessKind = iota
	// AccessAuthenticated requires any principal.
	AccessAuthenticated
	// AccessRole requires one specific role.
	AccessRole
	// AccessAnyRole requires at least one of a set of roles.
	AccessAnyRole
	// AccessSelfOrRole requires the {id} path segment to match the
	// principal's user ID, or the principal to hold the given role.
	AccessSelfOrRole
)

// Access is the declared access requirement of a route.
type Access struct {
	Kind  AccessKind
	Roles []string
}

// Public allows anonymous access.
func Public() Access { return Access{Kind: AccessPublic} }

// Authenticated requires any verified principal.
func Authenticated() Access { return Access{Kind: AccessAuthenticated} }

// RequiresRole requires the given role.
func RequiresRole(role string) Access {
	return Access{Kind: AccessRole, Roles: []string{role}}
}

// RequiresAnyRole requires at least one of the given roles.
func RequiresAnyRole(roles ...string) Access {
	return Access{Kind: AccessAnyRole, Roles: roles}
}

// RequiresSelfOrRole allows the request when the {id} segment of the
// matched path equals the principal's user ID, or the principal holds the
// given role.
func RequiresSelfOrRole(role string) Access {
	return Access{Kind: AccessSelfOrRole, Roles: []string{role}}
}

// Rule maps one route pattern to its access requirement. Patterns are
// slash-separated with two special segments: "{id}" captures a numeric
// path segment for self checks, "*" as the final segment matches any
// remaining suffix. Method "" matches every method.
type Rule struct {
	Method  string
	Pattern string
	Access  Access
}

// Policy is the ordered, data-driven route policy table. The first
// matching rule decides; unmatched routes fall back to the default access,
// which is Authenticated unless overridden. Policies are composed once at
// startup and read-only afterwards.
type Policy struct {
	rules      []Rule
	defaultAcc Access
}

// NewPolicy builds a policy table from the given rules.
func NewPolicy(rules ...Rule) *Policy {
	return &Policy{
		rules:      rules,
		defaultAcc: Authenticated(),
	}
}

// WithDefault overrides the access applied to unmatched routes.
func (p *Policy) WithDefault(a Access) *Policy {
	p.defaultAcc = a
	return p
}

// Evaluate decides whether the (possibly nil) principal may reach the
// method+path. It is the dedicated authorization step that runs after the
// authentication gate and before the handler.
func (p *Policy) Evaluate(principal *Principal, method, path string) bool {
	access, idSegment := p.match(method, path)

	switch access.Kind {
	case AccessPublic:
		return true
	case AccessAuthenticated:
		return principal != nil
	case AccessRole:
		return principal.HasAnyRole(access.Roles...)
	case AccessAnyRole:
		return principal.HasAnyRole(access.Roles...)
	case AccessSelfOrRole:
		if principal == nil {
			return false
		}
		if principal.HasAnyRole(access.Roles...) {
			return true
		}
		id, err := strconv.ParseInt(idSegment, 10, 64)
		return err == nil && id == principal.UserID
	default:
		return false
	}
}

func (p *Policy) match(method, path string) (Access, string) {
	for _, rule := range p.rules {
		if rule.Method != "" && rule.Method != method {
			continue
		}
		if id, ok := matchPattern(rule.Pattern, path); ok {
			return rule.Access, id
		}
	}
	return p.defaultAcc, ""
}

// matchPattern matches a slash-separated pattern against a concrete path
// and returns the value captured by a "{id}" segment, if any.
func matchPattern(pattern, path string) (string, bool) {
	pSegs := strings.Split(strings.Trim(pattern, "/"), "/")
	segs := strings.Split(strings.Trim(path, "/"), "/")

	var id string
	for i, ps := range pSegs {
		if ps == "*" && i == len(pSegs)-1 {
			return id, true
		}
		if i >= len(segs) {
			return "", false
		}
		switch {
		case ps == "{id}":
			id = segs[i]
		case ps != segs[i]:
			return "", false
		}
	}
	return id, len(pSegs) == len(segs)
}
