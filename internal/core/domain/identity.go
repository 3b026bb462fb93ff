package domain

import "strings"

// Role is the closed set of principal roles. Guests carry no role at all.
type Role string

const (
	RoleUser     Role = "USER"
	RoleEmployer Role = "EMPLOYER"
	RoleAdmin    Role = "ADMIN"
)

const legacyRolePrefix = "ROLE_"

// CanonicalRole upper-cases a role name and strips the legacy ROLE_ prefix.
// Unknown names are returned in canonical case so they can still be logged.
func CanonicalRole(s string) Role {
	r := strings.ToUpper(strings.TrimSpace(s))
	return Role(strings.TrimPrefix(r, legacyRolePrefix))
}

// Known reports whether r is one of USER, EMPLOYER or ADMIN.
func (r Role) Known() bool {
	switch r {
	case RoleUser, RoleEmployer, RoleAdmin:
		return true
	}
	return false
}

// RoleMatches reports whether a and b name the same known role.
// "EMPLOYER" and "ROLE_EMPLOYER" match; unknown roles never match anything.
func RoleMatches(a, b string) bool {
	ra, rb := CanonicalRole(a), CanonicalRole(b)
	return ra.Known() && ra == rb
}

// Identity is the authenticated principal driving authorization decisions.
type Identity struct {
	ID       string `json:"id"`
	FullName string `json:"fullName,omitempty"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	Active   bool   `json:"active"`
	Avatar   string `json:"avatar,omitempty"`
}

// DisplayName prefers the full name, then the username, then the email.
func (i Identity) DisplayName() string {
	switch {
	case i.FullName != "":
		return i.FullName
	case i.Username != "":
		return i.Username
	}
	return i.Email
}

// Normalize returns a copy with the role in canonical form.
func (i Identity) Normalize() Identity {
	i.Role = CanonicalRole(string(i.Role))
	return i
}

// Merge applies a profile update wholesale. Identifier and role are not
// taken from the update: a role change requires a new login.
func (i Identity) Merge(update Identity) Identity {
	merged := update
	merged.ID = i.ID
	merged.Role = i.Role
	if merged.Email == "" {
		merged.Email = i.Email
	}
	return merged
}
