package domain

import "time"

// Account is the development backend's stored principal.
type Account struct {
	Identity
	PasswordHash string    `json:"-"`
	Verified     bool      `json:"verified"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Actor is the authenticated caller of a backend operation.
type Actor struct {
	ID   string
	Role Role
}

// CanAccess reports whether the actor may act on resources owned by userID.
func (a Actor) CanAccess(userID string) bool {
	return a.ID == userID || a.Role == RoleAdmin
}
