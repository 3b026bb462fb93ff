package domain

import "time"

// TokenFormat tags the two session token variants.
type TokenFormat int

const (
	FormatUnknown TokenFormat = iota
	// FormatStandard is the three-segment signed token minted by the backend.
	FormatStandard
	// FormatLightweight is the base64 JSON envelope synthesized on the client.
	FormatLightweight
)

func (f TokenFormat) String() string {
	switch f {
	case FormatStandard:
		return "standard"
	case FormatLightweight:
		return "lightweight"
	}
	return "unknown"
}

// Claims is the decoded content of either token format.
type Claims struct {
	Format TokenFormat

	// Standard format.
	Subject   string
	ExpiresAt *time.Time

	// Lightweight format.
	ID       string
	Username string
	IssuedAt time.Time

	// Both.
	Email string
	Role  Role
}

// PrincipalID returns the subject for standard tokens and the id otherwise.
func (c Claims) PrincipalID() string {
	if c.Format == FormatStandard {
		return c.Subject
	}
	return c.ID
}
