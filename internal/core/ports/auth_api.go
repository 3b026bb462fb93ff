package ports

import (
	"context"

	"github.com/jobhub/jobboard/internal/core/domain"
)

// RegisterInput carries sign-up data for a standard account.
type RegisterInput struct {
	FullName string      `json:"fullName"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Phone    string      `json:"phone,omitempty"`
	Role     domain.Role `json:"role"`
}

// AuthResult is what the backend returns from login and verification.
// Token is empty when the backend does not mint one for the realm.
type AuthResult struct {
	Token    string
	Identity *domain.Identity
	Message  string
}

// AuthAPI is the REST collaborator behind the auth orchestrator. The realm
// selects the standard or admin endpoint family.
type AuthAPI interface {
	Login(ctx context.Context, realm domain.Namespace, email, password string) (*AuthResult, error)
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	VerifyOTP(ctx context.Context, realm domain.Namespace, email, code string) (*AuthResult, error)
	ResendOTP(ctx context.Context, email string) error
	SetActive(ctx context.Context, userID string, active bool) error
}

// CredentialSink receives the bearer token the REST client attaches to
// outgoing requests.
type CredentialSink interface {
	SetToken(token string)
	Clear()
}

// Navigator performs a client-side navigation.
type Navigator interface {
	Navigate(to string, state domain.NavState)
}
