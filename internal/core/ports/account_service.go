package ports

import (
	"context"

	"github.com/jobhub/jobboard/internal/core/domain"
)

// AccountService is the development backend's auth use-case surface.
type AccountService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.Account, error)
	Login(ctx context.Context, realm domain.Namespace, email, password string) (string, *domain.Account, error)
	Verify(ctx context.Context, realm domain.Namespace, email, code string) (string, *domain.Account, error)
	Resend(ctx context.Context, email string) error
	SetActive(ctx context.Context, id string, active bool) error
}
