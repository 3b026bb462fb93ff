package ports

import (
	"context"

	"github.com/jobhub/jobboard/internal/core/domain"
)

// AccountRepository persists development-backend accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	SetActive(ctx context.Context, id string, active bool) error
	MarkVerified(ctx context.Context, id string) error
}

// OTPStore keeps one-time verification codes with a TTL.
type OTPStore interface {
	Issue(ctx context.Context, email, code string) error
	// Consume reports whether code matches and deletes it on success.
	Consume(ctx context.Context, email, code string) (bool, error)
}
