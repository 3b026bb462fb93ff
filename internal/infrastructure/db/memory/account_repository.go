// Package memory provides in-process repositories for the development
// backend. They back STORE=memory and the end-to-end tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jobhub/jobboard/internal/core/domain"
)

type AccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]domain.Account
	byEmail  map[string]string
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		accounts: make(map[string]domain.Account),
		byEmail:  make(map[string]string),
	}
}

func (r *AccountRepository) Create(_ context.Context, account *domain.Account) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[account.Email]; exists {
		return nil, domain.ErrUserExists
	}
	stored := *account
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	r.accounts[stored.ID] = stored
	r.byEmail[stored.Email] = stored.ID
	return &stored, nil
}

func (r *AccountRepository) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	a := r.accounts[id]
	return &a, nil
}

func (r *AccountRepository) FindByID(_ context.Context, id string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.accounts[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &a, nil
}

func (r *AccountRepository) SetActive(_ context.Context, id string, active bool) error {
	return r.update(id, func(a *domain.Account) { a.Active = active })
}

func (r *AccountRepository) MarkVerified(_ context.Context, id string) error {
	return r.update(id, func(a *domain.Account) { a.Verified = true })
}

func (r *AccountRepository) update(id string, fn func(*domain.Account)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	fn(&a)
	a.UpdatedAt = time.Now().UTC()
	r.accounts[id] = a
	return nil
}
