package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/jobhub/jobboard/internal/core/domain"
	"github.com/jobhub/jobboard/internal/core/ports"
	"github.com/jobhub/jobboard/internal/core/token"
)

type stubAccountRepo struct {
	accounts map[string]*domain.Account
	seq      int
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{accounts: make(map[string]*domain.Account)}
}

func cloneAccount(a *domain.Account) *domain.Account {
	if a == nil {
		return nil
	}
	clone := *a
	return &clone
}

func (r *stubAccountRepo) Create(_ context.Context, account *domain.Account) (*domain.Account, error) {
	for _, a := range r.accounts {
		if a.Email == account.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.seq++
	stored := cloneAccount(account)
	if stored.ID == "" {
		stored.ID = fmt.Sprintf("acc-%d", r.seq)
	}
	r.accounts[stored.ID] = stored
	return cloneAccount(stored), nil
}

func (r *stubAccountRepo) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	for _, a := range r.accounts {
		if a.Email == email {
			return cloneAccount(a), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubAccountRepo) FindByID(_ context.Context, id string) (*domain.Account, error) {
	if a, ok := r.accounts[id]; ok {
		return cloneAccount(a), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubAccountRepo) SetActive(_ context.Context, id string, active bool) error {
	a, ok := r.accounts[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	a.Active = active
	return nil
}

func (r *stubAccountRepo) MarkVerified(_ context.Context, id string) error {
	a, ok := r.accounts[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	a.Verified = true
	return nil
}

type stubOTP struct {
	codes map[string]string
}

func newStubOTP() *stubOTP {
	return &stubOTP{codes: make(map[string]string)}
}

func (o *stubOTP) Issue(_ context.Context, email, code string) error {
	o.codes[email] = code
	return nil
}

func (o *stubOTP) Consume(_ context.Context, email, code string) (bool, error) {
	if o.codes[email] != code || code == "" {
		return false, nil
	}
	delete(o.codes, email)
	return true, nil
}

func newAccountFixture() (*AccountService, *stubAccountRepo, *stubOTP) {
	repo := newStubAccountRepo()
	otp := newStubOTP()
	return NewAccountService(repo, otp, "secret", time.Hour, zerolog.Nop()), repo, otp
}

func TestAccountService_Register_HashesAndIssuesCode(t *testing.T) {
	svc, _, otp := newAccountFixture()

	account, err := svc.Register(context.Background(), ports.RegisterInput{
		FullName: "Trần Bình",
		Email:    " Binh@Example.com ",
		Password: "pass123",
		Role:     "role_employer",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if account.Email != "binh@example.com" {
		t.Fatalf("email not normalized: %q", account.Email)
	}
	if account.Role != domain.RoleEmployer {
		t.Fatalf("unexpected role %s", account.Role)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte("pass123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if account.Verified {
		t.Fatalf("new accounts start unverified")
	}
	if len(otp.codes["binh@example.com"]) != 6 {
		t.Fatalf("expected a six-digit code, got %q", otp.codes["binh@example.com"])
	}
}

func TestAccountService_Register_RejectsAdminAndDuplicates(t *testing.T) {
	svc, _, _ := newAccountFixture()
	ctx := context.Background()

	if _, err := svc.Register(ctx, ports.RegisterInput{Email: "x@x.io", Password: "p", Role: domain.RoleAdmin}); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for ADMIN sign-up, got %v", err)
	}
	if _, err := svc.Register(ctx, ports.RegisterInput{Email: "x@x.io", Password: "p", Role: domain.RoleUser}); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if _, err := svc.Register(ctx, ports.RegisterInput{Email: "x@x.io", Password: "p", Role: domain.RoleUser}); err != domain.ErrUserExists {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAccountService_Login_UnverifiedThenVerify(t *testing.T) {
	svc, _, otp := newAccountFixture()
	ctx := context.Background()
	if _, err := svc.Register(ctx, ports.RegisterInput{Email: "u@x.io", Password: "pw", Role: domain.RoleUser}); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if _, _, err := svc.Login(ctx, domain.NamespaceStandard, "u@x.io", "pw"); !errors.Is(err, domain.ErrNotVerified) {
		t.Fatalf("expected ErrNotVerified, got %v", err)
	}
	if _, _, err := svc.Verify(ctx, domain.NamespaceStandard, "u@x.io", "000000x"); err != domain.ErrInvalidOTP {
		t.Fatalf("expected ErrInvalidOTP, got %v", err)
	}

	tok, account, err := svc.Verify(ctx, domain.NamespaceStandard, "u@x.io", otp.codes["u@x.io"])
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if !account.Verified {
		t.Fatalf("account must be verified")
	}
	claims, err := token.Decode(tok)
	if err != nil {
		t.Fatalf("decode issued token: %v", err)
	}
	if claims.Format != domain.FormatStandard || claims.Subject != account.ID || claims.Email != "u@x.io" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if claims.ExpiresAt == nil || claims.ExpiresAt.Before(time.Now()) {
		t.Fatalf("expected a future expiry, got %v", claims.ExpiresAt)
	}

	if _, _, err := svc.Login(ctx, domain.NamespaceStandard, "u@x.io", "pw"); err != nil {
		t.Fatalf("Login after verification returned error: %v", err)
	}
}

func TestAccountService_Login_WrongPassword(t *testing.T) {
	svc, _, _ := newAccountFixture()
	ctx := context.Background()
	if err := svc.SeedAdmin(ctx, "root@x.io", "secret"); err != nil {
		t.Fatalf("SeedAdmin returned error: %v", err)
	}

	if _, _, err := svc.Login(ctx, domain.NamespaceAdmin, "root@x.io", "nope"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login(ctx, domain.NamespaceAdmin, "ghost@x.io", "nope"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestAccountService_AdminRealm(t *testing.T) {
	svc, _, otp := newAccountFixture()
	ctx := context.Background()
	if err := svc.SeedAdmin(ctx, "root@x.io", "secret"); err != nil {
		t.Fatalf("SeedAdmin returned error: %v", err)
	}
	// Seeding twice is a no-op.
	if err := svc.SeedAdmin(ctx, "root@x.io", "secret"); err != nil {
		t.Fatalf("second SeedAdmin returned error: %v", err)
	}

	tok, account, err := svc.Login(ctx, domain.NamespaceAdmin, "root@x.io", "secret")
	if err != nil {
		t.Fatalf("admin Login returned error: %v", err)
	}
	if tok != "" {
		t.Fatalf("admin realm must not mint a token")
	}
	if account.Role != domain.RoleAdmin {
		t.Fatalf("unexpected role %s", account.Role)
	}

	if _, err := svc.Register(ctx, ports.RegisterInput{Email: "e@x.io", Password: "pw", Role: domain.RoleEmployer}); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if _, _, err := svc.Verify(ctx, domain.NamespaceStandard, "e@x.io", otp.codes["e@x.io"]); err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if _, _, err := svc.Login(ctx, domain.NamespaceAdmin, "e@x.io", "pw"); err != domain.ErrForbidden {
		t.Fatalf("expected ErrForbidden for employer on admin realm, got %v", err)
	}
}

func TestAccountService_SetActive(t *testing.T) {
	svc, repo, _ := newAccountFixture()
	ctx := context.Background()
	account, err := svc.Register(ctx, ports.RegisterInput{Email: "u@x.io", Password: "pw", Role: domain.RoleUser})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if err := svc.SetActive(ctx, account.ID, true); err != nil {
		t.Fatalf("SetActive returned error: %v", err)
	}
	if !repo.accounts[account.ID].Active {
		t.Fatalf("account not marked active")
	}
	if err := svc.SetActive(ctx, "missing", true); err != domain.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
