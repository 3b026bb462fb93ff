package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/jobhub/jobboard/internal/core/domain"
	"github.com/jobhub/jobboard/internal/core/ports"
	"github.com/jobhub/jobboard/internal/metrics"
)

// AccountService implements the development backend's auth endpoints:
// registration with OTP verification, per-realm login and the active flag.
// Standard-realm logins receive a signed token; admin-realm logins receive
// only the identity and the client mints its own lightweight token.
type AccountService struct {
	repo      ports.AccountRepository
	otp       ports.OTPStore
	jwtSecret string
	tokenTTL  time.Duration
	log       zerolog.Logger
}

func NewAccountService(repo ports.AccountRepository, otp ports.OTPStore, jwtSecret string, tokenTTL time.Duration, log zerolog.Logger) *AccountService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AccountService{repo: repo, otp: otp, jwtSecret: jwtSecret, tokenTTL: tokenTTL, log: log}
}

// Register creates an unverified USER or EMPLOYER account and issues a code.
func (s *AccountService) Register(ctx context.Context, in ports.RegisterInput) (*domain.Account, error) {
	email := normalizeEmail(in.Email)
	role := domain.CanonicalRole(string(in.Role))
	if email == "" || in.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if role != domain.RoleUser && role != domain.RoleEmployer {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.Account{
		Identity: domain.Identity{
			FullName: in.FullName,
			Email:    email,
			Role:     role,
		},
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	if err := s.issueOTP(ctx, email); err != nil {
		return nil, err
	}
	return created, nil
}

// SeedAdmin creates a verified ADMIN account unless the email is taken.
func (s *AccountService) SeedAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return fmt.Errorf("seed admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	_, err = s.repo.Create(ctx, &domain.Account{
		Identity: domain.Identity{
			Username: strings.SplitN(email, "@", 2)[0],
			Email:    email,
			Role:     domain.RoleAdmin,
			Active:   true,
		},
		PasswordHash: string(hash),
		Verified:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil && !errors.Is(err, domain.ErrUserExists) {
		return fmt.Errorf("seed admin: %w", err)
	}
	return nil
}

// Login checks the password and returns a token (standard realm only) and
// the account. Unverified accounts get a fresh code and ErrNotVerified.
func (s *AccountService) Login(ctx context.Context, realm domain.Namespace, email, password string) (string, *domain.Account, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}
	if err := checkRealm(realm, account); err != nil {
		return "", nil, err
	}
	if !account.Verified {
		if err := s.issueOTP(ctx, email); err != nil {
			return "", nil, err
		}
		return "", nil, domain.ErrNotVerified
	}

	return s.grant(realm, account)
}

// Verify consumes a code, marks the account verified and logs it in.
func (s *AccountService) Verify(ctx context.Context, realm domain.Namespace, email, code string) (string, *domain.Account, error) {
	email = normalizeEmail(email)
	ok, err := s.otp.Consume(ctx, email, strings.TrimSpace(code))
	if err != nil {
		return "", nil, fmt.Errorf("verify otp: %w", err)
	}
	if !ok {
		return "", nil, domain.ErrInvalidOTP
	}

	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if err := checkRealm(realm, account); err != nil {
		return "", nil, err
	}
	if !account.Verified {
		if err := s.repo.MarkVerified(ctx, account.ID); err != nil {
			return "", nil, err
		}
		account.Verified = true
	}

	return s.grant(realm, account)
}

// Resend issues a new code for an existing account.
func (s *AccountService) Resend(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if _, err := s.repo.FindByEmail(ctx, email); err != nil {
		return err
	}
	return s.issueOTP(ctx, email)
}

// SetActive toggles the account's active flag.
func (s *AccountService) SetActive(ctx context.Context, id string, active bool) error {
	return s.repo.SetActive(ctx, id, active)
}

func (s *AccountService) grant(realm domain.Namespace, account *domain.Account) (string, *domain.Account, error) {
	if realm == domain.NamespaceAdmin {
		return "", account, nil
	}
	tok, err := s.generateToken(account)
	if err != nil {
		return "", nil, err
	}
	return tok, account, nil
}

func (s *AccountService) generateToken(account *domain.Account) (string, error) {
	claims := jwt.MapClaims{
		"sub":   account.ID,
		"email": account.Email,
		"role":  string(account.Role),
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(s.tokenTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

func (s *AccountService) issueOTP(ctx context.Context, email string) error {
	code, err := generateOTP()
	if err != nil {
		return err
	}
	if err := s.otp.Issue(ctx, email, code); err != nil {
		return fmt.Errorf("issue otp: %w", err)
	}
	metrics.OTPIssuedTotal.Inc()
	// No mail transport in the dev backend: the code goes to the log.
	s.log.Info().Str("email", email).Str("otp", code).Msg("verification code issued")
	return nil
}

func checkRealm(realm domain.Namespace, account *domain.Account) error {
	if realm == domain.NamespaceAdmin && account.Role != domain.RoleAdmin {
		return domain.ErrForbidden
	}
	return nil
}

// generateOTP returns a uniformly distributed six-digit code.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
