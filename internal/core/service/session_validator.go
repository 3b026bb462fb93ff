package service

import (
	"fmt"
	"time"

	"github.com/jobhub/jobboard/internal/core/domain"
	"github.com/jobhub/jobboard/internal/core/token"
)

// LightweightTTL is the fixed validity window of client-minted tokens.
const LightweightTTL = 24 * time.Hour

// ClaimPolicy decides whether a standard token must name its principal.
type ClaimPolicy int

const (
	// ClaimsStrict rejects standard tokens lacking sub or email.
	ClaimsStrict ClaimPolicy = iota
	// ClaimsLenient accepts any structurally valid standard token.
	ClaimsLenient
)

// SessionValidator decides token liveness and extracts identity claims.
type SessionValidator struct {
	policy ClaimPolicy
	now    func() time.Time
}

func NewSessionValidator(policy ClaimPolicy) *SessionValidator {
	return &SessionValidator{policy: policy, now: time.Now}
}

// WithClock replaces the time source. Intended for tests.
func (v *SessionValidator) WithClock(now func() time.Time) *SessionValidator {
	v.now = now
	return v
}

// Check decodes raw and verifies it is live. Errors are one of
// domain.ErrMalformedToken, domain.ErrMissingClaims or domain.ErrSessionExpired.
func (v *SessionValidator) Check(raw string) (domain.Claims, error) {
	claims, err := token.Decode(raw)
	if err != nil {
		return domain.Claims{}, err
	}

	now := v.now()
	switch claims.Format {
	case domain.FormatStandard:
		if v.policy == ClaimsStrict && (claims.Subject == "" || claims.Email == "") {
			return domain.Claims{}, domain.ErrMissingClaims
		}
		// exp is whole seconds; compare at that resolution.
		if claims.ExpiresAt != nil && claims.ExpiresAt.Unix() <= now.Unix() {
			return domain.Claims{}, fmt.Errorf("%w: expired at %s", domain.ErrSessionExpired, claims.ExpiresAt.UTC().Format(time.RFC3339))
		}
	case domain.FormatLightweight:
		if now.UnixMilli()-claims.IssuedAt.UnixMilli() >= LightweightTTL.Milliseconds() {
			return domain.Claims{}, fmt.Errorf("%w: issued at %s", domain.ErrSessionExpired, claims.IssuedAt.UTC().Format(time.RFC3339))
		}
	default:
		return domain.Claims{}, domain.ErrMalformedToken
	}
	return claims, nil
}

// IsLive reports whether raw is well-formed and inside its validity window.
func (v *SessionValidator) IsLive(raw string) bool {
	_, err := v.Check(raw)
	return err == nil
}

// ExtractIdentity returns the claims of a live token, or an error.
func (v *SessionValidator) ExtractIdentity(raw string) (domain.Claims, error) {
	return v.Check(raw)
}
