// Package token decodes and mints the two session token formats.
//
// Standard tokens are three-segment signed tokens minted by the backend; the
// client never verifies their signature, it only reads the payload. Lightweight
// tokens are a base64 JSON envelope {id, role, username, timestamp} synthesized
// on the client when a login response carries no token.
package token

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jobhub/jobboard/internal/core/domain"
)

// DecodeError describes why a token could not be decoded. It always
// matches domain.ErrMalformedToken under errors.Is.
type DecodeError struct {
	Format domain.TokenFormat
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return "decode " + e.Format.String() + " token: " + e.Reason + ": " + e.Err.Error()
	}
	return "decode " + e.Format.String() + " token: " + e.Reason
}

func (e *DecodeError) Unwrap() []error {
	if e.Err != nil {
		return []error{domain.ErrMalformedToken, e.Err}
	}
	return []error{domain.ErrMalformedToken}
}

// DetectFormat classifies a token by segment count alone. A string with a
// segment count other than three is never retried as a standard token.
func DetectFormat(raw string) domain.TokenFormat {
	switch {
	case raw == "":
		return domain.FormatUnknown
	case strings.Count(raw, ".") == 2:
		return domain.FormatStandard
	}
	return domain.FormatLightweight
}

// Decode returns the claims of raw. It never panics; any malformed input
// yields a *DecodeError.
func Decode(raw string) (domain.Claims, error) {
	raw = strings.TrimSpace(raw)
	switch DetectFormat(raw) {
	case domain.FormatStandard:
		return decodeStandard(raw)
	case domain.FormatLightweight:
		return decodeLightweight(raw)
	}
	return domain.Claims{}, &DecodeError{Reason: "empty token"}
}

type standardClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

func decodeStandard(raw string) (domain.Claims, error) {
	var sc standardClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &sc); err != nil {
		return domain.Claims{}, &DecodeError{Format: domain.FormatStandard, Reason: "parse payload", Err: err}
	}

	claims := domain.Claims{
		Format:  domain.FormatStandard,
		Subject: sc.Subject,
		Email:   sc.Email,
		Role:    domain.CanonicalRole(sc.Role),
	}
	if sc.ExpiresAt != nil {
		exp := sc.ExpiresAt.Time
		claims.ExpiresAt = &exp
	}
	return claims, nil
}

// envelope is the lightweight wire form. Identifiers may arrive as JSON
// numbers from older backends, hence the raw id.
type envelope struct {
	ID        json.RawMessage `json:"id"`
	Role      string          `json:"role,omitempty"`
	Username  string          `json:"username,omitempty"`
	Email     string          `json:"email,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

func decodeLightweight(raw string) (domain.Claims, error) {
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(raw)
	}
	if err != nil {
		return domain.Claims{}, &DecodeError{Format: domain.FormatLightweight, Reason: "base64", Err: err}
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return domain.Claims{}, &DecodeError{Format: domain.FormatLightweight, Reason: "json", Err: err}
	}
	if env.Timestamp <= 0 {
		return domain.Claims{}, &DecodeError{Format: domain.FormatLightweight, Reason: "missing timestamp"}
	}

	id, err := rawID(env.ID)
	if err != nil {
		return domain.Claims{}, &DecodeError{Format: domain.FormatLightweight, Reason: "id", Err: err}
	}

	return domain.Claims{
		Format:   domain.FormatLightweight,
		ID:       id,
		Username: env.Username,
		Email:    env.Email,
		Role:     domain.CanonicalRole(env.Role),
		IssuedAt: time.UnixMilli(env.Timestamp),
	}, nil
}

func rawID(msg json.RawMessage) (string, error) {
	if len(msg) == 0 || string(msg) == "null" {
		return "", errors.New("missing")
	}
	if msg[0] == '"' {
		var s string
		if err := json.Unmarshal(msg, &s); err != nil {
			return "", err
		}
		if s == "" {
			return "", errors.New("missing")
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(msg, &n); err != nil {
		return "", err
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return "", err
	}
	return n.String(), nil
}

// Envelope is the input to Encode.
type Envelope struct {
	ID       string
	Role     domain.Role
	Username string
	Email    string
	IssuedAt time.Time
}

// Encode mints a lightweight token. The JSON is UTF-8 encoded before base64
// so non-ASCII names and emails survive. A zero IssuedAt means now.
func Encode(e Envelope) (string, error) {
	if e.ID == "" {
		return "", errors.New("encode token: empty id")
	}
	issued := e.IssuedAt
	if issued.IsZero() {
		issued = time.Now()
	}

	id, err := json.Marshal(e.ID)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(envelope{
		ID:        id,
		Role:      string(e.Role),
		Username:  e.Username,
		Email:     e.Email,
		Timestamp: issued.UnixMilli(),
	})
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}
