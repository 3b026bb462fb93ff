package token

import (
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jobhub/jobboard/internal/core/domain"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	before := time.Now()
	raw, err := Encode(Envelope{ID: "42", Role: domain.RoleEmployer, Username: "Nguyễn Văn Ánh"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	after := time.Now()

	claims, err := Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if claims.Format != domain.FormatLightweight {
		t.Fatalf("expected lightweight format, got %s", claims.Format)
	}
	if claims.ID != "42" || claims.Role != domain.RoleEmployer {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.Username != "Nguyễn Văn Ánh" {
		t.Fatalf("non-ASCII username mangled: %q", claims.Username)
	}
	if claims.IssuedAt.Before(before.Truncate(time.Millisecond)) || claims.IssuedAt.After(after) {
		t.Fatalf("timestamp %v outside [%v, %v]", claims.IssuedAt, before, after)
	}
}

func TestDecode_FailClosed(t *testing.T) {
	for _, raw := range []string{"not-a-token", "", "a.b", "a.b.c", "   ", "e30="} {
		claims, err := Decode(raw)
		if err == nil {
			t.Errorf("Decode(%q) returned claims %+v, want error", raw, claims)
			continue
		}
		if !errors.Is(err, domain.ErrMalformedToken) {
			t.Errorf("Decode(%q) error %v does not match ErrMalformedToken", raw, err)
		}
	}
}

func TestDecode_LightweightTrailingBytesRejected(t *testing.T) {
	raw := base64.StdEncoding.EncodeToString([]byte(`{"id":"u","timestamp":1}xyz`))
	if claims, err := Decode(raw); !errors.Is(err, domain.ErrMalformedToken) {
		t.Fatalf("Decode returned claims %+v err=%v, want ErrMalformedToken", claims, err)
	}
}

func TestDecode_LightweightNumericID(t *testing.T) {
	raw := base64.StdEncoding.EncodeToString([]byte(`{"id":7,"role":"ROLE_USER","timestamp":1700000000000}`))

	claims, err := Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if claims.ID != "7" {
		t.Fatalf("expected id 7, got %q", claims.ID)
	}
	if claims.Role != domain.RoleUser {
		t.Fatalf("role not canonicalized: %q", claims.Role)
	}
	if claims.IssuedAt.UnixMilli() != 1700000000000 {
		t.Fatalf("unexpected issue time %v", claims.IssuedAt)
	}
}

func TestDecode_Standard(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "u-1",
		"email": "tran@example.com",
		"role":  "ROLE_EMPLOYER",
		"exp":   exp.Unix(),
	}).SignedString([]byte("whatever"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	claims, err := Decode(signed)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if claims.Format != domain.FormatStandard {
		t.Fatalf("expected standard format, got %s", claims.Format)
	}
	if claims.Subject != "u-1" || claims.Email != "tran@example.com" || claims.Role != domain.RoleEmployer {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.Equal(exp) {
		t.Fatalf("unexpected expiry: %v", claims.ExpiresAt)
	}
}

func TestDecode_StandardWithoutExpiry(t *testing.T) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u-2"}).SignedString([]byte("k"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	claims, err := Decode(signed)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if claims.ExpiresAt != nil {
		t.Fatalf("expected no expiry, got %v", claims.ExpiresAt)
	}
}

func TestEncode_RequiresID(t *testing.T) {
	if _, err := Encode(Envelope{Role: domain.RoleAdmin}); err == nil {
		t.Fatalf("expected error for empty id")
	}
}
