package service

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/99minutos/users-service/internal/core/domain"
)

func TestNewTokenService_EmptySecret(t *testing.T) {
	if _, err := NewTokenService(""); !errors.Is(err, domain.ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret, got %v", err)
	}
}

func TestTokenService_IssueEmbedsClaims(t *testing.T) {
	svc, _ := NewTokenService("secret")
	fixed := time.Unix(1_700_000_000, 0)
	svc.now = func() time.Time { return fixed }

	raw, err := svc.Issue("a@b.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if parsed.Method.Alg() != "HS256" {
		t.Fatalf("expected HS256, got %s", parsed.Method.Alg())
	}
	if claims["email"] != "a@b.com" {
		t.Fatalf("unexpected email claim: %v", claims["email"])
	}
	if iat, _ := claims["iat"].(float64); int64(iat) != fixed.Unix() {
		t.Fatalf("expected iat %d, got %v", fixed.Unix(), claims["iat"])
	}
}

func TestTokenService_IssueIsDeterministicForSameInstant(t *testing.T) {
	svc, _ := NewTokenService("secret")
	fixed := time.Unix(1_700_000_000, 0)
	svc.now = func() time.Time { return fixed }

	a, _ := svc.Issue("a@b.com")
	b, _ := svc.Issue("a@b.com")
	if a != b {
		t.Fatalf("expected identical tokens for identical inputs")
	}
}

func TestTokenService_VerifyRoundTrip(t *testing.T) {
	svc, _ := NewTokenService("secret")
	raw, _ := svc.Issue("a@b.com")

	email, err := svc.Verify(raw)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if email != "a@b.com" {
		t.Fatalf("expected a@b.com, got %s", email)
	}
}

func TestTokenService_VerifyRejectsForeignSecret(t *testing.T) {
	issuer, _ := NewTokenService("other-secret")
	verifier, _ := NewTokenService("secret")
	raw, _ := issuer.Issue("a@b.com")

	if _, err := verifier.Verify(raw); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenService_VerifyRejectsTamperedPayload(t *testing.T) {
	svc, _ := NewTokenService("secret")
	raw, _ := svc.Issue("a@b.com")

	parts := strings.Split(raw, ".")
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(`{"email":"admin@b.com","iat":1700000000}`))
	tampered := strings.Join(parts, ".")

	if _, err := svc.Verify(tampered); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenService_VerifyRejectsOtherAlgorithms(t *testing.T) {
	svc, _ := NewTokenService("secret")
	tkn := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{"email": "a@b.com"})
	raw, err := tkn.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := svc.Verify(raw); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenService_VerifyRequiresEmailClaim(t *testing.T) {
	svc, _ := NewTokenService("secret")
	tkn := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"iat": time.Now().Unix()})
	raw, _ := tkn.SignedString([]byte("secret"))

	if _, err := svc.Verify(raw); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenService_VerifyRejectsGarbage(t *testing.T) {
	svc, _ := NewTokenService("secret")
	if _, err := svc.Verify("not-a-token"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
