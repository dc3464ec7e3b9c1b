package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/99minutos/users-service/internal/core/domain"
)

// Claims is the signed payload of a bearer token: {"email": ..., "iat": ...}.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 bearer tokens. Tokens carry no
// expiry and are never stored server-side; validity depends only on the
// signature and the configured secret.
type TokenService struct {
	secret []byte
	now    func() time.Time
}

// NewTokenService fails with domain.ErrMissingSecret when secret is empty so
// the misconfiguration surfaces at startup rather than on the first login.
func NewTokenService(secret string) (*TokenService, error) {
	if secret == "" {
		return nil, domain.ErrMissingSecret
	}
	return &TokenService{secret: []byte(secret), now: time.Now}, nil
}

func (s *TokenService) Issue(email string) (string, error) {
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(s.now().Truncate(time.Second)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *TokenService) Verify(raw string) (string, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrInvalidToken, err)
	}
	if !tkn.Valid {
		return "", domain.ErrInvalidToken
	}
	if claims.Email == "" {
		return "", fmt.Errorf("%w: %w", domain.ErrInvalidToken, errors.New("missing email claim"))
	}
	return claims.Email, nil
}
