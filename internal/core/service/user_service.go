package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/99minutos/users-service/internal/core/domain"
	"github.com/99minutos/users-service/internal/core/ports"
)

// UserService implements login, registration and profile lookup.
type UserService struct {
	repo   ports.UsersRepository
	hasher ports.PasswordHasher
	tokens ports.TokenIssuer
	log    zerolog.Logger

	// dummyHash is compared against when the email is unknown so both
	// rejection paths cost one hash comparison.
	dummyHash string
}

func NewUserService(repo ports.UsersRepository, hasher ports.PasswordHasher, tokens ports.TokenIssuer, log zerolog.Logger) *UserService {
	s := &UserService{repo: repo, hasher: hasher, tokens: tokens, log: log}
	if h, err := hasher.Hash("not-a-real-password"); err == nil {
		s.dummyHash = h
	}
	return s
}

func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			_ = s.hasher.Compare(s.dummyHash, password)
			s.log.Info().Str("email", email).Msg("login rejected")
			return "", domain.ErrInvalidCredentials
		}
		return "", fmt.Errorf("login: find user: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			s.log.Info().Str("email", email).Msg("login rejected")
			return "", domain.ErrInvalidCredentials
		}
		return "", fmt.Errorf("login: %w", err)
	}

	token, err := s.tokens.Issue(user.Email)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("login succeeded")
	return token, nil
}

// Register creates an account. It does not log the user in.
func (s *UserService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	_, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, domain.ErrUserExists
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, fmt.Errorf("register: find user: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	// The store still rejects a concurrent duplicate with ErrUserExists.
	user, err := s.repo.Create(ctx, email, hash)
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("register: create user: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("user registered")
	return user, nil
}

func (s *UserService) Info(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("info: find user: %w", err)
	}
	return user, nil
}
