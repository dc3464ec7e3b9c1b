package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/users-service/internal/core/domain"
)

type stubUsersRepo struct {
	users     map[string]*domain.User
	findErr   error
	createErr error
	creates   int
}

func newStubUsersRepo() *stubUsersRepo {
	return &stubUsersRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUsersRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.users[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUsersRepo) Create(_ context.Context, email, passwordHash string) (*domain.User, error) {
	r.creates++
	if r.createErr != nil {
		return nil, r.createErr
	}
	if _, exists := r.users[email]; exists {
		return nil, domain.ErrUserExists
	}
	u := &domain.User{ID: fmt.Sprintf("id-%d", len(r.users)+1), Email: email, PasswordHash: passwordHash}
	r.users[email] = cloneUser(u)
	return cloneUser(u), nil
}

func (r *stubUsersRepo) Ping(context.Context) error { return nil }

func newTestUserService(t *testing.T, repo *stubUsersRepo) (*UserService, *TokenService) {
	t.Helper()
	tokens, err := NewTokenService("secret")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return NewUserService(repo, NewBcryptHasher(bcrypt.MinCost), tokens, zerolog.Nop()), tokens
}

func TestUserService_Register_Success(t *testing.T) {
	repo := newStubUsersRepo()
	svc, _ := newTestUserService(t, repo)

	user, err := svc.Register(context.Background(), "alice@example.com", "pass123")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("unexpected email: %s", user.Email)
	}
	if user.ID == "" {
		t.Fatalf("expected non-empty id")
	}
	if user.PasswordHash == "pass123" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pass123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestUserService_Register_ThenLogin(t *testing.T) {
	repo := newStubUsersRepo()
	svc, tokens := newTestUserService(t, repo)

	if _, err := svc.Register(context.Background(), "carol@example.com", "s3cret"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	token, err := svc.Login(context.Background(), "carol@example.com", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	email, err := tokens.Verify(token)
	if err != nil {
		t.Fatalf("token invalid: %v", err)
	}
	if email != "carol@example.com" {
		t.Fatalf("expected email claim carol@example.com, got %s", email)
	}
}

func TestUserService_Register_Duplicate(t *testing.T) {
	repo := newStubUsersRepo()
	svc, _ := newTestUserService(t, repo)

	first, err := svc.Register(context.Background(), "bob@example.com", "pass")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, err := svc.Register(context.Background(), "bob@example.com", "pass2"); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
	if repo.creates != 1 {
		t.Fatalf("expected a single Create call, got %d", repo.creates)
	}
	stored := repo.users["bob@example.com"]
	if stored.ID != first.ID || stored.PasswordHash != first.PasswordHash {
		t.Fatalf("existing identity was modified: %+v", stored)
	}
}

func TestUserService_Register_RaceSurfacesAsConflict(t *testing.T) {
	repo := newStubUsersRepo()
	repo.createErr = fmt.Errorf("insert user: %w", domain.ErrUserExists)
	svc, _ := newTestUserService(t, repo)

	if _, err := svc.Register(context.Background(), "eve@example.com", "pass"); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestUserService_Register_RepositoryFailure(t *testing.T) {
	repo := newStubUsersRepo()
	repo.findErr = errors.New("connection refused")
	svc, _ := newTestUserService(t, repo)

	_, err := svc.Register(context.Background(), "eve@example.com", "pass")
	if err == nil || errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected wrapped repository error, got %v", err)
	}
}

func TestUserService_Login_RejectionsAreIndistinguishable(t *testing.T) {
	repo := newStubUsersRepo()
	svc, _ := newTestUserService(t, repo)

	_, _ = svc.Register(context.Background(), "dave@example.com", "goodpass")

	_, wrongPassword := svc.Login(context.Background(), "dave@example.com", "badpass")
	_, unknownEmail := svc.Login(context.Background(), "ghost@example.com", "goodpass")

	if !errors.Is(wrongPassword, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", wrongPassword)
	}
	if !errors.Is(unknownEmail, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", unknownEmail)
	}
	if wrongPassword.Error() != unknownEmail.Error() {
		t.Fatalf("rejections differ: %q vs %q", wrongPassword, unknownEmail)
	}
}

func TestUserService_Login_RepositoryFailure(t *testing.T) {
	repo := newStubUsersRepo()
	repo.findErr = errors.New("timeout")
	svc, _ := newTestUserService(t, repo)

	_, err := svc.Login(context.Background(), "dave@example.com", "pass")
	if err == nil || errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestUserService_Info(t *testing.T) {
	repo := newStubUsersRepo()
	svc, _ := newTestUserService(t, repo)

	created, _ := svc.Register(context.Background(), "frank@example.com", "pass")

	user, err := svc.Info(context.Background(), "frank@example.com")
	if err != nil {
		t.Fatalf("Info returned error: %v", err)
	}
	if user.ID != created.ID {
		t.Fatalf("expected id %s, got %s", created.ID, user.ID)
	}

	if _, err := svc.Info(context.Background(), "ghost@example.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
