// Package memory keeps users in process memory. It backs STORAGE=memory for
// local runs and the HTTP tests; data does not survive a restart.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/99minutos/users-service/internal/core/domain"
)

type UsersRepository struct {
	mu      sync.RWMutex
	byEmail map[string]domain.User
}

func NewUsersRepository() *UsersRepository {
	return &UsersRepository{byEmail: make(map[string]domain.User)}
}

func (r *UsersRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *UsersRepository) Create(_ context.Context, email, passwordHash string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[email]; exists {
		return nil, domain.ErrUserExists
	}
	u := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	r.byEmail[email] = u
	return &u, nil
}

func (r *UsersRepository) Ping(context.Context) error { return nil }
