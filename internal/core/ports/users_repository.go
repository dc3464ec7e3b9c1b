package ports

import (
	"context"

	"github.com/99minutos/users-service/internal/core/domain"
)

// UsersRepository defines the persistence contract for user accounts.
//
// FindByEmail returns domain.ErrUserNotFound when no account matches.
// Create returns domain.ErrUserExists when the email is already taken; the
// uniqueness check is enforced by the store, not by callers.
type UsersRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, email, passwordHash string) (*domain.User, error)
	Ping(ctx context.Context) error
}
