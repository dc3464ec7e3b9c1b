package ports

import (
	"context"

	"github.com/99minutos/users-service/internal/core/domain"
)

// UserService covers the account use cases exposed under /users.
type UserService interface {
	// Login returns a signed bearer token. Unknown email and wrong password
	// both yield domain.ErrInvalidCredentials.
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, email, password string) (*domain.User, error)
	Info(ctx context.Context, email string) (*domain.User, error)
}
