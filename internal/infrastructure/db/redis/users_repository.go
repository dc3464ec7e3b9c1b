package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/99minutos/users-service/internal/core/domain"
)

// UsersRepository stores each account as a JSON value under
// users:email:<email>. SETNX makes the first writer for an email win.
type UsersRepository struct {
	client *redis.Client
}

func NewUsersRepository(client *redis.Client) *UsersRepository {
	return &UsersRepository{client: client}
}

type redisUser struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
	CreatedAt    int64  `json:"created_at"`
}

func (r *UsersRepository) Create(ctx context.Context, email, passwordHash string) (*domain.User, error) {
	now := time.Now().UTC()
	doc := redisUser{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now.Unix(),
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode user: %w", err)
	}

	ok, err := r.client.SetNX(ctx, userKey(email), payload, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	if !ok {
		return nil, domain.ErrUserExists
	}

	return doc.toDomain(), nil
}

func (r *UsersRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	payload, err := r.client.Get(ctx, userKey(email)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	var doc redisUser
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UsersRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (u redisUser) toDomain() *domain.User {
	return &domain.User{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    time.Unix(u.CreatedAt, 0).UTC(),
	}
}

func userKey(email string) string {
	return "users:email:" + email
}
