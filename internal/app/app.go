// Package app wires configuration, storage, services and the HTTP router
// into a runnable server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/99minutos/users-service/internal/api"
	"github.com/99minutos/users-service/internal/api/handler"
	"github.com/99minutos/users-service/internal/core/ports"
	"github.com/99minutos/users-service/internal/core/service"
	"github.com/99minutos/users-service/internal/infrastructure/db/memory"
	mongodb "github.com/99minutos/users-service/internal/infrastructure/db/mongo"
	"github.com/99minutos/users-service/internal/infrastructure/db/postgres"
	"github.com/99minutos/users-service/internal/infrastructure/db/postgres/migrations"
	redisdb "github.com/99minutos/users-service/internal/infrastructure/db/redis"
	"github.com/99minutos/users-service/internal/pkg/config"
)

// App is a fully wired users service.
type App struct {
	cfg     *config.Config
	log     zerolog.Logger
	echo    *echo.Echo
	closers []func(context.Context) error
}

// Option customises New.
type Option func(*options)

type options struct {
	registry *prometheus.Registry
}

// WithRegistry sends HTTP metrics to r instead of the default registry.
func WithRegistry(r *prometheus.Registry) Option {
	return func(o *options) { o.registry = r }
}

// New builds every collaborator. A missing signing secret or an unreachable
// storage backend is returned as an error and must stop startup.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	tokens, err := service.NewTokenService(cfg.JWTSecret)
	if err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, log: log}

	repo, err := a.openStorage(ctx)
	if err != nil {
		return nil, err
	}

	users := service.NewUserService(repo, service.NewBcryptHasher(cfg.BcryptCost), tokens, log)

	a.echo = api.NewRouter(api.Deps{
		Users:    users,
		Verifier: tokens,
		Checks:   map[string]handler.Check{"storage": repo.Ping},
		Log:      log,
		Registry: o.registry,
	})

	return a, nil
}

// Handler exposes the router, mostly for tests.
func (a *App) Handler() http.Handler {
	return a.echo
}

func (a *App) openStorage(ctx context.Context) (ports.UsersRepository, error) {
	switch a.cfg.Storage {
	case config.StorageMongo:
		client, db, err := mongodb.Connect(ctx, mongodb.Config{
			URI:      a.cfg.Mongo.URI,
			Database: a.cfg.Mongo.Database,
			AppName:  "users-service",
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Disconnect)

		repo := mongodb.NewUsersRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			a.close(ctx)
			return nil, fmt.Errorf("mongo indexes: %w", err)
		}
		return repo, nil

	case config.StoragePostgres:
		db, err := postgres.Connect(ctx, postgres.Config{DSN: a.cfg.Postgres.DSN})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return db.Close() })

		if err := migrations.Migrate(ctx, db, a.log); err != nil {
			a.close(ctx)
			return nil, err
		}
		return postgres.NewUsersRepository(db), nil

	case config.StorageRedis:
		client, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     a.cfg.Redis.Addr,
			Password: a.cfg.Redis.Password,
			DB:       a.cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return client.Close() })
		return redisdb.NewUsersRepository(client), nil

	case config.StorageMemory:
		return memory.NewUsersRepository(), nil
	}

	return nil, fmt.Errorf("app: unknown storage %q", a.cfg.Storage)
}

// Run serves HTTP until ctx is cancelled, then drains in-flight requests
// within the configured shutdown timeout and releases storage.
func (a *App) Run(ctx context.Context) error {
	addr := ":" + a.cfg.Port

	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("port", a.cfg.Port).Str("storage", a.cfg.Storage).Msg("server running on port")
		if err := a.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		a.close(context.Background())
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	a.log.Info().Msg("shutting down server")

	timeout := a.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := a.echo.Shutdown(shutdownCtx)
	a.close(shutdownCtx)
	if err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}

	a.log.Info().Msg("server stopped gracefully")
	return nil
}

func (a *App) close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.log.Warn().Err(err).Msg("closing storage")
		}
	}
	a.closers = nil
}
