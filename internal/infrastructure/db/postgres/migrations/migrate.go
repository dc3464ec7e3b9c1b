// Package migrations owns the users schema. SQL files are embedded so the
// binary can bring an empty database up to date at startup.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

//go:embed *.sql
var schema embed.FS

// Migrate applies every pending migration and logs each one it ran.
// Already-applied versions are skipped, so calling it on every start is safe.
func Migrate(ctx context.Context, db *sql.DB, log zerolog.Logger) error {
	provider, err := goose.NewProvider(goose.DialectPostgres, db, schema)
	if err != nil {
		return fmt.Errorf("users schema: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("users schema up: %w", err)
	}

	for _, r := range results {
		log.Info().
			Int64("version", r.Source.Version).
			Str("file", r.Source.Path).
			Dur("took", r.Duration).
			Msg("migration applied")
	}
	if len(results) == 0 {
		log.Debug().Msg("users schema up to date")
	}
	return nil
}
