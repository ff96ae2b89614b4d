package postgres

import (
	"context"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

func init() {
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(gooseLogger{})
}

// Migrate applies pending migrations
func (p *Pool) Migrate(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(p.Pool)
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	return nil
}

// MigrationVersion returns the applied goose version
func (p *Pool) MigrationVersion(ctx context.Context) (int64, error) {
	db := stdlib.OpenDBFromPool(p.Pool)
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		return 0, fmt.Errorf("goose dialect: %w", err)
	}

	v, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return 0, fmt.Errorf("goose version: %w", err)
	}
	return v, nil
}

// gooseLogger routes goose output through zerolog
type gooseLogger struct{}

func (gooseLogger) Fatalf(format string, v ...any) {
	log.Fatal().Msgf(format, v...)
}

func (gooseLogger) Printf(format string, v ...any) {
	log.Info().Str("component", "goose").Msgf(format, v...)
}
