// Package migrate runs database migrations using Goose.
package migrate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pressly/goose/v3"
	"github.com/uptrace/bun"
	"go.uber.org/fx"

	"github.com/ontoforge/ontology-core/migrations"
	"github.com/ontoforge/ontology-core/pkg/logger"
)

// Module provides the migrator and runs pending migrations at startup.
var Module = fx.Module("migrate",
	fx.Provide(NewMigrator),
	fx.Invoke(func(lc fx.Lifecycle, m *Migrator) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				return m.Up(ctx)
			},
		})
	}),
)

// Migrator handles database migrations.
type Migrator struct {
	db  *bun.DB
	log *slog.Logger
}

// NewMigrator creates a new Migrator instance.
func NewMigrator(db *bun.DB, log *slog.Logger) *Migrator {
	return &Migrator{
		db:  db,
		log: log.With(logger.Scope("migrate")),
	}
}

// Up runs all pending migrations.
func (m *Migrator) Up(ctx context.Context) error {
	m.log.Info("running database migrations")

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, m.db.DB, "."); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	m.log.Info("migrations completed")
	return nil
}

// Down rolls back the most recent migration.
func (m *Migrator) Down(ctx context.Context) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	return goose.DownContext(ctx, m.db.DB, ".")
}
