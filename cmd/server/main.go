// Package main provides the entry point for the ontology core server.
package main

import (
	"log/slog"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/ontoforge/ontology-core/domain/actions"
	"github.com/ontoforge/ontology-core/domain/audit"
	"github.com/ontoforge/ontology-core/domain/health"
	"github.com/ontoforge/ontology-core/domain/ontology"
	"github.com/ontoforge/ontology-core/domain/permissions"
	"github.com/ontoforge/ontology-core/domain/scheduler"
	"github.com/ontoforge/ontology-core/internal/config"
	"github.com/ontoforge/ontology-core/internal/database"
	"github.com/ontoforge/ontology-core/internal/migrate"
	"github.com/ontoforge/ontology-core/internal/server"
	"github.com/ontoforge/ontology-core/pkg/auth"
	"github.com/ontoforge/ontology-core/pkg/logger"
)

func main() {
	// Load .env if present (local development). Load never overwrites
	// existing vars.
	_ = godotenv.Load(".env")

	fx.New(
		fx.WithLogger(func(log *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: log}
		}),

		// Infrastructure modules
		logger.Module,
		config.Module,
		database.Module,
		migrate.Module,
		server.Module,

		// Auth boundary
		auth.Module,

		// Domain modules
		health.Module,
		ontology.FxModule,
		permissions.Module,
		audit.Module,
		actions.Module,
		scheduler.Module,
	).Run()
}
