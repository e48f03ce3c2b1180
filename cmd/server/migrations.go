package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/task-manager-api/internal/platform/postgres"
)

// runMigrations executes one goose command against db using the embedded
// migrations.
func runMigrations(ctx context.Context, db *sql.DB, command string, log *slog.Logger) error {
	switch command {
	case postgres.MigrateUp, postgres.MigrateDown, postgres.MigrateStatus, postgres.MigrateVersion:
	default:
		return fmt.Errorf("unknown migration command %q (want up, down, status or version)", command)
	}

	log.Info("Executing migrations", "command", command)
	if err := postgres.Migrate(ctx, db, command, log); err != nil {
		return err
	}
	log.Info("Migrations finished", "command", command)
	return nil
}
