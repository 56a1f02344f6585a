package migration

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

var postgresSteps = []migrationStep{
	{
		Name: "create_table_stored_files",
		SQL: `CREATE TABLE IF NOT EXISTS stored_files (
  id           UUID        PRIMARY KEY,
  owner        TEXT        NOT NULL,
  filename     TEXT        NOT NULL,
  content_type TEXT        NOT NULL DEFAULT '',
  size         BIGINT      NOT NULL CHECK (size >= 0),
  storage_path TEXT        NOT NULL,
  uploaded_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_stored_files_owner",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_stored_files_owner ON stored_files (owner, uploaded_at, id);`,
	},
}

// uploaded_at holds Unix nanoseconds so ordering never depends on text formatting.
var sqliteSteps = []migrationStep{
	{
		Name: "create_table_stored_files",
		SQL: `CREATE TABLE IF NOT EXISTS stored_files (
  id           TEXT    PRIMARY KEY,
  owner        TEXT    NOT NULL,
  filename     TEXT    NOT NULL,
  content_type TEXT    NOT NULL DEFAULT '',
  size         INTEGER NOT NULL CHECK (size >= 0),
  storage_path TEXT    NOT NULL,
  uploaded_at  INTEGER NOT NULL
);`,
	},
	{
		Name: "create_index_stored_files_owner",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_stored_files_owner ON stored_files (owner, uploaded_at, id);`,
	},
}

var sentinelQueries = map[string]string{
	"postgres": "SELECT to_regclass('public.stored_files') IS NOT NULL",
	"sqlite":   "SELECT EXISTS (SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = 'stored_files')",
}

var dialectSteps = map[string][]migrationStep{
	"postgres": postgresSteps,
	"sqlite":   sqliteSteps,
}

// EnsureMigrated checks if the 'stored_files' table exists and runs migrations if it doesn't.
// dialect is "postgres" or "sqlite".
func EnsureMigrated(ctx context.Context, db *sql.DB, dialect string, log *slog.Logger) error {
	steps, ok := dialectSteps[dialect]
	if !ok {
		return fmt.Errorf("unsupported migration dialect: %s", dialect)
	}
	log = log.With("component", "database", "dialect", dialect)
	start := time.Now()

	log.Info("db_migration_check", "status", "starting")

	var exists bool
	if err := db.QueryRowContext(ctx, sentinelQueries[dialect]).Scan(&exists); err != nil {
		log.Error("db_migration_failed",
			"status", "error",
			"error_message", fmt.Sprintf("failed to check sentinel table: %v", err),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("db_migration_skip",
			"status", "success",
			"detail", "schema already exists, skipping migration",
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil
	}

	log.Info("db_migration_start", "status", "in_progress")

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				"status", "error",
				"migration_step", step.Name,
				"error_message", err.Error(),
				"duration_ms", time.Since(start).Milliseconds(),
				"step_duration_ms", time.Since(stepStart).Milliseconds(),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Info("db_migration_step",
			"status", "success",
			"migration_step", step.Name,
			"step_duration_ms", time.Since(stepStart).Milliseconds(),
		)
	}

	log.Info("db_migration_success",
		"status", "success",
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
