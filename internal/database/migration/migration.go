package migration

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"accidentapi/internal/repository/sqlstore"
)

type migrationStep struct {
	Name string
	SQL  string
}

var sqliteSteps = []migrationStep{
	{
		Name: "create_table_tickets",
		SQL: `CREATE TABLE IF NOT EXISTS tickets (
  id             TEXT      PRIMARY KEY,
  transcript     TEXT      NOT NULL DEFAULT '[]',
  extracted_data TEXT      NOT NULL DEFAULT '{}',
  status         TEXT      NOT NULL DEFAULT 'open',
  phase          TEXT      NOT NULL DEFAULT '',
  created_at     TIMESTAMP NOT NULL,
  updated_at     TIMESTAMP NOT NULL
);`,
	},
	{
		Name: "create_table_attachments",
		SQL: `CREATE TABLE IF NOT EXISTS attachments (
  id          TEXT      PRIMARY KEY,
  ticket_id   TEXT      NOT NULL REFERENCES tickets(id) ON DELETE CASCADE,
  filename    TEXT      NOT NULL,
  url         TEXT      NOT NULL,
  type        TEXT      NOT NULL,
  size        INTEGER   NOT NULL CHECK (size >= 0),
  storage_key TEXT      NOT NULL,
  created_at  TIMESTAMP NOT NULL
);`,
	},
	{
		Name: "create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  username      TEXT      PRIMARY KEY,
  password_hash TEXT      NOT NULL,
  role          TEXT      NOT NULL,
  created_at    TIMESTAMP NOT NULL
);`,
	},
	{
		Name: "create_index_tickets_status",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_tickets_status ON tickets (status);`,
	},
	{
		Name: "create_index_tickets_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_tickets_created_at ON tickets (created_at);`,
	},
	{
		Name: "create_index_attachments_ticket_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_attachments_ticket_id ON attachments (ticket_id);`,
	},
}

var postgresSteps = []migrationStep{
	{
		Name: "create_table_tickets",
		SQL: `CREATE TABLE IF NOT EXISTS tickets (
  id             TEXT        PRIMARY KEY,
  transcript     TEXT        NOT NULL DEFAULT '[]',
  extracted_data TEXT        NOT NULL DEFAULT '{}',
  status         TEXT        NOT NULL DEFAULT 'open',
  phase          TEXT        NOT NULL DEFAULT '',
  created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_attachments",
		SQL: `CREATE TABLE IF NOT EXISTS attachments (
  id          TEXT        PRIMARY KEY,
  ticket_id   TEXT        NOT NULL REFERENCES tickets(id) ON DELETE CASCADE,
  filename    TEXT        NOT NULL,
  url         TEXT        NOT NULL,
  type        TEXT        NOT NULL,
  size        BIGINT      NOT NULL CHECK (size >= 0),
  storage_key TEXT        NOT NULL,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  username      TEXT        PRIMARY KEY,
  password_hash TEXT        NOT NULL,
  role          TEXT        NOT NULL,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_tickets_status",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_tickets_status ON tickets (status);`,
	},
	{
		Name: "create_index_tickets_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_tickets_created_at ON tickets (created_at);`,
	},
	{
		Name: "create_index_attachments_ticket_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_attachments_ticket_id ON attachments (ticket_id);`,
	},
}

func sentinelQuery(d sqlstore.Dialect) string {
	if d == sqlstore.Postgres {
		return "SELECT to_regclass('public.tickets') IS NOT NULL"
	}
	return "SELECT COUNT(*) > 0 FROM sqlite_master WHERE type = 'table' AND name = 'tickets'"
}

func stepsFor(d sqlstore.Dialect) []migrationStep {
	if d == sqlstore.Postgres {
		return postgresSteps
	}
	return sqliteSteps
}

// EnsureMigrated checks if the 'tickets' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, d sqlstore.Dialect, log *slog.Logger) error {
	start := time.Now()
	log = log.With("component", "database", "dialect", d.String())

	log.Info("db_migration_check", "status", "starting")

	var exists bool
	if err := db.QueryRowContext(ctx, sentinelQuery(d)).Scan(&exists); err != nil {
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

	for _, step := range stepsFor(d) {
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
