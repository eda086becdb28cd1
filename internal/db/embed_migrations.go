package db

import "embed"

// MigrationFS embeds SQL migration files from internal/db/migrations.
// Used by the migrate runner (cmd/migrate) to apply Postgres migrations.
// The SQLite backend applies the equivalent schema inline in OpenSQLite.
//
//go:embed migrations/*.sql
var MigrationFS embed.FS
