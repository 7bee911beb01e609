package db

import "embed"

// MigrationFS embeds SQL migration files from internal/db/migrations, one
// directory per dialect. Used by the migrate runner (cmd/migrate and server
// startup) to apply migrations.
//
//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var MigrationFS embed.FS
