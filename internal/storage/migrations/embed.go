package migrations

import "embed"

// PostgresFS embeds all queue-database migration files.
//
//go:embed postgres/*.sql
var PostgresFS embed.FS
