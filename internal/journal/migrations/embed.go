package migrations

import "embed"

// FS embeds all SQL migration files for the journal's SQLite schema.
//
//go:embed *.sql
var FS embed.FS
