// Package migrations embeds the SQL schema migrations applied at startup.
package migrations

import "embed"

// FS holds the migration files at its root.
//
//go:embed *.sql
var FS embed.FS

// Dir is the directory within FS containing the migrations.
const Dir = "."
