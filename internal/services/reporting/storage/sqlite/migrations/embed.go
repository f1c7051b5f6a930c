package migrations

import "embed"

// FS contains the SQLite schema for the field-sales database.
//
//go:embed *.sql
var FS embed.FS
