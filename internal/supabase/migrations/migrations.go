package migrations

import "embed"

// FS holds the goose migrations for the hosted record schema.
//
//go:embed *.sql
var FS embed.FS
