// Package migrations holds the versioned SQL schema of the marketplace.
package migrations

import "embed"

// FS contains every NNNNNN_name.{up,down}.sql pair in this directory
//
//go:embed *.sql
var FS embed.FS
