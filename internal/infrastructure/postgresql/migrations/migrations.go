// Package migrations embeds the PostgreSQL ledger schema.
package migrations

import "embed"

// FS holds the NNNNNN_name.up.sql / NNNNNN_name.down.sql pairs.
//
//go:embed *.sql
var FS embed.FS
