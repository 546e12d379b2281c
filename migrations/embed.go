// Package migrations embeds SQL migration files for use at runtime.
// Embedding keeps migrations working regardless of working directory.
package migrations

import "embed"

// FS is the embedded migrations filesystem.
//
//go:embed *.sql
var FS embed.FS
