// Package migrations embeds the goose SQL migrations so the binary and the
// tests never depend on the working directory.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
