// Package migrations embeds the goose SQL migrations for the notifier schema.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
