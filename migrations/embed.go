// Package migrations embeds the Postgres schema for lead storage.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
