// Package migrations embeds the database schema.
package migrations

import _ "embed"

//go:embed 0001_init.sql
var Schema string
