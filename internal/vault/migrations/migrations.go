// Package migrations embeds the goose SQL migrations defining the store
// schema. The goose version table doubles as the store's format-version
// marker: new partitions arrive as new migrations, existing records are
// never reshaped in place.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
