// Package migrations embeds the versioned schema. Files follow golang-migrate's
// {version}_{name}.{up|down}.sql convention and are applied in version order.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
