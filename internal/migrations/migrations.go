// Package migrations embeds the goose migrations of the local store.
package migrations

import "embed"

// SchemaVersion is the version of the newest migration in this package. It is
// written into every snapshot and gates which snapshots can be imported.
const SchemaVersion = 4

//go:embed *.sql
var Migrations embed.FS
