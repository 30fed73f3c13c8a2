// Package migrations embeds the postgres schema migrations so binaries can
// migrate without a checkout of this directory.
package migrations

import "embed"

// FS holds every *.sql migration in golang-migrate naming
//
//go:embed *.sql
var FS embed.FS
