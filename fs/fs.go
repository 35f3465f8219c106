// Package appfs embeds the SQL migrations and templates shipped with the binaries.
package appfs

import "embed"

//go:embed migrations all:templates assets
var FS embed.FS
