// Package migrations embeds the SQL schema for the database-backed stores,
// one goose migration directory per dialect.
package migrations

import (
	"embed"
	"fmt"
	"io/fs"
)

//go:embed sqlite/*.sql postgres/*.sql
var Migrations embed.FS

// For returns the migration directory for dialect ("sqlite" or "postgres")
// rooted so goose sees the files at ".".
func For(dialect string) (fs.FS, error) {
	switch dialect {
	case "sqlite", "postgres":
	default:
		return nil, fmt.Errorf("no migrations for dialect %q", dialect)
	}
	return fs.Sub(Migrations, dialect)
}
