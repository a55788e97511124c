//go:build !sqlite_cgo

package sqlstore

// Pure Go SQLite driver, no C compiler required. This is the default build.
//
// Driver used: modernc.org/sqlite

import (
	_ "modernc.org/sqlite"
)

const (
	// DriverName is the database/sql driver OpenSQLite uses.
	DriverName = "sqlite"

	// BuildMode describes the current build configuration.
	BuildMode = "purego"
)
