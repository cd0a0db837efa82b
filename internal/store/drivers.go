package store

import (
	// Registers "sqlite3". Needs cgo; without it the driver fails at open time.
	_ "github.com/mattn/go-sqlite3"
	// Registers "sqlite", the pure Go default.
	_ "modernc.org/sqlite"
)
