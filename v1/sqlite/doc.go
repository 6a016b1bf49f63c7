// Package sqlite is the database engine for SQLite files, built on the
// pure Go driver github.com/glebarez/go-sqlite.
//
// Importing the package registers the engine for the schemes "sqlite",
// "sqlite3", "file" and "sqlite3+file":
//
//	import _ "github.com/Aleph-Alpha/sqlstd/v1/sqlite"
//
//	conn, err := database.Connect(ctx, "sqlite:///var/lib/app/state.db")
//
// The path is taken from the URI path, with a host, if any, prepended, so
// "file:state.db" and "sqlite://./state.db" both name a relative file. The
// special path ":memory:" opens a private in-memory database. A URI
// without a path fails with the status code "X0000".
//
// Query parameters:
//
//	busy_timeout   milliseconds to wait on a locked database, default 0
//	foreign_keys   "on" or "off", default "on"
//
// Result cursors stream rows from the engine and cannot seek; Seek and
// Rewind fail with database.ErrNotSeekable. Engine errors are reported
// with status codes of the form "Znnnn" carrying SQLite's extended result
// code, except lock conflicts (SQLITE_BUSY, SQLITE_LOCKED), which report
// "40001" and mark the connection deadlocked so Perform retries.
package sqlite
