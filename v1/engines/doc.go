// Package engines links the built-in engine adapters into a program.
//
// Importing it for its side effects registers every adapter compiled into
// the build with the default database registry:
//
//	import _ "github.com/Aleph-Alpha/sqlstd/v1/engines"
//
//	conn, err := database.Connect(ctx, "pgsql://app@db/inventory")
//
// The SQLite adapter is always present. The network adapters can be left
// out with build tags: nopgsql drops PostgreSQL and nomysql drops MySQL and
// MariaDB.
package engines
