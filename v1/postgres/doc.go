// Package postgres is the database engine for PostgreSQL servers, built on
// github.com/jackc/pgx/v5.
//
// Importing the package registers the engine for the schemes "pgsql",
// "postgresql" and "postgres":
//
//	import _ "github.com/Aleph-Alpha/sqlstd/v1/postgres"
//
//	conn, err := database.Connect(ctx, "pgsql://app:secret@db:5432/inventory?sslmode=disable")
//
// Every connection uses one dedicated server session with client_encoding
// UTF8. Statements are sent over the simple query protocol, so a query
// string may hold several statements; the result of the last one is
// returned. Values are delivered in text form, exactly as the server
// renders them.
//
// Query parameters:
//
//	sslmode          disable, allow, prefer (default), require, verify-ca, verify-full
//	connect_timeout  seconds to wait while connecting
//	application_name reported to the server
//
// Results are materialised and support Seek. Field widths report the
// longest value in the column. Server notices are delivered to the notice
// log set with SetNoticeLog.
//
// Status codes are the server's own SQLSTATEs. Serialization failures
// ("40001") and deadlocks ("40P01") mark the connection deadlocked so that
// database.Perform retries the transaction. Transactions opened with
// database.TxConsistent run at REPEATABLE READ.
//
// FXModule provides a *Conn built from a database.Config, for
// applications that need the engine directly, for example to call Gorm.
package postgres
