// Package mariadb is the database engine for MySQL and MariaDB servers,
// built on github.com/go-sql-driver/mysql.
//
// Importing the package registers the engine for the schemes "mysql",
// "mysqls" and "mariadb":
//
//	import _ "github.com/Aleph-Alpha/sqlstd/v1/mariadb"
//
//	conn, err := database.Connect(ctx, "mysql://app:secret@db:3306/shop")
//
// "mysqls" requires TLS with certificate verification. With the other
// schemes the "tls" query parameter is passed to the driver as is, for
// example "skip-verify" or "preferred".
//
// Every session is set up with
//
//	SET sql_mode='ANSI_QUOTES,IGNORE_SPACE,PIPES_AS_CONCAT'
//	SET default_storage_engine='InnoDB'
//	SET time_zone='+00:00'
//
// so identifiers are quoted with double quotes, and "||" concatenates, as
// with the other engines. Values are delivered in text form, timestamps
// included. Results are materialised and support Seek.
//
// Status codes are the server's SQLSTATEs and the native error number is
// kept in database.Error.Native. Errors 1205 (lock wait timeout), 1213
// (deadlock), 1478 and 1479 mark the connection deadlocked so that
// database.Perform retries the transaction. Transactions opened with
// database.TxConsistent start WITH CONSISTENT SNAPSHOT.
package mariadb
