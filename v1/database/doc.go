// Package database provides one connection, statement and result model
// over several SQL engines.
//
// An engine is selected by the scheme of a connection URI. The engines
// shipped with this module are:
//
//	sqlite, sqlite3, file, sqlite3+file   embedded database file (v1/sqlite)
//	mysql, mysqls, mariadb                MySQL and MariaDB servers (v1/mariadb)
//	pgsql, postgresql, postgres           PostgreSQL servers (v1/postgres)
//
// Engine packages register themselves with the default Registry when they
// are imported. Import v1/engines to link all of them in; build with the
// nomysql or nopgsql tags to leave a network engine out.
//
// # Basic Usage
//
//	import (
//	    "github.com/Aleph-Alpha/sqlstd/v1/database"
//	    _ "github.com/Aleph-Alpha/sqlstd/v1/engines"
//	)
//
//	conn, err := database.Connect(ctx, "pgsql://app:secret@db:5432/inventory")
//	if err != nil {
//	    return err
//	}
//	defer conn.Disconnect()
//
//	stmt, err := database.Queryf(ctx, conn, `SELECT "id", "name" FROM "items" WHERE "owner" = %Q`, owner)
//	if err != nil {
//	    return err
//	}
//	defer stmt.Release()
//
//	for !stmt.EOF() {
//	    id := database.Int64(stmt, 0)
//	    name := database.String(stmt, 1)
//	    // ...
//	    if _, err := stmt.Next(); err != nil {
//	        return err
//	    }
//	}
//
// # Errors
//
// Every fallible operation returns an error carrying a five character
// status code in the style of SQLSTATE. The same failure is also recorded
// on the Connection, where SQLState and ErrorMessage report it, and handed
// to the error log callback if one is set. Errors are classified by Kind
// and match the package sentinels with errors.Is:
//
//	if errors.Is(err, database.ErrNestedTransaction) {
//	    // ...
//	}
//
// # Transactions
//
// Perform runs a unit of work in a transaction and retries it when the
// engine reports a deadlock or serialization conflict. The body decides
// what happens next by the Outcome it returns:
//
//	err := database.Perform(ctx, conn, func(ctx context.Context, conn database.Connection) database.Outcome {
//	    if err := database.Executef(ctx, conn, `UPDATE "stock" SET "qty" = "qty" - %d WHERE "sku" = %Q`, n, sku); err != nil {
//	        return database.Fail
//	    }
//	    return database.Commit
//	}, 5, database.TxDefault)
//
// Fail retries when the connection is deadlocked and aborts otherwise, so
// bodies can report every failure the same way.
//
// # Schema Migration
//
// Migrate keeps a version number per identifier in the "_version" table
// and calls a step function until it reports the schema is current:
//
//	version, err := database.MigrateTx(ctx, conn, "com.example.inventory",
//	    func(ctx context.Context, conn database.Connection, ident string, version int) (int, error) {
//	        switch version {
//	        case 0:
//	            return 1, conn.Execute(ctx, `CREATE TABLE "items" ("id" INTEGER PRIMARY KEY, "name" TEXT)`)
//	        }
//	        return version, nil
//	    }, 5)
//
// # Concurrency
//
// Operations block until the engine answers. A Connection is not safe for
// concurrent use; goroutines sharing one call Lock and Unlock around each
// unit of work, including whole Perform calls. Reference counts on
// connections and statements are atomic.
package database
