package database

import (
	"context"
	"errors"
	"fmt"
)

// VersionTable is the table tracking schema versions per identifier.
const VersionTable = "_version"

// MaxIdentifierLength is the longest identifier stored in VersionTable;
// longer identifiers are truncated.
const MaxIdentifierLength = 64

const createVersionTable = `CREATE TABLE IF NOT EXISTS "_version" (` +
	`"ident" VARCHAR(64) NOT NULL, ` +
	`"version" INTEGER NOT NULL, ` +
	`"updated" TIMESTAMP NOT NULL, ` +
	`"comment" TEXT DEFAULT NULL, ` +
	`PRIMARY KEY ("ident")` +
	`)`

// CreateSchemaTable creates the version table if it does not exist.
func (b *Base) CreateSchemaTable(ctx context.Context) error {
	return b.Execute(ctx, createVersionTable)
}

// SchemaVersion returns the stored version for identifier, 0 if there is
// none yet.
func (b *Base) SchemaVersion(ctx context.Context, identifier string) (int, error) {
	version, _, err := b.selectVersion(ctx, identifier)
	if err != nil {
		return -1, err
	}
	return version, nil
}

// SetSchemaVersion stores version for identifier and returns it. The row
// is written with a select followed by an insert or update, so concurrent
// writers must be serialized by the caller's transaction. A negative
// version is returned unchanged without touching the table.
func (b *Base) SetSchemaVersion(ctx context.Context, identifier string, version int) (int, error) {
	if version < 0 {
		return version, nil
	}
	_, found, err := b.selectVersion(ctx, identifier)
	if err != nil {
		return -1, err
	}
	ident := truncateIdentifier(identifier)
	if found {
		err = b.executeScratch(ctx,
			`UPDATE "_version" SET "version" = %d, "updated" = CURRENT_TIMESTAMP WHERE "ident" = %Q`,
			version, ident)
	} else {
		err = b.executeScratch(ctx,
			`INSERT INTO "_version" ("ident", "version", "updated") VALUES (%Q, %d, CURRENT_TIMESTAMP)`,
			ident, version)
	}
	if err != nil {
		return -1, err
	}
	return version, nil
}

func (b *Base) selectVersion(ctx context.Context, identifier string) (int, bool, error) {
	query, err := b.buildScratch(`SELECT "version" FROM "_version" WHERE "ident" = %Q`, truncateIdentifier(identifier))
	if err != nil {
		return 0, false, err
	}
	payload, err := b.Fetch(ctx, query)
	if err != nil {
		return 0, false, err
	}
	defer payload.Close()

	if payload.EOF() || payload.Columns() == 0 || payload.Null(0) {
		return 0, false, nil
	}
	return int(parseSigned(payload.Bytes(0))), true, nil
}

func (b *Base) buildScratch(template string, args ...interface{}) (string, error) {
	var err error
	b.scratch, err = AppendFormat(b.self, b.scratch[:0], template, args...)
	if err != nil {
		return "", b.RecordError(err)
	}
	return string(b.scratch), nil
}

func (b *Base) executeScratch(ctx context.Context, template string, args ...interface{}) error {
	query, err := b.buildScratch(template, args...)
	if err != nil {
		return err
	}
	return b.Execute(ctx, query)
}

func truncateIdentifier(identifier string) string {
	if len(identifier) > MaxIdentifierLength {
		return identifier[:MaxIdentifierLength]
	}
	return identifier
}

// MigrateFunc performs the schema change following version and returns the
// version reached. Returning version unchanged means the schema is up to
// date. A lower or negative version, or an error, aborts the migration.
type MigrateFunc func(ctx context.Context, conn Connection, identifier string, version int) (int, error)

// Migrate brings the schema tracked under identifier up to date. It
// creates the version table if needed, reads the stored version and calls
// step until it reports no further change, persisting each new version as
// it goes. It returns the final version.
//
// Migrate does not open a transaction; run it inside one, or use
// MigrateTx.
func Migrate(ctx context.Context, conn Connection, identifier string, step MigrateFunc) (int, error) {
	if err := conn.CreateSchemaTable(ctx); err != nil {
		return -1, err
	}
	current, err := conn.SchemaVersion(ctx, identifier)
	if err != nil {
		return -1, err
	}

	for {
		next, err := step(ctx, conn, identifier, current)
		if err != nil {
			return current, migrationError(conn, identifier, current, err)
		}
		if next == current {
			return current, nil
		}
		if next < current {
			return current, migrationError(conn, identifier, current,
				fmt.Errorf("migration step returned version %d", next))
		}
		if _, err := conn.SetSchemaVersion(ctx, identifier, next); err != nil {
			return current, err
		}
		current = next
	}
}

// MigrateTx runs Migrate inside Perform, committing when the schema is up
// to date and rolling back on failure. Lock conflicts are retried up to
// maxRetries attempts.
func MigrateTx(ctx context.Context, conn Connection, identifier string, step MigrateFunc, maxRetries int) (int, error) {
	var (
		version int
		stepErr error
	)
	err := Perform(ctx, conn, func(ctx context.Context, conn Connection) Outcome {
		version, stepErr = Migrate(ctx, conn, identifier, step)
		if stepErr != nil {
			return Fail
		}
		return Commit
	}, maxRetries, TxDefault)
	if err != nil {
		if stepErr != nil && errors.Is(err, ErrAborted) {
			return version, stepErr
		}
		return version, err
	}
	return version, nil
}

// migrationError reports a failed step. Errors already recorded by the
// connection are returned as they are so their status code survives.
func migrationError(conn Connection, identifier string, version int, err error) error {
	if _, ok := AsError(err); ok {
		return err
	}
	e := Errorf(KindMigration, StateGeneral, "migration of %q from version %d failed: %v", identifier, version, err)
	e.Err = err
	return recordOn(conn, e)
}
