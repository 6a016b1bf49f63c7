package database

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// versionConn keeps schema versions in memory so migrations can be
// exercised without a version table.
type versionConn struct {
	*fakeConn
	versions map[string]int
	writes   []int
}

func newVersionConn() *versionConn {
	return &versionConn{fakeConn: newFakeConn(), versions: map[string]int{}}
}

func (c *versionConn) CreateSchemaTable(ctx context.Context) error {
	return nil
}

func (c *versionConn) SchemaVersion(ctx context.Context, identifier string) (int, error) {
	return c.versions[identifier], nil
}

func (c *versionConn) SetSchemaVersion(ctx context.Context, identifier string, version int) (int, error) {
	c.versions[identifier] = version
	c.writes = append(c.writes, version)
	return version, nil
}

// stepsTo migrates one version at a time up to target.
func stepsTo(target int, calls *int) MigrateFunc {
	return func(ctx context.Context, conn Connection, identifier string, version int) (int, error) {
		*calls++
		if version < target {
			return version + 1, nil
		}
		return version, nil
	}
}

func TestSetSchemaVersionInsertsThenUpdates(t *testing.T) {
	conn := newFakeConn()
	ctx := context.Background()
	selectApp := `SELECT "version" FROM "_version" WHERE "ident" = 'app'`

	version, err := conn.SetSchemaVersion(ctx, "app", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, version)

	conn.link.results[selectApp] = &fakePayload{names: []string{"version"}, rows: [][]*string{{str("1")}}}
	got, err := conn.SchemaVersion(ctx, "app")
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	_, err = conn.SetSchemaVersion(ctx, "app", 2)
	require.NoError(t, err)

	statements := conn.link.statements()
	require.Len(t, statements, 5)
	assert.Equal(t, `INSERT INTO "_version" ("ident", "version", "updated") VALUES ('app', 1, CURRENT_TIMESTAMP)`, statements[1])
	assert.Equal(t, `UPDATE "_version" SET "version" = 2, "updated" = CURRENT_TIMESTAMP WHERE "ident" = 'app'`, statements[4])
}

func TestSchemaVersionDefaultsToZero(t *testing.T) {
	conn := newFakeConn()

	version, err := conn.SchemaVersion(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Equal(t, 0, version)
}

func TestSetSchemaVersionNegativeIsUntouched(t *testing.T) {
	conn := newFakeConn()

	version, err := conn.SetSchemaVersion(context.Background(), "app", -1)
	require.NoError(t, err)
	assert.Equal(t, -1, version)
	assert.Empty(t, conn.link.statements())
}

func TestSchemaIdentifierIsTruncated(t *testing.T) {
	conn := newFakeConn()
	long := strings.Repeat("a", 70)

	_, err := conn.SchemaVersion(context.Background(), long)
	require.NoError(t, err)

	statements := conn.link.statements()
	require.Len(t, statements, 1)
	assert.Contains(t, statements[0], "'"+strings.Repeat("a", MaxIdentifierLength)+"'")
	assert.NotContains(t, statements[0], strings.Repeat("a", MaxIdentifierLength+1))
}

func TestCreateSchemaTable(t *testing.T) {
	conn := newFakeConn()

	require.NoError(t, conn.CreateSchemaTable(context.Background()))
	statements := conn.link.statements()
	require.Len(t, statements, 1)
	assert.True(t, strings.HasPrefix(statements[0], `CREATE TABLE IF NOT EXISTS "_version"`))
}

func TestMigrateIsIdempotent(t *testing.T) {
	conn := newVersionConn()
	ctx := context.Background()
	calls := 0

	version, err := Migrate(ctx, conn, "app", stepsTo(3, &calls))
	require.NoError(t, err)
	assert.Equal(t, 3, version)
	assert.Equal(t, 4, calls)
	assert.Equal(t, []int{1, 2, 3}, conn.writes)

	calls = 0
	version, err = Migrate(ctx, conn, "app", stepsTo(3, &calls))
	require.NoError(t, err)
	assert.Equal(t, 3, version)
	assert.Equal(t, 1, calls)
	assert.Equal(t, []int{1, 2, 3}, conn.writes)
}

func TestMigrateStepError(t *testing.T) {
	conn := newVersionConn()
	conn.versions["app"] = 2

	version, err := Migrate(context.Background(), conn, "app",
		func(ctx context.Context, conn Connection, identifier string, version int) (int, error) {
			return version, errors.New("column already exists")
		})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMigration)
	assert.Contains(t, err.Error(), "column already exists")
	assert.Equal(t, 2, version)
	assert.Equal(t, StateGeneral, conn.SQLState())
	assert.Empty(t, conn.writes)
}

func TestMigrateLowerVersionAborts(t *testing.T) {
	conn := newVersionConn()
	conn.versions["app"] = 4

	_, err := Migrate(context.Background(), conn, "app",
		func(ctx context.Context, conn Connection, identifier string, version int) (int, error) {
			return -1, nil
		})

	assert.ErrorIs(t, err, ErrMigration)
	assert.Equal(t, 4, conn.versions["app"])
}

func TestMigrateKeepsEngineErrors(t *testing.T) {
	conn := newVersionConn()
	conn.link.hook = func(query string) error {
		if query == "ALTER TABLE t ADD c INT" {
			return errors.New("syntax error")
		}
		return nil
	}

	_, err := Migrate(context.Background(), conn, "app",
		func(ctx context.Context, conn Connection, identifier string, version int) (int, error) {
			if err := conn.Execute(ctx, "ALTER TABLE t ADD c INT"); err != nil {
				return version, err
			}
			return version + 1, nil
		})

	assert.ErrorIs(t, err, ErrEngine)
	assert.NotErrorIs(t, err, ErrMigration)
}

func TestMigrateTxCommits(t *testing.T) {
	conn := newVersionConn()
	calls := 0

	version, err := MigrateTx(context.Background(), conn, "app", stepsTo(2, &calls), 3)
	require.NoError(t, err)
	assert.Equal(t, 2, version)
	assert.Equal(t, []string{"BEGIN", "COMMIT"}, conn.link.statements())
}

func TestMigrateTxRollsBackOnFailure(t *testing.T) {
	conn := newVersionConn()

	_, err := MigrateTx(context.Background(), conn, "app",
		func(ctx context.Context, conn Connection, identifier string, version int) (int, error) {
			return version, errors.New("boom")
		}, 3)

	assert.ErrorIs(t, err, ErrMigration)
	assert.NotErrorIs(t, err, ErrAborted)
	assert.Equal(t, []string{"BEGIN", "ROLLBACK"}, conn.link.statements())
}

func TestMigrateTxRetriesConflicts(t *testing.T) {
	conn := newVersionConn()
	conflicts := 1
	conn.link.hook = func(query string) error {
		if query == "CREATE TABLE t (id INT)" && conflicts > 0 {
			conflicts--
			return deadlockErr
		}
		return nil
	}

	version, err := MigrateTx(context.Background(), conn, "app",
		func(ctx context.Context, conn Connection, identifier string, version int) (int, error) {
			if version > 0 {
				return version, nil
			}
			if err := conn.Execute(ctx, "CREATE TABLE t (id INT)"); err != nil {
				return version, err
			}
			return 1, nil
		}, 3)

	require.NoError(t, err)
	assert.Equal(t, 1, version)
	assert.Equal(t, 2, conn.link.count("BEGIN"))
	assert.Equal(t, 1, conn.link.count("ROLLBACK"))
	assert.Equal(t, 1, conn.link.count("COMMIT"))
}
