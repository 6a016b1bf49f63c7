package resultset

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/glebarez/go-sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aleph-Alpha/sqlstd/v1/database"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	_, err = db.ExecContext(ctx, `CREATE TABLE items (id INTEGER, name TEXT, price REAL)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO items VALUES (1, 'apple', 1.5), (2, '', NULL), (3, 'cherry pie', 12)`)
	require.NoError(t, err)
	return db
}

func TestCollect(t *testing.T) {
	db := openMemory(t)
	rows, err := db.QueryContext(context.Background(), `SELECT id, name, price FROM items ORDER BY id`)
	require.NoError(t, err)

	b, err := Collect(rows)
	require.NoError(t, err)
	assert.Equal(t, 3, b.Columns())
	assert.Equal(t, 3, b.Rows())
	assert.Equal(t, "name", b.Name(1))
	assert.Equal(t, len("cherry pie"), b.Width(1))

	assert.Equal(t, "apple", string(b.Bytes(1)))
	assert.Equal(t, "1.5", string(b.Bytes(2)))

	_, err = b.Next()
	require.NoError(t, err)
	assert.False(t, b.Null(1))
	assert.Equal(t, []byte{}, b.Bytes(1))
	assert.True(t, b.Null(2))
	assert.Nil(t, b.Bytes(2))

	require.NoError(t, b.Seek(0))
	assert.Equal(t, "1", string(b.Bytes(0)))
	require.NoError(t, b.Seek(3))
	assert.True(t, b.EOF())
	assert.Error(t, b.Seek(4))
	assert.Error(t, b.Seek(-1))
}

func TestStream(t *testing.T) {
	db := openMemory(t)
	rows, err := db.QueryContext(context.Background(), `SELECT id, name FROM items ORDER BY id`)
	require.NoError(t, err)

	s, err := NewStream(rows)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, 2, s.Columns())
	assert.Equal(t, 1, s.Rows())
	assert.Equal(t, "apple", string(s.Bytes(1)))

	var names []string
	for !s.EOF() {
		names = append(names, string(s.Bytes(1)))
		_, err := s.Next()
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"apple", "", "cherry pie"}, names)
	assert.Equal(t, 3, s.Rows())
	assert.Equal(t, 3, s.Cur())
	assert.Equal(t, len("cherry pie"), s.Width(1))

	err = s.Seek(0)
	assert.ErrorIs(t, err, database.ErrNotSeekable)
	assert.Equal(t, database.StateNotSeekable, database.SQLStateOf(err))
}

func TestStreamEmptyResult(t *testing.T) {
	db := openMemory(t)
	rows, err := db.QueryContext(context.Background(), `SELECT id FROM items WHERE id > 100`)
	require.NoError(t, err)

	s, err := NewStream(rows)
	require.NoError(t, err)
	assert.True(t, s.EOF())
	assert.Equal(t, 0, s.Rows())
	assert.Equal(t, 1, s.Columns())

	ok, err := s.Next()
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestBufferedThroughStatement(t *testing.T) {
	b := New("word")
	b.Append(Text("hello"))
	b.Append(Null())

	stmt := database.NewStatement(nil, "SELECT word")
	require.NoError(t, stmt.SetResults(b))
	defer stmt.Release()

	assert.Equal(t, len("hello")+1, stmt.Value(0, nil))
	_, err := stmt.Next()
	require.NoError(t, err)
	assert.True(t, stmt.Null(0))
	assert.Equal(t, 1, stmt.Value(0, nil))
}

func TestAffected(t *testing.T) {
	b := Affected(7)
	assert.Equal(t, 0, b.Columns())
	assert.Equal(t, int64(7), b.Affected())
	assert.True(t, b.EOF())
}

func TestAppendValue(t *testing.T) {
	ts := time.Date(2024, 3, 9, 14, 5, 7, 250_000_000, time.UTC)

	tests := []struct {
		name string
		src  interface{}
		want string
	}{
		{"int", int64(-12), "-12"},
		{"float", 0.25, "0.25"},
		{"bool", true, "1"},
		{"text", "abc", "abc"},
		{"blob", []byte{'x', 0, 'y'}, "x\x00y"},
		{"timestamp", ts, "2024-03-09 14:05:07.25"},
		{"whole seconds", ts.Truncate(time.Second), "2024-03-09 14:05:07"},
		{"null", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(AppendValue(nil, tt.src)))
		})
	}
	assert.False(t, FromValue(nil).Valid)
	assert.True(t, FromValue("").Valid)
}
