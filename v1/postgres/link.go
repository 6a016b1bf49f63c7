package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/gorm"

	"github.com/Aleph-Alpha/sqlstd/v1/database"
	"github.com/Aleph-Alpha/sqlstd/v1/resultset"
)

type link struct {
	db   *sql.DB
	conn *sql.Conn

	orm *gorm.DB
}

// withPgConn runs fn on the session's low-level connection.
func (l *link) withPgConn(fn func(pc *pgconn.PgConn) error) error {
	return l.conn.Raw(func(driverConn any) error {
		sc, ok := driverConn.(*stdlib.Conn)
		if !ok {
			return errors.New("unexpected driver connection type")
		}
		return fn(sc.Conn().PgConn())
	})
}

// simple sends query over the simple protocol and returns the result of
// its last statement, or nil when the query held no statement.
func (l *link) simple(ctx context.Context, query string) (*resultset.Buffered, error) {
	var last *resultset.Buffered
	err := l.withPgConn(func(pc *pgconn.PgConn) error {
		var err error
		last, err = readLast(pc.Exec(ctx, query))
		return err
	})
	return last, err
}

// readLast drains mrr and buffers the last result it carries. The first
// error wins.
func readLast(mrr *pgconn.MultiResultReader) (*resultset.Buffered, error) {
	var (
		last  *resultset.Buffered
		first error
	)
	for mrr.NextResult() {
		b, err := buffer(mrr.ResultReader())
		if err != nil && first == nil {
			first = err
		}
		last = b
	}
	if err := mrr.Close(); err != nil && first == nil {
		first = err
	}
	if first != nil {
		return nil, first
	}
	return last, nil
}

func (l *link) Exec(ctx context.Context, query string) error {
	_, err := l.simple(ctx, query)
	return err
}

func (l *link) Query(ctx context.Context, query string) (database.Payload, error) {
	result, err := l.simple(ctx, query)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return resultset.Affected(0), nil
	}
	return result, nil
}

// buffer copies the rows of rr. Column names come from the row
// description, so a result without rows keeps its columns. NULL values
// arrive as nil and stay NULL.
func buffer(rr *pgconn.ResultReader) (*resultset.Buffered, error) {
	fields := rr.FieldDescriptions()
	if fields == nil {
		tag, err := rr.Close()
		return resultset.Affected(tag.RowsAffected()), err
	}

	names := make([]string, len(fields))
	for i, fd := range fields {
		names[i] = fd.Name
	}
	b := resultset.New(names...)
	for rr.NextRow() {
		values := rr.Values()
		cells := make([]resultset.Cell, len(values))
		for i, v := range values {
			if v != nil {
				cells[i] = resultset.Cell{Data: append([]byte{}, v...), Valid: true}
			}
		}
		b.Append(cells...)
	}
	tag, err := rr.Close()
	b.SetAffected(tag.RowsAffected())
	return b, err
}

func (l *link) escape(s string) (string, error) {
	var out string
	err := l.withPgConn(func(pc *pgconn.PgConn) error {
		var err error
		out, err = pc.EscapeString(s)
		return err
	})
	return out, err
}

func (l *link) Translate(err error) *database.Error {
	return translate(err)
}

func (l *link) BeginStatement(mode database.TxMode) string {
	if mode == database.TxConsistent {
		return "START TRANSACTION ISOLATION LEVEL REPEATABLE READ"
	}
	return "START TRANSACTION"
}

func (l *link) Ping(ctx context.Context) error {
	return l.conn.PingContext(ctx)
}

func (l *link) Close() error {
	err := l.conn.Close()
	if cerr := l.db.Close(); err == nil {
		err = cerr
	}
	return err
}
