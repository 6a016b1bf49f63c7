package mariadb

import (
	"context"
	"database/sql"

	"gorm.io/gorm"

	"github.com/Aleph-Alpha/sqlstd/v1/database"
	"github.com/Aleph-Alpha/sqlstd/v1/resultset"
)

type link struct {
	db   *sql.DB
	conn *sql.Conn

	orm *gorm.DB
}

func (l *link) setup(ctx context.Context) error {
	for _, s := range sessionSetup {
		if err := l.Exec(ctx, s.query); err != nil {
			if s.optional {
				continue
			}
			return err
		}
	}
	return nil
}

func (l *link) Exec(ctx context.Context, query string) error {
	_, err := l.conn.ExecContext(ctx, query)
	return err
}

// Query materialises the result. Statements returning no columns are
// reported through an empty result carrying ROW_COUNT().
func (l *link) Query(ctx context.Context, query string) (database.Payload, error) {
	rows, err := l.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	cols, err := rows.Columns()
	if err != nil {
		_ = rows.Close()
		return nil, err
	}
	if len(cols) == 0 {
		if err := rows.Close(); err != nil {
			return nil, err
		}
		var count int64
		if err := l.conn.QueryRowContext(ctx, "SELECT ROW_COUNT()").Scan(&count); err != nil {
			return nil, err
		}
		if count < 0 {
			count = 0
		}
		return resultset.Affected(count), nil
	}
	return resultset.Collect(rows)
}

func (l *link) Translate(err error) *database.Error {
	return translate(err)
}

func (l *link) BeginStatement(mode database.TxMode) string {
	if mode == database.TxConsistent {
		return "START TRANSACTION WITH CONSISTENT SNAPSHOT"
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
