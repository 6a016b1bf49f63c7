package sqlite

import (
	"context"
	"database/sql"
	"sync"

	"github.com/Aleph-Alpha/sqlstd/v1/database"
	"github.com/Aleph-Alpha/sqlstd/v1/resultset"
	"gorm.io/gorm"
)

type link struct {
	db   *sql.DB
	conn *sql.Conn
	path string

	orm *gorm.DB

	// open streams hold the session until they end, so Close ends them
	mu      sync.Mutex
	streams []*resultset.Stream
}

// track remembers s until it ends. Ended streams are dropped on the way.
func (l *link) track(s *resultset.Stream) {
	l.mu.Lock()
	defer l.mu.Unlock()
	live := l.streams[:0]
	for _, o := range l.streams {
		if !o.EOF() {
			live = append(live, o)
		}
	}
	l.streams = append(live, s)
}

func (l *link) Exec(ctx context.Context, query string) error {
	_, err := l.conn.ExecContext(ctx, query)
	return err
}

// Query streams rows for statements returning columns. Other statements
// are reported through an empty result carrying changes().
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
		for rows.Next() {
		}
		if err := rows.Close(); err != nil {
			return nil, err
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}
		var changes int64
		if err := l.conn.QueryRowContext(ctx, "SELECT changes()").Scan(&changes); err != nil {
			return nil, err
		}
		return resultset.Affected(changes), nil
	}

	stream, err := resultset.NewStream(rows)
	if err != nil {
		return nil, err
	}
	stream.SeekMessage = "cannot seek a SQLite cursor"
	l.track(stream)
	return stream, nil
}

func (l *link) Translate(err error) *database.Error {
	return translate(err)
}

func (l *link) BeginStatement(mode database.TxMode) string {
	if mode == database.TxConsistent {
		// holds the write lock from the start
		return "BEGIN IMMEDIATE TRANSACTION"
	}
	return "BEGIN TRANSACTION"
}

func (l *link) Ping(ctx context.Context) error {
	return l.conn.PingContext(ctx)
}

func (l *link) Close() error {
	l.mu.Lock()
	for _, s := range l.streams {
		_ = s.Close()
	}
	l.streams = nil
	l.mu.Unlock()

	err := l.conn.Close()
	if cerr := l.db.Close(); err == nil {
		err = cerr
	}
	return err
}
