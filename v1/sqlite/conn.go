package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strconv"

	"github.com/Aleph-Alpha/sqlstd/v1/database"
)

// Conn is a connection to one SQLite database file.
type Conn struct {
	database.Base
}

// New returns an unconnected Conn holding one reference.
func New() *Conn {
	c := &Conn{}
	c.Init(c, database.VariantSQLite)
	return c
}

// Connect opens the database file named by uri, creating it if needed.
func (c *Conn) Connect(ctx context.Context, uri *database.URI) error {
	path := uri.Path
	if uri.Host != "" {
		path = uri.Host + uri.Path
	}
	if path == "" {
		return c.RecordError(database.NewError(database.KindConnectionFailure, database.StateMissingPath,
			"No database path provided in connection URI"))
	}

	dsn, err := dataSource(path, uri)
	if err != nil {
		return c.RecordError(err)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return c.RecordError(connectError(err))
	}
	// every statement runs on the one dedicated connection below
	db.SetMaxOpenConns(1)

	conn, err := db.Conn(ctx)
	if err == nil {
		err = conn.PingContext(ctx)
	}
	if err != nil {
		if conn != nil {
			_ = conn.Close()
		}
		_ = db.Close()
		return c.RecordError(connectError(err))
	}

	c.Attach(uri, &link{db: db, conn: conn, path: path})
	return nil
}

func dataSource(path string, uri *database.URI) (string, error) {
	timeout := uri.Option("busy_timeout", "0")
	if _, err := strconv.ParseUint(timeout, 10, 32); err != nil {
		return "", database.Errorf(database.KindInvalidURI, database.StateInvalidURI,
			"busy_timeout must be a number of milliseconds, got %q", timeout)
	}
	foreignKeys := "1"
	switch uri.Option("foreign_keys", "on") {
	case "on", "1", "true":
	case "off", "0", "false":
		foreignKeys = "0"
	default:
		return "", database.NewError(database.KindInvalidURI, database.StateInvalidURI,
			`foreign_keys must be "on" or "off"`)
	}

	params := url.Values{}
	params.Add("_pragma", fmt.Sprintf("busy_timeout(%s)", timeout))
	params.Add("_pragma", fmt.Sprintf("foreign_keys(%s)", foreignKeys))
	return path + "?" + params.Encode(), nil
}

func connectError(err error) *database.Error {
	e := translate(err)
	e.Kind = database.KindConnectionFailure
	return e
}

// Escape doubles single quotes. Input stops at the first NUL byte.
func (c *Conn) Escape(buf, from []byte) int {
	need := len(from)*2 + 1
	if len(buf) < need {
		if len(buf) > 0 {
			buf[0] = 0
		}
		return need
	}
	n := 0
	for _, ch := range from {
		if ch == 0 {
			break
		}
		if ch == '\'' {
			buf[n] = '\''
			n++
		}
		buf[n] = ch
		n++
	}
	buf[n] = 0
	return n + 1
}

// Path returns the database file of the attached link, or "".
func (c *Conn) Path() string {
	if l, ok := c.Link().(*link); ok {
		return l.path
	}
	return ""
}
