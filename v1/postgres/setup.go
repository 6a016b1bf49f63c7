package postgres

import (
	"context"
	"net"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/Aleph-Alpha/sqlstd/v1/database"
)

// Conn is a connection to one PostgreSQL database.
type Conn struct {
	database.Base
}

// New returns an unconnected Conn holding one reference.
func New() *Conn {
	c := &Conn{}
	c.Init(c, database.VariantPostgres)
	return c
}

// Connect opens a session with the server named by uri.
func (c *Conn) Connect(ctx context.Context, uri *database.URI) error {
	cfg, err := pgx.ParseConfig(connString(uri))
	if err != nil {
		return c.RecordError(database.WrapError(database.KindInvalidURI, database.StateInvalidURI, 0, err))
	}
	cfg.RuntimeParams["client_encoding"] = "UTF8"
	cfg.OnNotice = func(_ *pgconn.PgConn, n *pgconn.Notice) {
		c.Notice(n.Message)
	}

	db := stdlib.OpenDB(*cfg)
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
		e := translate(err)
		e.Kind = database.KindConnectionFailure
		if e.SQLState == database.StateGeneral {
			e.SQLState = database.StateConnectionFailure
		}
		return c.RecordError(e)
	}

	c.Attach(uri, &link{db: db, conn: conn})
	return nil
}

// connString builds a keyword/value connection string from uri.
func connString(uri *database.URI) string {
	host, port, _ := net.SplitHostPort(uri.Address(DefaultPort))

	var b strings.Builder
	put := func(key, value string) {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(quoteValue(value))
	}
	add := func(key, value string) {
		if value != "" {
			put(key, value)
		}
	}
	add("host", host)
	add("port", port)
	add("user", uri.User)
	if uri.HasPassword {
		put("password", uri.Password)
	}
	add("dbname", uri.Database())
	add("sslmode", uri.Option("sslmode", "prefer"))
	add("connect_timeout", uri.Option("connect_timeout", ""))
	add("application_name", uri.Option("application_name", ""))
	return b.String()
}

func quoteValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}

// Escape doubles single quotes using the server session's rules. Input
// stops at the first NUL byte, which PostgreSQL text cannot hold.
func (c *Conn) Escape(buf, from []byte) int {
	need := len(from)*2 + 1
	if len(buf) < need {
		if len(buf) > 0 {
			buf[0] = 0
		}
		return need
	}
	if i := indexNUL(from); i >= 0 {
		from = from[:i]
	}

	escaped := ""
	if l, ok := c.Link().(*link); ok {
		escaped, _ = l.escape(string(from))
	}
	if escaped == "" && len(from) > 0 {
		escaped = strings.ReplaceAll(string(from), "'", "''")
	}
	n := copy(buf, escaped)
	buf[n] = 0
	return n + 1
}

func indexNUL(b []byte) int {
	for i, ch := range b {
		if ch == 0 {
			return i
		}
	}
	return -1
}

// Addr returns host:port of the attached session, or "".
func (c *Conn) Addr() string {
	uri := c.URI()
	if uri == nil || !c.Connected() {
		return ""
	}
	return uri.Address(DefaultPort)
}

var _ database.Connection = (*Conn)(nil)
