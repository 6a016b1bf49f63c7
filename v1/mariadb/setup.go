package mariadb

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/Aleph-Alpha/sqlstd/v1/database"
)

// Conn is a connection to one MySQL or MariaDB database.
type Conn struct {
	database.Base
}

// New returns an unconnected Conn holding one reference.
func New() *Conn {
	c := &Conn{}
	c.Init(c, database.VariantMySQL)
	return c
}

// sessionSetup runs on every new session. Failures of the optional
// statements are ignored, older servers call the storage engine variable
// storage_engine.
var sessionSetup = []struct {
	query    string
	optional bool
}{
	{"SET sql_mode='ANSI_QUOTES,IGNORE_SPACE,PIPES_AS_CONCAT'", false},
	{"SET default_storage_engine='InnoDB'", true},
	{"SET time_zone='+00:00'", false},
}

// Connect opens a session with the server named by uri.
func (c *Conn) Connect(ctx context.Context, uri *database.URI) error {
	cfg, err := driverConfig(uri)
	if err != nil {
		return c.RecordError(err)
	}
	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return c.RecordError(database.WrapError(database.KindInvalidURI, database.StateInvalidURI, 0, err))
	}

	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(1)

	conn, err := db.Conn(ctx)
	if err == nil {
		err = conn.PingContext(ctx)
	}
	l := &link{db: db, conn: conn}
	if err == nil {
		err = l.setup(ctx)
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

	c.Attach(uri, l)
	return nil
}

func driverConfig(uri *database.URI) (*mysql.Config, error) {
	cfg := mysql.NewConfig()
	cfg.User = uri.User
	cfg.Passwd = uri.Password
	cfg.Net = "tcp"
	cfg.Addr = uri.Address(DefaultPort)
	cfg.DBName = uri.Database()
	cfg.Collation = "utf8mb4_general_ci"
	cfg.Loc = time.UTC

	if uri.Scheme == "mysqls" {
		cfg.TLSConfig = "true"
	} else {
		cfg.TLSConfig = uri.Option("tls", "")
	}
	if raw := uri.Option("timeout", ""); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, database.Errorf(database.KindInvalidURI, database.StateInvalidURI,
				"timeout must be a duration, got %q", raw)
		}
		cfg.Timeout = d
	}
	return cfg, nil
}

// Escape applies the backslash escaping of mysql_real_escape_string.
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
		var esc byte
		switch ch {
		case 0:
			esc = '0'
		case '\n':
			esc = 'n'
		case '\r':
			esc = 'r'
		case '\\', '\'', '"':
			esc = ch
		case 0x1a:
			esc = 'Z'
		}
		if esc != 0 {
			buf[n] = '\\'
			buf[n+1] = esc
			n += 2
			continue
		}
		buf[n] = ch
		n++
	}
	buf[n] = 0
	return n + 1
}
