package database

import (
	"context"

	"gorm.io/gorm"
)

// TxMode selects the isolation a transaction is opened with.
type TxMode int

const (
	// TxDefault opens a transaction with the engine's default isolation.
	TxDefault TxMode = iota

	// TxConsistent asks for a consistent (repeatable read) view of the
	// database for the lifetime of the transaction.
	TxConsistent
)

func (m TxMode) String() string {
	if m == TxConsistent {
		return "consistent"
	}
	return "default"
}

// Lang identifies the query language spoken by a Connection.
type Lang int

const (
	LangUnknown Lang = iota
	LangSQL
)

func (l Lang) String() string {
	if l == LangSQL {
		return "sql"
	}
	return "unknown"
}

// Variant identifies the dialect of a Connection.
type Variant int

const (
	VariantUnknown Variant = iota
	VariantSQLite
	VariantMySQL
	VariantPostgres
)

func (v Variant) String() string {
	switch v {
	case VariantSQLite:
		return "sqlite"
	case VariantMySQL:
		return "mysql"
	case VariantPostgres:
		return "postgres"
	default:
		return "unknown"
	}
}

// QueryLog receives every statement text before it is sent to the engine.
type QueryLog func(conn Connection, query string)

// ErrorLog receives the status code and message of every failure recorded
// on a connection.
type ErrorLog func(conn Connection, sqlstate, message string)

// NoticeLog receives informational messages emitted by the server.
type NoticeLog func(conn Connection, notice string)

// Engine is a factory for Connections to one database product.
// Engines are process-wide singletons obtained through a Registry.
type Engine interface {
	// Name is the engine's canonical name.
	Name() string

	// Schemes lists the URI schemes the engine answers to.
	Schemes() []string

	// Create returns a new, unconnected Connection holding one reference.
	Create() Connection
}

// Connection is one logical link to a database.
//
// Every failing operation records its status code and message on the
// connection (see SQLState and ErrorMessage) and reports them to the
// error log, if one is set, before it returns.
//
// A Connection is not safe for concurrent use. Callers sharing one
// Connection between goroutines serialize access with Lock and Unlock.
type Connection interface {
	// Lifecycle
	Connect(ctx context.Context, uri *URI) error
	Retain() Connection
	Disconnect() error
	Refs() int32

	// Advisory locking
	Lock()
	Unlock()
	TryLock() bool

	// Statements
	Escape(buf, from []byte) int
	Execute(ctx context.Context, query string) error
	Fetch(ctx context.Context, query string) (Payload, error)
	NewStatement(text string) Statement

	// Transactions
	Begin(ctx context.Context, mode TxMode) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
	Deadlocked() bool
	Depth() int

	// Last error
	SQLState() string
	ErrorMessage() string
	LastError() error

	// Schema version bookkeeping
	SchemaVersion(ctx context.Context, identifier string) (int, error)
	SetSchemaVersion(ctx context.Context, identifier string, version int) (int, error)
	CreateSchemaTable(ctx context.Context) error

	// Logging and observation
	SetQueryLog(fn QueryLog)
	SetErrorLog(fn ErrorLog)
	SetNoticeLog(fn NoticeLog)
	SetLogger(logger Logger)
	SetObserver(observer Observer)

	// Identification
	Lang() Lang
	Variant() Variant

	// Caller data
	UserData() interface{}
	SetUserData(data interface{})
}

// GormProvider is implemented by connections that can expose their link
// through GORM. The returned *gorm.DB runs on the same underlying session,
// so it shares any transaction opened with Begin.
type GormProvider interface {
	Gorm() (*gorm.DB, error)
}

// Statement is either a pending statement text or an executed result set.
//
// After SetResults the cursor is positioned on the first row, if there is
// one. A typical read loop is:
//
//	for !stmt.EOF() {
//	    name := database.String(stmt, 0)
//	    if _, err := stmt.Next(); err != nil {
//	        return err
//	    }
//	}
type Statement interface {
	// Lifetime
	Retain() Statement
	Release() error

	Connection() Connection
	Text() string

	// SetResults installs a new result payload, releasing the previous one
	// and detaching any Field obtained from it.
	SetResults(payload Payload) error

	// Shape
	Columns() int
	Rows() int
	Affected() int64
	Field(col int) (Field, error)

	// Values of the current row
	Null(col int) bool
	Value(col int, buf []byte) int
	Bytes(col int) []byte
	Len(col int) int

	// Cursor
	EOF() bool
	Next() (bool, error)
	Cur() int
	Seek(row int) error
	Rewind() error
}

// Field describes one column of a Statement's current result.
// Lookups fail with ErrDetached once the Statement is released or its
// results are replaced.
type Field interface {
	Index() int
	Name() (string, error)
	Width() (int, error)
	Release()
}

// Payload is an engine-specific result set installed on a Statement.
//
// A payload is positioned on its first row, if any, when it is returned.
// Rows is the number of rows known so far: the full count for engines that
// materialize results, the rows read so far for streaming engines. Bytes
// returns nil for NULL values and when there is no current row.
type Payload interface {
	Columns() int
	Rows() int
	Affected() int64
	Name(col int) string
	Width(col int) int

	EOF() bool
	Next() (bool, error)
	Cur() int
	Seek(row int) error

	Null(col int) bool
	Bytes(col int) []byte

	Close() error
}
