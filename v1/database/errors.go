package database

import (
	"errors"
	"fmt"
)

// SQLSTATE-like status codes reported by the core and the bundled engines.
// Engine adapters report the server's own code whenever one is available.
const (
	StateOK                = "00000"
	StateUnsupportedScheme = "08000"
	StateInvalidURI        = "08001"
	StateNotConnected      = "08003"
	StateConnectionFailure = "08006"
	StateNestedTransaction = "25000"
	StateRetriesExceeded   = "40000"
	StateSerialization     = "40001"
	StateDeadlock          = "40P01"
	StateSyntax            = "42601"
	StateMissingPath       = "X0000"
	StateNotSeekable       = "X0001"
	StateDetached          = "X0002"
	StateReleased          = "X0003"
	StateGeneral           = "HY000"
)

// Kind classifies an Error independently of the engine that raised it.
type Kind int

const (
	KindEngine Kind = iota
	KindUnsupportedScheme
	KindInvalidURI
	KindConnectionFailure
	KindNotConnected
	KindNestedTransaction
	KindDeadlock
	KindFormat
	KindNotSeekable
	KindRetriesExceeded
	KindAborted
	KindDetached
	KindReleased
	KindMigration
)

// Sentinel errors, one per Kind. Every *Error matches the sentinel of its
// kind through errors.Is, so callers never need to compare status codes.
var (
	ErrEngine            = errors.New("engine error")
	ErrUnsupportedScheme = errors.New("unsupported URI scheme")
	ErrInvalidURI        = errors.New("invalid URI")
	ErrConnectionFailure = errors.New("connection failure")
	ErrNotConnected      = errors.New("not connected")
	ErrNestedTransaction = errors.New("nested transaction")
	ErrDeadlock          = errors.New("deadlock or serialization conflict")
	ErrFormat            = errors.New("query format error")
	ErrNotSeekable       = errors.New("cursor is not seekable")
	ErrRetriesExceeded   = errors.New("transaction retries exceeded")
	ErrAborted           = errors.New("transaction aborted")
	ErrDetached          = errors.New("field is detached from its statement")
	ErrReleased          = errors.New("handle has been released")
	ErrMigration         = errors.New("schema migration failed")
)

var kindSentinels = map[Kind]error{
	KindEngine:            ErrEngine,
	KindUnsupportedScheme: ErrUnsupportedScheme,
	KindInvalidURI:        ErrInvalidURI,
	KindConnectionFailure: ErrConnectionFailure,
	KindNotConnected:      ErrNotConnected,
	KindNestedTransaction: ErrNestedTransaction,
	KindDeadlock:          ErrDeadlock,
	KindFormat:            ErrFormat,
	KindNotSeekable:       ErrNotSeekable,
	KindRetriesExceeded:   ErrRetriesExceeded,
	KindAborted:           ErrAborted,
	KindDetached:          ErrDetached,
	KindReleased:          ErrReleased,
	KindMigration:         ErrMigration,
}

var kindNames = map[Kind]string{
	KindEngine:            "engine",
	KindUnsupportedScheme: "unsupported_scheme",
	KindInvalidURI:        "invalid_uri",
	KindConnectionFailure: "connection_failure",
	KindNotConnected:      "not_connected",
	KindNestedTransaction: "nested_transaction",
	KindDeadlock:          "deadlock",
	KindFormat:            "format",
	KindNotSeekable:       "not_seekable",
	KindRetriesExceeded:   "retries_exceeded",
	KindAborted:           "aborted",
	KindDetached:          "detached",
	KindReleased:          "released",
	KindMigration:         "migration",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is the error type returned by every fallible operation of the core
// and of the engine adapters.
type Error struct {
	// Kind is the engine-independent classification.
	Kind Kind

	// SQLState is the five character status code.
	SQLState string

	// Message is the human-readable description, as reported by the engine
	// when the failure originated there.
	Message string

	// Native is the engine's own numeric error code, or zero.
	Native int

	// Err is the underlying driver error, if any.
	Err error
}

func (e *Error) Error() string {
	return "[" + e.SQLState + "] " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e's Kind.
func (e *Error) Is(target error) bool {
	sentinel, ok := kindSentinels[e.Kind]
	return ok && target == sentinel
}

// NewError returns an *Error of the given kind and status code.
func NewError(kind Kind, sqlstate, message string) *Error {
	if message == "" {
		message = sqlstate
	}
	return &Error{Kind: kind, SQLState: sqlstate, Message: message}
}

// Errorf is like NewError with a formatted message.
func Errorf(kind Kind, sqlstate, format string, args ...interface{}) *Error {
	return NewError(kind, sqlstate, fmt.Sprintf(format, args...))
}

// WrapError returns an *Error wrapping a driver error.
func WrapError(kind Kind, sqlstate string, native int, err error) *Error {
	e := NewError(kind, sqlstate, err.Error())
	e.Native = native
	e.Err = err
	return e
}

// AsError extracts the *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the Kind of err, or false if err carries none.
func KindOf(err error) (Kind, bool) {
	if e, ok := AsError(err); ok {
		return e.Kind, true
	}
	return 0, false
}

// SQLStateOf returns the status code for err: StateOK for nil, the code of
// an *Error, or StateGeneral for anything else.
func SQLStateOf(err error) string {
	if err == nil {
		return StateOK
	}
	if e, ok := AsError(err); ok {
		return e.SQLState
	}
	return StateGeneral
}

// IsRetryable reports whether err signals a lock conflict that a new
// transaction attempt may resolve.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrDeadlock)
}
