package database

import (
	"sync/atomic"
)

// StateBadColumn reports a column index outside the current result.
const StateBadColumn = "07009"

// stmt is the Statement implementation shared by all engines. The engine
// specific part of a result lives in the installed Payload.
type stmt struct {
	refs    RefCount
	conn    Connection
	text    string
	payload Payload

	// generation changes whenever the payload is replaced or the statement
	// is released, detaching every Field handed out before.
	generation atomic.Uint64
}

// NewStatement returns an empty Statement owned by conn holding one
// reference. Engines return it from Connection.NewStatement.
func NewStatement(conn Connection, text string) Statement {
	s := &stmt{conn: conn, text: text}
	s.refs.Init()
	return s
}

func (s *stmt) Retain() Statement {
	if err := s.refs.Retain(); err != nil && s.conn != nil {
		_ = recordOn(s.conn, err)
	}
	return s
}

// Release drops a reference; the last one frees the result payload and
// detaches all Fields.
func (s *stmt) Release() error {
	return s.refs.Release(func() error {
		var err error
		if s.payload != nil {
			err = s.payload.Close()
			s.payload = nil
		}
		s.generation.Add(1)
		s.conn = nil
		return err
	})
}

func (s *stmt) Connection() Connection {
	return s.conn
}

func (s *stmt) Text() string {
	return s.text
}

func (s *stmt) SetResults(payload Payload) error {
	if !s.refs.Live() {
		if payload != nil {
			_ = payload.Close()
		}
		return NewError(KindReleased, StateReleased, "statement has been released")
	}
	var err error
	if s.payload != nil {
		err = s.payload.Close()
	}
	s.payload = payload
	s.generation.Add(1)
	return err
}

func (s *stmt) Columns() int {
	if s.payload == nil {
		return 0
	}
	return s.payload.Columns()
}

func (s *stmt) Rows() int {
	if s.payload == nil {
		return 0
	}
	return s.payload.Rows()
}

func (s *stmt) Affected() int64 {
	if s.payload == nil {
		return 0
	}
	return s.payload.Affected()
}

func (s *stmt) Field(col int) (Field, error) {
	if s.payload == nil || col < 0 || col >= s.payload.Columns() {
		return nil, s.fail(Errorf(KindEngine, StateBadColumn, "column %d is out of range", col))
	}
	return &columnField{owner: s, col: col, generation: s.generation.Load()}, nil
}

func (s *stmt) hasValue(col int) bool {
	return s.payload != nil && !s.payload.EOF() && col >= 0 && col < s.payload.Columns()
}

// Null reports whether the column holds NULL. Without a current row every
// column reads as NULL.
func (s *stmt) Null(col int) bool {
	if !s.hasValue(col) {
		return true
	}
	return s.payload.Null(col)
}

// Value copies the column into buf, NUL-terminated and truncated to fit,
// and returns the size needed for the whole value including the
// terminator. It returns 0 when there is no data: past the last row, or
// for a column out of range. NULL and the empty string both return 1.
func (s *stmt) Value(col int, buf []byte) int {
	if len(buf) > 0 {
		buf[0] = 0
	}
	if !s.hasValue(col) {
		return 0
	}
	if s.payload.Null(col) {
		return 1
	}
	value := s.payload.Bytes(col)
	if len(buf) > 0 {
		n := copy(buf[:len(buf)-1], value)
		buf[n] = 0
	}
	return len(value) + 1
}

// Bytes returns the raw column value, nil for NULL or no data. The slice
// is only valid until the cursor moves.
func (s *stmt) Bytes(col int) []byte {
	if !s.hasValue(col) {
		return nil
	}
	return s.payload.Bytes(col)
}

func (s *stmt) Len(col int) int {
	return len(s.Bytes(col))
}

func (s *stmt) EOF() bool {
	if s.payload == nil {
		return true
	}
	return s.payload.EOF()
}

func (s *stmt) Next() (bool, error) {
	if s.payload == nil {
		return false, nil
	}
	ok, err := s.payload.Next()
	if err != nil {
		return false, s.fail(err)
	}
	return ok, nil
}

// Cur returns the current row index, or -1 before a result is installed.
func (s *stmt) Cur() int {
	if s.payload == nil {
		return -1
	}
	return s.payload.Cur()
}

func (s *stmt) Seek(row int) error {
	if s.payload == nil {
		return s.fail(NewError(KindNotSeekable, StateNotSeekable, "statement has no result to seek"))
	}
	if err := s.payload.Seek(row); err != nil {
		return s.fail(err)
	}
	return nil
}

func (s *stmt) Rewind() error {
	return s.Seek(0)
}

func (s *stmt) fail(err error) error {
	if s.conn == nil {
		return err
	}
	return recordOn(s.conn, err)
}

// columnField refers to its statement by generation, never by payload, so
// it cannot observe a result it was not created for.
type columnField struct {
	owner      *stmt
	col        int
	generation uint64
}

func (f *columnField) attached() bool {
	return f.owner != nil && f.owner.refs.Live() && f.owner.generation.Load() == f.generation && f.owner.payload != nil
}

func (f *columnField) Index() int {
	return f.col
}

func (f *columnField) Name() (string, error) {
	if !f.attached() {
		return "", NewError(KindDetached, StateDetached, "field is detached from its statement")
	}
	return f.owner.payload.Name(f.col), nil
}

func (f *columnField) Width() (int, error) {
	if !f.attached() {
		return 0, NewError(KindDetached, StateDetached, "field is detached from its statement")
	}
	return f.owner.payload.Width(f.col), nil
}

// Release drops the field's hold on its statement.
func (f *columnField) Release() {
	f.owner = nil
}
