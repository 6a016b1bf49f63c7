package resultset

import (
	"database/sql"

	"github.com/Aleph-Alpha/sqlstd/v1/database"
)

// Stream walks a *sql.Rows one row at a time. The row count grows as the
// cursor advances and is final once EOF reports true, at which point the
// rows are closed. Seek always fails with database.ErrNotSeekable.
type Stream struct {
	rows   *sql.Rows
	names  []string
	widths []int
	row    []Cell

	dest []interface{}
	ptrs []interface{}

	cur      int
	eof      bool
	affected int64

	// SeekMessage is the message of the error Seek returns.
	SeekMessage string
}

// NewStream wraps rows and steps onto the first row. On error rows is
// closed.
func NewStream(rows *sql.Rows) (*Stream, error) {
	names, err := rows.Columns()
	if err != nil {
		_ = rows.Close()
		return nil, err
	}
	s := &Stream{
		rows:        rows,
		names:       names,
		widths:      make([]int, len(names)),
		row:         make([]Cell, len(names)),
		SeekMessage: "result cursor is forward-only",
	}
	s.dest, s.ptrs = scanTargets(len(names))
	if err := s.step(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	return s, nil
}

func (s *Stream) step() error {
	if s.rows.Next() {
		if err := s.rows.Scan(s.ptrs...); err != nil {
			return err
		}
		for i, v := range s.dest {
			s.row[i] = Cell{Data: AppendValue(s.row[i].Data[:0], v), Valid: v != nil}
			if len(s.row[i].Data) > s.widths[i] {
				s.widths[i] = len(s.row[i].Data)
			}
		}
		return nil
	}
	s.eof = true
	if err := s.rows.Err(); err != nil {
		return err
	}
	return s.rows.Close()
}

func (s *Stream) Columns() int { return len(s.names) }

// Rows returns the number of rows seen so far.
func (s *Stream) Rows() int {
	if s.eof {
		return s.cur
	}
	return s.cur + 1
}

func (s *Stream) Affected() int64 { return s.affected }

// SetAffected sets the affected row count.
func (s *Stream) SetAffected(n int64) {
	s.affected = n
}

func (s *Stream) Name(col int) string {
	return s.names[col]
}

// Width returns the length of the longest value seen so far.
func (s *Stream) Width(col int) int {
	return s.widths[col]
}

func (s *Stream) EOF() bool {
	return s.eof
}

func (s *Stream) Next() (bool, error) {
	if s.eof {
		return false, nil
	}
	s.cur++
	if err := s.step(); err != nil {
		s.eof = true
		_ = s.rows.Close()
		return false, err
	}
	return !s.eof, nil
}

func (s *Stream) Cur() int {
	return s.cur
}

func (s *Stream) Seek(row int) error {
	return database.NewError(database.KindNotSeekable, database.StateNotSeekable, s.SeekMessage)
}

func (s *Stream) Null(col int) bool {
	return !s.row[col].Valid
}

func (s *Stream) Bytes(col int) []byte {
	c := s.row[col]
	if !c.Valid {
		return nil
	}
	if c.Data == nil {
		return []byte{}
	}
	return c.Data
}

func (s *Stream) Close() error {
	s.eof = true
	return s.rows.Close()
}
