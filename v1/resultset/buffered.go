package resultset

import (
	"database/sql"

	"github.com/Aleph-Alpha/sqlstd/v1/database"
)

// Buffered is a materialised result. It is positioned on its first row
// when created and supports Seek to any row, or to Rows() for the end.
type Buffered struct {
	names    []string
	widths   []int
	rows     [][]Cell
	affected int64
	cur      int
}

// New returns an empty result with the given column names.
func New(names ...string) *Buffered {
	return &Buffered{
		names:  names,
		widths: make([]int, len(names)),
	}
}

// Affected returns a result without columns reporting n touched rows, as
// produced by statements that return no rows.
func Affected(n int64) *Buffered {
	return &Buffered{affected: n}
}

// Append adds a row. Missing trailing cells read as NULL, surplus cells
// are dropped.
func (b *Buffered) Append(cells ...Cell) {
	row := make([]Cell, len(b.names))
	copy(row, cells)
	for i, c := range row {
		if len(c.Data) > b.widths[i] {
			b.widths[i] = len(c.Data)
		}
	}
	b.rows = append(b.rows, row)
}

// SetAffected sets the affected row count.
func (b *Buffered) SetAffected(n int64) {
	b.affected = n
}

// Collect reads every remaining row from rows into a Buffered and closes
// rows.
func Collect(rows *sql.Rows) (*Buffered, error) {
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	b := New(names...)

	dest, ptrs := scanTargets(len(names))
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		cells := make([]Cell, len(dest))
		for i, v := range dest {
			cells[i] = FromValue(v)
		}
		b.Append(cells...)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return b, nil
}

func scanTargets(n int) ([]interface{}, []interface{}) {
	dest := make([]interface{}, n)
	ptrs := make([]interface{}, n)
	for i := range dest {
		ptrs[i] = &dest[i]
	}
	return dest, ptrs
}

func (b *Buffered) Columns() int    { return len(b.names) }
func (b *Buffered) Rows() int       { return len(b.rows) }
func (b *Buffered) Affected() int64 { return b.affected }

func (b *Buffered) Name(col int) string {
	return b.names[col]
}

// Width returns the length of the longest value in the column.
func (b *Buffered) Width(col int) int {
	return b.widths[col]
}

func (b *Buffered) EOF() bool {
	return b.cur >= len(b.rows)
}

func (b *Buffered) Next() (bool, error) {
	if b.cur < len(b.rows) {
		b.cur++
	}
	return b.cur < len(b.rows), nil
}

func (b *Buffered) Cur() int {
	return b.cur
}

func (b *Buffered) Seek(row int) error {
	if row < 0 || row > len(b.rows) {
		return database.Errorf(database.KindEngine, database.StateGeneral,
			"row %d is out of range [0, %d]", row, len(b.rows))
	}
	b.cur = row
	return nil
}

func (b *Buffered) Null(col int) bool {
	return !b.rows[b.cur][col].Valid
}

func (b *Buffered) Bytes(col int) []byte {
	c := b.rows[b.cur][col]
	if !c.Valid {
		return nil
	}
	if c.Data == nil {
		return []byte{}
	}
	return c.Data
}

func (b *Buffered) Close() error {
	b.rows = nil
	b.cur = 0
	return nil
}
