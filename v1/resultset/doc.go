// Package resultset provides the result payloads the engine adapters hand
// to database statements.
//
// Buffered holds a fully materialised result and supports random access
// through Seek. Stream walks a *sql.Rows forward only and fails Seek with
// database.ErrNotSeekable. Both expose every value in its text form, the
// way an interactive client prints it: NULL stays distinguishable from the
// empty string, integers and floats are rendered in decimal, timestamps
// as "2006-01-02 15:04:05" with fractional seconds when present.
//
// Basic usage:
//
//	rows, err := conn.QueryContext(ctx, "SELECT id, name FROM items")
//	if err != nil {
//	    return nil, err
//	}
//	payload, err := resultset.Collect(rows)
package resultset
