package database

import (
	"context"
	"fmt"
	"strconv"
)

// Template placeholders understood by Format, Build and the *f helpers:
//
//	%s  string, escaped with the connection's Escape
//	%Q  string, escaped and single-quoted; a nil argument becomes NULL
//	%r  string inserted verbatim
//	%d  signed integer (%i is a synonym)
//	%u  unsigned integer
//	%f  floating point number
//	%%  a literal percent sign
//
// Strings are accepted as string, []byte or fmt.Stringer.

// AppendFormat expands template and appends the result to dst.
func AppendFormat(conn Connection, dst []byte, template string, args ...interface{}) ([]byte, error) {
	next := 0
	arg := func(verb byte) (interface{}, error) {
		if next >= len(args) {
			return nil, Errorf(KindFormat, StateSyntax, "missing argument for %%%c", verb)
		}
		a := args[next]
		next++
		return a, nil
	}

	for i := 0; i < len(template); i++ {
		c := template[i]
		if c != '%' {
			dst = append(dst, c)
			continue
		}
		i++
		if i >= len(template) {
			return dst, NewError(KindFormat, StateSyntax, "query template ends with a bare %")
		}
		verb := template[i]
		if verb == '%' {
			dst = append(dst, '%')
			continue
		}

		a, err := arg(verb)
		if err != nil {
			return dst, err
		}

		switch verb {
		case 's':
			s, ok := stringArg(a)
			if !ok {
				return dst, Errorf(KindFormat, StateSyntax, "%%s expects a string, got %T", a)
			}
			dst = appendEscaped(conn, dst, s)
		case 'Q':
			if a == nil {
				dst = append(dst, "NULL"...)
				continue
			}
			s, ok := stringArg(a)
			if !ok {
				return dst, Errorf(KindFormat, StateSyntax, "%%Q expects a string, got %T", a)
			}
			dst = append(dst, '\'')
			dst = appendEscaped(conn, dst, s)
			dst = append(dst, '\'')
		case 'r':
			s, ok := stringArg(a)
			if !ok {
				return dst, Errorf(KindFormat, StateSyntax, "%%r expects a string, got %T", a)
			}
			dst = append(dst, s...)
		case 'd', 'i':
			n, ok := signedArg(a)
			if !ok {
				return dst, Errorf(KindFormat, StateSyntax, "%%%c expects an integer, got %T", verb, a)
			}
			dst = strconv.AppendInt(dst, n, 10)
		case 'u':
			n, ok := unsignedArg(a)
			if !ok {
				return dst, Errorf(KindFormat, StateSyntax, "%%u expects a non-negative integer, got %T", a)
			}
			dst = strconv.AppendUint(dst, n, 10)
		case 'f':
			f, ok := floatArg(a)
			if !ok {
				return dst, Errorf(KindFormat, StateSyntax, "%%f expects a number, got %T", a)
			}
			dst = strconv.AppendFloat(dst, f, 'g', -1, 64)
		default:
			return dst, Errorf(KindFormat, StateSyntax, "unrecognised placeholder %%%c in query template", verb)
		}
	}

	if next < len(args) {
		return dst, Errorf(KindFormat, StateSyntax, "query template uses %d of %d arguments", next, len(args))
	}
	return dst, nil
}

// Format expands template into buf and NUL-terminates it. It returns the
// size needed for the complete result including the terminator. When buf
// is nil or too small nothing but a leading NUL is written, so a caller
// can size a buffer with a first call and fill it with a second.
func Format(conn Connection, buf []byte, template string, args ...interface{}) (int, error) {
	out, err := AppendFormat(conn, nil, template, args...)
	if err != nil {
		return 0, err
	}
	need := len(out) + 1
	if len(buf) < need {
		if len(buf) > 0 {
			buf[0] = 0
		}
		return need, nil
	}
	copy(buf, out)
	buf[len(out)] = 0
	return need, nil
}

// Build expands template into a query string.
func Build(conn Connection, template string, args ...interface{}) (string, error) {
	out, err := AppendFormat(conn, nil, template, args...)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// EscapeString escapes s for inclusion between single quotes.
func EscapeString(conn Connection, s string) string {
	return string(appendEscaped(conn, nil, s))
}

// appendEscaped sizes with a nil buffer first, then fills.
func appendEscaped(conn Connection, dst []byte, s string) []byte {
	from := []byte(s)
	need := conn.Escape(nil, from)
	start := len(dst)
	if cap(dst)-start < need {
		grown := make([]byte, start, start+need)
		copy(grown, dst)
		dst = grown
	}
	buf := dst[start : start+need]
	n := conn.Escape(buf, from)
	if n <= 0 {
		return dst
	}
	return dst[:start+n-1]
}

// Executef expands template and executes the result.
func Executef(ctx context.Context, conn Connection, template string, args ...interface{}) error {
	query, err := Build(conn, template, args...)
	if err != nil {
		return recordOn(conn, err)
	}
	return conn.Execute(ctx, query)
}

// Query executes a statement that produces rows and returns it as a
// Statement positioned on the first row. Release the Statement when done.
func Query(ctx context.Context, conn Connection, query string) (Statement, error) {
	stmt := conn.NewStatement(query)
	payload, err := conn.Fetch(ctx, query)
	if err != nil {
		_ = stmt.Release()
		return nil, err
	}
	if err := stmt.SetResults(payload); err != nil {
		_ = stmt.Release()
		return nil, err
	}
	return stmt, nil
}

// Queryf expands template and runs it through Query.
func Queryf(ctx context.Context, conn Connection, template string, args ...interface{}) (Statement, error) {
	query, err := Build(conn, template, args...)
	if err != nil {
		return nil, recordOn(conn, err)
	}
	return Query(ctx, conn, query)
}

// Prepare creates a Statement holding template for later use with Exec.
func Prepare(conn Connection, template string) Statement {
	return conn.NewStatement(template)
}

// Exec expands the statement's text with args, executes it and installs
// the result on the statement. Any previous result is released first.
func Exec(ctx context.Context, stmt Statement, args ...interface{}) error {
	conn := stmt.Connection()
	if conn == nil {
		return NewError(KindReleased, StateReleased, "statement has been released")
	}
	if err := stmt.SetResults(nil); err != nil {
		return err
	}
	query, err := Build(conn, stmt.Text(), args...)
	if err != nil {
		return recordOn(conn, err)
	}
	payload, err := conn.Fetch(ctx, query)
	if err != nil {
		return err
	}
	return stmt.SetResults(payload)
}

func recordOn(conn Connection, err error) error {
	if rec, ok := conn.(ErrorRecorder); ok {
		return rec.RecordError(err)
	}
	return err
}

func stringArg(a interface{}) (string, bool) {
	switch v := a.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	case fmt.Stringer:
		return v.String(), true
	}
	return "", false
}

func signedArg(a interface{}) (int64, bool) {
	switch v := a.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint:
		if uint64(v) <= 1<<63-1 {
			return int64(v), true
		}
	case uint64:
		if v <= 1<<63-1 {
			return int64(v), true
		}
	}
	return 0, false
}

func unsignedArg(a interface{}) (uint64, bool) {
	switch v := a.(type) {
	case uint:
		return uint64(v), true
	case uint8:
		return uint64(v), true
	case uint16:
		return uint64(v), true
	case uint32:
		return uint64(v), true
	case uint64:
		return v, true
	}
	if n, ok := signedArg(a); ok && n >= 0 {
		return uint64(n), true
	}
	return 0, false
}

func floatArg(a interface{}) (float64, bool) {
	switch v := a.(type) {
	case float32:
		return float64(v), true
	case float64:
		return v, true
	}
	if n, ok := signedArg(a); ok {
		return float64(n), true
	}
	return 0, false
}
