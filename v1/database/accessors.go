package database

// String returns the column of the current row as a string; "" for NULL
// or no data.
func String(stmt Statement, col int) string {
	return string(stmt.Bytes(col))
}

// Int64 parses the column of the current row as a base-10 signed integer.
// Leading blanks are skipped and parsing stops at the first non-digit, so
// "42abc" yields 42. NULL, no data and non-numeric text yield 0.
func Int64(stmt Statement, col int) int64 {
	return parseSigned(stmt.Bytes(col))
}

// Uint64 is like Int64 for unsigned values. A negative value yields 0.
func Uint64(stmt Statement, col int) uint64 {
	n := parseSigned(stmt.Bytes(col))
	if n < 0 {
		return 0
	}
	return uint64(n)
}

func parseSigned(b []byte) int64 {
	i := 0
	for i < len(b) && (b[i] == ' ' || b[i] == '\t' || b[i] == '\n' || b[i] == '\r') {
		i++
	}
	neg := false
	if i < len(b) && (b[i] == '+' || b[i] == '-') {
		neg = b[i] == '-'
		i++
	}
	var n int64
	for ; i < len(b) && b[i] >= '0' && b[i] <= '9'; i++ {
		d := int64(b[i] - '0')
		if n > (1<<63-1-d)/10 {
			if neg {
				return -1 << 63
			}
			return 1<<63 - 1
		}
		n = n*10 + d
	}
	if neg {
		return -n
	}
	return n
}
