package resultset

import (
	"fmt"
	"strconv"
	"time"
)

// TimeLayout is the text form of timestamp values.
const TimeLayout = "2006-01-02 15:04:05.999999999"

// Cell is one column value in text form. Valid is false for NULL.
type Cell struct {
	Data  []byte
	Valid bool
}

// Text returns a non-NULL cell holding s.
func Text(s string) Cell {
	return Cell{Data: []byte(s), Valid: true}
}

// Null returns a NULL cell.
func Null() Cell {
	return Cell{}
}

// FromValue converts a value scanned from database/sql into a cell. The
// returned data never aliases src.
func FromValue(src interface{}) Cell {
	return Cell{Data: AppendValue(nil, src), Valid: src != nil}
}

// AppendValue appends the text form of src to dst. NULL appends nothing.
func AppendValue(dst []byte, src interface{}) []byte {
	switch v := src.(type) {
	case nil:
		return dst
	case []byte:
		return append(dst, v...)
	case string:
		return append(dst, v...)
	case int64:
		return strconv.AppendInt(dst, v, 10)
	case int:
		return strconv.AppendInt(dst, int64(v), 10)
	case int32:
		return strconv.AppendInt(dst, int64(v), 10)
	case uint64:
		return strconv.AppendUint(dst, v, 10)
	case float64:
		return strconv.AppendFloat(dst, v, 'g', -1, 64)
	case float32:
		return strconv.AppendFloat(dst, float64(v), 'g', -1, 32)
	case bool:
		if v {
			return append(dst, '1')
		}
		return append(dst, '0')
	case time.Time:
		return v.AppendFormat(dst, TimeLayout)
	default:
		return fmt.Append(dst, v)
	}
}
