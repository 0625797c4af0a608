package dialects

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// quoteLiteral renders v as an inline SQL literal using escape for string
// escaping. Shared by all dialects; debug rendering only.
func quoteLiteral(v interface{}, escape func(string) string) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	case string:
		return "'" + escape(val) + "'"
	case []byte:
		return "'" + escape(string(val)) + "'"
	case time.Time:
		return "'" + val.Format("2006-01-02 15:04:05") + "'"
	case int:
		return strconv.Itoa(val)
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return "'" + escape(fmt.Sprintf("%v", val)) + "'"
	}
}

// doubleSingleQuotes escapes a string for standard SQL single-quoted literals.
func doubleSingleQuotes(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
