package core

import (
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// timeKind selects which canonical string a temporal value is normalized to.
type timeKind int

const (
	kindDateTime timeKind = iota
	kindDate
	kindTime
)

// layout returns the canonical output format for the kind.
func (k timeKind) layout() string {
	switch k {
	case kindDate:
		return "2006-01-02"
	case kindTime:
		return "15:04:05"
	default:
		return "2006-01-02 15:04:05"
	}
}

// formatDecimal renders a value as a fixed-precision decimal string using "."
// as the decimal separator and no thousands separator. Non-numeric input
// coerces to 0. Integer conditions use precision 0 and share this path.
func formatDecimal(value interface{}, precision int) string {
	if precision < 0 {
		precision = 0
	}
	return strconv.FormatFloat(toFloat(value), 'f', precision, 64)
}

// toFloat converts a scalar of any supported type to float64, yielding 0 for
// anything that cannot be interpreted as a number.
func toFloat(value interface{}) float64 {
	switch v := value.(type) {
	case nil:
		return 0
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int8:
		return float64(v)
	case int16:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case uint:
		return float64(v)
	case uint8:
		return float64(v)
	case uint16:
		return float64(v)
	case uint32:
		return float64(v)
	case uint64:
		return float64(v)
	case bool:
		if v {
			return 1
		}
		return 0
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return f
	case []byte:
		return toFloat(string(v))
	default:
		return 0
	}
}

// timeOnlyLayouts are tried before the general parser so that bare clock
// strings like "15:04:05" resolve without a date component.
var timeOnlyLayouts = []string{"15:04:05", "15:04"}

// normalizeTemporal coerces a temporal input to its canonical formatted
// string. Accepted inputs: a time.Time, the literal token "now", a parseable
// date/time string, or a positive integer epoch (seconds). Unparseable input
// yields nil, which binds the parameter to NULL and disables the predicate at
// execution time rather than raising an error.
func normalizeTemporal(value interface{}, kind timeKind) interface{} {
	t, ok := parseTemporal(value)
	if !ok {
		return nil
	}
	return t.Format(kind.layout())
}

// parseTemporal interprets value as a point in time.
func parseTemporal(value interface{}) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, true
	case string:
		return parseTemporalString(v)
	case []byte:
		return parseTemporalString(string(v))
	case int:
		return epochTime(int64(v))
	case int32:
		return epochTime(int64(v))
	case int64:
		return epochTime(v)
	case uint:
		return epochTime(int64(v))
	case uint32:
		return epochTime(int64(v))
	case uint64:
		return epochTime(int64(v))
	case float64:
		// JSON-decoded numbers arrive as float64.
		return epochTime(int64(v))
	default:
		return time.Time{}, false
	}
}

// parseTemporalString parses a string representation of a point in time.
// "now" resolves to the current time; everything else goes through the
// time-only layouts first and then the permissive dateparse parser.
func parseTemporalString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if strings.EqualFold(s, "now") {
		return time.Now(), true
	}
	for _, layout := range timeOnlyLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	t, err := dateparse.ParseLocal(s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// epochTime converts a positive Unix timestamp in seconds to a time.Time.
func epochTime(sec int64) (time.Time, bool) {
	if sec <= 0 {
		return time.Time{}, false
	}
	return time.Unix(sec, 0), true
}

// emptyBound reports whether a range bound is absent. Only nil and the empty
// string count as absent; zero is a legitimate numeric bound.
func emptyBound(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []byte:
		return strings.TrimSpace(string(v)) == ""
	default:
		return false
	}
}
