package core

import (
	"strconv"
	"strings"
	"time"
)

// Row represents a single fetched result row keyed by column name. Values
// hold whatever the driver produced, with []byte normalized to string during
// scanning. Typed accessors coerce on read and return the zero value for
// NULL or missing columns, so dynamic results can be consumed without
// per-column error handling.
//
// Example:
//
//	row := b.From("users").WhereInteger("id", 1).SelectRow()
//	name := row.String("name")
//	if !row.IsNull("email") {
//	    email := row.String("email")
//	}
type Row map[string]interface{}

// Has checks if the column exists in the row (regardless of NULL status).
func (r Row) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// IsNull checks if the value for the given column is NULL or doesn't exist.
func (r Row) IsNull(key string) bool {
	v, ok := r[key]
	return !ok || v == nil
}

// Value returns the raw driver value for the given column, nil when missing.
func (r Row) Value(key string) interface{} {
	return r[key]
}

// String returns the string value for the given column.
// Returns empty string if the column doesn't exist or the value is NULL.
func (r Row) String(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		if v {
			return "true"
		}
		return "false"
	case time.Time:
		return v.Format("2006-01-02 15:04:05")
	default:
		return ""
	}
}

// Int returns the column value coerced to int64, 0 when NULL, missing, or
// not a number.
func (r Row) Int(key string) int64 {
	switch v := r[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	case bool:
		if v {
			return 1
		}
		return 0
	case string:
		n, _ := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return n
	case []byte:
		n, _ := strconv.ParseInt(strings.TrimSpace(string(v)), 10, 64)
		return n
	default:
		return 0
	}
}

// Float returns the column value coerced to float64, 0 when NULL, missing,
// or not a number.
func (r Row) Float(key string) float64 {
	switch v := r[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f
	case []byte:
		f, _ := strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
		return f
	default:
		return 0
	}
}

// Bool returns the column value coerced to bool. Numeric values are true
// when non-zero; strings follow strconv.ParseBool.
func (r Row) Bool(key string) bool {
	switch v := r[key].(type) {
	case bool:
		return v
	case int64:
		return v != 0
	case int:
		return v != 0
	case float64:
		return v != 0
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(v))
		return b
	case []byte:
		b, _ := strconv.ParseBool(strings.TrimSpace(string(v)))
		return b
	default:
		return false
	}
}

// Keys returns all column names in the row.
func (r Row) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	return keys
}

// RowMapper converts one fetched row into a caller-defined value. It is the
// row-constructor capability used by SelectAs to materialize domain objects
// from dynamic rows.
type RowMapper[T any] func(Row) T

// MapRows applies mapper to every row and returns the results in order.
func MapRows[T any](rows []Row, mapper RowMapper[T]) []T {
	out := make([]T, len(rows))
	for i, row := range rows {
		out[i] = mapper(row)
	}
	return out
}

// toInt64 coerces a fetched scalar (COUNT results, identifiers) to int64.
func toInt64(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case uint64:
		return int64(v), true
	case float64:
		return int64(v), true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return n, err == nil
	case []byte:
		n, err := strconv.ParseInt(strings.TrimSpace(string(v)), 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}
