package dialects

import (
	"fmt"
	"strings"
)

// SQLiteDialect implements SQLite-specific SQL dialect.
type SQLiteDialect struct{}

func init() {
	RegisterDialect("sqlite", &SQLiteDialect{})
	RegisterDialect("sqlite3", &SQLiteDialect{})
}

// QuoteIdentifier quotes a SQLite identifier using double quotes.
func (d *SQLiteDialect) QuoteIdentifier(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Placeholder returns SQLite placeholder format (always "?").
func (d *SQLiteDialect) Placeholder(_ int) string {
	return "?"
}

// LimitSQL renders the standard form: LIMIT count OFFSET offset.
func (d *SQLiteDialect) LimitSQL(offset, limit int) string {
	return fmt.Sprintf("LIMIT %d OFFSET %d", limit, offset)
}

// QuoteValue renders a debug literal using standard quote doubling.
func (d *SQLiteDialect) QuoteValue(v interface{}) string {
	return quoteLiteral(v, doubleSingleQuotes)
}
