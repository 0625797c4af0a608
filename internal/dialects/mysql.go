package dialects

import (
	"fmt"
	"strings"
)

// MySQLDialect implements MySQL-specific SQL dialect.
type MySQLDialect struct{}

func init() {
	RegisterDialect("mysql", &MySQLDialect{})
}

// QuoteIdentifier quotes a MySQL identifier using backticks.
func (d *MySQLDialect) QuoteIdentifier(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}

// Placeholder returns MySQL placeholder format (always "?").
func (d *MySQLDialect) Placeholder(_ int) string {
	return "?"
}

// LimitSQL renders the MySQL two-argument form: LIMIT offset, count.
func (d *MySQLDialect) LimitSQL(offset, limit int) string {
	return fmt.Sprintf("LIMIT %d, %d", offset, limit)
}

// mysqlEscaper escapes characters MySQL treats specially inside
// single-quoted literals.
var mysqlEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	"\x00", `\0`,
	"\n", `\n`,
	"\r", `\r`,
	"\x1a", `\Z`,
)

// QuoteValue renders a debug literal using MySQL backslash escaping.
func (d *MySQLDialect) QuoteValue(v interface{}) string {
	return quoteLiteral(v, mysqlEscaper.Replace)
}
