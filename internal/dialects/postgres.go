package dialects

import (
	"fmt"
	"strings"
)

// PostgresDialect implements PostgreSQL-specific SQL dialect.
type PostgresDialect struct{}

func init() {
	RegisterDialect("postgres", &PostgresDialect{})
	RegisterDialect("postgresql", &PostgresDialect{})
}

// QuoteIdentifier quotes a PostgreSQL identifier using double quotes.
func (d *PostgresDialect) QuoteIdentifier(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Placeholder returns PostgreSQL placeholder format ($1, $2, etc.).
func (d *PostgresDialect) Placeholder(index int) string {
	return fmt.Sprintf("$%d", index)
}

// LimitSQL renders the standard form: LIMIT count OFFSET offset.
func (d *PostgresDialect) LimitSQL(offset, limit int) string {
	return fmt.Sprintf("LIMIT %d OFFSET %d", limit, offset)
}

// QuoteValue renders a debug literal using standard quote doubling.
func (d *PostgresDialect) QuoteValue(v interface{}) string {
	return quoteLiteral(v, doubleSingleQuotes)
}
