// Package dialects provides database-specific SQL dialect implementations for
// MySQL, PostgreSQL, and SQLite, handling identifier quoting, placeholders,
// LIMIT rendering, and debug-only value quoting.
package dialects

// Dialect defines database-specific behaviors.
type Dialect interface {
	// QuoteIdentifier wraps a table or column name in the dialect's
	// identifier quote characters.
	QuoteIdentifier(string) string

	// Placeholder returns the positional placeholder for the i-th bound
	// parameter (1-based).
	Placeholder(int) string

	// LimitSQL renders a LIMIT clause for the given offset and row count.
	// Both values are integers by construction; this is the one clause that
	// is never parameter-bound.
	LimitSQL(offset, limit int) string

	// QuoteValue renders a value as an inline SQL literal. The result is
	// unsafe for execution and exists only for debug rendering (logging,
	// statement hashing).
	QuoteValue(interface{}) string
}

var dialects = make(map[string]Dialect)

// RegisterDialect registers a database dialect by driver name.
func RegisterDialect(name string, d Dialect) {
	dialects[name] = d
}

// GetDialect retrieves a registered dialect by driver name, panics if not found.
func GetDialect(name string) Dialect {
	if d, ok := dialects[name]; ok {
		return d
	}
	panic("unsupported dialect: " + name)
}

// HasDialect reports whether a dialect is registered for the driver name.
func HasDialect(name string) bool {
	_, ok := dialects[name]
	return ok
}
