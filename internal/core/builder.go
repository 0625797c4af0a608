package core

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/coregx/fabrica/internal/dialects"
)

// Combinator is the boolean operator used to join all top-level WHERE
// fragments of one statement. It applies between distinct condition calls;
// field lists inside a single typed call are always OR'd regardless of it.
type Combinator string

const (
	// And joins where fragments with AND (the default).
	And Combinator = "AND"
	// Or joins where fragments with OR.
	Or Combinator = "OR"
)

// Builder accumulates statement clauses and named parameters, then renders
// them into SELECT, COUNT, INSERT, UPDATE, or DELETE statements. A builder is
// mutated exclusively through its own methods and is not safe for concurrent
// use; each instance belongs to a single caller for its whole lifetime.
//
// Rendering never mutates the builder, so the same accumulated state can be
// rendered repeatedly and into several statement kinds (a SELECT and a COUNT
// sharing one WHERE, for instance).
//
// When tx is not nil, all statements built by this builder execute within
// that transaction.
type Builder struct {
	db      *DB     // nil for detached, render-only builders
	tx      *sql.Tx // nil for non-transactional builders
	ctx     context.Context
	dialect dialects.Dialect

	table          string   // quoted at set time, optionally followed by an alias
	joins          []string // raw join fragments, order preserved
	wheres         []string // rendered condition fragments, order preserved
	sets           []string // rendered assignment fragments, order preserved
	returns        []string // nil means the all-columns sentinel "*"
	orderBy        string
	groupBy        string
	combinator     Combinator
	distinct       bool
	distinctColumn string // COUNT(DISTINCT col) and implies DISTINCT for SELECT
	limit          string // dialect-rendered LIMIT fragment, empty when unset
	params         Params
	seq            int // generated parameter counter, instance-scoped
}

// NewBuilder creates a detached builder that can render statements but not
// execute them. Detached builders use the MySQL dialect. Execution methods on
// a detached builder panic with ErrNoExecutor.
func NewBuilder() *Builder {
	return &Builder{
		dialect:    dialects.GetDialect("mysql"),
		combinator: And,
		params:     Params{},
	}
}

// Builder returns a statement builder bound to this database.
func (db *DB) Builder() *Builder {
	return &Builder{
		db:         db,
		ctx:        db.ctx,
		dialect:    db.dialect,
		combinator: And,
		params:     Params{},
	}
}

// Builder returns a statement builder whose statements execute within this
// transaction. The builder inherits the transaction's context.
func (tx *Tx) Builder() *Builder {
	b := tx.db.Builder()
	b.tx = tx.tx
	b.ctx = tx.ctx
	return b
}

// WithContext sets the context carried into every statement built by this
// builder.
func (b *Builder) WithContext(ctx context.Context) *Builder {
	b.ctx = ctx
	return b
}

// From sets the target table. The table name is trimmed and quoted with the
// dialect's identifier quotes; identifier quoting is the builder's
// responsibility for this one field. An optional alias is appended unquoted.
func (b *Builder) From(table string, alias ...string) *Builder {
	b.table = quoteIdentifier(table, b.dialect)
	if len(alias) > 0 && strings.TrimSpace(alias[0]) != "" {
		b.table += " " + strings.TrimSpace(alias[0])
	}
	return b
}

// Returns replaces the list of returned columns. Arguments may be strings or
// []string and are flattened in order. Calling with zero effective columns is
// caller misuse and panics with ErrEmptyReturns.
func (b *Builder) Returns(cols ...interface{}) *Builder {
	flat := flattenColumns(cols)
	if len(flat) == 0 {
		panic(ErrEmptyReturns)
	}
	b.returns = flat
	return b
}

// OrderBy replaces the ORDER BY clause with the given columns joined by
// commas. Each call replaces the previous value rather than appending.
func (b *Builder) OrderBy(cols ...interface{}) *Builder {
	b.orderBy = strings.Join(flattenColumns(cols), ", ")
	return b
}

// GroupBy replaces the GROUP BY clause with the given columns joined by
// commas. Each call replaces the previous value rather than appending.
func (b *Builder) GroupBy(cols ...interface{}) *Builder {
	b.groupBy = strings.Join(flattenColumns(cols), ", ")
	return b
}

// Distinct toggles SELECT DISTINCT. With no argument the flag is enabled.
func (b *Builder) Distinct(on ...bool) *Builder {
	b.distinct = true
	if len(on) > 0 {
		b.distinct = on[0]
	}
	return b
}

// DistinctOn records a column for COUNT(DISTINCT column) counting. A
// non-empty column also switches SELECT rendering to DISTINCT.
func (b *Builder) DistinctOn(column string) *Builder {
	b.distinctColumn = strings.TrimSpace(column)
	return b
}

// Limit stores a LIMIT clause for max rows starting at the optional offset.
// A max of zero or less clears any previously stored limit, so pagination can
// be switched off again on a reused builder. Both values are integers by
// construction; this is the one clause that is never parameter-bound.
func (b *Builder) Limit(max int, offset ...int) *Builder {
	if max <= 0 {
		b.limit = ""
		return b
	}
	off := 0
	if len(offset) > 0 && offset[0] > 0 {
		off = offset[0]
	}
	b.limit = b.dialect.LimitSQL(off, max)
	return b
}

// Combine sets the boolean combinator joining all top-level where fragments.
func (b *Builder) Combine(op Combinator) *Builder {
	b.combinator = op
	return b
}

// CreateParam registers value under a fresh generated key and returns the
// ready-to-embed {:name} token. Generated keys come from an instance-scoped
// monotonic counter and never collide with each other or with caller-supplied
// keys bound on the same builder.
func (b *Builder) CreateParam(value interface{}) string {
	for {
		b.seq++
		name := "p" + strconv.Itoa(b.seq)
		if _, exists := b.params[name]; exists {
			continue
		}
		b.params[name] = value
		return paramToken(name)
	}
}

// BindValue binds value under a caller-supplied key. The key may be given as
// a bare name, with a ":" prefix, or in full {:name} token form; the token
// wrapper is added when embedding regardless. Binding an existing key
// overwrites its value (last write wins).
func (b *Builder) BindValue(key string, value interface{}) *Builder {
	b.params[canonicalKey(key)] = value
	return b
}

// Bind merges the given parameter maps into the builder's parameters,
// overwriting existing keys.
func (b *Builder) Bind(params ...Params) *Builder {
	for _, p := range params {
		for k, v := range p {
			b.params[canonicalKey(k)] = v
		}
	}
	return b
}

// Params returns the builder's named parameter map. The map is live state,
// not a copy; rendered queries receive independent copies.
func (b *Builder) Params() Params {
	return b.params
}

// flattenColumns flattens a mixed list of string and []string arguments into
// one ordered column list. Any other argument type is caller misuse.
func flattenColumns(cols []interface{}) []string {
	flat := make([]string, 0, len(cols))
	for _, col := range cols {
		switch v := col.(type) {
		case string:
			flat = append(flat, v)
		case []string:
			flat = append(flat, v...)
		default:
			panic(WrapError(ErrInvalidField, fmt.Sprintf("unexpected column argument %T", col)))
		}
	}
	return flat
}

// fieldList normalizes the field argument of a condition to a list of column
// names. Conditions accept a single name or a list of names; anything else
// panics with ErrInvalidField.
func fieldList(field interface{}) []string {
	switch f := field.(type) {
	case string:
		return []string{f}
	case []string:
		if len(f) == 0 {
			panic(WrapError(ErrInvalidField, "empty field list"))
		}
		return f
	default:
		panic(WrapError(ErrInvalidField, fmt.Sprintf("unexpected field argument %T", field)))
	}
}

// pushCondition renders one fragment per field and appends the result to the
// where list. A single field contributes its fragment directly; multiple
// fields are OR'd together inside one parenthesized fragment, regardless of
// the builder's combinator, which only applies between fragments.
func (b *Builder) pushCondition(fields []string, render func(field string) string) {
	if len(fields) == 1 {
		b.wheres = append(b.wheres, render(fields[0]))
		return
	}
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = render(f)
	}
	b.wheres = append(b.wheres, "("+strings.Join(parts, " OR ")+")")
}
