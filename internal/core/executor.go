package core

import "strings"

// FetchMode selects what Select fetches from the rendered SELECT statement.
type FetchMode int

const (
	// FetchNone executes the statement and reports the affected row count.
	FetchNone FetchMode = iota
	// FetchAll fetches every row.
	FetchAll
	// FetchRow fetches the first row.
	FetchRow
	// FetchColumn fetches the first column of every row.
	FetchColumn
	// FetchCell fetches the first column of the first row.
	FetchCell
)

// The adapter methods below never return errors: execution failures yield
// zero values (nil slice, empty Row, ok=false) and the failure is logged once
// by the query layer. Calling them on a builder with no database connection
// is caller misuse and panics with ErrNoExecutor.

// requireDB panics when the builder cannot execute statements.
func (b *Builder) requireDB() {
	if b.db == nil {
		panic(WrapError(ErrNoExecutor, "builder is not bound to a database"))
	}
}

// Select executes the rendered SELECT statement and fetches according to
// mode. FetchNone reports the affected row count the way write statements do;
// every other mode delegates to its typed convenience.
func (b *Builder) Select(mode FetchMode) interface{} {
	switch mode {
	case FetchAll:
		return b.SelectRows()
	case FetchRow:
		return b.SelectRow()
	case FetchColumn:
		return b.SelectColumn()
	case FetchCell:
		return b.SelectCell()
	default:
		b.requireDB()
		n, _ := execAffected(b.BuildSelect())
		return n
	}
}

// SelectRows executes the rendered SELECT and returns every row. A failed
// execution returns nil.
func (b *Builder) SelectRows() []Row {
	b.requireDB()
	rows, err := b.BuildSelect().Rows()
	if err != nil {
		return nil
	}
	return rows
}

// SelectRow executes the rendered SELECT and returns the first row. An empty
// result set and a failed execution both return an empty Row.
func (b *Builder) SelectRow() Row {
	b.requireDB()
	row, err := b.BuildSelect().Row()
	if err != nil {
		return Row{}
	}
	return row
}

// SelectColumn executes the rendered SELECT and returns the first column of
// every row. A failed execution returns nil.
func (b *Builder) SelectColumn() []interface{} {
	b.requireDB()
	values, err := b.BuildSelect().Column()
	if err != nil {
		return nil
	}
	return values
}

// SelectCell executes the rendered SELECT and returns the first column of the
// first row. An empty result set and a failed execution both return nil.
func (b *Builder) SelectCell() interface{} {
	b.requireDB()
	value, err := b.BuildSelect().Cell()
	if err != nil {
		return nil
	}
	return value
}

// SelectAs executes the rendered SELECT and maps every row through mapper.
func SelectAs[T any](b *Builder, mapper RowMapper[T]) []T {
	return MapRows(b.SelectRows(), mapper)
}

// Count executes the rendered COUNT statement. ok is false when execution
// fails or the statement returns no rows, which a grouped count over an empty
// set does.
func (b *Builder) Count() (int64, bool) {
	b.requireDB()
	cell, err := b.BuildCount().Cell()
	if err != nil {
		return 0, false
	}
	return toInt64(cell)
}

// Insert executes the rendered INSERT. On success it returns the driver's
// last insert id; drivers without id support still report ok=true with a zero
// id. A failed execution returns (0, false).
func (b *Builder) Insert() (int64, bool) {
	b.requireDB()
	result, err := b.BuildInsert().Exec()
	if err != nil {
		return 0, false
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, true
	}
	return id, true
}

// Update executes the rendered UPDATE and returns the affected row count.
func (b *Builder) Update() (int64, bool) {
	b.requireDB()
	return execAffected(b.BuildUpdate())
}

// Delete executes the rendered DELETE and returns the affected row count.
func (b *Builder) Delete() (int64, bool) {
	b.requireDB()
	return execAffected(b.BuildDelete())
}

// SelectInto copies the rows selected by this builder into the target table
// using INSERT INTO ... SELECT, and returns the inserted row count. With no
// column list the target's column order must match the select list.
func (b *Builder) SelectInto(target string, cols ...string) (int64, bool) {
	b.requireDB()

	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(quoteIdentifier(target, b.dialect))
	if len(cols) > 0 {
		sb.WriteString(" (")
		sb.WriteString(strings.Join(cols, ", "))
		sb.WriteString(")")
	}
	sb.WriteString(" ")
	sb.WriteString(b.BuildSelect().SQL())

	return execAffected(b.newQuery(sb.String()))
}

// execAffected runs a write statement and reports its affected row count.
// Drivers that cannot report the count still succeed with a zero count.
func execAffected(q *Query) (int64, bool) {
	result, err := q.Exec()
	if err != nil {
		return 0, false
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, true
	}
	return n, true
}
