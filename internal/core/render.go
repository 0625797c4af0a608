package core

import "strings"

// Statement renderers. Each Build* method is a pure read of the builder
// state: it assembles the statement text with {:name} tokens still in place
// and returns a fresh Query carrying an independent copy of the parameter
// map. Building twice without intervening mutation yields identical output,
// and one builder can render several statement kinds from the same state.

// BuildSelect renders
//
//	SELECT [DISTINCT] <returns> FROM <table> <joins> [WHERE ...]
//	[GROUP BY ...] [ORDER BY ...] [LIMIT ...]
func (b *Builder) BuildSelect() *Query {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	if b.distinct || b.distinctColumn != "" {
		sb.WriteString("DISTINCT ")
	}
	sb.WriteString(strings.Join(b.returnColumns(), ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(b.table)
	b.writeJoins(&sb)
	b.writeWhere(&sb)
	if b.groupBy != "" {
		sb.WriteString(" GROUP BY ")
		sb.WriteString(b.groupBy)
	}
	if b.orderBy != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(b.orderBy)
	}
	if b.limit != "" {
		sb.WriteString(" ")
		sb.WriteString(b.limit)
	}
	return b.newQuery(sb.String())
}

// BuildCount renders the SELECT's counting twin: same table, joins, WHERE and
// GROUP BY, with the return list replaced by COUNT(*) — or
// COUNT(DISTINCT col) when a distinct column is set — and without ORDER BY or
// LIMIT, since counting is insensitive to result order and row window.
func (b *Builder) BuildCount() *Query {
	var sb strings.Builder
	sb.WriteString("SELECT COUNT(")
	if b.distinctColumn != "" {
		sb.WriteString("DISTINCT ")
		sb.WriteString(b.distinctColumn)
	} else {
		sb.WriteString("*")
	}
	sb.WriteString(") FROM ")
	sb.WriteString(b.table)
	b.writeJoins(&sb)
	b.writeWhere(&sb)
	if b.groupBy != "" {
		sb.WriteString(" GROUP BY ")
		sb.WriteString(b.groupBy)
	}
	return b.newQuery(sb.String())
}

// BuildDelete renders
//
//	DELETE [<returns>] FROM <table> <joins> [WHERE ...]
//
// The return list is emitted only when it was explicitly set to something
// other than the all-columns sentinel; with joins this selects which joined
// table's rows are deleted. GROUP BY, ORDER BY and LIMIT never apply.
func (b *Builder) BuildDelete() *Query {
	var sb strings.Builder
	sb.WriteString("DELETE")
	if !b.returnsAllColumns() {
		sb.WriteString(" ")
		sb.WriteString(strings.Join(b.returns, ", "))
	}
	sb.WriteString(" FROM ")
	sb.WriteString(b.table)
	b.writeJoins(&sb)
	b.writeWhere(&sb)
	return b.newQuery(sb.String())
}

// BuildInsert renders the assignment form
//
//	INSERT INTO <table> [SET <assignments>]
func (b *Builder) BuildInsert() *Query {
	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(b.table)
	b.writeSet(&sb)
	return b.newQuery(sb.String())
}

// BuildUpdate renders
//
//	UPDATE <table> <joins> [SET <assignments>] [WHERE ...]
func (b *Builder) BuildUpdate() *Query {
	var sb strings.Builder
	sb.WriteString("UPDATE ")
	sb.WriteString(b.table)
	b.writeJoins(&sb)
	b.writeSet(&sb)
	b.writeWhere(&sb)
	return b.newQuery(sb.String())
}

// returnColumns resolves the return list, substituting the all-columns
// sentinel when nothing was set.
func (b *Builder) returnColumns() []string {
	if len(b.returns) == 0 {
		return []string{"*"}
	}
	return b.returns
}

// returnsAllColumns reports whether the return list is the default sentinel.
func (b *Builder) returnsAllColumns() bool {
	return len(b.returns) == 0 || (len(b.returns) == 1 && b.returns[0] == "*")
}

func (b *Builder) writeJoins(sb *strings.Builder) {
	for _, join := range b.joins {
		sb.WriteString(" ")
		sb.WriteString(join)
	}
}

// writeWhere joins all accumulated where fragments with the single stored
// combinator. There is no per-fragment override.
func (b *Builder) writeWhere(sb *strings.Builder) {
	if len(b.wheres) == 0 {
		return
	}
	sb.WriteString(" WHERE ")
	sb.WriteString(strings.Join(b.wheres, " "+string(b.combinator)+" "))
}

func (b *Builder) writeSet(sb *strings.Builder) {
	if len(b.sets) == 0 {
		return
	}
	sb.WriteString(" SET ")
	sb.WriteString(strings.Join(b.sets, ", "))
}

// newQuery packages rendered text with a snapshot of the parameters. Each
// built query owns its copy, so later builder mutations never leak into
// statements that were already rendered.
func (b *Builder) newQuery(sqlText string) *Query {
	params := make(Params, len(b.params))
	for k, v := range b.params {
		params[k] = v
	}
	return &Query{
		sql:     sqlText,
		params:  params,
		db:      b.db,
		tx:      b.tx,
		ctx:     b.ctx,
		dialect: b.dialect,
	}
}
