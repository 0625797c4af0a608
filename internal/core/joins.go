package core

// Join appends a raw join fragment verbatim and merges any given parameter
// maps. The fragment should carry its own JOIN keyword, e.g.
// "JOIN orders o ON o.user_id = u.id".
func (b *Builder) Join(clause string, params ...Params) *Builder {
	b.joins = append(b.joins, clause)
	b.Bind(params...)
	return b
}

// InnerJoin prepends INNER JOIN to the clause and appends it.
func (b *Builder) InnerJoin(clause string, params ...Params) *Builder {
	return b.Join("INNER JOIN "+clause, params...)
}

// LeftJoin prepends LEFT JOIN to the clause and appends it.
func (b *Builder) LeftJoin(clause string, params ...Params) *Builder {
	return b.Join("LEFT JOIN "+clause, params...)
}

// RightJoin prepends RIGHT JOIN to the clause and appends it.
func (b *Builder) RightJoin(clause string, params ...Params) *Builder {
	return b.Join("RIGHT JOIN "+clause, params...)
}

// OuterJoin prepends OUTER JOIN to the clause and appends it.
func (b *Builder) OuterJoin(clause string, params ...Params) *Builder {
	return b.Join("OUTER JOIN "+clause, params...)
}
