package core

// Typed assignment compilers, the single-field mirrors of the condition
// compilers. Each renders "<field> = {:key}" with the same coercion rules,
// except SetBool, which embeds the literal TRUE or FALSE unbound.

import "sort"

// SetString adds a string assignment.
func (b *Builder) SetString(field, value string) *Builder {
	b.sets = append(b.sets, field+" = "+b.CreateParam(value))
	return b
}

// SetInteger adds an integer assignment; the value is formatted as a decimal
// with zero fractional digits.
func (b *Builder) SetInteger(field string, value interface{}) *Builder {
	return b.setDecimal(field, value, 0)
}

// SetDecimal adds a decimal assignment with the default precision of two
// fractional digits.
func (b *Builder) SetDecimal(field string, value interface{}) *Builder {
	return b.setDecimal(field, value, 2)
}

// SetDecimalPrec adds a decimal assignment with an explicit precision.
func (b *Builder) SetDecimalPrec(field string, value interface{}, precision int) *Builder {
	return b.setDecimal(field, value, precision)
}

func (b *Builder) setDecimal(field string, value interface{}, precision int) *Builder {
	b.sets = append(b.sets, field+" = "+b.CreateParam(formatDecimal(value, precision)))
	return b
}

// SetBool adds a boolean assignment as the unbound literal TRUE or FALSE.
func (b *Builder) SetBool(field string, value bool) *Builder {
	literal := "FALSE"
	if value {
		literal = "TRUE"
	}
	b.sets = append(b.sets, field+" = "+literal)
	return b
}

// SetDate adds a date assignment normalized to "2006-01-02". Input rules
// match WhereDate: unparseable input binds NULL.
func (b *Builder) SetDate(field string, value interface{}) *Builder {
	return b.setTemporal(field, value, kindDate)
}

// SetTime adds a time-of-day assignment normalized to "15:04:05".
func (b *Builder) SetTime(field string, value interface{}) *Builder {
	return b.setTemporal(field, value, kindTime)
}

// SetDateTime adds a timestamp assignment normalized to
// "2006-01-02 15:04:05".
func (b *Builder) SetDateTime(field string, value interface{}) *Builder {
	return b.setTemporal(field, value, kindDateTime)
}

func (b *Builder) setTemporal(field string, value interface{}, kind timeKind) *Builder {
	b.sets = append(b.sets, field+" = "+b.CreateParam(normalizeTemporal(value, kind)))
	return b
}

// SetValue adds an assignment binding the value as-is without coercion,
// leaving conversion to the database driver.
func (b *Builder) SetValue(field string, value interface{}) *Builder {
	b.sets = append(b.sets, field+" = "+b.CreateParam(value))
	return b
}

// SetValues adds one uncoerced assignment per map entry, in sorted column
// order so the rendered statement is deterministic.
func (b *Builder) SetValues(values Params) *Builder {
	for _, field := range sortedKeys(values) {
		b.SetValue(field, values[field])
	}
	return b
}

// Set appends a raw assignment fragment verbatim and merges any given
// parameter maps. Like Where, the fragment is not validated.
func (b *Builder) Set(raw string, params ...Params) *Builder {
	b.sets = append(b.sets, raw)
	b.Bind(params...)
	return b
}

// sortedKeys returns map keys in sorted order for deterministic rendering.
func sortedKeys(m Params) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
