package core

// Typed condition compilers. Every Where* method follows the same pattern:
// coerce the value per its type rule, register one bound parameter, render
// "<field> <op> {:key}" per field, and push a single fragment. Passing
// several field names OR's them together inside that one fragment; the
// builder's combinator only joins separate calls.

import "strings"

// defaultOp returns the first non-empty operator of op, or fallback.
func defaultOp(op []string, fallback string) string {
	if len(op) > 0 && strings.TrimSpace(op[0]) != "" {
		return strings.TrimSpace(op[0])
	}
	return fallback
}

// WhereString adds a string condition. The operator defaults to "=";
// variants such as "!=" or "LIKE" may be passed explicitly.
func (b *Builder) WhereString(field interface{}, value string, op ...string) *Builder {
	operator := defaultOp(op, "=")
	token := b.CreateParam(value)
	b.pushCondition(fieldList(field), func(f string) string {
		return f + " " + operator + " " + token
	})
	return b
}

// WhereLike adds a LIKE condition with the value wrapped in "%...%" for
// substring matching.
func (b *Builder) WhereLike(field interface{}, value string) *Builder {
	return b.WhereString(field, "%"+value+"%", "LIKE")
}

// WhereNotLike adds a NOT LIKE condition with the value wrapped in "%...%".
func (b *Builder) WhereNotLike(field interface{}, value string) *Builder {
	return b.WhereString(field, "%"+value+"%", "NOT LIKE")
}

// WhereInteger adds an integer condition. The value is formatted as a decimal
// with zero fractional digits, so non-numeric input coerces to "0".
func (b *Builder) WhereInteger(field interface{}, value interface{}, op ...string) *Builder {
	return b.whereDecimal(field, value, 0, op)
}

// WhereDecimal adds a decimal condition with the default precision of two
// fractional digits.
func (b *Builder) WhereDecimal(field interface{}, value interface{}, op ...string) *Builder {
	return b.whereDecimal(field, value, 2, op)
}

// WhereDecimalPrec adds a decimal condition with an explicit precision.
func (b *Builder) WhereDecimalPrec(field interface{}, value interface{}, precision int, op ...string) *Builder {
	return b.whereDecimal(field, value, precision, op)
}

func (b *Builder) whereDecimal(field interface{}, value interface{}, precision int, op []string) *Builder {
	operator := defaultOp(op, "=")
	token := b.CreateParam(formatDecimal(value, precision))
	b.pushCondition(fieldList(field), func(f string) string {
		return f + " " + operator + " " + token
	})
	return b
}

// WhereBool adds a boolean test. Booleans are never parameter-bound; the
// fragment carries the literal IS TRUE or IS FALSE.
func (b *Builder) WhereBool(field interface{}, value bool) *Builder {
	literal := " IS FALSE"
	if value {
		literal = " IS TRUE"
	}
	b.pushCondition(fieldList(field), func(f string) string {
		return f + literal
	})
	return b
}

// WhereTrue adds an IS TRUE test.
func (b *Builder) WhereTrue(field interface{}) *Builder {
	return b.WhereBool(field, true)
}

// WhereFalse adds an IS FALSE test.
func (b *Builder) WhereFalse(field interface{}) *Builder {
	return b.WhereBool(field, false)
}

// WhereDate adds a date condition. The value may be a time.Time, the token
// "now", a parseable string, or a positive integer epoch; it is normalized to
// "2006-01-02". Unparseable input binds NULL instead of raising an error.
func (b *Builder) WhereDate(field interface{}, value interface{}, op ...string) *Builder {
	return b.whereTemporal(field, value, kindDate, op)
}

// WhereTime adds a time-of-day condition normalized to "15:04:05".
// Input rules match WhereDate.
func (b *Builder) WhereTime(field interface{}, value interface{}, op ...string) *Builder {
	return b.whereTemporal(field, value, kindTime, op)
}

// WhereDateTime adds a timestamp condition normalized to
// "2006-01-02 15:04:05". Input rules match WhereDate.
func (b *Builder) WhereDateTime(field interface{}, value interface{}, op ...string) *Builder {
	return b.whereTemporal(field, value, kindDateTime, op)
}

func (b *Builder) whereTemporal(field interface{}, value interface{}, kind timeKind, op []string) *Builder {
	operator := defaultOp(op, "=")
	token := b.CreateParam(normalizeTemporal(value, kind))
	b.pushCondition(fieldList(field), func(f string) string {
		return f + " " + operator + " " + token
	})
	return b
}

// rangeStyle selects how a two-bound range is rendered.
type rangeStyle int

const (
	// rangeConjunction renders "(f >= {:a} AND f <= {:b})".
	rangeConjunction rangeStyle = iota
	// rangeBetween renders "f BETWEEN {:a} AND {:b}".
	rangeBetween
)

// WhereIntegerInRange adds an integer range condition. A nil or empty-string
// bound is treated as absent: with both bounds absent the call is a no-op,
// a single bound renders ">=" or "<=", equal bounds render one equality test,
// and two bounds render a parenthesized pair of comparisons ANDed together.
func (b *Builder) WhereIntegerInRange(field interface{}, from, to interface{}) *Builder {
	return b.whereRange(field, coerceBound(from, 0), coerceBound(to, 0), rangeConjunction)
}

// WhereDecimalInRange adds a decimal range condition; precision defaults to
// two fractional digits. Bound handling matches WhereIntegerInRange.
func (b *Builder) WhereDecimalInRange(field interface{}, from, to interface{}, precision ...int) *Builder {
	prec := 2
	if len(precision) > 0 {
		prec = precision[0]
	}
	return b.whereRange(field, coerceBound(from, prec), coerceBound(to, prec), rangeConjunction)
}

// WhereDateInRange adds a date range condition. Two present bounds render a
// BETWEEN; bound handling otherwise matches WhereIntegerInRange.
func (b *Builder) WhereDateInRange(field interface{}, from, to interface{}) *Builder {
	return b.whereRange(field, coerceTemporalBound(from, kindDate), coerceTemporalBound(to, kindDate), rangeBetween)
}

// WhereTimeInRange adds a time-of-day range condition rendered as BETWEEN.
func (b *Builder) WhereTimeInRange(field interface{}, from, to interface{}) *Builder {
	return b.whereRange(field, coerceTemporalBound(from, kindTime), coerceTemporalBound(to, kindTime), rangeBetween)
}

// WhereDateTimeInRange adds a timestamp range condition rendered as BETWEEN.
func (b *Builder) WhereDateTimeInRange(field interface{}, from, to interface{}) *Builder {
	return b.whereRange(field, coerceTemporalBound(from, kindDateTime), coerceTemporalBound(to, kindDateTime), rangeBetween)
}

// bound is a coerced range endpoint. present reflects the raw input, value
// the coerced result; a present but unparseable temporal bound carries nil
// and binds NULL, matching the single-condition behavior.
type bound struct {
	value   interface{}
	present bool
}

func coerceBound(value interface{}, precision int) bound {
	if emptyBound(value) {
		return bound{}
	}
	return bound{value: formatDecimal(value, precision), present: true}
}

func coerceTemporalBound(value interface{}, kind timeKind) bound {
	if emptyBound(value) {
		return bound{}
	}
	return bound{value: normalizeTemporal(value, kind), present: true}
}

// whereRange pushes the three-way range condition: both bounds, one bound, or
// none (a silent no-op). Equal coerced bounds collapse to a single equality.
// Parameters are created once and shared across all fields of the call.
func (b *Builder) whereRange(field interface{}, from, to bound, style rangeStyle) *Builder {
	switch {
	case !from.present && !to.present:
		return b

	case from.present && to.present && from.value == to.value:
		token := b.CreateParam(from.value)
		b.pushCondition(fieldList(field), func(f string) string {
			return f + " = " + token
		})

	case from.present && to.present:
		fromToken := b.CreateParam(from.value)
		toToken := b.CreateParam(to.value)
		b.pushCondition(fieldList(field), func(f string) string {
			if style == rangeBetween {
				return f + " BETWEEN " + fromToken + " AND " + toToken
			}
			return "(" + f + " >= " + fromToken + " AND " + f + " <= " + toToken + ")"
		})

	case from.present:
		token := b.CreateParam(from.value)
		b.pushCondition(fieldList(field), func(f string) string {
			return f + " >= " + token
		})

	default:
		token := b.CreateParam(to.value)
		b.pushCondition(fieldList(field), func(f string) string {
			return f + " <= " + token
		})
	}
	return b
}

// WhereIn adds an IN condition with one bound parameter per value. An empty
// value list is a silent no-op: the builder is returned unchanged and no
// fragment is pushed.
func (b *Builder) WhereIn(field string, values ...interface{}) *Builder {
	return b.whereIn(field, values, false)
}

// WhereNotIn adds a NOT IN condition. Empty value lists are a silent no-op,
// matching WhereIn.
func (b *Builder) WhereNotIn(field string, values ...interface{}) *Builder {
	return b.whereIn(field, values, true)
}

func (b *Builder) whereIn(field string, values []interface{}, negate bool) *Builder {
	if len(values) == 0 {
		return b
	}
	tokens := make([]string, len(values))
	for i, v := range values {
		tokens[i] = b.CreateParam(v)
	}
	op := " IN ("
	if negate {
		op = " NOT IN ("
	}
	b.wheres = append(b.wheres, field+op+strings.Join(tokens, ", ")+")")
	return b
}

// Where appends a raw condition fragment verbatim and merges any given
// parameter maps. The fragment is not validated; the caller is responsible
// for its correctness and for binding every {:name} it references.
func (b *Builder) Where(raw string, params ...Params) *Builder {
	b.wheres = append(b.wheres, raw)
	b.Bind(params...)
	return b
}
