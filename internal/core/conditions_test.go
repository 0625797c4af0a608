package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func whereSQL(b *Builder) string {
	return b.BuildSelect().SQL()
}

func TestWhereString(t *testing.T) {
	b := mockDB("mysql").Builder().From("users").WhereString("name", "alice")

	assert.Equal(t, "SELECT * FROM `users` WHERE name = {:p1}", whereSQL(b))
	assert.Equal(t, Params{"p1": "alice"}, b.Params())
}

func TestWhereString_CustomOperator(t *testing.T) {
	b := mockDB("mysql").Builder().From("users").WhereString("name", "alice", "!=")
	assert.Equal(t, "SELECT * FROM `users` WHERE name != {:p1}", whereSQL(b))
}

func TestWhereString_MultiFieldSharesOneParam(t *testing.T) {
	b := mockDB("mysql").Builder().From("users").
		WhereString([]string{"first_name", "last_name"}, "smith")

	assert.Equal(t,
		"SELECT * FROM `users` WHERE (first_name = {:p1} OR last_name = {:p1})",
		whereSQL(b))
	assert.Equal(t, Params{"p1": "smith"}, b.Params())
}

func TestWhereLike(t *testing.T) {
	b := mockDB("mysql").Builder().From("users").WhereLike("email", "gmail")

	assert.Equal(t, "SELECT * FROM `users` WHERE email LIKE {:p1}", whereSQL(b))
	assert.Equal(t, "%gmail%", b.Params()["p1"])
}

func TestWhereNotLike(t *testing.T) {
	b := mockDB("mysql").Builder().From("users").WhereNotLike("email", "spam")

	assert.Equal(t, "SELECT * FROM `users` WHERE email NOT LIKE {:p1}", whereSQL(b))
	assert.Equal(t, "%spam%", b.Params()["p1"])
}

func TestWhereInteger(t *testing.T) {
	b := mockDB("mysql").Builder().From("users").WhereInteger("age", 30)

	assert.Equal(t, "SELECT * FROM `users` WHERE age = {:p1}", whereSQL(b))
	assert.Equal(t, "30", b.Params()["p1"])
}

func TestWhereInteger_CoercesInput(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"string number", "42", "42"},
		{"float truncated", 3.7, "4"},
		{"bool true", true, "1"},
		{"non-numeric string", "abc", "0"},
		{"nil", nil, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := mockDB("mysql").Builder().From("t").WhereInteger("n", tt.value)
			assert.Equal(t, tt.want, b.Params()["p1"])
		})
	}
}

func TestWhereDecimal(t *testing.T) {
	b := mockDB("mysql").Builder().From("products").WhereDecimal("price", "3.14159")

	assert.Equal(t, "SELECT * FROM `products` WHERE price = {:p1}", whereSQL(b))
	assert.Equal(t, "3.14", b.Params()["p1"])
}

func TestWhereDecimalPrec(t *testing.T) {
	b := mockDB("mysql").Builder().From("products").
		WhereDecimalPrec("price", 3.14159, 4, ">=")

	assert.Equal(t, "SELECT * FROM `products` WHERE price >= {:p1}", whereSQL(b))
	assert.Equal(t, "3.1416", b.Params()["p1"])
}

func TestWhere_SequentialParams(t *testing.T) {
	b := mockDB("mysql").Builder().From("users").
		WhereInteger("age", 30).
		WhereInteger("score", 30)

	assert.Equal(t,
		"SELECT * FROM `users` WHERE age = {:p1} AND score = {:p2}",
		whereSQL(b))
	assert.Equal(t, Params{"p1": "30", "p2": "30"}, b.Params())
}

func TestWhereBool(t *testing.T) {
	b := mockDB("mysql").Builder().From("users").WhereBool("active", true)

	assert.Equal(t, "SELECT * FROM `users` WHERE active IS TRUE", whereSQL(b))
	assert.Empty(t, b.Params())
}

func TestWhereTrueFalse(t *testing.T) {
	b := mockDB("mysql").Builder().From("users").
		WhereTrue("active").
		WhereFalse("deleted")

	assert.Equal(t,
		"SELECT * FROM `users` WHERE active IS TRUE AND deleted IS FALSE",
		whereSQL(b))
	assert.Empty(t, b.Params())
}

func TestWhereBool_MultiField(t *testing.T) {
	b := mockDB("mysql").Builder().From("users").
		WhereBool([]string{"active", "verified"}, true)

	assert.Equal(t,
		"SELECT * FROM `users` WHERE (active IS TRUE OR verified IS TRUE)",
		whereSQL(b))
}

func TestWhereDate(t *testing.T) {
	when := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	b := mockDB("mysql").Builder().From("orders").WhereDate("created", when)

	assert.Equal(t, "SELECT * FROM `orders` WHERE created = {:p1}", whereSQL(b))
	assert.Equal(t, "2024-03-15", b.Params()["p1"])
}

func TestWhereDate_StringInput(t *testing.T) {
	b := mockDB("mysql").Builder().From("orders").WhereDate("created", "2024-03-15", ">=")

	assert.Equal(t, "SELECT * FROM `orders` WHERE created >= {:p1}", whereSQL(b))
	assert.Equal(t, "2024-03-15", b.Params()["p1"])
}

func TestWhereDate_EpochInput(t *testing.T) {
	epoch := int64(1700000000)
	b := mockDB("mysql").Builder().From("orders").WhereDate("created", epoch)

	assert.Equal(t, time.Unix(epoch, 0).Format("2006-01-02"), b.Params()["p1"])
}

func TestWhereDate_UnparseableBindsNull(t *testing.T) {
	b := mockDB("mysql").Builder().From("orders").WhereDate("created", "not a date")

	assert.Equal(t, "SELECT * FROM `orders` WHERE created = {:p1}", whereSQL(b))
	require.Contains(t, b.Params(), "p1")
	assert.Nil(t, b.Params()["p1"])
}

func TestWhereTime(t *testing.T) {
	b := mockDB("mysql").Builder().From("shifts").WhereTime("starts", "09:30")

	assert.Equal(t, "SELECT * FROM `shifts` WHERE starts = {:p1}", whereSQL(b))
	assert.Equal(t, "09:30:00", b.Params()["p1"])
}

func TestWhereDateTime(t *testing.T) {
	when := time.Date(2024, 3, 15, 10, 30, 45, 0, time.UTC)
	b := mockDB("mysql").Builder().From("events").WhereDateTime("at", when)

	assert.Equal(t, "2024-03-15 10:30:45", b.Params()["p1"])
}

func TestWhereIntegerInRange(t *testing.T) {
	tests := []struct {
		name       string
		from, to   interface{}
		wantSQL    string
		wantParams Params
	}{
		{
			"both bounds", 18, 65,
			"SELECT * FROM `users` WHERE (age >= {:p1} AND age <= {:p2})",
			Params{"p1": "18", "p2": "65"},
		},
		{
			"from only", 18, nil,
			"SELECT * FROM `users` WHERE age >= {:p1}",
			Params{"p1": "18"},
		},
		{
			"to only", nil, 65,
			"SELECT * FROM `users` WHERE age <= {:p1}",
			Params{"p1": "65"},
		},
		{
			"equal bounds collapse", 30, 30,
			"SELECT * FROM `users` WHERE age = {:p1}",
			Params{"p1": "30"},
		},
		{
			"both absent is no-op", nil, "",
			"SELECT * FROM `users`",
			Params{},
		},
		{
			"zero is a real bound", 0, nil,
			"SELECT * FROM `users` WHERE age >= {:p1}",
			Params{"p1": "0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := mockDB("mysql").Builder().From("users").
				WhereIntegerInRange("age", tt.from, tt.to)
			assert.Equal(t, tt.wantSQL, whereSQL(b))
			assert.Equal(t, tt.wantParams, b.Params())
		})
	}
}

func TestWhereDecimalInRange(t *testing.T) {
	b := mockDB("mysql").Builder().From("products").
		WhereDecimalInRange("price", "9.999", "19.999")

	assert.Equal(t,
		"SELECT * FROM `products` WHERE (price >= {:p1} AND price <= {:p2})",
		whereSQL(b))
	assert.Equal(t, Params{"p1": "10.00", "p2": "20.00"}, b.Params())
}

func TestWhereDecimalInRange_ExplicitPrecision(t *testing.T) {
	b := mockDB("mysql").Builder().From("products").
		WhereDecimalInRange("price", 1.23456, 2.34567, 3)

	assert.Equal(t, Params{"p1": "1.235", "p2": "2.346"}, b.Params())
}

func TestWhereDateInRange(t *testing.T) {
	b := mockDB("mysql").Builder().From("orders").
		WhereDateInRange("created", "2024-01-01", "2024-12-31")

	assert.Equal(t,
		"SELECT * FROM `orders` WHERE created BETWEEN {:p1} AND {:p2}",
		whereSQL(b))
	assert.Equal(t, Params{"p1": "2024-01-01", "p2": "2024-12-31"}, b.Params())
}

func TestWhereDateInRange_SingleBound(t *testing.T) {
	b := mockDB("mysql").Builder().From("orders").
		WhereDateInRange("created", "2024-01-01", nil)

	assert.Equal(t, "SELECT * FROM `orders` WHERE created >= {:p1}", whereSQL(b))
}

func TestWhereDateInRange_EqualBoundsCollapse(t *testing.T) {
	// Bounds are compared after coercion, so differently-typed inputs naming
	// the same day collapse to one equality, never a BETWEEN.
	b := mockDB("mysql").Builder().From("orders").
		WhereDateInRange("created", "2024-06-15", time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC))

	assert.Equal(t, "SELECT * FROM `orders` WHERE created = {:p1}", whereSQL(b))
	assert.Equal(t, Params{"p1": "2024-06-15"}, b.Params())
}

func TestWhereDateTimeInRange(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)
	b := mockDB("mysql").Builder().From("events").
		WhereDateTimeInRange("at", from, to)

	assert.Equal(t, "SELECT * FROM `events` WHERE at BETWEEN {:p1} AND {:p2}", whereSQL(b))
	assert.Equal(t, Params{"p1": "2024-01-01 00:00:00", "p2": "2024-01-31 23:59:59"}, b.Params())
}

func TestWhereTimeInRange(t *testing.T) {
	b := mockDB("mysql").Builder().From("shifts").
		WhereTimeInRange("starts", "09:00", "17:00")

	assert.Equal(t, "SELECT * FROM `shifts` WHERE starts BETWEEN {:p1} AND {:p2}", whereSQL(b))
	assert.Equal(t, Params{"p1": "09:00:00", "p2": "17:00:00"}, b.Params())
}

func TestWhereIn(t *testing.T) {
	b := mockDB("mysql").Builder().From("users").WhereIn("status", "active", "pending")

	assert.Equal(t, "SELECT * FROM `users` WHERE status IN ({:p1}, {:p2})", whereSQL(b))
	assert.Equal(t, Params{"p1": "active", "p2": "pending"}, b.Params())
}

func TestWhereIn_EmptyIsNoOp(t *testing.T) {
	b := mockDB("mysql").Builder().From("users").WhereIn("status")

	assert.Equal(t, "SELECT * FROM `users`", whereSQL(b))
	assert.Empty(t, b.Params())
}

func TestWhereNotIn(t *testing.T) {
	b := mockDB("mysql").Builder().From("users").WhereNotIn("id", 1, 2, 3)

	assert.Equal(t, "SELECT * FROM `users` WHERE id NOT IN ({:p1}, {:p2}, {:p3})", whereSQL(b))
	assert.Equal(t, Params{"p1": 1, "p2": 2, "p3": 3}, b.Params())
}

func TestWhere_Raw(t *testing.T) {
	b := mockDB("mysql").Builder().From("users").
		Where("age > {:min} AND age < {:max}", Params{"min": 18, "max": 65})

	assert.Equal(t, "SELECT * FROM `users` WHERE age > {:min} AND age < {:max}", whereSQL(b))
	assert.Equal(t, Params{"min": 18, "max": 65}, b.Params())
}

func TestWhere_RawMixesWithTyped(t *testing.T) {
	b := mockDB("mysql").Builder().From("users").
		WhereString("name", "alice").
		Where("deleted_at IS NULL")

	assert.Equal(t,
		"SELECT * FROM `users` WHERE name = {:p1} AND deleted_at IS NULL",
		whereSQL(b))
}

func TestCombine_Or(t *testing.T) {
	b := mockDB("mysql").Builder().From("users").
		Combine(Or).
		WhereString("role", "admin").
		WhereString("role", "owner")

	assert.Equal(t,
		"SELECT * FROM `users` WHERE role = {:p1} OR role = {:p2}",
		whereSQL(b))
}

func TestWhere_InvalidFieldPanics(t *testing.T) {
	b := mockDB("mysql").Builder().From("users")

	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		assert.ErrorIs(t, err, ErrInvalidField)
	}()
	b.WhereString(42, "x")
}

func TestWhere_EmptyFieldListPanics(t *testing.T) {
	b := mockDB("mysql").Builder().From("users")

	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		assert.ErrorIs(t, err, ErrInvalidField)
	}()
	b.WhereString([]string{}, "x")
}
