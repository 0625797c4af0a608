package core

import (
	"errors"
	"testing"

	"github.com/coregx/fabrica/internal/dialects"
)

func TestProcessSQL_MySQL(t *testing.T) {
	dialect := dialects.GetDialect("mysql")

	sql := "SELECT [[name]] FROM {{users}} WHERE [[id]]={:id} AND [[status]]={:status}"
	got, names := processSQL(sql, dialect)

	want := "SELECT `name` FROM `users` WHERE `id`=? AND `status`=?"
	if got != want {
		t.Errorf("processSQL() = %q, want %q", got, want)
	}
	if len(names) != 2 || names[0] != "id" || names[1] != "status" {
		t.Errorf("param names = %v, want [id status]", names)
	}
}

func TestProcessSQL_Postgres(t *testing.T) {
	dialect := dialects.GetDialect("postgres")

	sql := "SELECT [[name]] FROM {{users}} WHERE [[id]]={:id} AND [[status]]={:status}"
	got, names := processSQL(sql, dialect)

	want := `SELECT "name" FROM "users" WHERE "id"=$1 AND "status"=$2`
	if got != want {
		t.Errorf("processSQL() = %q, want %q", got, want)
	}
	if len(names) != 2 || names[0] != "id" || names[1] != "status" {
		t.Errorf("param names = %v, want [id status]", names)
	}
}

func TestProcessSQL_RepeatedName(t *testing.T) {
	dialect := dialects.GetDialect("postgres")

	got, names := processSQL("SELECT * FROM t WHERE a={:x} OR b={:x}", dialect)

	want := "SELECT * FROM t WHERE a=$1 OR b=$2"
	if got != want {
		t.Errorf("processSQL() = %q, want %q", got, want)
	}
	if len(names) != 2 || names[0] != "x" || names[1] != "x" {
		t.Errorf("param names = %v, want [x x]", names)
	}
}

func TestProcessSQL_SchemaQualifiedQuoting(t *testing.T) {
	tests := []struct {
		dialect string
		sql     string
		want    string
	}{
		{"mysql", "SELECT * FROM {{mydb.users}}", "SELECT * FROM `mydb`.`users`"},
		{"postgres", "SELECT * FROM {{public.users}}", `SELECT * FROM "public"."users"`},
		{"sqlite", "SELECT [[u.name]] FROM {{users}}", `SELECT "u"."name" FROM "users"`},
	}

	for _, tt := range tests {
		got, _ := processSQL(tt.sql, dialects.GetDialect(tt.dialect))
		if got != tt.want {
			t.Errorf("%s: processSQL(%q) = %q, want %q", tt.dialect, tt.sql, got, tt.want)
		}
	}
}

func TestProcessSQL_NoPlaceholders(t *testing.T) {
	got, names := processSQL("SELECT 1", dialects.GetDialect("mysql"))
	if got != "SELECT 1" {
		t.Errorf("processSQL() = %q, want unchanged", got)
	}
	if len(names) != 0 {
		t.Errorf("param names = %v, want none", names)
	}
}

func TestQuoteIdentifier(t *testing.T) {
	mysql := dialects.GetDialect("mysql")

	if got := quoteIdentifier("users", mysql); got != "`users`" {
		t.Errorf("quoteIdentifier(users) = %q", got)
	}
	if got := quoteIdentifier(" mydb . users ", mysql); got != "`mydb`.`users`" {
		t.Errorf("quoteIdentifier with spaces = %q", got)
	}
}

func TestCanonicalKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"id", "id"},
		{":id", "id"},
		{"{:id}", "id"},
		{"  {:id}  ", "id"},
		{"{:p1}", "p1"},
	}

	for _, tt := range tests {
		if got := canonicalKey(tt.in); got != tt.want {
			t.Errorf("canonicalKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParamToken(t *testing.T) {
	if got := paramToken("p1"); got != "{:p1}" {
		t.Errorf("paramToken(p1) = %q", got)
	}
}

func TestBindParams(t *testing.T) {
	values, err := bindParams(Params{"id": 1, "status": "active"}, []string{"id", "status", "id"})
	if err != nil {
		t.Fatalf("bindParams() error = %v", err)
	}
	if len(values) != 3 || values[0] != 1 || values[1] != "active" || values[2] != 1 {
		t.Errorf("bindParams() = %v", values)
	}
}

func TestBindParams_Missing(t *testing.T) {
	_, err := bindParams(Params{"id": 1}, []string{"id", "status"})
	if !errors.Is(err, ErrMissingParam) {
		t.Errorf("bindParams() error = %v, want ErrMissingParam", err)
	}
}

func TestBindParams_NilValueIsBound(t *testing.T) {
	values, err := bindParams(Params{"when": nil}, []string{"when"})
	if err != nil {
		t.Fatalf("bindParams() error = %v", err)
	}
	if values[0] != nil {
		t.Errorf("bindParams() = %v, want [<nil>]", values)
	}
}
