package parse_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javaito/PostgresStorageLayer/query/ast"
	"github.com/javaito/PostgresStorageLayer/query/binder"
	"github.com/javaito/PostgresStorageLayer/query/parse"
	"github.com/javaito/PostgresStorageLayer/query/sqlgen"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		filter string
		params []any
		sql    string
		args   []any
	}{
		{
			name:   "single comparison",
			filter: "age = 30",
			sql:    "age = ?",
			args:   []any{int64(30)},
		},
		{
			name:   "in list",
			filter: "role IN ('admin', 'editor')",
			sql:    "role IN (?, ?)",
			args:   []any{"admin", "editor"},
		},
		{
			name:   "null rewrites",
			filter: "email = NULL AND name IS NOT NULL AND team is null",
			sql:    "email IS NULL AND name IS NOT NULL AND team IS NULL",
		},
		{
			name:   "precedence",
			filter: "a = 1 AND b <> 2 OR c >= 3.5",
			sql:    "(a = ? AND b <> ?) OR c >= ?",
			args:   []any{int64(1), int64(2), 3.5},
		},
		{
			name:   "nested group",
			filter: "users.age >= 18 and (users.role not in ('x') or users.name like 'J%')",
			sql:    "users.age >= ? AND (users.role NOT IN (?) OR users.name LIKE ?)",
			args:   []any{int64(18), "x", "J%"},
		},
		{
			name:   "params",
			filter: "id IN $1 AND active = $2 AND nick != 'o''neil'",
			params: []any{[]int{4, 5}, true},
			sql:    "id IN (?, ?) AND active = ? AND nick <> ?",
			args:   []any{4, 5, true, "o'neil"},
		},
		{
			name:   "booleans and negatives",
			filter: "active = TRUE AND balance < -10",
			sql:    "active = ? AND balance < ?",
			args:   []any{true, int64(-10)},
		},
		{
			name:   "blank",
			filter: "  ",
			sql:    "",
		},
	}

	c := sqlgen.NewCompiler(sqlgen.Default(), nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := parse.Parse(tt.filter)
			require.NoError(t, err)

			stmt, err := c.Predicate(g, tt.params...)
			require.NoError(t, err)
			assert.Equal(t, tt.sql, stmt.SQL)

			args, _, err := binder.Where(nil, 1, g, tt.params...)
			require.NoError(t, err)
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	for _, filter := range []string{
		"age =",
		"age 30",
		"(age = 1",
		"age = $0",
		"age IN (1, (2))",
		"age IN ($1)",
	} {
		t.Run(filter, func(t *testing.T) {
			_, err := parse.Parse(filter)
			assert.ErrorIs(t, err, parse.ErrSyntax)
			assert.ErrorIs(t, err, sqlgen.ErrCompilation)
		})
	}
}

func TestQuery(t *testing.T) {
	q, err := parse.Query("users", "age > $1")
	require.NoError(t, err)

	stmt, err := sqlgen.NewCompiler(sqlgen.PostgreSQL(), nil).Select(q, 21)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM users WHERE age > $1", stmt.SQL)

	leaf, ok := q.Where.Evaluators()[0].(*ast.FieldEvaluator)
	require.True(t, ok)
	assert.Equal(t, ast.Param(0), leaf.Value)
}

func TestMustParse(t *testing.T) {
	assert.Panics(t, func() { parse.MustParse("= 1") })
	assert.Len(t, parse.MustParse("a = 1 AND b = 2").Evaluators(), 2)
}
