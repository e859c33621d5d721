package sqlgen_test

import (
	"testing"

	"github.com/javaito/PostgresStorageLayer/query/ast"
	"github.com/javaito/PostgresStorageLayer/query/normalize"
	"github.com/javaito/PostgresStorageLayer/query/sqlgen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

func TestSelect_Scenarios(t *testing.T) {
	c := sqlgen.NewCompiler(sqlgen.Default(), nil)

	tests := []struct {
		name         string
		query        *ast.Query
		want         string
		placeholders int
	}{
		{
			name: "equals",
			query: &ast.Query{
				Resource: "users",
				Where:    ast.NewAnd(ast.Compare(ast.Equals, "age", 30)),
			},
			want:         "SELECT * FROM users WHERE age = ?",
			placeholders: 1,
		},
		{
			name: "in with collection",
			query: &ast.Query{
				Resource: "users",
				Where:    ast.NewAnd(ast.Compare(ast.In, "role", []string{"admin", "editor"})),
			},
			want:         "SELECT * FROM users WHERE role IN (?, ?)",
			placeholders: 2,
		},
		{
			name: "equals null",
			query: &ast.Query{
				Resource: "users",
				Where:    ast.NewAnd(ast.Compare(ast.Equals, "email", nil)),
			},
			want:         "SELECT * FROM users WHERE email IS NULL",
			placeholders: 0,
		},
		{
			name: "distinct null",
			query: &ast.Query{
				Resource: "users",
				Where:    ast.NewAnd(ast.Compare(ast.Distinct, "email", (*string)(nil))),
			},
			want:         "SELECT * FROM users WHERE email IS NOT NULL",
			placeholders: 0,
		},
		{
			name: "nested groups",
			query: &ast.Query{
				Resource: "a",
				Fields:   []ast.ReturnField{{Name: "a.x"}, {Name: "a.y"}},
				Where: ast.NewAnd(ast.NewOr(
					ast.Compare(ast.Equals, "a.x", 1),
					ast.Compare(ast.In, "a.y", []int{2, 3}),
				)),
				OrderBy: []ast.OrderField{{Field: "a.x", Desc: true}},
				Limit:   intPtr(10),
			},
			want:         "SELECT a.x, a.y FROM a WHERE (a.x = ? OR a.y IN (?, ?)) ORDER BY a.x DESC LIMIT 10",
			placeholders: 3,
		},
		{
			name:         "no predicate",
			query:        ast.NewQuery("users"),
			want:         "SELECT * FROM users",
			placeholders: 0,
		},
		{
			name: "or root",
			query: &ast.Query{
				Resource: "users",
				Where: ast.NewOr(
					ast.Compare(ast.GreaterThan, "age", 10),
					ast.Compare(ast.SmallerThanOrEqual, "age", 2),
					ast.Compare(ast.Like, "name", "jo%"),
				),
			},
			want:         "SELECT * FROM users WHERE age > ? OR age <= ? OR name LIKE ?",
			placeholders: 3,
		},
		{
			name: "empty nested group skipped",
			query: &ast.Query{
				Resource: "users",
				Where:    ast.NewAnd(ast.NewOr(), ast.Compare(ast.Equals, "id", 1), ast.NewAnd(ast.NewOr())),
			},
			want:         "SELECT * FROM users WHERE id = ?",
			placeholders: 1,
		},
		{
			name: "in with scalar and nil",
			query: &ast.Query{
				Resource: "users",
				Where: ast.NewAnd(
					ast.Compare(ast.NotIn, "role", "guest"),
					ast.Compare(ast.In, "team", nil),
				),
			},
			want:         "SELECT * FROM users WHERE role NOT IN (?) AND team IN (?)",
			placeholders: 2,
		},
		{
			name: "joins group by and alias",
			query: &ast.Query{
				Resource: "orders",
				Fields:   []ast.ReturnField{{Name: "orders.customer", Alias: "c"}},
				Joins: []ast.Join{
					{Type: ast.LeftJoin, Resource: "customers", Left: "orders.customer", Right: "customers.id"},
					{Type: ast.PlainJoin, Resource: "items", Left: "orders.id", Right: "items.order_id"},
				},
				GroupBy: []string{"orders.customer"},
			},
			want:         "SELECT orders.customer AS c FROM orders LEFT JOIN customers ON orders.customer = customers.id JOIN items ON orders.id = items.order_id GROUP BY orders.customer",
			placeholders: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := c.Select(tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, stmt.SQL)
			assert.Equal(t, tt.placeholders, stmt.Placeholders)
		})
	}
}

func TestSelect_ParamsDriveCardinality(t *testing.T) {
	c := sqlgen.NewCompiler(sqlgen.Default(), nil)
	q := &ast.Query{
		Resource: "users",
		Where:    ast.NewAnd(ast.Compare(ast.In, "id", ast.Param(0))),
	}

	stmt, err := c.Select(q, []int{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM users WHERE id IN (?, ?, ?, ?)", stmt.SQL)
	assert.Equal(t, 4, stmt.Placeholders)

	_, err = c.Select(q)
	require.Error(t, err)
	assert.ErrorIs(t, err, sqlgen.ErrCompilation)
}

func TestSelect_EmptyInListFails(t *testing.T) {
	c := sqlgen.NewCompiler(sqlgen.Default(), nil)
	_, err := c.Select(&ast.Query{
		Resource: "users",
		Where:    ast.NewAnd(ast.Compare(ast.In, "id", []int{})),
	})
	assert.ErrorIs(t, err, sqlgen.ErrEmptyList)
	assert.ErrorIs(t, err, sqlgen.ErrCompilation)
}

func TestSelect_UnsupportedOperator(t *testing.T) {
	c := sqlgen.NewCompiler(sqlgen.Default(), nil)
	_, err := c.Select(&ast.Query{
		Resource: "users",
		Where:    ast.NewAnd(ast.Compare(ast.Operator(99), "id", 1)),
	})
	assert.ErrorIs(t, err, sqlgen.ErrUnsupportedOperator)
}

func TestSelect_NoResource(t *testing.T) {
	c := sqlgen.NewCompiler(sqlgen.Default(), nil)
	_, err := c.Select(&ast.Query{})
	assert.ErrorIs(t, err, sqlgen.ErrNoResource)
}

func TestSelect_Limit(t *testing.T) {
	c := sqlgen.NewCompiler(sqlgen.Default(), nil)
	_, err := c.Select(&ast.Query{Resource: "users", Limit: intPtr(-1)})
	assert.ErrorIs(t, err, sqlgen.ErrNegativeLimit)
	assert.ErrorIs(t, err, sqlgen.ErrCompilation)

	stmt, err := c.Select(&ast.Query{Resource: "users", Limit: intPtr(0)})
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM users LIMIT 0", stmt.SQL)
}

func TestSelect_PostgresNumbering(t *testing.T) {
	c := sqlgen.NewCompiler(sqlgen.PostgreSQL(), nil)
	stmt, err := c.Select(&ast.Query{
		Resource: "a",
		Where: ast.NewAnd(
			ast.Compare(ast.Equals, "x", 1),
			ast.NewOr(
				ast.Compare(ast.In, "y", []string{"p", "q"}),
				ast.Compare(ast.Equals, "z", nil),
			),
			ast.Compare(ast.SmallerThan, "w", 5),
		),
	})
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM a WHERE x = $1 AND (y IN ($2, $3) OR z IS NULL) AND w < $4", stmt.SQL)
	assert.Equal(t, 4, stmt.Placeholders)
}

func TestSelect_Normalized(t *testing.T) {
	schema := normalize.MustSchema(normalize.Resource{
		Name:   "users",
		Table:  "tbl_users",
		Fields: map[string]string{"id": "id", "email": "email_address"},
	})
	c := sqlgen.NewCompiler(sqlgen.Default(), schema)

	stmt, err := c.Select(&ast.Query{
		Resource: "users",
		Fields:   []ast.ReturnField{{Name: "users.id"}, {Name: "users.email", Alias: "mail"}},
		Where:    ast.NewAnd(ast.Compare(ast.Like, "users.email", "%@x.io")),
		OrderBy:  []ast.OrderField{{Field: "users.id"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "SELECT tbl_users.id, tbl_users.email_address AS mail FROM tbl_users WHERE tbl_users.email_address LIKE ? ORDER BY tbl_users.id", stmt.SQL)
}

func TestUpdate(t *testing.T) {
	c := sqlgen.NewCompiler(sqlgen.Default(), nil)
	q := &ast.Query{Resource: "t", Where: ast.NewAnd(ast.Compare(ast.Equals, "id", 7))}

	stmt, err := c.Update(q, ast.NewValues().Set("status", "active"))
	require.NoError(t, err)
	assert.Equal(t, "UPDATE t SET status = ? WHERE id = ?", stmt.SQL)
	assert.Equal(t, 2, stmt.Placeholders)
}

func TestUpdate_PostgresCastAndOrder(t *testing.T) {
	c := sqlgen.NewCompiler(sqlgen.PostgreSQL(), nil)
	q := &ast.Query{Resource: "t", Where: ast.NewAnd(ast.Compare(ast.In, "id", []int{1, 2}))}
	values := ast.NewValues().
		Set("status", "active").
		SetTyped("payload", `{"a":1}`, "jsonb").
		Set("status", "blocked")

	stmt, err := c.Update(q, values)
	require.NoError(t, err)
	assert.Equal(t, "UPDATE t SET status = $1, payload = $2::jsonb WHERE id IN ($3, $4)", stmt.SQL)
	assert.Equal(t, 4, stmt.Placeholders)
}

func TestUpdate_Unconditional(t *testing.T) {
	c := sqlgen.NewCompiler(sqlgen.Default(), nil)
	values := ast.NewValues().Set("status", "active")

	_, err := c.Update(ast.NewQuery("t"), values)
	assert.ErrorIs(t, err, sqlgen.ErrUnconditionalUpdate)
	assert.ErrorIs(t, err, sqlgen.ErrCompilation)

	_, err = c.Update(&ast.Query{Resource: "t", Where: ast.NewAnd(ast.NewOr())}, values)
	assert.ErrorIs(t, err, sqlgen.ErrUnconditionalUpdate)

	_, err = c.Update(&ast.Query{Resource: "t", Where: ast.NewAnd(ast.Compare(ast.Equals, "id", 1))}, ast.NewValues())
	assert.ErrorIs(t, err, sqlgen.ErrNoValues)
}

func TestInsert(t *testing.T) {
	schema := normalize.MustSchema(normalize.Resource{
		Name:   "users",
		Table:  "tbl_users",
		Fields: map[string]string{"email": "email_address", "name": ""},
	})

	tests := []struct {
		name    string
		dialect sqlgen.Dialect
		want    string
	}{
		{name: "default", dialect: sqlgen.Default(), want: "INSERT INTO tbl_users (email_address, name, tags) VALUES (?, ?, CAST(? AS text[]))"},
		{name: "postgres", dialect: sqlgen.PostgreSQL(), want: "INSERT INTO tbl_users (email_address, name, tags) VALUES ($1, $2, $3::text[])"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := sqlgen.NewCompiler(tt.dialect, schema)
			values := ast.NewValues().
				Set("email", "a@b.c").
				Set("users.name", "ann").
				SetTyped("tags", []string{"x"}, "text[]")
			stmt, err := c.Insert("users", values)
			require.NoError(t, err)
			assert.Equal(t, tt.want, stmt.SQL)
			assert.Equal(t, 3, stmt.Placeholders)
		})
	}

	c := sqlgen.NewCompiler(sqlgen.Default(), nil)
	_, err := c.Insert("users", nil)
	assert.ErrorIs(t, err, sqlgen.ErrNoValues)
	_, err = c.Insert("", ast.NewValues().Set("a", 1))
	assert.ErrorIs(t, err, sqlgen.ErrNoResource)
}

func TestPredicate(t *testing.T) {
	c := sqlgen.NewCompiler(sqlgen.Default(), nil)

	stmt, err := c.Predicate(ast.NewAnd())
	require.NoError(t, err)
	assert.Equal(t, "", stmt.SQL)
	assert.Zero(t, stmt.Placeholders)

	stmt, err = c.Predicate(ast.NewOr(
		ast.NewAnd(ast.Compare(ast.Equals, "a", 1), ast.Compare(ast.Distinct, "b", 2)),
		ast.Compare(ast.GreaterThanOrEqual, "c", 3),
	))
	require.NoError(t, err)
	assert.Equal(t, "(a = ? AND b <> ?) OR c >= ?", stmt.SQL)
	assert.Equal(t, 3, stmt.Placeholders)
}

func TestReservedWords_Override(t *testing.T) {
	d, err := sqlgen.PostgreSQL().WithOverrides(map[string]string{"like": "ILIKE"})
	require.NoError(t, err)
	c := sqlgen.NewCompiler(d, nil)

	stmt, err := c.Select(&ast.Query{
		Resource: "users",
		Where:    ast.NewAnd(ast.Compare(ast.Like, "name", "jo%")),
	})
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM users WHERE name ILIKE $1", stmt.SQL)

	_, err = sqlgen.Default().WithOverrides(map[string]string{"nope": "x"})
	assert.Error(t, err)

	w := sqlgen.DefaultReservedWords()
	assert.Contains(t, w.Names(), "is_not_null")
	require.NoError(t, w.Override("IS_NOT_NULL", "NOTNULL"))
	assert.Equal(t, "NOTNULL", w.IsNotNull)

	v, ok := w.Lookup("is_not_null")
	assert.True(t, ok)
	assert.Equal(t, "NOTNULL", v)
	_, ok = w.Lookup("nope")
	assert.False(t, ok)
}

func TestDialectFor(t *testing.T) {
	assert.Equal(t, "postgres", sqlgen.DialectFor("pgx").Name)
	assert.Equal(t, "postgres", sqlgen.DialectFor("PostgreSQL").Name)
	assert.Equal(t, "mysql", sqlgen.DialectFor("mysql").Name)
	assert.Equal(t, "sqlite", sqlgen.DialectFor("sqlite3").Name)
	assert.Equal(t, "default", sqlgen.DialectFor("oracle").Name)
}

func TestOperatorRules(t *testing.T) {
	assert.True(t, sqlgen.Expands(ast.In))
	assert.True(t, sqlgen.Expands(ast.NotIn))
	assert.False(t, sqlgen.Expands(ast.Equals))
	assert.True(t, sqlgen.RewritesNull(ast.Equals))
	assert.True(t, sqlgen.RewritesNull(ast.Distinct))
	assert.False(t, sqlgen.RewritesNull(ast.NotIn))
	assert.False(t, sqlgen.RewritesNull(ast.Like))
}
