package normalize_test

import (
	"testing"

	"github.com/javaito/PostgresStorageLayer/query/normalize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema(t *testing.T) *normalize.Schema {
	t.Helper()
	s, err := normalize.NewSchema(
		normalize.Resource{
			Name:  "users",
			Table: "tbl_users",
			Fields: map[string]string{
				"id":        "id",
				"email":     "email_address",
				"createdAt": "created_at",
			},
		},
		normalize.Resource{
			Name:   "roles",
			Fields: map[string]string{"name": ""},
		},
	)
	require.NoError(t, err)
	return s
}

func TestSchema_ToDataSource(t *testing.T) {
	s := testSchema(t)

	tests := []struct {
		name  string
		field string
		want  string
	}{
		{name: "qualified", field: "users.email", want: "tbl_users.email_address"},
		{name: "bare field", field: "createdAt", want: "created_at"},
		{name: "default table and column", field: "roles.name", want: "roles.name"},
		{name: "unknown field of known resource", field: "users.nickname", want: "tbl_users.nickname"},
		{name: "unknown resource", field: "audit.entry", want: "audit.entry"},
		{name: "unknown bare field", field: "age", want: "age"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.ToDataSource(tt.field))
		})
	}
}

func TestSchema_ToApplication(t *testing.T) {
	s := testSchema(t)

	field, ok := s.ToApplication("tbl_users.email_address")
	require.True(t, ok)
	assert.Equal(t, "users.email", field)

	_, ok = s.ToApplication("tbl_users.secret_internal")
	assert.False(t, ok, "unmapped column must be dropped")

	_, ok = s.ToApplication("unknown.id")
	assert.False(t, ok, "unknown table must be dropped")

	_, ok = s.ToApplication("id")
	assert.False(t, ok, "unqualified column cannot be attributed")
}

func TestSchema_RoundTrip(t *testing.T) {
	s := testSchema(t)
	for _, field := range []string{"users.id", "users.email", "users.createdAt", "roles.name"} {
		back, ok := s.ToApplication(s.ToDataSource(field))
		require.True(t, ok, field)
		assert.Equal(t, field, back)
	}
}

func TestSchema_Resource(t *testing.T) {
	s := testSchema(t)
	assert.Equal(t, "tbl_users", s.Resource("users"))
	assert.Equal(t, "roles", s.Resource("roles"))
	assert.Equal(t, "other", s.Resource("other"))
}

func TestNewSchema_Errors(t *testing.T) {
	_, err := normalize.NewSchema(normalize.Resource{
		Name:   "users",
		Fields: map[string]string{"a": "col", "b": "col"},
	})
	assert.Error(t, err)

	_, err = normalize.NewSchema(
		normalize.Resource{Name: "a", Table: "t"},
		normalize.Resource{Name: "b", Table: "t"},
	)
	assert.Error(t, err)

	_, err = normalize.NewSchema(normalize.Resource{})
	assert.Error(t, err)
}

func TestNewSchema_DoesNotMutateInput(t *testing.T) {
	fields := map[string]string{"name": ""}
	_, err := normalize.NewSchema(normalize.Resource{Name: "roles", Fields: fields})
	require.NoError(t, err)
	assert.Equal(t, "", fields["name"])
}

func TestIdentity(t *testing.T) {
	n := normalize.Identity()
	assert.Equal(t, "users.id", n.ToDataSource("users.id"))
	field, ok := n.ToApplication("users.id")
	assert.True(t, ok)
	assert.Equal(t, "users.id", field)
	assert.Equal(t, "users", n.Resource("users"))
}

func TestSplitJoin(t *testing.T) {
	q, n := normalize.Split("schema.table.column")
	assert.Equal(t, "schema.table", q)
	assert.Equal(t, "column", n)

	q, n = normalize.Split("column")
	assert.Equal(t, "", q)
	assert.Equal(t, "column", n)

	assert.Equal(t, "t.c", normalize.Join("t", "c"))
	assert.Equal(t, "c", normalize.Join("", "c"))
}
