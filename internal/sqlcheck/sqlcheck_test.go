package sqlcheck_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javaito/PostgresStorageLayer/internal/sqlcheck"
)

func TestType(t *testing.T) {
	tests := []struct {
		sql  string
		want sqlcheck.StatementType
	}{
		{sql: "SELECT a.x, a.y FROM a WHERE (a.x = $1 OR a.y IN ($2, $3)) ORDER BY a.x DESC LIMIT 10", want: sqlcheck.SelectStatement},
		{sql: "INSERT INTO users (email, tags) VALUES ($1, $2::text[])", want: sqlcheck.InsertStatement},
		{sql: "UPDATE t SET status = $1 WHERE id = $2", want: sqlcheck.UpdateStatement},
		{sql: "DELETE FROM t WHERE id = $1", want: sqlcheck.DeleteStatement},
		{sql: "CREATE TABLE t (id int)", want: sqlcheck.UnknownStatement},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			got, err := sqlcheck.Type(tt.sql)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, sqlcheck.Validate("SELECT * FROM users WHERE email IS NULL", sqlcheck.SelectStatement))

	err := sqlcheck.Validate("SELECT * FROM WHERE", sqlcheck.SelectStatement)
	assert.ErrorIs(t, err, sqlcheck.ErrInvalidStatement)

	err = sqlcheck.Validate("UPDATE t SET a = $1 WHERE id = $2", sqlcheck.SelectStatement)
	assert.ErrorIs(t, err, sqlcheck.ErrInvalidStatement)

	err = sqlcheck.Validate("SELECT 1; SELECT 2", sqlcheck.SelectStatement)
	assert.ErrorIs(t, err, sqlcheck.ErrInvalidStatement)
}
