package builder

import (
	"github.com/javaito/PostgresStorageLayer/query/ast"
)

// UpdateBuilder builds the values and predicate of an update
type UpdateBuilder struct {
	resource string
	values   *ast.Values
	where    *WhereBuilder
}

// NewUpdateBuilder creates a new update builder
func NewUpdateBuilder(resource string) *UpdateBuilder {
	return &UpdateBuilder{
		resource: resource,
		values:   ast.NewValues(),
	}
}

// Set sets a field value
func (u *UpdateBuilder) Set(field string, value any) *UpdateBuilder {
	u.values.Set(field, value)
	return u
}

// SetTyped sets a field value cast to a data-source type
func (u *UpdateBuilder) SetTyped(field string, value any, typ string) *UpdateBuilder {
	u.values.SetTyped(field, value, typ)
	return u
}

// Where returns the predicate builder
func (u *UpdateBuilder) Where() *WhereBuilder {
	if u.where == nil {
		u.where = NewWhereBuilder()
	}
	return u.where
}

// Values returns the SET values
func (u *UpdateBuilder) Values() *ast.Values {
	return u.values
}

// Query returns the query selecting the updated rows
func (u *UpdateBuilder) Query() *ast.Query {
	q := ast.NewQuery(u.resource)
	if u.where != nil {
		q.Where = u.where.Build()
	}
	return q
}
