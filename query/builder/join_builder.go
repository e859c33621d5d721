package builder

import (
	"github.com/javaito/PostgresStorageLayer/query/ast"
)

// JoinBuilder builds JOIN clauses. Join fields are qualified
// (resource.field) and rendered as given.
type JoinBuilder struct {
	joins []ast.Join
}

// NewJoinBuilder creates a new JOIN builder
func NewJoinBuilder() *JoinBuilder {
	return &JoinBuilder{}
}

func (j *JoinBuilder) add(t ast.JoinType, resource, left, right string) *JoinBuilder {
	j.joins = append(j.joins, ast.Join{Type: t, Resource: resource, Left: left, Right: right})
	return j
}

// Join adds a plain JOIN
func (j *JoinBuilder) Join(resource, left, right string) *JoinBuilder {
	return j.add(ast.PlainJoin, resource, left, right)
}

// InnerJoin adds an INNER JOIN
func (j *JoinBuilder) InnerJoin(resource, left, right string) *JoinBuilder {
	return j.add(ast.InnerJoin, resource, left, right)
}

// LeftJoin adds a LEFT JOIN
func (j *JoinBuilder) LeftJoin(resource, left, right string) *JoinBuilder {
	return j.add(ast.LeftJoin, resource, left, right)
}

// RightJoin adds a RIGHT JOIN
func (j *JoinBuilder) RightJoin(resource, left, right string) *JoinBuilder {
	return j.add(ast.RightJoin, resource, left, right)
}

// Build returns the JOIN clauses
func (j *JoinBuilder) Build() []ast.Join {
	return append([]ast.Join(nil), j.joins...)
}
