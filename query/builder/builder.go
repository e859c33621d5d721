// Package builder provides a fluent query builder API.
package builder

import (
	"strings"

	"github.com/javaito/PostgresStorageLayer/query/ast"
)

// WhereBuilder builds evaluator trees
type WhereBuilder struct {
	connective ast.Connective
	children   []ast.Evaluator
}

// NewWhereBuilder creates a new WHERE builder joining its conditions with AND
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{connective: ast.ConnectiveAnd}
}

func (w *WhereBuilder) add(op ast.Operator, field string, value any) *WhereBuilder {
	w.children = append(w.children, ast.Compare(op, field, value))
	return w
}

// Equals adds an equality condition. A nil value tests for NULL.
func (w *WhereBuilder) Equals(field string, value any) *WhereBuilder {
	return w.add(ast.Equals, field, value)
}

// NotEquals adds a not-equals condition. A nil value tests for NOT NULL.
func (w *WhereBuilder) NotEquals(field string, value any) *WhereBuilder {
	return w.add(ast.Distinct, field, value)
}

// GreaterThan adds a greater-than condition
func (w *WhereBuilder) GreaterThan(field string, value any) *WhereBuilder {
	return w.add(ast.GreaterThan, field, value)
}

// LessThan adds a less-than condition
func (w *WhereBuilder) LessThan(field string, value any) *WhereBuilder {
	return w.add(ast.SmallerThan, field, value)
}

// GreaterOrEqual adds a greater-or-equal condition
func (w *WhereBuilder) GreaterOrEqual(field string, value any) *WhereBuilder {
	return w.add(ast.GreaterThanOrEqual, field, value)
}

// LessOrEqual adds a less-or-equal condition
func (w *WhereBuilder) LessOrEqual(field string, value any) *WhereBuilder {
	return w.add(ast.SmallerThanOrEqual, field, value)
}

// In adds an IN condition. values is a collection, a scalar or an ast.Param.
func (w *WhereBuilder) In(field string, values any) *WhereBuilder {
	return w.add(ast.In, field, values)
}

// NotIn adds a NOT IN condition
func (w *WhereBuilder) NotIn(field string, values any) *WhereBuilder {
	return w.add(ast.NotIn, field, values)
}

// Like adds a LIKE condition
func (w *WhereBuilder) Like(field string, pattern any) *WhereBuilder {
	return w.add(ast.Like, field, pattern)
}

// IsNull adds an IS NULL condition
func (w *WhereBuilder) IsNull(field string) *WhereBuilder {
	return w.add(ast.Equals, field, nil)
}

// IsNotNull adds an IS NOT NULL condition
func (w *WhereBuilder) IsNotNull(field string) *WhereBuilder {
	return w.add(ast.Distinct, field, nil)
}

// Evaluator adds an already built evaluator.
func (w *WhereBuilder) Evaluator(e ast.Evaluator) *WhereBuilder {
	w.children = append(w.children, e)
	return w
}

// SetOperator sets the logical operator (AND or OR)
func (w *WhereBuilder) SetOperator(op string) *WhereBuilder {
	if strings.EqualFold(op, "OR") {
		w.connective = ast.ConnectiveOr
	} else {
		w.connective = ast.ConnectiveAnd
	}
	return w
}

// Build builds the evaluator group
func (w *WhereBuilder) Build() ast.Group {
	children := make([]ast.Evaluator, len(w.children))
	copy(children, w.children)
	if w.connective == ast.ConnectiveOr {
		return ast.NewOr(children...)
	}
	return ast.NewAnd(children...)
}

// QueryBuilder builds complete queries
type QueryBuilder struct {
	resource string
	fields   []ast.ReturnField
	joins    []ast.Join
	where    ast.Group
	groupBy  []string
	orderBy  []ast.OrderField
	limit    *int
}

// NewQueryBuilder creates a new query builder
func NewQueryBuilder(resource string) *QueryBuilder {
	return &QueryBuilder{resource: resource}
}

// Select sets the fields to return. No fields means all fields.
func (q *QueryBuilder) Select(fields ...string) *QueryBuilder {
	q.fields = q.fields[:0]
	for _, f := range fields {
		q.fields = append(q.fields, ast.ReturnField{Name: f})
	}
	return q
}

// Fields sets the projection from a SelectBuilder.
func (q *QueryBuilder) Fields(s *SelectBuilder) *QueryBuilder {
	q.fields = s.Build()
	return q
}

// Where sets the predicate
func (q *QueryBuilder) Where(where *WhereBuilder) *QueryBuilder {
	q.where = where.Build()
	return q
}

// Joins appends the joins of j
func (q *QueryBuilder) Joins(j *JoinBuilder) *QueryBuilder {
	q.joins = append(q.joins, j.Build()...)
	return q
}

// GroupBy sets the GROUP BY fields
func (q *QueryBuilder) GroupBy(fields ...string) *QueryBuilder {
	q.groupBy = fields
	return q
}

// OrderBy adds an ORDER BY field. direction is "ASC" or "DESC".
func (q *QueryBuilder) OrderBy(field string, direction string) *QueryBuilder {
	q.orderBy = append(q.orderBy, ast.OrderField{
		Field: field,
		Desc:  strings.EqualFold(direction, "DESC"),
	})
	return q
}

// Limit sets the LIMIT
func (q *QueryBuilder) Limit(limit int) *QueryBuilder {
	q.limit = &limit
	return q
}

// Build returns the query
func (q *QueryBuilder) Build() *ast.Query {
	query := ast.NewQuery(q.resource)
	query.Fields = append([]ast.ReturnField(nil), q.fields...)
	query.Joins = append([]ast.Join(nil), q.joins...)
	query.GroupBy = append([]string(nil), q.groupBy...)
	query.OrderBy = append([]ast.OrderField(nil), q.orderBy...)
	if q.where != nil {
		query.Where = q.where
	}
	if q.limit != nil {
		limit := *q.limit
		query.Limit = &limit
	}
	return query
}
