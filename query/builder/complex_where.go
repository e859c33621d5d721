package builder

import (
	"github.com/javaito/PostgresStorageLayer/query/ast"
)

// AND adds a nested group holding the conditions of builders joined with AND
func (w *WhereBuilder) AND(builders ...*WhereBuilder) *WhereBuilder {
	group := ast.NewAnd()
	for _, b := range builders {
		if b != nil {
			group.Add(b.Build())
		}
	}
	w.children = append(w.children, group)
	return w
}

// OR adds a nested group holding the conditions of builders joined with OR
func (w *WhereBuilder) OR(builders ...*WhereBuilder) *WhereBuilder {
	group := ast.NewOr()
	for _, b := range builders {
		if b != nil {
			group.Add(b.Build())
		}
	}
	w.children = append(w.children, group)
	return w
}

// NewSubWhereBuilder creates a new independent WHERE builder for use in AND/OR
func NewSubWhereBuilder() *WhereBuilder {
	return NewWhereBuilder()
}
