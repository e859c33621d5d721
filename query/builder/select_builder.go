package builder

import (
	"github.com/javaito/PostgresStorageLayer/query/ast"
)

// SelectBuilder builds the projection list in field order
type SelectBuilder struct {
	fields []ast.ReturnField
}

// NewSelectBuilder creates a new select builder
func NewSelectBuilder() *SelectBuilder {
	return &SelectBuilder{}
}

// Field adds a field to select
func (s *SelectBuilder) Field(field string) *SelectBuilder {
	s.fields = append(s.fields, ast.ReturnField{Name: field})
	return s
}

// FieldAs adds a field returned under alias
func (s *SelectBuilder) FieldAs(field, alias string) *SelectBuilder {
	s.fields = append(s.fields, ast.ReturnField{Name: field, Alias: alias})
	return s
}

// All requests every field
func (s *SelectBuilder) All() *SelectBuilder {
	s.fields = append(s.fields, ast.ReturnField{Name: ast.ReturnAll})
	return s
}

// HasFields returns true if there are any fields selected
func (s *SelectBuilder) HasFields() bool {
	return len(s.fields) > 0
}

// Build returns the projection
func (s *SelectBuilder) Build() []ast.ReturnField {
	return append([]ast.ReturnField(nil), s.fields...)
}
