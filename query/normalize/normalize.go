// Package normalize maps application field references (resource.field) to
// data-source column references (table.column) and back.
package normalize

import (
	"fmt"
	"strings"
)

// Separator joins a resource (or table) and a field (or column) name.
const Separator = "."

// Normalizer translates references between the application and the data source.
type Normalizer interface {
	// ToDataSource maps an application field reference to a column reference.
	ToDataSource(field string) string
	// ToApplication maps a column reference to an application field
	// reference. ok is false when the column cannot be attributed and must
	// be dropped.
	ToApplication(column string) (field string, ok bool)
	// Resource maps an application resource name to a table name.
	Resource(name string) string
}

// Split splits a qualified reference into its qualifier and name. An
// unqualified reference returns an empty qualifier.
func Split(ref string) (qualifier, name string) {
	i := strings.LastIndex(ref, Separator)
	if i < 0 {
		return "", ref
	}
	return ref[:i], ref[i+len(Separator):]
}

// Join qualifies name with qualifier. An empty qualifier returns name.
func Join(qualifier, name string) string {
	if qualifier == "" {
		return name
	}
	return qualifier + Separator + name
}

type identity struct{}

// Identity returns a Normalizer that leaves every reference unchanged.
func Identity() Normalizer { return identity{} }

func (identity) ToDataSource(field string) string { return field }

func (identity) ToApplication(column string) (string, bool) { return column, true }

func (identity) Resource(name string) string { return name }

// Resource declares how an application resource is stored.
type Resource struct {
	Name  string
	Table string
	// Fields maps application field names to column names.
	Fields map[string]string
}

// Schema is a Normalizer backed by an explicit resource mapping.
type Schema struct {
	resources []Resource
	byName    map[string]*Resource
	byTable   map[string]*Resource
	// columns maps table -> column -> field.
	columns map[string]map[string]string
}

// NewSchema builds a schema normalizer. It fails when two resources share a
// name or a table, or when two fields of one resource map to the same column,
// since the reverse mapping would be ambiguous.
func NewSchema(resources ...Resource) (*Schema, error) {
	s := &Schema{
		resources: make([]Resource, len(resources)),
		byName:    make(map[string]*Resource, len(resources)),
		byTable:   make(map[string]*Resource, len(resources)),
		columns:   make(map[string]map[string]string, len(resources)),
	}
	copy(s.resources, resources)

	for i := range s.resources {
		r := &s.resources[i]
		if r.Name == "" {
			return nil, fmt.Errorf("resource %d has no name", i)
		}
		if r.Table == "" {
			r.Table = r.Name
		}
		if _, dup := s.byName[r.Name]; dup {
			return nil, fmt.Errorf("duplicate resource %q", r.Name)
		}
		if _, dup := s.byTable[r.Table]; dup {
			return nil, fmt.Errorf("table %q mapped by more than one resource", r.Table)
		}
		s.byName[r.Name] = r
		s.byTable[r.Table] = r

		fields := make(map[string]string, len(r.Fields))
		cols := make(map[string]string, len(r.Fields))
		for field, column := range r.Fields {
			if column == "" {
				column = field
			}
			if other, dup := cols[column]; dup {
				return nil, fmt.Errorf("fields %q and %q of %q both map to column %q", other, field, r.Name, column)
			}
			fields[field] = column
			cols[column] = field
		}
		r.Fields = fields
		s.columns[r.Table] = cols
	}
	return s, nil
}

// MustSchema is like NewSchema but panics on error.
func MustSchema(resources ...Resource) *Schema {
	s, err := NewSchema(resources...)
	if err != nil {
		panic(err)
	}
	return s
}

// Resource maps a resource name to its table. Unknown names pass through.
func (s *Schema) Resource(name string) string {
	if r, ok := s.byName[name]; ok {
		return r.Table
	}
	return name
}

// ToDataSource maps resource.field to table.column. A bare field is looked up
// in every resource in declaration order. Unknown references pass through.
func (s *Schema) ToDataSource(field string) string {
	resource, name := Split(field)
	if resource == "" {
		for i := range s.resources {
			if column, ok := s.resources[i].Fields[name]; ok {
				return column
			}
		}
		return field
	}

	r, ok := s.byName[resource]
	if !ok {
		return field
	}
	if column, ok := r.Fields[name]; ok {
		return Join(r.Table, column)
	}
	return Join(r.Table, name)
}

// ToApplication maps table.column to resource.field. Columns of unknown
// tables, unmapped columns and unqualified columns are dropped.
func (s *Schema) ToApplication(column string) (string, bool) {
	table, name := Split(column)
	r, ok := s.byTable[table]
	if !ok {
		return "", false
	}
	field, ok := s.columns[table][name]
	if !ok {
		return "", false
	}
	return Join(r.Name, field), true
}

var _ Normalizer = (*Schema)(nil)
