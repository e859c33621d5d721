// Package ast defines the database-agnostic query model walked by the SQL compiler.
package ast

import (
	"fmt"
)

// Query describes a read over a single resource. It is built by the caller
// and never mutated by the storage layer.
type Query struct {
	Resource string
	Fields   []ReturnField
	Joins    []Join
	Where    Group
	GroupBy  []string
	OrderBy  []OrderField
	Limit    *int
}

// NewQuery creates a query over resource with an empty AND predicate
func NewQuery(resource string) *Query {
	return &Query{
		Resource: resource,
		Where:    NewAnd(),
	}
}

// ReturnsAll reports whether the projection requests every field.
func (q *Query) ReturnsAll() bool {
	if len(q.Fields) == 0 {
		return true
	}
	for _, f := range q.Fields {
		if f.Name == ReturnAll {
			return true
		}
	}
	return false
}

// Predicate returns the root evaluator group, never nil.
func (q *Query) Predicate() Group {
	if q.Where == nil {
		return NewAnd()
	}
	return q.Where
}

// ReturnAll is the projection name meaning "all fields".
const ReturnAll = "*"

// ReturnField is one element of the projection list
type ReturnField struct {
	Name  string
	Alias string
}

// OrderField is one element of the ORDER BY list
type OrderField struct {
	Field string
	Desc  bool
}

// JoinType selects the join keyword.
type JoinType int

const (
	// PlainJoin renders a plain JOIN.
	PlainJoin JoinType = iota
	// InnerJoin renders INNER JOIN.
	InnerJoin
	// LeftJoin renders LEFT JOIN.
	LeftJoin
	// RightJoin renders RIGHT JOIN.
	RightJoin
)

func (t JoinType) String() string {
	switch t {
	case InnerJoin:
		return "INNER"
	case LeftJoin:
		return "LEFT"
	case RightJoin:
		return "RIGHT"
	default:
		return "JOIN"
	}
}

// Join describes a joined resource. Left and Right are already qualified
// (resource.field) and are rendered verbatim.
type Join struct {
	Type     JoinType
	Resource string
	Left     string
	Right    string
}

// Param references the runtime parameter at the given zero-based position.
// It is resolved when the statement is compiled and again when it is bound,
// always against the same parameter list.
type Param int

// ErrParamOutOfRange is returned when a Param has no matching runtime value.
type ErrParamOutOfRange struct {
	Index int
	Count int
}

func (e *ErrParamOutOfRange) Error() string {
	return fmt.Sprintf("parameter %d out of range (%d provided)", e.Index, e.Count)
}

// Resolve returns the runtime value of raw: raw itself, or the referenced
// parameter when raw is a Param.
func Resolve(raw any, params []any) (any, error) {
	p, ok := raw.(Param)
	if !ok {
		return raw, nil
	}
	if int(p) < 0 || int(p) >= len(params) {
		return nil, &ErrParamOutOfRange{Index: int(p), Count: len(params)}
	}
	return params[p], nil
}
