package ast

import (
	"reflect"
)

// Evaluator is a node of the predicate tree: either a Group or a FieldEvaluator.
type Evaluator interface {
	evaluator()
}

// Connective is the boolean word placed between the children of a group
type Connective int

const (
	// ConnectiveAnd joins children with AND.
	ConnectiveAnd Connective = iota
	// ConnectiveOr joins children with OR.
	ConnectiveOr
)

// Group is an evaluator holding an ordered sequence of children.
type Group interface {
	Evaluator
	Evaluators() []Evaluator
	Connective() Connective
}

// And is a conjunction of its children
type And struct {
	children []Evaluator
}

// NewAnd creates an AND group
func NewAnd(children ...Evaluator) *And {
	return &And{children: children}
}

// Add appends children to the group.
func (a *And) Add(children ...Evaluator) *And {
	a.children = append(a.children, children...)
	return a
}

// Evaluators returns the children in insertion order.
func (a *And) Evaluators() []Evaluator { return a.children }

// Connective returns ConnectiveAnd.
func (a *And) Connective() Connective { return ConnectiveAnd }

func (a *And) evaluator() {}

// Or is a disjunction of its children
type Or struct {
	children []Evaluator
}

// NewOr creates an OR group
func NewOr(children ...Evaluator) *Or {
	return &Or{children: children}
}

// Add appends children to the group.
func (o *Or) Add(children ...Evaluator) *Or {
	o.children = append(o.children, children...)
	return o
}

// Evaluators returns the children in insertion order.
func (o *Or) Evaluators() []Evaluator { return o.children }

// Connective returns ConnectiveOr.
func (o *Or) Connective() Connective { return ConnectiveOr }

func (o *Or) evaluator() {}

// Operator is the comparison performed by a FieldEvaluator.
type Operator int

const (
	// Equals matches equal values; with nil it tests IS NULL.
	Equals Operator = iota
	// Distinct matches different values; with nil it tests IS NOT NULL.
	Distinct
	// GreaterThan renders >.
	GreaterThan
	// GreaterThanOrEqual renders >=.
	GreaterThanOrEqual
	// SmallerThan renders <.
	SmallerThan
	// SmallerThanOrEqual renders <=.
	SmallerThanOrEqual
	// Like renders a pattern match.
	Like
	// In matches any element of a collection.
	In
	// NotIn matches no element of a collection.
	NotIn
)

var operatorNames = [...]string{
	Equals:             "Equals",
	Distinct:           "Distinct",
	GreaterThan:        "GreaterThan",
	GreaterThanOrEqual: "GreaterThanOrEqual",
	SmallerThan:        "SmallerThan",
	SmallerThanOrEqual: "SmallerThanOrEqual",
	Like:               "Like",
	In:                 "In",
	NotIn:              "NotIn",
}

func (o Operator) String() string {
	if o < 0 || int(o) >= len(operatorNames) {
		return "Operator(?)"
	}
	return operatorNames[o]
}

// FieldEvaluator compares one field against a raw value. The raw value may be
// a scalar, a collection, nil or a Param resolved at execution time.
type FieldEvaluator struct {
	Operator Operator
	Field    string
	Value    any
}

// Compare creates a leaf evaluator
func Compare(op Operator, field string, value any) *FieldEvaluator {
	return &FieldEvaluator{Operator: op, Field: field, Value: value}
}

func (f *FieldEvaluator) evaluator() {}

// IsNull reports whether v is nil or a nil pointer, map or interface.
func IsNull(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map:
		return rv.IsNil()
	}
	return false
}

// Elements returns the elements of v when v is a collection (any slice or
// array except []byte, which binds as a single value).
func Elements(v any) ([]any, bool) {
	if v == nil {
		return nil, false
	}
	switch c := v.(type) {
	case []any:
		return c, true
	case []byte:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
