// Package binder produces the argument list of a compiled statement. It walks
// evaluator trees and value sets in exactly the order the compiler emits
// placeholders.
package binder

import (
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/javaito/PostgresStorageLayer/query/ast"
	"github.com/javaito/PostgresStorageLayer/query/sqlgen"
)

// ErrBinding is the kind of every binder error. A binding error is a broken
// contract between compiler and binder and is never retried.
var ErrBinding = errors.New("parameter binding failed")

// Where appends the values of group's placeholders to args. start is the
// 1-based index of the next placeholder and must follow args. It returns the
// extended args and the index of the placeholder after the last one bound.
func Where(args []any, start int, group ast.Group, params ...any) ([]any, int, error) {
	if err := checkStart(args, start); err != nil {
		return args, start, err
	}
	if group == nil {
		return args, start, nil
	}
	out, err := bindGroup(args, group, params)
	if err != nil {
		return args, start, err
	}
	return out, start + len(out) - len(args), nil
}

// Values appends one value per stored field, in insertion order.
func Values(args []any, start int, values *ast.Values) ([]any, int, error) {
	if err := checkStart(args, start); err != nil {
		return args, start, err
	}
	for _, field := range values.Keys() {
		sv, _ := values.Get(field)
		args = append(args, storageValue(sv.Value))
	}
	return args, start + values.Len(), nil
}

// Check fails when args does not hold exactly one value per placeholder.
func Check(stmt *sqlgen.Statement, args []any) error {
	if stmt.Placeholders != len(args) {
		return fmt.Errorf("%w: statement has %d placeholders, %d values bound", ErrBinding, stmt.Placeholders, len(args))
	}
	return nil
}

func checkStart(args []any, start int) error {
	if start != len(args)+1 {
		return fmt.Errorf("%w: start index %d does not follow %d bound values", ErrBinding, start, len(args))
	}
	return nil
}

func bindGroup(args []any, g ast.Group, params []any) ([]any, error) {
	var err error
	for _, child := range g.Evaluators() {
		switch e := child.(type) {
		case ast.Group:
			args, err = bindGroup(args, e, params)
		case *ast.FieldEvaluator:
			args, err = bindField(args, e, params)
		default:
			err = fmt.Errorf("%w: unsupported evaluator %T", ErrBinding, child)
		}
		if err != nil {
			return nil, err
		}
	}
	return args, nil
}

func bindField(args []any, f *ast.FieldEvaluator, params []any) ([]any, error) {
	value, err := ast.Resolve(f.Value, params)
	if err != nil {
		return nil, fmt.Errorf("%w: field %s: %v", ErrBinding, f.Field, err)
	}
	if ast.IsNull(value) {
		if sqlgen.RewritesNull(f.Operator) {
			return args, nil
		}
		return append(args, nil), nil
	}

	elems, isList := ast.Elements(value)
	switch {
	case isList && sqlgen.Expands(f.Operator):
		if len(elems) == 0 {
			return nil, fmt.Errorf("%w: field %s: empty value list", ErrBinding, f.Field)
		}
		for _, e := range elems {
			args = append(args, scalar(e))
		}
		return args, nil
	case isList:
		return append(args, pq.Array(value)), nil
	default:
		return append(args, scalar(value)), nil
	}
}

// storageValue converts a value written by SET or VALUES. Collections bind
// as one array parameter.
func storageValue(v any) any {
	if ast.IsNull(v) {
		return nil
	}
	if _, ok := ast.Elements(v); ok {
		return pq.Array(v)
	}
	return scalar(v)
}

// scalar truncates temporal values to millisecond precision and leaves
// everything else to the driver.
func scalar(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case time.Time:
		return t.Truncate(time.Millisecond)
	case *time.Time:
		if t == nil {
			return nil
		}
		return t.Truncate(time.Millisecond)
	}
	if ast.IsNull(v) {
		return nil
	}
	return v
}
