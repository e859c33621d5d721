// Package mapper materializes result rows into generic records or into
// instances of registered target types.
package mapper

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/javaito/PostgresStorageLayer/internal/debug"
	"github.com/javaito/PostgresStorageLayer/query/normalize"
)

// Rows is a forward-only result cursor. *sql.Rows satisfies it.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Columns() ([]string, error)
	ColumnTypes() ([]*sql.ColumnType, error)
	Err() error
}

// Attribution turns result column labels into application field names.
type Attribution struct {
	// Table owns every label that is not already qualified.
	Table string
	// Normalizer maps table.column to resource.field. nil keeps labels.
	Normalizer normalize.Normalizer
}

// Field returns the application field of a result label. ok is false when
// the column cannot be attributed and must be dropped.
func (a Attribution) Field(label string) (string, bool) {
	column := label
	if !strings.Contains(label, normalize.Separator) && a.Table != "" {
		column = normalize.Join(a.Table, label)
	}
	n := a.Normalizer
	if n == nil {
		n = normalize.Identity()
	}
	return n.ToApplication(column)
}

// column is one attributed result column.
type column struct {
	field    string
	typeName string
	keep     bool
}

func describe(rows Rows, attr Attribution) ([]column, error) {
	labels, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to get column types: %w", err)
	}

	cols := make([]column, len(labels))
	for i, label := range labels {
		field, ok := attr.Field(label)
		cols[i] = column{field: field, keep: ok}
		if i < len(types) && types[i] != nil {
			cols[i].typeName = types[i].DatabaseTypeName()
		}
		if !ok {
			debug.Debug("dropping unattributed column", "column", label)
		}
	}
	return cols, nil
}

// scan reads the current row into raw driver values.
func scan(rows Rows, n int) ([]any, error) {
	values := make([]any, n)
	ptrs := make([]any, n)
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}
	return values, nil
}

// Records materializes every remaining row as a generic record. Columns that
// cannot be attributed are skipped. A value that fails conversion aborts the
// whole read.
func Records(rows Rows, attr Attribution) ([]*Record, error) {
	cols, err := describe(rows, attr)
	if err != nil {
		return nil, err
	}

	var out []*Record
	for rows.Next() {
		values, err := scan(rows, len(cols))
		if err != nil {
			return nil, err
		}
		rec := NewRecord()
		for i, col := range cols {
			if !col.keep {
				continue
			}
			v, err := Convert(col.typeName, values[i])
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", col.field, err)
			}
			rec.Set(col.field, v)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return out, nil
}

// Into materializes every remaining row as a new T. Each column is assigned
// on a best-effort basis: columns without a registered setter, or whose
// conversion or assignment fails, are skipped.
func Into[T any](rows Rows, attr Attribution, target *Target[T]) ([]*T, error) {
	cols, err := describe(rows, attr)
	if err != nil {
		return nil, err
	}

	var out []*T
	for rows.Next() {
		values, err := scan(rows, len(cols))
		if err != nil {
			return nil, err
		}
		obj := target.newFn()
		for i, col := range cols {
			if !col.keep {
				continue
			}
			set, ok := target.setter(col.field)
			if !ok {
				continue
			}
			v, err := Convert(col.typeName, values[i])
			if err != nil {
				debug.Debug("skipping column", "field", col.field, "error", err)
				continue
			}
			if err := apply(set, obj, v); err != nil {
				debug.Debug("skipping column", "field", col.field, "error", err)
			}
		}
		out = append(out, obj)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return out, nil
}

func apply[T any](set Setter[T], obj *T, v any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("setter panicked: %v", r)
		}
	}()
	return set(obj, v)
}
