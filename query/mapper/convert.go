package mapper

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
)

// Convert turns a raw driver value of a column with the given database type
// name into its application value:
//   - PostgreSQL arrays ("_INT4", "_TEXT", ...) become []any
//   - NUMERIC and DECIMAL become float64
//   - timestamps are truncated to millisecond precision
//   - textual []byte becomes string
func Convert(typeName string, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	typeName = strings.ToUpper(typeName)

	if strings.HasPrefix(typeName, "_") {
		return convertArray(typeName[1:], v)
	}

	switch typeName {
	case "NUMERIC", "DECIMAL":
		return toFloat(v)
	}

	switch t := v.(type) {
	case time.Time:
		return t.Truncate(time.Millisecond), nil
	case []byte:
		if isBinary(typeName) {
			return t, nil
		}
		return string(t), nil
	}
	return v, nil
}

func isBinary(typeName string) bool {
	switch typeName {
	case "BYTEA", "BLOB", "BINARY", "VARBINARY", "LONGBLOB", "MEDIUMBLOB", "TINYBLOB":
		return true
	}
	return false
}

func toFloat(v any) (any, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case []byte:
		return strconv.ParseFloat(string(t), 64)
	case string:
		return strconv.ParseFloat(t, 64)
	}
	return nil, fmt.Errorf("cannot convert %T to a decimal", v)
}

func convertArray(elem string, v any) (any, error) {
	switch elem {
	case "INT2", "INT4", "INT8":
		var a pq.Int64Array
		if err := a.Scan(v); err != nil {
			return nil, err
		}
		return toAny(a), nil
	case "FLOAT4", "FLOAT8", "NUMERIC":
		var a pq.Float64Array
		if err := a.Scan(v); err != nil {
			return nil, err
		}
		return toAny(a), nil
	case "BOOL":
		var a pq.BoolArray
		if err := a.Scan(v); err != nil {
			return nil, err
		}
		return toAny(a), nil
	default:
		var a pq.StringArray
		if err := a.Scan(v); err != nil {
			return nil, err
		}
		return toAny(a), nil
	}
}

func toAny[E any](in []E) []any {
	out := make([]any, len(in))
	for i, e := range in {
		out[i] = e
	}
	return out
}
