package mapper

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/javaito/PostgresStorageLayer/query/normalize"
)

// Setter assigns a converted column value to one property of dst.
type Setter[T any] func(dst *T, value any) error

// Target is the explicit registration of the settable properties of T. It is
// built once and shared by every materialization into T.
type Target[T any] struct {
	newFn   func() *T
	setters map[string]Setter[T]
}

// NewTarget creates a target whose rows are allocated by newFn. A nil newFn
// allocates zero values.
func NewTarget[T any](newFn func() *T) *Target[T] {
	if newFn == nil {
		newFn = func() *T { return new(T) }
	}
	return &Target[T]{newFn: newFn, setters: make(map[string]Setter[T])}
}

// Field registers the setter of the property called name. name may be a bare
// field name or a qualified application reference (resource.field).
func (t *Target[T]) Field(name string, set Setter[T]) *Target[T] {
	t.setters[name] = set
	return t
}

// setter finds the setter of a qualified application field, trying the
// qualified name first and the bare field name second.
func (t *Target[T]) setter(field string) (Setter[T], bool) {
	if s, ok := t.setters[field]; ok {
		return s, true
	}
	_, name := normalize.Split(field)
	s, ok := t.setters[name]
	return s, ok
}

// Set builds a setter that assigns to the property returned by field.
//
//	target.Field("email", mapper.Set(func(u *User) *string { return &u.Email }))
func Set[T, V any](field func(*T) *V) Setter[T] {
	return func(dst *T, value any) error {
		return Assign(field(dst), value)
	}
}

// Assign stores value in dst, converting between the numeric, textual and
// temporal representations drivers return. nil stores the zero value.
func Assign[V any](dst *V, value any) error {
	if v, ok := value.(V); ok {
		*dst = v
		return nil
	}
	if value == nil {
		var zero V
		*dst = zero
		return nil
	}

	switch p := any(dst).(type) {
	case *int:
		n, err := toIntRange(value, math.MinInt, math.MaxInt)
		if err == nil {
			*p = int(n)
		}
		return err
	case *int32:
		n, err := toIntRange(value, math.MinInt32, math.MaxInt32)
		if err == nil {
			*p = int32(n)
		}
		return err
	case *int64:
		n, err := toInt64(value)
		if err == nil {
			*p = n
		}
		return err
	case *float64:
		f, err := toFloat(value)
		if err == nil {
			*p = f.(float64)
		}
		return err
	case *string:
		switch v := value.(type) {
		case []byte:
			*p = string(v)
			return nil
		case fmt.Stringer:
			*p = v.String()
			return nil
		}
	case *bool:
		switch v := value.(type) {
		case int64:
			*p = v != 0
			return nil
		case string:
			b, err := strconv.ParseBool(v)
			if err == nil {
				*p = b
			}
			return err
		}
	case *time.Time:
		if s, ok := value.(string); ok {
			t, err := time.Parse(time.RFC3339Nano, s)
			if err == nil {
				*p = t
			}
			return err
		}
	}
	return fmt.Errorf("cannot assign %T to %T", value, *dst)
}

// toIntRange converts v to an integer within [lo, hi].
func toIntRange(v any, lo, hi int64) (int64, error) {
	n, err := toInt64(v)
	if err != nil {
		return 0, err
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("value %d out of range [%d, %d]", n, lo, hi)
	}
	return n, nil
}

func toInt64(v any) (int64, error) {
	switch t := v.(type) {
	case int64:
		return t, nil
	case int:
		return int64(t), nil
	case int32:
		return int64(t), nil
	case float64:
		if t != float64(int64(t)) {
			return 0, fmt.Errorf("cannot assign fractional %v to an integer", t)
		}
		return int64(t), nil
	case []byte:
		return strconv.ParseInt(string(t), 10, 64)
	case string:
		return strconv.ParseInt(t, 10, 64)
	}
	return 0, fmt.Errorf("cannot convert %T to an integer", v)
}
