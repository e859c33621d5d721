package ast

// StorageValue wraps a value written by an insert or update. Type optionally
// names the data-source type the placeholder is cast to (e.g. "jsonb").
type StorageValue struct {
	Value any
	Type  string
}

// Values is an ordered mapping from application field name to StorageValue.
// Insertion order defines the SQL column and placeholder order.
type Values struct {
	keys   []string
	values map[string]StorageValue
}

// NewValues creates an empty value set
func NewValues() *Values {
	return &Values{values: make(map[string]StorageValue)}
}

// Set stores value under field. Setting an existing field replaces its value
// and keeps its position.
func (v *Values) Set(field string, value any) *Values {
	return v.SetValue(field, StorageValue{Value: value})
}

// SetTyped stores value under field with a declared data-source type.
func (v *Values) SetTyped(field string, value any, typ string) *Values {
	return v.SetValue(field, StorageValue{Value: value, Type: typ})
}

// SetValue stores a wrapped value under field.
func (v *Values) SetValue(field string, value StorageValue) *Values {
	if v.values == nil {
		v.values = make(map[string]StorageValue)
	}
	if _, ok := v.values[field]; !ok {
		v.keys = append(v.keys, field)
	}
	v.values[field] = value
	return v
}

// Get returns the value stored under field.
func (v *Values) Get(field string) (StorageValue, bool) {
	if v == nil {
		return StorageValue{}, false
	}
	sv, ok := v.values[field]
	return sv, ok
}

// Keys returns the field names in insertion order.
func (v *Values) Keys() []string {
	if v == nil {
		return nil
	}
	return v.keys
}

// Len returns the number of fields.
func (v *Values) Len() int {
	if v == nil {
		return 0
	}
	return len(v.keys)
}

// ValuesOf builds a Values from a plain map. Map iteration order is random,
// so keys are taken in the order given by fields.
func ValuesOf(m map[string]any, fields ...string) *Values {
	v := NewValues()
	for _, f := range fields {
		if val, ok := m[f]; ok {
			v.Set(f, val)
		}
	}
	return v
}
