// Package sqlgen compiles query descriptions into parameterized SQL.
package sqlgen

import (
	"fmt"
	"sort"
	"strings"
)

// ReservedWords is the keyword substitution table. Every entry can be
// overridden independently so the same compiler targets dialects that only
// differ in spelling.
type ReservedWords struct {
	Select              string
	From                string
	Where               string
	Join                string
	Left                string
	Right               string
	Inner               string
	On                  string
	As                  string
	ReturnAll           string
	GroupBy             string
	OrderBy             string
	Desc                string
	Limit               string
	And                 string
	Or                  string
	Distinct            string
	Equals              string
	NotIn               string
	In                  string
	GreaterThan         string
	GreaterThanOrEquals string
	SmallerThan         string
	SmallerThanOrEquals string
	Like                string
	IsNull              string
	IsNotNull           string
	Update              string
	Set                 string
	InsertInto          string
	Values              string
	Placeholder         string
	ArgumentSeparator   string
	// Cast is a format with two verbs: placeholder and type name.
	Cast string
	// NumberedPlaceholders appends the 1-based position to Placeholder ($1, $2, ...).
	NumberedPlaceholders bool
}

// DefaultReservedWords returns the ANSI spelling with "?" placeholders.
func DefaultReservedWords() ReservedWords {
	return ReservedWords{
		Select:              "SELECT",
		From:                "FROM",
		Where:               "WHERE",
		Join:                "JOIN",
		Left:                "LEFT",
		Right:               "RIGHT",
		Inner:               "INNER",
		On:                  "ON",
		As:                  "AS",
		ReturnAll:           "*",
		GroupBy:             "GROUP BY",
		OrderBy:             "ORDER BY",
		Desc:                "DESC",
		Limit:               "LIMIT",
		And:                 "AND",
		Or:                  "OR",
		Distinct:            "<>",
		Equals:              "=",
		NotIn:               "NOT IN",
		In:                  "IN",
		GreaterThan:         ">",
		GreaterThanOrEquals: ">=",
		SmallerThan:         "<",
		SmallerThanOrEquals: "<=",
		Like:                "LIKE",
		IsNull:              "IS NULL",
		IsNotNull:           "IS NOT NULL",
		Update:              "UPDATE",
		Set:                 "SET",
		InsertInto:          "INSERT INTO",
		Values:              "VALUES",
		Placeholder:         "?",
		ArgumentSeparator:   ", ",
		Cast:                "CAST(%s AS %s)",
	}
}

func (w *ReservedWords) entries() map[string]*string {
	return map[string]*string{
		"select":                 &w.Select,
		"from":                   &w.From,
		"where":                  &w.Where,
		"join":                   &w.Join,
		"left":                   &w.Left,
		"right":                  &w.Right,
		"inner":                  &w.Inner,
		"on":                     &w.On,
		"as":                     &w.As,
		"return_all":             &w.ReturnAll,
		"group_by":               &w.GroupBy,
		"order_by":               &w.OrderBy,
		"desc":                   &w.Desc,
		"limit":                  &w.Limit,
		"and":                    &w.And,
		"or":                     &w.Or,
		"distinct":               &w.Distinct,
		"equals":                 &w.Equals,
		"not_in":                 &w.NotIn,
		"in":                     &w.In,
		"greater_than":           &w.GreaterThan,
		"greater_than_or_equals": &w.GreaterThanOrEquals,
		"smaller_than":           &w.SmallerThan,
		"smaller_than_or_equals": &w.SmallerThanOrEquals,
		"like":                   &w.Like,
		"is_null":                &w.IsNull,
		"is_not_null":            &w.IsNotNull,
		"update":                 &w.Update,
		"set":                    &w.Set,
		"insert_into":            &w.InsertInto,
		"values":                 &w.Values,
		"placeholder":            &w.Placeholder,
		"argument_separator":     &w.ArgumentSeparator,
		"cast":                   &w.Cast,
	}
}

// Override replaces the spelling of the named keyword. Names are the
// snake_case field names (e.g. "like", "is_not_null", "placeholder").
func (w *ReservedWords) Override(name, value string) error {
	p, ok := w.entries()[strings.ToLower(name)]
	if !ok {
		return fmt.Errorf("unknown reserved word %q", name)
	}
	*p = value
	return nil
}

// Names returns every overridable keyword name, sorted.
func (w *ReservedWords) Names() []string {
	entries := w.entries()
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the spelling of the named keyword.
func (w *ReservedWords) Lookup(name string) (string, bool) {
	p, ok := w.entries()[strings.ToLower(name)]
	if !ok {
		return "", false
	}
	return *p, true
}

// Dialect is a named keyword table.
type Dialect struct {
	Name  string
	Words ReservedWords
}

// Default is the generic dialect with "?" placeholders.
func Default() Dialect {
	return Dialect{Name: "default", Words: DefaultReservedWords()}
}

// PostgreSQL uses numbered placeholders and :: casts.
func PostgreSQL() Dialect {
	w := DefaultReservedWords()
	w.Placeholder = "$"
	w.NumberedPlaceholders = true
	w.Cast = "%s::%s"
	return Dialect{Name: "postgres", Words: w}
}

// MySQL uses "?" placeholders and != for distinct.
func MySQL() Dialect {
	w := DefaultReservedWords()
	w.Distinct = "!="
	return Dialect{Name: "mysql", Words: w}
}

// SQLite uses "?" placeholders.
func SQLite() Dialect {
	return Dialect{Name: "sqlite", Words: DefaultReservedWords()}
}

// DialectFor returns the dialect for a provider or driver name
func DialectFor(provider string) Dialect {
	switch strings.ToLower(provider) {
	case "postgresql", "postgres", "pgx":
		return PostgreSQL()
	case "mysql":
		return MySQL()
	case "sqlite", "sqlite3":
		return SQLite()
	default:
		return Default()
	}
}

// WithOverrides returns a copy of d with the given keyword overrides applied.
func (d Dialect) WithOverrides(overrides map[string]string) (Dialect, error) {
	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := d.Words.Override(name, overrides[name]); err != nil {
			return d, err
		}
	}
	return d, nil
}
