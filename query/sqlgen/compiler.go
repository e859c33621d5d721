package sqlgen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/javaito/PostgresStorageLayer/query/ast"
	"github.com/javaito/PostgresStorageLayer/query/normalize"
)

// Statement is compiled SQL text and the number of placeholders it holds.
type Statement struct {
	SQL          string
	Placeholders int
}

func (s *Statement) String() string { return s.SQL }

// Compiler renders queries for one dialect. It holds no per-statement state
// and is safe for concurrent use.
type Compiler struct {
	words ReservedWords
	norm  normalize.Normalizer
}

// NewCompiler creates a compiler. A nil normalizer leaves references unchanged.
func NewCompiler(d Dialect, n normalize.Normalizer) *Compiler {
	if n == nil {
		n = normalize.Identity()
	}
	return &Compiler{words: d.Words, norm: n}
}

// Words returns the keyword table in use.
func (c *Compiler) Words() ReservedWords { return c.words }

// Normalizer returns the field normalizer in use.
func (c *Compiler) Normalizer() normalize.Normalizer { return c.norm }

// Predicate compiles a standalone boolean expression. An empty group yields
// an empty statement.
func (c *Compiler) Predicate(g ast.Group, params ...any) (*Statement, error) {
	ph := &placeholders{words: &c.words}
	sql, err := c.buildGroup(ph, g, params)
	if err != nil {
		return nil, err
	}
	return &Statement{SQL: sql, Placeholders: ph.n}, nil
}

// Select compiles q into a SELECT statement. params resolve ast.Param values
// and must be the same list later given to the binder.
func (c *Compiler) Select(q *ast.Query, params ...any) (*Statement, error) {
	if q == nil || q.Resource == "" {
		return nil, ErrNoResource
	}
	if q.Limit != nil && *q.Limit < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeLimit, *q.Limit)
	}
	w := &c.words
	ph := &placeholders{words: w}

	var parts []string
	parts = append(parts, w.Select, c.projection(q))
	parts = append(parts, w.From, c.norm.Resource(q.Resource))

	for _, j := range q.Joins {
		parts = append(parts, c.join(j))
	}

	where, err := c.buildGroup(ph, q.Predicate(), params)
	if err != nil {
		return nil, err
	}
	if where != "" {
		parts = append(parts, w.Where, where)
	}

	if len(q.GroupBy) > 0 {
		fields := make([]string, len(q.GroupBy))
		for i, f := range q.GroupBy {
			fields[i] = c.norm.ToDataSource(f)
		}
		parts = append(parts, w.GroupBy, strings.Join(fields, w.ArgumentSeparator))
	}

	if len(q.OrderBy) > 0 {
		fields := make([]string, len(q.OrderBy))
		for i, o := range q.OrderBy {
			fields[i] = c.norm.ToDataSource(o.Field)
			if o.Desc {
				fields[i] += " " + w.Desc
			}
		}
		parts = append(parts, w.OrderBy, strings.Join(fields, w.ArgumentSeparator))
	}

	if q.Limit != nil {
		parts = append(parts, w.Limit, strconv.Itoa(*q.Limit))
	}

	return &Statement{SQL: strings.Join(parts, " "), Placeholders: ph.n}, nil
}

func (c *Compiler) projection(q *ast.Query) string {
	if q.ReturnsAll() {
		return c.words.ReturnAll
	}
	fields := make([]string, len(q.Fields))
	for i, f := range q.Fields {
		fields[i] = c.norm.ToDataSource(f.Name)
		if f.Alias != "" {
			fields[i] += " " + c.words.As + " " + f.Alias
		}
	}
	return strings.Join(fields, c.words.ArgumentSeparator)
}

func (c *Compiler) join(j ast.Join) string {
	var keyword string
	switch j.Type {
	case ast.InnerJoin:
		keyword = c.words.Inner + " " + c.words.Join
	case ast.LeftJoin:
		keyword = c.words.Left + " " + c.words.Join
	case ast.RightJoin:
		keyword = c.words.Right + " " + c.words.Join
	default:
		keyword = c.words.Join
	}
	return fmt.Sprintf("%s %s %s %s %s %s", keyword, c.norm.Resource(j.Resource), c.words.On, j.Left, c.words.Equals, j.Right)
}

// Update compiles an UPDATE of q.Resource. SET placeholders come first, in
// values order, followed by the WHERE placeholders. An update without a
// predicate is rejected.
func (c *Compiler) Update(q *ast.Query, values *ast.Values, params ...any) (*Statement, error) {
	if q == nil || q.Resource == "" {
		return nil, ErrNoResource
	}
	if values.Len() == 0 {
		return nil, ErrNoValues
	}
	w := &c.words
	ph := &placeholders{words: w}

	assignments := make([]string, 0, values.Len())
	for _, field := range values.Keys() {
		sv, _ := values.Get(field)
		assignments = append(assignments, fmt.Sprintf("%s %s %s", c.column(q.Resource, field), w.Equals, ph.typed(sv.Type)))
	}

	where, err := c.buildGroup(ph, q.Predicate(), params)
	if err != nil {
		return nil, err
	}
	if where == "" {
		return nil, fmt.Errorf("%w: %s", ErrUnconditionalUpdate, q.Resource)
	}

	parts := []string{
		w.Update, c.norm.Resource(q.Resource),
		w.Set, strings.Join(assignments, w.ArgumentSeparator),
		w.Where, where,
	}
	return &Statement{SQL: strings.Join(parts, " "), Placeholders: ph.n}, nil
}

// Insert compiles an INSERT of one row into resource.
func (c *Compiler) Insert(resource string, values *ast.Values) (*Statement, error) {
	if resource == "" {
		return nil, ErrNoResource
	}
	if values.Len() == 0 {
		return nil, ErrNoValues
	}
	w := &c.words
	ph := &placeholders{words: w}

	columns := make([]string, 0, values.Len())
	tokens := make([]string, 0, values.Len())
	for _, field := range values.Keys() {
		sv, _ := values.Get(field)
		columns = append(columns, c.column(resource, field))
		tokens = append(tokens, ph.typed(sv.Type))
	}

	sql := fmt.Sprintf("%s %s (%s) %s (%s)",
		w.InsertInto, c.norm.Resource(resource),
		strings.Join(columns, w.ArgumentSeparator),
		w.Values,
		strings.Join(tokens, w.ArgumentSeparator))
	return &Statement{SQL: sql, Placeholders: ph.n}, nil
}

// column returns the unqualified data-source column written by SET and
// INSERT for an application field of resource.
func (c *Compiler) column(resource, field string) string {
	if q, _ := normalize.Split(field); q == "" {
		field = normalize.Join(resource, field)
	}
	_, name := normalize.Split(c.norm.ToDataSource(field))
	return name
}
