package sqlgen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/javaito/PostgresStorageLayer/query/ast"
)

type arity int

const (
	// one placeholder, always
	single arity = iota
	// one placeholder per element of the resolved value
	list
)

// opRule describes how an operator is rendered.
type opRule struct {
	keyword func(*ReservedWords) string
	arity   arity
	// null, when set, replaces keyword and placeholder for a nil value.
	null func(*ReservedWords) string
}

var operators = map[ast.Operator]opRule{
	ast.Equals: {
		keyword: func(w *ReservedWords) string { return w.Equals },
		null:    func(w *ReservedWords) string { return w.IsNull },
	},
	ast.Distinct: {
		keyword: func(w *ReservedWords) string { return w.Distinct },
		null:    func(w *ReservedWords) string { return w.IsNotNull },
	},
	ast.GreaterThan:        {keyword: func(w *ReservedWords) string { return w.GreaterThan }},
	ast.GreaterThanOrEqual: {keyword: func(w *ReservedWords) string { return w.GreaterThanOrEquals }},
	ast.SmallerThan:        {keyword: func(w *ReservedWords) string { return w.SmallerThan }},
	ast.SmallerThanOrEqual: {keyword: func(w *ReservedWords) string { return w.SmallerThanOrEquals }},
	ast.Like:               {keyword: func(w *ReservedWords) string { return w.Like }},
	ast.In:                 {keyword: func(w *ReservedWords) string { return w.In }, arity: list},
	ast.NotIn:              {keyword: func(w *ReservedWords) string { return w.NotIn }, arity: list},
}

// Expands reports whether op takes one placeholder per collection element.
func Expands(op ast.Operator) bool {
	return operators[op].arity == list
}

// RewritesNull reports whether op turns a nil value into an IS [NOT] NULL
// test with no placeholder.
func RewritesNull(op ast.Operator) bool {
	return operators[op].null != nil
}

// placeholders hands out placeholder tokens in statement text order.
type placeholders struct {
	words *ReservedWords
	n     int
}

func (p *placeholders) next() string {
	p.n++
	if p.words.NumberedPlaceholders {
		return p.words.Placeholder + strconv.Itoa(p.n)
	}
	return p.words.Placeholder
}

func (p *placeholders) typed(typ string) string {
	ph := p.next()
	if typ == "" {
		return ph
	}
	return fmt.Sprintf(p.words.Cast, ph, typ)
}

// buildGroup renders the children of g joined by g's connective. Nested
// groups are parenthesized; groups without any leaf are skipped.
func (c *Compiler) buildGroup(ph *placeholders, g ast.Group, params []any) (string, error) {
	var parts []string
	for _, child := range g.Evaluators() {
		switch e := child.(type) {
		case ast.Group:
			inner, err := c.buildGroup(ph, e, params)
			if err != nil {
				return "", err
			}
			if inner != "" {
				parts = append(parts, "("+inner+")")
			}
		case *ast.FieldEvaluator:
			leaf, err := c.buildField(ph, e, params)
			if err != nil {
				return "", err
			}
			parts = append(parts, leaf)
		default:
			return "", fmt.Errorf("%w: %T", ErrUnsupportedNode, child)
		}
	}

	op := c.words.And
	if g.Connective() == ast.ConnectiveOr {
		op = c.words.Or
	}
	return strings.Join(parts, " "+op+" "), nil
}

func (c *Compiler) buildField(ph *placeholders, f *ast.FieldEvaluator, params []any) (string, error) {
	rule, ok := operators[f.Operator]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedOperator, f.Operator)
	}
	value, err := ast.Resolve(f.Value, params)
	if err != nil {
		return "", fmt.Errorf("%w: field %s: %v", ErrCompilation, f.Field, err)
	}

	column := c.norm.ToDataSource(f.Field)
	if rule.null != nil && ast.IsNull(value) {
		return column + " " + rule.null(&c.words), nil
	}

	keyword := rule.keyword(&c.words)
	if rule.arity == single {
		return column + " " + keyword + " " + ph.next(), nil
	}

	n := 1
	if elems, ok := ast.Elements(value); ok {
		if len(elems) == 0 {
			return "", fmt.Errorf("%w: field %s", ErrEmptyList, f.Field)
		}
		n = len(elems)
	}
	tokens := make([]string, n)
	for i := range tokens {
		tokens[i] = ph.next()
	}
	return fmt.Sprintf("%s %s (%s)", column, keyword, strings.Join(tokens, c.words.ArgumentSeparator)), nil
}
