// Package parse reads filter expressions such as
//
//	age >= 18 AND (role IN ('admin', 'editor') OR email IS NULL)
//
// into evaluator trees. $1, $2... refer to the parameters given when the
// query is compiled and bound.
package parse

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/javaito/PostgresStorageLayer/query/ast"
	"github.com/javaito/PostgresStorageLayer/query/sqlgen"
)

// ErrSyntax is returned for filter text that cannot be parsed. It is a
// compilation error.
var ErrSyntax = fmt.Errorf("%w: filter syntax error", sqlgen.ErrCompilation)

type orExpr struct {
	And []*andExpr `@@ ( "OR" @@ )*`
}

type andExpr struct {
	Terms []*term `@@ ( "AND" @@ )*`
}

type term struct {
	Group      *orExpr     `  "(" @@ ")"`
	Comparison *comparison `| @@`
}

type comparison struct {
	Pos   lexer.Position
	Field string    `@Ident`
	Is    *isNull   `( @@`
	Op    *operator `| @@`
	Value *value    `  @@ )`
}

type isNull struct {
	Not bool `"IS" @"NOT"? "NULL"`
}

type operator struct {
	Symbol string `  @Operator`
	NotIn  bool   `| @"NOT" "IN"`
	In     bool   `| @"IN"`
	Like   bool   `| @"LIKE"`
}

type value struct {
	Pos    lexer.Position
	Param  *string  `  @Param`
	Null   bool     `| @"NULL"`
	Bool   *string  `| @("TRUE" | "FALSE")`
	Number *string  `| @Number`
	String *string  `| @String`
	List   []*value `| "(" ( @@ ( "," @@ )* )? ")"`
}

var parser = participle.MustBuild[orExpr](
	participle.Lexer(filterLexer),
	participle.Elide("Whitespace"),
	participle.CaseInsensitive("Keyword"),
	participle.Map(unquote, "String"),
	participle.UseLookahead(2),
)

func unquote(t lexer.Token) (lexer.Token, error) {
	t.Value = strings.ReplaceAll(t.Value[1:len(t.Value)-1], "''", "'")
	return t, nil
}

// Parse parses a filter expression into a predicate group. Blank text
// yields an empty AND group.
func Parse(text string) (ast.Group, error) {
	if strings.TrimSpace(text) == "" {
		return ast.NewAnd(), nil
	}
	raw, err := parser.ParseString("", text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSyntax, err)
	}
	e, err := raw.evaluator()
	if err != nil {
		return nil, err
	}
	if g, ok := e.(ast.Group); ok {
		return g, nil
	}
	return ast.NewAnd(e), nil
}

// MustParse is like Parse but panics on error.
func MustParse(text string) ast.Group {
	g, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return g
}

// Query returns a query over resource filtered by text.
func Query(resource, text string) (*ast.Query, error) {
	g, err := Parse(text)
	if err != nil {
		return nil, err
	}
	q := ast.NewQuery(resource)
	q.Where = g
	return q, nil
}

func (o *orExpr) evaluator() (ast.Evaluator, error) {
	if len(o.And) == 1 {
		return o.And[0].evaluator()
	}
	g := ast.NewOr()
	for _, a := range o.And {
		e, err := a.evaluator()
		if err != nil {
			return nil, err
		}
		g.Add(e)
	}
	return g, nil
}

func (a *andExpr) evaluator() (ast.Evaluator, error) {
	if len(a.Terms) == 1 {
		return a.Terms[0].evaluator()
	}
	g := ast.NewAnd()
	for _, t := range a.Terms {
		e, err := t.evaluator()
		if err != nil {
			return nil, err
		}
		g.Add(e)
	}
	return g, nil
}

func (t *term) evaluator() (ast.Evaluator, error) {
	if t.Group != nil {
		return t.Group.evaluator()
	}
	return t.Comparison.evaluator()
}

var symbols = map[string]ast.Operator{
	"=":  ast.Equals,
	"<>": ast.Distinct,
	"!=": ast.Distinct,
	">":  ast.GreaterThan,
	">=": ast.GreaterThanOrEqual,
	"<":  ast.SmallerThan,
	"<=": ast.SmallerThanOrEqual,
}

func (c *comparison) evaluator() (ast.Evaluator, error) {
	if c.Is != nil {
		if c.Is.Not {
			return ast.Compare(ast.Distinct, c.Field, nil), nil
		}
		return ast.Compare(ast.Equals, c.Field, nil), nil
	}

	var op ast.Operator
	switch {
	case c.Op.NotIn:
		op = ast.NotIn
	case c.Op.In:
		op = ast.In
	case c.Op.Like:
		op = ast.Like
	default:
		op = symbols[c.Op.Symbol]
	}

	v, err := c.Value.literal(true)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: field %s: %w", ErrSyntax, c.Pos, c.Field, err)
	}
	return ast.Compare(op, c.Field, v), nil
}

var errNestedValue = errors.New("lists may only hold literals")

func (v *value) literal(top bool) (any, error) {
	switch {
	case v.Param != nil:
		if !top {
			return nil, errNestedValue
		}
		n, err := strconv.Atoi((*v.Param)[1:])
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid parameter %s", *v.Param)
		}
		return ast.Param(n - 1), nil
	case v.Null:
		return nil, nil
	case v.Bool != nil:
		return strings.EqualFold(*v.Bool, "TRUE"), nil
	case v.Number != nil:
		if i, err := strconv.ParseInt(*v.Number, 10, 64); err == nil {
			return i, nil
		}
		return strconv.ParseFloat(*v.Number, 64)
	case v.String != nil:
		return *v.String, nil
	}

	if !top {
		return nil, errNestedValue
	}
	list := make([]any, 0, len(v.List))
	for _, e := range v.List {
		item, err := e.literal(false)
		if err != nil {
			return nil, err
		}
		list = append(list, item)
	}
	return list, nil
}
