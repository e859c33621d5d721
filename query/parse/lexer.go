package parse

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// filterLexer defines the token types of the filter language.
var filterLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Keyword", Pattern: `(?i)\b(AND|OR|NOT|IN|LIKE|IS|NULL|TRUE|FALSE)\b`},
	{Name: "Param", Pattern: `\$\d+`},
	{Name: "String", Pattern: `'(?:''|[^'])*'`},
	{Name: "Number", Pattern: `-?\d+(?:\.\d+)?`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z_][A-Za-z0-9_]*)*`},
	{Name: "Operator", Pattern: `<>|!=|>=|<=|=|>|<`},
	{Name: "Punct", Pattern: `[(),]`},
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
})
