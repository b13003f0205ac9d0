package parser

import (
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer/stateful"
	"github.com/squareup/rowcodec/errors"
	"github.com/squareup/rowcodec/value"
)

var (
	lex = stateful.MustSimple([]stateful.Rule{
		{`Ident`, `[a-zA-Z_][a-zA-Z_0-9]*`, nil},
		{`Comment`, `--[^\n]*`, nil},
		{`Number`, `[-+]?\d*\.?\d+([eE][-+]?\d+)?`, nil},
		{`String`, `'[^']*'|"[^"]*"`, nil},
		{`Punct`, `[,()\[\];]`, nil},
		{`Whitespace`, `\s+`, nil},
	})
	parser = participle.MustBuild(&AST{},
		participle.Lexer(lex),
		participle.CaseInsensitive("Ident"),
		participle.Elide("Whitespace", "Comment"),
		participle.UseLookahead(2),
		participle.Unquote("String"),
	)
)

// Parse DDL statements. filename only labels positions in errors.
func Parse(filename string, ddl string) (*AST, error) {
	ast := &AST{}
	err := parser.ParseString(filename, ddl, ast)
	return ast, errors.MaybeAddStack(err)
}

func parseInt(l *Literal) (value.Value, error) {
	i, err := strconv.ParseInt(*l.Number, 10, 64)
	if err != nil {
		return value.Value{}, errors.Wrapf(err, "invalid integer %s at %s", *l.Number, l.Pos)
	}
	return value.NewInt(i), nil
}

func parseFloat(l *Literal) (value.Value, error) {
	f, err := strconv.ParseFloat(*l.Number, 64)
	if err != nil {
		return value.Value{}, errors.Wrapf(err, "invalid number %s at %s", *l.Number, l.Pos)
	}
	return value.NewFloat(f), nil
}
