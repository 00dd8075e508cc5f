package retention

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Query is a full retention expression, optionally followed by a
// "LIMIT n [ORDER BY field [ASC|DESC]]" clause.
type Query struct {
	Expr  *OrExpr `parser:"@@"`
	Limit *Limit  `parser:"@@?"`
}

// Limit is the trailing result-set restriction clause.
type Limit struct {
	N       int64    `parser:"'LIMIT' @Int"`
	OrderBy string   `parser:"('ORDER' 'BY' @Field"`
	Dir     string   `parser:"@('ASC' | 'DESC')?)?"`
}

// OrExpr is a chain of AndExprs joined by "||".
type OrExpr struct {
	Left  *AndExpr `parser:"@@"`
	Right []*AndExpr `parser:"('||' @@)*"`
}

// AndExpr is a chain of NotExprs joined by "&&".
type AndExpr struct {
	Left  *NotExpr `parser:"@@"`
	Right []*NotExpr `parser:"('&&' @@)*"`
}

// NotExpr is an optionally-negated comparison or parenthesized
// sub-expression.
type NotExpr struct {
	Negate     bool        `parser:"@'!'?"`
	Comparison *Comparison `parser:"( @@"`
	Sub        *OrExpr     `parser:"| '(' @@ ')' )"`
}

// Comparison is one "field op value" test.
type Comparison struct {
	Field string `parser:"@Field"`
	Op    string `parser:"@(\"<=\" | \">=\" | \"==\" | \"!=\" | \"<\" | \">\")"`
	Value Value  `parser:"@@"`
}

// Value is a literal on the right-hand side of a comparison.
type Value struct {
	Str *string  `parser:"  @String"`
	Num *float64 `parser:"| @Float"`
	Int *int64   `parser:"| @Int"`
}

var retentionLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "String", Pattern: `"(\\"|[^"])*"`},
	{Name: "Float", Pattern: `[-+]?\d+\.\d+`},
	{Name: "Int", Pattern: `[-+]?\d+`},
	{Name: "Field", Pattern: `[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*`},
	{Name: "Op", Pattern: `<=|>=|==|!=|<|>`},
	{Name: "Punct", Pattern: `[()!]`},
	{Name: "And", Pattern: `&&`},
	{Name: "Or", Pattern: `\|\|`},
})

var parser = participle.MustBuild[Query](
	participle.Lexer(retentionLexer),
	participle.Unquote("String"),
	participle.UseLookahead(2),
	participle.Elide("Whitespace"),
)

// Parse compiles a retention expression string into a Query.
func Parse(source string) (*Query, error) {
	return parser.ParseString("", source)
}
