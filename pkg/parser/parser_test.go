package parser_test

import (
	"strings"
	"testing"

	"github.com/leapstack-labs/tally/pkg/ast"
	"github.com/leapstack-labs/tally/pkg/diag"
	"github.com/leapstack-labs/tally/pkg/format"
	"github.com/leapstack-labs/tally/pkg/lexer"
	"github.com/leapstack-labs/tally/pkg/parser"
	"github.com/leapstack-labs/tally/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lex(t *testing.T, input string) []token.Token {
	t.Helper()
	tokens, err := lexer.Tokenize(token.NewSource("test", input))
	require.NoError(t, err)
	return tokens
}

func parse(t *testing.T, input string, opts ...parser.Option) (ast.Node, error) {
	t.Helper()
	return parser.Parse(lex(t, input), opts...)
}

// ---------- Precedence and associativity ----------

func TestParseShape(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "literal", input: "42", want: "42"},
		{name: "float literal", input: "4.2", want: "4.2"},
		{name: "variable", input: "x", want: "x"},
		{name: "mul binds tighter than add", input: "2 + 3 * 4", want: "(+ 2 (* 3 4))"},
		{name: "sub is left associative", input: "1 - 2 - 3", want: "(- (- 1 2) 3)"},
		{name: "div is left associative", input: "8 / 4 / 2", want: "(/ (/ 8 4) 2)"},
		{name: "power is right associative", input: "2 ^ 3 ^ 2", want: "(^ 2 (^ 3 2))"},
		{name: "power binds tighter than mul on the left", input: "2^3*4", want: "(* (^ 2 3) 4)"},
		{name: "power binds tighter than mul on the right", input: "2*3^2", want: "(* 2 (^ 3 2))"},
		{name: "unary minus applies to the power", input: "-2^2", want: "(neg (^ 2 2))"},
		{name: "unary in exponent", input: "2^-1", want: "(^ 2 (neg 1))"},
		{name: "stacked unary", input: "--5", want: "(neg (neg 5))"},
		{name: "unary plus", input: "+x", want: "(pos x)"},
		{name: "parentheses override precedence", input: "(1 + 2) * 3", want: "(* (+ 1 2) 3)"},
		{name: "parenthesized power base", input: "(2^3)^2", want: "(^ (^ 2 3) 2)"},
		{name: "assignment", input: "VAR x = 1 + 2", want: "(VAR x (+ 1 2))"},
		{name: "chained assignment", input: "VAR x = VAR y = 3", want: "(VAR x (VAR y 3))"},
		{name: "assignment inside parentheses", input: "1 + (VAR b = 2)", want: "(+ 1 (VAR b 2))"},
		{name: "newlines are whitespace", input: "1 +\n2 *\n3", want: "(+ 1 (* 2 3))"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := parse(t, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, format.Sexpr(node))
		})
	}
}

// ---------- Errors ----------

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
		wantAt  string // source text under the error span
	}{
		{name: "unbalanced paren", input: "(2 + 3", wantMsg: parser.ErrExpectedRParen, wantAt: ""},
		{name: "missing identifier", input: "VAR 5 = 1", wantMsg: parser.ErrExpectedIdent, wantAt: "5"},
		{name: "keyword as identifier", input: "VAR VAR = 1", wantMsg: parser.ErrExpectedIdent, wantAt: "VAR"},
		{name: "missing equals", input: "VAR x 1", wantMsg: parser.ErrExpectedEquals, wantAt: "1"},
		{name: "missing value", input: "VAR x =", wantMsg: parser.ErrExpectedAtom, wantAt: ""},
		{name: "empty input", input: "", wantMsg: parser.ErrExpectedAtom, wantAt: ""},
		{name: "leading operator", input: "*3", wantMsg: parser.ErrExpectedAtom, wantAt: "*"},
		{name: "dangling operator", input: "1 +", wantMsg: parser.ErrExpectedAtom, wantAt: ""},
		{name: "empty parentheses", input: "()", wantMsg: parser.ErrExpectedAtom, wantAt: ")"},
		{name: "trailing number", input: "1 2", wantMsg: parser.ErrExpectedOperator, wantAt: "2"},
		{name: "assignment without VAR", input: "x = 3", wantMsg: parser.ErrExpectedOperator, wantAt: "="},
		{name: "stray closing paren", input: "1)", wantMsg: parser.ErrExpectedOperator, wantAt: ")"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := parse(t, tt.input)
			require.Error(t, err)
			assert.Nil(t, node, "no partial tree on error")

			de, ok := diag.As(err)
			require.True(t, ok)
			assert.Equal(t, diag.SyntaxError, de.Kind)
			assert.Equal(t, tt.wantMsg, de.Message)
			assert.Equal(t, tt.wantAt, de.Span.Text())
		})
	}
}

func TestParseNestingLimit(t *testing.T) {
	deepParens := strings.Repeat("(", 1000) + "1" + strings.Repeat(")", 1000)
	deepUnary := strings.Repeat("-", 5000) + "1"

	for _, input := range []string{deepParens, deepUnary} {
		_, err := parse(t, input)
		require.Error(t, err)
		assert.True(t, diag.IsKind(err, diag.SyntaxError))
		assert.Contains(t, err.Error(), parser.ErrTooDeep)
	}

	node, err := parse(t, deepParens, parser.WithMaxDepth(2100))
	require.NoError(t, err)
	assert.Equal(t, "1", format.Sexpr(node))
}

func TestParseWithoutEOFToken(t *testing.T) {
	tokens := lex(t, "1 + 2")
	node, err := parser.Parse(tokens[:len(tokens)-1])
	require.NoError(t, err)
	assert.Equal(t, "(+ 1 2)", format.Sexpr(node))

	_, err = parser.Parse(nil)
	require.Error(t, err)
	assert.True(t, diag.IsKind(err, diag.SyntaxError))
}

// ---------- Spans ----------

func TestParseSpansEncloseChildren(t *testing.T) {
	input := "VAR total = -(a + 2.5) * b ^ 2 / 4"
	node, err := parse(t, input)
	require.NoError(t, err)

	assert.Equal(t, input, node.Span().Text())

	ast.Walk(node, func(n ast.Node) bool {
		for _, child := range ast.Children(n) {
			assert.True(t, n.Span().Encloses(child.Span()),
				"%s does not enclose %s", format.Sexpr(n), format.Sexpr(child))
		}
		return true
	})
}

func TestParseBinarySpan(t *testing.T) {
	node, err := parse(t, "x + 10")
	require.NoError(t, err)

	bin, ok := node.(*ast.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, token.PLUS, bin.Op.Kind)
	assert.Equal(t, "x", bin.Left.Span().Text())
	assert.Equal(t, "10", bin.Right.Span().Text())
	assert.Equal(t, "x + 10", bin.Span().Text())
}

// ---------- Round trip ----------

func TestTokensJoinedWithSpacesReparse(t *testing.T) {
	inputs := []string{
		"2 + 3 * 4",
		"2^3^2",
		"VAR x=(1+2)*-3",
		"--5",
		"1.5/x",
		"VAR a = VAR b = 2 ^ -1",
		"((((7))))",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			tokens := lex(t, input)
			original, err := parser.Parse(tokens)
			require.NoError(t, err)

			parts := make([]string, 0, len(tokens))
			for _, tok := range tokens {
				if tok.Kind != token.EOF {
					parts = append(parts, tok.Text())
				}
			}
			rejoined, err := parse(t, strings.Join(parts, " "))
			require.NoError(t, err)
			assert.Equal(t, format.Sexpr(original), format.Sexpr(rejoined))
		})
	}
}
