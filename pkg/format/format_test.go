package format_test

import (
	"encoding/json"
	"testing"

	"github.com/leapstack-labs/tally/pkg/ast"
	"github.com/leapstack-labs/tally/pkg/format"
	"github.com/leapstack-labs/tally/pkg/lexer"
	"github.com/leapstack-labs/tally/pkg/parser"
	"github.com/leapstack-labs/tally/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func parse(t *testing.T, text string) ast.Node {
	t.Helper()
	tokens, err := lexer.Tokenize(token.NewSource("test", text))
	require.NoError(t, err)
	node, err := parser.Parse(tokens)
	require.NoError(t, err)
	return node
}

func TestSexpr(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1", "1"},
		{"2 + 3 * 4", "(+ 2 (* 3 4))"},
		{"-x", "(neg x)"},
		{"+x", "(pos x)"},
		{"VAR x = 5", "(VAR x 5)"},
		{"2 ^ 3 ^ 2", "(^ 2 (^ 3 2))"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, format.Sexpr(parse(t, tt.input)), tt.input)
	}
}

func TestSource(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1+2*3", "1 + (2 * 3)"},
		{"(1+2)*3", "(1 + 2) * 3"},
		{"-(1+2)", "-(1 + 2)"},
		{"- -3", "-(-3)"},
		{"VAR a = VAR b = 2", "VAR a = VAR b = 2"},
		{"1 + (VAR x = 2)", "1 + (VAR x = 2)"},
		{"2^3^2", "2 ^ (3 ^ 2)"},
		{"10 - 4 - 3", "(10 - 4) - 3"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			node := parse(t, tt.input)
			got := format.Source(node)
			assert.Equal(t, tt.want, got)

			// Canonical source reparses to the same tree.
			assert.Equal(t, format.Sexpr(node), format.Sexpr(parse(t, got)))
		})
	}
}

func TestTree(t *testing.T) {
	tree := format.Tree(parse(t, "VAR x = -1.5 * y"))

	assert.Equal(t, "assign", tree.Kind)
	assert.Equal(t, "x", tree.Name)
	assert.Equal(t, format.SpanView{Start: "1:1", End: "1:17"}, tree.Span)
	require.Len(t, tree.Children, 1)

	mul := tree.Children[0]
	assert.Equal(t, "binary", mul.Kind)
	assert.Equal(t, "*", mul.Op)
	require.Len(t, mul.Children, 2)
	assert.Equal(t, "unary", mul.Children[0].Kind)
	assert.Equal(t, "-", mul.Children[0].Op)
	assert.Equal(t, "1.5", mul.Children[0].Children[0].Literal)
	assert.Equal(t, "ref", mul.Children[1].Kind)

	data, err := json.Marshal(tree)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind":"assign"`)
	assert.NotContains(t, string(data), `"op":""`)

	out, err := yaml.Marshal(tree)
	require.NoError(t, err)
	assert.Contains(t, string(out), "kind: assign")
}
