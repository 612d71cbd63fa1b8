package format

import (
	"fmt"

	"github.com/leapstack-labs/tally/pkg/ast"
	"github.com/leapstack-labs/tally/pkg/token"
)

// TreeNode is a serializable view of an AST node.
type TreeNode struct {
	Kind     string      `json:"kind" yaml:"kind"`
	Op       string      `json:"op,omitempty" yaml:"op,omitempty"`
	Name     string      `json:"name,omitempty" yaml:"name,omitempty"`
	Literal  string      `json:"literal,omitempty" yaml:"literal,omitempty"`
	Span     SpanView    `json:"span" yaml:"span"`
	Children []*TreeNode `json:"children,omitempty" yaml:"children,omitempty"`
}

// SpanView is a 1-based line/column rendering of a span.
type SpanView struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
}

func viewSpan(s token.Span) SpanView {
	return SpanView{
		Start: fmt.Sprintf("%d:%d", s.Start.Line+1, s.Start.Column+1),
		End:   fmt.Sprintf("%d:%d", s.End.Line+1, s.End.Column+1),
	}
}

// Tree converts n into a TreeNode suitable for JSON or YAML encoding.
func Tree(n ast.Node) *TreeNode {
	t := &TreeNode{Span: viewSpan(n.Span())}
	switch n := n.(type) {
	case *ast.NumberLiteral:
		t.Kind = "number"
		t.Literal = n.Token.Literal
	case *ast.VariableRef:
		t.Kind = "ref"
		t.Name = n.Name.Literal
	case *ast.VariableAssign:
		t.Kind = "assign"
		t.Name = n.Name.Literal
	case *ast.UnaryOp:
		t.Kind = "unary"
		t.Op = n.Op.Kind.String()
	case *ast.BinaryOp:
		t.Kind = "binary"
		t.Op = n.Op.Kind.String()
	default:
		panic(fmt.Sprintf("format: unhandled node type %T", n))
	}
	for _, child := range ast.Children(n) {
		t.Children = append(t.Children, Tree(child))
	}
	return t
}
