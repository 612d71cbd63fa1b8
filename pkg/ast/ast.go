// Package ast defines the expression tree produced by the parser.
//
// The set of node types is closed: only the types in this package implement
// Node, so a type switch over them in an evaluator or printer is exhaustive.
package ast

import (
	"github.com/leapstack-labs/tally/pkg/token"
)

// Node is an expression in the tree. Every node's span encloses the spans
// of its children.
type Node interface {
	Span() token.Span
	node()
}

// NumberLiteral is an integer or float literal.
type NumberLiteral struct {
	Token token.Token
}

// BinaryOp is Left Op Right for one of + - * / ^.
type BinaryOp struct {
	Left  Node
	Op    token.Token
	Right Node
}

// UnaryOp is a prefix + or - applied to Operand.
type UnaryOp struct {
	Op      token.Token
	Operand Node
}

// VariableRef reads a variable.
type VariableRef struct {
	Name token.Token
}

// VariableAssign is VAR Name = Value.
type VariableAssign struct {
	Keyword token.Token
	Name    token.Token
	Value   Node
}

func (n *NumberLiteral) Span() token.Span { return n.Token.Span }
func (n *BinaryOp) Span() token.Span      { return token.Join(n.Left.Span(), n.Right.Span()) }
func (n *UnaryOp) Span() token.Span       { return token.Join(n.Op.Span, n.Operand.Span()) }
func (n *VariableRef) Span() token.Span   { return n.Name.Span }

func (n *VariableAssign) Span() token.Span {
	start := n.Name.Span
	if n.Keyword.Kind == token.KEYWORD {
		start = n.Keyword.Span
	}
	return token.Join(start, n.Value.Span())
}

func (*NumberLiteral) node()  {}
func (*BinaryOp) node()       {}
func (*UnaryOp) node()        {}
func (*VariableRef) node()    {}
func (*VariableAssign) node() {}

// Children returns the direct sub-expressions of n in source order.
func Children(n Node) []Node {
	switch n := n.(type) {
	case *BinaryOp:
		return []Node{n.Left, n.Right}
	case *UnaryOp:
		return []Node{n.Operand}
	case *VariableAssign:
		return []Node{n.Value}
	default:
		return nil
	}
}

// Walk calls fn for n and each of its descendants in pre-order. If fn
// returns false the children of that node are skipped.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, child := range Children(n) {
		Walk(child, fn)
	}
}
