// Package interp evaluates Tally expression trees against an environment.
package interp

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/tally/pkg/ast"
	"github.com/leapstack-labs/tally/pkg/diag"
	"github.com/leapstack-labs/tally/pkg/env"
	"github.com/leapstack-labs/tally/pkg/token"
	"github.com/leapstack-labs/tally/pkg/value"
)

// DefaultMaxDepth bounds evaluation recursion. Trees from the parser never
// reach it; it guards trees assembled by hand.
const DefaultMaxDepth = 10000

// Interpreter is a tree-walking evaluator. The zero value is ready to use.
type Interpreter struct {
	// MaxDepth limits recursion; zero selects DefaultMaxDepth.
	MaxDepth int

	depth int
}

// Evaluate evaluates node in e with a zero-value Interpreter.
func Evaluate(node ast.Node, e *env.Environment) (value.Number, error) {
	var in Interpreter
	return in.Evaluate(node, e)
}

// Evaluate computes the value of node. Assignments bind into e. Evaluation
// stops at the first RuntimeError.
func (in *Interpreter) Evaluate(node ast.Node, e *env.Environment) (value.Number, error) {
	limit := in.MaxDepth
	if limit <= 0 {
		limit = DefaultMaxDepth
	}
	if in.depth >= limit {
		return value.Number{}, diag.Errorf(diag.RuntimeError, node.Span(), "Maximum recursion depth exceeded")
	}
	in.depth++
	defer func() { in.depth-- }()

	switch n := node.(type) {
	case *ast.NumberLiteral:
		return in.evalNumber(n)
	case *ast.VariableRef:
		return in.evalRef(n, e)
	case *ast.VariableAssign:
		return in.evalAssign(n, e)
	case *ast.UnaryOp:
		return in.evalUnary(n, e)
	case *ast.BinaryOp:
		return in.evalBinary(n, e)
	default:
		panic(fmt.Sprintf("interp: unhandled node type %T", node))
	}
}

func (in *Interpreter) evalNumber(n *ast.NumberLiteral) (value.Number, error) {
	v, err := value.FromToken(n.Token)
	if err != nil {
		return value.Number{}, diag.Errorf(diag.RuntimeError, n.Span(), "%v", err)
	}
	return v, nil
}

func (in *Interpreter) evalRef(n *ast.VariableRef, e *env.Environment) (value.Number, error) {
	v, ok := e.Get(n.Name.Literal)
	if !ok {
		return value.Number{}, diag.Errorf(diag.RuntimeError, n.Span(), "'%s' is not defined", n.Name.Literal)
	}
	return v.WithSpan(n.Span()), nil
}

func (in *Interpreter) evalAssign(n *ast.VariableAssign, e *env.Environment) (value.Number, error) {
	v, err := in.Evaluate(n.Value, e)
	if err != nil {
		return value.Number{}, err
	}
	e.Set(n.Name.Literal, v)
	return v, nil
}

func (in *Interpreter) evalUnary(n *ast.UnaryOp, e *env.Environment) (value.Number, error) {
	v, err := in.Evaluate(n.Operand, e)
	if err != nil {
		return value.Number{}, err
	}
	switch n.Op.Kind {
	case token.MINUS:
		v = v.Neg()
	case token.PLUS:
	default:
		panic(fmt.Sprintf("interp: unhandled unary operator %s", n.Op.Kind))
	}
	return v.WithSpan(n.Span()), nil
}

func (in *Interpreter) evalBinary(n *ast.BinaryOp, e *env.Environment) (value.Number, error) {
	left, err := in.Evaluate(n.Left, e)
	if err != nil {
		return value.Number{}, err
	}
	right, err := in.Evaluate(n.Right, e)
	if err != nil {
		return value.Number{}, err
	}

	var result value.Number
	switch n.Op.Kind {
	case token.PLUS:
		result = left.Add(right)
	case token.MINUS:
		result = left.Sub(right)
	case token.STAR:
		result = left.Mul(right)
	case token.SLASH:
		result, err = left.Div(right)
	case token.CARET:
		result, err = left.Pow(right)
	default:
		panic(fmt.Sprintf("interp: unhandled binary operator %s", n.Op.Kind))
	}
	if errors.Is(err, value.ErrDivisionByZero) {
		return value.Number{}, diag.Errorf(diag.RuntimeError, right.Span, "Division by zero")
	}
	if err != nil {
		return value.Number{}, diag.Errorf(diag.RuntimeError, n.Span(), "%v", err)
	}
	return result.WithSpan(n.Span()), nil
}
