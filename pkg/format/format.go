// Package format prints Tally expression trees.
package format

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/tally/pkg/ast"
	"github.com/leapstack-labs/tally/pkg/token"
)

// Sexpr renders n as a parenthesized prefix expression, e.g. (+ 2 (* 3 4)).
// Unary minus prints as "neg" and unary plus as "pos" so they are not
// confused with the binary operators.
func Sexpr(n ast.Node) string {
	var b strings.Builder
	writeSexpr(&b, n)
	return b.String()
}

func writeSexpr(b *strings.Builder, n ast.Node) {
	switch n := n.(type) {
	case *ast.NumberLiteral:
		b.WriteString(n.Token.Literal)
	case *ast.VariableRef:
		b.WriteString(n.Name.Literal)
	case *ast.VariableAssign:
		b.WriteString("(VAR ")
		b.WriteString(n.Name.Literal)
		b.WriteByte(' ')
		writeSexpr(b, n.Value)
		b.WriteByte(')')
	case *ast.UnaryOp:
		if n.Op.Kind == token.MINUS {
			b.WriteString("(neg ")
		} else {
			b.WriteString("(pos ")
		}
		writeSexpr(b, n.Operand)
		b.WriteByte(')')
	case *ast.BinaryOp:
		b.WriteByte('(')
		b.WriteString(n.Op.Kind.String())
		b.WriteByte(' ')
		writeSexpr(b, n.Left)
		b.WriteByte(' ')
		writeSexpr(b, n.Right)
		b.WriteByte(')')
	default:
		panic(fmt.Sprintf("format: unhandled node type %T", n))
	}
}

// Source renders n back to Tally source with every compound operand
// parenthesized, so the output reparses to the same tree regardless of
// precedence and associativity.
func Source(n ast.Node) string {
	var b strings.Builder
	writeSource(&b, n, false)
	return b.String()
}

func writeSource(b *strings.Builder, n ast.Node, nested bool) {
	switch n := n.(type) {
	case *ast.NumberLiteral:
		b.WriteString(n.Token.Literal)
	case *ast.VariableRef:
		b.WriteString(n.Name.Literal)
	case *ast.VariableAssign:
		if nested {
			b.WriteByte('(')
		}
		b.WriteString("VAR ")
		b.WriteString(n.Name.Literal)
		b.WriteString(" = ")
		writeSource(b, n.Value, false)
		if nested {
			b.WriteByte(')')
		}
	case *ast.UnaryOp:
		if nested {
			b.WriteByte('(')
		}
		b.WriteString(n.Op.Kind.String())
		writeSource(b, n.Operand, true)
		if nested {
			b.WriteByte(')')
		}
	case *ast.BinaryOp:
		if nested {
			b.WriteByte('(')
		}
		writeSource(b, n.Left, true)
		b.WriteByte(' ')
		b.WriteString(n.Op.Kind.String())
		b.WriteByte(' ')
		writeSource(b, n.Right, true)
		if nested {
			b.WriteByte(')')
		}
	default:
		panic(fmt.Sprintf("format: unhandled node type %T", n))
	}
}
