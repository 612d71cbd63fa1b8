package deps

import (
	"fmt"

	"github.com/leapstack-labs/tally/pkg/ast"
	"github.com/leapstack-labs/tally/pkg/env"
	"github.com/leapstack-labs/tally/pkg/token"
)

// Statement is one parsed line of a file.
type Statement struct {
	Line int
	Node ast.Node
}

// Unresolved is a variable read before any statement assigns it. It may
// still be bound at run time by an earlier session.
type Unresolved struct {
	Name string
	Line int
	Span token.Span
}

// Analysis is the result of Analyze.
type Analysis struct {
	Graph      *Graph
	Unresolved []Unresolved
}

// Analyze builds the dependency graph of stmts, visiting them in the order
// they would be evaluated.
func Analyze(stmts []Statement) *Analysis {
	a := &analyzer{
		graph:    NewGraph(),
		assigned: map[string]bool{env.Null: true},
	}
	for _, stmt := range stmts {
		a.line = stmt.Line
		a.visit(stmt.Node)
	}
	return &Analysis{Graph: a.graph, Unresolved: a.unresolved}
}

type analyzer struct {
	graph      *Graph
	assigned   map[string]bool
	unresolved []Unresolved
	line       int
}

// visit returns the names whose values flow into the value of n.
func (a *analyzer) visit(n ast.Node) []string {
	switch n := n.(type) {
	case *ast.NumberLiteral:
		return nil
	case *ast.VariableRef:
		name := n.Name.Literal
		if !a.assigned[name] {
			a.unresolved = append(a.unresolved, Unresolved{Name: name, Line: a.line, Span: n.Span()})
		}
		return []string{name}
	case *ast.UnaryOp:
		return a.visit(n.Operand)
	case *ast.BinaryOp:
		return append(a.visit(n.Left), a.visit(n.Right)...)
	case *ast.VariableAssign:
		reads := a.visit(n.Value)
		name := n.Name.Literal
		a.graph.AddVariable(name, a.line)
		for _, dep := range reads {
			if dep == name {
				continue
			}
			if _, ok := a.graph.Variable(dep); !ok {
				// Read from the session or predefined; not tracked.
				continue
			}
			_ = a.graph.AddDependency(dep, name)
		}
		a.assigned[name] = true
		return []string{name}
	default:
		panic(fmt.Sprintf("deps: unhandled node type %T", n))
	}
}
