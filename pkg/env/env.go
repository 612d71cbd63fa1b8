// Package env provides the scoped variable store consulted during evaluation.
package env

import (
	"sort"

	"github.com/leapstack-labs/tally/pkg/value"
)

// Null is the name pre-bound to zero in every global environment.
const Null = "null"

// Environment is a scope of variable bindings with an optional parent.
// Lookups fall through to the parent chain; assignments bind in the scope
// they are made on. An Environment is not safe for concurrent use.
type Environment struct {
	bindings map[string]value.Number
	parent   *Environment
}

// New creates an empty environment whose lookups fall back to parent.
// parent may be nil.
func New(parent *Environment) *Environment {
	return &Environment{
		bindings: make(map[string]value.Number),
		parent:   parent,
	}
}

// NewGlobal creates a root environment seeded with the default bindings.
func NewGlobal() *Environment {
	e := New(nil)
	e.Set(Null, value.Int(0))
	return e
}

// Child creates a new scope whose parent is e.
func (e *Environment) Child() *Environment {
	return New(e)
}

// Parent returns the enclosing scope, or nil for a root environment.
func (e *Environment) Parent() *Environment {
	return e.parent
}

// Get looks up name in e and then in its ancestors. A binding to zero is
// found like any other; absence is reported only through ok.
func (e *Environment) Get(name string) (value.Number, bool) {
	for scope := e; scope != nil; scope = scope.parent {
		if v, ok := scope.bindings[name]; ok {
			return v, true
		}
	}
	return value.Number{}, false
}

// Set binds name in e, replacing any binding at this level. Ancestor
// bindings of the same name are shadowed, not modified.
func (e *Environment) Set(name string, v value.Number) {
	e.bindings[name] = v
}

// Has reports whether name resolves in e or any ancestor.
func (e *Environment) Has(name string) bool {
	_, ok := e.Get(name)
	return ok
}

// Delete removes name from this scope only.
func (e *Environment) Delete(name string) {
	delete(e.bindings, name)
}

// Len returns the number of bindings in this scope.
func (e *Environment) Len() int {
	return len(e.bindings)
}

// Names returns the names bound in this scope, sorted.
func (e *Environment) Names() []string {
	names := make([]string, 0, len(e.bindings))
	for name := range e.bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
