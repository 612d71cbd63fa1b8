// Package deps tracks which variables of a statement sequence are computed
// from which others. It supports cycle detection, dependency levels and
// upstream/downstream queries.
package deps

import (
	"fmt"
	"slices"
	"sort"
)

// Variable is a name assigned somewhere in the analyzed statements.
type Variable struct {
	Name string
	// Lines lists the 1-based lines that assign the variable, in order.
	Lines []int
}

// Graph is the dependency graph of assigned variables. An edge dep -> user
// means the value assigned to user was computed from dep.
type Graph struct {
	vars  map[string]*Variable
	users map[string][]string // dep -> variables computed from it
	deps  map[string][]string // user -> variables it reads
}

// NewGraph creates a new empty graph.
func NewGraph() *Graph {
	return &Graph{
		vars:  make(map[string]*Variable),
		users: make(map[string][]string),
		deps:  make(map[string][]string),
	}
}

// AddVariable records an assignment of name on line.
func (g *Graph) AddVariable(name string, line int) {
	v, ok := g.vars[name]
	if !ok {
		v = &Variable{Name: name}
		g.vars[name] = v
		g.users[name] = []string{}
		g.deps[name] = []string{}
	}
	if line > 0 && !slices.Contains(v.Lines, line) {
		v.Lines = append(v.Lines, line)
	}
}

// AddDependency records that user is computed from dep.
func (g *Graph) AddDependency(dep, user string) error {
	if _, ok := g.vars[dep]; !ok {
		return fmt.Errorf("variable %q is not in the graph", dep)
	}
	if _, ok := g.vars[user]; !ok {
		return fmt.Errorf("variable %q is not in the graph", user)
	}
	if dep == user {
		return fmt.Errorf("self-dependency: %s", dep)
	}

	if !slices.Contains(g.users[dep], user) {
		g.users[dep] = append(g.users[dep], user)
	}
	if !slices.Contains(g.deps[user], dep) {
		g.deps[user] = append(g.deps[user], dep)
	}
	return nil
}

// Variable returns the variable with the given name.
func (g *Graph) Variable(name string) (*Variable, bool) {
	v, ok := g.vars[name]
	return v, ok
}

// Dependencies returns the variables name reads directly, sorted.
func (g *Graph) Dependencies(name string) []string {
	return sorted(g.deps[name])
}

// Dependents returns the variables computed directly from name, sorted.
func (g *Graph) Dependents(name string) []string {
	return sorted(g.users[name])
}

// Variables returns all variables sorted by name.
func (g *Graph) Variables() []*Variable {
	vars := make([]*Variable, 0, len(g.vars))
	for _, v := range g.vars {
		vars = append(vars, v)
	}
	sort.Slice(vars, func(i, j int) bool {
		return vars[i].Name < vars[j].Name
	})
	return vars
}

// Len returns the number of variables.
func (g *Graph) Len() int {
	return len(g.vars)
}

// FindCycle returns a circular chain of definitions such as [a b a], or
// nil when there is none.
func (g *Graph) FindCycle() []string {
	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	parent := make(map[string]string)

	var cycle []string

	var dfs func(name string) bool
	dfs = func(name string) bool {
		visited[name] = true
		onStack[name] = true

		for _, user := range sorted(g.users[name]) {
			if !visited[user] {
				parent[user] = name
				if dfs(user) {
					return true
				}
			} else if onStack[user] {
				cycle = []string{user}
				for curr := name; curr != user; curr = parent[curr] {
					cycle = append([]string{curr}, cycle...)
				}
				cycle = append([]string{user}, cycle...)
				return true
			}
		}

		onStack[name] = false
		return false
	}

	for _, v := range g.Variables() {
		if !visited[v.Name] && dfs(v.Name) {
			return cycle
		}
	}
	return nil
}

// Levels groups variables by dependency depth. Level 0 holds variables
// that read no other assigned variable; a variable at level N reads at
// least one variable at level N-1.
func (g *Graph) Levels() ([][]string, error) {
	if cycle := g.FindCycle(); cycle != nil {
		return nil, fmt.Errorf("circular definition: %v", cycle)
	}

	assigned := make(map[string]int)

	var levelOf func(name string) int
	levelOf = func(name string) int {
		if level, ok := assigned[name]; ok {
			return level
		}
		level := 0
		for _, dep := range g.deps[name] {
			level = max(level, levelOf(dep)+1)
		}
		assigned[name] = level
		return level
	}

	maxLevel := -1
	for name := range g.vars {
		maxLevel = max(maxLevel, levelOf(name))
	}

	levels := make([][]string, maxLevel+1)
	for name, level := range assigned {
		levels[level] = append(levels[level], name)
	}
	for i := range levels {
		sort.Strings(levels[i])
	}
	return levels, nil
}

// Upstream returns every variable name is computed from, directly or
// transitively, sorted.
func (g *Graph) Upstream(name string) []string {
	return g.reach([]string{name}, g.deps)
}

// Downstream returns every variable computed from any of names, directly
// or transitively, sorted. The names themselves are not included.
func (g *Graph) Downstream(names ...string) []string {
	return g.reach(names, g.users)
}

func (g *Graph) reach(start []string, next map[string][]string) []string {
	seen := make(map[string]bool)

	var mark func(name string)
	mark = func(name string) {
		for _, n := range next[name] {
			if !seen[n] {
				seen[n] = true
				mark(n)
			}
		}
	}
	for _, name := range start {
		mark(name)
	}
	for _, name := range start {
		delete(seen, name)
	}

	result := make([]string, 0, len(seen))
	for name := range seen {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

func sorted(names []string) []string {
	out := slices.Clone(names)
	sort.Strings(out)
	return out
}
