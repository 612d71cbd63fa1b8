package deps

import (
	"slices"
	"testing"
)

func TestGraph_AddVariableAndDependency(t *testing.T) {
	g := NewGraph()

	g.AddVariable("a", 1)
	g.AddVariable("b", 2)
	g.AddVariable("c", 3)
	g.AddVariable("a", 4)

	if g.Len() != 3 {
		t.Errorf("expected 3 variables, got %d", g.Len())
	}
	if v, _ := g.Variable("a"); !slices.Equal(v.Lines, []int{1, 4}) {
		t.Errorf("expected a assigned on lines [1 4], got %v", v.Lines)
	}

	// b reads a, c reads b
	if err := g.AddDependency("a", "b"); err != nil {
		t.Errorf("failed to add dependency: %v", err)
	}
	if err := g.AddDependency("b", "c"); err != nil {
		t.Errorf("failed to add dependency: %v", err)
	}
	// Duplicates are ignored
	_ = g.AddDependency("a", "b")

	if got := g.Dependents("a"); !slices.Equal(got, []string{"b"}) {
		t.Errorf("expected dependents [b], got %v", got)
	}
	if got := g.Dependencies("c"); !slices.Equal(got, []string{"b"}) {
		t.Errorf("expected dependencies [b], got %v", got)
	}
}

func TestGraph_AddDependency_Invalid(t *testing.T) {
	g := NewGraph()
	g.AddVariable("a", 1)

	if err := g.AddDependency("a", "missing"); err == nil {
		t.Error("expected error for unknown user")
	}
	if err := g.AddDependency("missing", "a"); err == nil {
		t.Error("expected error for unknown dependency")
	}
	if err := g.AddDependency("a", "a"); err == nil {
		t.Error("expected error for self-dependency")
	}
}

func TestGraph_FindCycle(t *testing.T) {
	g := NewGraph()
	for _, name := range []string{"a", "b", "c"} {
		g.AddVariable(name, 0)
	}
	_ = g.AddDependency("a", "b")
	_ = g.AddDependency("b", "c")

	if cycle := g.FindCycle(); cycle != nil {
		t.Fatalf("unexpected cycle %v", cycle)
	}

	_ = g.AddDependency("c", "a")
	cycle := g.FindCycle()
	if !slices.Equal(cycle, []string{"a", "b", "c", "a"}) {
		t.Errorf("expected cycle [a b c a], got %v", cycle)
	}

	if _, err := g.Levels(); err == nil {
		t.Error("expected Levels to fail on a cycle")
	}
}

func TestGraph_Levels(t *testing.T) {
	g := NewGraph()
	for _, name := range []string{"price", "qty", "subtotal", "tax", "total"} {
		g.AddVariable(name, 0)
	}
	_ = g.AddDependency("price", "subtotal")
	_ = g.AddDependency("qty", "subtotal")
	_ = g.AddDependency("subtotal", "tax")
	_ = g.AddDependency("subtotal", "total")
	_ = g.AddDependency("tax", "total")

	levels, err := g.Levels()
	if err != nil {
		t.Fatalf("failed to get levels: %v", err)
	}

	want := [][]string{{"price", "qty"}, {"subtotal"}, {"tax"}, {"total"}}
	if len(levels) != len(want) {
		t.Fatalf("expected %d levels, got %v", len(want), levels)
	}
	for i := range want {
		if !slices.Equal(levels[i], want[i]) {
			t.Errorf("level %d: expected %v, got %v", i, want[i], levels[i])
		}
	}
}

func TestGraph_LevelsEmpty(t *testing.T) {
	levels, err := NewGraph().Levels()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(levels) != 0 {
		t.Errorf("expected no levels, got %v", levels)
	}
}

func TestGraph_UpstreamDownstream(t *testing.T) {
	g := NewGraph()
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		g.AddVariable(name, 0)
	}
	// c reads a and b, d reads c, e is independent
	_ = g.AddDependency("a", "c")
	_ = g.AddDependency("b", "c")
	_ = g.AddDependency("c", "d")

	if got := g.Upstream("d"); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("expected upstream [a b c], got %v", got)
	}
	if got := g.Downstream("a"); !slices.Equal(got, []string{"c", "d"}) {
		t.Errorf("expected downstream [c d], got %v", got)
	}
	if got := g.Downstream("a", "c"); !slices.Equal(got, []string{"d"}) {
		t.Errorf("expected downstream [d], got %v", got)
	}
	if got := g.Upstream("e"); len(got) != 0 {
		t.Errorf("expected no upstream for e, got %v", got)
	}
}
