package agenda

import (
	"testing"

	"github.com/prodrules/prodrules/beta"
	"github.com/prodrules/prodrules/constraint"
	"github.com/prodrules/prodrules/symbol"
	"github.com/prodrules/prodrules/wm"
)

func goFact(t *testing.T, wmem *wm.WorkingMemory, tmpl *wm.Template, table *symbol.Table, v int64) *wm.Fact {
	t.Helper()
	f, err := wmem.AssertFact(tmpl, []symbol.Value{table.Integer(v)})
	if err != nil {
		t.Fatalf("AssertFact: %v", err)
	}
	return f
}

func TestSalienceOrderingWinsOverArrivalOrder(t *testing.T) {
	a := New(Depth)
	lowSalienceTok := &beta.Token{}
	highSalienceTok := &beta.Token{}

	a.Insert(RuleInfo{Name: "low"}, lowSalienceTok, 0)
	a.Insert(RuleInfo{Name: "high"}, highSalienceTok, 10)

	top := a.PopHighest()
	if top.Rule.Name != "high" {
		t.Fatalf("expected salience-10 rule to fire first, got %q", top.Rule.Name)
	}
	next := a.PopHighest()
	if next.Rule.Name != "low" {
		t.Fatalf("expected salience-0 rule second, got %q", next.Rule.Name)
	}
}

func TestInsertionOrderTieBreak(t *testing.T) {
	a := New(Depth)
	t1, t2 := &beta.Token{}, &beta.Token{}

	a.Insert(RuleInfo{Name: "r1"}, t1, 0)
	a.Insert(RuleInfo{Name: "r2"}, t2, 0)

	acts := a.Activations()
	if len(acts) != 2 || acts[0].Rule.Name != "r1" || acts[1].Rule.Name != "r2" {
		t.Fatalf("expected stable insertion order for equal keys, got %+v", acts)
	}
}

func TestRefractionRejectsDuplicateActivation(t *testing.T) {
	table := symbol.NewTable()
	wmem := wm.New(table, true)
	tmpl := wm.NewTemplate("t", []wm.Slot{{Name: "v", Constraint: constraint.Unconstrained()}})
	f := goFact(t, wmem, tmpl, table, 1)
	tok := &beta.Token{Match: []wm.Entity{f}}

	a := New(Depth)
	first := a.Insert(RuleInfo{Name: "r"}, tok, 0)
	if first == nil {
		t.Fatalf("first insert should succeed")
	}
	second := a.Insert(RuleInfo{Name: "r"}, tok, 0)
	if second != nil {
		t.Fatalf("duplicate activation for the same rule+fact-set must be refracted")
	}
	if a.Len() != 1 {
		t.Fatalf("Len = %d, want 1", a.Len())
	}
}

func TestComplexityStrategy(t *testing.T) {
	a := New(Complexity)
	simple := &beta.Token{}
	complex := &beta.Token{}

	a.Insert(RuleInfo{Name: "simple", Complexity: 1}, simple, 0)
	a.Insert(RuleInfo{Name: "complex", Complexity: 9}, complex, 0)

	top := a.PopHighest()
	if top.Rule.Name != "complex" {
		t.Fatalf("Complexity strategy should fire the higher-complexity rule first, got %q", top.Rule.Name)
	}
}

func TestDepthStrategyNewestFirst(t *testing.T) {
	table := symbol.NewTable()
	wmem := wm.New(table, true)
	tmpl := wm.NewTemplate("t", []wm.Slot{{Name: "v", Constraint: constraint.Unconstrained()}})
	older := goFact(t, wmem, tmpl, table, 1)
	newer := goFact(t, wmem, tmpl, table, 2)

	a := New(Depth)
	a.Insert(RuleInfo{Name: "old"}, &beta.Token{Match: []wm.Entity{older}}, 0)
	a.Insert(RuleInfo{Name: "new"}, &beta.Token{Match: []wm.Entity{newer}}, 0)

	top := a.PopHighest()
	if top.Rule.Name != "new" {
		t.Fatalf("Depth strategy should prefer the newer fact, got %q", top.Rule.Name)
	}
}

func TestIteratorRestarts(t *testing.T) {
	a := New(Depth)
	a.Insert(RuleInfo{Name: "a"}, &beta.Token{}, 0)
	a.Insert(RuleInfo{Name: "b"}, &beta.Token{}, 0)

	it := a.Iterate()
	var names []string
	for act := it.Next(); act != nil; act = it.Next() {
		names = append(names, act.Rule.Name)
	}
	if len(names) != 2 {
		t.Fatalf("expected 2 items, got %v", names)
	}
	it.Reset()
	if it.Next() == nil {
		t.Fatalf("expected iterator to restart after Reset")
	}
}
