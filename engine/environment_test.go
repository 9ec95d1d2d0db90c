package engine

import (
	"testing"

	"github.com/prodrules/prodrules/analysis"
	"github.com/prodrules/prodrules/constraint"
	"github.com/prodrules/prodrules/symbol"
	"github.com/prodrules/prodrules/wm"
)

func newTestEnv(t *testing.T) *Environment {
	t.Helper()
	env, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return env
}

func personTemplate() *wm.Template {
	return wm.NewTemplate("person", []wm.Slot{
		{Name: "name", Constraint: constraint.Unconstrained()},
		{Name: "age", Constraint: constraint.Unconstrained()},
	})
}

// TestSinglePatternRuleFires covers the simplest case: one fact
// matching one rule's sole pattern produces one fired activation.
func TestSinglePatternRuleFires(t *testing.T) {
	env := newTestEnv(t)
	tmpl := personTemplate()
	env.DefineTemplate(tmpl)

	var fired []string
	pc := &analysis.PatternCE{TypeName: "person", Slots: []analysis.SlotSpec{
		{SlotIndex: 0, Variable: "?n", Constraint: constraint.Unconstrained()},
	}}
	elements := []*analysis.Element{{PatternCE: pc}}
	actions := []Action{func(ctx *BindingContext) error {
		v, err := ctx.Value("?n")
		if err != nil {
			return err
		}
		fired = append(fired, v.(*symbol.Atom).SymbolText())
		return nil
	}}
	if _, err := env.DefineRule("greet", DefaultModuleName, elements, actions, RuleOptions{}); err != nil {
		t.Fatalf("DefineRule: %v", err)
	}

	table := env.Table()
	if _, err := env.AssertFact("person", []symbol.Value{table.Symbol("alice"), table.Integer(30)}); err != nil {
		t.Fatalf("AssertFact: %v", err)
	}

	n, err := env.Run(-1)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n != 1 || len(fired) != 1 || fired[0] != "alice" {
		t.Fatalf("Run fired=%d names=%v, want 1 fire for alice", n, fired)
	}
}

// TestCrossPatternJoinFires covers a rule joining
// two patterns on a shared variable only fires once both sides exist and
// agree on the join value.
func TestCrossPatternJoinFires(t *testing.T) {
	env := newTestEnv(t)
	parentT := wm.NewTemplate("parent", []wm.Slot{
		{Name: "p", Constraint: constraint.Unconstrained()},
		{Name: "c", Constraint: constraint.Unconstrained()},
	})
	env.DefineTemplate(parentT)

	pc1 := &analysis.PatternCE{TypeName: "parent", Slots: []analysis.SlotSpec{
		{SlotIndex: 0, Variable: "?a", Constraint: constraint.Unconstrained()},
		{SlotIndex: 1, Variable: "?b", Constraint: constraint.Unconstrained()},
	}}
	pc2 := &analysis.PatternCE{TypeName: "parent", Slots: []analysis.SlotSpec{
		{SlotIndex: 0, Variable: "?b", Constraint: constraint.Unconstrained()},
		{SlotIndex: 1, Variable: "?c", Constraint: constraint.Unconstrained()},
	}}
	elements := []*analysis.Element{{PatternCE: pc1}, {PatternCE: pc2}}

	var grandparents [][2]string
	actions := []Action{func(ctx *BindingContext) error {
		a, _ := ctx.Value("?a")
		c, _ := ctx.Value("?c")
		grandparents = append(grandparents, [2]string{a.(*symbol.Atom).SymbolText(), c.(*symbol.Atom).SymbolText()})
		return nil
	}}
	if _, err := env.DefineRule("grandparent", DefaultModuleName, elements, actions, RuleOptions{}); err != nil {
		t.Fatalf("DefineRule: %v", err)
	}

	table := env.Table()
	env.AssertFact("parent", []symbol.Value{table.Symbol("a"), table.Symbol("b")})
	env.AssertFact("parent", []symbol.Value{table.Symbol("b"), table.Symbol("c")})

	n, err := env.Run(-1)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n != 1 || len(grandparents) != 1 || grandparents[0] != [2]string{"a", "c"} {
		t.Fatalf("Run fired=%d grandparents=%v, want one (a,c)", n, grandparents)
	}
}

// TestNegatedPatternFreeRoom covers a rule with a
// negated second pattern fires only while no matching fact exists, and
// the activation withdraws the moment one is asserted.
func TestNegatedPatternFreeRoom(t *testing.T) {
	env := newTestEnv(t)
	roomT := wm.NewTemplate("room", []wm.Slot{{Name: "name", Constraint: constraint.Unconstrained()}})
	occT := wm.NewTemplate("occupied", []wm.Slot{{Name: "name", Constraint: constraint.Unconstrained()}})
	env.DefineTemplate(roomT)
	env.DefineTemplate(occT)

	roomPC := &analysis.PatternCE{TypeName: "room", Slots: []analysis.SlotSpec{
		{SlotIndex: 0, Variable: "?r", Constraint: constraint.Unconstrained()},
	}}
	occPC := &analysis.PatternCE{TypeName: "occupied", Slots: []analysis.SlotSpec{
		{SlotIndex: 0, Variable: "?r", Constraint: constraint.Unconstrained()},
	}}
	elements := []*analysis.Element{{PatternCE: roomPC}, {Negated: &analysis.Element{PatternCE: occPC}}}

	var freed []string
	actions := []Action{func(ctx *BindingContext) error {
		v, _ := ctx.Value("?r")
		freed = append(freed, v.(*symbol.Atom).SymbolText())
		return nil
	}}
	if _, err := env.DefineRule("free-room", DefaultModuleName, elements, actions, RuleOptions{}); err != nil {
		t.Fatalf("DefineRule: %v", err)
	}

	table := env.Table()
	env.AssertFact("room", []symbol.Value{table.Symbol("r1")})

	ag, err := env.AgendaFor(DefaultModuleName)
	if err != nil {
		t.Fatalf("AgendaFor: %v", err)
	}
	if ag.Len() != 1 {
		t.Fatalf("agenda len = %d before occupying, want 1", ag.Len())
	}

	env.AssertFact("occupied", []symbol.Value{table.Symbol("r1")})
	if ag.Len() != 0 {
		t.Fatalf("agenda len = %d after occupying, want 0 (activation withdrawn)", ag.Len())
	}
}

// TestSalienceOrdersHighestFirst covers two
// simultaneously-eligible rules fire in descending static-salience order.
func TestSalienceOrdersHighestFirst(t *testing.T) {
	env := newTestEnv(t)
	tmpl := personTemplate()
	env.DefineTemplate(tmpl)

	pc := &analysis.PatternCE{TypeName: "person", Slots: []analysis.SlotSpec{
		{SlotIndex: 0, Variable: "?n", Constraint: constraint.Unconstrained()},
	}}

	var order []string
	mkAction := func(name string) Action {
		return func(ctx *BindingContext) error { order = append(order, name); return nil }
	}
	if _, err := env.DefineRule("low", DefaultModuleName, []*analysis.Element{{PatternCE: pc}}, []Action{mkAction("low")}, RuleOptions{StaticSalience: 0}); err != nil {
		t.Fatalf("DefineRule low: %v", err)
	}
	if _, err := env.DefineRule("high", DefaultModuleName, []*analysis.Element{{PatternCE: pc}}, []Action{mkAction("high")}, RuleOptions{StaticSalience: 10}); err != nil {
		t.Fatalf("DefineRule high: %v", err)
	}

	table := env.Table()
	env.AssertFact("person", []symbol.Value{table.Symbol("alice"), table.Integer(30)})

	n, err := env.Run(-1)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n != 2 || len(order) != 2 || order[0] != "high" || order[1] != "low" {
		t.Fatalf("fire order = %v, want [high low]", order)
	}
}

// TestLogicalAssertionCascadesOnRetract covers logical support end to
// end through Environment, rather than package support in isolation:
// a logically-asserted conclusion vanishes once its sole supporting fact
// is retracted.
func TestLogicalAssertionCascadesOnRetract(t *testing.T) {
	env := newTestEnv(t)
	sensorT := wm.NewTemplate("sensor-on", []wm.Slot{{Name: "id", Constraint: constraint.Unconstrained()}})
	alarmT := wm.NewTemplate("alarm", []wm.Slot{{Name: "id", Constraint: constraint.Unconstrained()}})
	env.DefineTemplate(sensorT)
	env.DefineTemplate(alarmT)

	pc := &analysis.PatternCE{TypeName: "sensor-on", Slots: []analysis.SlotSpec{
		{SlotIndex: 0, Variable: "?id", Constraint: constraint.Unconstrained()},
	}}
	elements := []*analysis.Element{{Logical: &analysis.Element{PatternCE: pc}}}
	actions := []Action{func(ctx *BindingContext) error {
		id, err := ctx.Value("?id")
		if err != nil {
			return err
		}
		_, err = ctx.Env.assertFact(alarmT, []symbol.Value{id}, ctx)
		return err
	}}
	if _, err := env.DefineRule("raise-alarm", DefaultModuleName, elements, actions, RuleOptions{}); err != nil {
		t.Fatalf("DefineRule: %v", err)
	}

	table := env.Table()
	sensor, _ := env.AssertFact("sensor-on", []symbol.Value{table.Symbol("s1")})
	if _, err := env.Run(-1); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if env.WorkingMemory().FactCount() != 2 {
		t.Fatalf("fact count = %d, want 2 (sensor + alarm)", env.WorkingMemory().FactCount())
	}

	if err := env.RetractFact(sensor); err != nil {
		t.Fatalf("RetractFact: %v", err)
	}
	if env.WorkingMemory().FactCount() != 0 {
		t.Fatalf("fact count = %d after retracting sensor, want 0 (alarm cascades away)", env.WorkingMemory().FactCount())
	}
}

// TestRemoveRuleWithdrawsPendingActivations ensures an in-flight
// activation for a removed rule never fires.
func TestRemoveRuleWithdrawsPendingActivations(t *testing.T) {
	env := newTestEnv(t)
	tmpl := personTemplate()
	env.DefineTemplate(tmpl)

	pc := &analysis.PatternCE{TypeName: "person", Slots: []analysis.SlotSpec{
		{SlotIndex: 0, Variable: "?n", Constraint: constraint.Unconstrained()},
	}}
	fired := false
	actions := []Action{func(ctx *BindingContext) error { fired = true; return nil }}
	if _, err := env.DefineRule("r", DefaultModuleName, []*analysis.Element{{PatternCE: pc}}, actions, RuleOptions{}); err != nil {
		t.Fatalf("DefineRule: %v", err)
	}

	table := env.Table()
	env.AssertFact("person", []symbol.Value{table.Symbol("alice"), table.Integer(1)})

	if err := env.RemoveRule("r"); err != nil {
		t.Fatalf("RemoveRule: %v", err)
	}
	if n, err := env.Run(-1); err != nil || n != 0 {
		t.Fatalf("Run after RemoveRule: n=%d err=%v, want 0 fires", n, err)
	}
	if fired {
		t.Fatalf("removed rule's action ran")
	}
}

// TestDefineRuleAtomicOnCompileError ensures a rule whose second disjunct
// fails analysis returns an error and leaves no rule installed.
func TestDefineRuleAtomicOnCompileError(t *testing.T) {
	env := newTestEnv(t)
	tmpl := personTemplate()
	env.DefineTemplate(tmpl)

	goodPC := &analysis.PatternCE{TypeName: "person", Slots: []analysis.SlotSpec{
		{SlotIndex: 0, Variable: "?n", Constraint: constraint.Unconstrained()},
	}}
	// An explicit empty tag set can never match anything: Compile rejects
	// it as an UnmatchableConstraint at a binding occurrence.
	badPC := &analysis.PatternCE{TypeName: "person", Slots: []analysis.SlotSpec{
		{SlotIndex: 0, Variable: "?m", Constraint: constraint.Record{}},
	}}
	elements := []*analysis.Element{
		{Or: []*analysis.Element{
			{PatternCE: goodPC},
			{PatternCE: badPC},
		}},
	}
	if _, err := env.DefineRule("bad", DefaultModuleName, elements, nil, RuleOptions{}); err == nil {
		t.Fatalf("DefineRule: expected compile error from the unmatchable second disjunct")
	}
	if len(env.Rules()) != 0 {
		t.Fatalf("rules = %v, want none installed after a failed DefineRule", env.Rules())
	}
}
