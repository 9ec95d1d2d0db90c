package analysis

import (
	"reflect"

	"github.com/prodrules/prodrules/alpha"
	"github.com/prodrules/prodrules/beta"
	"github.com/prodrules/prodrules/constraint"
	"github.com/prodrules/prodrules/symbol"
	"github.com/prodrules/prodrules/wm"
)

// CompiledPattern, indexed the same way as every other per-position Plan
// slice, is returned alongside Plan by Compile; it is kept separate
// from Plan because alpha.Network.AddPattern wants a []alpha.Test per
// pattern, not embedded in the join-building Plan itself.
type CompiledPattern struct {
	TypeName string
	IsClass  bool
	Tests    []alpha.Test
}

// Compile walks one already-disjunct-expanded conjunctive element list
// (see ExpandDisjuncts) and produces a Plan plus the per-position alpha
// test lists, resolving every variable binding and use site in order.
// resolve gives bindSlots access to each pattern's declared template/
// class slot shape, for the mixed-cardinality and redundant-constraint
// checks; a nil resolve skips both checks entirely.
func Compile(elements []*Element, resolve SlotResolver) (*Plan, []CompiledPattern, error) {
	plan := &Plan{bindings: map[string]bindingLoc{}, restricted: map[string]bool{}, LogicalUpTo: -1}
	var patterns []CompiledPattern

	for _, el := range elements {
		if err := validateElement(el); err != nil {
			return nil, nil, err
		}
		switch {
		case el.PatternCE != nil, el.Negated != nil, el.Exists != nil, el.Logical != nil:
			kind := beta.Positive
			scoped := false
			inner := el
			switch {
			case el.Negated != nil:
				inner, kind, scoped = el.Negated, beta.Negated, true
			case el.Exists != nil:
				inner, kind, scoped = el.Exists, beta.Exists, true
			case el.Logical != nil:
				inner = el.Logical
			}
			pc := inner.PatternCE
			if pc == nil {
				return nil, nil, &Error{Kind: InvalidElement, Message: "negated/exists/logical element must wrap a pattern"}
			}

			patternIndex := len(patterns)
			tests, joinTest, leftHash, rightHash, err := bindSlots(plan, pc, patternIndex, scoped, resolve)
			if err != nil {
				return nil, nil, err
			}

			patterns = append(patterns, CompiledPattern{TypeName: pc.TypeName, IsClass: pc.IsClass, Tests: tests})
			plan.TypeNames = append(plan.TypeNames, pc.TypeName)
			plan.IsClass = append(plan.IsClass, pc.IsClass)
			plan.Kinds = append(plan.Kinds, kind)
			plan.LeftHash = append(plan.LeftHash, leftHash)
			plan.RightHash = append(plan.RightHash, rightHash)
			plan.JoinTest = append(plan.JoinTest, joinTest)
			if el.Logical != nil {
				plan.LogicalUpTo = patternIndex
			}
			plan.Complexity++

		case el.TestCE != nil:
			if len(plan.JoinTest) == 0 {
				return nil, nil, &Error{Kind: UnboundVariable, Message: "test-CE precedes every pattern"}
			}
			idx := len(plan.JoinTest) - 1
			prevTest := plan.JoinTest[idx]
			evalFn := el.TestCE.Eval
			localPlan := plan
			plan.JoinTest[idx] = func(tok *beta.Token, item any) bool {
				if prevTest != nil && !prevTest(tok, item) {
					return false
				}
				e, _ := item.(wm.Entity)
				ok, _ := evalFn(&BindingContext{Token: tok, Plan: localPlan, PendingIndex: idx, PendingItem: e})
				return ok
			}
			plan.Complexity++
		}
	}

	return plan, patterns, nil
}

func validateElement(el *Element) error {
	set := 0
	if el.PatternCE != nil {
		set++
	}
	if el.TestCE != nil {
		set++
	}
	if el.Negated != nil {
		set++
	}
	if el.Exists != nil {
		set++
	}
	if el.Logical != nil {
		set++
	}
	if set != 1 {
		return &Error{Kind: InvalidElement, Message: "element must set exactly one variant"}
	}
	return nil
}

// joinCond is one shared-variable use site: useSlotIndex of the pattern
// currently being bound must equal bindingSlotIndex of the entity
// already bound at bindingPatternIndex.
type joinCond struct {
	bindingPatternIndex int
	bindingSlotIndex    int
	useSlotIndex        int
}

// bindSlots resolves one pattern's slot specs against the plan's
// running binding table, producing that pattern's alpha tests (literal
// equality and first-occurrence constraints) and, if any slot
// references an earlier binding, the equi-join closures the beta join
// attaching this pattern needs.
func bindSlots(plan *Plan, pc *PatternCE, patternIndex int, scoped bool, resolve SlotResolver) ([]alpha.Test, func(*beta.Token, any) bool, func(*beta.Token) string, func(any) string, error) {
	var tests []alpha.Test
	var conds []joinCond

	var declared []wm.Slot
	if resolve != nil {
		if s, ok := resolve(pc.TypeName, pc.IsClass); ok {
			declared = s
		}
	}
	declaredMulti := func(slotIndex int) (bool, bool) {
		if declared == nil || slotIndex < 0 || slotIndex >= len(declared) {
			return false, false
		}
		return declared[slotIndex].Multi, true
	}
	declaredConstraint := func(slotIndex int) (constraint.Record, bool) {
		if declared == nil || slotIndex < 0 || slotIndex >= len(declared) {
			return constraint.Record{}, false
		}
		return declared[slotIndex].Constraint, true
	}

	for _, slot := range pc.Slots {
		switch {
		case slot.Literal != nil:
			tests = append(tests, alpha.Test{SlotIndex: slot.SlotIndex, Equality: slot.Literal})

		case slot.Variable != "":
			if plan.restricted[slot.Variable] {
				return nil, nil, nil, nil, &Error{Kind: CrossScopeVariable, Message: slot.Variable}
			}
			multi, _ := declaredMulti(slot.SlotIndex)
			if loc, seen := plan.bindings[slot.Variable]; seen {
				if loc.PatternIndex == patternIndex {
					return nil, nil, nil, nil, &Error{Kind: DuplicatePatternVariable, Message: slot.Variable}
				}
				if loc.Multi != multi {
					return nil, nil, nil, nil, &Error{Kind: MixedCardinalityVariable, Message: slot.Variable}
				}
				conds = append(conds, joinCond{loc.PatternIndex, loc.SlotIndex, slot.SlotIndex})
			} else {
				if !isUnconstrained(slot.Constraint) {
					if slot.Constraint.Unmatchable() {
						return nil, nil, nil, nil, &Error{Kind: UnmatchableConstraint, Message: slot.Variable}
					}
					if dc, ok := declaredConstraint(slot.SlotIndex); ok && reflect.DeepEqual(constraint.Intersect(dc, slot.Constraint), dc) {
						return nil, nil, nil, nil, &Error{Kind: RedundantTypeRestriction, Message: slot.Variable}
					}
					tests = append(tests, alpha.Test{SlotIndex: slot.SlotIndex, Constraint: slot.Constraint})
				}
				plan.bindings[slot.Variable] = bindingLoc{PatternIndex: patternIndex, SlotIndex: slot.SlotIndex, Multi: multi}
				if scoped {
					plan.restricted[slot.Variable] = true
				}
			}
		}
	}

	if len(conds) == 0 {
		return tests, nil, nil, nil, nil
	}

	localConds := conds
	// leftHash/rightHash/joinTest decide new join membership, so they
	// read LiveSlotValue throughout, never the basis-aware SlotValue:
	// a mid-firing modify must re-key and re-test against its new
	// values immediately, not only once the firing commits.
	leftHash := func(tok *beta.Token) string {
		vals := make([]symbol.Value, len(localConds))
		for i, c := range localConds {
			vals[i] = tok.At(c.bindingPatternIndex).LiveSlotValue(c.bindingSlotIndex)
		}
		return beta.HashKey(vals...)
	}
	rightHash := func(item any) string {
		e, ok := item.(wm.Entity)
		if !ok {
			return ""
		}
		vals := make([]symbol.Value, len(localConds))
		for i, c := range localConds {
			vals[i] = e.LiveSlotValue(c.useSlotIndex)
		}
		return beta.HashKey(vals...)
	}
	joinTest := func(tok *beta.Token, item any) bool {
		e, ok := item.(wm.Entity)
		if !ok {
			return false
		}
		for _, c := range localConds {
			if !symbol.Equal(tok.At(c.bindingPatternIndex).LiveSlotValue(c.bindingSlotIndex), e.LiveSlotValue(c.useSlotIndex)) {
				return false
			}
		}
		return true
	}
	return tests, joinTest, leftHash, rightHash, nil
}

func isUnconstrained(r constraint.Record) bool {
	return reflect.DeepEqual(r, constraint.Unconstrained())
}
