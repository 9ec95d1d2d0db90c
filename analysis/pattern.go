// Package analysis turns a rule's already-structured LHS (a tree of
// pattern conditional elements, not surface syntax — parsing text into
// this tree is out of scope here) into a
// compiled Plan: the ordered alpha.Test lists and beta join hash/test
// closures the engine wires into alpha.Network and beta.Network, plus a
// rule complexity score and the variable-binding table RHS actions read
// from at fire time.
//
// Element is the AST node; Compile walks the tree once and emits flat
// per-position instruction lists instead of re-walking at match time.
package analysis

import (
	"github.com/prodrules/prodrules/constraint"
	"github.com/prodrules/prodrules/symbol"
)

// SlotSpec describes one slot position within a pattern conditional
// element: a literal to match, a variable to bind or join on, or a
// wildcard (both zero).
type SlotSpec struct {
	SlotIndex int

	// Literal, if non-nil, requires the slot to equal this exact interned
	// value (hashed alpha dispatch).
	Literal symbol.Value

	// Variable, if non-empty, binds (first occurrence) or joins (later
	// occurrence) this slot to a named rule variable.
	Variable string

	// Constraint further narrows a Variable's first (binding) occurrence.
	// Ignored on use-site occurrences and on Literal slots.
	Constraint constraint.Record
}

// PatternCE matches one live fact (by template name) or instance (by
// class name) against its slot specs.
type PatternCE struct {
	TypeName string
	IsClass  bool
	Slots    []SlotSpec
}

// TestCE is a residual boolean test over variables already bound by
// earlier pattern positions. The expression language itself is
// host-supplied — analysis only wires the evaluator into the right
// join, matching the externalized action-evaluator contract.
type TestCE struct {
	Eval func(b *BindingContext) (bool, error)
}

// Element is one LHS node: exactly one of the following is set.
type Element struct {
	PatternCE *PatternCE
	TestCE    *TestCE

	// Negated/Exists/Logical each wrap a single inner element — the
	// common, single-pattern forms of NOT/exists/logical-group. Nested
	// multi-pattern groups (a NOT spanning a join of several patterns)
	// are not compiled: Compile rejects any other inner element with
	// InvalidElement.
	Negated *Element
	Exists  *Element
	Logical *Element

	// Or holds alternative elements for this position; ExpandDisjuncts
	// turns a sequence containing Or positions into one conjunctive
	// element list per disjunct.
	Or []*Element
}

// ExpandDisjuncts distributes every Or position in elements, returning
// one fully conjunctive element list per combination (the cartesian
// product over all Or positions).
func ExpandDisjuncts(elements []*Element) [][]*Element {
	if len(elements) == 0 {
		return [][]*Element{{}}
	}
	head := elements[0]
	restCombos := ExpandDisjuncts(elements[1:])

	heads := []*Element{head}
	if head.Or != nil {
		heads = head.Or
	}

	var out [][]*Element
	for _, h := range heads {
		for _, rest := range restCombos {
			combo := make([]*Element, 0, 1+len(rest))
			combo = append(combo, h)
			combo = append(combo, rest...)
			out = append(out, combo)
		}
	}
	return out
}
