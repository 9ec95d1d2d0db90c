package analysis

import (
	"github.com/prodrules/prodrules/beta"
	"github.com/prodrules/prodrules/symbol"
	"github.com/prodrules/prodrules/wm"
)

type bindingLoc struct {
	PatternIndex int
	SlotIndex    int
	Multi        bool
}

// SlotResolver looks up a pattern type's resolved slot list so bindSlots
// can check a binding occurrence's cardinality and declared constraint
// against what the template/class itself already says, beyond what a
// bare SlotSpec carries. isClass selects Environment.classes over
// Environment.templates. A false second return means the type isn't
// known yet (compile-time checks that depend on it are skipped; the
// caller still reports UnknownTemplate/UnknownClass separately).
type SlotResolver func(typeName string, isClass bool) ([]wm.Slot, bool)

// Plan is one rule's compiled LHS: a flat, per-pattern-position build
// recipe for wiring alpha.Network.AddPattern and beta.Network.NewChain
// /Append, plus the variable table RHS actions resolve against through
// BindingContext.
type Plan struct {
	TypeNames []string
	IsClass   []bool

	// Kinds[i] is the join kind used to attach pattern position i to the
	// chain; for position 0 it selects the first join's variant against
	// the empty root token.
	Kinds []beta.Kind

	LeftHash  []func(*beta.Token) string
	RightHash []func(item any) string
	JoinTest  []func(tok *beta.Token, item any) bool

	Complexity int

	// LogicalUpTo is the pattern index whose prefix of entities
	// constitutes the activation's logical support set, or -1 if the
	// rule has no logical group.
	LogicalUpTo int

	bindings   map[string]bindingLoc
	restricted map[string]bool
}

// BindingContext resolves a compiled rule's variables against one fired
// activation's token — the value RHS variable-fetch ops and TestCE
// closures read from.
//
// A residual test-CE attached to pattern i runs before position i's own
// candidate has been appended to the token (the join only extends its
// left token with a candidate once the test passes), yet the test-CE
// may reference variables first bound at position i itself. PendingIndex
// /PendingItem carry that not-yet-appended candidate so Value can still
// resolve it.
type BindingContext struct {
	Token *beta.Token
	Plan  *Plan

	PendingIndex int
	PendingItem  wm.Entity
}

// Value returns the current binding for name, or an UnboundVariable
// error if the token's corresponding pattern position matched nothing
// (an unmatched Negated-join slot) or name was never bound.
func (b *BindingContext) Value(name string) (symbol.Value, error) {
	loc, ok := b.Plan.bindings[name]
	if !ok {
		return nil, &Error{Kind: UnboundVariable, Message: name}
	}
	if b.PendingItem != nil && loc.PatternIndex == b.PendingIndex {
		return b.PendingItem.SlotValue(loc.SlotIndex), nil
	}
	if loc.PatternIndex >= b.Token.Depth() {
		return nil, &Error{Kind: UnboundVariable, Message: name}
	}
	e := b.Token.At(loc.PatternIndex)
	if e == nil {
		return nil, &Error{Kind: UnboundVariable, Message: name}
	}
	return e.SlotValue(loc.SlotIndex), nil
}
