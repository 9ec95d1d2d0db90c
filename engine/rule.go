package engine

import (
	"github.com/prodrules/prodrules/alpha"
	"github.com/prodrules/prodrules/analysis"
	"github.com/prodrules/prodrules/beta"
)

// disjunct is one compiled, fully-conjunctive branch of a rule's LHS:
// its own alpha nodes, its own join chain, its own terminal join.
// ExpandDisjuncts (package analysis) is what turns a rule with a
// top-level OR into more than one of these.
type disjunct struct {
	plan     *analysis.Plan
	patterns []analysis.CompiledPattern
	nodes    []alpha.NodeID
	first    *beta.Join
	terminal *beta.Join
}

// Rule is a named, installed construct: a module membership, one or
// more compiled disjuncts sharing one action list, and the
// agenda-facing metadata (static/dynamic salience, auto-focus,
// complexity).
type Rule struct {
	Name       string
	ModuleName string

	disjuncts []*disjunct
	Actions   []Action

	StaticSalience  int
	DynamicSalience func(ctx *BindingContext) (int, error)
	AutoFocus       bool

	// Complexity is the sum of each disjunct's pattern/test node count,
	// computed once at DefineRule time (see DESIGN.md).
	Complexity int

	// logicalUpTo mirrors the first disjunct with a logical group's
	// Plan.LogicalUpTo; -1 if no disjunct has one. Rules that mix a
	// logical and a non-logical disjunct are rejected at DefineRule time
	// (see DESIGN.md) so every disjunct agrees on this.
	logicalUpTo int

	// removed is set by Environment.RemoveRule so in-flight join output
	// already queued in the beta network's propagation stops short of
	// reaching the agenda instead of resurrecting a deleted rule's entry.
	removed bool
}

// RuleOptions carries DefineRule's agenda-facing, rarely-changed knobs
// so DefineRule's own signature stays stable as more are added.
type RuleOptions struct {
	StaticSalience  int
	DynamicSalience func(ctx *BindingContext) (int, error)
	AutoFocus       bool
}

// IsLogical reports whether firing this rule registers logical support
// for facts/instances its RHS asserts.
func (r *Rule) IsLogical() bool { return r.logicalUpTo >= 0 }

// disjunctRef is the opaque "rule any" token beta.ActivationSink.Emit/
// Withdraw receive: enough to recover both the owning Rule and which
// disjunct fired, without beta importing engine.
type disjunctRef struct {
	rule  *Rule
	index int
}
