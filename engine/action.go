package engine

import (
	"github.com/prodrules/prodrules/analysis"
	"github.com/prodrules/prodrules/symbol"
	"github.com/prodrules/prodrules/wm"
)

// BindingContext is what a rule's compiled action list and dynamic-
// salience expression run against: the activation's variable bindings
// plus the Environment handle an action needs to assert/retract/modify
// or halt. The core never evaluates expressions itself — Action and
// ActionEvaluator externalize that contract to a host-provided
// evaluator, given the activation's binding context and expected to
// return a tagged value and a success/error flag.
type BindingContext struct {
	*analysis.BindingContext
	Env *Environment
}

// Action is one compiled RHS step. Actions run sequentially with the
// firing activation's bindings in scope; an error aborts the
// remaining actions in this firing and is reported through
// Config.HaltOnEvaluationError.
type Action func(ctx *BindingContext) error

// ActionEvaluator is the host-supplied expression evaluator the core
// invokes instead of interpreting RHS expressions itself. A Rule's
// action list is typically built by wrapping evaluator calls in Action
// closures; ActionEvaluator is exposed directly for hosts that want one
// evaluator driving several rules' RHS uniformly.
type ActionEvaluator interface {
	Evaluate(ctx *BindingContext) (symbol.Atom, error)
}

// AssertFact is a convenience Action constructor: asserts a new fact of
// tmpl built by evaluating each value thunk against ctx, honoring the
// current rule's logical-support registration if the firing rule has a
// logical group.
func AssertFact(tmpl *wm.Template, values func(ctx *BindingContext) ([]symbol.Value, error)) Action {
	return func(ctx *BindingContext) error {
		vals, err := values(ctx)
		if err != nil {
			return err
		}
		_, err = ctx.Env.assertFact(tmpl, vals, ctx)
		return err
	}
}
