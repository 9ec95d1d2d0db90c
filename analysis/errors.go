package analysis

// ErrorKind classifies why a rule's LHS failed to compile.
type ErrorKind uint8

const (
	// UnboundVariable: a TestCE, RHS fetch, or join references a variable
	// with no earlier binding occurrence.
	UnboundVariable ErrorKind = iota
	// CrossScopeVariable: a variable first bound inside a Negated/Exists
	// element is referenced outside it — such bindings do not escape
	// their scope.
	CrossScopeVariable
	// MixedCardinalityVariable: the same variable name is bound once to a
	// single-valued slot and once to a multifield slot.
	MixedCardinalityVariable
	// DuplicatePatternVariable: the same variable name appears twice as a
	// first occurrence within one pattern's own slots.
	DuplicatePatternVariable
	// UnmatchableConstraint: a binding occurrence's declared constraint
	// can never be satisfied (constraint.Record.Unmatchable()).
	UnmatchableConstraint
	// RedundantTypeRestriction: a constraint narrows a slot to exactly
	// the type its template/class already declares, contributing nothing.
	RedundantTypeRestriction
	// InvalidElement: an Element has none or more than one of its variant
	// fields set.
	InvalidElement
)

func (k ErrorKind) String() string {
	switch k {
	case UnboundVariable:
		return "unbound variable"
	case CrossScopeVariable:
		return "cross-scope variable"
	case MixedCardinalityVariable:
		return "mixed cardinality variable"
	case DuplicatePatternVariable:
		return "duplicate pattern variable"
	case UnmatchableConstraint:
		return "unmatchable constraint"
	case RedundantTypeRestriction:
		return "redundant type restriction"
	case InvalidElement:
		return "invalid element"
	default:
		return "unknown"
	}
}

// Error is a single LHS compilation failure.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string { return e.Kind.String() + ": " + e.Message }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}
