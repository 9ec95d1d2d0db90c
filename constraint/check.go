package constraint

import (
	"fmt"

	"github.com/prodrules/prodrules/symbol"
)

// Result classifies the outcome of checking a value against a Record.
type Result uint8

const (
	// OK means the value satisfies the constraint.
	OK Result = iota
	// TypeViolation means the value's tag is not in the allowed tag set.
	TypeViolation
	// RangeViolation means a numeric value fell outside the allowed range.
	RangeViolation
	// CardinalityViolation means a multifield's length fell outside the
	// allowed cardinality range.
	CardinalityViolation
	// AllowedValuesViolation means the value's tag and range were fine
	// but it was not a member of an explicit allowed-value set.
	AllowedValuesViolation
)

// String implements fmt.Stringer.
func (r Result) String() string {
	switch r {
	case OK:
		return "OK"
	case TypeViolation:
		return "TypeViolation"
	case RangeViolation:
		return "RangeViolation"
	case CardinalityViolation:
		return "CardinalityViolation"
	case AllowedValuesViolation:
		return "AllowedValuesViolation"
	default:
		return fmt.Sprintf("UnknownResult(%d)", uint8(r))
	}
}

// Check classifies v against r. Multifield slots are checked element-wise
// against the record's per-element facets plus the record's own
// Cardinality against the multifield's length.
func Check(v symbol.Value, r Record) Result {
	switch val := v.(type) {
	case *symbol.Atom:
		return checkAtom(val, r)
	case *symbol.Multifield:
		if r.Cardinality.Max >= 0 && val.Len() > r.Cardinality.Max {
			return CardinalityViolation
		}
		if val.Len() < r.Cardinality.Min {
			return CardinalityViolation
		}
		elementRecord := r
		elementRecord.Cardinality = Cardinality{Min: 0, Max: -1}
		for i := 0; i < val.Len(); i++ {
			if res := checkAtom(val.At(i), elementRecord); res != OK {
				return res
			}
		}
		return OK
	default:
		return TypeViolation
	}
}

func atomNumeric(a *symbol.Atom) float64 {
	if a.Tag() == symbol.Float {
		return a.Float()
	}
	return float64(a.Int())
}

func checkAtom(a *symbol.Atom, r Record) Result {
	if !r.Tags.Has(a.Tag()) {
		return TypeViolation
	}
	if a.Tag() == symbol.Integer || a.Tag() == symbol.Float {
		n := atomNumeric(a)
		if r.Numeric.HasMin && n < r.Numeric.Min {
			return RangeViolation
		}
		if r.Numeric.HasMax && n > r.Numeric.Max {
			return RangeViolation
		}
	}
	if !r.AnyAllowed && r.AllowedValues != nil {
		if !r.AllowedValues.Contains(a) {
			return AllowedValuesViolation
		}
	}
	return OK
}

// ViolationError reports the reason an assert, modify, or literal value
// failed a slot's declared constraint.
type ViolationError struct {
	SlotName string
	Result   Result
}

// Error implements the error interface.
func (e *ViolationError) Error() string {
	return fmt.Sprintf("constraint violation on slot %q: %s", e.SlotName, e.Result)
}
