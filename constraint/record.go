// Package constraint implements per-slot constraint records: the allowed
// primitive types, allowed value sets, numeric ranges, and multifield
// cardinality ranges that a template slot or LHS variable may carry.
//
// Intersect and Union are the two operations variable analysis (the
// analysis package) composes as it propagates a variable's constraint
// from its binding occurrence to each later use site.
package constraint

import "github.com/prodrules/prodrules/symbol"

// TagSet is a bitmask over symbol.Tag values.
type TagSet uint16

// AllTags is the tag set that places no type restriction at all.
const AllTags TagSet = (1 << 6) - 1

// TagBit returns the bit for a single tag, for building a TagSet.
func TagBit(t symbol.Tag) TagSet {
	return 1 << uint(t)
}

// Has reports whether t is a member of the set.
func (s TagSet) Has(t symbol.Tag) bool {
	return s&TagBit(t) != 0
}

// NumericRange bounds an Integer/Float atom's numeric value. A range with
// HasMin == HasMax == false places no numeric restriction.
type NumericRange struct {
	HasMin bool
	Min    float64
	HasMax bool
	Max    float64
}

// Cardinality bounds the number of elements a multifield slot may hold.
// Max < 0 means unbounded.
type Cardinality struct {
	Min int
	Max int // -1 = unbounded
}

// Record is a single slot or variable's constraint.
type Record struct {
	Tags TagSet

	// AnyAllowed, when true, means "any value of an allowed tag is
	// acceptable" — AllowedValues is ignored. When false, AllowedValues
	// (if non-nil) restricts to that explicit set.
	AnyAllowed    bool
	AllowedValues *ValueSet

	Numeric     NumericRange
	Cardinality Cardinality
}

// Unconstrained returns a record that accepts any value of any tag, any
// cardinality — the default for a slot or variable with no declared
// restriction.
func Unconstrained() Record {
	return Record{
		Tags:        AllTags,
		AnyAllowed:  true,
		Cardinality: Cardinality{Min: 0, Max: -1},
	}
}

// Unmatchable reports whether r can never be satisfied by any value: no
// tag is allowed, the numeric range is inverted, the cardinality range is
// inverted, or an explicit (non-AnyAllowed) allowed-value set is empty.
func (r Record) Unmatchable() bool {
	if r.Tags == 0 {
		return true
	}
	if r.Numeric.HasMin && r.Numeric.HasMax && r.Numeric.Min > r.Numeric.Max {
		return true
	}
	if r.Cardinality.Max >= 0 && r.Cardinality.Min > r.Cardinality.Max {
		return true
	}
	if !r.AnyAllowed && r.AllowedValues != nil && r.AllowedValues.Len() == 0 {
		return true
	}
	return false
}

// Intersect returns the strictest record allowing only what both a and b
// allow. The result may be Unmatchable(); callers must check.
func Intersect(a, b Record) Record {
	out := Record{
		Tags: a.Tags & b.Tags,
		Numeric: NumericRange{
			HasMin: a.Numeric.HasMin || b.Numeric.HasMin,
			Min:    maxBound(a.Numeric, b.Numeric, true),
			HasMax: a.Numeric.HasMax || b.Numeric.HasMax,
			Max:    maxBound(a.Numeric, b.Numeric, false),
		},
		Cardinality: Cardinality{
			Min: maxInt(a.Cardinality.Min, b.Cardinality.Min),
			Max: minCardMax(a.Cardinality.Max, b.Cardinality.Max),
		},
	}

	switch {
	case a.AnyAllowed && b.AnyAllowed:
		out.AnyAllowed = true
	case a.AnyAllowed:
		out.AnyAllowed = false
		out.AllowedValues = b.AllowedValues
	case b.AnyAllowed:
		out.AnyAllowed = false
		out.AllowedValues = a.AllowedValues
	default:
		out.AnyAllowed = false
		out.AllowedValues = intersectValueSets(a.AllowedValues, b.AllowedValues)
	}
	return out
}

// Union returns the loosest record allowing anything either a or b
// allows.
func Union(a, b Record) Record {
	out := Record{
		Tags: a.Tags | b.Tags,
	}
	out.Numeric = unionNumeric(a.Numeric, b.Numeric)
	out.Cardinality = Cardinality{
		Min: minInt(a.Cardinality.Min, b.Cardinality.Min),
		Max: unionCardMax(a.Cardinality.Max, b.Cardinality.Max),
	}
	if a.AnyAllowed || b.AnyAllowed {
		out.AnyAllowed = true
		return out
	}
	if a.AllowedValues == nil || b.AllowedValues == nil {
		// One side places no value restriction, so neither does the union.
		return out
	}
	out.AllowedValues = unionValueSets(a.AllowedValues, b.AllowedValues)
	return out
}

func maxBound(a, b NumericRange, min bool) float64 {
	if min {
		switch {
		case a.HasMin && b.HasMin:
			if a.Min > b.Min {
				return a.Min
			}
			return b.Min
		case a.HasMin:
			return a.Min
		default:
			return b.Min
		}
	}
	switch {
	case a.HasMax && b.HasMax:
		if a.Max < b.Max {
			return a.Max
		}
		return b.Max
	case a.HasMax:
		return a.Max
	default:
		return b.Max
	}
}

func unionNumeric(a, b NumericRange) NumericRange {
	out := NumericRange{}
	if a.HasMin && b.HasMin {
		out.HasMin = true
		out.Min = a.Min
		if b.Min < out.Min {
			out.Min = b.Min
		}
	}
	if a.HasMax && b.HasMax {
		out.HasMax = true
		out.Max = a.Max
		if b.Max > out.Max {
			out.Max = b.Max
		}
	}
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func minCardMax(a, b int) int {
	if a < 0 {
		return b
	}
	if b < 0 {
		return a
	}
	return minInt(a, b)
}

func unionCardMax(a, b int) int {
	if a < 0 || b < 0 {
		return -1
	}
	return maxInt(a, b)
}
