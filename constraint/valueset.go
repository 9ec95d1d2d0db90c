package constraint

import (
	"github.com/coregx/ahocorasick"
	"github.com/prodrules/prodrules/symbol"
)

// acThreshold is the allowed-value count at or above which ValueSet builds an
// Aho-Corasick automaton for membership testing instead of a linear scan
// over interned pointers.
const acThreshold = 32

// ValueSet is an explicit set of allowed atom values for a constraint
// record's AllowedValues facet. Small sets are checked by linear scan
// over interned pointers (one pointer comparison per member, since intern guarantees identity); large
// string/symbol sets build an Aho-Corasick automaton once and query it
// for an exact whole-value match, which is faster than a map lookup once
// the set is large enough to matter and gives the same answer.
type ValueSet struct {
	values []*symbol.Atom
	auto   *ahocorasick.Automaton // nil unless len(values) >= acThreshold and all are Symbol/String
}

// NewValueSet builds a ValueSet over the given atoms.
func NewValueSet(values []*symbol.Atom) *ValueSet {
	vs := &ValueSet{values: values}
	if len(values) >= acThreshold {
		vs.auto = buildAutomaton(values)
	}
	return vs
}

func buildAutomaton(values []*symbol.Atom) *ahocorasick.Automaton {
	builder := ahocorasick.NewBuilder()
	for _, v := range values {
		switch v.Tag() {
		case symbol.Symbol, symbol.String, symbol.InstanceName:
			builder.AddPattern([]byte(v.SymbolText()))
		default:
			// Non-textual atoms can't be classified by the automaton;
			// fall back to linear scan for the whole set.
			return nil
		}
	}
	auto, err := builder.Build()
	if err != nil {
		return nil
	}
	return auto
}

// Len returns the number of allowed values.
func (vs *ValueSet) Len() int {
	if vs == nil {
		return 0
	}
	return len(vs.values)
}

// Values returns the backing slice of allowed atoms.
func (vs *ValueSet) Values() []*symbol.Atom {
	if vs == nil {
		return nil
	}
	return vs.values
}

// Contains reports whether a is one of the set's allowed values.
func (vs *ValueSet) Contains(a *symbol.Atom) bool {
	if vs == nil {
		return false
	}
	if vs.auto != nil {
		text := a.SymbolText()
		if text == "" && a.Tag() != symbol.Symbol && a.Tag() != symbol.String && a.Tag() != symbol.InstanceName {
			return vs.containsLinear(a)
		}
		m := vs.auto.Find([]byte(text), 0)
		return m != nil && m.Start() == 0 && m.End() == len(text)
	}
	return vs.containsLinear(a)
}

func (vs *ValueSet) containsLinear(a *symbol.Atom) bool {
	for _, v := range vs.values {
		if v == a {
			return true
		}
	}
	return false
}

func intersectValueSets(a, b *ValueSet) *ValueSet {
	// A nil set places no value restriction, so the other side stands.
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	var out []*symbol.Atom
	for _, v := range a.values {
		if b.containsLinear(v) {
			out = append(out, v)
		}
	}
	return NewValueSet(out)
}

func unionValueSets(a, b *ValueSet) *ValueSet {
	out := append([]*symbol.Atom{}, a.Values()...)
	for _, v := range b.Values() {
		found := false
		for _, existing := range out {
			if existing == v {
				found = true
				break
			}
		}
		if !found {
			out = append(out, v)
		}
	}
	return NewValueSet(out)
}
