// Package symbol implements the interned value store (symbols, strings,
// instance names, numbers) shared by every other core package.
//
// Every tagged value that can flow through the pattern network is an *Atom.
// Atoms are interned: two atoms with the same tag and contents are the
// same pointer, so equality and hashing are pointer operations. A Table
// owns the intern maps and the install/deinstall reference counts that
// keep an atom alive for exactly as long as some partial match, fact, or
// instance slot references it.
//
// This mirrors the arena-with-stable-ids idiom the rest of the network
// uses for alpha nodes and join nodes, except atoms are reference
// counted instead of arena-freed in bulk, because their lifetime is tied
// to arbitrary, overlapping sets of facts and partial matches rather than
// to a single compiled structure.
package symbol

import "fmt"

// Tag identifies the kind of value an Atom holds.
type Tag uint8

const (
	// Symbol is an interned bareword atom, e.g. red, TRUE, nil.
	Symbol Tag = iota
	// String is an interned double-quoted string atom.
	String
	// InstanceName is an interned instance-address atom, e.g. [fido].
	InstanceName
	// Integer is an interned 64-bit integer atom.
	Integer
	// Float is an interned 64-bit float atom.
	Float
	// ExternalHandle is an interned opaque host-supplied value.
	ExternalHandle
)

// String returns a human-readable tag name.
func (t Tag) String() string {
	switch t {
	case Symbol:
		return "Symbol"
	case String:
		return "String"
	case InstanceName:
		return "InstanceName"
	case Integer:
		return "Integer"
	case Float:
		return "Float"
	case ExternalHandle:
		return "ExternalHandle"
	default:
		return fmt.Sprintf("UnknownTag(%d)", uint8(t))
	}
}

// Atom is an interned immutable value. Identity is pointer equality after
// interning: two Install calls for equal contents return the same *Atom.
//
// Booleans are two distinguished symbols, SymTrue and SymFalse, installed
// once by NewTable and never deinstalled.
type Atom struct {
	tag Tag

	sym string  // Symbol / String / InstanceName contents
	i   int64   // Integer contents
	f   float64 // Float contents
	ext any     // ExternalHandle contents

	seq   uint64 // assigns a stable total order across all tags at intern time
	count int32  // install/deinstall reference count
}

// Tag returns the atom's tag.
func (a *Atom) Tag() Tag { return a.tag }

// SymbolText returns the textual contents for Symbol, String, or
// InstanceName atoms, and the empty string otherwise.
func (a *Atom) SymbolText() string {
	switch a.tag {
	case Symbol, String, InstanceName:
		return a.sym
	default:
		return ""
	}
}

// Int returns the contents of an Integer atom, or 0 otherwise.
func (a *Atom) Int() int64 {
	if a.tag == Integer {
		return a.i
	}
	return 0
}

// Float returns the contents of a Float atom, or 0 otherwise.
func (a *Atom) Float() float64 {
	if a.tag == Float {
		return a.f
	}
	return 0
}

// External returns the contents of an ExternalHandle atom, or nil otherwise.
func (a *Atom) External() any {
	if a.tag == ExternalHandle {
		return a.ext
	}
	return nil
}

// RefCount returns the atom's current install count. Exposed for tests and
// introspection; never needed for correctness by callers outside symbol.
func (a *Atom) RefCount() int32 { return a.count }

// String renders the atom the way a rule's printed representation would.
func (a *Atom) String() string {
	switch a.tag {
	case Symbol:
		return a.sym
	case String:
		return fmt.Sprintf("%q", a.sym)
	case InstanceName:
		return "[" + a.sym + "]"
	case Integer:
		return fmt.Sprintf("%d", a.i)
	case Float:
		return fmt.Sprintf("%g", a.f)
	case ExternalHandle:
		return fmt.Sprintf("<external-handle-%d>", a.seq)
	default:
		return "<invalid-atom>"
	}
}

// Value is a patternable slot value: either a single Atom or a Multifield.
// Never nested — a Multifield's elements are always Atoms.
type Value interface {
	isValue()
}

func (*Atom) isValue()       {}
func (*Multifield) isValue() {}

// Multifield is a finite ordered sequence of atoms. A (begin, end)
// subrange is addressed in O(1) via View, never by copying.
type Multifield struct {
	values []*Atom
}

// NewMultifield builds a multifield over the given atoms. The slice is not
// copied; callers must not mutate it afterward.
func NewMultifield(values []*Atom) *Multifield {
	return &Multifield{values: values}
}

// Len returns the number of elements.
func (m *Multifield) Len() int { return len(m.values) }

// At returns the element at the given 0-based index.
func (m *Multifield) At(i int) *Atom { return m.values[i] }

// Values returns the backing slice. Callers must not mutate it.
func (m *Multifield) Values() []*Atom { return m.values }

// View returns an O(1) subrange [begin, end] inclusive, sharing storage
// with m. Used by the alpha network to record multifield-variable spans
// without copying.
func (m *Multifield) View(begin, end int) *Multifield {
	if begin > end {
		return &Multifield{values: nil}
	}
	return &Multifield{values: m.values[begin : end+1]}
}

// String renders the multifield as a parenthesized sequence.
func (m *Multifield) String() string {
	s := "("
	for i, v := range m.values {
		if i > 0 {
			s += " "
		}
		s += v.String()
	}
	return s + ")"
}
