// Package wm is the working memory: facts (template-based, ordered) and
// instances (class-based), their indices, and the assert/retract/modify
// operations that drive the pattern network.
//
// Facts and instances are both "patternable entities": a tagged-union
// style dispatch, realized here as the Entity interface. A Go interface
// is exactly such a dispatch record, without an inheritance hierarchy
// behind it.
package wm

import "github.com/prodrules/prodrules/constraint"

// DefaultKind classifies how a slot's default value is produced.
type DefaultKind uint8

const (
	// NoDefault means the slot has no default; omitting it at assert
	// time is an error for required slots (callers decide that policy).
	NoDefault DefaultKind = iota
	// StaticDefault means DefaultExpr is a constant value installed once.
	StaticDefault
	// DynamicDefault means DefaultExpr is evaluated fresh at each assert.
	DynamicDefault
)

// Slot describes one field of a Template or Class.
type Slot struct {
	Name        string
	Multi       bool
	Constraint  constraint.Record
	Default     DefaultKind
	DefaultExpr any // host-supplied constant or thunk, opaque to wm
}

// Template is a named ordered-fact schema: an ordered slot list plus the
// "ordered template" shorthand of a single implicit multifield slot.
type Template struct {
	Name      string
	Slots     []Slot
	Ordered   bool
	slotIndex map[string]int
}

// NewTemplate builds a Template and its name->index lookup.
func NewTemplate(name string, slots []Slot) *Template {
	t := &Template{Name: name, Slots: slots, slotIndex: make(map[string]int, len(slots))}
	for i, s := range slots {
		t.slotIndex[s.Name] = i
	}
	return t
}

// NewOrderedTemplate builds the one-implicit-multifield-slot template used
// for ordered facts, e.g. (point 3 4).
func NewOrderedTemplate(name string) *Template {
	t := NewTemplate(name, []Slot{{
		Name:       "implied",
		Multi:      true,
		Constraint: constraint.Unconstrained(),
	}})
	t.Ordered = true
	return t
}

// SlotIndex returns the 0-based index of the named slot.
func (t *Template) SlotIndex(name string) (int, bool) {
	i, ok := t.slotIndex[name]
	return i, ok
}
