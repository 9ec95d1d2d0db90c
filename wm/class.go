package wm

import "github.com/prodrules/prodrules/constraint"

// Class is a named node in the (possibly multiple-inheritance) class
// hierarchy: a superclass chain plus the slot descriptor array resolved
// across that chain, and a dense class id assigned at definition time.
type Class struct {
	Name      string
	Supers    []*Class
	Slots     []Slot
	ID        uint32
	slotIndex map[string]int
}

// ResolveSlots computes the ordered slot array for a class given its
// direct supers' already-resolved slots and its own locally declared
// slots, with local slots overriding (narrowing) an inherited slot of
// the same name by constraint intersection — the same propagation rule
// variable analysis uses for LHS bindings (constraint.Intersect).
func ResolveSlots(supers []*Class, local []Slot) []Slot {
	order := []string{}
	byName := map[string]Slot{}
	for _, super := range supers {
		for _, s := range super.Slots {
			if _, seen := byName[s.Name]; !seen {
				order = append(order, s.Name)
			}
			byName[s.Name] = s
		}
	}
	for _, s := range local {
		if existing, seen := byName[s.Name]; seen {
			merged := s
			merged.Constraint = constraint.Intersect(existing.Constraint, s.Constraint)
			byName[s.Name] = merged
			continue
		}
		order = append(order, s.Name)
		byName[s.Name] = s
	}
	out := make([]Slot, len(order))
	for i, name := range order {
		out[i] = byName[name]
	}
	return out
}

// NewClass builds a Class, resolving its slot array across supers.
func NewClass(name string, supers []*Class, local []Slot, id uint32) *Class {
	c := &Class{
		Name:   name,
		Supers: supers,
		ID:     id,
		Slots:  ResolveSlots(supers, local),
	}
	c.slotIndex = make(map[string]int, len(c.Slots))
	for i, s := range c.Slots {
		c.slotIndex[s.Name] = i
	}
	return c
}

// SlotIndex returns the 0-based index of the named slot.
func (c *Class) SlotIndex(name string) (int, bool) {
	i, ok := c.slotIndex[name]
	return i, ok
}

// IsA reports whether c is other or descends from it anywhere in the
// (possibly multiple-inheritance) superclass chain.
func (c *Class) IsA(other *Class) bool {
	if c == other {
		return true
	}
	for _, s := range c.Supers {
		if s.IsA(other) {
			return true
		}
	}
	return false
}
