package wm

import "github.com/prodrules/prodrules/symbol"

// Fact is a template-based working memory record. Facts are immutable
// once asserted: Modify produces a new Fact with a new timestamp rather
// than mutating in place, so unlike Instance, Fact needs no basis
// snapshot — nothing ever changes under an existing reader.
type Fact struct {
	id        uint64
	template  *Template
	values    []symbol.Value
	timestamp uint64
	garbage   bool
	busy      int32
}

// Template returns the fact's template.
func (f *Fact) Template() *Template { return f.template }

// Values returns the fact's slot values in declaration order.
func (f *Fact) Values() []symbol.Value { return f.values }

// ID implements Entity.
func (f *Fact) ID() uint64 { return f.id }

// Timestamp implements Entity.
func (f *Fact) Timestamp() uint64 { return f.timestamp }

// IsGarbage implements Entity.
func (f *Fact) IsGarbage() bool { return f.garbage }

// SlotCount implements Entity.
func (f *Fact) SlotCount() int { return len(f.values) }

// SlotValue implements Entity. Facts are never modified in place
// (Modify produces a new Fact), so there is no basis to honor.
func (f *Fact) SlotValue(i int) symbol.Value { return f.values[i] }

// LiveSlotValue implements Entity; identical to SlotValue for a Fact.
func (f *Fact) LiveSlotValue(i int) symbol.Value { return f.values[i] }

// SlotName implements Entity.
func (f *Fact) SlotName(i int) string { return f.template.Slots[i].Name }

// Busy implements Entity.
func (f *Fact) Busy() { f.busy++ }

// Unbusy implements Entity.
func (f *Fact) Unbusy() { f.busy-- }

// BusyCount implements Entity.
func (f *Fact) BusyCount() int32 { return f.busy }

// SlotByName looks up a slot value by name.
func (f *Fact) SlotByName(name string) (symbol.Value, bool) {
	i, ok := f.template.SlotIndex(name)
	if !ok {
		return nil, false
	}
	return f.values[i], true
}
