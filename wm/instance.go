package wm

import "github.com/prodrules/prodrules/symbol"

// Instance is a class-based working memory record. Unlike Fact, an
// Instance's slot values are updated in place by Modify, so a basis
// snapshot is needed: while basisActive is true, SlotValue returns the
// pre-modify value so that an activation whose LHS bindings already
// captured this instance keeps seeing the values it matched against,
// for the duration of the current rule firing. LiveSlotValue always
// returns the current value — the alpha/beta matching path uses it so
// that re-matching against a modified instance never discriminates on
// stale values.
type Instance struct {
	id        uint64
	name      *symbol.Atom
	class     *Class
	values    []symbol.Value
	timestamp uint64
	garbage   bool
	busy      int32

	basis       []symbol.Value
	basisActive bool
}

// Name returns the instance's interned instance-name atom.
func (inst *Instance) Name() *symbol.Atom { return inst.name }

// Class returns the instance's class.
func (inst *Instance) Class() *Class { return inst.class }

// Values returns the instance's live (non-basis) slot values.
func (inst *Instance) Values() []symbol.Value { return inst.values }

// ID implements Entity.
func (inst *Instance) ID() uint64 { return inst.id }

// Timestamp implements Entity.
func (inst *Instance) Timestamp() uint64 { return inst.timestamp }

// IsGarbage implements Entity.
func (inst *Instance) IsGarbage() bool { return inst.garbage }

// SlotCount implements Entity.
func (inst *Instance) SlotCount() int { return len(inst.values) }

// SlotValue implements Entity, honoring an in-flight basis snapshot: an
// RHS fetch for an activation that already matched this instance keeps
// reading the pre-modify value for the rest of the current firing.
func (inst *Instance) SlotValue(i int) symbol.Value {
	if inst.basisActive {
		return inst.basis[i]
	}
	return inst.values[i]
}

// LiveSlotValue implements Entity, bypassing the basis snapshot
// entirely. The alpha/beta network calls this — never SlotValue — when
// deciding whether a (re)asserted instance belongs in a memory, so a
// mid-firing modify is discriminated on its new values immediately
// rather than only once the basis is later committed.
func (inst *Instance) LiveSlotValue(i int) symbol.Value {
	return inst.values[i]
}

// SlotName implements Entity.
func (inst *Instance) SlotName(i int) string { return inst.class.Slots[i].Name }

// Busy implements Entity.
func (inst *Instance) Busy() { inst.busy++ }

// Unbusy implements Entity.
func (inst *Instance) Unbusy() { inst.busy-- }

// BusyCount implements Entity.
func (inst *Instance) BusyCount() int32 { return inst.busy }

// SlotByName looks up a slot value by name, honoring the basis snapshot.
func (inst *Instance) SlotByName(name string) (symbol.Value, bool) {
	i, ok := inst.class.SlotIndex(name)
	if !ok {
		return nil, false
	}
	return inst.SlotValue(i), true
}

// beginModify snapshots the current values into basis and marks it
// active, then applies updates to the live values in place. Called only
// by WorkingMemory.ModifyInstance.
func (inst *Instance) beginModify(updates map[string]symbol.Value, table *symbol.Table) {
	inst.basis = append([]symbol.Value(nil), inst.values...)
	inst.basisActive = true
	for name, v := range updates {
		i, ok := inst.class.SlotIndex(name)
		if !ok {
			continue
		}
		table.DeinstallValue(inst.values[i])
		table.InstallValue(v)
		inst.values[i] = v
	}
}

// CommitBasis clears the basis snapshot once the firing that issued the
// modify has finished running its actions. Called by the execution engine.
func (inst *Instance) CommitBasis() {
	inst.basisActive = false
	inst.basis = nil
}
