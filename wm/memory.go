package wm

import (
	"github.com/prodrules/prodrules/constraint"
	"github.com/prodrules/prodrules/symbol"
)

// NetworkHook is what WorkingMemory notifies on every assert/retract so
// the alpha network (package alpha) can propagate, without wm importing
// alpha.
type NetworkHook interface {
	NotifyAssert(e Entity)
	NotifyRetract(e Entity)
}

// WorkingMemory owns the per-template fact lists, per-class instance
// lists, and the global timestamp.
type WorkingMemory struct {
	table *symbol.Table
	hook  NetworkHook

	clock  uint64
	nextID uint64

	allowDuplicates bool

	factsByTemplate map[string][]*Fact
	instsByClass    map[string][]*Instance

	dirtyInstances []*Instance
}

// New creates an empty WorkingMemory bound to table for atom interning.
func New(table *symbol.Table, allowDuplicates bool) *WorkingMemory {
	return &WorkingMemory{
		table:           table,
		allowDuplicates: allowDuplicates,
		factsByTemplate: make(map[string][]*Fact),
		instsByClass:    make(map[string][]*Instance),
	}
}

// AttachNetwork registers the alpha network as the change listener. Must
// be called once before any Assert/Retract.
func (wmem *WorkingMemory) AttachNetwork(hook NetworkHook) {
	wmem.hook = hook
}

func (wmem *WorkingMemory) notifyAssert(e Entity) {
	if wmem.hook != nil {
		wmem.hook.NotifyAssert(e)
	}
}

func (wmem *WorkingMemory) notifyRetract(e Entity) {
	if wmem.hook != nil {
		wmem.hook.NotifyRetract(e)
	}
}

// checkSlots validates values against each slot's declared constraint.
func checkSlots(slots []Slot, values []symbol.Value) error {
	for i, s := range slots {
		if res := constraint.Check(values[i], s.Constraint); res != constraint.OK {
			return &Error{Kind: ConstraintViolation, Message: s.Name, Cause: &constraint.ViolationError{SlotName: s.Name, Result: res}}
		}
	}
	return nil
}

func factsEqual(a, b []symbol.Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !symbol.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// AssertFact canonicalizes values against tmpl's slots, assigns a
// timestamp and numeric handle, links the fact into the template's list,
// and notifies the network. Returns a *Error{Kind: DuplicateFact} if an
// identical fact already exists and duplicates are disabled.
func (wmem *WorkingMemory) AssertFact(tmpl *Template, values []symbol.Value) (*Fact, error) {
	if err := checkSlots(tmpl.Slots, values); err != nil {
		return nil, err
	}
	if !wmem.allowDuplicates {
		for _, existing := range wmem.factsByTemplate[tmpl.Name] {
			if !existing.garbage && factsEqual(existing.values, values) {
				return nil, &Error{Kind: DuplicateFact, Message: tmpl.Name}
			}
		}
	}
	for _, v := range values {
		wmem.table.InstallValue(v)
	}
	wmem.clock++
	wmem.nextID++
	f := &Fact{
		id:        wmem.nextID,
		template:  tmpl,
		values:    values,
		timestamp: wmem.clock,
	}
	wmem.factsByTemplate[tmpl.Name] = append(wmem.factsByTemplate[tmpl.Name], f)
	wmem.notifyAssert(f)
	return f, nil
}

// RetractFact marks f garbage, notifies the network (which unlinks it
// from alpha memories and cascades through joins), and deinstalls its
// slot atoms. Logical support is not touched here.
func (wmem *WorkingMemory) RetractFact(f *Fact) error {
	if f.garbage {
		return &Error{Kind: EntityRetracted, Message: f.template.Name}
	}
	f.garbage = true
	wmem.notifyRetract(f)
	for _, v := range f.values {
		wmem.table.DeinstallValue(v)
	}
	list := wmem.factsByTemplate[f.template.Name]
	for i, existing := range list {
		if existing == f {
			wmem.factsByTemplate[f.template.Name] = append(list[:i], list[i+1:]...)
			break
		}
	}
	return nil
}

// ModifyFact is a retract-then-assert: it produces a brand new *Fact with
// a new timestamp. The old *Fact keeps its values but is retracted
// (marked garbage).
func (wmem *WorkingMemory) ModifyFact(f *Fact, updates map[string]symbol.Value) (*Fact, error) {
	newValues := append([]symbol.Value(nil), f.values...)
	for name, v := range updates {
		i, ok := f.template.SlotIndex(name)
		if !ok {
			return nil, &Error{Kind: UnknownSlot, Message: name}
		}
		newValues[i] = v
	}
	if err := wmem.RetractFact(f); err != nil {
		return nil, err
	}
	return wmem.AssertFact(f.template, newValues)
}

// AssertInstance installs a new instance of cls with the given values.
func (wmem *WorkingMemory) AssertInstance(cls *Class, name *symbol.Atom, values []symbol.Value) (*Instance, error) {
	if err := checkSlots(cls.Slots, values); err != nil {
		return nil, err
	}
	for _, v := range values {
		wmem.table.InstallValue(v)
	}
	wmem.table.Install(name)
	wmem.clock++
	wmem.nextID++
	inst := &Instance{
		id:        wmem.nextID,
		name:      name,
		class:     cls,
		values:    values,
		timestamp: wmem.clock,
	}
	wmem.instsByClass[cls.Name] = append(wmem.instsByClass[cls.Name], inst)
	wmem.notifyAssert(inst)
	return inst, nil
}

// RetractInstance marks inst garbage and notifies the network.
func (wmem *WorkingMemory) RetractInstance(inst *Instance) error {
	if inst.garbage {
		return &Error{Kind: EntityRetracted, Message: inst.class.Name}
	}
	inst.garbage = true
	wmem.notifyRetract(inst)
	for _, v := range inst.values {
		wmem.table.DeinstallValue(v)
	}
	wmem.table.Deinstall(inst.name)
	list := wmem.instsByClass[inst.class.Name]
	for i, existing := range list {
		if existing == inst {
			wmem.instsByClass[inst.class.Name] = append(list[:i], list[i+1:]...)
			break
		}
	}
	return nil
}

// ModifyInstance updates inst's slots in place, preserving a basis
// snapshot of the pre-modify values , bumps its
// timestamp, and re-notifies the network as a retract-then-assert pair
// so alpha/beta memories re-key on the new values while any activation
// already holding this instance keeps reading the basis until the
// current firing commits it (WorkingMemory.CommitDirtyInstances).
func (wmem *WorkingMemory) ModifyInstance(inst *Instance, updates map[string]symbol.Value) error {
	if inst.garbage {
		return &Error{Kind: EntityRetracted, Message: inst.class.Name}
	}
	for name, v := range updates {
		i, ok := inst.class.SlotIndex(name)
		if !ok {
			return &Error{Kind: UnknownSlot, Message: name}
		}
		if res := constraint.Check(v, inst.class.Slots[i].Constraint); res != constraint.OK {
			return &Error{Kind: ConstraintViolation, Message: name, Cause: &constraint.ViolationError{SlotName: name, Result: res}}
		}
	}
	wmem.notifyRetract(inst)
	inst.beginModify(updates, wmem.table)
	wmem.clock++
	inst.timestamp = wmem.clock
	wmem.dirtyInstances = append(wmem.dirtyInstances, inst)
	wmem.notifyAssert(inst)
	return nil
}

// CommitDirtyInstances clears the basis snapshot on every instance
// modified since the last commit. Called by the execution engine once a
// firing's actions have all run.
func (wmem *WorkingMemory) CommitDirtyInstances() {
	for _, inst := range wmem.dirtyInstances {
		inst.CommitBasis()
	}
	wmem.dirtyInstances = wmem.dirtyInstances[:0]
}

// IterateByTemplate calls f for every live fact of the named template.
func (wmem *WorkingMemory) IterateByTemplate(name string, f func(*Fact) bool) {
	for _, fact := range wmem.factsByTemplate[name] {
		if !fact.garbage && !f(fact) {
			return
		}
	}
}

// IterateByClass calls f for every live instance of the named class.
func (wmem *WorkingMemory) IterateByClass(name string, f func(*Instance) bool) {
	for _, inst := range wmem.instsByClass[name] {
		if !inst.garbage && !f(inst) {
			return
		}
	}
}

// IterateAll calls factFn for every live fact and instFn for every live
// instance, across all templates/classes.
func (wmem *WorkingMemory) IterateAll(factFn func(*Fact) bool, instFn func(*Instance) bool) {
	for _, list := range wmem.factsByTemplate {
		for _, fact := range list {
			if !fact.garbage && factFn != nil && !factFn(fact) {
				return
			}
		}
	}
	for _, list := range wmem.instsByClass {
		for _, inst := range list {
			if !inst.garbage && instFn != nil && !instFn(inst) {
				return
			}
		}
	}
}

// Clock returns the current logical timestamp.
func (wmem *WorkingMemory) Clock() uint64 { return wmem.clock }

// FactCount returns the number of live facts, for round-trip tests.
func (wmem *WorkingMemory) FactCount() int {
	n := 0
	for _, list := range wmem.factsByTemplate {
		for _, f := range list {
			if !f.garbage {
				n++
			}
		}
	}
	return n
}
