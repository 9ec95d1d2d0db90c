package wm

import "github.com/prodrules/prodrules/symbol"

// Entity is the dispatch record shared by Fact and Instance: the alpha
// network only ever needs to ask "what's your timestamp", "are you
// still live", "give me slot i's current value for matching", and
// "bump/drop your busy count" — it never needs to know which concrete
// kind it holds.
type Entity interface {
	// ID returns the entity's numeric handle, stable for its lifetime.
	ID() uint64
	// Timestamp returns the logical clock value at assert (or latest
	// modify, for instances).
	Timestamp() uint64
	// IsGarbage reports whether Retract has been called.
	IsGarbage() bool
	// SlotCount returns the number of slots.
	SlotCount() int
	// SlotValue returns slot i's value as visible to a firing rule's
	// RHS: the basis snapshot's value if a modify is in flight for the
	// current firing (see Instance.beginModify), the live value
	// otherwise.
	SlotValue(i int) symbol.Value
	// LiveSlotValue returns slot i's current value regardless of any
	// in-flight basis snapshot. The alpha/beta matching path uses this
	// exclusively so that re-matching a modified instance always
	// discriminates on its new values — only the RHS variable-fetch
	// path (analysis.BindingContext.Value) needs the basis-aware
	// SlotValue above.
	LiveSlotValue(i int) symbol.Value
	// SlotName returns slot i's declared name.
	SlotName(i int) string
	// Busy increments the entity's in-network reference count.
	Busy()
	// Unbusy decrements it.
	Unbusy()
	// BusyCount reports the current reference count (tests/introspection).
	BusyCount() int32
}
