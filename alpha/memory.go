package alpha

import "github.com/prodrules/prodrules/wm"

// Memory is an alpha memory: the live entity set for one pattern's test
// chain, in deterministic insertion order.
type Memory struct {
	live  map[uint64]wm.Entity
	order []uint64
}

func newMemory() *Memory {
	return &Memory{live: make(map[uint64]wm.Entity)}
}

func (m *Memory) add(e wm.Entity) {
	if _, ok := m.live[e.ID()]; ok {
		return
	}
	m.live[e.ID()] = e
	m.order = append(m.order, e.ID())
}

func (m *Memory) remove(e wm.Entity) bool {
	if _, ok := m.live[e.ID()]; !ok {
		return false
	}
	delete(m.live, e.ID())
	for i, id := range m.order {
		if id == e.ID() {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true
}

// Len reports how many entities are currently live in this memory.
func (m *Memory) Len() int { return len(m.live) }

// Entities returns the live entities in insertion order.
func (m *Memory) Entities() []wm.Entity {
	out := make([]wm.Entity, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.live[id])
	}
	return out
}
