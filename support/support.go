// Package support implements logical support: the
// dependency graph from a logically-asserted fact or instance back to
// the partial-match prefix that justified it, and the cascading
// retraction that withdraws a conclusion once every one of its
// supporters is gone.
package support

import "github.com/prodrules/prodrules/wm"

// RetractFunc performs the actual working-memory retraction of a
// supported entity once its last supporter is gone. The Manager never
// imports wm's WorkingMemory or engine's Environment directly so the
// dependency stays one-directional: Environment is the single context
// object, not support.
type RetractFunc func(wm.Entity) error

// supporter is one prefix of a partial match existing when a logical
// RHS assertion ran: the set of entities that justified it.
type supporter struct {
	id        uint64
	entities  []wm.Entity
	supported []wm.Entity
	valid     bool
}

// Manager tracks every active supporter and, for each supported entity,
// its current (possibly multiple) supporters.
type Manager struct {
	retract RetractFunc
	nextID  uint64

	supporters  map[uint64]*supporter
	bySupported map[uint64][]*supporter // supported entity id -> active supporters
	byEntity    map[uint64][]*supporter // prefix entity id -> supporters referencing it
}

// NewManager creates an empty support manager. retract is invoked
// whenever a supported entity loses its last supporter.
func NewManager(retract RetractFunc) *Manager {
	return &Manager{
		retract:     retract,
		supporters:  make(map[uint64]*supporter),
		bySupported: make(map[uint64][]*supporter),
		byEntity:    make(map[uint64][]*supporter),
	}
}

// Register records that supported was asserted on the strength of
// prefix, the partial match's entities up through the rule's logical
// join. Each call creates its own supporter record, even when its prefix
// is identical to an earlier call's.
func (m *Manager) Register(supported wm.Entity, prefix []wm.Entity) {
	if len(prefix) == 0 {
		return
	}
	s := &supporter{
		id:       m.nextID,
		entities: append([]wm.Entity(nil), prefix...),
		valid:    true,
	}
	m.nextID++
	s.supported = append(s.supported, supported)
	m.supporters[s.id] = s
	m.bySupported[supported.ID()] = append(m.bySupported[supported.ID()], s)
	for _, e := range prefix {
		m.byEntity[e.ID()] = append(m.byEntity[e.ID()], s)
	}
}

// NotifyRetract invalidates every supporter referencing e and cascades
// retraction to any supported entity that consequently loses its last
// supporter. Called by the execution engine once e's own retraction has
// fully propagated through the alpha/beta network, so this never mutates
// a memory still mid-walk.
func (m *Manager) NotifyRetract(e wm.Entity) {
	supps := m.byEntity[e.ID()]
	delete(m.byEntity, e.ID())
	for _, s := range supps {
		if !s.valid {
			continue
		}
		s.valid = false
		m.purge(s, e.ID())
		for _, sup := range s.supported {
			m.dropSupporter(sup, s)
		}
	}
}

// purge removes s from every prefix entity's back-index except exclude
// (already removed by the caller) and forgets s entirely.
func (m *Manager) purge(s *supporter, exclude uint64) {
	for _, pe := range s.entities {
		if pe.ID() == exclude {
			continue
		}
		m.byEntity[pe.ID()] = removeSupporter(m.byEntity[pe.ID()], s)
		if len(m.byEntity[pe.ID()]) == 0 {
			delete(m.byEntity, pe.ID())
		}
	}
	delete(m.supporters, s.id)
}

// purgeAll removes s from every prefix entity's back-index unconditionally.
func (m *Manager) purgeAll(s *supporter) {
	for _, pe := range s.entities {
		m.byEntity[pe.ID()] = removeSupporter(m.byEntity[pe.ID()], s)
		if len(m.byEntity[pe.ID()]) == 0 {
			delete(m.byEntity, pe.ID())
		}
	}
	delete(m.supporters, s.id)
}

// dropSupporter removes s from supported's supporter list, retracting
// supported once that list is empty.
func (m *Manager) dropSupporter(supported wm.Entity, s *supporter) {
	list := removeSupporter(m.bySupported[supported.ID()], s)
	if len(list) > 0 {
		m.bySupported[supported.ID()] = list
		return
	}
	delete(m.bySupported, supported.ID())
	if supported.IsGarbage() {
		return
	}
	if m.retract != nil {
		_ = m.retract(supported)
	}
}

func removeSupporter(list []*supporter, s *supporter) []*supporter {
	kept := list[:0]
	for _, x := range list {
		if x != s {
			kept = append(kept, x)
		}
	}
	return kept
}

// SupporterCount reports how many distinct supporters are currently
// active, for tests and introspection.
func (m *Manager) SupporterCount() int { return len(m.supporters) }

// IsSupported reports whether e currently has at least one active
// supporter.
func (m *Manager) IsSupported(e wm.Entity) bool {
	return len(m.bySupported[e.ID()]) > 0
}

// Forget drops every supporter record for an entity that is being
// retracted directly (not via cascading) so its supported set doesn't
// leak; used by the engine when a logically-supported fact is retracted
// by user action rather than by its supporter vanishing.
func (m *Manager) Forget(e wm.Entity) {
	for _, s := range m.bySupported[e.ID()] {
		s.supported = removeEntity(s.supported, e)
		if len(s.supported) == 0 {
			m.purgeAll(s)
		}
	}
	delete(m.bySupported, e.ID())
}

func removeEntity(list []wm.Entity, e wm.Entity) []wm.Entity {
	kept := list[:0]
	for _, x := range list {
		if x != e {
			kept = append(kept, x)
		}
	}
	return kept
}
