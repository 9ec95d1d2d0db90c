package alpha

import (
	"reflect"

	"github.com/prodrules/prodrules/constraint"
	"github.com/prodrules/prodrules/wm"
)

// Listener is a join node (package beta) subscribed to one alpha
// memory's changes. Listeners for a given NodeID are notified in
// registration order, which is fixed at compile time and deterministic.
type Listener interface {
	OnAlphaAdd(node NodeID, e wm.Entity)
	OnAlphaRemove(node NodeID, e wm.Entity)
}

// Network is the whole discrimination forest: one tree per fact
// template name or instance class name, built from an arena of nodes
// addressed by stable NodeID.
type Network struct {
	nodes     []node
	typeRoots map[string]NodeID
	listeners map[NodeID][]Listener
}

// NewNetwork creates an empty alpha network.
func NewNetwork() *Network {
	return &Network{typeRoots: make(map[string]NodeID), listeners: make(map[NodeID][]Listener)}
}

func (net *Network) newNode() NodeID {
	id := NodeID(len(net.nodes))
	net.nodes = append(net.nodes, newNode(id))
	return id
}

func (net *Network) typeRoot(name string) NodeID {
	if id, ok := net.typeRoots[name]; ok {
		return id
	}
	id := net.newNode()
	net.typeRoots[name] = id
	return id
}

// insertTest finds or creates the child of parent representing test,
// sharing structure with any previously added pattern that has an
// identical prefix.
func (net *Network) insertTest(parent NodeID, test Test) NodeID {
	p := &net.nodes[parent]
	if p.slotIndex < 0 {
		p.slotIndex = test.SlotIndex
	}
	if test.Equality != nil {
		if child, ok := p.hashedChildren[test.Equality]; ok {
			return child
		}
		child := net.newNode()
		p.hashedChildren[test.Equality] = child
		return child
	}
	for _, e := range p.linearChildren {
		if e.test.SlotIndex == test.SlotIndex && reflect.DeepEqual(e.test.Constraint, test.Constraint) {
			return e.next
		}
	}
	child := net.newNode()
	p.linearChildren = append(p.linearChildren, edge{test: test, next: child})
	return child
}

// AddPattern compiles one pattern's ordered test chain (tests must be in
// ascending SlotIndex order, since a node's children all dispatch on the
// same field) into the tree for typeName, returning the terminal node's
// ID — the handle beta uses to Subscribe and Snapshot.
func (net *Network) AddPattern(typeName string, tests []Test) NodeID {
	cur := net.typeRoot(typeName)
	for _, test := range tests {
		cur = net.insertTest(cur, test)
	}
	n := &net.nodes[cur]
	if n.memory == nil {
		n.memory = newMemory()
	}
	return cur
}

// Subscribe registers l for every future add/remove at node id.
func (net *Network) Subscribe(id NodeID, l Listener) {
	net.listeners[id] = append(net.listeners[id], l)
}

// Snapshot returns the entities currently live in node id's memory, for
// a join subscribing after the network already has matches (a rule
// defined after facts already exist).
func (net *Network) Snapshot(id NodeID) []wm.Entity {
	if int(id) >= len(net.nodes) || net.nodes[id].memory == nil {
		return nil
	}
	return net.nodes[id].memory.Entities()
}

// MemoryLen reports a node's live alpha-match count (tests/introspection).
func (net *Network) MemoryLen(id NodeID) int {
	if int(id) >= len(net.nodes) || net.nodes[id].memory == nil {
		return 0
	}
	return net.nodes[id].memory.Len()
}

func typeNameOf(e wm.Entity) (string, bool) {
	switch v := e.(type) {
	case *wm.Fact:
		return v.Template().Name, true
	case *wm.Instance:
		return v.Class().Name, true
	default:
		return "", false
	}
}

// NotifyAssert implements wm.NetworkHook: walks the discrimination tree
// for e's type depth-first, depositing e into every memory it reaches
// and notifying that memory's listeners in registration order.
func (net *Network) NotifyAssert(e wm.Entity) {
	net.propagate(e, false)
}

// NotifyRetract implements wm.NetworkHook: re-walks the same tree (the
// entity's slot values are unchanged at this point — ModifyInstance
// calls NotifyRetract before mutating) and unlinks e from every memory
// that held it.
func (net *Network) NotifyRetract(e wm.Entity) {
	net.propagate(e, true)
}

func (net *Network) propagate(e wm.Entity, removing bool) {
	name, ok := typeNameOf(e)
	if !ok {
		return
	}
	root, ok := net.typeRoots[name]
	if !ok {
		return
	}
	net.walk(root, e, removing)
}

func (net *Network) walk(id NodeID, e wm.Entity, removing bool) {
	n := &net.nodes[id]
	if n.memory != nil {
		if removing {
			if n.memory.remove(e) {
				net.notify(id, e, true)
			}
		} else {
			n.memory.add(e)
			net.notify(id, e, false)
		}
	}
	if n.slotIndex < 0 || n.slotIndex >= e.SlotCount() {
		return
	}
	v := e.LiveSlotValue(n.slotIndex)
	if child, ok := n.hashedChildren[v]; ok {
		net.walk(child, e, removing)
	}
	for _, ed := range n.linearChildren {
		if constraint.Check(v, ed.test.Constraint) == constraint.OK {
			net.walk(ed.next, e, removing)
		}
	}
}

func (net *Network) notify(id NodeID, e wm.Entity, removing bool) {
	for _, l := range net.listeners[id] {
		if removing {
			l.OnAlphaRemove(id, e)
		} else {
			l.OnAlphaAdd(id, e)
		}
	}
}
