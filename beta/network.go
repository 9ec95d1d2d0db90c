package beta

import "github.com/prodrules/prodrules/alpha"

// AlphaSource adapts one alpha memory as a join's RightSource — the
// common case where a join's right input is a single pattern's alpha
// matches rather than another join's output.
type AlphaSource struct {
	Net  *alpha.Network
	Node alpha.NodeID
}

// SnapshotRight implements RightSource.
func (a AlphaSource) SnapshotRight() []any {
	ents := a.Net.Snapshot(a.Node)
	out := make([]any, len(ents))
	for i, e := range ents {
		out[i] = e
	}
	return out
}

// SubscribeRight implements RightSource.
func (a AlphaSource) SubscribeRight(j *Join) {
	a.Net.Subscribe(a.Node, j)
}

// Network owns the arena of joins built for a rule set. Unlike the alpha
// network, joins are not shared across independently-defined rules in
// this implementation (see DESIGN.md) — each rule gets its own chain,
// addressed by stable JoinID for introspection and teardown.
type Network struct {
	joins []*Join
	seq   uint64
}

// NewNetwork creates an empty join arena.
func NewNetwork() *Network {
	return &Network{}
}

// NewChain starts a new rule's join chain: the first join's left input
// is the implicit empty partial match.
func (net *Network) NewChain(kind Kind, source RightSource, rightHash func(any) string, test func(*Token, any) bool) *Join {
	j := newJoin(JoinID(len(net.joins)), kind, 1, source, &net.seq)
	j.rightHash = rightHash
	j.test = test
	net.joins = append(net.joins, j)
	source.SubscribeRight(j)
	return j
}

// Append chains a new join after prev: prev's output tokens are the left
// input, source is the right input.
func (net *Network) Append(prev *Join, kind Kind, source RightSource, leftHash func(*Token) string, rightHash func(any) string, test func(*Token, any) bool) *Join {
	j := newJoin(JoinID(len(net.joins)), kind, prev.depth+1, source, &net.seq)
	j.leftHash = leftHash
	j.rightHash = rightHash
	j.test = test
	net.joins = append(net.joins, j)
	prev.next = j
	source.SubscribeRight(j)
	return j
}

// Activate wires the chain's terminal join to sink/ruleRef and primes
// the first join with the root token, backfilling from whatever alpha
// matches already exist (a rule defined after facts are already
// asserted). Call once after the whole chain (and every alpha
// subscription in it) has been built.
func (net *Network) Activate(first, terminal *Join, sink ActivationSink, ruleRef any) {
	terminal.sink = sink
	terminal.ruleRef = ruleRef
	first.leftAdd(rootToken)
}

// Joins returns every join in the arena, for teardown/introspection.
func (net *Network) Joins() []*Join { return net.joins }
