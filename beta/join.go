package beta

import (
	"fmt"
	"strings"

	"github.com/prodrules/prodrules/alpha"
	"github.com/prodrules/prodrules/internal/conv"
	"github.com/prodrules/prodrules/internal/sparse"
	"github.com/prodrules/prodrules/symbol"
	"github.com/prodrules/prodrules/wm"
)

// JoinID is a stable arena index into a Network's join slice, the same
// arena-with-stable-indices idiom as alpha.NodeID.
type JoinID uint32

// Kind selects a join's variant.
type Kind uint8

const (
	// Positive is the default join: extend left with every matching right.
	Positive Kind = iota
	// Negated emits a dummy row per left token with no matching right,
	// and withdraws it the moment any right match arrives.
	Negated
	// Exists emits one row per left token with at least one matching
	// right, irrespective of how many.
	Exists
)

// RightSource is what a join reads its right-hand candidates from: an
// alpha memory (the common case, via AlphaSource) or another join's
// output tokens (join-from-the-right, for nested negation and
// logical groups spanning multiple patterns).
type RightSource interface {
	SnapshotRight() []any
	SubscribeRight(j *Join)
}

// ActivationSink receives a terminal join's emitted/withdrawn tokens.
// engine.Environment implements this; beta never imports engine.
type ActivationSink interface {
	Emit(rule any, tok *Token)
	Withdraw(rule any, tok *Token)
}

// Join is one two-input node in a rule's beta chain.
type Join struct {
	id    JoinID
	kind  Kind
	depth int

	right RightSource

	// leftHash/rightHash compute the equi-join bucket key for a left
	// token / right candidate; nil means "single bucket" (no equi-join
	// factor — every candidate is residual-tested against every token).
	leftHash  func(tok *Token) string
	rightHash func(item any) string
	// test is the residual (non-equi) join condition.
	test func(tok *Token, item any) bool

	leftMemory map[string][]*Token

	output map[string][]*Token
	rows   map[*Token]bool

	blockers map[*Token]*sparse.IDSet // Negated/Exists: left token -> matching right-item id set

	next           *Join
	rightListeners []*Join // other joins reading THIS join's output as join-from-the-right

	sink    ActivationSink
	ruleRef any

	seqCounter *uint64
}

func newJoin(id JoinID, kind Kind, depth int, right RightSource, seqCounter *uint64) *Join {
	return &Join{
		id: id, kind: kind, depth: depth, right: right, seqCounter: seqCounter,
		leftMemory: make(map[string][]*Token),
		output:     make(map[string][]*Token),
		rows:       make(map[*Token]bool),
	}
}

// HashKey builds a stable string key from a tuple of interned values,
// for leftHash/rightHash closures to use: an *Atom contributes its
// pointer (stable once interned), and a *Multifield, which is not
// interned, contributes the pointers of its member atoms, so values that
// symbol.Equal reports equal get the same key.
func HashKey(vals ...symbol.Value) string {
	var b strings.Builder
	for _, v := range vals {
		if mf, ok := v.(*symbol.Multifield); ok {
			b.WriteByte('(')
			for _, a := range mf.Values() {
				fmt.Fprintf(&b, "%p,", a)
			}
			b.WriteString(")|")
			continue
		}
		fmt.Fprintf(&b, "%p|", v)
	}
	return b.String()
}

// OnAlphaAdd implements alpha.Listener when this join's right input is a
// plain alpha memory (AlphaSource).
func (j *Join) OnAlphaAdd(node alpha.NodeID, e wm.Entity) { j.rightAdd(e) }

// OnAlphaRemove implements alpha.Listener.
func (j *Join) OnAlphaRemove(node alpha.NodeID, e wm.Entity) { j.rightRemove(e) }

// SnapshotRight implements RightSource when another join reads this
// join's live output as its right input (join-from-the-right).
func (j *Join) SnapshotRight() []any {
	out := make([]any, 0, len(j.rows))
	for tok := range j.rows {
		out = append(out, tok)
	}
	return out
}

// SubscribeRight implements RightSource.
func (j *Join) SubscribeRight(dep *Join) {
	j.rightListeners = append(j.rightListeners, dep)
}

func (j *Join) rightKey(item any) string {
	if j.rightHash == nil {
		return ""
	}
	return j.rightHash(item)
}

func (j *Join) rightAdd(item any) {
	key := j.rightKey(item)
	for _, tok := range j.leftMemory[key] {
		j.tryPair(tok, item)
	}
}

func (j *Join) rightRemove(item any) {
	key := j.rightKey(item)
	for _, tok := range j.leftMemory[key] {
		j.unpair(tok, item)
	}
}

func (j *Join) tryPair(tok *Token, item any) {
	if j.test != nil && !j.test(tok, item) {
		return
	}
	switch j.kind {
	case Positive:
		e, ok := item.(wm.Entity)
		if !ok {
			return
		}
		j.addOutput(extend(tok, e, j.nextSeq()))
	case Negated, Exists:
		j.markBlocker(tok, item, true)
	}
}

func (j *Join) unpair(tok *Token, item any) {
	switch j.kind {
	case Positive:
		j.removeOutputFor(tok, item)
	case Negated, Exists:
		j.markBlocker(tok, item, false)
	}
}

func (j *Join) nextSeq() uint64 {
	*j.seqCounter++
	return *j.seqCounter
}

// addOutput links a newly produced token under its downstream hash key
// and propagates it onward.
func (j *Join) addOutput(out *Token) {
	key := ""
	if j.next != nil && j.next.leftHash != nil {
		key = j.next.leftHash(out)
	}
	j.output[key] = append(j.output[key], out)
	j.rows[out] = true
	j.propagateAdd(out)
}

func (j *Join) removeOutputFor(tok *Token, item any) {
	for key, list := range j.output {
		kept := list[:0]
		for _, out := range list {
			if sameParent(out, tok) && out.Match[len(out.Match)-1] == item {
				delete(j.rows, out)
				j.propagateRemove(out)
				continue
			}
			kept = append(kept, out)
		}
		j.output[key] = kept
	}
}

// markBlocker tracks, for a Negated/Exists join, which right-side
// matches currently block (Negated) or satisfy (Exists) tok. The dummy
// output row is (re)computed purely from the blocker-set size transition
// (0 -> >0, or >0 -> 0).
func (j *Join) markBlocker(tok *Token, item any, adding bool) {
	if j.blockers == nil {
		j.blockers = make(map[*Token]*sparse.IDSet)
	}
	set, ok := j.blockers[tok]
	if !ok {
		set = sparse.NewIDSet(64)
		j.blockers[tok] = set
	}
	id := conv.Uint64ToUint32(rightItemID(item))
	before := set.Len()
	if adding {
		set.Insert(id)
	} else {
		set.Remove(id)
	}
	after := set.Len()

	switch j.kind {
	case Negated:
		if before == 0 && after > 0 {
			j.withdrawDummy(tok)
		} else if before > 0 && after == 0 {
			j.emitDummy(tok)
		}
	case Exists:
		if before == 0 && after > 0 {
			j.emitDummy(tok)
		} else if before > 0 && after == 0 {
			j.withdrawDummy(tok)
		}
	}
}

func rightItemID(item any) uint64 {
	switch v := item.(type) {
	case wm.Entity:
		return v.ID()
	case *Token:
		return v.seq
	default:
		return 0
	}
}

func (j *Join) emitDummy(tok *Token) {
	out := extend(tok, nil, j.nextSeq())
	j.output[""] = append(j.output[""], out)
	j.rows[out] = true
	j.propagateAdd(out)
}

func (j *Join) withdrawDummy(tok *Token) {
	for key, list := range j.output {
		kept := list[:0]
		for _, out := range list {
			if sameParent(out, tok) {
				delete(j.rows, out)
				j.propagateRemove(out)
				continue
			}
			kept = append(kept, out)
		}
		j.output[key] = kept
	}
}

func sameParent(out, tok *Token) bool {
	if len(out.Match) != len(tok.Match)+1 {
		return false
	}
	for i := range tok.Match {
		if out.Match[i] != tok.Match[i] {
			return false
		}
	}
	return true
}

// propagateAdd hands a newly produced token to the next join in this
// rule's chain, to any join reading this one's output as a right input
// (join-from-the-right), and — for a terminal join — to the activation
// sink.
func (j *Join) propagateAdd(tok *Token) {
	if j.next != nil {
		j.next.leftAdd(tok)
	}
	for _, rl := range j.rightListeners {
		rl.rightAdd(tok)
	}
	if j.next == nil && j.sink != nil {
		j.sink.Emit(j.ruleRef, tok)
	}
}

func (j *Join) propagateRemove(tok *Token) {
	if j.next != nil {
		j.next.leftRemove(tok)
	}
	for _, rl := range j.rightListeners {
		rl.rightRemove(tok)
	}
	if j.next == nil && j.sink != nil {
		j.sink.Withdraw(j.ruleRef, tok)
	}
}

// leftAdd is called when a left token arrives: from the previous join's
// output, from another join's output (join-from-the-right), or
// synthetically once for the first join in a chain (the empty root
// token).
func (j *Join) leftAdd(tok *Token) {
	key := ""
	if j.leftHash != nil {
		key = j.leftHash(tok)
	}
	j.leftMemory[key] = append(j.leftMemory[key], tok)

	matched := 0
	for _, item := range j.right.SnapshotRight() {
		if j.rightHash != nil && j.rightKey(item) != key {
			continue
		}
		if j.test != nil && !j.test(tok, item) {
			continue
		}
		matched++
		j.tryPair(tok, item)
	}
	if j.kind == Negated && matched == 0 {
		j.emitDummy(tok)
	}
}

func (j *Join) leftRemove(tok *Token) {
	key := ""
	if j.leftHash != nil {
		key = j.leftHash(tok)
	}
	list := j.leftMemory[key]
	for i, t := range list {
		if t == tok {
			j.leftMemory[key] = append(list[:i], list[i+1:]...)
			break
		}
	}
	for outKey, list := range j.output {
		kept := list[:0]
		for _, out := range list {
			if sameParent(out, tok) {
				delete(j.rows, out)
				j.propagateRemove(out)
				continue
			}
			kept = append(kept, out)
		}
		j.output[outKey] = kept
	}
	delete(j.blockers, tok)
}

// Rows returns the join's currently live output tokens (tests/introspection).
func (j *Join) Rows() []*Token {
	out := make([]*Token, 0, len(j.rows))
	for tok := range j.rows {
		out = append(out, tok)
	}
	return out
}
