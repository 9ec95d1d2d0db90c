package agenda

import (
	"sort"

	"github.com/prodrules/prodrules/beta"
)

// SalienceEvaluationMode selects whether a dynamic-salience expression
// that changes over the agenda's lifetime should force a re-sort.
type SalienceEvaluationMode uint8

const (
	// WhenDefined evaluates dynamic salience only once, at activation
	// time, and never re-sorts for it afterward. This is the default.
	WhenDefined SalienceEvaluationMode = iota
	// EveryCycle re-evaluates every activation's dynamic salience before
	// each firing and re-sorts if any value changed.
	EveryCycle
)

// Agenda is one module's ordered activation queue.
type Agenda struct {
	strategy Strategy
	mode     SalienceEvaluationMode

	activations []*Activation
	live        map[string]*Activation // refractionKey -> activation, for refraction checks
	nextSeq     uint64
	nextRand    uint64
}

// New creates an empty agenda using the given strategy.
func New(strategy Strategy) *Agenda {
	return &Agenda{strategy: strategy, live: make(map[string]*Activation)}
}

// SetStrategy changes the ordering strategy; takes effect on the next
// insertion/sort (existing order is not retroactively reshuffled).
func (a *Agenda) SetStrategy(s Strategy) { a.strategy = s }

// SetSalienceEvaluationMode sets the dynamic-salience re-sort policy.
func (a *Agenda) SetSalienceEvaluationMode(m SalienceEvaluationMode) { a.mode = m }

// Mode reports the current salience evaluation mode.
func (a *Agenda) Mode() SalienceEvaluationMode { return a.mode }

// Resort re-runs the ordering comparator, for a caller that has just
// mutated one or more Activation.Salience fields in place (the
// EveryCycle SalienceEvaluationMode's re-evaluation point).
func (a *Agenda) Resort() { a.sort() }

// Insert adds an activation for (rule, tok) with the given salience,
// unless refraction already holds one for the identical (rule, fact-set)
// pair . Returns the activation, or nil if
// refracted.
func (a *Agenda) Insert(rule RuleInfo, tok *beta.Token, salience int) *Activation {
	key := refractionKey(rule.Name, tok)
	if _, exists := a.live[key]; exists {
		return nil
	}
	a.nextSeq++
	a.nextRand++
	act := &Activation{
		Rule: rule, Token: tok, Salience: salience,
		Seq: a.nextSeq, RandTag: a.nextRand, refractionKey: key,
	}
	a.live[key] = act
	a.activations = append(a.activations, act)
	a.sort()
	return act
}

// Remove withdraws the activation matching (rule, tok), if any — e.g.
// because a supporting fact was retracted before the rule fired.
func (a *Agenda) Remove(rule RuleInfo, tok *beta.Token) {
	key := refractionKey(rule.Name, tok)
	act, ok := a.live[key]
	if !ok {
		return
	}
	delete(a.live, key)
	for i, existing := range a.activations {
		if existing == act {
			a.activations = append(a.activations[:i], a.activations[i+1:]...)
			break
		}
	}
}

// PopHighest removes and returns the highest-ordered activation, or nil
// if the agenda is empty.
func (a *Agenda) PopHighest() *Activation {
	if len(a.activations) == 0 {
		return nil
	}
	if a.mode == EveryCycle {
		a.sort()
	}
	top := a.activations[0]
	a.activations = a.activations[1:]
	delete(a.live, top.refractionKey)
	return top
}

// Len reports how many activations are currently queued.
func (a *Agenda) Len() int { return len(a.activations) }

// Activations returns a snapshot of the queue in firing order, for
// introspection.
func (a *Agenda) Activations() []*Activation {
	out := make([]*Activation, len(a.activations))
	copy(out, a.activations)
	return out
}

func (a *Agenda) sort() {
	sort.SliceStable(a.activations, func(i, j int) bool {
		x, y := a.activations[i], a.activations[j]
		if x.Salience != y.Salience {
			return x.Salience > y.Salience
		}
		if less, ok := a.strategyLess(x, y); ok {
			return less
		}
		return x.Seq < y.Seq
	})
}

// strategyLess returns (less, decisive): decisive is false when the
// strategy's key is equal for both, so the caller falls through to the
// insertion-order tie-break.
func (a *Agenda) strategyLess(x, y *Activation) (bool, bool) {
	switch a.strategy {
	case Depth:
		tx, ty := newestTimestamp(x.Token), newestTimestamp(y.Token)
		if tx != ty {
			return tx > ty, true
		}
	case Breadth:
		tx, ty := oldestTimestamp(x.Token), oldestTimestamp(y.Token)
		if tx != ty {
			return tx < ty, true
		}
	case Lex:
		if less, ok := lexLess(timestamps(x.Token), timestamps(y.Token)); ok {
			return less, true
		}
	case MEA:
		tsx, tsy := timestamps(x.Token), timestamps(y.Token)
		if len(tsx) > 0 && len(tsy) > 0 && tsx[0] != tsy[0] {
			return tsx[0] > tsy[0], true
		}
		if less, ok := lexLess(tsx, tsy); ok {
			return less, true
		}
	case Simplicity:
		if x.Rule.Complexity != y.Rule.Complexity {
			return x.Rule.Complexity < y.Rule.Complexity, true
		}
	case Complexity:
		if x.Rule.Complexity != y.Rule.Complexity {
			return x.Rule.Complexity > y.Rule.Complexity, true
		}
	case Random:
		if x.RandTag != y.RandTag {
			return x.RandTag < y.RandTag, true
		}
	}
	return false, false
}

func newestTimestamp(tok *beta.Token) uint64 {
	var max uint64
	for _, t := range timestamps(tok) {
		if t > max {
			max = t
		}
	}
	return max
}

func oldestTimestamp(tok *beta.Token) uint64 {
	var min uint64
	first := true
	for _, t := range timestamps(tok) {
		if first || t < min {
			min = t
			first = false
		}
	}
	return min
}

// lexLess compares two timestamp vectors newest-dominant: the single
// largest value anywhere in the vector decides, matching "lexicographic
// ... newer-dominant".
func lexLess(a, b []uint64) (bool, bool) {
	sa := append([]uint64(nil), a...)
	sb := append([]uint64(nil), b...)
	sort.Sort(sort.Reverse(uint64Slice(sa)))
	sort.Sort(sort.Reverse(uint64Slice(sb)))
	for i := 0; i < len(sa) && i < len(sb); i++ {
		if sa[i] != sb[i] {
			return sa[i] > sb[i], true
		}
	}
	return false, false
}

type uint64Slice []uint64

func (s uint64Slice) Len() int           { return len(s) }
func (s uint64Slice) Less(i, j int) bool { return s[i] < s[j] }
func (s uint64Slice) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }
