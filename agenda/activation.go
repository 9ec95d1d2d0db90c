// Package agenda is the ordered queue of rule activations: one agenda
// per module, grouped by salience, ordered within a salience group by a
// configurable strategy, with insertion-order used as the final,
// deterministic tie-break.
package agenda

import "github.com/prodrules/prodrules/beta"

// Strategy selects how activations within one salience group are
// ordered.
type Strategy uint8

const (
	// Depth orders newer timestamps first (most recent asserting facts win).
	Depth Strategy = iota
	// Breadth orders older timestamps first.
	Breadth
	// Lex orders lexicographically over the partial-match timestamp
	// vector, newer-dominant.
	Lex
	// MEA is like Lex but the first pattern's timestamp dominates.
	MEA
	// Simplicity orders by ascending rule complexity score.
	Simplicity
	// Complexity orders by descending rule complexity score.
	Complexity
	// Random orders by a tag drawn at activation time.
	Random
)

// String names the strategy.
func (s Strategy) String() string {
	switch s {
	case Depth:
		return "depth"
	case Breadth:
		return "breadth"
	case Lex:
		return "lex"
	case MEA:
		return "mea"
	case Simplicity:
		return "simplicity"
	case Complexity:
		return "complexity"
	case Random:
		return "random"
	default:
		return "unknown"
	}
}

// RuleInfo is the subset of an engine.Rule an activation needs to sort
// and fire, supplied by the engine so agenda never imports it.
type RuleInfo struct {
	Name       string
	Complexity int
	Salience   int

	// Extra is an opaque engine-supplied value round-tripped on the
	// Activation (e.g. which disjunct of a multi-disjunct rule fired);
	// agenda never interprets it.
	Extra any
}

// Activation is one {rule, partial match} pair ready to fire.
type Activation struct {
	Rule     RuleInfo
	Token    *beta.Token
	Salience int
	Seq      uint64  // insertion-order tie-break
	RandTag  uint64  // drawn once at activation time, for the random strategy
	refractionKey string
}

func timestamps(tok *beta.Token) []uint64 {
	out := make([]uint64, tok.Depth())
	for i := 0; i < tok.Depth(); i++ {
		e := tok.At(i)
		if e == nil {
			continue
		}
		out[i] = e.Timestamp()
	}
	return out
}

func refractionKey(rule string, tok *beta.Token) string {
	key := rule
	for i := 0; i < tok.Depth(); i++ {
		e := tok.At(i)
		if e == nil {
			key += "|nil"
			continue
		}
		key += "|"
		key += uintToString(e.ID())
	}
	return key
}

func uintToString(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}
