// Package beta is the join (beta) network: the chain of two-input join
// nodes that compose alpha matches into partial matches and, at a rule's
// terminal join, activations.
//
// Join composes its two inputs on demand; the left memory and the output
// are hash tables keyed by a compiled equi-join hash, and right-hand
// candidates are read from the right source and filtered by that hash.
package beta

import "github.com/prodrules/prodrules/wm"

// Token is a partial match: one entity per pattern position joined so
// far. A nil entry at position i marks a Negated join's "no match found"
// placeholder row.
type Token struct {
	Match []wm.Entity
	seq   uint64
}

// Depth is the number of pattern positions this token fills.
func (t *Token) Depth() int { return len(t.Match) }

// At returns the entity bound at pattern position i, or nil for an
// unmatched Negated-join position.
func (t *Token) At(i int) wm.Entity { return t.Match[i] }

func extend(left *Token, right wm.Entity, seq uint64) *Token {
	match := make([]wm.Entity, len(left.Match)+1)
	copy(match, left.Match)
	match[len(left.Match)] = right
	return &Token{Match: match, seq: seq}
}

var rootToken = &Token{Match: nil}
