package symbol

// Compare orders two values for use as hashed-memory bucket keys and for
// the few places the network needs a total order rather than just
// equality (e.g. deterministic activation tie-breaking over bound
// values). Integers and floats compare numerically across tags so 3 and
// 3.0 order together; symbols/strings/instance-names compare by their
// intern sequence number, which is stable for the lifetime of the
// process because interning never reassigns a pointer's identity;
// multifields compare element-wise, shorter-is-less on a common prefix.
func Compare(a, b Value) int {
	switch av := a.(type) {
	case *Atom:
		bv, ok := b.(*Atom)
		if !ok {
			return -1 // atoms sort before multifields, arbitrarily but deterministically
		}
		return compareAtoms(av, bv)
	case *Multifield:
		bv, ok := b.(*Multifield)
		if !ok {
			return 1
		}
		return compareMultifields(av, bv)
	default:
		return 0
	}
}

func compareAtoms(a, b *Atom) int {
	if a == b {
		return 0
	}
	an, aIsNum := numericValue(a)
	bn, bIsNum := numericValue(b)
	if aIsNum && bIsNum {
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		default:
			return 0
		}
	}
	if a.tag != b.tag {
		if a.tag < b.tag {
			return -1
		}
		return 1
	}
	switch {
	case a.seq < b.seq:
		return -1
	case a.seq > b.seq:
		return 1
	default:
		return 0
	}
}

func numericValue(a *Atom) (float64, bool) {
	switch a.tag {
	case Integer:
		return float64(a.i), true
	case Float:
		return a.f, true
	default:
		return 0, false
	}
}

func compareMultifields(a, b *Multifield) int {
	n := a.Len()
	if b.Len() < n {
		n = b.Len()
	}
	for i := 0; i < n; i++ {
		if c := compareAtoms(a.At(i), b.At(i)); c != 0 {
			return c
		}
	}
	switch {
	case a.Len() < b.Len():
		return -1
	case a.Len() > b.Len():
		return 1
	default:
		return 0
	}
}

// Equal reports whether a and b are the same value. For atoms this is
// pointer equality (post-interning); for multifields it is element-wise
// atom pointer equality.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case *Atom:
		bv, ok := b.(*Atom)
		return ok && av == bv
	case *Multifield:
		bv, ok := b.(*Multifield)
		if !ok || av.Len() != bv.Len() {
			return false
		}
		for i := 0; i < av.Len(); i++ {
			if av.At(i) != bv.At(i) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
