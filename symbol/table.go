package symbol

import "sync"

// Table is the process-wide (per-Environment) intern table: one hash
// table per tag family, plus the monotonic sequence counter used for
// stable ordering. Construction installs the two boolean symbols so
// SymTrue/SymFalse are always live.
type Table struct {
	mu sync.Mutex

	symbols       map[string]*Atom
	strings       map[string]*Atom
	instanceNames map[string]*Atom
	integers      map[int64]*Atom
	floats        map[float64]*Atom

	nextSeq uint64

	// SymTrue and SymFalse are the two distinguished boolean symbols.
	SymTrue  *Atom
	SymFalse *Atom
}

// NewTable creates an empty intern table with the boolean symbols
// already installed.
func NewTable() *Table {
	t := &Table{
		symbols:       make(map[string]*Atom),
		strings:       make(map[string]*Atom),
		instanceNames: make(map[string]*Atom),
		integers:      make(map[int64]*Atom),
		floats:        make(map[float64]*Atom),
	}
	t.SymTrue = t.Install(t.internSymbolLocked("TRUE"))
	t.SymFalse = t.Install(t.internSymbolLocked("FALSE"))
	return t
}

func (t *Table) internSymbolLocked(s string) *Atom {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.internLocked(t.symbols, s, Symbol)
}

func (t *Table) internLocked(table map[string]*Atom, s string, tag Tag) *Atom {
	if a, ok := table[s]; ok {
		return a
	}
	a := &Atom{tag: tag, sym: s, seq: t.nextSeq}
	t.nextSeq++
	table[s] = a
	return a
}

// Symbol interns a bareword symbol atom.
func (t *Table) Symbol(name string) *Atom {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.internLocked(t.symbols, name, Symbol)
}

// String interns a string atom.
func (t *Table) String(s string) *Atom {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.internLocked(t.strings, s, String)
}

// InstanceName interns an instance-name atom.
func (t *Table) InstanceName(name string) *Atom {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.internLocked(t.instanceNames, name, InstanceName)
}

// Integer interns an integer atom.
func (t *Table) Integer(v int64) *Atom {
	t.mu.Lock()
	defer t.mu.Unlock()
	if a, ok := t.integers[v]; ok {
		return a
	}
	a := &Atom{tag: Integer, i: v, seq: t.nextSeq}
	t.nextSeq++
	t.integers[v] = a
	return a
}

// Float interns a float atom.
func (t *Table) Float(v float64) *Atom {
	t.mu.Lock()
	defer t.mu.Unlock()
	if a, ok := t.floats[v]; ok {
		return a
	}
	a := &Atom{tag: Float, f: v, seq: t.nextSeq}
	t.nextSeq++
	t.floats[v] = a
	return a
}

// ExternalHandle wraps an opaque host value as a freshly minted atom.
// External handles are never interned by content (the host's equality
// notion for them is unknown), only by identity of the returned *Atom.
func (t *Table) ExternalHandle(v any) *Atom {
	t.mu.Lock()
	defer t.mu.Unlock()
	a := &Atom{tag: ExternalHandle, ext: v, seq: t.nextSeq}
	t.nextSeq++
	return a
}

// Bool returns SymTrue or SymFalse.
func (t *Table) Bool(v bool) *Atom {
	if v {
		return t.SymTrue
	}
	return t.SymFalse
}

// Install increments a's reference count and returns it, so call sites can
// write `slot = table.Install(candidate)`. Atoms stored into any fact,
// instance slot, or partial match must be installed exactly once per
// storage site.
func (t *Table) Install(a *Atom) *Atom {
	t.mu.Lock()
	a.count++
	t.mu.Unlock()
	return a
}

// Deinstall decrements a's reference count. When it reaches zero, a is
// removed from its intern table so an equal future value re-interns a
// fresh atom rather than reviving storage that logically already expired.
func (t *Table) Deinstall(a *Atom) {
	t.mu.Lock()
	defer t.mu.Unlock()
	a.count--
	if a.count > 0 {
		return
	}
	switch a.tag {
	case Symbol:
		if t.symbols[a.sym] == a {
			delete(t.symbols, a.sym)
		}
	case String:
		if t.strings[a.sym] == a {
			delete(t.strings, a.sym)
		}
	case InstanceName:
		if t.instanceNames[a.sym] == a {
			delete(t.instanceNames, a.sym)
		}
	case Integer:
		if t.integers[a.i] == a {
			delete(t.integers, a.i)
		}
	case Float:
		if t.floats[a.f] == a {
			delete(t.floats, a.f)
		}
	case ExternalHandle:
		// never interned by content; nothing to remove
	}
}

// InstallValue installs every atom reachable from v: the atom itself, or
// every element of a multifield.
func (t *Table) InstallValue(v Value) {
	switch x := v.(type) {
	case *Atom:
		t.Install(x)
	case *Multifield:
		for _, a := range x.Values() {
			t.Install(a)
		}
	}
}

// DeinstallValue is the inverse of InstallValue.
func (t *Table) DeinstallValue(v Value) {
	switch x := v.(type) {
	case *Atom:
		t.Deinstall(x)
	case *Multifield:
		for _, a := range x.Values() {
			t.Deinstall(a)
		}
	}
}

// Len reports how many distinct atoms are currently interned, across all
// tag families. Used by round-trip tests to assert symbol-count
// restoration.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.symbols) + len(t.strings) + len(t.instanceNames) + len(t.integers) + len(t.floats)
}
