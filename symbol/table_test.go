package symbol

import "testing"

func TestInterningIdentity(t *testing.T) {
	tbl := NewTable()

	a := tbl.Symbol("red")
	b := tbl.Symbol("red")
	if a != b {
		t.Fatal("interning the same symbol text twice should return the same atom")
	}

	c := tbl.Symbol("blue")
	if a == c {
		t.Fatal("distinct symbol text must intern to distinct atoms")
	}

	i1 := tbl.Integer(42)
	i2 := tbl.Integer(42)
	if i1 != i2 {
		t.Fatal("interning the same integer twice should return the same atom")
	}
}

func TestInstallDeinstallLifecycle(t *testing.T) {
	tbl := NewTable()

	a := tbl.Symbol("transient")
	tbl.Install(a)
	if a.RefCount() != 1 {
		t.Fatalf("refcount after one install = %d, want 1", a.RefCount())
	}
	tbl.Install(a)
	if a.RefCount() != 2 {
		t.Fatalf("refcount after two installs = %d, want 2", a.RefCount())
	}

	tbl.Deinstall(a)
	if a.RefCount() != 1 {
		t.Fatalf("refcount after one deinstall = %d, want 1", a.RefCount())
	}

	before := tbl.Len()
	tbl.Deinstall(a)
	if a.RefCount() != 0 {
		t.Fatalf("refcount after final deinstall = %d, want 0", a.RefCount())
	}
	if tbl.Len() != before-1 {
		t.Fatalf("deinstalling to zero should remove the atom from the table: before=%d after=%d", before, tbl.Len())
	}

	// Re-interning after full deinstall mints a fresh atom (old one is gone).
	again := tbl.Symbol("transient")
	if again == a {
		t.Fatal("re-interning after deinstall-to-zero should not resurrect the old atom's identity guarantee, but a fresh lookup must still work")
	}
}

func TestBooleans(t *testing.T) {
	tbl := NewTable()
	if tbl.Bool(true) != tbl.SymTrue {
		t.Error("Bool(true) must be SymTrue")
	}
	if tbl.Bool(false) != tbl.SymFalse {
		t.Error("Bool(false) must be SymFalse")
	}
	if tbl.SymTrue == tbl.SymFalse {
		t.Error("SymTrue and SymFalse must be distinct symbols")
	}
}

func TestCompareNumericCrossTag(t *testing.T) {
	tbl := NewTable()
	i := tbl.Integer(3)
	f := tbl.Float(3.0)
	if Compare(i, f) != 0 {
		t.Error("integer 3 and float 3.0 must compare equal numerically")
	}

	f2 := tbl.Float(2.5)
	if Compare(f2, i) >= 0 {
		t.Error("2.5 should compare less than 3")
	}
}

func TestCompareMultifields(t *testing.T) {
	tbl := NewTable()
	short := NewMultifield([]*Atom{tbl.Integer(1), tbl.Integer(2)})
	long := NewMultifield([]*Atom{tbl.Integer(1), tbl.Integer(2), tbl.Integer(3)})
	if Compare(short, long) >= 0 {
		t.Error("shorter multifield sharing a prefix should compare less than the longer one")
	}
}

func TestMultifieldView(t *testing.T) {
	tbl := NewTable()
	mf := NewMultifield([]*Atom{tbl.Integer(1), tbl.Integer(2), tbl.Integer(3), tbl.Integer(4)})
	v := mf.View(1, 2)
	if v.Len() != 2 || v.At(0).Int() != 2 || v.At(1).Int() != 3 {
		t.Fatalf("View(1,2) = %v, want [2 3]", v)
	}
}

func TestEqual(t *testing.T) {
	tbl := NewTable()
	a := tbl.Symbol("x")
	b := tbl.Symbol("x")
	if !Equal(a, b) {
		t.Error("same interned symbol should be Equal")
	}
	mf1 := NewMultifield([]*Atom{tbl.Integer(1), tbl.Integer(2)})
	mf2 := NewMultifield([]*Atom{tbl.Integer(1), tbl.Integer(2)})
	if !Equal(mf1, mf2) {
		t.Error("multifields with equal interned elements should be Equal")
	}
}
