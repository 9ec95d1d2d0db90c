package support

import (
	"testing"

	"github.com/prodrules/prodrules/constraint"
	"github.com/prodrules/prodrules/symbol"
	"github.com/prodrules/prodrules/wm"
)

func newFact(t *testing.T, wmem *wm.WorkingMemory, tmpl *wm.Template, table *symbol.Table, v int64) *wm.Fact {
	t.Helper()
	f, err := wmem.AssertFact(tmpl, []symbol.Value{table.Integer(v)})
	if err != nil {
		t.Fatalf("AssertFact: %v", err)
	}
	return f
}

// TestLogicalRetractionCascade exercises logical support: a
// derived fact must be retracted the moment its last supporter vanishes.
func TestLogicalRetractionCascade(t *testing.T) {
	table := symbol.NewTable()
	wmem := wm.New(table, true)
	baseT := wm.NewTemplate("base", []wm.Slot{{Name: "v", Constraint: constraint.Unconstrained()}})
	derivedT := wm.NewTemplate("derived", []wm.Slot{{Name: "v", Constraint: constraint.Unconstrained()}})

	var retracted []wm.Entity
	mgr := NewManager(func(e wm.Entity) error {
		retracted = append(retracted, e)
		switch v := e.(type) {
		case *wm.Fact:
			return wmem.RetractFact(v)
		}
		return nil
	})

	base := newFact(t, wmem, baseT, table, 1)
	derived := newFact(t, wmem, derivedT, table, 1)
	mgr.Register(derived, []wm.Entity{base})

	if !mgr.IsSupported(derived) {
		t.Fatalf("expected derived to be supported")
	}

	if err := wmem.RetractFact(base); err != nil {
		t.Fatalf("RetractFact(base): %v", err)
	}
	mgr.NotifyRetract(base)

	if len(retracted) != 1 || retracted[0] != derived {
		t.Fatalf("expected derived to be cascaded-retracted, got %+v", retracted)
	}
	if !derived.IsGarbage() {
		t.Fatalf("expected derived to be marked garbage")
	}
}

// TestMultipleSupportersAllMustVanish verifies a fact supported
// twice (two independent justifications) survives until both are gone.
func TestMultipleSupportersAllMustVanish(t *testing.T) {
	table := symbol.NewTable()
	wmem := wm.New(table, true)
	baseT := wm.NewTemplate("base", []wm.Slot{{Name: "v", Constraint: constraint.Unconstrained()}})
	derivedT := wm.NewTemplate("derived", []wm.Slot{{Name: "v", Constraint: constraint.Unconstrained()}})

	retractCount := 0
	mgr := NewManager(func(e wm.Entity) error {
		retractCount++
		if f, ok := e.(*wm.Fact); ok {
			return wmem.RetractFact(f)
		}
		return nil
	})

	b1 := newFact(t, wmem, baseT, table, 1)
	b2 := newFact(t, wmem, baseT, table, 2)
	derived := newFact(t, wmem, derivedT, table, 99)

	mgr.Register(derived, []wm.Entity{b1})
	mgr.Register(derived, []wm.Entity{b2})

	wmem.RetractFact(b1)
	mgr.NotifyRetract(b1)
	if retractCount != 0 {
		t.Fatalf("derived should survive while one supporter remains")
	}
	if derived.IsGarbage() {
		t.Fatalf("derived must not be garbage yet")
	}

	wmem.RetractFact(b2)
	mgr.NotifyRetract(b2)
	if retractCount != 1 {
		t.Fatalf("expected exactly one cascading retract once both supporters are gone, got %d", retractCount)
	}
	if !derived.IsGarbage() {
		t.Fatalf("expected derived garbage after last supporter retracted")
	}
}
