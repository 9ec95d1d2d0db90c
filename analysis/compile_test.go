package analysis

import (
	"errors"
	"testing"

	"github.com/prodrules/prodrules/constraint"
	"github.com/prodrules/prodrules/symbol"
	"github.com/prodrules/prodrules/wm"
)

func templateResolver(slots map[string][]wm.Slot) SlotResolver {
	return func(typeName string, isClass bool) ([]wm.Slot, bool) {
		s, ok := slots[typeName]
		return s, ok
	}
}

func pattern(typeName string, slots ...SlotSpec) []*Element {
	return []*Element{{PatternCE: &PatternCE{TypeName: typeName, Slots: slots}}}
}

func TestCompileDetectsMixedCardinalityVariable(t *testing.T) {
	resolve := templateResolver(map[string][]wm.Slot{
		"order": {
			{Name: "id", Constraint: constraint.Unconstrained()},
		},
		"batch": {
			{Name: "ids", Multi: true, Constraint: constraint.Unconstrained()},
		},
	})

	elements := append(
		pattern("order", SlotSpec{SlotIndex: 0, Variable: "x", Constraint: constraint.Unconstrained()}),
		pattern("batch", SlotSpec{SlotIndex: 0, Variable: "x", Constraint: constraint.Unconstrained()})...,
	)

	_, _, err := Compile(elements, resolve)
	if err == nil {
		t.Fatalf("expected MixedCardinalityVariable error")
	}
	var aerr *Error
	if !errors.As(err, &aerr) || aerr.Kind != MixedCardinalityVariable {
		t.Fatalf("expected MixedCardinalityVariable, got %v", err)
	}
}

func TestCompileAllowsMatchingCardinality(t *testing.T) {
	resolve := templateResolver(map[string][]wm.Slot{
		"order": {
			{Name: "id", Constraint: constraint.Unconstrained()},
		},
		"shipment": {
			{Name: "orderID", Constraint: constraint.Unconstrained()},
		},
	})

	elements := append(
		pattern("order", SlotSpec{SlotIndex: 0, Variable: "x", Constraint: constraint.Unconstrained()}),
		pattern("shipment", SlotSpec{SlotIndex: 0, Variable: "x", Constraint: constraint.Unconstrained()})...,
	)

	plan, patterns, err := Compile(elements, resolve)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(patterns) != 2 {
		t.Fatalf("expected 2 compiled patterns, got %d", len(patterns))
	}
	if plan.JoinTest[1] == nil {
		t.Fatalf("expected a join test wiring the shared variable")
	}
}

func TestCompileDetectsRedundantTypeRestriction(t *testing.T) {
	declared := constraint.Record{Tags: constraint.TagBit(symbol.Integer), AnyAllowed: true}
	resolve := templateResolver(map[string][]wm.Slot{
		"point": {
			{Name: "x", Constraint: declared},
		},
	})

	elements := pattern("point", SlotSpec{SlotIndex: 0, Variable: "x", Constraint: declared})

	_, _, err := Compile(elements, resolve)
	if err == nil {
		t.Fatalf("expected RedundantTypeRestriction error")
	}
	var aerr *Error
	if !errors.As(err, &aerr) || aerr.Kind != RedundantTypeRestriction {
		t.Fatalf("expected RedundantTypeRestriction, got %v", err)
	}
}

func TestCompileAllowsNarrowerConstraintThanDeclared(t *testing.T) {
	declared := constraint.Unconstrained()
	narrow := constraint.Record{
		Tags:    constraint.TagBit(symbol.Integer),
		Numeric: constraint.NumericRange{HasMin: true, Min: 0, HasMax: true, Max: 10},
	}
	resolve := templateResolver(map[string][]wm.Slot{
		"point": {
			{Name: "x", Constraint: declared},
		},
	})

	elements := pattern("point", SlotSpec{SlotIndex: 0, Variable: "x", Constraint: narrow})

	_, patterns, err := Compile(elements, resolve)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(patterns[0].Tests) != 1 {
		t.Fatalf("expected the narrowing constraint to still produce an alpha test, got %d", len(patterns[0].Tests))
	}
}

func TestCompileSkipsCardinalityAndRedundancyChecksWithoutResolver(t *testing.T) {
	elements := append(
		pattern("order", SlotSpec{SlotIndex: 0, Variable: "x", Constraint: constraint.Unconstrained()}),
		pattern("batch", SlotSpec{SlotIndex: 0, Variable: "x", Constraint: constraint.Unconstrained()})...,
	)
	if _, _, err := Compile(elements, nil); err != nil {
		t.Fatalf("Compile with nil resolver: %v", err)
	}
}
