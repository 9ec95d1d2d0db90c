package sparse

import "testing"

func TestIDSetBasic(t *testing.T) {
	s := NewIDSet(100)

	if !s.IsEmpty() {
		t.Error("new set should be empty")
	}
	if s.Contains(0) {
		t.Error("empty set should not contain 0")
	}

	if !s.Insert(5) {
		t.Error("first insert should return true")
	}
	if !s.Contains(5) {
		t.Error("set should contain 5 after insert")
	}
	if s.Insert(5) {
		t.Error("duplicate insert should return false")
	}
	if s.Len() != 1 {
		t.Errorf("len should be 1, got %d", s.Len())
	}

	s.Insert(10)
	s.Insert(3)
	s.Insert(7)
	if s.Len() != 4 {
		t.Errorf("len should be 4, got %d", s.Len())
	}

	s.Clear()
	if !s.IsEmpty() {
		t.Error("set should be empty after clear")
	}
	if s.Contains(5) {
		t.Error("cleared set should not contain 5")
	}
}

func TestIDSetRemove(t *testing.T) {
	s := NewIDSet(100)
	s.Insert(1)
	s.Insert(2)
	s.Insert(3)

	s.Remove(2)
	if s.Contains(2) {
		t.Error("2 should have been removed")
	}
	if !s.Contains(1) || !s.Contains(3) {
		t.Error("removing 2 should not disturb 1 or 3")
	}
	if s.Len() != 2 {
		t.Errorf("len should be 2, got %d", s.Len())
	}

	// Removing an absent value is a no-op.
	s.Remove(99)
	if s.Len() != 2 {
		t.Errorf("removing absent value should not change len, got %d", s.Len())
	}
}

func TestIDSetOutOfRange(t *testing.T) {
	s := NewIDSet(8)
	if s.Contains(1000) {
		t.Error("out-of-range value should never be contained")
	}
}

func TestIDSetValuesAndIter(t *testing.T) {
	s := NewIDSet(16)
	want := map[uint32]bool{2: true, 4: true, 6: true}
	for v := range want {
		s.Insert(v)
	}

	got := map[uint32]bool{}
	for _, v := range s.Values() {
		got[v] = true
	}
	if len(got) != len(want) {
		t.Fatalf("Values() returned %d elements, want %d", len(got), len(want))
	}

	iterGot := map[uint32]bool{}
	s.Iter(func(v uint32) { iterGot[v] = true })
	for v := range want {
		if !iterGot[v] {
			t.Errorf("Iter missed value %d", v)
		}
	}
}
