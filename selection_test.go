package textart

import "testing"

func TestSelectionNormalization(t *testing.T) {
	s := Selection{Anchor: Pos(10, 8), Lead: Pos(2, 3)}
	r := s.Rectangle()
	if r.Start != Pos(2, 3) {
		t.Errorf("expected start (2,3), got %v", r.Start)
	}
	if r.Size != (Size{Width: 8, Height: 5}) {
		t.Errorf("expected 8x5, got %v", r.Size)
	}
}

func TestSelectionIsEmpty(t *testing.T) {
	if !(Selection{Anchor: Pos(4, 4), Lead: Pos(4, 9)}).IsEmpty() {
		t.Error("expected zero-width drag to be empty")
	}
	if (Selection{Anchor: Pos(0, 0), Lead: Pos(1, 1)}).IsEmpty() {
		t.Error("expected 1x1 drag to be non-empty")
	}
}

func TestSelectionMaskAddRemove(t *testing.T) {
	var m SelectionMask
	m.AddRectangle(Rect(2, 2, 4, 4))
	if !m.GetIsSelected(Pos(2, 2)) || !m.GetIsSelected(Pos(5, 5)) {
		t.Error("expected rect corners selected")
	}
	if m.GetIsSelected(Pos(6, 6)) {
		t.Error("expected cell past the rect unselected")
	}

	m.RemoveRectangle(Rect(3, 3, 2, 2))
	if m.GetIsSelected(Pos(3, 3)) || m.GetIsSelected(Pos(4, 4)) {
		t.Error("expected hole carved out")
	}
	if !m.GetIsSelected(Pos(2, 2)) {
		t.Error("expected outer ring still selected")
	}
}

func TestSelectionMaskGrows(t *testing.T) {
	var m SelectionMask
	m.AddRectangle(Rect(0, 0, 2, 2))
	m.AddRectangle(Rect(8, 8, 2, 2))
	if !m.GetIsSelected(Pos(1, 1)) || !m.GetIsSelected(Pos(9, 9)) {
		t.Error("expected both rects selected after growth")
	}
	if m.GetIsSelected(Pos(5, 5)) {
		t.Error("expected the gap unselected")
	}
}

func TestSelectionMaskNegativeCoordinates(t *testing.T) {
	var m SelectionMask
	m.AddRectangle(Rect(-3, -2, 2, 2))
	if !m.GetIsSelected(Pos(-3, -2)) {
		t.Error("expected negative cell selected")
	}
	if m.GetIsSelected(Pos(0, 0)) {
		t.Error("expected origin unselected")
	}
}

func TestSelectionMaskClear(t *testing.T) {
	var m SelectionMask
	m.AddRectangle(Rect(0, 0, 2, 2))
	m.Clear()
	if !m.IsEmpty() {
		t.Error("expected cleared mask to be empty")
	}
	if m.GetIsSelected(Pos(0, 0)) {
		t.Error("expected no cell selected after clear")
	}
}
