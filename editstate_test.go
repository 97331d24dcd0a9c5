package textart

import (
	"testing"
)

func TestSetCharUndoRedo(t *testing.T) {
	es := DefaultEditState()

	ch := NewAttributedChar('#', NewAttribute(4, 0))
	if err := es.SetChar(Pos(3, 3), ch); err != nil {
		t.Fatal(err)
	}
	if got := es.Buffer.GetChar(Pos(3, 3)); got.Ch != '#' {
		t.Fatalf("expected '#', got %q", got.Ch)
	}

	if err := es.Undo(); err != nil {
		t.Fatal(err)
	}
	if got := es.Buffer.GetChar(Pos(3, 3)); got.Ch != ' ' {
		t.Errorf("expected undo to clear the cell, got %q", got.Ch)
	}

	if err := es.Redo(); err != nil {
		t.Fatal(err)
	}
	if got := es.Buffer.GetChar(Pos(3, 3)); got.Ch != '#' {
		t.Errorf("expected redo to restore '#', got %q", got.Ch)
	}
}

func TestUndoEmptyStack(t *testing.T) {
	es := DefaultEditState()
	if err := es.Undo(); err != ErrNothingToUndo {
		t.Errorf("expected ErrNothingToUndo, got %v", err)
	}
	if err := es.Redo(); err != ErrNothingToRedo {
		t.Errorf("expected ErrNothingToRedo, got %v", err)
	}
}

func TestEditClearsRedoStack(t *testing.T) {
	es := DefaultEditState()

	es.SetChar(Pos(0, 0), NewAttributedChar('a', DefaultAttribute()))
	es.Undo()
	if !es.CanRedo() {
		t.Fatal("expected redo available after undo")
	}
	es.SetChar(Pos(0, 0), NewAttributedChar('b', DefaultAttribute()))
	if es.CanRedo() {
		t.Error("expected a new edit to clear the redo stack")
	}
}

func TestLockedLayerRejectsEdit(t *testing.T) {
	es := DefaultEditState()
	es.Buffer.Layers[0].IsLocked = true

	if err := es.SetChar(Pos(0, 0), DefaultChar()); err == nil {
		t.Error("expected locked layer to reject the edit")
	}
}

func TestAtomicUndo(t *testing.T) {
	es := DefaultEditState()

	guard := es.BeginAtomicUndo("Fill row")
	for x := 0; x < 10; x++ {
		es.SetChar(Pos(x, 0), NewAttributedChar('*', DefaultAttribute()))
	}
	guard.End()

	if err := es.Undo(); err != nil {
		t.Fatal(err)
	}
	for x := 0; x < 10; x++ {
		if got := es.Buffer.GetChar(Pos(x, 0)); got.Ch != ' ' {
			t.Fatalf("expected column %d cleared by one undo, got %q", x, got.Ch)
		}
	}
	if es.CanUndo() {
		t.Error("expected a single undo entry for the whole group")
	}
}

func TestLayerAddRemove(t *testing.T) {
	es := DefaultEditState()

	if err := es.AddNewLayer(0); err != nil {
		t.Fatal(err)
	}
	if len(es.Buffer.Layers) != 3 {
		t.Fatalf("expected 3 layers, got %d", len(es.Buffer.Layers))
	}
	if !es.Buffer.Layers[0].HasAlphaChannel {
		t.Error("expected the new top layer to have an alpha channel")
	}
	if es.CurrentLayer() != 0 {
		t.Errorf("expected the new layer selected, got %d", es.CurrentLayer())
	}

	if err := es.RemoveLayer(0); err != nil {
		t.Fatal(err)
	}
	if err := es.RemoveLayer(0); err != nil {
		t.Fatal(err)
	}
	if len(es.Buffer.Layers) != 1 {
		t.Fatalf("expected 1 layer, got %d", len(es.Buffer.Layers))
	}

	if err := es.RemoveLayer(0); err == nil {
		t.Error("expected the last layer to be irremovable")
	}

	es.Undo()
	if len(es.Buffer.Layers) != 2 {
		t.Errorf("expected undo to restore the removed layer, got %d layers", len(es.Buffer.Layers))
	}
}

func TestMergeLayerDown(t *testing.T) {
	es := DefaultEditState()
	es.AddNewLayer(0)
	es.SetChar(Pos(2, 2), NewAttributedChar('m', DefaultAttribute()))
	es.SetCurrentLayer(1)
	es.SetChar(Pos(0, 0), NewAttributedChar('u', DefaultAttribute()))

	if err := es.MergeLayerDown(0); err != nil {
		t.Fatal(err)
	}
	if len(es.Buffer.Layers) != 2 {
		t.Fatalf("expected 2 layers after merge, got %d", len(es.Buffer.Layers))
	}
	if got := es.Buffer.GetChar(Pos(2, 2)); got.Ch != 'm' {
		t.Errorf("expected merged content kept, got %q", got.Ch)
	}
	if got := es.Buffer.GetChar(Pos(0, 0)); got.Ch != 'u' {
		t.Errorf("expected lower content kept, got %q", got.Ch)
	}

	es.Undo()
	if len(es.Buffer.Layers) != 3 {
		t.Errorf("expected undo to split the merge, got %d layers", len(es.Buffer.Layers))
	}
}

func TestEraseSelectionUndo(t *testing.T) {
	es := NewEditState(NewBuffer(20, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			es.Buffer.SetChar(0, Pos(x, y), NewAttributedChar('#', DefaultAttribute()))
		}
	}

	if err := es.SetSelection(NewSelection(Rect(5, 5, 10, 10))); err != nil {
		t.Fatal(err)
	}
	if err := es.EraseSelection(); err != nil {
		t.Fatal(err)
	}

	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			got := es.Buffer.GetChar(Pos(x, y))
			inside := x >= 5 && x < 15 && y >= 5 && y < 15
			if inside && got.Ch != ' ' {
				t.Fatalf("expected space inside at (%d,%d), got %q", x, y, got.Ch)
			}
			if !inside && got.Ch != '#' {
				t.Fatalf("expected '#' outside at (%d,%d), got %q", x, y, got.Ch)
			}
		}
	}

	if err := es.Undo(); err != nil {
		t.Fatal(err)
	}
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			if got := es.Buffer.GetChar(Pos(x, y)); got.Ch != '#' {
				t.Fatalf("expected '#' restored at (%d,%d), got %q", x, y, got.Ch)
			}
		}
	}
}

func TestCropKeepsInsideLayers(t *testing.T) {
	es := DefaultEditState()

	big := NewLayer("1", Size{Width: 100, Height: 100})
	big.Offset = Pos(-5, -5)
	if err := es.AddLayer(1, big); err != nil {
		t.Fatal(err)
	}
	small := NewLayer("2", Size{Width: 2, Height: 2})
	small.Offset = Pos(7, 6)
	if err := es.AddLayer(2, small); err != nil {
		t.Fatal(err)
	}

	if err := es.Crop(Rect(5, 5, 5, 4)); err != nil {
		t.Fatal(err)
	}

	if es.Buffer.Size() != (Size{Width: 5, Height: 4}) {
		t.Errorf("expected buffer 5x4, got %v", es.Buffer.Size())
	}
	if got := es.Buffer.Layers[1].Size; got != (Size{Width: 5, Height: 4}) {
		t.Errorf("expected layer 1 clipped to 5x4, got %v", got)
	}
	if got := es.Buffer.Layers[2].Size; got != (Size{Width: 2, Height: 2}) {
		t.Errorf("expected layer 2 unchanged at 2x2, got %v", got)
	}

	if err := es.Undo(); err != nil {
		t.Fatal(err)
	}
	if es.Buffer.Size() != (Size{Width: 80, Height: 25}) {
		t.Errorf("expected buffer restored to 80x25, got %v", es.Buffer.Size())
	}
	if got := es.Buffer.Layers[1].Size; got != (Size{Width: 100, Height: 100}) {
		t.Errorf("expected layer 1 restored to 100x100, got %v", got)
	}
	if got := es.Buffer.Layers[2].Size; got != (Size{Width: 2, Height: 2}) {
		t.Errorf("expected layer 2 restored to 2x2, got %v", got)
	}
}

func TestClipboardRoundTrip(t *testing.T) {
	es := DefaultEditState()
	es.SetChar(Pos(1, 1), NewAttributedChar('A', NewAttribute(4, 1)))
	es.SetChar(Pos(2, 1), NewAttributedChar('B', DefaultAttribute()))

	if err := es.SetSelection(NewSelection(Rect(1, 1, 2, 1))); err != nil {
		t.Fatal(err)
	}
	data, err := es.GetClipboardData()
	if err != nil {
		t.Fatal(err)
	}
	if string(data[:4]) != "iced" {
		t.Fatalf("expected clipboard magic, got %q", data[:4])
	}
	if len(data)%4 != 0 {
		t.Errorf("expected padding to 4 bytes, got length %d", len(data))
	}

	if err := es.PasteClipboardData(data); err != nil {
		t.Fatal(err)
	}
	pasted := es.Buffer.Layers[es.CurrentLayer()]
	if pasted.Size != (Size{Width: 2, Height: 1}) {
		t.Errorf("expected pasted layer 2x1, got %v", pasted.Size)
	}
	if got := pasted.GetChar(Pos(0, 0)); got.Ch != 'A' {
		t.Errorf("expected pasted 'A', got %q", got.Ch)
	}
}

func TestRemoveFontRetargetsCells(t *testing.T) {
	es := DefaultEditState()

	extra := NewDefaultFont()
	extra.Name = "Alt"
	slot, err := es.AddFont(extra)
	if err != nil {
		t.Fatal(err)
	}
	es.SetChar(Pos(0, 0), NewAttributedChar('A', DefaultAttribute()).WithFontPage(slot))

	if err := es.RemoveFont(slot); err != nil {
		t.Fatal(err)
	}
	if got := es.Buffer.GetChar(Pos(0, 0)); got.Attribute.FontPage != 0 {
		t.Errorf("expected cell retargeted to slot 0, got %d", got.Attribute.FontPage)
	}
	if es.Buffer.GetFont(slot) != nil {
		t.Error("expected font slot emptied")
	}

	if err := es.Undo(); err != nil {
		t.Fatal(err)
	}
	if es.Buffer.GetFont(slot) == nil {
		t.Error("expected undo to restore the font")
	}
	if got := es.Buffer.GetChar(Pos(0, 0)); got.Attribute.FontPage != slot {
		t.Errorf("expected cell back on slot %d, got %d", slot, got.Attribute.FontPage)
	}
}

func TestRemoveFontSlotZeroRejected(t *testing.T) {
	es := DefaultEditState()
	if err := es.RemoveFont(0); err == nil {
		t.Error("expected slot 0 to be irremovable")
	}
}

func TestSelectionMaskAddSubtract(t *testing.T) {
	es := DefaultEditState()

	es.SetSelection(NewSelection(Rect(0, 0, 4, 4)))
	if err := es.AddSelectionToMask(); err != nil {
		t.Fatal(err)
	}

	sub := NewSelection(Rect(1, 1, 2, 2))
	sub.Add = AddTypeSubtract
	es.SetSelection(sub)
	if err := es.AddSelectionToMask(); err != nil {
		t.Fatal(err)
	}
	es.Deselect()

	if !es.GetIsSelected(Pos(0, 0)) {
		t.Error("expected (0,0) selected")
	}
	if es.GetIsSelected(Pos(2, 2)) {
		t.Error("expected (2,2) subtracted")
	}
}

func TestSetIceModeUndo(t *testing.T) {
	es := DefaultEditState()
	es.Buffer.IceMode = IceModeIce
	es.Buffer.SetChar(0, Pos(0, 0), NewAttributedChar('A', NewAttribute(7, 12)))

	if err := es.SetIceMode(IceModeBlink); err != nil {
		t.Fatal(err)
	}
	got := es.Buffer.GetChar(Pos(0, 0))
	if !got.Attribute.IsBlinking() || got.Attribute.Background() != 4 {
		t.Fatalf("expected blink rewrite, got blink=%v bg=%d", got.Attribute.IsBlinking(), got.Attribute.Background())
	}

	if err := es.Undo(); err != nil {
		t.Fatal(err)
	}
	got = es.Buffer.GetChar(Pos(0, 0))
	if got.Attribute.IsBlinking() || got.Attribute.Background() != 12 {
		t.Errorf("expected original bright background restored, got blink=%v bg=%d", got.Attribute.IsBlinking(), got.Attribute.Background())
	}
	if es.Buffer.IceMode != IceModeIce {
		t.Errorf("expected ice mode restored, got %d", es.Buffer.IceMode)
	}
}
