package textart

import (
	"encoding/binary"
	"fmt"
)

// Clipboard envelope content types.
const (
	clipboardMagic       = "iced"
	ClipboardBufferData  = 0x0000
	ClipboardBitFontData = 0x0100
)

// EditState wraps a buffer with a caret, a selection, and an undo/redo
// history. Every mutating operation goes through the undo stack.
type EditState struct {
	Buffer *Buffer
	Caret  *Caret

	currentLayer int
	selection    *Selection
	mask         SelectionMask

	undoStack   []UndoOperation
	redoStack   []UndoOperation
	atomicStack []*atomicUndo
}

// NewEditState wraps an existing buffer.
func NewEditState(buf *Buffer) *EditState {
	return &EditState{Buffer: buf, Caret: NewCaret()}
}

// DefaultEditState creates an empty 80x25 document.
func DefaultEditState() *EditState {
	return NewEditState(NewBuffer(80, 25))
}

// CurrentLayer returns the index edits apply to.
func (es *EditState) CurrentLayer() int { return es.currentLayer }

// SetCurrentLayer switches the edit target.
func (es *EditState) SetCurrentLayer(index int) error {
	if index < 0 || index >= len(es.Buffer.Layers) {
		return invalidLayerErr(index)
	}
	es.currentLayer = index
	return nil
}

// GetCurrentLayer returns the layer edits apply to.
func (es *EditState) GetCurrentLayer() (*Layer, error) {
	return es.layerAt(es.currentLayer)
}

func (es *EditState) layerAt(index int) (*Layer, error) {
	if index < 0 || index >= len(es.Buffer.Layers) {
		return nil, invalidLayerErr(index)
	}
	return es.Buffer.Layers[index], nil
}

// History plumbing

func (es *EditState) push(op UndoOperation) {
	if n := len(es.atomicStack); n > 0 {
		es.atomicStack[n-1].ops = append(es.atomicStack[n-1].ops, op)
		return
	}
	es.undoStack = append(es.undoStack, op)
	es.redoStack = nil
}

// apply performs op and records it.
func (es *EditState) apply(op UndoOperation) error {
	if err := op.Redo(es); err != nil {
		return err
	}
	es.push(op)
	return nil
}

// CanUndo reports whether Undo has work to do.
func (es *EditState) CanUndo() bool { return len(es.undoStack) > 0 }

// CanRedo reports whether Redo has work to do.
func (es *EditState) CanRedo() bool { return len(es.redoStack) > 0 }

// UndoDescription names the operation Undo would revert.
func (es *EditState) UndoDescription() string {
	if n := len(es.undoStack); n > 0 {
		return es.undoStack[n-1].Description()
	}
	return ""
}

// RedoDescription names the operation Redo would replay.
func (es *EditState) RedoDescription() string {
	if n := len(es.redoStack); n > 0 {
		return es.redoStack[n-1].Description()
	}
	return ""
}

// Undo reverts the most recent operation.
func (es *EditState) Undo() error {
	n := len(es.undoStack)
	if n == 0 {
		return ErrNothingToUndo
	}
	op := es.undoStack[n-1]
	es.undoStack = es.undoStack[:n-1]
	if err := op.Undo(es); err != nil {
		// keep history consistent even on failure
		es.undoStack = append(es.undoStack, op)
		return err
	}
	es.redoStack = append(es.redoStack, op)
	return nil
}

// Redo replays the most recently undone operation.
func (es *EditState) Redo() error {
	n := len(es.redoStack)
	if n == 0 {
		return ErrNothingToRedo
	}
	op := es.redoStack[n-1]
	es.redoStack = es.redoStack[:n-1]
	if err := op.Redo(es); err != nil {
		es.redoStack = append(es.redoStack, op)
		return err
	}
	es.undoStack = append(es.undoStack, op)
	return nil
}

// AtomicUndoGuard closes an open atomic group.
type AtomicUndoGuard struct {
	es   *EditState
	done bool
}

// BeginAtomicUndo groups the following operations into one undo step.
// Groups nest; the guard must be ended.
func (es *EditState) BeginAtomicUndo(description string) *AtomicUndoGuard {
	es.atomicStack = append(es.atomicStack, &atomicUndo{description: description})
	return &AtomicUndoGuard{es: es}
}

// End closes the group. An empty group leaves no history entry.
func (g *AtomicUndoGuard) End() {
	if g.done {
		return
	}
	g.done = true
	es := g.es
	n := len(es.atomicStack)
	group := es.atomicStack[n-1]
	es.atomicStack = es.atomicStack[:n-1]
	if len(group.ops) == 0 {
		return
	}
	es.push(group)
}

// Raw mutations used by operations; these bypass history.

func (es *EditState) setCharRaw(layer int, pos Position, ch AttributedChar) error {
	l, err := es.layerAt(layer)
	if err != nil {
		return err
	}
	locked := l.IsLocked
	l.IsLocked = false
	l.SetChar(pos, ch)
	l.IsLocked = locked
	return nil
}

func (es *EditState) insertLayerRaw(index int, l *Layer) error {
	if index < 0 || index > len(es.Buffer.Layers) {
		return invalidLayerErr(index)
	}
	es.Buffer.Layers = append(es.Buffer.Layers, nil)
	copy(es.Buffer.Layers[index+1:], es.Buffer.Layers[index:])
	es.Buffer.Layers[index] = l
	return nil
}

func (es *EditState) removeLayerRaw(index int) error {
	if index < 0 || index >= len(es.Buffer.Layers) {
		return invalidLayerErr(index)
	}
	es.Buffer.Layers = append(es.Buffer.Layers[:index], es.Buffer.Layers[index+1:]...)
	if es.currentLayer >= len(es.Buffer.Layers) {
		es.currentLayer = maxInt(0, len(es.Buffer.Layers)-1)
	}
	return nil
}

func (es *EditState) swapLayersRaw(a, b int) error {
	if a < 0 || b < 0 || a >= len(es.Buffer.Layers) || b >= len(es.Buffer.Layers) {
		return invalidLayerErr(maxInt(a, b))
	}
	es.Buffer.Layers[a], es.Buffer.Layers[b] = es.Buffer.Layers[b], es.Buffer.Layers[a]
	return nil
}

func (es *EditState) replaceLayerRaw(index int, l *Layer) error {
	if index < 0 || index >= len(es.Buffer.Layers) {
		return invalidLayerErr(index)
	}
	es.Buffer.Layers[index] = l
	return nil
}

// Cell edits

// SetChar writes ch through the undo system onto the current layer.
func (es *EditState) SetChar(pos Position, ch AttributedChar) error {
	l, err := es.GetCurrentLayer()
	if err != nil {
		return err
	}
	if l.IsLocked {
		return editorErr("layer %d is locked", es.currentLayer)
	}
	op := &undoSetChar{
		layer: es.currentLayer,
		pos:   pos,
		old:   l.RawChar(pos),
		new:   ch,
	}
	return es.apply(op)
}

// SwapChar exchanges two cells on the current layer.
func (es *EditState) SwapChar(pos1, pos2 Position) error {
	return es.apply(&undoSwapChar{layer: es.currentLayer, pos1: pos1, pos2: pos2})
}

// Layer stack edits

// AddNewLayer inserts an empty alpha layer above index and selects it.
func (es *EditState) AddNewLayer(index int) error {
	l := NewLayer(fmt.Sprintf("Layer %d", len(es.Buffer.Layers)), es.Buffer.Size())
	l.HasAlphaChannel = true
	index = clampInt(index, 0, len(es.Buffer.Layers))
	if err := es.apply(&undoAddLayer{index: index, layer: l}); err != nil {
		return err
	}
	es.currentLayer = index
	return nil
}

// AddLayer inserts a prepared layer at index.
func (es *EditState) AddLayer(index int, l *Layer) error {
	index = clampInt(index, 0, len(es.Buffer.Layers))
	return es.apply(&undoAddLayer{index: index, layer: l})
}

// RemoveLayer deletes the layer at index. The last layer cannot be
// removed.
func (es *EditState) RemoveLayer(index int) error {
	l, err := es.layerAt(index)
	if err != nil {
		return err
	}
	if len(es.Buffer.Layers) == 1 {
		return editorErr("cannot remove the last layer")
	}
	return es.apply(&undoRemoveLayer{index: index, layer: l})
}

// RaiseLayer swaps the layer with the one above it.
func (es *EditState) RaiseLayer(index int) error {
	if index+1 >= len(es.Buffer.Layers) {
		return invalidLayerErr(index + 1)
	}
	if err := es.apply(&undoRaiseLayer{index: index}); err != nil {
		return err
	}
	if es.currentLayer == index {
		es.currentLayer = index + 1
	}
	return nil
}

// LowerLayer swaps the layer with the one below it.
func (es *EditState) LowerLayer(index int) error {
	if index == 0 {
		return invalidLayerErr(-1)
	}
	if err := es.apply(&undoLowerLayer{index: index}); err != nil {
		return err
	}
	if es.currentLayer == index {
		es.currentLayer = index - 1
	}
	return nil
}

// MergeLayerDown flattens the layer at index into the one below it.
func (es *EditState) MergeLayerDown(index int) error {
	if index+1 >= len(es.Buffer.Layers) {
		return editorErr("no layer below to merge into")
	}
	upper, err := es.layerAt(index)
	if err != nil {
		return err
	}
	below, err := es.layerAt(index + 1)
	if err != nil {
		return err
	}
	merged := below.Clone()
	rect := upper.Rectangle().Union(below.Rectangle())
	merged.Offset = rect.Start
	merged.Size = rect.Size
	merged.Lines = nil
	for y := 0; y < rect.Size.Height; y++ {
		for x := 0; x < rect.Size.Width; x++ {
			pos := rect.Start.Add(Pos(x, y))
			ch := upper.GetChar(pos.Sub(upper.Offset))
			if !ch.IsVisible() {
				ch = below.GetChar(pos.Sub(below.Offset))
			}
			if ch.IsVisible() {
				merged.SetChar(Pos(x, y), ch)
			}
		}
	}
	return es.apply(&undoMergeLayerDown{
		index:  index,
		upper:  upper,
		below:  below.Clone(),
		merged: merged,
	})
}

// ToggleLayerVisibility flips the visible flag of a layer.
func (es *EditState) ToggleLayerVisibility(index int) error {
	if _, err := es.layerAt(index); err != nil {
		return err
	}
	return es.apply(&undoToggleLayerVisibility{index: index})
}

// MoveLayer shifts the current layer to a new offset.
func (es *EditState) MoveLayer(to Position) error {
	l, err := es.GetCurrentLayer()
	if err != nil {
		return err
	}
	if l.IsPositionLocked {
		return editorErr("layer %d position is locked", es.currentLayer)
	}
	return es.apply(&undoMoveLayer{index: es.currentLayer, from: l.Offset, to: to})
}

// Geometry edits

// ResizeBuffer changes the canvas size, keeping layer content.
func (es *EditState) ResizeBuffer(size Size) error {
	before := snapshotLayers(es.Buffer)
	es.Buffer.TerminalState.Width = size.Width
	es.Buffer.TerminalState.Height = size.Height
	if len(es.Buffer.Layers) > 0 {
		es.Buffer.Layers[0].Size = size
	}
	after := snapshotLayers(es.Buffer)
	es.push(&undoResizeBuffer{before: before, after: after})
	return nil
}

// Crop cuts the buffer down to rect. Layers are clipped to the crop
// window; layers already inside it only get their offset shifted.
func (es *EditState) Crop(rect Rectangle) error {
	if rect.IsEmpty() {
		return editorErr("empty crop rectangle")
	}
	before := snapshotLayers(es.Buffer)
	es.Buffer.TerminalState.Width = rect.Size.Width
	es.Buffer.TerminalState.Height = rect.Size.Height
	for i, l := range es.Buffer.Layers {
		inter := rect.Intersect(l.Rectangle())
		if inter.IsEmpty() {
			empty := NewLayer(l.Title, Size{})
			empty.Offset = Pos(0, 0)
			es.Buffer.Layers[i] = empty
			continue
		}
		if inter == l.Rectangle() {
			l.Offset = l.Offset.Sub(rect.Start)
			continue
		}
		trimmed := LayerFromArea(l, inter)
		trimmed.Offset = inter.Start.Sub(rect.Start)
		trimmed.IsVisible = l.IsVisible
		trimmed.IsLocked = l.IsLocked
		trimmed.IsPositionLocked = l.IsPositionLocked
		es.Buffer.Layers[i] = trimmed
	}
	after := snapshotLayers(es.Buffer)
	es.push(&undoCrop{before: before, after: after})
	return nil
}

// Clipboard

// GetClipboardData serializes the selected area of the current layer
// into the clipboard envelope.
func (es *EditState) GetClipboardData() ([]byte, error) {
	l, err := es.GetCurrentLayer()
	if err != nil {
		return nil, err
	}
	rect := es.SelectedRectangle()
	if rect.IsEmpty() {
		return nil, editorErr("nothing selected")
	}
	area := LayerFromArea(l, rect)
	area.Offset = rect.Start
	payload := area.ToClipboardData()
	return wrapClipboard(ClipboardBufferData, payload), nil
}

// wrapClipboard builds the envelope: magic, content type, payload and
// zero padding to a four byte boundary.
func wrapClipboard(contentType uint16, payload []byte) []byte {
	out := []byte(clipboardMagic)
	out = binary.LittleEndian.AppendUint16(out, contentType)
	out = append(out, payload...)
	for len(out)%4 != 0 {
		out = append(out, 0)
	}
	return out
}

// unwrapClipboard validates the envelope and returns the content type
// and payload.
func unwrapClipboard(data []byte) (uint16, []byte, bool) {
	if len(data) < len(clipboardMagic)+2 || string(data[:len(clipboardMagic)]) != clipboardMagic {
		return 0, nil, false
	}
	contentType := binary.LittleEndian.Uint16(data[len(clipboardMagic):])
	return contentType, data[len(clipboardMagic)+2:], true
}

// PasteClipboardData adds the clipboard content as a floating paste
// layer above the current layer.
func (es *EditState) PasteClipboardData(data []byte) error {
	contentType, payload, ok := unwrapClipboard(data)
	if !ok {
		return editorErr("unknown clipboard data")
	}
	switch contentType {
	case ClipboardBufferData:
		l := LayerFromClipboardData(payload)
		if l == nil {
			return editorErr("malformed clipboard buffer data")
		}
		index := es.currentLayer
		if err := es.apply(&undoPaste{index: index, layer: l}); err != nil {
			return err
		}
		es.currentLayer = index
		return nil
	case ClipboardBitFontData:
		return editorErr("glyph clipboard data needs a font editing target")
	}
	return editorErr("unknown clipboard content type %04X", contentType)
}

// Fonts

// AddFont stores f in the lowest free slot.
func (es *EditState) AddFont(f *BitFont) (int, error) {
	slot := 0
	for es.Buffer.GetFont(slot) != nil {
		slot++
	}
	return slot, es.apply(&undoAddFont{slot: slot, font: f})
}

// SetFont replaces the font in a slot.
func (es *EditState) SetFont(slot int, f *BitFont) error {
	return es.apply(&undoSetFont{slot: slot, old: es.Buffer.GetFont(slot), new: f})
}

// RemoveFont drops a font slot; cells referencing it are retargeted to
// slot 0 first. Slot 0 itself cannot be removed while other slots
// exist.
func (es *EditState) RemoveFont(slot int) error {
	f := es.Buffer.GetFont(slot)
	if f == nil {
		return editorErr("no font in slot %d", slot)
	}
	if slot == 0 && es.Buffer.HasFonts() {
		return editorErr("slot 0 must keep a font")
	}
	guard := es.BeginAtomicUndo("Remove font")
	defer guard.End()
	if err := es.apply(&undoReplaceFontUsage{from: slot, to: 0}); err != nil {
		return err
	}
	return es.apply(&undoRemoveFont{slot: slot, font: f})
}

// SwitchToFontPage retargets the caret to another font slot.
func (es *EditState) SwitchToFontPage(slot int) error {
	if es.Buffer.GetFont(slot) == nil {
		return editorErr("no font in slot %d", slot)
	}
	return es.apply(&undoSwitchFontPage{old: es.Caret.Attribute.FontPage, new: slot})
}

// ReplaceFontUsage rewrites every cell using one slot to another.
func (es *EditState) ReplaceFontUsage(from, to int) error {
	return es.apply(&undoReplaceFontUsage{from: from, to: to})
}

// Palette and ice mode

// SwitchPaletteMode remaps the buffer into the target palette mode.
func (es *EditState) SwitchPaletteMode(mode PaletteMode) error {
	before := snapshotLayers(es.Buffer)
	oldPalette := es.Buffer.Palette.Clone()
	oldMode := es.Buffer.PaletteMode
	es.Buffer.SetPaletteMode(mode)
	es.push(&undoSwitchPalette{
		oldPalette: oldPalette,
		newPalette: es.Buffer.Palette.Clone(),
		oldMode:    oldMode,
		newMode:    mode,
		before:     before,
		after:      snapshotLayers(es.Buffer),
	})
	return nil
}

// SetIceMode rewrites the buffer for the new ice handling.
func (es *EditState) SetIceMode(mode IceMode) error {
	before := snapshotLayers(es.Buffer)
	oldMode := es.Buffer.IceMode
	es.Buffer.SetIceMode(mode)
	es.push(&undoSetIceMode{
		oldMode: oldMode,
		newMode: mode,
		before:  before,
		after:   snapshotLayers(es.Buffer),
	})
	return nil
}

// Selection

// Selection returns the active drag selection, if any.
func (es *EditState) Selection() *Selection { return cloneSelection(es.selection) }

// SelectionMask returns the persistent mask.
func (es *EditState) SelectionMask() *SelectionMask { return &es.mask }

// SetSelection replaces the active drag selection.
func (es *EditState) SetSelection(sel Selection) error {
	if es.selection != nil && es.selection.Locked {
		return editorErr("selection is locked")
	}
	return es.apply(&undoSetSelection{old: cloneSelection(es.selection), new: &sel})
}

// Deselect clears the drag selection and the mask.
func (es *EditState) Deselect() error {
	if es.selection == nil && es.mask.IsEmpty() {
		return nil
	}
	guard := es.BeginAtomicUndo("Deselect")
	defer guard.End()
	if es.selection != nil {
		if err := es.apply(&undoSetSelection{old: cloneSelection(es.selection), new: nil}); err != nil {
			return err
		}
	}
	if !es.mask.IsEmpty() {
		if err := es.apply(&undoSetSelectionMask{old: es.mask.Clone(), new: &SelectionMask{}}); err != nil {
			return err
		}
	}
	return nil
}

// AddSelectionToMask folds the drag selection into the mask, honoring
// its add type, and clears the drag.
func (es *EditState) AddSelectionToMask() error {
	if es.selection == nil {
		return nil
	}
	sel := *es.selection
	next := es.mask.Clone()
	switch sel.Add {
	case AddTypeSubtract:
		next.RemoveRectangle(sel.Rectangle())
	default:
		next.AddRectangle(sel.Rectangle())
	}
	guard := es.BeginAtomicUndo("Update selection")
	defer guard.End()
	if err := es.apply(&undoSetSelectionMask{old: es.mask.Clone(), new: next}); err != nil {
		return err
	}
	return es.apply(&undoSetSelection{old: cloneSelection(es.selection), new: nil})
}

// GetIsSelected reports whether pos is inside the drag selection or the
// mask.
func (es *EditState) GetIsSelected(pos Position) bool {
	if es.selection != nil {
		r := es.selection.Rectangle()
		if r.Contains(pos) {
			return es.selection.Add != AddTypeSubtract
		}
	}
	return es.mask.GetIsSelected(pos)
}

// SelectedRectangle returns the bounds of everything selected.
func (es *EditState) SelectedRectangle() Rectangle {
	var rect Rectangle
	if es.selection != nil {
		rect = es.selection.Rectangle()
	}
	if !es.mask.IsEmpty() {
		if rect.IsEmpty() {
			return es.mask.Rectangle()
		}
		rect = rect.Union(es.mask.Rectangle())
	}
	return rect
}

// EraseSelection blanks every selected cell of the current layer as one
// undo step.
func (es *EditState) EraseSelection() error {
	l, err := es.GetCurrentLayer()
	if err != nil {
		return err
	}
	rect := es.SelectedRectangle()
	if rect.IsEmpty() {
		return nil
	}
	guard := es.BeginAtomicUndo("Erase selection")
	defer guard.End()
	blank := InvisibleChar()
	if !l.HasAlphaChannel {
		blank = DefaultChar()
	}
	for y := rect.Start.Y; y < rect.Start.Y+rect.Size.Height; y++ {
		for x := rect.Start.X; x < rect.Start.X+rect.Size.Width; x++ {
			pos := Pos(x, y)
			if !es.GetIsSelected(pos) {
				continue
			}
			local := pos.Sub(l.Offset)
			if err := es.apply(&undoSetChar{
				layer: es.currentLayer,
				pos:   local,
				old:   l.RawChar(local),
				new:   blank,
			}); err != nil {
				return err
			}
		}
	}
	return es.Deselect()
}
