package textart

// UndoOperation is one reversible edit. Redo must be equivalent to the
// original apply so operations can be replayed.
type UndoOperation interface {
	Description() string
	Undo(es *EditState) error
	Redo(es *EditState) error
}

type undoSetChar struct {
	layer    int
	pos      Position
	old, new AttributedChar
}

func (op *undoSetChar) Description() string { return "Set character" }

func (op *undoSetChar) Undo(es *EditState) error {
	return es.setCharRaw(op.layer, op.pos, op.old)
}

func (op *undoSetChar) Redo(es *EditState) error {
	return es.setCharRaw(op.layer, op.pos, op.new)
}

type undoSwapChar struct {
	layer      int
	pos1, pos2 Position
}

func (op *undoSwapChar) Description() string { return "Swap characters" }

func (op *undoSwapChar) swap(es *EditState) error {
	l, err := es.layerAt(op.layer)
	if err != nil {
		return err
	}
	l.SwapChar(op.pos1, op.pos2)
	return nil
}

func (op *undoSwapChar) Undo(es *EditState) error { return op.swap(es) }
func (op *undoSwapChar) Redo(es *EditState) error { return op.swap(es) }

type undoAddLayer struct {
	index int
	layer *Layer
}

func (op *undoAddLayer) Description() string { return "Add layer" }

func (op *undoAddLayer) Undo(es *EditState) error {
	return es.removeLayerRaw(op.index)
}

func (op *undoAddLayer) Redo(es *EditState) error {
	return es.insertLayerRaw(op.index, op.layer)
}

type undoRemoveLayer struct {
	index int
	layer *Layer
}

func (op *undoRemoveLayer) Description() string { return "Remove layer" }

func (op *undoRemoveLayer) Undo(es *EditState) error {
	return es.insertLayerRaw(op.index, op.layer)
}

func (op *undoRemoveLayer) Redo(es *EditState) error {
	return es.removeLayerRaw(op.index)
}

type undoRaiseLayer struct{ index int }

func (op *undoRaiseLayer) Description() string { return "Raise layer" }

func (op *undoRaiseLayer) Undo(es *EditState) error {
	return es.swapLayersRaw(op.index, op.index+1)
}

func (op *undoRaiseLayer) Redo(es *EditState) error {
	return es.swapLayersRaw(op.index, op.index+1)
}

type undoLowerLayer struct{ index int }

func (op *undoLowerLayer) Description() string { return "Lower layer" }

func (op *undoLowerLayer) Undo(es *EditState) error {
	return es.swapLayersRaw(op.index-1, op.index)
}

func (op *undoLowerLayer) Redo(es *EditState) error {
	return es.swapLayersRaw(op.index-1, op.index)
}

type undoMergeLayerDown struct {
	index  int
	upper  *Layer
	below  *Layer // pre-merge clone of the layer below
	merged *Layer
}

func (op *undoMergeLayerDown) Description() string { return "Merge layer down" }

func (op *undoMergeLayerDown) Undo(es *EditState) error {
	if err := es.replaceLayerRaw(op.index, op.below.Clone()); err != nil {
		return err
	}
	return es.insertLayerRaw(op.index, op.upper)
}

func (op *undoMergeLayerDown) Redo(es *EditState) error {
	if err := es.removeLayerRaw(op.index); err != nil {
		return err
	}
	return es.replaceLayerRaw(op.index, op.merged.Clone())
}

// undoLayerChange swaps an area of a layer between its captured before
// and after states. Area operations use it as their single history
// record.
type undoLayerChange struct {
	description string
	layer       int
	area        Rectangle
	old, new    *Layer
}

func (op *undoLayerChange) Description() string { return op.description }

func (op *undoLayerChange) restore(es *EditState, from *Layer) error {
	for y := 0; y < op.area.Size.Height; y++ {
		for x := 0; x < op.area.Size.Width; x++ {
			pos := Pos(x, y)
			if err := es.setCharRaw(op.layer, op.area.Start.Add(pos), from.GetChar(pos)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (op *undoLayerChange) Undo(es *EditState) error { return op.restore(es, op.old) }
func (op *undoLayerChange) Redo(es *EditState) error { return op.restore(es, op.new) }

type undoToggleLayerVisibility struct{ index int }

func (op *undoToggleLayerVisibility) Description() string { return "Toggle layer visibility" }

func (op *undoToggleLayerVisibility) toggle(es *EditState) error {
	l, err := es.layerAt(op.index)
	if err != nil {
		return err
	}
	l.IsVisible = !l.IsVisible
	return nil
}

func (op *undoToggleLayerVisibility) Undo(es *EditState) error { return op.toggle(es) }
func (op *undoToggleLayerVisibility) Redo(es *EditState) error { return op.toggle(es) }

type undoMoveLayer struct {
	index    int
	from, to Position
}

func (op *undoMoveLayer) Description() string { return "Move layer" }

func (op *undoMoveLayer) Undo(es *EditState) error {
	l, err := es.layerAt(op.index)
	if err != nil {
		return err
	}
	l.Offset = op.from
	return nil
}

func (op *undoMoveLayer) Redo(es *EditState) error {
	l, err := es.layerAt(op.index)
	if err != nil {
		return err
	}
	l.Offset = op.to
	return nil
}

// layerSnapshot restores wholesale buffer geometry changes.
type layerSnapshot struct {
	size   Size
	layers []*Layer
}

func snapshotLayers(buf *Buffer) layerSnapshot {
	s := layerSnapshot{size: buf.Size()}
	for _, l := range buf.Layers {
		s.layers = append(s.layers, l.Clone())
	}
	return s
}

func (s layerSnapshot) restore(buf *Buffer) {
	buf.TerminalState.Width = s.size.Width
	buf.TerminalState.Height = s.size.Height
	buf.Layers = nil
	for _, l := range s.layers {
		buf.Layers = append(buf.Layers, l.Clone())
	}
}

type undoResizeBuffer struct {
	before, after layerSnapshot
}

func (op *undoResizeBuffer) Description() string { return "Resize buffer" }

func (op *undoResizeBuffer) Undo(es *EditState) error {
	op.before.restore(es.Buffer)
	return nil
}

func (op *undoResizeBuffer) Redo(es *EditState) error {
	op.after.restore(es.Buffer)
	return nil
}

type undoCrop struct {
	before, after layerSnapshot
}

func (op *undoCrop) Description() string { return "Crop" }

func (op *undoCrop) Undo(es *EditState) error {
	op.before.restore(es.Buffer)
	return nil
}

func (op *undoCrop) Redo(es *EditState) error {
	op.after.restore(es.Buffer)
	return nil
}

type undoPaste struct {
	index int
	layer *Layer
}

func (op *undoPaste) Description() string { return "Paste" }

func (op *undoPaste) Undo(es *EditState) error {
	return es.removeLayerRaw(op.index)
}

func (op *undoPaste) Redo(es *EditState) error {
	return es.insertLayerRaw(op.index, op.layer)
}

type undoAddFont struct {
	slot int
	font *BitFont
}

func (op *undoAddFont) Description() string { return "Add font" }

func (op *undoAddFont) Undo(es *EditState) error {
	es.Buffer.RemoveFont(op.slot)
	return nil
}

func (op *undoAddFont) Redo(es *EditState) error {
	es.Buffer.SetFont(op.slot, op.font)
	return nil
}

type undoSetFont struct {
	slot     int
	old, new *BitFont
}

func (op *undoSetFont) Description() string { return "Set font" }

func (op *undoSetFont) Undo(es *EditState) error {
	if op.old == nil {
		es.Buffer.RemoveFont(op.slot)
	} else {
		es.Buffer.SetFont(op.slot, op.old)
	}
	return nil
}

func (op *undoSetFont) Redo(es *EditState) error {
	es.Buffer.SetFont(op.slot, op.new)
	return nil
}

type undoRemoveFont struct {
	slot int
	font *BitFont
}

func (op *undoRemoveFont) Description() string { return "Remove font" }

func (op *undoRemoveFont) Undo(es *EditState) error {
	es.Buffer.SetFont(op.slot, op.font)
	return nil
}

func (op *undoRemoveFont) Redo(es *EditState) error {
	es.Buffer.RemoveFont(op.slot)
	return nil
}

type undoSwitchFontPage struct {
	old, new int
}

func (op *undoSwitchFontPage) Description() string { return "Switch font page" }

func (op *undoSwitchFontPage) Undo(es *EditState) error {
	es.Caret.Attribute.FontPage = op.old
	return nil
}

func (op *undoSwitchFontPage) Redo(es *EditState) error {
	es.Caret.Attribute.FontPage = op.new
	return nil
}

type undoReplaceFontUsage struct {
	from, to int
}

func (op *undoReplaceFontUsage) Description() string { return "Replace font usage" }

func (op *undoReplaceFontUsage) Undo(es *EditState) error {
	es.Buffer.ReplaceFontUsage(op.to, op.from)
	return nil
}

func (op *undoReplaceFontUsage) Redo(es *EditState) error {
	es.Buffer.ReplaceFontUsage(op.from, op.to)
	return nil
}

type undoSwitchPalette struct {
	oldPalette, newPalette *Palette
	oldMode, newMode       PaletteMode
	before, after          layerSnapshot
}

func (op *undoSwitchPalette) Description() string { return "Switch palette" }

func (op *undoSwitchPalette) Undo(es *EditState) error {
	es.Buffer.Palette = op.oldPalette.Clone()
	es.Buffer.PaletteMode = op.oldMode
	op.before.restore(es.Buffer)
	return nil
}

func (op *undoSwitchPalette) Redo(es *EditState) error {
	es.Buffer.Palette = op.newPalette.Clone()
	es.Buffer.PaletteMode = op.newMode
	op.after.restore(es.Buffer)
	return nil
}

type undoSetIceMode struct {
	oldMode, newMode IceMode
	before, after    layerSnapshot
}

func (op *undoSetIceMode) Description() string { return "Set ice mode" }

func (op *undoSetIceMode) Undo(es *EditState) error {
	es.Buffer.IceMode = op.oldMode
	op.before.restore(es.Buffer)
	return nil
}

func (op *undoSetIceMode) Redo(es *EditState) error {
	es.Buffer.IceMode = op.newMode
	op.after.restore(es.Buffer)
	return nil
}

type undoSetSelection struct {
	old, new *Selection
}

func (op *undoSetSelection) Description() string { return "Set selection" }

func (op *undoSetSelection) Undo(es *EditState) error {
	es.selection = cloneSelection(op.old)
	return nil
}

func (op *undoSetSelection) Redo(es *EditState) error {
	es.selection = cloneSelection(op.new)
	return nil
}

func cloneSelection(s *Selection) *Selection {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

type undoSetSelectionMask struct {
	description string
	old, new    *SelectionMask
}

func (op *undoSetSelectionMask) Description() string {
	if op.description != "" {
		return op.description
	}
	return "Set selection mask"
}

func (op *undoSetSelectionMask) Undo(es *EditState) error {
	es.mask = *op.old.Clone()
	return nil
}

func (op *undoSetSelectionMask) Redo(es *EditState) error {
	es.mask = *op.new.Clone()
	return nil
}

// atomicUndo groups operations so they undo and redo as one step.
type atomicUndo struct {
	description string
	ops         []UndoOperation
}

func (op *atomicUndo) Description() string { return op.description }

func (op *atomicUndo) Undo(es *EditState) error {
	for i := len(op.ops) - 1; i >= 0; i-- {
		if err := op.ops[i].Undo(es); err != nil {
			return err
		}
	}
	return nil
}

func (op *atomicUndo) Redo(es *EditState) error {
	for _, o := range op.ops {
		if err := o.Redo(es); err != nil {
			return err
		}
	}
	return nil
}
