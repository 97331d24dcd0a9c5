package textart

import (
	"sort"
	"sync"
)

// BufferType captures the color/font capability tuple of a legacy
// format.
type BufferType uint8

const (
	BufferTypeLegacyDos  BufferType = iota // 16 fg, 8 bg, blink
	BufferTypeLegacyIce                    // 16 fg, 16 bg, no blink
	BufferTypeExtFont                      // 8 fg, 8 bg, blink, 512 chars
	BufferTypeExtFontIce                   // 8 fg, 16 bg, 512 chars
	BufferTypeNoLimits
)

// BufferTypeFromByte decodes a stored buffer type.
func BufferTypeFromByte(b byte) BufferType {
	if b > byte(BufferTypeNoLimits) {
		return BufferTypeLegacyDos
	}
	return BufferType(b)
}

// ToByte encodes the buffer type for storage.
func (t BufferType) ToByte() byte { return byte(t) }

// UseIceColors reports whether blink doubles as bright background.
func (t BufferType) UseIceColors() bool {
	return t == BufferTypeLegacyIce || t == BufferTypeExtFontIce
}

// UseBlink reports whether the blink attribute is available.
func (t BufferType) UseBlink() bool {
	return t == BufferTypeLegacyDos || t == BufferTypeExtFont || t == BufferTypeNoLimits
}

// UseExtendedFont reports whether the 512-character mode is active.
func (t BufferType) UseExtendedFont() bool {
	return t == BufferTypeExtFont || t == BufferTypeExtFontIce
}

// FgColorCount returns the number of addressable foreground colors.
func (t BufferType) FgColorCount() uint32 {
	switch t {
	case BufferTypeExtFont, BufferTypeExtFontIce:
		return 8
	case BufferTypeNoLimits:
		return 1 << 31
	default:
		return 16
	}
}

// BgColorCount returns the number of addressable background colors.
func (t BufferType) BgColorCount() uint32 {
	switch t {
	case BufferTypeLegacyIce, BufferTypeExtFontIce:
		return 16
	case BufferTypeNoLimits:
		return 1 << 31
	default:
		return 8
	}
}

// IceMode describes how the bright background half is reached.
type IceMode uint8

const (
	IceModeUnlimited IceMode = iota
	IceModeBlink
	IceModeIce
)

// FontMode describes how many fonts a buffer may carry.
type FontMode uint8

const (
	FontModeUnlimited FontMode = iota
	FontModeSauce
	FontModeSingle
	FontModeFixedSize
)

// Buffer is a layered grid of attributed cells plus terminal state,
// fonts, palette and SAUCE metadata.
type Buffer struct {
	FileName string
	Sauce    SauceMeta

	TerminalState *TerminalState
	BufferType    BufferType
	IceMode       IceMode
	FontMode      FontMode
	PaletteMode   PaletteMode

	Palette *Palette
	Layers  []*Layer

	// OverlayLayer is a transient rendering overlay consulted before
	// the layer stack.
	OverlayLayer *Layer

	IsTerminalBuffer bool

	fonts     map[int]*BitFont
	fontDirty bool

	sixelMu   sync.Mutex
	sixelJobs []*sixelJob
}

// BufferOption configures a new Buffer.
type BufferOption func(*Buffer)

// WithBufferType sets the capability tuple.
func WithBufferType(t BufferType) BufferOption {
	return func(b *Buffer) { b.BufferType = t }
}

// WithFont replaces font slot 0.
func WithFont(f *BitFont) BufferOption {
	return func(b *Buffer) { b.SetFont(0, f) }
}

// NewBuffer returns a buffer with the DOS palette, the default font,
// an unlocked editing layer 0 the parsers stream into and a locked
// background layer below it.
func NewBuffer(width, height int, opts ...BufferOption) *Buffer {
	b := &Buffer{
		TerminalState: NewTerminalState(width, height),
		Palette:       NewPalette(),
		fonts:         map[int]*BitFont{0: NewDefaultFont()},
	}
	editing := NewLayer("Editing", Size{Width: width, Height: height})
	editing.HasAlphaChannel = true
	background := NewLayer("Background", Size{Width: width, Height: height})
	background.IsLocked = true
	b.Layers = []*Layer{editing, background}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Width returns the buffer width in cells.
func (b *Buffer) Width() int { return b.TerminalState.Width }

// Height returns the buffer height in cells.
func (b *Buffer) Height() int { return b.TerminalState.Height }

// Size returns the buffer dimensions.
func (b *Buffer) Size() Size {
	return Size{Width: b.Width(), Height: b.Height()}
}

// Rectangle returns the buffer footprint at the origin.
func (b *Buffer) Rectangle() Rectangle {
	return Rectangle{Size: b.Size()}
}

// SetWidth resizes the buffer horizontally; layer contents survive
// where they remain in bounds.
func (b *Buffer) SetWidth(w int) {
	b.TerminalState.Width = w
	for _, l := range b.Layers {
		l.Size.Width = w
	}
}

// SetHeight resizes the buffer vertically.
func (b *Buffer) SetHeight(h int) {
	b.TerminalState.Height = h
}

// SetSize resizes both dimensions.
func (b *Buffer) SetSize(s Size) {
	b.SetWidth(s.Width)
	b.SetHeight(s.Height)
}

// LineCount returns the number of stored lines in layer 0.
func (b *Buffer) LineCount() int {
	if len(b.Layers) == 0 {
		return 0
	}
	return len(b.Layers[0].Lines)
}

// FirstVisibleLine returns the top of the visible window; for terminal
// buffers lines scroll away above it.
func (b *Buffer) FirstVisibleLine() int {
	if b.IsTerminalBuffer {
		return maxInt(0, b.LineCount()-b.Height())
	}
	return 0
}

// FirstEditableLine returns the first line scrolling applies to.
func (b *Buffer) FirstEditableLine() int {
	first := b.FirstVisibleLine()
	if m := b.TerminalState.MarginsUpDown; m != nil {
		return first + m.From
	}
	return first
}

// LastEditableLine returns the last line scrolling applies to.
func (b *Buffer) LastEditableLine() int {
	first := b.FirstVisibleLine()
	last := first + b.Height() - 1
	if m := b.TerminalState.MarginsUpDown; m != nil {
		last = minInt(last, first+m.To)
	}
	return last
}

// FirstEditableColumn returns the left bound of the scroll region.
func (b *Buffer) FirstEditableColumn() int {
	if m := b.TerminalState.MarginsLeftRight; m != nil {
		return m.From
	}
	return 0
}

// LastEditableColumn returns the right bound of the scroll region.
func (b *Buffer) LastEditableColumn() int {
	if m := b.TerminalState.MarginsLeftRight; m != nil {
		return minInt(b.Width()-1, m.To)
	}
	return b.Width() - 1
}

// UpperLeftPosition returns the home position for the current origin
// mode.
func (b *Buffer) UpperLeftPosition() Position {
	if b.TerminalState.OriginMode == OriginWithinMargins {
		return Pos(b.FirstEditableColumn(), b.FirstEditableLine())
	}
	return Pos(0, b.FirstVisibleLine())
}

// GetChar merges the overlay and the layer stack at pos: the first
// visible cell wins, honoring each layer's merge mode.
func (b *Buffer) GetChar(pos Position) AttributedChar {
	var (
		glyph    *AttributedChar
		attrFrom *AttributedChar
	)
	consider := func(l *Layer) *AttributedChar {
		if !l.IsVisible {
			return nil
		}
		ch := l.GetChar(pos.Sub(l.Offset))
		if !ch.IsVisible() {
			return nil
		}
		switch l.Mode {
		case LayerModeChars:
			if glyph == nil {
				glyph = &ch
			}
			return nil
		case LayerModeAttributes:
			if attrFrom == nil {
				attrFrom = &ch
			}
			return nil
		default:
			return &ch
		}
	}
	if b.OverlayLayer != nil {
		if ch := consider(b.OverlayLayer); ch != nil {
			return combineChar(*ch, glyph, attrFrom)
		}
	}
	for _, l := range b.Layers {
		if ch := consider(l); ch != nil {
			return combineChar(*ch, glyph, attrFrom)
		}
	}
	if glyph != nil || attrFrom != nil {
		return combineChar(InvisibleChar(), glyph, attrFrom)
	}
	return InvisibleChar()
}

func combineChar(base AttributedChar, glyph, attrFrom *AttributedChar) AttributedChar {
	if glyph != nil {
		base.Ch = glyph.Ch
	}
	if attrFrom != nil {
		base.Attribute = attrFrom.Attribute
	}
	return base
}

// SetChar stores a cell in the given layer at buffer coordinates.
func (b *Buffer) SetChar(layer int, pos Position, ch AttributedChar) {
	if layer < 0 || layer >= len(b.Layers) {
		return
	}
	l := b.Layers[layer]
	local := pos.Sub(l.Offset)
	if local.Y >= l.Size.Height {
		l.SetHeight(local.Y + 1)
	}
	l.SetChar(local, ch)
}

// SetHeightForPos sizes the buffer to the content cursor left behind by
// a binary loader.
func (b *Buffer) SetHeightForPos(pos Position) {
	h := pos.Y
	if pos.X > 0 {
		h++
	}
	b.SetHeight(h)
	if len(b.Layers) > 0 {
		b.Layers[0].SetHeight(h)
	}
}

// PrintChar writes ch at the caret on layer 0 and advances, honoring
// insert mode and auto-wrap.
func (b *Buffer) PrintChar(caret *Caret, ch AttributedChar) {
	if len(b.Layers) == 0 {
		return
	}
	layer := b.Layers[0]
	if caret.InsertMode {
		for len(layer.Lines) <= caret.Position.Y {
			layer.Lines = append(layer.Lines, NewLine())
		}
		layer.Lines[caret.Position.Y].InsertChar(caret.Position.X, ch)
		if len(layer.Lines[caret.Position.Y].Chars) > b.Width() {
			layer.Lines[caret.Position.Y].Chars = layer.Lines[caret.Position.Y].Chars[:b.Width()]
		}
	} else {
		b.SetChar(0, caret.Position, ch)
	}
	caret.Position.X++
	if caret.Position.X >= b.Width() {
		if b.TerminalState.AutoWrapMode == AutoWrap {
			caret.LF(b)
		} else {
			caret.Position.X--
		}
	}
}

// Font table

// GetFont returns the font in the given slot.
func (b *Buffer) GetFont(slot int) *BitFont {
	return b.fonts[slot]
}

// SetFont stores a font in the given slot.
func (b *Buffer) SetFont(slot int, f *BitFont) {
	if b.fonts == nil {
		b.fonts = map[int]*BitFont{}
	}
	b.fonts[slot] = f
	b.fontDirty = true
}

// RemoveFont drops a font slot and returns the removed font.
func (b *Buffer) RemoveFont(slot int) *BitFont {
	f := b.fonts[slot]
	delete(b.fonts, slot)
	b.fontDirty = true
	return f
}

// AppendFont stores f in the lowest unused slot and returns the slot.
func (b *Buffer) AppendFont(f *BitFont) int {
	slot := 0
	for b.fonts[slot] != nil {
		slot++
	}
	b.SetFont(slot, f)
	return slot
}

// SearchFontByName returns the slot of the font with the given name.
func (b *Buffer) SearchFontByName(name string) (int, bool) {
	for slot, f := range b.fonts {
		if f.Name == name {
			return slot, true
		}
	}
	return 0, false
}

// FontSlots returns the occupied slots in ascending order.
func (b *Buffer) FontSlots() []int {
	slots := make([]int, 0, len(b.fonts))
	for slot := range b.fonts {
		slots = append(slots, slot)
	}
	sort.Ints(slots)
	return slots
}

// HasFonts reports whether any slot beyond 0 is occupied.
func (b *Buffer) HasFonts() bool {
	for slot := range b.fonts {
		if slot != 0 {
			return true
		}
	}
	return false
}

// ClearFontTable drops every font slot.
func (b *Buffer) ClearFontTable() {
	b.fonts = map[int]*BitFont{}
	b.fontDirty = true
}

// FontDimensions returns the cell size of font slot 0.
func (b *Buffer) FontDimensions() Size {
	if f := b.fonts[0]; f != nil {
		return f.Size
	}
	return Size{Width: 8, Height: 16}
}

// ReplaceFontUsage retargets every cell referencing the from slot.
func (b *Buffer) ReplaceFontUsage(from, to int) {
	b.forEachCell(func(ch *AttributedChar) {
		if ch.Attribute.FontPage == from {
			ch.Attribute.FontPage = to
		}
	})
}

// HasSauceRelevantData reports whether saving should default to writing
// a SAUCE record.
func (b *Buffer) HasSauceRelevantData() bool {
	if b.Sauce.Title != "" || b.Sauce.Author != "" || b.Sauce.Group != "" || len(b.Sauce.Comments) > 0 {
		return true
	}
	if f := b.fonts[0]; f != nil && !f.IsDefault() {
		return true
	}
	return false
}

// Scrolling

// ScrollUp rotates the editable rectangle of layer 0 up by one line.
func (b *Buffer) ScrollUp() {
	if len(b.Layers) == 0 {
		return
	}
	layer := b.Layers[0]
	first, last := b.FirstEditableLine(), b.LastEditableLine()
	x0, x1 := b.FirstEditableColumn(), b.LastEditableColumn()
	if x0 == 0 && x1 == b.Width()-1 {
		if first < len(layer.Lines) {
			layer.RemoveLine(first)
			layer.InsertLine(minInt(last, len(layer.Lines)), NewLine())
		}
		return
	}
	for y := first; y < last; y++ {
		for x := x0; x <= x1; x++ {
			layer.SetChar(Pos(x, y), layer.GetChar(Pos(x, y+1)))
		}
	}
	for x := x0; x <= x1; x++ {
		layer.SetChar(Pos(x, last), InvisibleChar())
	}
}

// ScrollDown rotates the editable rectangle of layer 0 down by one line.
func (b *Buffer) ScrollDown() {
	if len(b.Layers) == 0 {
		return
	}
	layer := b.Layers[0]
	first, last := b.FirstEditableLine(), b.LastEditableLine()
	x0, x1 := b.FirstEditableColumn(), b.LastEditableColumn()
	if x0 == 0 && x1 == b.Width()-1 {
		if last < len(layer.Lines) {
			layer.RemoveLine(last)
		}
		layer.InsertLine(first, NewLine())
		return
	}
	for y := last; y > first; y-- {
		for x := x0; x <= x1; x++ {
			layer.SetChar(Pos(x, y), layer.GetChar(Pos(x, y-1)))
		}
	}
	for x := x0; x <= x1; x++ {
		layer.SetChar(Pos(x, first), InvisibleChar())
	}
}

// ScrollLeft rotates the editable columns of every editable row left.
func (b *Buffer) ScrollLeft() {
	b.scrollHorizontal(-1)
}

// ScrollRight rotates the editable columns of every editable row right.
func (b *Buffer) ScrollRight() {
	b.scrollHorizontal(1)
}

func (b *Buffer) scrollHorizontal(dir int) {
	if len(b.Layers) == 0 {
		return
	}
	layer := b.Layers[0]
	first, last := b.FirstEditableLine(), b.LastEditableLine()
	x0, x1 := b.FirstEditableColumn(), b.LastEditableColumn()
	for y := first; y <= last; y++ {
		if dir < 0 {
			for x := x0; x < x1; x++ {
				layer.SetChar(Pos(x, y), layer.GetChar(Pos(x+1, y)))
			}
			layer.SetChar(Pos(x1, y), InvisibleChar())
		} else {
			for x := x1; x > x0; x-- {
				layer.SetChar(Pos(x, y), layer.GetChar(Pos(x-1, y)))
			}
			layer.SetChar(Pos(x0, y), InvisibleChar())
		}
	}
}

// Erase

// ClearScreen erases the visible window and homes the caret.
func (b *Buffer) ClearScreen(caret *Caret) {
	if len(b.Layers) > 0 {
		layer := b.Layers[0]
		first := b.FirstVisibleLine()
		for y := first; y < first+b.Height() && y < len(layer.Lines); y++ {
			layer.Lines[y] = NewLine()
		}
	}
	caret.Position = b.UpperLeftPosition()
}

// ClearBufferDown erases from the caret to the end of the screen.
func (b *Buffer) ClearBufferDown(caret *Caret) {
	b.ClearLineEnd(caret)
	first := b.FirstVisibleLine()
	for y := caret.Position.Y + 1; y < first+b.Height(); y++ {
		b.clearRow(y)
	}
}

// ClearBufferUp erases from the top of the screen to the caret.
func (b *Buffer) ClearBufferUp(caret *Caret) {
	for y := b.FirstVisibleLine(); y < caret.Position.Y; y++ {
		b.clearRow(y)
	}
	b.ClearLineStart(caret)
}

// ClearLine erases the caret's entire line.
func (b *Buffer) ClearLine(caret *Caret) {
	b.clearRow(caret.Position.Y)
}

// ClearLineEnd erases from the caret to the end of its line.
func (b *Buffer) ClearLineEnd(caret *Caret) {
	for x := caret.Position.X; x < b.Width(); x++ {
		b.SetChar(0, Pos(x, caret.Position.Y), InvisibleChar())
	}
}

// ClearLineStart erases from the start of the line to the caret.
func (b *Buffer) ClearLineStart(caret *Caret) {
	for x := 0; x <= caret.Position.X && x < b.Width(); x++ {
		b.SetChar(0, Pos(x, caret.Position.Y), InvisibleChar())
	}
}

func (b *Buffer) clearRow(y int) {
	if len(b.Layers) == 0 {
		return
	}
	layer := b.Layers[0]
	if y >= 0 && y < len(layer.Lines) {
		layer.Lines[y] = NewLine()
	}
}

// RemoveTerminalLine deletes line y and pulls a blank line in at the
// bottom of the scroll region.
func (b *Buffer) RemoveTerminalLine(y int) {
	if len(b.Layers) == 0 || y >= len(b.Layers[0].Lines) {
		return
	}
	layer := b.Layers[0]
	layer.RemoveLine(y)
	if b.TerminalState.MarginsUpDown != nil {
		layer.InsertLine(b.LastEditableLine(), NewLine())
	}
}

// InsertTerminalLine pushes a blank line in at y, dropping the line at
// the bottom of the scroll region.
func (b *Buffer) InsertTerminalLine(y int) {
	if len(b.Layers) == 0 {
		return
	}
	layer := b.Layers[0]
	if b.TerminalState.MarginsUpDown != nil {
		last := b.LastEditableLine()
		if last < len(layer.Lines) {
			layer.RemoveLine(last)
		}
	}
	layer.InsertLine(y, NewLine())
}

// Mode switches

// SetIceMode rewrites cells so the buffer's visual survives the mode
// change, then records the mode.
func (b *Buffer) SetIceMode(mode IceMode) {
	switch mode {
	case IceModeIce:
		b.forEachCell(func(ch *AttributedChar) {
			if ch.Attribute.IsBlinking() {
				ch.Attribute.SetIsBlinking(false)
				if ch.Attribute.Background() < 8 {
					ch.Attribute.SetBackground(ch.Attribute.Background() + 8)
				}
			}
		})
	case IceModeBlink:
		b.forEachCell(func(ch *AttributedChar) {
			bg := ch.Attribute.Background()
			if bg < 8 || bg >= 16 {
				return
			}
			fg := ch.Attribute.Foreground()
			switch {
			case ch.Ch == 0 || ch.Ch == 32 || ch.Ch == 255:
				ch.Ch = 219
				ch.Attribute.SetForeground(bg)
				ch.Attribute.SetBackground(0)
			case ch.Ch == 219:
				ch.Attribute.SetBackground(0)
			case isHalfBlockOrShade(ch.Ch) && fg < 8:
				ch.Attribute.SetForeground(bg)
				ch.Attribute.SetBackground(fg)
				ch.Ch = partnerGlyph(ch.Ch)
			default:
				ch.Attribute.SetIsBlinking(true)
				ch.Attribute.SetBackground(bg - 8)
			}
		})
	}
	b.IceMode = mode
}

func isHalfBlockOrShade(ch rune) bool {
	return (ch >= 176 && ch <= 178) || (ch >= 220 && ch <= 223)
}

// partnerGlyph returns the glyph with inverted pixel coverage.
func partnerGlyph(ch rune) rune {
	switch ch {
	case 176:
		return 178
	case 178:
		return 176
	case 220:
		return 223
	case 223:
		return 220
	case 221:
		return 222
	case 222:
		return 221
	}
	return ch
}

// SetPaletteMode reshapes the palette and remaps every cell color.
func (b *Buffer) SetPaletteMode(mode PaletteMode) {
	switch mode {
	case PaletteModeRGB:
		// identity
	case PaletteModeFixed16:
		old := b.Palette
		b.Palette = NewPalette()
		cache := map[uint32]uint32{}
		b.forEachCell(func(ch *AttributedChar) {
			ch.Attribute.SetForeground(remapNearest(cache, old, b.Palette, ch.Attribute.Foreground()))
			ch.Attribute.SetBackground(remapNearest(cache, old, b.Palette, ch.Attribute.Background()))
		})
	case PaletteModeFree8, PaletteModeFree16:
		target := 8
		if mode == PaletteModeFree16 {
			target = 16
		}
		b.shrinkPalette(target)
	}
	b.PaletteMode = mode
}

func remapNearest(cache map[uint32]uint32, old, now *Palette, idx uint32) uint32 {
	if v, ok := cache[idx]; ok {
		return v
	}
	v := now.Nearest(old.Get(int(idx)))
	cache[idx] = v
	return v
}

// shrinkPalette keeps the most used colors, always including index 0
// and preserving their original order, then remaps the rest by nearest
// match.
func (b *Buffer) shrinkPalette(target int) {
	usage := map[uint32]int{}
	b.forEachCell(func(ch *AttributedChar) {
		if !ch.IsVisible() {
			return
		}
		usage[ch.Attribute.Foreground()]++
		usage[ch.Attribute.Background()]++
	})

	indices := make([]uint32, 0, len(usage))
	for idx := range usage {
		indices = append(indices, idx)
	}
	sort.Slice(indices, func(i, j int) bool {
		if usage[indices[i]] != usage[indices[j]] {
			return usage[indices[i]] > usage[indices[j]]
		}
		return indices[i] < indices[j]
	})

	kept := []uint32{0}
	for _, idx := range indices {
		if len(kept) >= target {
			break
		}
		if idx != 0 {
			kept = append(kept, idx)
		}
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i] < kept[j] })

	old := b.Palette
	now := &Palette{}
	direct := make(map[uint32]uint32, len(kept))
	for i, idx := range kept {
		now.Colors = append(now.Colors, old.Get(int(idx)))
		direct[idx] = uint32(i)
	}
	b.Palette = now
	cache := map[uint32]uint32{}
	b.forEachCell(func(ch *AttributedChar) {
		ch.Attribute.SetForeground(remapShrunk(cache, direct, old, now, ch.Attribute.Foreground()))
		ch.Attribute.SetBackground(remapShrunk(cache, direct, old, now, ch.Attribute.Background()))
	})
}

func remapShrunk(cache, direct map[uint32]uint32, old, now *Palette, idx uint32) uint32 {
	if v, ok := direct[idx]; ok {
		return v
	}
	return remapNearest(cache, old, now, idx)
}

func (b *Buffer) forEachCell(f func(*AttributedChar)) {
	for _, l := range b.Layers {
		for y := range l.Lines {
			for x := range l.Lines[y].Chars {
				f(&l.Lines[y].Chars[x])
			}
		}
	}
}

// Sixel workers

// SubmitSixel queues one DCS sixel payload for background decoding.
func (b *Buffer) SubmitSixel(data []byte, opts SixelOptions) {
	b.sixelMu.Lock()
	defer b.sixelMu.Unlock()
	b.sixelJobs = append(b.sixelJobs, startSixelJob(data, opts))
}

// SixelJobCount returns the number of jobs not yet drained.
func (b *Buffer) SixelJobCount() int {
	b.sixelMu.Lock()
	defer b.sixelMu.Unlock()
	return len(b.sixelJobs)
}

// UpdateSixelWorkers installs finished decode jobs from the head of the
// queue in submission order. An unfinished head job blocks later jobs.
func (b *Buffer) UpdateSixelWorkers() {
	b.sixelMu.Lock()
	defer b.sixelMu.Unlock()
	for len(b.sixelJobs) > 0 {
		head := b.sixelJobs[0]
		if !head.finished() {
			return
		}
		b.sixelJobs = b.sixelJobs[1:]
		if head.err != nil || head.sixel == nil {
			continue
		}
		b.installSixel(*head.sixel)
	}
}

// FinishSixelWorkers blocks until every queued job is drained.
func (b *Buffer) FinishSixelWorkers() {
	for {
		b.sixelMu.Lock()
		if len(b.sixelJobs) == 0 {
			b.sixelMu.Unlock()
			return
		}
		head := b.sixelJobs[0]
		b.sixelMu.Unlock()
		<-head.done
		b.UpdateSixelWorkers()
	}
}

// StopSixelWorkers cancels all in-flight jobs and discards their
// output.
func (b *Buffer) StopSixelWorkers() {
	b.sixelMu.Lock()
	defer b.sixelMu.Unlock()
	for _, job := range b.sixelJobs {
		job.cancel()
	}
	b.sixelJobs = nil
}

// installSixel adds a decoded raster to layer 0, culling older rasters
// whose screen rectangle the new one fully covers.
func (b *Buffer) installSixel(s Sixel) {
	if len(b.Layers) == 0 {
		return
	}
	layer := b.Layers[0]
	dims := b.FontDimensions()
	rect := s.ScreenRect(dims.Width, dims.Height)
	kept := layer.Sixels[:0]
	for _, old := range layer.Sixels {
		if !rect.ContainsRect(old.ScreenRect(dims.Width, dims.Height)) {
			kept = append(kept, old)
		}
	}
	layer.Sixels = append(kept, s)
	layer.UpdatedSixels = true
}

// Clone deep-copies the buffer, excluding in-flight sixel jobs.
func (b *Buffer) Clone() *Buffer {
	res := &Buffer{
		FileName:         b.FileName,
		Sauce:            b.Sauce.Clone(),
		BufferType:       b.BufferType,
		IceMode:          b.IceMode,
		FontMode:         b.FontMode,
		PaletteMode:      b.PaletteMode,
		IsTerminalBuffer: b.IsTerminalBuffer,
		Palette:          b.Palette.Clone(),
		fonts:            map[int]*BitFont{},
	}
	ts := *b.TerminalState
	ts.tabStops = append([]int(nil), b.TerminalState.tabStops...)
	res.TerminalState = &ts
	for slot, f := range b.fonts {
		res.fonts[slot] = f.Clone()
	}
	for _, l := range b.Layers {
		res.Layers = append(res.Layers, l.Clone())
	}
	if b.OverlayLayer != nil {
		res.OverlayLayer = b.OverlayLayer.Clone()
	}
	return res
}
