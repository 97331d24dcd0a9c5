package textart

import "encoding/binary"

// LayerRole describes what a layer is for.
type LayerRole uint8

const (
	LayerRoleNormal LayerRole = iota
	LayerRolePasteImage
	LayerRolePastePreview
)

// LayerMode controls how a layer's cells merge with the layers below.
type LayerMode uint8

const (
	LayerModeNormal     LayerMode = iota // cell replaces everything below
	LayerModeChars                       // only the glyph is taken
	LayerModeAttributes                  // only the attribute is taken
)

// HyperLink is a clickable region recorded by OSC 8 sequences.
type HyperLink struct {
	URL      string
	Position Position
	Length   int
}

// Layer is an offsetable grid of attributed cells plus an overlay of
// decoded sixel rasters.
type Layer struct {
	Title string
	Role  LayerRole
	Mode  LayerMode

	Offset Position
	Size   Size

	Lines  []Line
	Sixels []Sixel

	IsVisible        bool
	IsLocked         bool
	IsPositionLocked bool
	HasAlphaChannel  bool
	UpdatedSixels    bool

	DefaultFontPage int
	Hyperlinks      []HyperLink
}

// NewLayer returns a visible, unlocked layer of the given size.
func NewLayer(title string, size Size) *Layer {
	return &Layer{Title: title, Size: size, IsVisible: true}
}

// Rectangle returns the layer's footprint in buffer coordinates.
func (l *Layer) Rectangle() Rectangle {
	return Rectangle{Start: l.Offset, Size: l.Size}
}

// Width returns the layer width in cells.
func (l *Layer) Width() int { return l.Size.Width }

// Height returns the layer height in cells.
func (l *Layer) Height() int { return l.Size.Height }

// GetChar returns the cell at the layer-local position, or an invisible
// cell when the position is outside the layer or nothing is stored.
func (l *Layer) GetChar(pos Position) AttributedChar {
	if pos.X < 0 || pos.Y < 0 || pos.X >= l.Size.Width || pos.Y >= l.Size.Height {
		return InvisibleChar()
	}
	if pos.Y >= len(l.Lines) {
		if l.HasAlphaChannel {
			return InvisibleChar()
		}
		return DefaultChar()
	}
	ch := l.Lines[pos.Y].GetChar(pos.X)
	if !ch.IsVisible() && !l.HasAlphaChannel {
		return DefaultChar()
	}
	return ch
}

// RawChar returns the stored cell without the alpha substitution
// GetChar applies; out of bounds positions read as invisible.
func (l *Layer) RawChar(pos Position) AttributedChar {
	if pos.X < 0 || pos.Y < 0 || pos.Y >= len(l.Lines) {
		return InvisibleChar()
	}
	return l.Lines[pos.Y].GetChar(pos.X)
}

// SetChar stores a cell at the layer-local position. Writes outside the
// layer or to a locked layer are dropped.
func (l *Layer) SetChar(pos Position, ch AttributedChar) {
	if l.IsLocked || pos.X < 0 || pos.Y < 0 || pos.X >= l.Size.Width || pos.Y >= l.Size.Height {
		return
	}
	for len(l.Lines) <= pos.Y {
		l.Lines = append(l.Lines, NewLine())
	}
	l.Lines[pos.Y].SetChar(pos.X, ch)
}

// SwapChar exchanges the cells at two layer-local positions.
func (l *Layer) SwapChar(a, b Position) {
	ca, cb := l.GetChar(a), l.GetChar(b)
	l.SetChar(a, cb)
	l.SetChar(b, ca)
}

// SetHeight grows or truncates the layer to h rows.
func (l *Layer) SetHeight(h int) {
	l.Size.Height = h
	if len(l.Lines) > h {
		l.Lines = l.Lines[:h]
	}
}

// InsertLine places line at row index, growing the layer as needed.
func (l *Layer) InsertLine(index int, line Line) {
	if index < 0 {
		return
	}
	for len(l.Lines) < index {
		l.Lines = append(l.Lines, NewLine())
	}
	l.Lines = append(l.Lines, Line{})
	copy(l.Lines[index+1:], l.Lines[index:])
	l.Lines[index] = line
	if len(l.Lines) > l.Size.Height {
		l.Size.Height = len(l.Lines)
	}
}

// RemoveLine deletes the row at index.
func (l *Layer) RemoveLine(index int) {
	if index < 0 || index >= len(l.Lines) {
		return
	}
	l.Lines = append(l.Lines[:index], l.Lines[index+1:]...)
}

// Clear drops all cell and raster content.
func (l *Layer) Clear() {
	l.Lines = nil
	l.Sixels = nil
	l.Hyperlinks = nil
}

// AddHyperlink records a clickable region.
func (l *Layer) AddHyperlink(h HyperLink) {
	l.Hyperlinks = append(l.Hyperlinks, h)
}

// Clone deep-copies the layer.
func (l *Layer) Clone() *Layer {
	res := *l
	res.Lines = make([]Line, len(l.Lines))
	for i := range l.Lines {
		res.Lines[i] = l.Lines[i].Clone()
	}
	res.Sixels = make([]Sixel, len(l.Sixels))
	for i := range l.Sixels {
		res.Sixels[i] = l.Sixels[i].Clone()
	}
	res.Hyperlinks = append([]HyperLink(nil), l.Hyperlinks...)
	return &res
}

// LayerFromArea deep-copies the cells of src inside area into a fresh
// layer aligned to area's corner.
func LayerFromArea(src *Layer, area Rectangle) *Layer {
	res := NewLayer(src.Title, area.Size)
	res.Role = src.Role
	res.HasAlphaChannel = src.HasAlphaChannel
	res.Offset = area.Start
	for y := 0; y < area.Size.Height; y++ {
		for x := 0; x < area.Size.Width; x++ {
			pos := Pos(x, y)
			res.SetChar(pos, src.GetChar(pos.Add(area.Start)))
		}
	}
	return res
}

// clipboard cell record: u16 ch, u16 attr bits, u16 font page, u32 bg,
// u32 fg, little-endian, preceded by a (tag, x, y, w, h) header.
const clipboardCellSize = 2 + 2 + 2 + 4 + 4

// ToClipboardData serializes the layer's cells for clipboard transfer.
func (l *Layer) ToClipboardData() []byte {
	res := make([]byte, 0, 18+l.Size.Width*l.Size.Height*clipboardCellSize)
	res = binary.LittleEndian.AppendUint16(res, 0) // tag
	res = binary.LittleEndian.AppendUint32(res, uint32(int32(l.Offset.X)))
	res = binary.LittleEndian.AppendUint32(res, uint32(int32(l.Offset.Y)))
	res = binary.LittleEndian.AppendUint32(res, uint32(int32(l.Size.Width)))
	res = binary.LittleEndian.AppendUint32(res, uint32(int32(l.Size.Height)))
	for y := 0; y < l.Size.Height; y++ {
		for x := 0; x < l.Size.Width; x++ {
			ch := l.GetChar(Pos(x, y))
			res = binary.LittleEndian.AppendUint16(res, uint16(ch.Ch))
			res = binary.LittleEndian.AppendUint16(res, ch.Attribute.FlagBits())
			res = binary.LittleEndian.AppendUint16(res, uint16(ch.Attribute.FontPage))
			res = binary.LittleEndian.AppendUint32(res, ch.Attribute.Background())
			res = binary.LittleEndian.AppendUint32(res, ch.Attribute.Foreground())
		}
	}
	return res
}

// LayerFromClipboardData reverses ToClipboardData. It returns nil when
// the payload is malformed.
func LayerFromClipboardData(data []byte) *Layer {
	if len(data) < 18 || binary.LittleEndian.Uint16(data) != 0 {
		return nil
	}
	x := int(int32(binary.LittleEndian.Uint32(data[2:])))
	y := int(int32(binary.LittleEndian.Uint32(data[6:])))
	w := int(int32(binary.LittleEndian.Uint32(data[10:])))
	h := int(int32(binary.LittleEndian.Uint32(data[14:])))
	if w <= 0 || h <= 0 || len(data) < 18+w*h*clipboardCellSize {
		return nil
	}
	res := NewLayer("Pasted", Size{Width: w, Height: h})
	res.Role = LayerRolePasteImage
	res.HasAlphaChannel = true
	res.Offset = Pos(x, y)
	o := 18
	for cy := 0; cy < h; cy++ {
		for cx := 0; cx < w; cx++ {
			var attr TextAttribute
			ch := rune(binary.LittleEndian.Uint16(data[o:]))
			attr.SetFlagBits(binary.LittleEndian.Uint16(data[o+2:]))
			attr.FontPage = int(binary.LittleEndian.Uint16(data[o+4:]))
			attr.SetBackground(binary.LittleEndian.Uint32(data[o+6:]))
			attr.SetForeground(binary.LittleEndian.Uint32(data[o+10:]))
			res.SetChar(Pos(cx, cy), AttributedChar{Ch: ch, Attribute: attr})
			o += clipboardCellSize
		}
	}
	return res
}
