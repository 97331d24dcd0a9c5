package textart

// SelectionShape picks between rectangular and line-wise selections.
type SelectionShape uint8

const (
	SelectionRectangle SelectionShape = iota
	SelectionLines
)

// AddType modifies how a drag combines with the existing selection
// mask.
type AddType uint8

const (
	AddTypeDefault AddType = iota
	AddTypeAdd
	AddTypeSubtract
)

// Selection is an active anchor/lead drag region.
type Selection struct {
	Anchor Position
	Lead   Position
	Shape  SelectionShape
	Add    AddType
	Locked bool
}

// NewSelection creates a rectangular selection covering rect.
func NewSelection(rect Rectangle) Selection {
	return Selection{
		Anchor: rect.Start,
		Lead:   rect.Start.Add(Pos(rect.Size.Width, rect.Size.Height)),
	}
}

// Rectangle returns the normalized bounds of the drag.
func (s Selection) Rectangle() Rectangle {
	x0 := minInt(s.Anchor.X, s.Lead.X)
	y0 := minInt(s.Anchor.Y, s.Lead.Y)
	x1 := maxInt(s.Anchor.X, s.Lead.X)
	y1 := maxInt(s.Anchor.Y, s.Lead.Y)
	return Rect(x0, y0, x1-x0, y1-y0)
}

// IsEmpty reports whether the drag covers no cells.
func (s Selection) IsEmpty() bool {
	return s.Rectangle().IsEmpty()
}

// SelectionMask is a persistent per-cell selection bitmap, anchored at
// an offset so it can cover negative coordinates.
type SelectionMask struct {
	offset Position
	size   Size
	bits   []bool
}

// IsEmpty reports whether no cell is selected.
func (m *SelectionMask) IsEmpty() bool {
	for _, b := range m.bits {
		if b {
			return false
		}
	}
	return true
}

// Clear removes every selected cell.
func (m *SelectionMask) Clear() {
	m.bits = nil
	m.size = Size{}
}

// Rectangle returns the mask's covered area.
func (m *SelectionMask) Rectangle() Rectangle {
	return Rectangle{Start: m.offset, Size: m.size}
}

// GetIsSelected reports whether pos is in the mask.
func (m *SelectionMask) GetIsSelected(pos Position) bool {
	p := pos.Sub(m.offset)
	if p.X < 0 || p.Y < 0 || p.X >= m.size.Width || p.Y >= m.size.Height {
		return false
	}
	return m.bits[p.Y*m.size.Width+p.X]
}

func (m *SelectionMask) set(pos Position, v bool) {
	p := pos.Sub(m.offset)
	m.bits[p.Y*m.size.Width+p.X] = v
}

// ensure grows the mask to include rect.
func (m *SelectionMask) ensure(rect Rectangle) {
	if rect.IsEmpty() {
		return
	}
	if m.bits == nil {
		m.offset = rect.Start
		m.size = rect.Size
		m.bits = make([]bool, rect.Size.Width*rect.Size.Height)
		return
	}
	total := m.Rectangle().Union(rect)
	if total == m.Rectangle() {
		return
	}
	bits := make([]bool, total.Size.Width*total.Size.Height)
	for y := 0; y < m.size.Height; y++ {
		for x := 0; x < m.size.Width; x++ {
			if m.bits[y*m.size.Width+x] {
				p := m.offset.Add(Pos(x, y)).Sub(total.Start)
				bits[p.Y*total.Size.Width+p.X] = true
			}
		}
	}
	m.offset = total.Start
	m.size = total.Size
	m.bits = bits
}

// AddRectangle selects every cell of rect.
func (m *SelectionMask) AddRectangle(rect Rectangle) {
	m.ensure(rect)
	for y := rect.Start.Y; y < rect.Start.Y+rect.Size.Height; y++ {
		for x := rect.Start.X; x < rect.Start.X+rect.Size.Width; x++ {
			m.set(Pos(x, y), true)
		}
	}
}

// RemoveRectangle deselects every cell of rect.
func (m *SelectionMask) RemoveRectangle(rect Rectangle) {
	for y := rect.Start.Y; y < rect.Start.Y+rect.Size.Height; y++ {
		for x := rect.Start.X; x < rect.Start.X+rect.Size.Width; x++ {
			if m.GetIsSelected(Pos(x, y)) {
				m.set(Pos(x, y), false)
			}
		}
	}
}

// Clone deep-copies the mask.
func (m *SelectionMask) Clone() *SelectionMask {
	return &SelectionMask{
		offset: m.offset,
		size:   m.size,
		bits:   append([]bool(nil), m.bits...),
	}
}
