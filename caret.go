package textart

// CaretShape determines how the caret is rendered by a host editor.
type CaretShape int

const (
	CaretShapeBlock CaretShape = iota
	CaretShapeUnderline
	CaretShapeBar
)

// Caret tracks the write position and the attribute applied to printed
// characters (0-based document coordinates).
type Caret struct {
	Position   Position
	Attribute  TextAttribute
	Shape      CaretShape
	InsertMode bool
	IsVisible  bool
	IsBlinking bool
}

// NewCaret creates a visible blinking block caret at the origin with
// the default attribute.
func NewCaret() *Caret {
	return &Caret{
		Attribute:  DefaultAttribute(),
		IsVisible:  true,
		IsBlinking: true,
	}
}

// Reset restores the caret defaults without moving it.
func (c *Caret) Reset() {
	c.Attribute = DefaultAttribute()
	c.InsertMode = false
	c.IsVisible = true
	c.IsBlinking = true
}

// ResetColorAttribute clears colors and flags but keeps the font page.
func (c *Caret) ResetColorAttribute() {
	page := c.Attribute.FontPage
	c.Attribute = DefaultAttribute()
	c.Attribute.FontPage = page
}

// LF moves to the start of the next line. Document buffers grow,
// terminal buffers scroll within their margins.
func (c *Caret) LF(buf *Buffer) {
	wasAtBottom := c.Position.Y >= buf.LastEditableLine()
	c.Position.X = buf.FirstEditableColumn()
	c.Position.Y++
	if buf.TerminalState.MarginsUpDown != nil && wasAtBottom && c.Position.Y > buf.LastEditableLine() {
		buf.ScrollUp()
		c.Position.Y = buf.LastEditableLine()
		return
	}
	if len(buf.Layers) > 0 {
		layer := buf.Layers[0]
		for c.Position.Y >= len(layer.Lines) {
			layer.Lines = append(layer.Lines, NewLine())
		}
		if !buf.IsTerminalBuffer {
			if len(layer.Lines) > layer.Size.Height {
				layer.Size.Height = len(layer.Lines)
			}
			return
		}
	}
	buf.TerminalState.LimitCaretPos(buf, c)
}

// FF clears the screen, resets the terminal state and the caret colors,
// and cancels any pending sixel decodes.
func (c *Caret) FF(buf *Buffer) {
	buf.TerminalState.Reset()
	buf.StopSixelWorkers()
	if len(buf.Layers) > 0 {
		buf.Layers[0].Clear()
		buf.Layers[0].Sixels = nil
	}
	c.Position = Pos(0, 0)
	c.ResetColorAttribute()
	c.IsVisible = true
}

// CR moves to the first editable column.
func (c *Caret) CR(buf *Buffer) {
	c.Position.X = buf.FirstEditableColumn()
}

// BS steps back one column and blanks the cell with the current colors.
func (c *Caret) BS(buf *Buffer) {
	c.Position.X = maxInt(0, c.Position.X-1)
	buf.SetChar(0, c.Position, NewAttributedChar(' ', c.Attribute))
}

// Del removes the character under the caret, sliding the rest of the
// line left.
func (c *Caret) Del(buf *Buffer) {
	if len(buf.Layers) == 0 {
		return
	}
	layer := buf.Layers[0]
	if c.Position.Y >= 0 && c.Position.Y < len(layer.Lines) {
		layer.Lines[c.Position.Y].RemoveChar(c.Position.X)
	}
}

// Ins inserts a blank with the current colors, sliding the line right.
func (c *Caret) Ins(buf *Buffer) {
	if len(buf.Layers) == 0 {
		return
	}
	layer := buf.Layers[0]
	for len(layer.Lines) <= c.Position.Y {
		layer.Lines = append(layer.Lines, NewLine())
	}
	layer.Lines[c.Position.Y].InsertChar(c.Position.X, NewAttributedChar(' ', c.Attribute))
}

// EraseCharacter blanks n cells to the right without moving the caret.
func (c *Caret) EraseCharacter(buf *Buffer, n int) {
	ch := NewAttributedChar(' ', c.Attribute)
	for i := 0; i < n; i++ {
		buf.SetChar(0, Pos(c.Position.X+i, c.Position.Y), ch)
	}
}

// EOL moves to the last column of the current line.
func (c *Caret) EOL(buf *Buffer) {
	c.Position.X = buf.Width() - 1
}

// Home moves to the upper left of the current origin.
func (c *Caret) Home(buf *Buffer) {
	c.Position = buf.UpperLeftPosition()
}

// Left moves n columns left, clamped to the editable region.
func (c *Caret) Left(buf *Buffer, n int) {
	c.Position.X -= n
	buf.TerminalState.LimitCaretPos(buf, c)
}

// Right moves n columns right, clamped to the editable region.
func (c *Caret) Right(buf *Buffer, n int) {
	c.Position.X += n
	buf.TerminalState.LimitCaretPos(buf, c)
}

// Up moves n lines up, clamped to the editable region.
func (c *Caret) Up(buf *Buffer, n int) {
	c.Position.Y -= n
	buf.TerminalState.LimitCaretPos(buf, c)
}

// Down moves n lines down, clamped to the editable region.
func (c *Caret) Down(buf *Buffer, n int) {
	c.Position.Y += n
	buf.TerminalState.LimitCaretPos(buf, c)
}

// Index moves one line down, scrolling when the caret sits on the last
// editable line.
func (c *Caret) Index(buf *Buffer) {
	if c.Position.Y >= buf.LastEditableLine() {
		buf.ScrollUp()
		buf.TerminalState.LimitCaretPos(buf, c)
		return
	}
	c.Position.Y++
	buf.TerminalState.LimitCaretPos(buf, c)
}

// ReverseIndex moves one line up, scrolling when the caret sits on the
// first editable line.
func (c *Caret) ReverseIndex(buf *Buffer) {
	if c.Position.Y <= buf.FirstEditableLine() {
		buf.ScrollDown()
		buf.TerminalState.LimitCaretPos(buf, c)
		return
	}
	c.Position.Y--
	buf.TerminalState.LimitCaretPos(buf, c)
}

// NextLine is Index plus a carriage return.
func (c *Caret) NextLine(buf *Buffer) {
	c.Index(buf)
	c.CR(buf)
}
