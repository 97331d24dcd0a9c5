package textart

// Line is a growable row of attributed cells. Cells beyond the stored
// length read as invisible.
type Line struct {
	Chars []AttributedChar
}

// NewLine returns an empty line.
func NewLine() Line {
	return Line{}
}

// GetChar returns the cell at column x, or an invisible cell when x is
// out of range.
func (l *Line) GetChar(x int) AttributedChar {
	if x < 0 || x >= len(l.Chars) {
		return InvisibleChar()
	}
	return l.Chars[x]
}

// SetChar stores ch at column x, padding the gap with invisible cells.
func (l *Line) SetChar(x int, ch AttributedChar) {
	if x < 0 {
		return
	}
	for len(l.Chars) <= x {
		l.Chars = append(l.Chars, InvisibleChar())
	}
	l.Chars[x] = ch
}

// InsertChar slides the tail right and places ch at column x.
func (l *Line) InsertChar(x int, ch AttributedChar) {
	if x < 0 {
		return
	}
	for len(l.Chars) < x {
		l.Chars = append(l.Chars, InvisibleChar())
	}
	l.Chars = append(l.Chars, InvisibleChar())
	copy(l.Chars[x+1:], l.Chars[x:])
	l.Chars[x] = ch
}

// RemoveChar deletes the cell at column x, sliding the tail left.
func (l *Line) RemoveChar(x int) {
	if x < 0 || x >= len(l.Chars) {
		return
	}
	l.Chars = append(l.Chars[:x], l.Chars[x+1:]...)
}

// Length returns the column after the last visible, non-transparent cell.
func (l *Line) Length() int {
	for x := len(l.Chars) - 1; x >= 0; x-- {
		ch := l.Chars[x]
		if ch.IsVisible() && !ch.IsTransparent() {
			return x + 1
		}
	}
	return 0
}

// Clone deep-copies the line.
func (l *Line) Clone() Line {
	res := Line{Chars: make([]AttributedChar, len(l.Chars))}
	copy(res.Chars, l.Chars)
	return res
}
