package textart

// OriginMode decides whether cursor addressing is absolute or relative
// to the scroll region.
type OriginMode uint8

const (
	OriginUpperLeftCorner OriginMode = iota
	OriginWithinMargins
)

// AutoWrapMode controls behavior when printing past the right edge.
type AutoWrapMode uint8

const (
	AutoWrap AutoWrapMode = iota
	NoWrap
)

// TerminalScrolling selects smooth or fast scrolling (DECSCLM).
type TerminalScrolling uint8

const (
	ScrollSmooth TerminalScrolling = iota
	ScrollFast
)

// MouseMode tracks the negotiated mouse reporting protocol.
type MouseMode uint8

const (
	MouseDefault MouseMode = iota
	MouseX10
	MouseVT200
	MouseVT200Highlight
	MouseButtonEvents
	MouseAnyEvents
	MouseFocusEvent
	MouseAlternateScroll
	MouseExtendedMode
	MouseSGRExtendedMode
	MouseURXVTExtendedMode
	MousePixelPosition
)

// Margins is an inclusive scroll-region bound pair.
type Margins struct {
	From, To int
}

// TerminalState carries the terminal-level flags and regions of a
// buffer: size, scroll margins, addressing modes, tab stops and the
// emulated line speed.
type TerminalState struct {
	Width, Height int

	MarginsUpDown    *Margins
	MarginsLeftRight *Margins

	OriginMode             OriginMode
	AutoWrapMode           AutoWrapMode
	ScrollState            TerminalScrolling
	MouseMode              MouseMode
	DECMarginModeLeftRight bool
	BracketedPasteMode     bool

	useIceColors bool
	baudRate     int
	tabStops     []int
}

// NewTerminalState returns a state with default tab stops every eight
// columns.
func NewTerminalState(width, height int) *TerminalState {
	s := &TerminalState{Width: width, Height: height}
	s.resetTabs()
	return s
}

// Reset restores the power-on state, keeping the size.
func (s *TerminalState) Reset() {
	s.MarginsUpDown = nil
	s.MarginsLeftRight = nil
	s.OriginMode = OriginUpperLeftCorner
	s.AutoWrapMode = AutoWrap
	s.ScrollState = ScrollSmooth
	s.MouseMode = MouseDefault
	s.DECMarginModeLeftRight = false
	s.BracketedPasteMode = false
	s.baudRate = 0
	s.resetTabs()
}

// UseIceColors reports whether the blink attribute is repurposed as
// bright background.
func (s *TerminalState) UseIceColors() bool { return s.useIceColors }

// SetUseIceColors toggles ice-color mode.
func (s *TerminalState) SetUseIceColors(v bool) { s.useIceColors = v }

// BaudRate returns the emulated line speed, 0 meaning unlimited.
func (s *TerminalState) BaudRate() int { return s.baudRate }

// SetBaudRate sets the emulated line speed.
func (s *TerminalState) SetBaudRate(bps int) { s.baudRate = bps }

func (s *TerminalState) resetTabs() {
	s.tabStops = s.tabStops[:0]
	for x := 8; x < s.Width; x += 8 {
		s.tabStops = append(s.tabStops, x)
	}
}

// Tabs returns the sorted tab stop columns.
func (s *TerminalState) Tabs() []int { return s.tabStops }

// TabCount returns the number of tab stops.
func (s *TerminalState) TabCount() int { return len(s.tabStops) }

// SetTabAt adds a tab stop at column x.
func (s *TerminalState) SetTabAt(x int) {
	for i, t := range s.tabStops {
		if t == x {
			return
		}
		if t > x {
			s.tabStops = append(s.tabStops, 0)
			copy(s.tabStops[i+1:], s.tabStops[i:])
			s.tabStops[i] = x
			return
		}
	}
	s.tabStops = append(s.tabStops, x)
}

// RemoveTabStop deletes the tab stop at column x, if any.
func (s *TerminalState) RemoveTabStop(x int) {
	for i, t := range s.tabStops {
		if t == x {
			s.tabStops = append(s.tabStops[:i], s.tabStops[i+1:]...)
			return
		}
	}
}

// ClearTabStops removes every tab stop.
func (s *TerminalState) ClearTabStops() {
	s.tabStops = s.tabStops[:0]
}

// NextTabStop returns the first tab stop right of x, or the last column.
func (s *TerminalState) NextTabStop(x int) int {
	for _, t := range s.tabStops {
		if t > x {
			return t
		}
	}
	return s.Width - 1
}

// PrevTabStop returns the first tab stop left of x, or column 0.
func (s *TerminalState) PrevTabStop(x int) int {
	for i := len(s.tabStops) - 1; i >= 0; i-- {
		if s.tabStops[i] < x {
			return s.tabStops[i]
		}
	}
	return 0
}

// LimitCaretPos clamps the caret into the addressable region, honoring
// origin mode and the vertical margins.
func (s *TerminalState) LimitCaretPos(buf *Buffer, caret *Caret) {
	switch s.OriginMode {
	case OriginWithinMargins:
		first := buf.FirstEditableLine()
		last := buf.LastEditableLine()
		caret.Position.Y = clampInt(caret.Position.Y, first, last)
	default:
		first := buf.FirstVisibleLine()
		bottom := first + s.Height - 1
		if !buf.IsTerminalBuffer {
			bottom = maxInt(bottom, buf.LineCount()-1)
		}
		caret.Position.Y = clampInt(caret.Position.Y, 0, bottom)
	}
	caret.Position.X = clampInt(caret.Position.X, 0, s.Width-1)
}
