package textart

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

// ansiColorOrder maps ANSI SGR color numbers (0-7) onto DOS palette
// indices.
var ansiColorOrder = [8]uint32{0, 4, 2, 6, 1, 5, 3, 7}

// ansiBaudRates indexes the DECSCS speed table (CSI Ps1;Ps2 *r).
var ansiBaudRates = [12]uint32{0, 300, 600, 1200, 2400, 4800, 9600, 19200, 38400, 57600, 76800, 115200}

type ansiState uint8

const (
	ansiDefault ansiState = iota
	ansiReadEscape
	ansiReadCSI
	ansiReadCSICommand // CSI ?
	ansiEndCSI         // intermediate byte seen, final byte pending
	ansiRecordDCS
	ansiReadOSC
	ansiReadAPS
	ansiParseMusic
)

const maxMacroSlots = 64

// AnsiParser interprets the ANSI escape dialect used by BBS-era art:
// CSI cursor movement and SGR, DEC private modes, DCS sixel graphics,
// macros, CTerm font loading, OSC hyperlinks and ANSI music.
type AnsiParser struct {
	ASCIIParser

	state    ansiState
	midByte  byte // intermediate byte of the pending CSI ('*', '$', ' ')
	params   []int
	inParam  bool
	seq      strings.Builder // collected bytes for error reporting
	dcs      strings.Builder
	osc      strings.Builder
	oscEsc   bool
	dcsEsc   bool
	savedPos *Position
	lastChar AttributedChar

	macros map[int]string

	MusicOption MusicOption
	music       *musicBuilder

	// BufferType mirrors the capability tuple the stream declared via
	// ice mode toggles.
	fontPage int
}

// NewAnsiParser creates an ANSI parser with music disabled.
func NewAnsiParser() *AnsiParser {
	return &AnsiParser{macros: map[int]string{}}
}

func (p *AnsiParser) beginCSI() {
	p.state = ansiReadCSI
	p.midByte = 0
	p.params = p.params[:0]
	p.inParam = false
	p.seq.Reset()
	p.seq.WriteString("\x1B[")
}

func (p *AnsiParser) abort() {
	p.state = ansiDefault
}

// Print consumes one character of the stream.
func (p *AnsiParser) Print(buf *Buffer, caret *Caret, ch rune) (Action, error) {
	switch p.state {
	case ansiReadEscape:
		return p.readEscape(buf, caret, ch)
	case ansiReadCSI:
		return p.readCSI(buf, caret, ch)
	case ansiReadCSICommand:
		return p.readCSICommand(buf, caret, ch)
	case ansiEndCSI:
		return p.endCSI(buf, caret, ch)
	case ansiRecordDCS:
		return p.recordDCS(buf, caret, ch)
	case ansiReadOSC:
		return p.readOSC(buf, caret, ch)
	case ansiReadAPS:
		return p.readAPS(ch)
	case ansiParseMusic:
		return p.readMusic(ch)
	}
	return p.printDefault(buf, caret, ch)
}

func (p *AnsiParser) printDefault(buf *Buffer, caret *Caret, ch rune) (Action, error) {
	switch ch {
	case '\x1B':
		p.state = ansiReadEscape
		return NoneAction(), nil
	case 0, 0xFF:
		caret.ResetColorAttribute()
		return NoneAction(), nil
	case '\n':
		caret.LF(buf)
	case '\x0C':
		caret.FF(buf)
	case '\r':
		caret.CR(buf)
	case '\b':
		caret.BS(buf)
	case '\x07':
		return BeepAction(), nil
	case '\t':
		caret.Position.X = buf.TerminalState.NextTabStop(caret.Position.X)
	case '\x7F':
		caret.Del(buf)
	default:
		attr := caret.Attribute
		attr.FontPage = p.fontPage
		cell := NewAttributedChar(ch, attr)
		p.lastChar = cell
		buf.PrintChar(caret, cell)
	}
	return NoneAction(), nil
}

func (p *AnsiParser) readEscape(buf *Buffer, caret *Caret, ch rune) (Action, error) {
	p.state = ansiDefault
	switch ch {
	case '[':
		p.beginCSI()
	case ']':
		p.state = ansiReadOSC
		p.osc.Reset()
		p.oscEsc = false
	case 'P':
		p.state = ansiRecordDCS
		p.dcs.Reset()
		p.dcsEsc = false
	case '_':
		p.state = ansiReadAPS
	case '7':
		pos := caret.Position
		p.savedPos = &pos
	case '8':
		if p.savedPos != nil {
			caret.Position = *p.savedPos
			buf.TerminalState.LimitCaretPos(buf, caret)
		}
	case 'c':
		// RIS
		caret.FF(buf)
		caret.Reset()
		p.fontPage = 0
		p.macros = map[int]string{}
	case 'D':
		caret.Index(buf)
	case 'M':
		caret.ReverseIndex(buf)
	case 'E':
		caret.NextLine(buf)
	case 'H':
		buf.TerminalState.SetTabAt(caret.Position.X)
	case '\\':
		// stray terminator
	default:
		return NoneAction(), parserErr(ErrUnsupportedEscapeSequence, "\x1B%c", ch)
	}
	return NoneAction(), nil
}

func (p *AnsiParser) pushDigit(ch rune) {
	if !p.inParam {
		p.params = append(p.params, 0)
		p.inParam = true
	}
	p.params[len(p.params)-1] = p.params[len(p.params)-1]*10 + int(ch-'0')
}

// param returns parameter i, or def when missing or zero.
func (p *AnsiParser) param(i, def int) int {
	if i < len(p.params) && p.params[i] > 0 {
		return p.params[i]
	}
	return def
}

// rawParam returns parameter i or def when absent, keeping zeros.
func (p *AnsiParser) rawParam(i, def int) int {
	if i < len(p.params) {
		return p.params[i]
	}
	return def
}

func (p *AnsiParser) readCSI(buf *Buffer, caret *Caret, ch rune) (Action, error) {
	p.seq.WriteRune(ch)
	switch {
	case ch >= '0' && ch <= '9':
		p.pushDigit(ch)
		return NoneAction(), nil
	case ch == ';':
		if !p.inParam {
			p.params = append(p.params, 0)
		}
		p.inParam = false
		return NoneAction(), nil
	case ch == '?':
		p.state = ansiReadCSICommand
		return NoneAction(), nil
	case ch == '*' || ch == '$' || ch == ' ':
		p.midByte = byte(ch)
		p.state = ansiEndCSI
		return NoneAction(), nil
	}
	p.state = ansiDefault
	return p.dispatchCSI(buf, caret, ch)
}

func (p *AnsiParser) dispatchCSI(buf *Buffer, caret *Caret, ch rune) (Action, error) {
	switch ch {
	case 'm':
		return p.selectGraphicRendition(buf, caret)

	case 'H', 'f':
		caret.Position.Y = buf.FirstVisibleLine() + p.param(0, 1) - 1
		caret.Position.X = p.rawParam(1, 1) - 1
		if caret.Position.X < 0 {
			caret.Position.X = 0
		}
		buf.TerminalState.LimitCaretPos(buf, caret)

	case 'C':
		caret.Right(buf, p.param(0, 1))
	case 'j', 'D':
		caret.Left(buf, p.param(0, 1))
	case 'k', 'A':
		caret.Up(buf, p.param(0, 1))
	case 'B':
		caret.Down(buf, p.param(0, 1))

	case 'd': // VPA
		caret.Position.Y = buf.FirstVisibleLine() + p.param(0, 1) - 1
		buf.TerminalState.LimitCaretPos(buf, caret)
	case 'e': // VPR
		caret.Down(buf, p.param(0, 1))
	case '\'': // HPA
		x := p.param(0, 1) - 1
		if len(buf.Layers) > 0 && caret.Position.Y < len(buf.Layers[0].Lines) {
			x = minInt(x, buf.Layers[0].Lines[caret.Position.Y].Length()+1)
		}
		caret.Position.X = x
		buf.TerminalState.LimitCaretPos(buf, caret)
	case 'a': // HPR
		caret.Right(buf, p.param(0, 1))
	case 'G': // CHA
		caret.Position.X = p.param(0, 1) - 1
		buf.TerminalState.LimitCaretPos(buf, caret)
	case 'E': // CNL
		caret.Down(buf, p.param(0, 1))
		caret.CR(buf)
	case 'F': // CPL
		caret.Up(buf, p.param(0, 1))
		caret.CR(buf)

	case 'n':
		return p.deviceStatusReport(buf, caret)

	case 'c': // DA
		return SendStringAction("\x1B[?1;0c"), nil

	case 'X': // ECH
		caret.EraseCharacter(buf, p.param(0, 1))
	case '@': // ICH
		for i := 0; i < p.param(0, 1); i++ {
			caret.Ins(buf)
		}
	case 'P': // DCH
		for i := 0; i < p.param(0, 1); i++ {
			caret.Del(buf)
		}
	case 'L': // IL
		for i := 0; i < p.param(0, 1); i++ {
			buf.InsertTerminalLine(caret.Position.Y)
		}
	case 'M':
		if p.MusicOption == MusicConflicting || p.MusicOption == MusicBoth {
			return p.enterMusic()
		}
		for i := 0; i < p.param(0, 1); i++ {
			buf.RemoveTerminalLine(caret.Position.Y)
		}
	case 'N':
		if p.MusicOption == MusicBanana || p.MusicOption == MusicBoth {
			return p.enterMusic()
		}
		return NoneAction(), parserErr(ErrUnsupportedEscapeSequence, "%s", p.seq.String())
	case '|':
		if p.MusicOption != MusicOff {
			return p.enterMusic()
		}
		return NoneAction(), parserErr(ErrUnsupportedEscapeSequence, "%s", p.seq.String())

	case 'J':
		switch p.rawParam(0, 0) {
		case 0:
			buf.ClearBufferDown(caret)
		case 1:
			buf.ClearBufferUp(caret)
		case 2, 3:
			buf.ClearScreen(caret)
		default:
			return NoneAction(), parserErr(ErrUnsupportedEscapeSequence, "%s", p.seq.String())
		}
	case 'K':
		switch p.rawParam(0, 0) {
		case 0:
			buf.ClearLineEnd(caret)
		case 1:
			buf.ClearLineStart(caret)
		case 2:
			buf.ClearLine(caret)
		default:
			return NoneAction(), parserErr(ErrUnsupportedEscapeSequence, "%s", p.seq.String())
		}

	case 'r': // DECSTBM
		return p.setTopBottomMargins(buf, caret)
	case 's':
		if buf.TerminalState.DECMarginModeLeftRight {
			start := p.param(0, 1) - 1
			end := p.param(1, buf.Width()) - 1
			if start > end {
				buf.TerminalState.MarginsLeftRight = nil
			} else {
				buf.TerminalState.MarginsLeftRight = &Margins{From: start, To: end}
			}
		} else {
			pos := caret.Position
			p.savedPos = &pos
		}
	case 'u':
		if p.savedPos != nil {
			caret.Position = *p.savedPos
			buf.TerminalState.LimitCaretPos(buf, caret)
		}

	case 'h':
		if p.rawParam(0, 0) == 4 {
			caret.InsertMode = true
		} else {
			return NoneAction(), parserErr(ErrUnsupportedEscapeSequence, "%s", p.seq.String())
		}
	case 'l':
		if p.rawParam(0, 0) == 4 {
			caret.InsertMode = false
		} else {
			return NoneAction(), parserErr(ErrUnsupportedEscapeSequence, "%s", p.seq.String())
		}

	case '~':
		switch p.rawParam(0, 0) {
		case 1:
			caret.Position.X = 0
		case 2:
			caret.Ins(buf)
		case 3:
			caret.Del(buf)
		case 4:
			caret.EOL(buf)
		case 5, 6:
			// page up/down: no-op
		default:
			return NoneAction(), parserErr(ErrUnsupportedEscapeSequence, "%s", p.seq.String())
		}

	case 't':
		return p.setSpecificColor(buf, caret)

	case 'S':
		for i := 0; i < p.param(0, 1); i++ {
			buf.ScrollUp()
		}
	case 'T':
		for i := 0; i < p.param(0, 1); i++ {
			buf.ScrollDown()
		}

	case 'b': // REP
		for i := 0; i < p.param(0, 1); i++ {
			buf.PrintChar(caret, p.lastChar)
		}

	case 'g': // TBC
		switch p.rawParam(0, 0) {
		case 0:
			buf.TerminalState.RemoveTabStop(caret.Position.X)
		case 3, 5:
			buf.TerminalState.ClearTabStops()
		default:
			return NoneAction(), parserErr(ErrUnsupportedEscapeSequence, "%s", p.seq.String())
		}
	case 'Y': // CVT
		for i := 0; i < p.param(0, 1); i++ {
			caret.Position.X = buf.TerminalState.NextTabStop(caret.Position.X)
		}
	case 'Z': // CBT
		for i := 0; i < p.param(0, 1); i++ {
			caret.Position.X = buf.TerminalState.PrevTabStop(caret.Position.X)
		}

	default:
		if ch >= 0x40 && ch <= 0x7E {
			return NoneAction(), parserErr(ErrUnsupportedEscapeSequence, "%s", p.seq.String())
		}
		return NoneAction(), parserErr(ErrUnsupportedEscapeSequence, "%s", p.seq.String())
	}
	return NoneAction(), nil
}

func (p *AnsiParser) selectGraphicRendition(buf *Buffer, caret *Caret) (Action, error) {
	if len(p.params) == 0 {
		p.params = append(p.params, 0)
	}
	for i := 0; i < len(p.params); i++ {
		n := p.params[i]
		switch {
		case n == 0:
			page := caret.Attribute.FontPage
			caret.Attribute = DefaultAttribute()
			caret.Attribute.FontPage = page
		case n == 1:
			caret.Attribute.SetIsBold(true)
		case n == 2:
			caret.Attribute.SetIsFaint(true)
		case n == 3:
			caret.Attribute.SetIsItalic(true)
		case n == 4:
			caret.Attribute.SetIsUnderlined(true)
		case n == 5 || n == 6:
			caret.Attribute.SetIsBlinking(true)
		case n == 7:
			fg := caret.Attribute.Foreground()
			caret.Attribute.SetForeground(caret.Attribute.Background())
			caret.Attribute.SetBackground(fg)
		case n == 8:
			caret.Attribute.SetIsConcealed(true)
		case n == 9:
			caret.Attribute.SetIsCrossedOut(true)
		case n == 10:
			p.fontPage = 0
			caret.Attribute.FontPage = 0
		case n >= 11 && n <= 19:
			// alternate fonts: not mapped
		case n == 21:
			caret.Attribute.SetIsDoubleUnderlined(true)
		case n == 22:
			caret.Attribute.SetIsBold(false)
			caret.Attribute.SetIsFaint(false)
		case n == 23:
			caret.Attribute.SetIsItalic(false)
		case n == 24:
			caret.Attribute.SetIsUnderlined(false)
			caret.Attribute.SetIsDoubleUnderlined(false)
		case n == 25:
			caret.Attribute.SetIsBlinking(false)
		case n == 27:
			return NoneAction(), parserErr(ErrUnsupportedSGR, "%s", p.seq.String())
		case n == 28:
			caret.Attribute.SetIsConcealed(false)
		case n == 29:
			caret.Attribute.SetIsCrossedOut(false)
		case n >= 30 && n <= 37:
			caret.Attribute.SetForeground(ansiColorOrder[n-30])
		case n == 38:
			idx, skip, err := p.extendedColor(buf, i)
			if err != nil {
				return NoneAction(), err
			}
			caret.Attribute.SetForeground(idx)
			i += skip
		case n == 39:
			caret.Attribute.SetForeground(7)
		case n >= 40 && n <= 47:
			caret.Attribute.SetBackground(ansiColorOrder[n-40])
		case n == 48:
			idx, skip, err := p.extendedColor(buf, i)
			if err != nil {
				return NoneAction(), err
			}
			caret.Attribute.SetBackground(idx)
			i += skip
		case n == 49:
			caret.Attribute.SetBackground(0)
		case n >= 90 && n <= 97:
			caret.Attribute.SetForeground(8 + ansiColorOrder[n-90])
		case n >= 100 && n <= 107:
			caret.Attribute.SetBackground(8 + ansiColorOrder[n-100])
		default:
			return NoneAction(), parserErr(ErrUnsupportedSGR, "%s", p.seq.String())
		}
	}
	return NoneAction(), nil
}

// extendedColor parses the tail of a 38/48 SGR parameter run, returning
// the palette index and how many parameters were consumed.
func (p *AnsiParser) extendedColor(buf *Buffer, i int) (uint32, int, error) {
	if i+1 >= len(p.params) {
		return 0, 0, parserErr(ErrUnsupportedSGR, "%s", p.seq.String())
	}
	switch p.params[i+1] {
	case 2:
		if i+4 >= len(p.params) {
			return 0, 0, parserErr(ErrUnsupportedSGR, "%s", p.seq.String())
		}
		r := uint8(clampInt(p.params[i+2], 0, 255))
		g := uint8(clampInt(p.params[i+3], 0, 255))
		b := uint8(clampInt(p.params[i+4], 0, 255))
		return buf.Palette.InsertColorRGB(r, g, b), 4, nil
	case 5:
		if i+2 >= len(p.params) {
			return 0, 0, parserErr(ErrUnsupportedSGR, "%s", p.seq.String())
		}
		idx := clampInt(p.params[i+2], 0, 255)
		return buf.Palette.InsertColor(XTerm256Palette[idx]), 2, nil
	}
	return 0, 0, parserErr(ErrUnsupportedSGR, "%s", p.seq.String())
}

func (p *AnsiParser) deviceStatusReport(buf *Buffer, caret *Caret) (Action, error) {
	switch p.rawParam(0, 0) {
	case 5:
		return SendStringAction("\x1B[0n"), nil
	case 6:
		y := maxInt(1, caret.Position.Y-buf.FirstVisibleLine()+1)
		x := maxInt(1, caret.Position.X+1)
		return SendStringAction(fmt.Sprintf("\x1B[%d;%dR", y, x)), nil
	case 255:
		return SendStringAction(fmt.Sprintf("\x1B[%d;%dR", buf.Height(), buf.Width())), nil
	}
	return NoneAction(), parserErr(ErrUnsupportedEscapeSequence, "%s", p.seq.String())
}

func (p *AnsiParser) setTopBottomMargins(buf *Buffer, caret *Caret) (Action, error) {
	ts := buf.TerminalState
	var start, end int
	switch len(p.params) {
	case 2:
		start, end = p.params[0]-1, p.params[1]-1
	case 1:
		start, end = p.params[0]-1, buf.Height()-1
	case 0:
		ts.MarginsUpDown = nil
		return NoneAction(), nil
	default:
		return NoneAction(), parserErr(ErrUnsupportedEscapeSequence, "%s", p.seq.String())
	}
	if start > end {
		ts.MarginsUpDown = nil
		return NoneAction(), nil
	}
	ts.MarginsUpDown = &Margins{From: maxInt(0, start), To: end}
	caret.Position = buf.UpperLeftPosition()
	return NoneAction(), nil
}

// setSpecificColor handles CSI Pc;Pr;Pg;Pb t 24-bit color selection.
func (p *AnsiParser) setSpecificColor(buf *Buffer, caret *Caret) (Action, error) {
	if len(p.params) != 4 {
		return NoneAction(), parserErr(ErrUnsupportedEscapeSequence, "%s", p.seq.String())
	}
	r := uint8(clampInt(p.params[1], 0, 255))
	g := uint8(clampInt(p.params[2], 0, 255))
	b := uint8(clampInt(p.params[3], 0, 255))
	idx := buf.Palette.InsertColorRGB(r, g, b)
	switch p.params[0] {
	case 0:
		caret.Attribute.SetBackground(idx)
	case 1:
		caret.Attribute.SetForeground(idx)
	default:
		return NoneAction(), parserErr(ErrUnsupportedEscapeSequence, "%s", p.seq.String())
	}
	return NoneAction(), nil
}

// readCSICommand handles DEC private sequences (CSI ? ...).
func (p *AnsiParser) readCSICommand(buf *Buffer, caret *Caret, ch rune) (Action, error) {
	p.seq.WriteRune(ch)
	switch {
	case ch >= '0' && ch <= '9':
		p.pushDigit(ch)
		return NoneAction(), nil
	case ch == ';':
		if !p.inParam {
			p.params = append(p.params, 0)
		}
		p.inParam = false
		return NoneAction(), nil
	}
	p.state = ansiDefault
	ts := buf.TerminalState
	set := ch == 'h'
	switch ch {
	case 'h', 'l':
		act := NoneAction()
		for _, mode := range p.params {
			switch mode {
			case 3:
				w := 80
				if set {
					w = 132
				}
				ts.Width = w
				act = ResizeAction(w, ts.Height)
			case 4:
				if set {
					ts.ScrollState = ScrollSmooth
				} else {
					ts.ScrollState = ScrollFast
				}
			case 6:
				if set {
					ts.OriginMode = OriginWithinMargins
				} else {
					ts.OriginMode = OriginUpperLeftCorner
				}
				caret.Position = buf.UpperLeftPosition()
			case 7:
				if set {
					ts.AutoWrapMode = AutoWrap
				} else {
					ts.AutoWrapMode = NoWrap
				}
			case 25:
				caret.IsVisible = set
			case 33:
				ts.SetUseIceColors(set)
			case 35:
				caret.IsBlinking = !set
			case 69:
				ts.DECMarginModeLeftRight = set
				if !set {
					ts.MarginsLeftRight = nil
				}
			case 9:
				p.setMouseMode(ts, set, MouseX10)
			case 1000:
				p.setMouseMode(ts, set, MouseVT200)
			case 1001:
				p.setMouseMode(ts, set, MouseVT200Highlight)
			case 1002:
				p.setMouseMode(ts, set, MouseButtonEvents)
			case 1003:
				p.setMouseMode(ts, set, MouseAnyEvents)
			case 1004:
				p.setMouseMode(ts, set, MouseFocusEvent)
			case 1005:
				p.setMouseMode(ts, set, MouseExtendedMode)
			case 1006:
				p.setMouseMode(ts, set, MouseSGRExtendedMode)
			case 1007:
				p.setMouseMode(ts, set, MouseAlternateScroll)
			case 1015:
				p.setMouseMode(ts, set, MouseURXVTExtendedMode)
			case 1016:
				p.setMouseMode(ts, set, MousePixelPosition)
			case 2004:
				ts.BracketedPasteMode = set
			default:
				return NoneAction(), parserErr(ErrUnsupportedEscapeSequence, "%s", p.seq.String())
			}
		}
		return act, nil
	case 'n':
		switch p.rawParam(0, 0) {
		case 62:
			// macro space report
			return SendStringAction("\x1B[32767*{"), nil
		case 63:
			id := p.rawParam(1, 0)
			crc := uint16(0)
			for slot := 0; slot < maxMacroSlots; slot++ {
				if m, ok := p.macros[slot]; ok {
					for i := 0; i < len(m); i++ {
						crc = crc16Update(crc, m[i])
					}
				}
			}
			return SendStringAction(fmt.Sprintf("\x1BP%d!~%04X\x1B\\", id, crc)), nil
		}
		return NoneAction(), parserErr(ErrUnsupportedEscapeSequence, "%s", p.seq.String())
	}
	return NoneAction(), parserErr(ErrUnsupportedEscapeSequence, "%s", p.seq.String())
}

// endCSI handles finals with an intermediate byte: SP, '$' and '*'.
func (p *AnsiParser) endCSI(buf *Buffer, caret *Caret, ch rune) (Action, error) {
	p.seq.WriteRune(ch)
	p.state = ansiDefault
	switch {
	case p.midByte == '*' && ch == 'z':
		return p.invokeMacro(buf, caret, p.rawParam(0, 0))
	case p.midByte == '*' && ch == 'r':
		idx := p.rawParam(1, 0)
		rate := uint32(0)
		if idx >= 1 && idx < len(ansiBaudRates) {
			rate = ansiBaudRates[idx]
		}
		buf.TerminalState.SetBaudRate(int(rate))
		return ChangeBaudAction(rate), nil
	case p.midByte == '*' && ch == 'y':
		return p.areaChecksum(buf)
	case p.midByte == '$' && ch == 'w':
		if p.rawParam(0, 0) == 2 {
			tabs := make([]string, 0, buf.TerminalState.TabCount())
			for _, t := range buf.TerminalState.Tabs() {
				tabs = append(tabs, strconv.Itoa(t+1))
			}
			return SendStringAction("\x1BP2$u" + strings.Join(tabs, "/") + "\x1B\\"), nil
		}
		return NoneAction(), parserErr(ErrUnsupportedEscapeSequence, "%s", p.seq.String())
	case p.midByte == ' ' && ch == 'D':
		return p.selectFont(buf, caret)
	case p.midByte == ' ' && ch == 'A':
		for i := 0; i < p.param(0, 1); i++ {
			buf.ScrollRight()
		}
		return NoneAction(), nil
	case p.midByte == ' ' && ch == '@':
		for i := 0; i < p.param(0, 1); i++ {
			buf.ScrollLeft()
		}
		return NoneAction(), nil
	case p.midByte == ' ' && ch == 'd':
		buf.TerminalState.RemoveTabStop(p.rawParam(0, 0))
		return NoneAction(), nil
	}
	return NoneAction(), parserErr(ErrUnsupportedEscapeSequence, "%s", p.seq.String())
}

func (p *AnsiParser) setMouseMode(ts *TerminalState, set bool, mode MouseMode) {
	if set {
		ts.MouseMode = mode
	} else {
		ts.MouseMode = MouseDefault
	}
}

// selectFont handles CSI Ps1;Ps2 SP D: load the ANSI font table entry
// Ps2 into slot Ps1 and switch printing to it.
func (p *AnsiParser) selectFont(buf *Buffer, caret *Caret) (Action, error) {
	slot := p.rawParam(0, 0)
	font := p.rawParam(1, 0)
	f, err := FontFromAnsiSlot(font)
	if err != nil {
		return NoneAction(), err
	}
	buf.SetFont(slot, f)
	p.fontPage = slot
	caret.Attribute.FontPage = slot
	return NoneAction(), nil
}

// areaChecksum implements DECRQCRA: CRC over the requested rectangle.
func (p *AnsiParser) areaChecksum(buf *Buffer) (Action, error) {
	id := p.rawParam(0, 0)
	top := p.param(2, 1) - 1
	left := p.param(3, 1) - 1
	bottom := p.param(4, buf.Height()) - 1
	right := p.param(5, buf.Width()) - 1
	crc := uint16(0)
	first := buf.FirstVisibleLine()
	for y := top; y <= bottom; y++ {
		for x := left; x <= right; x++ {
			ch := buf.GetChar(Pos(x, first+y))
			crc = crc16Update(crc, byte(ch.Ch))
			flags := ch.Attribute.FlagBits()
			crc = crc16Update(crc, byte(flags>>8))
			crc = crc16Update(crc, byte(flags))
			for shift := 24; shift >= 0; shift -= 8 {
				crc = crc16Update(crc, byte(ch.Attribute.Foreground()>>shift))
			}
			for shift := 24; shift >= 0; shift -= 8 {
				crc = crc16Update(crc, byte(ch.Attribute.Background()>>shift))
			}
		}
	}
	return SendStringAction(fmt.Sprintf("\x1BP%d!~%04X\x1B\\", id, crc)), nil
}

func crc16Update(crc uint16, b byte) uint16 {
	crc ^= uint16(b) << 8
	for i := 0; i < 8; i++ {
		if crc&0x8000 != 0 {
			crc = crc<<1 ^ 0x1021
		} else {
			crc <<= 1
		}
	}
	return crc
}

func (p *AnsiParser) invokeMacro(buf *Buffer, caret *Caret, id int) (Action, error) {
	macro, ok := p.macros[id]
	if !ok {
		return NoneAction(), nil
	}
	last := NoneAction()
	for _, ch := range macro {
		act, err := p.Print(buf, caret, ch)
		if err != nil {
			return act, err
		}
		if act.Kind != ActionNone {
			last = act
		}
	}
	return last, nil
}

// DCS

func (p *AnsiParser) recordDCS(buf *Buffer, caret *Caret, ch rune) (Action, error) {
	if p.dcsEsc {
		p.dcsEsc = false
		if ch == '\\' {
			p.state = ansiDefault
			return p.parseDCS(buf, caret, p.dcs.String())
		}
		p.dcs.WriteByte(0x1B)
	}
	if ch == '\x1B' {
		p.dcsEsc = true
		return NoneAction(), nil
	}
	p.dcs.WriteRune(ch)
	return NoneAction(), nil
}

func (p *AnsiParser) parseDCS(buf *Buffer, caret *Caret, data string) (Action, error) {
	if strings.HasPrefix(data, "CTerm:Font:") {
		return p.loadCTermFont(buf, data[len("CTerm:Font:"):])
	}
	if idx := strings.Index(data, "!z"); idx >= 0 && validMacroHeader(data[:idx]) {
		return p.defineMacro(data[:idx], data[idx+2:])
	}
	if idx := strings.IndexByte(data, 'q'); idx >= 0 && validSixelHeader(data[:idx]) {
		return p.startSixel(buf, caret, data[:idx], data[idx+1:])
	}
	return NoneAction(), parserErr(ErrUnsupportedCustomCommand, "%s", data)
}

func validMacroHeader(header string) bool {
	for _, ch := range header {
		if (ch < '0' || ch > '9') && ch != ';' {
			return false
		}
	}
	return true
}

func validSixelHeader(header string) bool {
	for _, ch := range header {
		if (ch < '0' || ch > '9') && ch != ';' {
			return false
		}
	}
	return true
}

// loadCTermFont handles DCS CTerm:Font:{page}:{base64} font uploads.
func (p *AnsiParser) loadCTermFont(buf *Buffer, rest string) (Action, error) {
	sep := strings.IndexByte(rest, ':')
	if sep < 0 {
		return NoneAction(), parserErr(ErrUnsupportedCustomCommand, "%s", rest)
	}
	page, err := strconv.Atoi(rest[:sep])
	if err != nil {
		return NoneAction(), parserErr(ErrUnsupportedCustomCommand, "%s", rest)
	}
	raw, err := base64.StdEncoding.DecodeString(rest[sep+1:])
	if err != nil {
		return NoneAction(), parserErr(ErrUnsupportedCustomCommand, "%s", rest)
	}
	if len(raw) == 0 || len(raw)%256 != 0 {
		return NoneAction(), parserErr(ErrUnsupportedFont, "%s", rest[:sep])
	}
	f := FontFromBytes(fmt.Sprintf("CTerm %d", page), 8, len(raw)/256, raw)
	buf.SetFont(page, f)
	p.fontPage = page
	return NoneAction(), nil
}

// defineMacro handles DECDMAC: DCS Pid;Pdt;Pfn !z data ST.
func (p *AnsiParser) defineMacro(header, body string) (Action, error) {
	parts := strings.Split(header, ";")
	id, dt, enc := 0, 0, 0
	if len(parts) > 0 && parts[0] != "" {
		id, _ = strconv.Atoi(parts[0])
	}
	if len(parts) > 1 && parts[1] != "" {
		dt, _ = strconv.Atoi(parts[1])
	}
	if len(parts) > 2 && parts[2] != "" {
		enc, _ = strconv.Atoi(parts[2])
	}
	if id < 0 || id >= maxMacroSlots {
		return NoneAction(), parserErr(ErrUnsupportedCustomCommand, "%s", header)
	}
	if dt == 1 {
		for k := range p.macros {
			delete(p.macros, k)
		}
	}
	switch enc {
	case 0:
		p.macros[id] = body
	case 1:
		decoded, err := decodeHexMacro(body)
		if err != nil {
			return NoneAction(), err
		}
		p.macros[id] = decoded
	default:
		return NoneAction(), parserErr(ErrUnsupportedCustomCommand, "%s", header)
	}
	return NoneAction(), nil
}

// decodeHexMacro expands hex-encoded macro bodies including the
// !Pn;...; repeat construct.
func decodeHexMacro(body string) (string, error) {
	var out strings.Builder
	i := 0
	for i < len(body) {
		if body[i] == '!' {
			i++
			count := 0
			for i < len(body) && body[i] >= '0' && body[i] <= '9' {
				count = count*10 + int(body[i]-'0')
				i++
			}
			if i >= len(body) || body[i] != ';' {
				return "", parserErr(ErrUnsupportedCustomCommand, "%s", body)
			}
			i++
			start := i
			for i < len(body) && body[i] != ';' {
				i++
			}
			chunk, err := decodeHexPairs(body[start:i])
			if err != nil {
				return "", err
			}
			if i < len(body) {
				i++ // closing ';'
			}
			for r := 0; r < count; r++ {
				out.WriteString(chunk)
			}
			continue
		}
		start := i
		for i < len(body) && body[i] != '!' {
			i++
		}
		chunk, err := decodeHexPairs(body[start:i])
		if err != nil {
			return "", err
		}
		out.WriteString(chunk)
	}
	return out.String(), nil
}

func decodeHexPairs(s string) (string, error) {
	if len(s)%2 != 0 {
		return "", parserErr(ErrUnsupportedCustomCommand, "%s", s)
	}
	var out strings.Builder
	for i := 0; i < len(s); i += 2 {
		v, err := strconv.ParseUint(s[i:i+2], 16, 8)
		if err != nil {
			return "", parserErr(ErrUnsupportedCustomCommand, "%s", s)
		}
		out.WriteByte(byte(v))
	}
	return out.String(), nil
}

// startSixel queues a sixel payload for background decoding at the
// caret position.
func (p *AnsiParser) startSixel(buf *Buffer, caret *Caret, header, payload string) (Action, error) {
	parts := strings.Split(header, ";")
	p1, p2 := 0, 0
	if len(parts) > 0 && parts[0] != "" {
		p1, _ = strconv.Atoi(parts[0])
	}
	if len(parts) > 1 && parts[1] != "" {
		p2, _ = strconv.Atoi(parts[1])
	}
	opts := SixelOptions{
		Position:        caret.Position,
		HorizontalScale: 1,
		VerticalScale:   sixelVerticalScale(p1),
	}
	if p2 != 1 {
		bg := buf.Palette.Get(int(caret.Attribute.Background()))
		opts.Background = &bg
	}
	buf.SubmitSixel([]byte(payload), opts)
	return UpdateAction(), nil
}

// sixelVerticalScale maps the DCS P1 aspect ratio parameter onto a
// vertical pixel multiplier.
func sixelVerticalScale(p1 int) int {
	switch p1 {
	case 0, 1, 5, 6:
		return 2
	case 2:
		return 5
	case 3, 4:
		return 3
	}
	return 1
}

// OSC

func (p *AnsiParser) readOSC(buf *Buffer, caret *Caret, ch rune) (Action, error) {
	if p.oscEsc {
		p.oscEsc = false
		if ch == '\\' {
			p.state = ansiDefault
			return p.parseOSC(buf, caret, p.osc.String())
		}
		p.osc.WriteByte(0x1B)
	}
	switch ch {
	case '\x1B':
		p.oscEsc = true
	case '\x07':
		p.state = ansiDefault
		return p.parseOSC(buf, caret, p.osc.String())
	default:
		p.osc.WriteRune(ch)
	}
	return NoneAction(), nil
}

// parseOSC knows two commands: OSC 4 palette redefinition and OSC 8
// hyperlinks.
func (p *AnsiParser) parseOSC(buf *Buffer, caret *Caret, data string) (Action, error) {
	if strings.HasPrefix(data, "4;") {
		return p.oscSetPaletteColor(buf, data[2:])
	}
	if !strings.HasPrefix(data, "8;") {
		return NoneAction(), parserErr(ErrUnsupportedOSCSequence, "%s", data)
	}
	rest := data[2:]
	sep := strings.IndexByte(rest, ';')
	if sep < 0 {
		return NoneAction(), parserErr(ErrUnsupportedOSCSequence, "%s", data)
	}
	url := rest[sep+1:]
	if len(buf.Layers) == 0 {
		return NoneAction(), nil
	}
	layer := buf.Layers[0]
	if url == "" {
		caret.Attribute.SetIsUnderlined(false)
		if n := len(layer.Hyperlinks); n > 0 {
			link := &layer.Hyperlinks[n-1]
			cp := caret.Position
			if cp.Y == link.Position.Y {
				link.Length = cp.X - link.Position.X
			} else {
				link.Length = buf.Width() - link.Position.X +
					(cp.Y-link.Position.Y-1)*buf.Width() + cp.X
			}
		}
		return NoneAction(), nil
	}
	caret.Attribute.SetIsUnderlined(true)
	layer.AddHyperlink(HyperLink{URL: url, Position: caret.Position})
	return NoneAction(), nil
}

// oscSetPaletteColor redefines a palette slot from the
// "index;rgb:RR/GG/BB" form of OSC 4.
func (p *AnsiParser) oscSetPaletteColor(buf *Buffer, rest string) (Action, error) {
	sep := strings.IndexByte(rest, ';')
	if sep < 0 {
		return NoneAction(), parserErr(ErrUnsupportedOSCSequence, "4;%s", rest)
	}
	idx, err := strconv.Atoi(rest[:sep])
	if err != nil || idx < 0 {
		return NoneAction(), parserErr(ErrUnsupportedOSCSequence, "4;%s", rest)
	}
	spec := rest[sep+1:]
	if !strings.HasPrefix(spec, "rgb:") {
		return NoneAction(), parserErr(ErrUnsupportedOSCSequence, "4;%s", rest)
	}
	parts := strings.Split(spec[len("rgb:"):], "/")
	if len(parts) != 3 {
		return NoneAction(), parserErr(ErrUnsupportedOSCSequence, "4;%s", rest)
	}
	var rgb [3]uint8
	for i, part := range parts {
		v, err := strconv.ParseUint(part, 16, 8)
		if err != nil {
			return NoneAction(), parserErr(ErrUnsupportedOSCSequence, "4;%s", rest)
		}
		rgb[i] = uint8(v)
	}
	buf.Palette.SetColorRGB(idx, rgb[0], rgb[1], rgb[2])
	return UpdateAction(), nil
}

// APS

func (p *AnsiParser) readAPS(ch rune) (Action, error) {
	if p.dcsEsc {
		p.dcsEsc = false
		if ch == '\\' {
			p.state = ansiDefault
		}
		return NoneAction(), nil
	}
	if ch == '\x1B' {
		p.dcsEsc = true
	}
	return NoneAction(), nil
}

// Music

func (p *AnsiParser) enterMusic() (Action, error) {
	p.state = ansiParseMusic
	p.music = newMusicBuilder()
	return NoneAction(), nil
}

func (p *AnsiParser) readMusic(ch rune) (Action, error) {
	done, err := p.music.feed(ch)
	if err != nil {
		p.state = ansiDefault
		return NoneAction(), err
	}
	if done {
		p.state = ansiDefault
		m := p.music.finish()
		p.music = nil
		if len(m.Actions) > 0 {
			return PlayMusicAction(m), nil
		}
	}
	return NoneAction(), nil
}
