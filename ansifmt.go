package textart

import (
	"fmt"
	"strconv"
	"strings"
)

// AnsiFormat is the classic escape-sequence codec.
type AnsiFormat struct{}

func (f *AnsiFormat) Name() string { return "ANSI" }

func (f *AnsiFormat) Extensions() []string {
	return []string{"ans", "ice", "ansi"}
}

func (f *AnsiFormat) Load(data []byte, sauce *SauceRecord, opts LoadOptions) (*Buffer, error) {
	width := 80
	if opts.Width > 0 {
		width = opts.Width
	}
	if sauce != nil && sauce.TInfo1 > 0 {
		width = int(sauce.TInfo1)
	}
	buf := NewBuffer(width, 25)
	if sauce != nil {
		sauce.ApplyTo(buf)
		buf.SetHeight(25)
	}
	caret := NewCaret()
	parser := NewAnsiParser()
	parser.MusicOption = opts.AnsiMusic
	for _, b := range data {
		action, err := parser.Print(buf, caret, rune(b))
		if err != nil && !opts.SkipErrors {
			return nil, err
		}
		if opts.Sink != nil && action.Kind != ActionNone {
			if err := opts.Sink.HandleAction(action); err != nil && !opts.SkipErrors {
				return nil, err
			}
		}
	}
	buf.FinishSixelWorkers()
	buf.SetHeightForPos(Pos(caret.Position.X, maxInt(caret.Position.Y, buf.LineCount()-1)))
	cropLoadedHeight(buf, sauce)
	if buf.TerminalState.UseIceColors() {
		buf.BufferType = BufferTypeLegacyIce
		buf.IceMode = IceModeIce
	}
	return buf, nil
}

// minSkipRun is where a gap becomes cheaper as cursor-forward than as
// printed spaces.
const minSkipRun = 5

type ansiWriter struct {
	out     []byte
	buf     *Buffer
	opts    SaveOptions
	attr    TextAttribute
	started bool
}

func (f *AnsiFormat) Save(buf *Buffer, opts SaveOptions) ([]byte, error) {
	if opts.OptimizeOutput {
		buf = OptimizeColors(buf)
	}
	w := &ansiWriter{buf: buf, opts: opts, attr: DefaultAttribute()}
	height := buf.LineCount()
	for y := 0; y < height; y++ {
		w.writeLine(y)
		if y+1 < height {
			w.out = append(w.out, '\r', '\n')
		}
	}
	if opts.shouldWriteSauce(buf) {
		b := NewSauceBuilder(SauceDataCharacter, SauceFileANSI).
			WithMeta(buf.Sauce).
			WithSize(buf.Width(), buf.Height()).
			WithIce(buf.IceMode == IceModeIce || buf.TerminalState.UseIceColors())
		if font := buf.GetFont(0); font != nil && !font.IsDefault() {
			b = b.WithFontName(font.Name)
		}
		return b.AppendTo(w.out)
	}
	return w.out, nil
}

func (w *ansiWriter) writeLine(y int) {
	lineEnd := 0
	for x := 0; x < w.buf.Width(); x++ {
		if ch := w.buf.GetChar(Pos(x, y)); ch.IsVisible() && !ch.IsTransparent() {
			lineEnd = x + 1
		}
	}
	x := 0
	for x < lineEnd {
		ch := w.buf.GetChar(Pos(x, y))
		if w.opts.Compress && ch.IsTransparent() {
			run := 0
			for x+run < lineEnd && w.buf.GetChar(Pos(x+run, y)).IsTransparent() {
				run++
			}
			if run >= minSkipRun {
				w.out = append(w.out, fmt.Sprintf("\x1B[%dC", run)...)
				x += run
				continue
			}
		}
		w.writeChar(ch)
		x++
	}
}

func (w *ansiWriter) writeChar(ch AttributedChar) {
	c := ch.Ch
	if !ch.IsVisible() || c == 0 {
		c = ' '
		ch.Attribute = w.attr
	}
	w.changeAttribute(ch.Attribute)
	if w.opts.Modern {
		w.out = append(w.out, string(UnicodeFromCP437(byte(c&0xFF)))...)
	} else {
		w.out = append(w.out, byte(c&0xFF))
	}
}

// changeAttribute emits the minimal SGR run moving from the current
// attribute to target.
func (w *ansiWriter) changeAttribute(target TextAttribute) {
	if w.started && w.attr.Equal(target) {
		return
	}
	var sgr []string
	cur := w.attr

	fg, bg := target.Foreground(), target.Background()
	wantBold := fg >= 8 && fg < 16
	wantBlink := target.IsBlinking() || (bg >= 8 && bg < 16 && !w.opts.Modern)

	needsReset := !w.started ||
		(cur.Foreground() >= 8 && cur.Foreground() < 16 && !wantBold) ||
		(cur.IsBlinking() || cur.Background() >= 8) && !wantBlink
	if needsReset {
		sgr = append(sgr, "0")
		cur = DefaultAttribute()
	}
	if wantBold && !(cur.Foreground() >= 8) {
		sgr = append(sgr, "1")
	}
	if wantBlink && !cur.IsBlinking() {
		sgr = append(sgr, "5")
	}
	if fg16 := fg % 8; fg < 16 {
		if cur.Foreground()%8 != fg16 || needsReset {
			sgr = append(sgr, strconv.Itoa(30+int(ansiColorOrder[fg16])))
		}
	}
	if bg16 := bg % 8; bg < 16 {
		if cur.Background()%8 != bg16 || needsReset {
			sgr = append(sgr, strconv.Itoa(40+int(ansiColorOrder[bg16])))
		}
	}
	if len(sgr) > 0 {
		w.out = append(w.out, "\x1B["...)
		w.out = append(w.out, strings.Join(sgr, ";")...)
		w.out = append(w.out, 'm')
	}
	if fg >= 16 {
		w.writeExtendedColor(fg, true)
	}
	if bg >= 16 {
		w.writeExtendedColor(bg, false)
	}
	w.attr = target
	w.started = true
}

// writeExtendedColor emits a palette color beyond the classic 16: an
// xterm 256 index when the color is in that palette, 38;2 truecolor in
// modern mode, and the CSI t form otherwise.
func (w *ansiWriter) writeExtendedColor(idx uint32, foreground bool) {
	color := w.buf.Palette.Get(int(idx))
	for i, xc := range XTerm256Palette {
		if xc == color {
			sel := 48
			if foreground {
				sel = 38
			}
			w.out = append(w.out, fmt.Sprintf("\x1B[%d;5;%dm", sel, i)...)
			return
		}
	}
	r, g, b := color.Get()
	if w.opts.Modern {
		sel := 48
		if foreground {
			sel = 38
		}
		w.out = append(w.out, fmt.Sprintf("\x1B[%d;2;%d;%d;%dm", sel, r, g, b)...)
		return
	}
	fgSel := 0
	if foreground {
		fgSel = 1
	}
	w.out = append(w.out, fmt.Sprintf("\x1B[%d;%d;%d;%dt", fgSel, r, g, b)...)
}
