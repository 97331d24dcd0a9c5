package textart

import (
	"golang.org/x/text/encoding/charmap"
)

// ActionKind discriminates parser feedback actions.
type ActionKind uint8

const (
	ActionNone ActionKind = iota
	ActionNoUpdate
	ActionUpdate
	ActionBeep
	ActionSendString
	ActionPlayMusic
	ActionChangeBaudEmulation
	ActionResizeTerminal
	ActionPause
)

// Action is what a parser asks its host to do after consuming a
// character: redraw, answer back over the wire, ring the bell, play
// ANSI music, change the emulated baud rate, resize, or pause.
type Action struct {
	Kind     ActionKind
	Text     string
	Music    *AnsiMusic
	BaudRate uint32
	Width    int
	Height   int
	PauseMs  int
}

// NoneAction reports nothing to do.
func NoneAction() Action { return Action{} }

// UpdateAction requests a redraw.
func UpdateAction() Action { return Action{Kind: ActionUpdate} }

// NoUpdateAction reports the buffer changed without needing a redraw.
func NoUpdateAction() Action { return Action{Kind: ActionNoUpdate} }

// BeepAction rings the bell.
func BeepAction() Action { return Action{Kind: ActionBeep} }

// SendStringAction answers text back to the remote side.
func SendStringAction(s string) Action {
	return Action{Kind: ActionSendString, Text: s}
}

// PlayMusicAction hands a parsed music score to the host.
func PlayMusicAction(m *AnsiMusic) Action {
	return Action{Kind: ActionPlayMusic, Music: m}
}

// ChangeBaudAction switches the emulated line speed (0 = unlimited).
func ChangeBaudAction(rate uint32) Action {
	return Action{Kind: ActionChangeBaudEmulation, BaudRate: rate}
}

// ResizeAction asks the host to resize the terminal.
func ResizeAction(w, h int) Action {
	return Action{Kind: ActionResizeTerminal, Width: w, Height: h}
}

// PauseAction asks the host to stall playback for the given duration.
func PauseAction(ms int) Action {
	return Action{Kind: ActionPause, PauseMs: ms}
}

// BufferParser feeds characters into a buffer, one at a time, and maps
// between the wire charset and unicode.
type BufferParser interface {
	// ConvertFromUnicode maps an input rune to the stored cell value.
	ConvertFromUnicode(ch rune, fontPage int) rune
	// ConvertToUnicode maps a stored cell back to a displayable rune.
	ConvertToUnicode(ch AttributedChar) rune
	// Print consumes one character, mutating buffer and caret.
	Print(buf *Buffer, caret *Caret, ch rune) (Action, error)
}

// UnicodeFromCP437 maps a code page 437 byte to its unicode rune.
func UnicodeFromCP437(b byte) rune {
	return charmap.CodePage437.DecodeByte(b)
}

// CP437FromUnicode maps a rune to its code page 437 byte; unmappable
// runes become '?'.
func CP437FromUnicode(ch rune) byte {
	if b, ok := charmap.CodePage437.EncodeRune(ch); ok {
		return b
	}
	return '?'
}

// ASCIIParser is the plain text parser: code page 437 glyphs, the five
// classic control characters, nothing else.
type ASCIIParser struct{}

// NewASCIIParser creates a plain text parser.
func NewASCIIParser() *ASCIIParser { return &ASCIIParser{} }

func (p *ASCIIParser) ConvertFromUnicode(ch rune, _ int) rune {
	return rune(CP437FromUnicode(ch))
}

func (p *ASCIIParser) ConvertToUnicode(ch AttributedChar) rune {
	if ch.Ch >= 0 && ch.Ch < 256 {
		return UnicodeFromCP437(byte(ch.Ch))
	}
	return ch.Ch
}

func (p *ASCIIParser) Print(buf *Buffer, caret *Caret, ch rune) (Action, error) {
	switch ch {
	case '\r':
		caret.CR(buf)
	case '\n':
		caret.LF(buf)
	case '\x0C':
		caret.FF(buf)
	case '\b':
		caret.BS(buf)
	case '\x07':
		return BeepAction(), nil
	default:
		buf.PrintChar(caret, NewAttributedChar(ch, caret.Attribute))
	}
	return NoneAction(), nil
}

// ParseBytes feeds a whole CP437 byte stream through a parser. Parse
// errors are collected, not fatal; the survivors are returned alongside
// the parsed buffer state.
func ParseBytes(parser BufferParser, buf *Buffer, caret *Caret, data []byte) []error {
	var errs []error
	for _, b := range data {
		if _, err := parser.Print(buf, caret, rune(b)); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
