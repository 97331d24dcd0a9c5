package textart

import (
	"context"
	"strings"
	"testing"
)

func parseAnsi(t *testing.T, data string) (*Buffer, *Caret) {
	t.Helper()
	buf := NewBuffer(80, 25)
	caret := NewCaret()
	p := NewAnsiParser()
	feedAnsi(t, p, buf, caret, data)
	return buf, caret
}

func feedAnsi(t *testing.T, p *AnsiParser, buf *Buffer, caret *Caret, data string) {
	t.Helper()
	for _, b := range []byte(data) {
		if _, err := p.Print(buf, caret, rune(b)); err != nil {
			t.Fatalf("parse error on %q: %v", b, err)
		}
	}
}

func TestAnsiPrintAndColor(t *testing.T) {
	buf, _ := parseAnsi(t, "\x1B[31mA\x1B[1;44mB")

	a := buf.GetChar(Pos(0, 0))
	if a.Ch != 'A' {
		t.Fatalf("expected 'A', got %q", a.Ch)
	}
	if a.Attribute.Foreground() != 4 {
		t.Errorf("expected red (palette 4), got %d", a.Attribute.Foreground())
	}

	b := buf.GetChar(Pos(1, 0))
	if !b.Attribute.IsBold() {
		t.Error("expected bold")
	}
	if b.Attribute.Background() != 1 {
		t.Errorf("expected blue background (palette 1), got %d", b.Attribute.Background())
	}
}

func TestAnsiCursorPosition(t *testing.T) {
	buf, caret := parseAnsi(t, "\x1B[5;10HX")

	if got := buf.GetChar(Pos(9, 4)); got.Ch != 'X' {
		t.Errorf("expected 'X' at (9,4), got %q", got.Ch)
	}
	if caret.Position != Pos(10, 4) {
		t.Errorf("expected caret at (10,4), got %v", caret.Position)
	}
}

func TestAnsiCursorMoves(t *testing.T) {
	_, caret := parseAnsi(t, "\x1B[10;10H\x1B[2A\x1B[3C\x1B[1B\x1B[4D")

	if caret.Position != Pos(8, 8) {
		t.Errorf("expected caret at (8,8), got %v", caret.Position)
	}
}

func TestAnsiSaveRestoreCursor(t *testing.T) {
	_, caret := parseAnsi(t, "\x1B[5;5H\x1B[s\x1B[20;20H\x1B[u")

	if caret.Position != Pos(4, 4) {
		t.Errorf("expected restored caret at (4,4), got %v", caret.Position)
	}
}

func TestAnsiDeviceStatusReport(t *testing.T) {
	buf := NewBuffer(80, 25)
	caret := NewCaret()
	p := NewAnsiParser()
	feedAnsi(t, p, buf, caret, "\x1B[3;7H")

	var got string
	for _, b := range []byte("\x1B[6n") {
		action, err := p.Print(buf, caret, rune(b))
		if err != nil {
			t.Fatal(err)
		}
		if action.Kind == ActionSendString {
			got = action.Text
		}
	}
	if got != "\x1B[3;7R" {
		t.Errorf("expected cursor report \\x1B[3;7R, got %q", got)
	}
}

func TestAnsiEraseLine(t *testing.T) {
	buf, _ := parseAnsi(t, "hello\x1B[1;3H\x1B[K")

	if got := buf.GetChar(Pos(1, 0)); got.Ch != 'e' {
		t.Errorf("expected 'e' kept, got %q", got.Ch)
	}
	if got := buf.GetChar(Pos(3, 0)); got.Ch != ' ' {
		t.Errorf("expected cleared cell, got %q", got.Ch)
	}
}

func TestAnsiIceColorsMode(t *testing.T) {
	buf, _ := parseAnsi(t, "\x1B[?33h")

	if !buf.TerminalState.UseIceColors() {
		t.Error("expected ice colors enabled")
	}
}

func TestAnsiRepeatLastChar(t *testing.T) {
	buf, _ := parseAnsi(t, "x\x1B[4b")

	for x := 0; x < 5; x++ {
		if got := buf.GetChar(Pos(x, 0)); got.Ch != 'x' {
			t.Errorf("expected 'x' at column %d, got %q", x, got.Ch)
		}
	}
}

func TestAnsiMacroDefineInvoke(t *testing.T) {
	buf := NewBuffer(80, 25)
	caret := NewCaret()
	p := NewAnsiParser()

	feedAnsi(t, p, buf, caret, "\x1BP1;0;0!zhi\x1B\\")
	feedAnsi(t, p, buf, caret, "\x1B[1*z")

	if got := buf.GetChar(Pos(0, 0)); got.Ch != 'h' {
		t.Errorf("expected macro output 'h', got %q", got.Ch)
	}
	if got := buf.GetChar(Pos(1, 0)); got.Ch != 'i' {
		t.Errorf("expected macro output 'i', got %q", got.Ch)
	}
}

func TestAnsiMacroSpaceReport(t *testing.T) {
	buf := NewBuffer(80, 25)
	caret := NewCaret()
	p := NewAnsiParser()

	var got string
	for _, b := range []byte("\x1B[62n") {
		action, err := p.Print(buf, caret, rune(b))
		if err != nil {
			t.Fatal(err)
		}
		if action.Kind == ActionSendString {
			got = action.Text
		}
	}
	if got != "\x1B[32767*{" {
		t.Errorf("expected macro space report, got %q", got)
	}
}

func TestAnsiChecksumReport(t *testing.T) {
	buf := NewBuffer(80, 25)
	caret := NewCaret()
	p := NewAnsiParser()

	var got string
	for _, b := range []byte("\x1B[63;9n") {
		action, err := p.Print(buf, caret, rune(b))
		if err != nil {
			t.Fatal(err)
		}
		if action.Kind == ActionSendString {
			got = action.Text
		}
	}
	if !strings.HasPrefix(got, "\x1BP9!~") || !strings.HasSuffix(got, "\x1B\\") {
		t.Errorf("expected DCS checksum report frame, got %q", got)
	}
	if len(got) != len("\x1BP9!~")+4+2 {
		t.Errorf("expected 4 checksum digits, got %q", got)
	}
}

func TestAnsiBaudEmulation(t *testing.T) {
	buf := NewBuffer(80, 25)
	caret := NewCaret()
	p := NewAnsiParser()

	var got Action
	for _, b := range []byte("\x1B[4*r") {
		action, err := p.Print(buf, caret, rune(b))
		if err != nil {
			t.Fatal(err)
		}
		if action.Kind != ActionNone {
			got = action
		}
	}
	if got.Kind != ActionChangeBaudEmulation {
		t.Fatalf("expected baud action, got kind %d", got.Kind)
	}
	if got.BaudRate != 2400 {
		t.Errorf("expected 2400 baud, got %d", got.BaudRate)
	}
}

func TestAnsiOSCHyperlink(t *testing.T) {
	buf, _ := parseAnsi(t, "\x1B]8;;http://example.com\x1B\\click\x1B]8;;\x1B\\")

	links := buf.Layers[0].Hyperlinks
	if len(links) != 1 {
		t.Fatalf("expected 1 hyperlink, got %d", len(links))
	}
	if links[0].URL != "http://example.com" {
		t.Errorf("expected URL kept, got %q", links[0].URL)
	}
	if got := buf.GetChar(Pos(0, 0)); got.Ch != 'c' {
		t.Errorf("expected link text printed, got %q", got.Ch)
	}
}

func TestAnsiMusicParsing(t *testing.T) {
	buf := NewBuffer(80, 25)
	caret := NewCaret()
	p := NewAnsiParser()
	p.MusicOption = MusicBoth

	var music *AnsiMusic
	for _, b := range []byte("\x1B[NC\x0E") {
		action, err := p.Print(buf, caret, rune(b))
		if err != nil {
			t.Fatal(err)
		}
		if action.Kind == ActionPlayMusic {
			music = action.Music
		}
	}
	if music == nil {
		t.Fatal("expected a music action")
	}
	if len(music.Actions) != 1 {
		t.Fatalf("expected 1 note, got %d", len(music.Actions))
	}
	note := music.Actions[0]
	if note.Kind != MusicPlayNote {
		t.Fatal("expected a note")
	}
	if note.Frequency < 523.25 || note.Frequency > 523.26 {
		t.Errorf("expected C at octave 3 (523.2511 Hz), got %f", note.Frequency)
	}
	if note.Duration != 4*120 {
		t.Errorf("expected 480 ticks, got %d", note.Duration)
	}
}

func TestAnsiMusicTempoAndLength(t *testing.T) {
	buf := NewBuffer(80, 25)
	caret := NewCaret()
	p := NewAnsiParser()
	p.MusicOption = MusicBoth

	var music *AnsiMusic
	for _, b := range []byte("\x1B[NT60L8CP4\x0E") {
		action, err := p.Print(buf, caret, rune(b))
		if err != nil {
			t.Fatal(err)
		}
		if action.Kind == ActionPlayMusic {
			music = action.Music
		}
	}
	if music == nil {
		t.Fatal("expected a music action")
	}
	if len(music.Actions) != 2 {
		t.Fatalf("expected note and pause, got %d", len(music.Actions))
	}
	if music.Actions[0].Duration != 60*8 {
		t.Errorf("expected 480 ticks for the note, got %d", music.Actions[0].Duration)
	}
	if music.Actions[1].Kind != MusicPause {
		t.Error("expected a pause")
	}
	if music.Actions[1].Duration != 60*4 {
		t.Errorf("expected 240 ticks for the pause, got %d", music.Actions[1].Duration)
	}
}

const sixelSample = "\x1BPq#0;2;0;0;0#1;2;100;100;0#2;2;0;100;0#1~~@@vv@@~~@@~~$43#2??}}GG}}??}}??-#1!14@\x1B\\"

func TestSixelSimple(t *testing.T) {
	buf, _ := parseAnsi(t, sixelSample)
	buf.FinishSixelWorkers()

	sixels := buf.Layers[0].Sixels
	if len(sixels) != 1 {
		t.Fatalf("expected 1 sixel, got %d", len(sixels))
	}
	s := sixels[0]
	if s.Position != Pos(0, 0) {
		t.Errorf("expected position (0,0), got %v", s.Position)
	}
	if s.Width != 14 {
		t.Errorf("expected width 14, got %d", s.Width)
	}
	if s.Height != 12 {
		t.Errorf("expected height 12, got %d", s.Height)
	}
	if s.HorizontalScale != 1 {
		t.Errorf("expected horizontal scale 1, got %d", s.HorizontalScale)
	}
	if s.VerticalScale != 2 {
		t.Errorf("expected vertical scale 2, got %d", s.VerticalScale)
	}
}

func TestSixelPositioned(t *testing.T) {
	buf, _ := parseAnsi(t, "\x1B[4;13H"+sixelSample)
	buf.FinishSixelWorkers()

	sixels := buf.Layers[0].Sixels
	if len(sixels) != 1 {
		t.Fatalf("expected 1 sixel, got %d", len(sixels))
	}
	if sixels[0].Position != Pos(12, 3) {
		t.Errorf("expected position (12,3), got %v", sixels[0].Position)
	}
	if sixels[0].Width != 14 || sixels[0].Height != 12 {
		t.Errorf("expected 14x12, got %dx%d", sixels[0].Width, sixels[0].Height)
	}
}

func TestSixelOverwrite(t *testing.T) {
	buf := NewBuffer(80, 25)
	caret := NewCaret()
	for i := 0; i < 6; i++ {
		p := NewAnsiParser()
		feedAnsi(t, p, buf, caret, "\x1B[4;13H"+sixelSample)
	}
	buf.FinishSixelWorkers()

	sixels := buf.Layers[0].Sixels
	if len(sixels) != 1 {
		t.Fatalf("expected overwrites to cull down to 1 sixel, got %d", len(sixels))
	}
	if sixels[0].Position != Pos(12, 3) {
		t.Errorf("expected position (12,3), got %v", sixels[0].Position)
	}
}

func TestSixelOverlapCulling(t *testing.T) {
	buf := NewBuffer(80, 25)
	caret := NewCaret()
	draw := func(seq string) {
		p := NewAnsiParser()
		feedAnsi(t, p, buf, caret, seq+sixelSample)
	}

	draw("\x1B[0;0H")
	draw("\x1B[5;5H")
	draw("\x1B[10;10H")
	for i := 0; i < 10; i++ {
		draw("\x1B[0;0H")
		draw("\x1B[5;5H")
		draw("\x1B[10;10H")
	}
	buf.FinishSixelWorkers()

	sixels := buf.Layers[0].Sixels
	if len(sixels) != 3 {
		t.Fatalf("expected 3 sixels, got %d", len(sixels))
	}
	want := []Position{Pos(0, 0), Pos(4, 4), Pos(9, 9)}
	for i, s := range sixels {
		if s.Position != want[i] {
			t.Errorf("sixel %d: expected %v, got %v", i, want[i], s.Position)
		}
	}
}

func TestSixelDecoderSizeCap(t *testing.T) {
	s, err := DecodeSixel(context.Background(), []byte("\"1;1;4;4#1!10~"), SixelOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if s.Width > 4 {
		t.Errorf("expected width capped at 4, got %d", s.Width)
	}
	if s.Height > 4 {
		t.Errorf("expected height capped at 4, got %d", s.Height)
	}
}

func TestAnsiOSCPaletteColor(t *testing.T) {
	buf, _ := parseAnsi(t, "\x1B]4;1;rgb:12/34/56\x1B\\")

	if got := buf.Palette.Get(1); got != RGB(0x12, 0x34, 0x56) {
		t.Errorf("expected palette slot 1 redefined to #123456, got %v", got)
	}
}

func TestAnsiColumnModeSwitch(t *testing.T) {
	buf := NewBuffer(80, 25)
	caret := NewCaret()
	p := NewAnsiParser()

	feedAnsi(t, p, buf, caret, "\x1B[?3")
	act, err := p.Print(buf, caret, 'h')
	if err != nil {
		t.Fatal(err)
	}
	if act.Kind != ActionResizeTerminal || act.Width != 132 {
		t.Errorf("expected a 132-column resize action, got %+v", act)
	}
	if buf.TerminalState.Width != 132 {
		t.Errorf("expected 132 columns after DECCOLM set, got %d", buf.TerminalState.Width)
	}

	feedAnsi(t, p, buf, caret, "\x1B[?3l")
	if buf.TerminalState.Width != 80 {
		t.Errorf("expected 80 columns after DECCOLM reset, got %d", buf.TerminalState.Width)
	}
}

func TestAnsiBracketedPasteMode(t *testing.T) {
	buf := NewBuffer(80, 25)
	caret := NewCaret()
	p := NewAnsiParser()

	feedAnsi(t, p, buf, caret, "\x1B[?2004h")
	if !buf.TerminalState.BracketedPasteMode {
		t.Error("expected bracketed paste enabled")
	}
	feedAnsi(t, p, buf, caret, "\x1B[?2004l")
	if buf.TerminalState.BracketedPasteMode {
		t.Error("expected bracketed paste disabled")
	}
}

func TestAnsiUnknownSequenceErrorText(t *testing.T) {
	buf := NewBuffer(80, 25)
	caret := NewCaret()
	p := NewAnsiParser()

	var parseErr error
	for _, b := range []byte("\x1B[5%") {
		if _, err := p.Print(buf, caret, rune(b)); err != nil {
			parseErr = err
			break
		}
	}
	if parseErr == nil {
		t.Fatal("expected an error for an unknown CSI final byte")
	}
	msg := parseErr.Error()
	if !strings.Contains(msg, "\x1B[5%") {
		t.Errorf("expected the raw sequence in the error, got %q", msg)
	}
	if strings.Contains(msg, "NOVERB") || strings.Contains(msg, "MISSING") {
		t.Errorf("sequence text was interpreted as a format string: %q", msg)
	}
}
