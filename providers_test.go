package textart

import (
	"strings"
	"testing"
)

func TestBellCounter(t *testing.T) {
	buf := NewBuffer(80, 25)
	caret := NewCaret()
	var bells BellCounter

	errs := ParseBytesTo(NewASCIIParser(), buf, caret, []byte("a\x07b\x07\x07"), &bells)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if bells.Rings != 3 {
		t.Errorf("expected 3 rings, got %d", bells.Rings)
	}
	if got := buf.GetChar(Pos(1, 0)); got.Ch != 'b' {
		t.Errorf("expected text printed around the bells, got %q", got.Ch)
	}
}

func TestResponseSinkWritesReports(t *testing.T) {
	buf := NewBuffer(80, 25)
	caret := NewCaret()
	var out strings.Builder

	errs := ParseBytesTo(NewAnsiParser(), buf, caret, []byte("\x1B[4;2H\x1B[6n"), ResponseSink{W: &out})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if out.String() != "\x1B[4;2R" {
		t.Errorf("expected position report, got %q", out.String())
	}
}

func TestResponseSinkIgnoresOtherActions(t *testing.T) {
	var out strings.Builder
	s := ResponseSink{W: &out}
	if err := s.HandleAction(BeepAction()); err != nil {
		t.Fatal(err)
	}
	if out.Len() != 0 {
		t.Errorf("expected nothing written, got %q", out.String())
	}
}

func TestMultiSinkFansOut(t *testing.T) {
	var bells BellCounter
	var calls int
	sink := MultiSink{&bells, ActionSinkFunc(func(Action) error {
		calls++
		return nil
	})}

	if err := sink.HandleAction(BeepAction()); err != nil {
		t.Fatal(err)
	}
	if bells.Rings != 1 || calls != 1 {
		t.Errorf("expected both members to see the action, got rings=%d calls=%d", bells.Rings, calls)
	}
}

func TestNoopSink(t *testing.T) {
	if err := (NoopSink{}).HandleAction(SendStringAction("x")); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestParseBytesToNilSink(t *testing.T) {
	buf := NewBuffer(80, 25)
	caret := NewCaret()
	if errs := ParseBytesTo(NewASCIIParser(), buf, caret, []byte("hi\x07"), nil); len(errs) != 0 {
		t.Errorf("unexpected errors: %v", errs)
	}
}
