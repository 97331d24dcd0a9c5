package textart

import "testing"

func TestOptimizeColorsWhitespace(t *testing.T) {
	buf := NewBuffer(10, 1)
	buf.SetChar(0, Pos(0, 0), NewAttributedChar('x', NewAttribute(7, 0)))
	buf.SetChar(0, Pos(1, 0), NewAttributedChar(' ', NewAttribute(4, 0)))
	buf.SetChar(0, Pos(2, 0), NewAttributedChar('y', NewAttribute(7, 0)))

	opt := OptimizeColors(buf)
	got := opt.GetChar(Pos(1, 0))
	if got.Attribute.Foreground() != 7 {
		t.Errorf("expected blank to inherit foreground 7, got %d", got.Attribute.Foreground())
	}
	if got.Attribute.Background() != 0 {
		t.Errorf("expected background untouched, got %d", got.Attribute.Background())
	}
}

func TestOptimizeColorsBlock(t *testing.T) {
	buf := NewBuffer(10, 1)
	buf.SetChar(0, Pos(0, 0), NewAttributedChar('x', NewAttribute(7, 0)))
	buf.SetChar(0, Pos(1, 0), NewAttributedChar(219, NewAttribute(2, 5)))

	opt := OptimizeColors(buf)
	got := opt.GetChar(Pos(1, 0))
	if got.Attribute.Background() != 0 {
		t.Errorf("expected full block to inherit background 0, got %d", got.Attribute.Background())
	}
	if got.Attribute.Foreground() != 2 {
		t.Errorf("expected foreground untouched, got %d", got.Attribute.Foreground())
	}
}

func TestOptimizeColorsKeepsMixedGlyphs(t *testing.T) {
	buf := NewBuffer(10, 1)
	buf.SetChar(0, Pos(0, 0), NewAttributedChar('A', NewAttribute(3, 6)))

	opt := OptimizeColors(buf)
	got := opt.GetChar(Pos(0, 0))
	if got.Attribute.Foreground() != 3 || got.Attribute.Background() != 6 {
		t.Errorf("expected mixed glyph untouched, got %d/%d", got.Attribute.Foreground(), got.Attribute.Background())
	}
}

func TestOptimizeColorsDoesNotMutateInput(t *testing.T) {
	buf := NewBuffer(10, 1)
	buf.SetChar(0, Pos(0, 0), NewAttributedChar(' ', NewAttribute(4, 0)))

	OptimizeColors(buf)
	if got := buf.GetChar(Pos(0, 0)); got.Attribute.Foreground() != 4 {
		t.Errorf("expected input untouched, got fg %d", got.Attribute.Foreground())
	}
}

func TestOptimizeColorsRunningAttribute(t *testing.T) {
	buf := NewBuffer(10, 1)
	buf.SetChar(0, Pos(0, 0), NewAttributedChar('x', NewAttribute(1, 0)))
	buf.SetChar(0, Pos(1, 0), NewAttributedChar(' ', NewAttribute(6, 0)))
	buf.SetChar(0, Pos(2, 0), NewAttributedChar(' ', NewAttribute(5, 0)))

	opt := OptimizeColors(buf)
	if got := opt.GetChar(Pos(2, 0)); got.Attribute.Foreground() != 1 {
		t.Errorf("expected second blank to inherit the running foreground, got %d", got.Attribute.Foreground())
	}
}
