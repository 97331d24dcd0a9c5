package textart

import "testing"

func TestTundraRoundTrip(t *testing.T) {
	buf := NewBuffer(10, 3, WithBufferType(BufferTypeNoLimits))
	red := buf.Palette.InsertColorRGB(255, 10, 20)
	attr := DefaultAttribute()
	attr.SetForeground(red)
	attr.SetBackground(1)
	buf.SetChar(0, Pos(0, 0), NewAttributedChar('T', attr))
	buf.SetChar(0, Pos(1, 0), NewAttributedChar('N', attr))
	buf.SetChar(0, Pos(5, 2), NewAttributedChar('D', DefaultChar().Attribute))

	noSauce := false
	f := &TundraFormat{}
	data, err := f.Save(buf, SaveOptions{WriteSauce: &noSauce})
	if err != nil {
		t.Fatal(err)
	}
	if data[0] != tundraVersion || string(data[1:9]) != tundraID {
		t.Fatalf("expected tundra header, got %v", data[:9])
	}

	loaded, err := f.Load(data, nil, LoadOptions{Width: 10})
	if err != nil {
		t.Fatal(err)
	}
	got := loaded.GetChar(Pos(0, 0))
	if got.Ch != 'T' {
		t.Errorf("expected 'T', got %q", got.Ch)
	}
	r, g, b := loaded.Palette.GetRGB(int(got.Attribute.Foreground()))
	if r != 255 || g != 10 || b != 20 {
		t.Errorf("expected truecolor foreground kept, got %d,%d,%d", r, g, b)
	}
	if got := loaded.GetChar(Pos(5, 2)); got.Ch != 'D' {
		t.Errorf("expected position jump to (5,2), got %q", got.Ch)
	}
	if loaded.Height() != 3 {
		t.Errorf("expected height 3, got %d", loaded.Height())
	}
}

func TestTundraCommandByteAsGlyph(t *testing.T) {
	buf := NewBuffer(4, 1, WithBufferType(BufferTypeNoLimits))
	// glyph 0x01 collides with the position command and must travel
	// inside a color command
	buf.SetChar(0, Pos(0, 0), NewAttributedChar(1, DefaultAttribute()))
	buf.SetChar(0, Pos(1, 0), NewAttributedChar(1, DefaultAttribute()))

	noSauce := false
	f := &TundraFormat{}
	data, err := f.Save(buf, SaveOptions{WriteSauce: &noSauce})
	if err != nil {
		t.Fatal(err)
	}
	loaded, err := f.Load(data, nil, LoadOptions{Width: 4})
	if err != nil {
		t.Fatal(err)
	}
	if got := loaded.GetChar(Pos(0, 0)); got.Ch != 1 {
		t.Errorf("expected glyph 1, got %d", got.Ch)
	}
	if got := loaded.GetChar(Pos(1, 0)); got.Ch != 1 {
		t.Errorf("expected glyph 1, got %d", got.Ch)
	}
}

func TestTundraRejectsBadHeader(t *testing.T) {
	f := &TundraFormat{}
	if _, err := f.Load([]byte("\x17NOTATUNDRA"), nil, LoadOptions{}); err == nil {
		t.Error("expected bad header to fail")
	}
}
