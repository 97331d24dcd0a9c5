package textart

import "testing"

func TestIceDrawRoundTrip(t *testing.T) {
	buf := NewBuffer(8, 3, WithBufferType(BufferTypeLegacyIce))
	buf.IceMode = IceModeIce
	fillTestPattern(buf, 8, 3)

	noSauce := false
	f := &IceDrawFormat{}
	data, err := f.Save(buf, SaveOptions{WriteSauce: &noSauce})
	if err != nil {
		t.Fatal(err)
	}
	if string(data[0:4]) != "\x041.4" {
		t.Fatalf("expected idf header, got %q", data[0:4])
	}

	loaded, err := f.Load(data, nil, LoadOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Width() != 8 || loaded.Height() != 3 {
		t.Fatalf("expected 8x3, got %dx%d", loaded.Width(), loaded.Height())
	}
	compareCells(t, buf, loaded, 8, 3)
}

func TestIceDrawRepeatBlocks(t *testing.T) {
	buf := NewBuffer(16, 4, WithBufferType(BufferTypeLegacyIce))
	for y := 0; y < 4; y++ {
		for x := 0; x < 16; x++ {
			buf.SetChar(0, Pos(x, y), NewAttributedChar(176, NewAttribute(7, 1)))
		}
	}

	noSauce := false
	f := &IceDrawFormat{}
	data, err := f.Save(buf, SaveOptions{WriteSauce: &noSauce})
	if err != nil {
		t.Fatal(err)
	}
	// one repeat escape replaces 64 pairs
	if want := idfHeaderLen + 6 + idfFontLen + idfPaletteLen; len(data) != want {
		t.Errorf("expected %d bytes, got %d", want, len(data))
	}

	loaded, err := f.Load(data, nil, LoadOptions{})
	if err != nil {
		t.Fatal(err)
	}
	compareCells(t, buf, loaded, 16, 4)
}

func TestIceDrawEscapesRepeatMarkerCell(t *testing.T) {
	// a literal glyph 1 on attribute 0 must be written as a run of one
	buf := NewBuffer(4, 1, WithBufferType(BufferTypeLegacyIce))
	attr := DefaultAttribute()
	attr.SetForeground(0)
	attr.SetBackground(0)
	buf.SetChar(0, Pos(0, 0), NewAttributedChar(1, attr))

	noSauce := false
	f := &IceDrawFormat{}
	data, err := f.Save(buf, SaveOptions{WriteSauce: &noSauce})
	if err != nil {
		t.Fatal(err)
	}
	loaded, err := f.Load(data, nil, LoadOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if got := loaded.GetChar(Pos(0, 0)); got.Ch != 1 {
		t.Errorf("expected glyph 1, got %d", got.Ch)
	}
}

func TestIceDrawRejectsBadVersion(t *testing.T) {
	f := &IceDrawFormat{}
	data := make([]byte, idfHeaderLen+idfFontLen+idfPaletteLen)
	copy(data, "\x049.9")
	if _, err := f.Load(data, nil, LoadOptions{}); err == nil {
		t.Error("expected bad version to fail")
	}
}
