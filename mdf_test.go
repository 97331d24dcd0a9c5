package textart

import (
	"testing"
)

func TestMdfRoundTrip(t *testing.T) {
	buf := NewBuffer(10, 4)
	buf.Sauce.Title = "Title"
	buf.Sauce.Author = "Author"
	buf.Sauce.Group = "Group"
	buf.Sauce.Comments = []string{"first", "second"}
	buf.Palette.SetColorRGB(1, 10, 20, 30)
	buf.SetChar(0, Pos(0, 0), NewAttributedChar('M', NewAttribute(4, 1)))
	buf.SetChar(0, Pos(9, 3), NewAttributedChar('x', NewAttribute(7, 0)))

	float := NewLayer("Float", Size{Width: 3, Height: 2})
	float.HasAlphaChannel = true
	float.Offset = Pos(2, 1)
	float.IsPositionLocked = true
	float.SetChar(Pos(0, 0), NewAttributedChar('F', DefaultAttribute()))
	buf.Layers = append([]*Layer{float}, buf.Layers...)

	data, err := (&MdfFormat{}).Save(buf, SaveOptions{})
	if err != nil {
		t.Fatal(err)
	}
	got, err := (&MdfFormat{}).Load(data, nil, LoadOptions{})
	if err != nil {
		t.Fatal(err)
	}

	if got.Width() != 10 || got.Height() != 4 {
		t.Errorf("expected 10x4, got %dx%d", got.Width(), got.Height())
	}
	if got.Sauce.Title != "Title" || got.Sauce.Author != "Author" || got.Sauce.Group != "Group" {
		t.Errorf("expected metadata kept, got %+v", got.Sauce)
	}
	if len(got.Sauce.Comments) != 2 || got.Sauce.Comments[1] != "second" {
		t.Errorf("expected 2 comments, got %v", got.Sauce.Comments)
	}
	if c := got.Palette.Get(1); c != RGB(10, 20, 30) {
		t.Errorf("expected palette slot 1 kept, got %v", c)
	}

	if len(got.Layers) != 3 {
		t.Fatalf("expected 3 layers, got %d", len(got.Layers))
	}
	top := got.Layers[0]
	if top.Title != "Float" || top.Offset != Pos(2, 1) || top.Size != (Size{Width: 3, Height: 2}) {
		t.Errorf("expected floating layer geometry kept, got %q %v %v", top.Title, top.Offset, top.Size)
	}
	if !top.IsPositionLocked || !top.HasAlphaChannel {
		t.Error("expected layer flags kept")
	}
	if ch := top.GetChar(Pos(0, 0)); ch.Ch != 'F' {
		t.Errorf("expected 'F' on the floating layer, got %q", ch.Ch)
	}
	if !got.Layers[2].IsLocked {
		t.Error("expected the background layer to stay locked")
	}
	if ch := got.GetChar(Pos(0, 0)); ch.Ch != 'M' || ch.Attribute.Foreground() != 4 || ch.Attribute.Background() != 1 {
		t.Errorf("expected 'M' fg=4 bg=1, got %q fg=%d bg=%d", ch.Ch, ch.Attribute.Foreground(), ch.Attribute.Background())
	}
	if ch := got.GetChar(Pos(9, 3)); ch.Ch != 'x' {
		t.Errorf("expected 'x' at (9,3), got %q", ch.Ch)
	}
}

func TestMdfFontRoundTrip(t *testing.T) {
	buf := NewBuffer(4, 2)
	alt := FontFromBytes("Alt 8x8", 8, 8, make([]byte, 256*8))
	buf.SetFont(1, alt)

	data, err := (&MdfFormat{}).Save(buf, SaveOptions{})
	if err != nil {
		t.Fatal(err)
	}
	got, err := (&MdfFormat{}).Load(data, nil, LoadOptions{})
	if err != nil {
		t.Fatal(err)
	}

	f := got.GetFont(1)
	if f == nil {
		t.Fatal("expected font slot 1 kept")
	}
	if f.Name != "Alt 8x8" || f.Size != (Size{Width: 8, Height: 8}) {
		t.Errorf("expected Alt 8x8, got %q %v", f.Name, f.Size)
	}
	if got.GetFont(0) == nil {
		t.Error("expected the default font in slot 0")
	}
}

func TestMdfRejectsBadHeader(t *testing.T) {
	if _, err := (&MdfFormat{}).Load([]byte("not an mdf file"), nil, LoadOptions{}); err == nil {
		t.Error("expected a bad header to be rejected")
	}
}

func TestMdfRejectsChecksumMismatch(t *testing.T) {
	buf := NewBuffer(4, 2)
	data, err := (&MdfFormat{}).Save(buf, SaveOptions{})
	if err != nil {
		t.Fatal(err)
	}
	data[len(data)-2] ^= 0xFF

	if _, err := (&MdfFormat{}).Load(data, nil, LoadOptions{}); err == nil {
		t.Error("expected a corrupted stream to be rejected")
	}
}

func TestLoadBufferDecodesMdfDirectly(t *testing.T) {
	buf := NewBuffer(6, 3)
	buf.Sauce.Title = "Container"
	buf.SetChar(0, Pos(1, 1), NewAttributedChar('c', DefaultAttribute()))

	data, err := SaveBuffer("art.mdf", buf, SaveOptions{})
	if err != nil {
		t.Fatal(err)
	}
	got, err := LoadBuffer("art.mdf", data, LoadOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if got.FileName != "art.mdf" {
		t.Errorf("expected file name kept, got %q", got.FileName)
	}
	if got.Sauce.Title != "Container" {
		t.Errorf("expected title kept, got %q", got.Sauce.Title)
	}
	if ch := got.GetChar(Pos(1, 1)); ch.Ch != 'c' {
		t.Errorf("expected 'c' at (1,1), got %q", ch.Ch)
	}
}
