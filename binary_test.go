package textart

import "testing"

func TestBinaryRoundTrip(t *testing.T) {
	buf := NewBuffer(160, 2)
	fillTestPattern(buf, 160, 2)

	noSauce := false
	f := &BinaryFormat{}
	data, err := f.Save(buf, SaveOptions{WriteSauce: &noSauce})
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 160*2*2 {
		t.Fatalf("expected %d bytes, got %d", 160*2*2, len(data))
	}

	loaded, err := f.Load(data, nil, LoadOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Width() != 160 || loaded.Height() != 2 {
		t.Fatalf("expected 160x2, got %dx%d", loaded.Width(), loaded.Height())
	}
	compareCells(t, buf, loaded, 160, 2)
}

func TestBinarySauceWidth(t *testing.T) {
	buf := NewBuffer(80, 1)
	fillTestPattern(buf, 80, 1)

	yes := true
	data, err := SaveBuffer("art.bin", buf, SaveOptions{WriteSauce: &yes})
	if err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadBuffer("art.bin", data, LoadOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Width() != 80 {
		t.Errorf("expected SAUCE width 80, got %d", loaded.Width())
	}
	compareCells(t, buf, loaded, 80, 1)
}

func TestBinarySauceWidthLimit(t *testing.T) {
	buf := NewBuffer(600, 1)
	yes := true
	f := &BinaryFormat{}
	_, err := f.Save(buf, SaveOptions{WriteSauce: &yes})
	if serr, ok := err.(*SauceError); !ok || serr.Kind != SauceErrBinWidthLimit {
		t.Errorf("expected SauceErrBinWidthLimit, got %v", err)
	}
}

func TestBinaryDefaultWidth(t *testing.T) {
	f := &BinaryFormat{}
	loaded, err := f.Load(make([]byte, 160*2), nil, LoadOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Width() != 160 {
		t.Errorf("expected default width 160, got %d", loaded.Width())
	}
	if loaded.Height() != 1 {
		t.Errorf("expected height 1, got %d", loaded.Height())
	}
}
