package textart

import (
	"errors"
	"testing"
)

func TestSauceRoundTrip(t *testing.T) {
	payload := []byte("hello world")
	meta := SauceMeta{
		Title:    "Test Piece",
		Author:   "Somebody",
		Group:    "A Group",
		Comments: []string{"first line", "second line"},
	}
	data, err := NewSauceBuilder(SauceDataCharacter, SauceFileANSI).
		WithMeta(meta).
		WithSize(80, 25).
		WithIce(true).
		WithFontName("IBM VGA").
		AppendTo(payload)
	if err != nil {
		t.Fatal(err)
	}

	rec, err := ReadSauce(data)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Meta.Title != meta.Title {
		t.Errorf("expected title %q, got %q", meta.Title, rec.Meta.Title)
	}
	if rec.Meta.Author != meta.Author {
		t.Errorf("expected author %q, got %q", meta.Author, rec.Meta.Author)
	}
	if rec.Meta.Group != meta.Group {
		t.Errorf("expected group %q, got %q", meta.Group, rec.Meta.Group)
	}
	if len(rec.Meta.Comments) != 2 || rec.Meta.Comments[0] != "first line" || rec.Meta.Comments[1] != "second line" {
		t.Errorf("expected comments round-tripped, got %v", rec.Meta.Comments)
	}
	if rec.DataType != SauceDataCharacter || rec.FileType != SauceFileANSI {
		t.Errorf("expected character/ansi, got %d/%d", rec.DataType, rec.FileType)
	}
	if rec.TInfo1 != 80 || rec.TInfo2 != 25 {
		t.Errorf("expected 80x25, got %dx%d", rec.TInfo1, rec.TInfo2)
	}
	if !rec.UseIce() {
		t.Error("expected ice flag set")
	}
	if rec.FontName != "IBM VGA" {
		t.Errorf("expected font name kept, got %q", rec.FontName)
	}
	if rec.FileSize != uint32(len(payload)) {
		t.Errorf("expected file size %d, got %d", len(payload), rec.FileSize)
	}
	if got := rec.ContentSize(data); got != len(payload) {
		t.Errorf("expected content size %d, got %d", len(payload), got)
	}
}

func TestSauceMissing(t *testing.T) {
	_, err := ReadSauce([]byte("just some text, no trailer"))
	var serr *SauceError
	if !errors.As(err, &serr) || serr.Kind != SauceErrNoSauce {
		t.Errorf("expected SauceErrNoSauce, got %v", err)
	}
}

func TestSauceBadVersion(t *testing.T) {
	payload := []byte("x")
	data, err := NewSauceBuilder(SauceDataCharacter, SauceFileANSI).AppendTo(payload)
	if err != nil {
		t.Fatal(err)
	}
	data[len(data)-sauceRecordLen+5] = '9'

	_, err = ReadSauce(data)
	var serr *SauceError
	if !errors.As(err, &serr) || serr.Kind != SauceErrUnsupportedVersion {
		t.Errorf("expected SauceErrUnsupportedVersion, got %v", err)
	}
}

func TestSauceApplyTo(t *testing.T) {
	data, err := NewSauceBuilder(SauceDataCharacter, SauceFileANSI).
		WithSize(132, 50).
		WithIce(true).
		AppendTo(nil)
	if err != nil {
		t.Fatal(err)
	}
	rec, err := ReadSauce(data)
	if err != nil {
		t.Fatal(err)
	}

	buf := NewBuffer(80, 25)
	rec.ApplyTo(buf)
	if buf.Width() != 132 {
		t.Errorf("expected width 132, got %d", buf.Width())
	}
	if buf.Height() != 50 {
		t.Errorf("expected height 50, got %d", buf.Height())
	}
	if buf.IceMode != IceModeIce {
		t.Errorf("expected ice mode, got %d", buf.IceMode)
	}
	if buf.BufferType != BufferTypeLegacyIce {
		t.Errorf("expected legacy ice buffer type, got %d", buf.BufferType)
	}
}

func TestSauceApplyBinaryTextWidth(t *testing.T) {
	data, err := NewSauceBuilder(SauceDataBinaryText, 40).AppendTo(nil)
	if err != nil {
		t.Fatal(err)
	}
	rec, err := ReadSauce(data)
	if err != nil {
		t.Fatal(err)
	}

	buf := NewBuffer(80, 25)
	rec.ApplyTo(buf)
	if buf.Width() != 80 {
		t.Errorf("expected file type doubled to width 80, got %d", buf.Width())
	}
}

func TestSauceCP437Fields(t *testing.T) {
	data, err := NewSauceBuilder(SauceDataCharacter, SauceFileANSI).
		WithMeta(SauceMeta{Title: "Läufer"}).
		AppendTo(nil)
	if err != nil {
		t.Fatal(err)
	}
	rec, err := ReadSauce(data)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Meta.Title != "Läufer" {
		t.Errorf("expected cp437 title round trip, got %q", rec.Meta.Title)
	}
}

func TestSauceCommentLimit(t *testing.T) {
	comments := make([]string, 256)
	_, err := NewSauceBuilder(SauceDataCharacter, SauceFileANSI).
		WithMeta(SauceMeta{Comments: comments}).
		AppendTo(nil)
	var serr *SauceError
	if !errors.As(err, &serr) || serr.Kind != SauceErrCommentLimit {
		t.Errorf("expected SauceErrCommentLimit, got %v", err)
	}
}
