package textart

import (
	"strings"
	"testing"
)

func TestAsciiSaveHeightClamp(t *testing.T) {
	buf := NewBuffer(80, 25)
	buf.SetChar(0, Pos(0, 0), NewAttributedChar('A', DefaultAttribute()))
	buf.SetChar(0, Pos(0, 30), NewAttributedChar('Z', DefaultAttribute()))

	noSauce := false
	f := &AsciiFormat{}

	data, err := f.Save(buf, SaveOptions{WriteSauce: &noSauce})
	if err != nil {
		t.Fatal(err)
	}
	if lines := strings.Count(string(data), "\r\n") + 1; lines > 25 {
		t.Errorf("expected output clamped to 25 lines, got %d", lines)
	}
	if strings.Contains(string(data), "Z") {
		t.Error("expected the clamped save to drop line 30")
	}

	data, err = f.Save(buf, SaveOptions{WriteSauce: &noSauce, LongerThan25Lines: true})
	if err != nil {
		t.Fatal(err)
	}
	if lines := strings.Count(string(data), "\r\n") + 1; lines != 31 {
		t.Errorf("expected 31 lines with the clamp lifted, got %d", lines)
	}
	if !strings.Contains(string(data), "Z") {
		t.Error("expected line 30 in the unclamped save")
	}
}
