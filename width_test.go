package textart

import "testing"

func TestDisplayWidth(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"hello", 5},
		{"漢字", 4},
		{"héllo", 5},
	}
	for _, c := range cases {
		if got := DisplayWidth(c.in); got != c.want {
			t.Errorf("DisplayWidth(%q): expected %d, got %d", c.in, c.want, got)
		}
	}
}

func TestRuneDisplayWidth(t *testing.T) {
	if got := RuneDisplayWidth('a'); got != 1 {
		t.Errorf("expected width 1, got %d", got)
	}
	if got := RuneDisplayWidth('漢'); got != 2 {
		t.Errorf("expected width 2, got %d", got)
	}
}

func putText(es *EditState, x, y int, s string) {
	for i, r := range s {
		es.Buffer.SetChar(0, Pos(x+i, y), NewAttributedChar(r, DefaultAttribute()))
	}
}

func TestCopyTextWholeBuffer(t *testing.T) {
	es := DefaultEditState()
	putText(es, 0, 0, "first line")
	putText(es, 0, 1, "second")

	got := es.CopyText()
	if got != "first line\nsecond" {
		t.Errorf("expected both lines trimmed, got %q", got)
	}
}

func TestCopyTextRectangle(t *testing.T) {
	es := DefaultEditState()
	putText(es, 0, 0, "abcdef")
	putText(es, 0, 1, "ghijkl")

	es.SetSelection(NewSelection(Rect(1, 0, 3, 2)))
	got := es.CopyText()
	if got != "bcd\nhij" {
		t.Errorf("expected column bounds kept per row, got %q", got)
	}
}

func TestCopyTextLines(t *testing.T) {
	es := DefaultEditState()
	putText(es, 0, 0, "abcdef")
	putText(es, 0, 1, "ghijkl")

	sel := Selection{Anchor: Pos(3, 0), Lead: Pos(3, 1), Shape: SelectionLines}
	es.SetSelection(sel)
	got := es.CopyText()
	if got != "def\nghi" {
		t.Errorf("expected reading-order extraction, got %q", got)
	}
}

func TestCopyTextCP437Glyphs(t *testing.T) {
	es := DefaultEditState()
	es.Buffer.SetChar(0, Pos(0, 0), NewAttributedChar(176, DefaultAttribute()))

	got := es.CopyText()
	if got != "░" {
		t.Errorf("expected light shade as unicode, got %q", got)
	}
}
