package textart

import (
	"strings"

	"github.com/unilibs/uniwidth"
)

// DisplayWidth returns the terminal column width of a string, counting
// wide runes (CJK, fullwidth forms) as two columns and zero-width
// runes as none.
func DisplayWidth(s string) int {
	return uniwidth.StringWidth(s)
}

// RuneDisplayWidth returns the column width of a single rune.
func RuneDisplayWidth(r rune) int {
	return uniwidth.RuneWidth(r)
}

// CopyText extracts the selected cells as unicode text, one line per
// selected row with trailing blanks trimmed. Rectangular selections
// keep their column bounds on every row; line selections run from the
// anchor to the lead in reading order. Without a selection the whole
// buffer is extracted.
func (es *EditState) CopyText() string {
	conv := NewASCIIParser()
	buf := es.Buffer
	sel := es.Selection()
	if sel != nil && !sel.IsEmpty() && sel.Shape == SelectionLines {
		return es.copyLineText(conv, *sel)
	}
	rect := es.SelectedRectangle()
	if rect.IsEmpty() {
		rect = Rect(0, 0, buf.Width(), buf.LineCount())
	}
	var sb strings.Builder
	for y := 0; y < rect.Size.Height; y++ {
		if y > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(trimLineEnd(es.rowText(conv, rect.Start.Y+y, rect.Start.X, rect.Start.X+rect.Size.Width)))
	}
	return sb.String()
}

func (es *EditState) copyLineText(conv BufferParser, sel Selection) string {
	start, end := sel.Anchor, sel.Lead
	if end.Y < start.Y || (end.Y == start.Y && end.X < start.X) {
		start, end = end, start
	}
	width := es.Buffer.Width()
	var sb strings.Builder
	for y := start.Y; y <= end.Y; y++ {
		from, to := 0, width
		if y == start.Y {
			from = start.X
		}
		if y == end.Y {
			to = end.X
		}
		if y > start.Y {
			sb.WriteByte('\n')
		}
		sb.WriteString(trimLineEnd(es.rowText(conv, y, from, to)))
	}
	return sb.String()
}

func (es *EditState) rowText(conv BufferParser, y, from, to int) string {
	var sb strings.Builder
	for x := from; x < to; x++ {
		ch := es.Buffer.GetChar(Pos(x, y))
		r := conv.ConvertToUnicode(ch)
		if r == 0 {
			r = ' '
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func trimLineEnd(s string) string {
	return strings.TrimRight(s, " \x00")
}
