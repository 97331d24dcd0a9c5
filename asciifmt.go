package textart

// AsciiFormat is the plain text codec: CP437 bytes, CRLF line ends, no
// attributes.
type AsciiFormat struct{}

func (f *AsciiFormat) Name() string { return "ASCII" }

func (f *AsciiFormat) Extensions() []string {
	return []string{"txt", "asc", "diz", "nfo", "ion"}
}

func (f *AsciiFormat) Load(data []byte, sauce *SauceRecord, opts LoadOptions) (*Buffer, error) {
	width := 80
	if opts.Width > 0 {
		width = opts.Width
	}
	if sauce != nil && sauce.TInfo1 > 0 {
		width = int(sauce.TInfo1)
	}
	buf := NewBuffer(width, 25)
	if sauce != nil {
		sauce.ApplyTo(buf)
	}
	caret := NewCaret()
	parser := NewASCIIParser()
	for _, b := range data {
		if _, err := parser.Print(buf, caret, rune(b)); err != nil && !opts.SkipErrors {
			return nil, err
		}
	}
	buf.SetHeightForPos(Pos(caret.Position.X, maxInt(caret.Position.Y, buf.LineCount()-1)))
	cropLoadedHeight(buf, sauce)
	return buf, nil
}

func (f *AsciiFormat) Save(buf *Buffer, opts SaveOptions) ([]byte, error) {
	var out []byte
	height := buf.LineCount()
	if !opts.LongerThan25Lines {
		height = minInt(height, buf.Height())
	}
	for y := 0; y < height; y++ {
		lineEnd := 0
		for x := 0; x < buf.Width(); x++ {
			ch := buf.GetChar(Pos(x, y))
			if ch.IsVisible() && ch.Ch != ' ' && ch.Ch != 0 {
				lineEnd = x + 1
			}
		}
		for x := 0; x < lineEnd; x++ {
			ch := buf.GetChar(Pos(x, y))
			c := ch.Ch
			if !ch.IsVisible() || c == 0 {
				c = ' '
			}
			if opts.Modern {
				out = append(out, string(UnicodeFromCP437(byte(c)))...)
			} else {
				out = append(out, byte(c))
			}
		}
		if y+1 < height {
			out = append(out, '\r', '\n')
		}
	}
	if opts.shouldWriteSauce(buf) {
		return NewSauceBuilder(SauceDataCharacter, SauceFileASCII).
			WithMeta(buf.Sauce).
			WithSize(buf.Width(), buf.Height()).
			AppendTo(out)
	}
	return out, nil
}
