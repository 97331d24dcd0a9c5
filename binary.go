package textart

// BinaryFormat is the raw screen-dump codec: char/attribute byte pairs,
// 160 columns unless SAUCE says otherwise.
type BinaryFormat struct{}

func (f *BinaryFormat) Name() string { return "BinaryText" }

func (f *BinaryFormat) Extensions() []string { return []string{"bin"} }

func (f *BinaryFormat) Load(data []byte, sauce *SauceRecord, opts LoadOptions) (*Buffer, error) {
	width := 160
	if opts.Width > 0 {
		width = opts.Width
	}
	if sauce != nil && sauce.FileType > 0 {
		width = int(sauce.FileType) << 1
	}
	buf := NewBuffer(width, 25)
	if sauce != nil {
		sauce.ApplyTo(buf)
	}
	if buf.TerminalState.UseIceColors() {
		buf.BufferType = BufferTypeLegacyIce
		buf.IceMode = IceModeIce
	}
	pos := Pos(0, 0)
	for i := 0; i+1 < len(data); i += 2 {
		ch := NewAttributedChar(rune(data[i]), AttributeFromByte(data[i+1], buf.BufferType))
		buf.SetChar(0, pos, ch)
		pos.X++
		if pos.X >= width {
			pos.X = 0
			pos.Y++
		}
	}
	buf.SetHeightForPos(pos)
	return buf, nil
}

func (f *BinaryFormat) Save(buf *Buffer, opts SaveOptions) ([]byte, error) {
	out := make([]byte, 0, buf.Width()*buf.Height()*2)
	for y := 0; y < buf.Height(); y++ {
		for x := 0; x < buf.Width(); x++ {
			ch := buf.GetChar(Pos(x, y))
			c := byte(ch.Ch & 0xFF)
			if !ch.IsVisible() {
				c = ' '
			}
			out = append(out, c, ch.Attribute.AsByte(buf.BufferType))
		}
	}
	if opts.shouldWriteSauce(buf) {
		if buf.Width() > sauceMaxWidth {
			return nil, sauceErr(SauceErrBinWidthLimit, "width %d", buf.Width())
		}
		b := NewSauceBuilder(SauceDataBinaryText, uint8(buf.Width()>>1)).
			WithMeta(buf.Sauce).
			WithIce(buf.IceMode == IceModeIce || buf.TerminalState.UseIceColors())
		if font := buf.GetFont(0); font != nil && !font.IsDefault() {
			b = b.WithFontName(font.Name)
		}
		return b.AppendTo(out)
	}
	return out, nil
}
