package textart

// ArtworxFormat is the ADF codec: version byte, a 192-byte EGA palette,
// a 4096-byte font and 80-column char/attribute pairs.
type ArtworxFormat struct{}

const (
	adfVersion    = 1
	adfPaletteLen = 192
	adfFontLen    = 4096
	adfWidth      = 80
)

func (f *ArtworxFormat) Name() string { return "Artworx" }

func (f *ArtworxFormat) Extensions() []string { return []string{"adf"} }

func (f *ArtworxFormat) Load(data []byte, sauce *SauceRecord, opts LoadOptions) (*Buffer, error) {
	if len(data) < 1+adfPaletteLen+adfFontLen {
		return nil, loadErr("adf", "file too short: %d bytes", len(data))
	}
	if data[0] != adfVersion {
		return nil, loadErr("adf", "unsupported version %d", data[0])
	}
	buf := NewBuffer(adfWidth, 25, WithBufferType(BufferTypeLegacyIce))
	buf.IceMode = IceModeIce
	if sauce != nil {
		sauce.ApplyTo(buf)
	}

	// the file carries a full 64-entry EGA palette; only the 16
	// hardware slots are active
	full := PaletteFromBytes(data[1 : 1+adfPaletteLen])
	buf.Palette = full.CycleEGAColors()

	buf.SetFont(0, FontFromBytes("ADF", 8, 16, data[1+adfPaletteLen:1+adfPaletteLen+adfFontLen]))

	pos := Pos(0, 0)
	cells := data[1+adfPaletteLen+adfFontLen:]
	for i := 0; i+1 < len(cells); i += 2 {
		ch := NewAttributedChar(rune(cells[i]), AttributeFromByte(cells[i+1], buf.BufferType))
		buf.SetChar(0, pos, ch)
		pos.X++
		if pos.X >= adfWidth {
			pos.X = 0
			pos.Y++
		}
	}
	buf.SetHeightForPos(pos)
	return buf, nil
}

func (f *ArtworxFormat) Save(buf *Buffer, opts SaveOptions) ([]byte, error) {
	out := []byte{adfVersion}
	out = append(out, buf.Palette.ToEGABytes()...)

	font := buf.GetFont(0)
	if font == nil {
		font = NewDefaultFont()
	}
	if font.Size.Height != 16 {
		return nil, saveErr("adf", "only 8x16 fonts supported, got %dx%d", font.Size.Width, font.Size.Height)
	}
	out = font.AppendData(out)

	for y := 0; y < buf.Height(); y++ {
		for x := 0; x < adfWidth; x++ {
			ch := buf.GetChar(Pos(x, y))
			c := byte(ch.Ch & 0xFF)
			if !ch.IsVisible() {
				c = ' '
			}
			out = append(out, c, ch.Attribute.AsByte(buf.BufferType))
		}
	}
	if opts.shouldWriteSauce(buf) {
		return NewSauceBuilder(SauceDataCharacter, SauceFileANSI).
			WithMeta(buf.Sauce).
			WithSize(adfWidth, buf.Height()).
			WithIce(true).
			AppendTo(out)
	}
	return out, nil
}
