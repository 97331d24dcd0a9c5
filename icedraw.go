package textart

import "encoding/binary"

// IceDrawFormat is the IDF codec: a bounds header, RLE char/attribute
// pairs and a trailing font plus palette.
type IceDrawFormat struct{}

const (
	idfHeaderLen  = 12
	idfFontLen    = 4096
	idfPaletteLen = 48
)

func (f *IceDrawFormat) Name() string { return "IceDraw" }

func (f *IceDrawFormat) Extensions() []string { return []string{"idf"} }

func (f *IceDrawFormat) Load(data []byte, sauce *SauceRecord, opts LoadOptions) (*Buffer, error) {
	if len(data) < idfHeaderLen+idfFontLen+idfPaletteLen {
		return nil, loadErr("idf", "file too short: %d bytes", len(data))
	}
	version := string(data[0:4])
	if version != "\x041.3" && version != "\x041.4" {
		return nil, loadErr("idf", "unsupported version %q", version)
	}
	x1 := int(binary.LittleEndian.Uint16(data[4:6]))
	y1 := int(binary.LittleEndian.Uint16(data[6:8]))
	x2 := int(binary.LittleEndian.Uint16(data[8:10]))
	_ = y1
	if x2 < x1 {
		return nil, loadErr("idf", "invalid bounds %d..%d", x1, x2)
	}
	width := x2 - x1 + 1

	buf := NewBuffer(width, 25, WithBufferType(BufferTypeLegacyIce))
	buf.IceMode = IceModeIce
	if sauce != nil {
		sauce.ApplyTo(buf)
	}

	trailer := len(data) - idfFontLen - idfPaletteLen
	buf.SetFont(0, FontFromBytes("IDF", 8, 16, data[trailer:trailer+idfFontLen]))
	buf.Palette = PaletteFromBytes(data[trailer+idfFontLen:])

	pos := Pos(0, 0)
	advance := func(ch byte, attr byte) {
		buf.SetChar(0, pos, NewAttributedChar(rune(ch), AttributeFromByte(attr, buf.BufferType)))
		pos.X++
		if pos.X >= width {
			pos.X = 0
			pos.Y++
		}
	}
	i := idfHeaderLen
	for i+1 < trailer {
		ch, attr := data[i], data[i+1]
		i += 2
		if ch == 1 && attr == 0 {
			// repeat block: count then one pair
			if i+3 >= trailer {
				return nil, loadErr("idf", "truncated repeat block at %d", i)
			}
			count := int(binary.LittleEndian.Uint16(data[i : i+2]))
			rch, rattr := data[i+2], data[i+3]
			i += 4
			for n := 0; n < count; n++ {
				advance(rch, rattr)
			}
			continue
		}
		advance(ch, attr)
	}
	buf.SetHeightForPos(pos)
	return buf, nil
}

func (f *IceDrawFormat) Save(buf *Buffer, opts SaveOptions) ([]byte, error) {
	width := buf.Width()
	out := []byte("\x041.4")
	out = binary.LittleEndian.AppendUint16(out, 0)
	out = binary.LittleEndian.AppendUint16(out, 0)
	out = binary.LittleEndian.AppendUint16(out, uint16(width-1))
	out = binary.LittleEndian.AppendUint16(out, uint16(maxInt(buf.Height()-1, 0)))

	cell := func(x, y int) (byte, byte) {
		ch := buf.GetChar(Pos(x, y))
		c := byte(ch.Ch & 0xFF)
		if !ch.IsVisible() {
			c = ' '
		}
		return c, ch.Attribute.AsByte(buf.BufferType)
	}
	total := width * buf.Height()
	i := 0
	for i < total {
		ch, attr := cell(i%width, i/width)
		run := 1
		for i+run < total && run < 0xFFFF {
			nch, nattr := cell((i+run)%width, (i+run)/width)
			if nch != ch || nattr != attr {
				break
			}
			run++
		}
		// the repeat escape costs six bytes
		if run > 3 || (ch == 1 && attr == 0) {
			out = append(out, 1, 0)
			out = binary.LittleEndian.AppendUint16(out, uint16(run))
			out = append(out, ch, attr)
		} else {
			for n := 0; n < run; n++ {
				out = append(out, ch, attr)
			}
		}
		i += run
	}

	font := buf.GetFont(0)
	if font == nil {
		font = NewDefaultFont()
	}
	if font.Size.Height != 16 {
		return nil, saveErr("idf", "only 8x16 fonts supported, got %dx%d", font.Size.Width, font.Size.Height)
	}
	out = font.AppendData(out)
	out = append(out, buf.Palette.To16ColorBytes()...)

	if opts.shouldWriteSauce(buf) {
		return NewSauceBuilder(SauceDataCharacter, SauceFileANSI).
			WithMeta(buf.Sauce).
			WithSize(width, buf.Height()).
			WithIce(true).
			AppendTo(out)
	}
	return out, nil
}
