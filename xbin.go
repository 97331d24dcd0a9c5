package textart

import "encoding/binary"

// XBinFormat is the eXtended BIN codec: explicit dimensions, optional
// palette and font blocks, run compression and a 512-character mode.
type XBinFormat struct{}

const (
	xbinID = "XBIN\x1A"

	xbinFlagPalette  = 0x01
	xbinFlagFont     = 0x02
	xbinFlagCompress = 0x04
	xbinFlagNonBlink = 0x08
	xbinFlag512Chars = 0x10

	// attribute bit repurposed as the font page selector in 512 mode
	xbinAttr512 = 0x08

	xbinCompressOff  = 0x00
	xbinCompressChar = 0x40
	xbinCompressAttr = 0x80
	xbinCompressFull = 0xC0
)

func (f *XBinFormat) Name() string { return "XBin" }

func (f *XBinFormat) Extensions() []string { return []string{"xb", "xbin"} }

func (f *XBinFormat) Load(data []byte, sauce *SauceRecord, opts LoadOptions) (*Buffer, error) {
	if len(data) < 11 || string(data[0:5]) != xbinID {
		return nil, loadErr("xbin", "bad header")
	}
	width := int(binary.LittleEndian.Uint16(data[5:7]))
	height := int(binary.LittleEndian.Uint16(data[7:9]))
	fontSize := int(data[9])
	flags := data[10]
	if width == 0 || fontSize == 0 || fontSize > 32 {
		return nil, loadErr("xbin", "invalid dimensions %dx%d font %d", width, height, fontSize)
	}

	bufType := BufferTypeLegacyDos
	extended := flags&xbinFlag512Chars != 0
	ice := flags&xbinFlagNonBlink != 0
	switch {
	case extended && ice:
		bufType = BufferTypeExtFontIce
	case extended:
		bufType = BufferTypeExtFont
	case ice:
		bufType = BufferTypeLegacyIce
	}
	buf := NewBuffer(width, height, WithBufferType(bufType))
	buf.TerminalState.SetUseIceColors(ice)
	if ice {
		buf.IceMode = IceModeIce
	}
	if sauce != nil {
		buf.Sauce = sauce.Meta.Clone()
	}

	i := 11
	if flags&xbinFlagPalette != 0 {
		if i+48 > len(data) {
			return nil, loadErr("xbin", "truncated palette")
		}
		buf.Palette = PaletteFromBytes(data[i : i+48])
		i += 48
	}
	if flags&xbinFlagFont != 0 {
		fonts := 1
		if extended {
			fonts = 2
		}
		for page := 0; page < fonts; page++ {
			if i+fontSize*256 > len(data) {
				return nil, loadErr("xbin", "truncated font")
			}
			buf.SetFont(page, FontFromBytes("XBin", 8, fontSize, data[i:i+fontSize*256]))
			i += fontSize * 256
		}
	}

	cells := make([]AttributedChar, 0, width*height)
	makeCell := func(chb, attrb byte) AttributedChar {
		page := 0
		if extended && attrb&xbinAttr512 != 0 {
			page = 1
			attrb &^= xbinAttr512
		}
		ch := NewAttributedChar(rune(chb), AttributeFromByte(attrb, bufType))
		ch.Attribute.FontPage = page
		return ch
	}
	if flags&xbinFlagCompress != 0 {
		for i < len(data) && len(cells) < width*height {
			rep := data[i]
			i++
			count := int(rep&0x3F) + 1
			switch rep & 0xC0 {
			case xbinCompressOff:
				for n := 0; n < count; n++ {
					if i+1 >= len(data) {
						return nil, loadErr("xbin", "truncated block")
					}
					cells = append(cells, makeCell(data[i], data[i+1]))
					i += 2
				}
			case xbinCompressChar:
				if i >= len(data) {
					return nil, loadErr("xbin", "truncated block")
				}
				chb := data[i]
				i++
				for n := 0; n < count; n++ {
					if i >= len(data) {
						return nil, loadErr("xbin", "truncated block")
					}
					cells = append(cells, makeCell(chb, data[i]))
					i++
				}
			case xbinCompressAttr:
				if i >= len(data) {
					return nil, loadErr("xbin", "truncated block")
				}
				attrb := data[i]
				i++
				for n := 0; n < count; n++ {
					if i >= len(data) {
						return nil, loadErr("xbin", "truncated block")
					}
					cells = append(cells, makeCell(data[i], attrb))
					i++
				}
			case xbinCompressFull:
				if i+1 >= len(data) {
					return nil, loadErr("xbin", "truncated block")
				}
				cell := makeCell(data[i], data[i+1])
				i += 2
				for n := 0; n < count; n++ {
					cells = append(cells, cell)
				}
			}
		}
	} else {
		for ; i+1 < len(data) && len(cells) < width*height; i += 2 {
			cells = append(cells, makeCell(data[i], data[i+1]))
		}
	}
	for n, cell := range cells {
		buf.SetChar(0, PositionFromIndex(n, width), cell)
	}
	return buf, nil
}

func (f *XBinFormat) Save(buf *Buffer, opts SaveOptions) ([]byte, error) {
	width, height := buf.Width(), buf.Height()
	font := buf.GetFont(0)
	if font == nil {
		font = NewDefaultFont()
	}
	extended := buf.BufferType.UseExtendedFont() && buf.GetFont(1) != nil
	ice := buf.IceMode == IceModeIce || buf.TerminalState.UseIceColors()

	flags := byte(xbinFlagFont)
	if !buf.Palette.IsDefault() {
		flags |= xbinFlagPalette
	}
	if opts.Compress {
		flags |= xbinFlagCompress
	}
	if ice {
		flags |= xbinFlagNonBlink
	}
	if extended {
		flags |= xbinFlag512Chars
	}

	out := []byte(xbinID)
	out = binary.LittleEndian.AppendUint16(out, uint16(width))
	out = binary.LittleEndian.AppendUint16(out, uint16(height))
	out = append(out, byte(font.Size.Height), flags)

	if flags&xbinFlagPalette != 0 {
		out = append(out, buf.Palette.To16ColorBytes()...)
	}
	out = font.AppendData(out)
	if extended {
		out = buf.GetFont(1).AppendData(out)
	}

	cellBytes := func(x, y int) (byte, byte) {
		ch := buf.GetChar(Pos(x, y))
		c := byte(ch.Ch & 0xFF)
		if !ch.IsVisible() {
			c = ' '
		}
		attr := ch.Attribute.AsByte(buf.BufferType)
		if extended && ch.Attribute.FontPage == 1 {
			attr |= xbinAttr512
		}
		return c, attr
	}
	if opts.Compress {
		out = appendXBinCompressed(out, width, height, cellBytes)
	} else {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				c, a := cellBytes(x, y)
				out = append(out, c, a)
			}
		}
	}
	if opts.shouldWriteSauce(buf) {
		return NewSauceBuilder(SauceDataXBin, 0).
			WithMeta(buf.Sauce).
			WithSize(width, height).
			AppendTo(out)
	}
	return out, nil
}

// appendXBinCompressed emits greedy run blocks: whichever of the four
// block types covers the longest prefix wins.
func appendXBinCompressed(out []byte, width, height int, cell func(x, y int) (byte, byte)) []byte {
	total := width * height
	at := func(i int) (byte, byte) { return cell(i%width, i/width) }
	i := 0
	for i < total {
		c0, a0 := at(i)
		fullRun, charRun, attrRun := 1, 1, 1
		for i+fullRun < total && fullRun < 64 {
			c, a := at(i + fullRun)
			if c != c0 || a != a0 {
				break
			}
			fullRun++
		}
		for i+charRun < total && charRun < 64 {
			c, _ := at(i + charRun)
			if c != c0 {
				break
			}
			charRun++
		}
		for i+attrRun < total && attrRun < 64 {
			_, a := at(i + attrRun)
			if a != a0 {
				break
			}
			attrRun++
		}
		switch {
		case fullRun > 1 && fullRun >= charRun && fullRun >= attrRun:
			out = append(out, byte(xbinCompressFull|(fullRun-1)), c0, a0)
			i += fullRun
		case charRun > 1 && charRun >= attrRun:
			out = append(out, byte(xbinCompressChar|(charRun-1)), c0)
			for n := 0; n < charRun; n++ {
				_, a := at(i + n)
				out = append(out, a)
			}
			i += charRun
		case attrRun > 1:
			out = append(out, byte(xbinCompressAttr|(attrRun-1)), a0)
			for n := 0; n < attrRun; n++ {
				c, _ := at(i + n)
				out = append(out, c)
			}
			i += attrRun
		default:
			run := 1
			for i+run < total && run < 64 {
				c, a := at(i + run)
				cn, an := at(i + run - 1)
				if c == cn || a == an {
					break
				}
				run++
			}
			out = append(out, byte(xbinCompressOff|(run-1)))
			for n := 0; n < run; n++ {
				c, a := at(i + n)
				out = append(out, c, a)
			}
			i += run
		}
	}
	return out
}
