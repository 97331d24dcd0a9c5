package textart

import "fmt"

// Default font names recognized as "no custom font" by SAUCE handling.
const (
	DefaultFontName    = "IBM VGA"
	AltDefaultFontName = "IBM VGA 437"
)

// AnsiFontNames maps the CSI "n SP D" font slots to font names. Slots
// whose face is unavailable fall back to the default name.
var AnsiFontNames = [43]string{
	"IBM VGA",               // Codepage 437 English
	"IBM VGA 855",           // Codepage 1251 Cyrillic
	"IBM VGA 866",           // Russian koi8-r
	"IBM VGA 850",           // ISO-8859-2 Central European
	"IBM VGA 775",           // ISO-8859-4 Baltic wide
	"IBM VGA 866",           // Codepage 866 (c) Russian
	"IBM VGA 857",           // ISO-8859-9 Turkish
	"IBM VGA",               // haik8 codepage
	"IBM VGA 862",           // ISO-8859-8 Hebrew
	"IBM VGA",               // Ukrainian koi8-u
	"IBM VGA",               // ISO-8859-15 West European, thin
	"IBM VGA",               // ISO-8859-4 Baltic (VGA 9bit mapped)
	"IBM VGA",               // Russian koi8-r (b)
	"IBM VGA",               // ISO-8859-4 Baltic wide
	"IBM VGA",               // ISO-8859-5 Cyrillic
	"IBM VGA",               // ARMSCII-8
	"IBM VGA",               // ISO-8859-15 West European
	"IBM VGA 850",           // Codepage 850 Multilingual Latin I, thin
	"IBM VGA 850",           // Codepage 850 Multilingual Latin I
	"IBM VGA",               // Codepage 885 Norwegian, thin
	"IBM VGA",               // Codepage 1251 Cyrillic
	"IBM VGA",               // ISO-8859-7 Greek
	"IBM VGA",               // Russian koi8-r (c)
	"IBM VGA",               // ISO-8859-4 Baltic
	"IBM VGA",               // ISO-8859-1 West European
	"IBM VGA 866",           // Codepage 866 Russian
	"IBM VGA",               // Codepage 437 English, thin
	"IBM VGA",               // Codepage 866 (b) Russian
	"IBM VGA",               // Codepage 885 Norwegian
	"IBM VGA",               // Ukrainian cp866u
	"IBM VGA",               // ISO-8859-1 West European, thin
	"IBM VGA",               // Codepage 1131 Belarusian, swiss
	"C64 PETSCII shifted",   // Commodore 64 upper
	"C64 PETSCII unshifted", // Commodore 64 lower
	"C64 PETSCII shifted",   // Commodore 128 upper
	"C64 PETSCII unshifted", // Commodore 128 lower
	"Atari ATASCII",         // Atari
	"Amiga P0T-NOoDLE",      // P0T NOoDLE
	"Amiga mOsOul",          // mO'sOul
	"Amiga MicroKnight+",    // MicroKnight Plus
	"Amiga Topaz 1+",        // Topaz Plus
	"Amiga MicroKnight",     // MicroKnight
	"Amiga Topaz 1",         // Topaz
}

// Glyph is the bitmap of one character cell, one byte of row bits per
// pixel row, bit 7 leftmost.
type Glyph struct {
	Data []byte
}

// GlyphShape classifies a glyph by its pixel coverage.
type GlyphShape uint8

const (
	ShapeWhitespace GlyphShape = iota // no pixels set
	ShapeBlock                        // all pixels set
	ShapeMixed
)

// BitFont is an indexed bitmap font covering the 256 code points of a
// legacy code page.
type BitFont struct {
	Name   string
	Size   Size
	Glyphs map[rune]Glyph
}

// NewDefaultFont synthesizes the built-in 8x16 CP437-shaped font.
func NewDefaultFont() *BitFont {
	return FontFromName(DefaultFontName)
}

// FontFromName synthesizes a font carrying the given name. Glyph shapes
// follow the CP437 conventions that matter for classification and
// ice-color rewrites (blank, block, half-block and shade glyphs).
func FontFromName(name string) *BitFont {
	f := &BitFont{Name: name, Size: Size{Width: 8, Height: 16}, Glyphs: map[rune]Glyph{}}
	for code := 0; code < 256; code++ {
		f.Glyphs[rune(code)] = synthesizeGlyph(code, 16)
	}
	return f
}

// FontFromBasic builds a font from a raw 256-glyph bitmap blob as stored
// by ADF and IDF files.
func FontFromBasic(width, height int, data []byte) *BitFont {
	return FontFromBytes("", width, height, data)
}

// FontFromBytes builds a named font from a raw 256-glyph bitmap blob.
func FontFromBytes(name string, width, height int, data []byte) *BitFont {
	f := &BitFont{Name: name, Size: Size{Width: width, Height: height}, Glyphs: map[rune]Glyph{}}
	for code := 0; code < 256; code++ {
		start := code * height
		if start+height > len(data) {
			break
		}
		g := Glyph{Data: append([]byte(nil), data[start:start+height]...)}
		f.Glyphs[rune(code)] = g
	}
	return f
}

// FontFromAnsiSlot returns the font named by an ANSI font slot.
func FontFromAnsiSlot(slot int) (*BitFont, error) {
	if slot < 0 || slot >= len(AnsiFontNames) {
		return nil, &ParserError{Kind: ErrUnsupportedFont, Detail: fmt.Sprintf("slot %d", slot)}
	}
	return FontFromName(AnsiFontNames[slot]), nil
}

// GetGlyph returns the glyph for ch.
func (f *BitFont) GetGlyph(ch rune) (Glyph, bool) {
	g, ok := f.Glyphs[ch&0xFF]
	return g, ok
}

// SetGlyph replaces the glyph for ch.
func (f *BitFont) SetGlyph(ch rune, g Glyph) {
	f.Glyphs[ch&0xFF] = g
}

// IsDefault reports whether the font carries one of the recognized
// default names.
func (f *BitFont) IsDefault() bool {
	return f.Name == DefaultFontName || f.Name == AltDefaultFontName
}

// AppendData serializes the 256 glyph bitmaps in code order.
func (f *BitFont) AppendData(dst []byte) []byte {
	for code := 0; code < 256; code++ {
		g := f.Glyphs[rune(code)]
		for row := 0; row < f.Size.Height; row++ {
			if row < len(g.Data) {
				dst = append(dst, g.Data[row])
			} else {
				dst = append(dst, 0)
			}
		}
	}
	return dst
}

// ShapeOf classifies the glyph for ch.
func (f *BitFont) ShapeOf(ch rune) GlyphShape {
	g, ok := f.GetGlyph(ch)
	if !ok {
		return ShapeWhitespace
	}
	mask := byte(0xFF)
	if f.Size.Width < 8 {
		mask = 0xFF << (8 - f.Size.Width)
	}
	empty, full := true, true
	for _, row := range g.Data {
		if row&mask != 0 {
			empty = false
		}
		if row&mask != mask {
			full = false
		}
	}
	switch {
	case empty:
		return ShapeWhitespace
	case full:
		return ShapeBlock
	default:
		return ShapeMixed
	}
}

// Clone deep-copies the font.
func (f *BitFont) Clone() *BitFont {
	res := &BitFont{Name: f.Name, Size: f.Size, Glyphs: make(map[rune]Glyph, len(f.Glyphs))}
	for ch, g := range f.Glyphs {
		res.Glyphs[ch] = Glyph{Data: append([]byte(nil), g.Data...)}
	}
	return res
}

func synthesizeGlyph(code, height int) Glyph {
	rows := make([]byte, height)
	half := height / 2
	switch code {
	case 0, 32, 255:
		// blank
	case 219:
		fillRows(rows, 0, height, 0xFF)
	case 220:
		fillRows(rows, half, height, 0xFF)
	case 223:
		fillRows(rows, 0, half, 0xFF)
	case 221:
		fillRows(rows, 0, height, 0xF0)
	case 222:
		fillRows(rows, 0, height, 0x0F)
	case 176:
		for i := range rows {
			if i%2 == 0 {
				rows[i] = 0x88
			} else {
				rows[i] = 0x22
			}
		}
	case 177:
		for i := range rows {
			if i%2 == 0 {
				rows[i] = 0xAA
			} else {
				rows[i] = 0x55
			}
		}
	case 178:
		for i := range rows {
			if i%2 == 0 {
				rows[i] = 0xDD
			} else {
				rows[i] = 0x77
			}
		}
	default:
		// generic mixed glyph: a box outline salted with the code
		// value, so distinct codes render distinctly
		rows[2] = 0x7E
		rows[height-3] = 0x7E
		for i := 3; i < height-3; i++ {
			rows[i] = 0x42 | byte(code)>>(uint(i)%5)&0x3C
		}
	}
	return Glyph{Data: rows}
}

func fillRows(rows []byte, from, to int, v byte) {
	for i := from; i < to && i < len(rows); i++ {
		rows[i] = v
	}
}
