package textart

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is a 24-bit RGB value.
type Color struct {
	R, G, B uint8
}

// RGB constructs a Color from component bytes.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// HSL constructs a Color from hue (degrees), saturation and lightness in
// [0,1].
func HSL(h, s, l float64) Color {
	r, g, b := colorful.Hsl(h, s, l).RGB255()
	return Color{R: r, G: g, B: b}
}

// Get returns the component bytes.
func (c Color) Get() (r, g, b uint8) {
	return c.R, c.G, c.B
}

func (c Color) String() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// DOSDefaultPalette is the classic 16-color VGA text palette.
var DOSDefaultPalette = [16]Color{
	{0x00, 0x00, 0x00}, // black
	{0x00, 0x00, 0xAA}, // blue
	{0x00, 0xAA, 0x00}, // green
	{0x00, 0xAA, 0xAA}, // cyan
	{0xAA, 0x00, 0x00}, // red
	{0xAA, 0x00, 0xAA}, // magenta
	{0xAA, 0x55, 0x00}, // brown
	{0xAA, 0xAA, 0xAA}, // light gray
	{0x55, 0x55, 0x55}, // dark gray
	{0x55, 0x55, 0xFF}, // light blue
	{0x55, 0xFF, 0x55}, // light green
	{0x55, 0xFF, 0xFF}, // light cyan
	{0xFF, 0x55, 0x55}, // light red
	{0xFF, 0x55, 0xFF}, // light magenta
	{0xFF, 0xFF, 0x55}, // yellow
	{0xFF, 0xFF, 0xFF}, // white
}

// C64DefaultPalette is the Commodore 64 system palette, using the
// "C64 Community Colors V1.2a" measurements.
var C64DefaultPalette = [16]Color{
	{0x00, 0x00, 0x00}, // black
	{0xFF, 0xFF, 0xFF}, // white
	{0xAF, 0x2A, 0x29}, // red
	{0x62, 0xD8, 0xCC}, // cyan
	{0xB0, 0x3F, 0xB6}, // violet
	{0x4A, 0xC6, 0x4A}, // green
	{0x37, 0x39, 0xC4}, // blue
	{0xE4, 0xED, 0x4E}, // yellow
	{0xB6, 0x59, 0x1C}, // orange
	{0x68, 0x38, 0x08}, // brown
	{0xEA, 0x74, 0x6C}, // light red
	{0x4D, 0x4D, 0x4D}, // gray 1
	{0x84, 0x84, 0x84}, // gray 2
	{0xA6, 0xFA, 0x9E}, // light green
	{0x70, 0x7C, 0xE6}, // light blue
	{0xB6, 0xB6, 0xB5}, // gray 3
}

// IGSSystemPalette is the GEM VDI default pen palette used by IGS in
// its system color order.
var IGSSystemPalette = [16]Color{
	{0xFF, 0xFF, 0xFF}, // white
	{0x00, 0x00, 0x00}, // black
	{0xFF, 0x00, 0x00}, // red
	{0x00, 0xFF, 0x00}, // green
	{0x00, 0x00, 0xFF}, // blue
	{0x00, 0xFF, 0xFF}, // cyan
	{0xFF, 0xFF, 0x00}, // yellow
	{0xFF, 0x00, 0xFF}, // magenta
	{0xAA, 0xAA, 0xAA}, // light gray
	{0x55, 0x55, 0x55}, // dark gray
	{0xFF, 0x66, 0x66}, // light red
	{0x66, 0xFF, 0x66}, // light green
	{0x66, 0x66, 0xFF}, // light blue
	{0x66, 0xFF, 0xFF}, // light cyan
	{0xFF, 0xFF, 0x66}, // light yellow
	{0xFF, 0x66, 0xFF}, // light magenta
}

// IGSPalette is the extended IGS drawing palette: the hardware register
// order of the Atari ST low resolution desktop.
var IGSPalette = [16]Color{
	{0xFF, 0xFF, 0xFF}, // white
	{0xFF, 0x00, 0x00}, // red
	{0x00, 0xFF, 0x00}, // green
	{0xFF, 0xFF, 0x00}, // yellow
	{0x00, 0x00, 0xFF}, // blue
	{0xFF, 0x00, 0xFF}, // magenta
	{0x00, 0xFF, 0xFF}, // cyan
	{0xAA, 0xAA, 0xAA}, // light gray
	{0x55, 0x55, 0x55}, // dark gray
	{0xFF, 0x66, 0x66}, // light red
	{0x66, 0xFF, 0x66}, // light green
	{0xFF, 0xFF, 0x66}, // light yellow
	{0x66, 0x66, 0xFF}, // light blue
	{0xFF, 0x66, 0xFF}, // light magenta
	{0x66, 0xFF, 0xFF}, // light cyan
	{0x00, 0x00, 0x00}, // black
}

// EGAPalette is the full 64-entry EGA palette, generated from the 6-bit
// rgbRGB hardware encoding.
var EGAPalette [64]Color

// XTerm256Palette holds the xterm 256-color table: the 16 DOS colors, a
// 6x6x6 color cube and a 24-step grayscale ramp.
var XTerm256Palette [256]Color

// egaColorOffsets maps the 16 DOS palette slots into the 64-entry EGA
// palette.
var egaColorOffsets = [16]int{0, 1, 2, 3, 4, 5, 20, 7, 56, 57, 58, 59, 60, 61, 62, 63}

func init() {
	for i := range EGAPalette {
		// bits 5..3 are the high components, 2..0 the low thirds
		r := 0xAA*uint8(i>>5&1) + 0x55*uint8(i>>2&1)
		g := 0xAA*uint8(i>>4&1) + 0x55*uint8(i>>1&1)
		b := 0xAA*uint8(i>>3&1) + 0x55*uint8(i&1)
		EGAPalette[i] = Color{R: r, G: g, B: b}
	}

	copy(XTerm256Palette[:16], DOSDefaultPalette[:])
	ramp := [6]uint8{0, 95, 135, 175, 215, 255}
	i := 16
	for r := 0; r < 6; r++ {
		for g := 0; g < 6; g++ {
			for b := 0; b < 6; b++ {
				XTerm256Palette[i] = Color{R: ramp[r], G: ramp[g], B: ramp[b]}
				i++
			}
		}
	}
	for gray := 0; gray < 24; gray++ {
		v := uint8(8 + gray*10)
		XTerm256Palette[i] = Color{R: v, G: v, B: v}
		i++
	}
}
