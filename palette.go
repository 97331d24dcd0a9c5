package textart

// PaletteMode describes how many colors a buffer may address and whether
// new colors may be inserted on the fly.
type PaletteMode uint8

const (
	PaletteModeRGB     PaletteMode = iota // unrestricted 24-bit color
	PaletteModeFixed16                    // the DOS default palette only
	PaletteModeFree8                      // up to 8 freely chosen colors
	PaletteModeFree16                     // up to 16 freely chosen colors
)

// Palette is an ordered color table. Cell attributes reference it by
// index unless the owning buffer runs in RGB mode.
type Palette struct {
	Colors []Color
}

// NewPalette returns a palette preloaded with the DOS default colors.
func NewPalette() *Palette {
	p := &Palette{}
	p.Colors = append(p.Colors, DOSDefaultPalette[:]...)
	return p
}

// PaletteFromBytes builds a palette from packed 6-bit r,g,b triplets as
// stored by XBIN, ADF and IDF files.
func PaletteFromBytes(data []byte) *Palette {
	p := &Palette{}
	for i := 0; i+2 < len(data); i += 3 {
		p.Colors = append(p.Colors, Color{
			R: scale6to8(data[i]),
			G: scale6to8(data[i+1]),
			B: scale6to8(data[i+2]),
		})
	}
	return p
}

func scale6to8(v byte) uint8 {
	return (v << 2) | (v >> 4)
}

// Len returns the number of colors in the palette.
func (p *Palette) Len() int {
	return len(p.Colors)
}

// Clear removes all colors.
func (p *Palette) Clear() {
	p.Colors = p.Colors[:0]
}

// Get returns the color at index i, or black when i is out of range.
func (p *Palette) Get(i int) Color {
	if i < 0 || i >= len(p.Colors) {
		return Color{}
	}
	return p.Colors[i]
}

// GetRGB returns the component bytes of the color at index i.
func (p *Palette) GetRGB(i int) (r, g, b uint8) {
	return p.Get(i).Get()
}

// Resize truncates or zero-extends the palette to n colors.
func (p *Palette) Resize(n int) {
	for len(p.Colors) < n {
		p.Colors = append(p.Colors, Color{})
	}
	p.Colors = p.Colors[:n]
}

// FillTo16 pads the palette with DOS default colors until it holds 16.
func (p *Palette) FillTo16() {
	for len(p.Colors) < 16 {
		p.Colors = append(p.Colors, DOSDefaultPalette[len(p.Colors)])
	}
}

// IsDefault reports whether the palette equals the DOS default palette.
func (p *Palette) IsDefault() bool {
	if len(p.Colors) != 16 {
		return false
	}
	for i, c := range p.Colors {
		if c != DOSDefaultPalette[i] {
			return false
		}
	}
	return true
}

// SetColorRGB replaces the color at index i, growing the palette as
// needed.
func (p *Palette) SetColorRGB(i int, r, g, b uint8) {
	for len(p.Colors) <= i {
		p.Colors = append(p.Colors, Color{})
	}
	p.Colors[i] = Color{R: r, G: g, B: b}
}

// SetColorHSL replaces the color at index i with an HSL-constructed
// color. Hue is in degrees, saturation and lightness in [0,1].
func (p *Palette) SetColorHSL(i int, h, s, l float64) {
	c := HSL(h, s, l)
	p.SetColorRGB(i, c.R, c.G, c.B)
}

// InsertColor returns the index of c, appending it when the palette does
// not already contain it.
func (p *Palette) InsertColor(c Color) uint32 {
	for i, existing := range p.Colors {
		if existing == c {
			return uint32(i)
		}
	}
	p.Colors = append(p.Colors, c)
	return uint32(len(p.Colors) - 1)
}

// InsertColorRGB is InsertColor over component bytes.
func (p *Palette) InsertColorRGB(r, g, b uint8) uint32 {
	return p.InsertColor(Color{R: r, G: g, B: b})
}

// Nearest returns the palette index whose color minimizes the L1 RGB
// distance to c.
func (p *Palette) Nearest(c Color) uint32 {
	best, bestDist := 0, 1<<30
	for i, e := range p.Colors {
		d := absInt(int(e.R)-int(c.R)) + absInt(int(e.G)-int(c.G)) + absInt(int(e.B)-int(c.B))
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return uint32(best)
}

// CycleEGAColors reorders a 64-color EGA palette into the 16 DOS slots.
// Used when loading ADF files.
func (p *Palette) CycleEGAColors() *Palette {
	res := &Palette{}
	for _, off := range egaColorOffsets {
		res.Colors = append(res.Colors, p.Get(off))
	}
	return res
}

// ToEGABytes serializes the palette as a full 64-entry 6-bit EGA table,
// with the 16 active colors placed at their hardware offsets.
func (p *Palette) ToEGABytes() []byte {
	res := make([]byte, 0, 64*3)
	for i := 0; i < 64; i++ {
		c := EGAPalette[i]
		for slot, off := range egaColorOffsets {
			if off == i && slot < len(p.Colors) {
				c = p.Colors[slot]
				break
			}
		}
		res = append(res, c.R>>2, c.G>>2, c.B>>2)
	}
	return res
}

// To16ColorBytes serializes the first 16 colors as packed 6-bit
// triplets, padding with the DOS defaults.
func (p *Palette) To16ColorBytes() []byte {
	res := make([]byte, 0, 16*3)
	for i := 0; i < 16; i++ {
		c := DOSDefaultPalette[i]
		if i < len(p.Colors) {
			c = p.Colors[i]
		}
		res = append(res, c.R>>2, c.G>>2, c.B>>2)
	}
	return res
}

// Clone returns a deep copy of the palette.
func (p *Palette) Clone() *Palette {
	res := &Palette{Colors: make([]Color, len(p.Colors))}
	copy(res.Colors, p.Colors)
	return res
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
