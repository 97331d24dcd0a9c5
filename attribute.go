package textart

// Attribute flag bits.
const (
	attrBold uint16 = 1 << iota
	attrFaint
	attrItalic
	attrBlinking
	attrUnderlined
	attrDoubleUnderlined
	attrConcealed
	attrCrossedOut
	attrDoubleHeight
	attrInvisible // marks the canonical empty cell of alpha layers
)

// TransparentColor is the sentinel palette index for a transparent
// foreground or background.
const TransparentColor uint32 = 1 << 31

// TextAttribute carries the styling of one cell: foreground and
// background (palette index or, in RGB palette mode, an inserted color
// index), a font page, and flag bits.
type TextAttribute struct {
	FontPage   int
	foreground uint32
	background uint32
	attr       uint16
}

// DefaultAttribute is light gray on black, no flags.
func DefaultAttribute() TextAttribute {
	return TextAttribute{foreground: 7}
}

// NewAttribute constructs an attribute from color indices.
func NewAttribute(fg, bg uint32) TextAttribute {
	return TextAttribute{foreground: fg, background: bg}
}

// AttributeFromByte decodes a legacy DOS attribute byte. Bit 7 is blink
// unless the buffer type runs ice colors, in which case it selects the
// bright background half.
func AttributeFromByte(b byte, t BufferType) TextAttribute {
	a := TextAttribute{foreground: uint32(b & 0x0F), background: uint32(b>>4) & 7}
	if b&0x80 != 0 {
		if t.UseIceColors() {
			a.background += 8
		} else {
			a.SetIsBlinking(true)
		}
	}
	return a
}

// AsByte encodes the attribute as a legacy DOS attribute byte.
func (a TextAttribute) AsByte(t BufferType) byte {
	b := byte(a.ResolvedForeground()&0x0F) | byte(a.background&7)<<4
	if t.UseIceColors() {
		if a.background&8 != 0 {
			b |= 0x80
		}
	} else if a.IsBlinking() {
		b |= 0x80
	}
	return b
}

// Foreground returns the foreground color index.
func (a TextAttribute) Foreground() uint32 { return a.foreground }

// Background returns the background color index.
func (a TextAttribute) Background() uint32 { return a.background }

// SetForeground replaces the foreground color index.
func (a *TextAttribute) SetForeground(c uint32) { a.foreground = c }

// SetBackground replaces the background color index.
func (a *TextAttribute) SetBackground(c uint32) { a.background = c }

// ResolvedForeground folds the bold flag into the classic bright
// foreground range for palette indices below 8.
func (a TextAttribute) ResolvedForeground() uint32 {
	if a.IsBold() && a.foreground < 8 {
		return a.foreground + 8
	}
	return a.foreground
}

func (a TextAttribute) IsBold() bool             { return a.attr&attrBold != 0 }
func (a TextAttribute) IsFaint() bool            { return a.attr&attrFaint != 0 }
func (a TextAttribute) IsItalic() bool           { return a.attr&attrItalic != 0 }
func (a TextAttribute) IsBlinking() bool         { return a.attr&attrBlinking != 0 }
func (a TextAttribute) IsUnderlined() bool       { return a.attr&attrUnderlined != 0 }
func (a TextAttribute) IsDoubleUnderlined() bool { return a.attr&attrDoubleUnderlined != 0 }
func (a TextAttribute) IsConcealed() bool        { return a.attr&attrConcealed != 0 }
func (a TextAttribute) IsCrossedOut() bool       { return a.attr&attrCrossedOut != 0 }
func (a TextAttribute) IsDoubleHeight() bool     { return a.attr&attrDoubleHeight != 0 }

func (a *TextAttribute) SetIsBold(v bool)             { a.setFlag(attrBold, v) }
func (a *TextAttribute) SetIsFaint(v bool)            { a.setFlag(attrFaint, v) }
func (a *TextAttribute) SetIsItalic(v bool)           { a.setFlag(attrItalic, v) }
func (a *TextAttribute) SetIsBlinking(v bool)         { a.setFlag(attrBlinking, v) }
func (a *TextAttribute) SetIsUnderlined(v bool)       { a.setFlag(attrUnderlined, v) }
func (a *TextAttribute) SetIsDoubleUnderlined(v bool) { a.setFlag(attrDoubleUnderlined, v) }
func (a *TextAttribute) SetIsConcealed(v bool)        { a.setFlag(attrConcealed, v) }
func (a *TextAttribute) SetIsCrossedOut(v bool)       { a.setFlag(attrCrossedOut, v) }
func (a *TextAttribute) SetIsDoubleHeight(v bool)     { a.setFlag(attrDoubleHeight, v) }

func (a *TextAttribute) setFlag(bit uint16, v bool) {
	if v {
		a.attr |= bit
	} else {
		a.attr &^= bit
	}
}

// FlagBits exposes the raw flag word for serialization.
func (a TextAttribute) FlagBits() uint16 { return a.attr }

// SetFlagBits restores a raw flag word.
func (a *TextAttribute) SetFlagBits(bits uint16) { a.attr = bits }

// Equal compares two attributes including flag bits and font page.
func (a TextAttribute) Equal(b TextAttribute) bool {
	return a == b
}
