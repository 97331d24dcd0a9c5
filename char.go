package textart

// AttributedChar is one cell of a layer: a glyph plus its attribute.
type AttributedChar struct {
	Ch        rune
	Attribute TextAttribute
}

// NewAttributedChar pairs a glyph with an attribute.
func NewAttributedChar(ch rune, attr TextAttribute) AttributedChar {
	return AttributedChar{Ch: ch, Attribute: attr}
}

// DefaultChar is a space with the default attribute.
func DefaultChar() AttributedChar {
	return AttributedChar{Ch: ' ', Attribute: DefaultAttribute()}
}

// InvisibleChar is the canonical empty cell: it reads as a space but does
// not count as content when layers are merged.
func InvisibleChar() AttributedChar {
	a := DefaultAttribute()
	a.attr |= attrInvisible
	return AttributedChar{Ch: ' ', Attribute: a}
}

// IsVisible reports whether the cell contributes to layer merging.
func (c AttributedChar) IsVisible() bool {
	return c.Attribute.attr&attrInvisible == 0
}

// IsTransparent reports whether the cell paints nothing: an empty glyph
// on the default background.
func (c AttributedChar) IsTransparent() bool {
	return (c.Ch == 0 || c.Ch == ' ') && c.Attribute.background == 0
}

// WithFontPage returns the cell with a replaced font page.
func (c AttributedChar) WithFontPage(page int) AttributedChar {
	c.Attribute.FontPage = page
	return c
}
