package textart

// OptimizeColors returns a copy of the buffer whose layers carry
// normalized attributes: cells rendered as pure whitespace inherit the
// running foreground and cells rendered as a full block inherit the
// running background. Neither half contributes to the picture, so the
// rewrite is lossless while letting serializers skip color changes.
func OptimizeColors(buf *Buffer) *Buffer {
	res := buf.Clone()
	for _, layer := range res.Layers {
		optimizeLayerColors(res, layer)
	}
	return res
}

func optimizeLayerColors(buf *Buffer, layer *Layer) {
	cur := DefaultAttribute()
	for y := range layer.Lines {
		line := &layer.Lines[y]
		for x := range line.Chars {
			ch := line.Chars[x]
			if !ch.IsVisible() {
				continue
			}
			switch glyphShape(buf, ch) {
			case ShapeWhitespace:
				ch.Attribute.SetForeground(cur.Foreground())
				line.Chars[x] = ch
			case ShapeBlock:
				ch.Attribute.SetBackground(cur.Background())
				line.Chars[x] = ch
			}
			cur = ch.Attribute
		}
	}
}

func glyphShape(buf *Buffer, ch AttributedChar) GlyphShape {
	font := buf.GetFont(ch.Attribute.FontPage)
	if font == nil {
		font = buf.GetFont(0)
	}
	if font == nil {
		return ShapeMixed
	}
	return font.ShapeOf(ch.Ch)
}
