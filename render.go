package textart

import (
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"
)

// RenderRGBA rasterizes a cell-grid region of the buffer into an RGBA
// image. Cells are drawn from the font glyph bitmaps with colors
// resolved against the buffer palette; Sixel tiles of visible layers
// are composited on top, scaled by their horizontal and vertical
// factors.
func (b *Buffer) RenderRGBA(area Rectangle) *image.RGBA {
	fd := b.FontDimensions()
	img := image.NewRGBA(image.Rect(0, 0, area.Size.Width*fd.Width, area.Size.Height*fd.Height))
	for cy := 0; cy < area.Size.Height; cy++ {
		for cx := 0; cx < area.Size.Width; cx++ {
			ch := b.GetChar(Pos(area.Start.X+cx, area.Start.Y+cy))
			b.renderCell(img, cx*fd.Width, cy*fd.Height, fd, ch)
		}
	}
	for _, layer := range b.Layers {
		if !layer.IsVisible {
			continue
		}
		for i := range layer.Sixels {
			b.compositeSixel(img, &layer.Sixels[i], area, fd)
		}
	}
	return img
}

func (b *Buffer) renderCell(img *image.RGBA, px, py int, fd Size, ch AttributedChar) {
	fg := b.paletteColor(ch.Attribute.ResolvedForeground())
	bg := b.paletteColor(ch.Attribute.Background())
	if ch.Attribute.IsConcealed() {
		fg = bg
	}
	font := b.GetFont(ch.Attribute.FontPage)
	if font == nil {
		font = b.GetFont(0)
	}
	var glyph Glyph
	if font != nil {
		glyph, _ = font.GetGlyph(ch.Ch)
	}
	for gy := 0; gy < fd.Height; gy++ {
		var row byte
		if gy < len(glyph.Data) {
			row = glyph.Data[gy]
		}
		if ch.Attribute.IsUnderlined() && gy == fd.Height-1 {
			row = 0xFF
		}
		for gx := 0; gx < fd.Width; gx++ {
			c := bg
			if row&(128>>gx) != 0 {
				c = fg
			}
			img.SetRGBA(px+gx, py+gy, c)
		}
	}
}

func (b *Buffer) paletteColor(idx uint32) color.RGBA {
	if idx == TransparentColor {
		return color.RGBA{A: 0xFF}
	}
	r, g, bl := b.Palette.GetRGB(int(idx))
	return color.RGBA{R: r, G: g, B: bl, A: 0xFF}
}

func (b *Buffer) compositeSixel(img *image.RGBA, s *Sixel, area Rectangle, fd Size) {
	if s.Width <= 0 || s.Height <= 0 {
		return
	}
	src := &image.RGBA{
		Pix:    s.PictureData,
		Stride: s.Width * 4,
		Rect:   image.Rect(0, 0, s.Width, s.Height),
	}
	hs, vs := s.HorizontalScale, s.VerticalScale
	if hs < 1 {
		hs = 1
	}
	if vs < 1 {
		vs = 1
	}
	x := (s.Position.X - area.Start.X) * fd.Width
	y := (s.Position.Y - area.Start.Y) * fd.Height
	dst := image.Rect(x, y, x+s.Width*hs, y+s.Height*vs)
	xdraw.NearestNeighbor.Scale(img, dst, src, src.Bounds(), xdraw.Over, nil)
}
