package textart

import (
	"bytes"
	"image/png"
	"testing"
)

func TestRenderRGBASize(t *testing.T) {
	buf := NewBuffer(10, 4)
	img := buf.RenderRGBA(buf.Rectangle())
	b := img.Bounds()
	if b.Dx() != 10*8 || b.Dy() != 4*16 {
		t.Errorf("expected 80x64 pixels, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestRenderRGBAFullBlock(t *testing.T) {
	buf := NewBuffer(1, 1)
	buf.SetChar(0, Pos(0, 0), NewAttributedChar(219, NewAttribute(4, 0)))

	img := buf.RenderRGBA(buf.Rectangle())
	r, g, b := buf.Palette.GetRGB(4)
	for y := 0; y < 16; y++ {
		for x := 0; x < 8; x++ {
			c := img.RGBAAt(x, y)
			if c.R != r || c.G != g || c.B != b {
				t.Fatalf("expected foreground at (%d,%d), got %v", x, y, c)
			}
		}
	}
}

func TestRenderRGBABackground(t *testing.T) {
	buf := NewBuffer(1, 1)
	buf.SetChar(0, Pos(0, 0), NewAttributedChar(' ', NewAttribute(7, 1)))

	img := buf.RenderRGBA(buf.Rectangle())
	r, g, b := buf.Palette.GetRGB(1)
	c := img.RGBAAt(3, 8)
	if c.R != r || c.G != g || c.B != b {
		t.Errorf("expected background blue, got %v", c)
	}
}

func TestRenderRGBAConcealed(t *testing.T) {
	buf := NewBuffer(1, 1)
	ch := NewAttributedChar(219, NewAttribute(4, 1))
	ch.Attribute.SetIsConcealed(true)
	buf.SetChar(0, Pos(0, 0), ch)

	img := buf.RenderRGBA(buf.Rectangle())
	r, g, b := buf.Palette.GetRGB(1)
	c := img.RGBAAt(0, 0)
	if c.R != r || c.G != g || c.B != b {
		t.Errorf("expected concealed block drawn as background, got %v", c)
	}
}

func TestRenderRGBAUnderline(t *testing.T) {
	buf := NewBuffer(1, 1)
	ch := NewAttributedChar(' ', NewAttribute(2, 0))
	ch.Attribute.SetIsUnderlined(true)
	buf.SetChar(0, Pos(0, 0), ch)

	img := buf.RenderRGBA(buf.Rectangle())
	r, g, b := buf.Palette.GetRGB(2)
	c := img.RGBAAt(0, 15)
	if c.R != r || c.G != g || c.B != b {
		t.Errorf("expected underline row in foreground, got %v", c)
	}
	c = img.RGBAAt(0, 0)
	if c.R == r && c.G == g && c.B == b && (r != 0 || g != 0 || b != 0) {
		t.Errorf("expected top row as background, got %v", c)
	}
}

func TestRenderRGBASixelComposite(t *testing.T) {
	buf := NewBuffer(4, 2)
	s := NewSixel(Pos(1, 0))
	s.Width, s.Height = 2, 2
	s.PictureData = make([]byte, 2*2*4)
	for i := 0; i < len(s.PictureData); i += 4 {
		s.PictureData[i] = 255   // R
		s.PictureData[i+3] = 255 // A
	}
	buf.Layers[0].Sixels = append(buf.Layers[0].Sixels, s)

	img := buf.RenderRGBA(buf.Rectangle())
	c := img.RGBAAt(8, 0)
	if c.R != 255 || c.G != 0 || c.B != 0 {
		t.Errorf("expected sixel pixel at cell column 1, got %v", c)
	}
	c = img.RGBAAt(0, 0)
	if c.R != 0 {
		t.Errorf("expected untouched cell at origin, got %v", c)
	}
}

func TestWriteScreenshotPNG(t *testing.T) {
	buf := NewBuffer(4, 2)
	buf.SetChar(0, Pos(0, 0), NewAttributedChar('P', DefaultAttribute()))

	var out bytes.Buffer
	if err := WriteScreenshot(&out, buf, ScreenshotOptions{Area: Rect(0, 0, 4, 2)}); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&out)
	if err != nil {
		t.Fatal(err)
	}
	b := img.Bounds()
	if b.Dx() != 4*8 || b.Dy() != 2*16 {
		t.Errorf("expected 32x32 png, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestWriteScreenshotScaled(t *testing.T) {
	buf := NewBuffer(2, 1)

	var out bytes.Buffer
	if err := WriteScreenshot(&out, buf, ScreenshotOptions{Area: Rect(0, 0, 2, 1), Scale: 2}); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&out)
	if err != nil {
		t.Fatal(err)
	}
	b := img.Bounds()
	if b.Dx() != 2*8*2 || b.Dy() != 16*2 {
		t.Errorf("expected 64x32 png, got %dx%d", b.Dx(), b.Dy())
	}
}
