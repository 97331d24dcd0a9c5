package textart

import (
	"image"
	"image/png"
	"io"
	"os"

	xdraw "golang.org/x/image/draw"
)

// ScreenshotOptions controls how a buffer region is exported as an
// image.
type ScreenshotOptions struct {
	// Area limits the export to a cell rectangle; empty means the
	// whole buffer.
	Area Rectangle
	// Scale multiplies the pixel dimensions. Values below 1 render at
	// native size.
	Scale int
}

// WriteScreenshot rasterizes the buffer and encodes it as PNG.
func WriteScreenshot(w io.Writer, buf *Buffer, opts ScreenshotOptions) error {
	area := opts.Area
	if area.Size.Width <= 0 || area.Size.Height <= 0 {
		area = Rect(0, 0, buf.Width(), buf.LineCount())
	}
	img := buf.RenderRGBA(area)
	if opts.Scale > 1 {
		b := img.Bounds()
		scaled := image.NewRGBA(image.Rect(0, 0, b.Dx()*opts.Scale, b.Dy()*opts.Scale))
		xdraw.NearestNeighbor.Scale(scaled, scaled.Bounds(), img, b, xdraw.Src, nil)
		img = scaled
	}
	return png.Encode(w, img)
}

// SaveScreenshot writes the rendered buffer to a PNG file.
func SaveScreenshot(path string, buf *Buffer, opts ScreenshotOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteScreenshot(f, buf, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
