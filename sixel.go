package textart

import (
	"context"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Sixel is a decoded raster tile anchored to the cell grid. Width and
// Height are raw pixel dimensions; the scale factors apply at render
// time.
type Sixel struct {
	Position        Position // cell coordinates
	HorizontalScale int
	VerticalScale   int
	Width, Height   int
	PictureData     []byte // RGBA, row-major
}

// NewSixel returns an empty raster at the given cell position.
func NewSixel(pos Position) Sixel {
	return Sixel{Position: pos, HorizontalScale: 1, VerticalScale: 1}
}

// ScreenRect returns the tile's pixel rectangle for the given font cell
// size.
func (s *Sixel) ScreenRect(fontW, fontH int) Rectangle {
	return Rect(s.Position.X*fontW, s.Position.Y*fontH, s.Width, s.Height)
}

// Clone deep-copies the raster.
func (s *Sixel) Clone() Sixel {
	res := *s
	res.PictureData = append([]byte(nil), s.PictureData...)
	return res
}

// SixelOptions frames one DCS sixel payload for decoding.
type SixelOptions struct {
	Position        Position
	HorizontalScale int
	VerticalScale   int
	// Background fills unset pixels; nil leaves them transparent.
	Background *Color
}

type sixelState uint8

const (
	sixelStateRead sixelState = iota
	sixelStateReadColor
	sixelStateReadSize
	sixelStateRepeat
)

type sixelPixel struct {
	set bool
	c   Color
}

type sixelDecoder struct {
	palette map[int]Color
	current Color

	rows [][]sixelPixel
	x, y int // sixel cursor, y counts six-pixel bands

	maxX, maxY    int
	definedWidth  int
	definedHeight int

	state   sixelState
	numbers []int
	repeat  int
}

// DecodeSixel decodes a complete sixel payload (the bytes between the
// DCS introducer's final 'q' and the string terminator) into a raster
// tile.
func DecodeSixel(ctx context.Context, data []byte, opts SixelOptions) (*Sixel, error) {
	d := &sixelDecoder{palette: map[int]Color{}}
	for i := 0; i < 16; i++ {
		d.palette[i] = DOSDefaultPalette[i]
	}

	for i := 0; i < len(data); i++ {
		if i%4096 == 0 && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if err := d.feed(data[i]); err != nil {
			return nil, err
		}
	}

	res := &Sixel{
		Position:        opts.Position,
		HorizontalScale: opts.HorizontalScale,
		VerticalScale:   opts.VerticalScale,
	}
	if res.HorizontalScale == 0 {
		res.HorizontalScale = 1
	}
	if res.VerticalScale == 0 {
		res.VerticalScale = 1
	}

	width, height := d.maxX, d.maxY
	if d.definedWidth > 0 && width > d.definedWidth {
		width = d.definedWidth
	}
	if d.definedHeight > 0 && height > d.definedHeight {
		height = d.definedHeight
	}
	if width < 0 || height < 0 {
		return nil, parserErr(ErrInvalidPictureSize, "%dx%d", width, height)
	}
	res.Width, res.Height = width, height
	res.PictureData = make([]byte, width*height*4)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			o := (y*width + x) * 4
			var px sixelPixel
			if y < len(d.rows) && x < len(d.rows[y]) {
				px = d.rows[y][x]
			}
			switch {
			case px.set:
				res.PictureData[o] = px.c.R
				res.PictureData[o+1] = px.c.G
				res.PictureData[o+2] = px.c.B
				res.PictureData[o+3] = 0xFF
			case opts.Background != nil:
				res.PictureData[o] = opts.Background.R
				res.PictureData[o+1] = opts.Background.G
				res.PictureData[o+2] = opts.Background.B
				res.PictureData[o+3] = 0xFF
			}
		}
	}
	return res, nil
}

func (d *sixelDecoder) feed(b byte) error {
	switch d.state {
	case sixelStateReadColor:
		switch {
		case b >= '0' && b <= '9':
			d.pushDigit(b)
		case b == ';':
			d.numbers = append(d.numbers, 0)
		default:
			if err := d.applyColor(); err != nil {
				return err
			}
			d.state = sixelStateRead
			return d.feed(b)
		}
	case sixelStateReadSize:
		switch {
		case b >= '0' && b <= '9':
			d.pushDigit(b)
		case b == ';':
			d.numbers = append(d.numbers, 0)
		default:
			d.applySize()
			d.state = sixelStateRead
			return d.feed(b)
		}
	case sixelStateRepeat:
		switch {
		case b >= '0' && b <= '9':
			d.pushDigit(b)
		case b >= '?' && b <= '~':
			if len(d.numbers) == 0 {
				return parserErr(ErrNumberMissingInSixelRepeat, "")
			}
			d.draw(b, d.numbers[len(d.numbers)-1])
			d.numbers = d.numbers[:0]
			d.state = sixelStateRead
		default:
			return parserErr(ErrInvalidSixelChar, "%q in repeat", b)
		}
	default: // sixelStateRead
		switch {
		case b == '#':
			d.numbers = d.numbers[:0]
			d.state = sixelStateReadColor
		case b == '!':
			d.numbers = d.numbers[:0]
			d.state = sixelStateRepeat
		case b == '"':
			d.numbers = d.numbers[:0]
			d.state = sixelStateReadSize
		case b == '-':
			d.x = 0
			d.y++
		case b == '$':
			d.x = 0
		case b >= '?' && b <= '~':
			d.draw(b, 1)
		default:
			// stray bytes below the data range do not move the cursor
		}
	}
	return nil
}

func (d *sixelDecoder) pushDigit(b byte) {
	if len(d.numbers) == 0 {
		d.numbers = append(d.numbers, 0)
	}
	d.numbers[len(d.numbers)-1] = d.numbers[len(d.numbers)-1]*10 + int(b-'0')
}

func (d *sixelDecoder) applyColor() error {
	switch len(d.numbers) {
	case 1:
		c, ok := d.palette[d.numbers[0]]
		if !ok {
			c = XTerm256Palette[d.numbers[0]&0xFF]
		}
		d.current = c
	case 5:
		idx, system := d.numbers[0], d.numbers[1]
		switch system {
		case 2:
			c := Color{
				R: uint8(d.numbers[2] * 255 / 100),
				G: uint8(d.numbers[3] * 255 / 100),
				B: uint8(d.numbers[4] * 255 / 100),
			}
			d.palette[idx] = c
			d.current = c
		case 1:
			// sixel hue wheel starts at blue
			h := math.Mod(float64(d.numbers[2])+240, 360)
			l := float64(d.numbers[3]) / 100
			s := float64(d.numbers[4]) / 100
			r, g, b := colorful.Hsl(h, s, l).RGB255()
			c := Color{R: r, G: g, B: b}
			d.palette[idx] = c
			d.current = c
		default:
			return parserErr(ErrUnsupportedSixelColorFormat, "system %d", system)
		}
	default:
		return parserErr(ErrInvalidColorInSixelSequence, "%d parameters", len(d.numbers))
	}
	return nil
}

func (d *sixelDecoder) applySize() {
	// "Pv;Ph[;W[;H]] - aspect pair, then optional pixel size caps
	if len(d.numbers) > 2 {
		d.definedWidth = d.numbers[2]
	}
	if len(d.numbers) > 3 {
		d.definedHeight = d.numbers[3]
	}
}

func (d *sixelDecoder) draw(b byte, count int) {
	bits := b - '?'
	for n := 0; n < count; n++ {
		for i := 0; i < 6; i++ {
			if bits&(1<<i) == 0 {
				continue
			}
			py := d.y*6 + i
			d.setPixel(d.x, py)
		}
		d.x++
	}
	if d.x > d.maxX {
		d.maxX = d.x
	}
	if (d.y+1)*6 > d.maxY {
		d.maxY = (d.y + 1) * 6
	}
}

func (d *sixelDecoder) setPixel(x, y int) {
	for len(d.rows) <= y {
		d.rows = append(d.rows, nil)
	}
	for len(d.rows[y]) <= x {
		d.rows[y] = append(d.rows[y], sixelPixel{})
	}
	d.rows[y][x] = sixelPixel{set: true, c: d.current}
}

// maxSixelWorkers bounds the decode pool.
const maxSixelWorkers = 4

var sixelWorkerSlots = make(chan struct{}, maxSixelWorkers)

// sixelJob is one in-flight decode. Jobs drain strictly in submission
// order so output stays deterministic.
type sixelJob struct {
	done   chan struct{}
	cancel context.CancelFunc
	sixel  *Sixel
	err    error
}

func startSixelJob(data []byte, opts SixelOptions) *sixelJob {
	ctx, cancel := context.WithCancel(context.Background())
	job := &sixelJob{done: make(chan struct{}), cancel: cancel}
	go func() {
		defer close(job.done)
		select {
		case sixelWorkerSlots <- struct{}{}:
			defer func() { <-sixelWorkerSlots }()
		case <-ctx.Done():
			job.err = ctx.Err()
			return
		}
		job.sixel, job.err = DecodeSixel(ctx, data, opts)
	}()
	return job
}

func (j *sixelJob) finished() bool {
	select {
	case <-j.done:
		return true
	default:
		return false
	}
}
