package textart

import "encoding/binary"

// TundraFormat is the TheDraw successor codec with 24-bit colors:
// position jumps and inline RGB color changes.
type TundraFormat struct{}

const (
	tundraVersion = 24
	tundraID      = "TUNDRA24"

	tundraPosition = 1
	tundraColorFg  = 2
	tundraColorBg  = 4
)

func (f *TundraFormat) Name() string { return "TundraDraw" }

func (f *TundraFormat) Extensions() []string { return []string{"tnd"} }

func (f *TundraFormat) Load(data []byte, sauce *SauceRecord, opts LoadOptions) (*Buffer, error) {
	if len(data) < 1+len(tundraID) {
		return nil, loadErr("tnd", "file too short: %d bytes", len(data))
	}
	if data[0] != tundraVersion || string(data[1:1+len(tundraID)]) != tundraID {
		return nil, loadErr("tnd", "bad header")
	}
	width := 80
	if opts.Width > 0 {
		width = opts.Width
	}
	if sauce != nil && sauce.TInfo1 > 0 {
		width = int(sauce.TInfo1)
	}
	buf := NewBuffer(width, 25, WithBufferType(BufferTypeNoLimits))
	if sauce != nil {
		sauce.ApplyTo(buf)
	}

	attr := DefaultAttribute()
	pos := Pos(0, 0)
	readColor := func(i int) (uint32, int, error) {
		if i+4 > len(data) {
			return 0, i, loadErr("tnd", "truncated color at %d", i)
		}
		v := binary.BigEndian.Uint32(data[i : i+4])
		idx := buf.Palette.InsertColorRGB(uint8(v>>16), uint8(v>>8), uint8(v))
		return idx, i + 4, nil
	}
	print := func(ch byte) {
		buf.SetChar(0, pos, NewAttributedChar(rune(ch), attr))
		pos.X++
		if pos.X >= width {
			pos.X = 0
			pos.Y++
		}
	}
	i := 1 + len(tundraID)
	for i < len(data) {
		cmd := data[i]
		i++
		switch cmd {
		case tundraPosition:
			if i+8 > len(data) {
				return nil, loadErr("tnd", "truncated position at %d", i)
			}
			pos.Y = int(int32(binary.BigEndian.Uint32(data[i : i+4])))
			pos.X = int(int32(binary.BigEndian.Uint32(data[i+4 : i+8])))
			i += 8
		case tundraColorFg, tundraColorBg, tundraColorFg | tundraColorBg:
			if i >= len(data) {
				return nil, loadErr("tnd", "truncated cell at %d", i)
			}
			ch := data[i]
			i++
			var err error
			if cmd&tundraColorFg != 0 {
				var fg uint32
				fg, i, err = readColor(i)
				if err != nil {
					return nil, err
				}
				attr.SetForeground(fg)
			}
			if cmd&tundraColorBg != 0 {
				var bg uint32
				bg, i, err = readColor(i)
				if err != nil {
					return nil, err
				}
				attr.SetBackground(bg)
			}
			print(ch)
		default:
			print(cmd)
		}
	}
	buf.SetHeightForPos(pos)
	return buf, nil
}

func (f *TundraFormat) Save(buf *Buffer, opts SaveOptions) ([]byte, error) {
	out := []byte{tundraVersion}
	out = append(out, tundraID...)

	appendColor := func(dst []byte, idx uint32) []byte {
		r, g, b := buf.Palette.GetRGB(int(idx))
		return binary.BigEndian.AppendUint32(dst, uint32(r)<<16|uint32(g)<<8|uint32(b))
	}
	attr := DefaultAttribute()
	started := false
	pos := Pos(0, 0)
	for y := 0; y < buf.Height(); y++ {
		for x := 0; x < buf.Width(); x++ {
			ch := buf.GetChar(Pos(x, y))
			if !ch.IsVisible() || ch.IsTransparent() {
				continue
			}
			if pos != Pos(x, y) {
				out = append(out, tundraPosition)
				out = binary.BigEndian.AppendUint32(out, uint32(y))
				out = binary.BigEndian.AppendUint32(out, uint32(x))
				pos = Pos(x, y)
			}
			cmd := byte(0)
			if !started || ch.Attribute.Foreground() != attr.Foreground() {
				cmd |= tundraColorFg
			}
			if !started || ch.Attribute.Background() != attr.Background() {
				cmd |= tundraColorBg
			}
			c := byte(ch.Ch & 0xFF)
			// command bytes used as characters must travel inside a
			// color command
			if cmd == 0 && (c == tundraPosition || c == tundraColorFg || c == tundraColorBg || c == tundraColorFg|tundraColorBg) {
				cmd = tundraColorFg | tundraColorBg
			}
			if cmd != 0 {
				out = append(out, cmd, c)
				if cmd&tundraColorFg != 0 {
					out = appendColor(out, ch.Attribute.Foreground())
				}
				if cmd&tundraColorBg != 0 {
					out = appendColor(out, ch.Attribute.Background())
				}
			} else {
				out = append(out, c)
			}
			attr = ch.Attribute
			started = true
			pos.X++
			if pos.X >= buf.Width() {
				pos.X = 0
				pos.Y++
			}
		}
	}
	if opts.shouldWriteSauce(buf) {
		return NewSauceBuilder(SauceDataCharacter, SauceFileTundra).
			WithMeta(buf.Sauce).
			WithSize(buf.Width(), buf.Height()).
			AppendTo(out)
	}
	return out, nil
}
