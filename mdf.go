package textart

import (
	"encoding/binary"
	"hash/crc32"
)

// MDF is the native layered container: a checksummed block stream that
// keeps SAUCE metadata, the palette, the font table and every layer
// with its flags and offset, so documents survive a save/load cycle
// without flattening.
const (
	mdfID      = "iced\x1A"
	mdfVersion = 0

	mdfBlockEnd     = 0
	mdfBlockSauce   = 1
	mdfBlockPalette = 2
	mdfBlockFont    = 3
	mdfBlockLayer   = 4

	mdfLayerVisible        = 1
	mdfLayerPositionLocked = 2
	mdfLayerEditLocked     = 4
	mdfLayerAlphaChannel   = 8
)

// mdfHeaderLen covers the ID, the CRC32 and the fixed fields before the
// first block: version, type byte, width and height.
const mdfHeaderLen = len(mdfID) + 4 + 2 + 1 + 4 + 4

type MdfFormat struct{}

func (f *MdfFormat) Name() string { return "MDF" }

func (f *MdfFormat) Extensions() []string { return []string{"mdf"} }

func mdfAppendString(dst []byte, s string) []byte {
	dst = binary.BigEndian.AppendUint32(dst, uint32(len(s)))
	return append(dst, s...)
}

func mdfReadString(data []byte, o int) (string, int, bool) {
	if o+4 > len(data) {
		return "", 0, false
	}
	n := int(binary.BigEndian.Uint32(data[o:]))
	o += 4
	if n < 0 || o+n > len(data) {
		return "", 0, false
	}
	return string(data[o : o+n]), o + n, true
}

func (f *MdfFormat) Save(buf *Buffer, opts SaveOptions) ([]byte, error) {
	out := make([]byte, 0, 4096)
	out = append(out, mdfID...)
	out = binary.BigEndian.AppendUint32(out, 0) // CRC placeholder
	out = binary.LittleEndian.AppendUint16(out, mdfVersion)
	out = append(out, 0) // buffer type reserved
	out = binary.BigEndian.AppendUint32(out, uint32(buf.Width()))
	out = binary.BigEndian.AppendUint32(out, uint32(buf.Height()))

	if buf.HasSauceRelevantData() {
		out = append(out, mdfBlockSauce)
		out = mdfAppendString(out, buf.Sauce.Title)
		out = mdfAppendString(out, buf.Sauce.Author)
		out = mdfAppendString(out, buf.Sauce.Group)
		out = append(out, byte(len(buf.Sauce.Comments)))
		for _, c := range buf.Sauce.Comments {
			out = mdfAppendString(out, c)
		}
	}

	if !buf.Palette.IsDefault() {
		out = append(out, mdfBlockPalette)
		out = binary.BigEndian.AppendUint32(out, uint32(buf.Palette.Len()))
		for i := 0; i < buf.Palette.Len(); i++ {
			r, g, b := buf.Palette.Get(i).Get()
			out = append(out, r, g, b, 0xFF)
		}
	}

	for _, slot := range buf.FontSlots() {
		font := buf.GetFont(slot)
		if font == nil || (slot == 0 && font.IsDefault()) {
			continue
		}
		out = append(out, mdfBlockFont)
		out = binary.BigEndian.AppendUint32(out, uint32(slot))
		out = mdfAppendString(out, font.Name)
		out = append(out, byte(font.Size.Width), byte(font.Size.Height))
		data := font.AppendData(nil)
		out = binary.BigEndian.AppendUint32(out, uint32(len(data)))
		out = append(out, data...)
	}

	for _, l := range buf.Layers {
		out = append(out, mdfBlockLayer)
		out = mdfAppendString(out, l.Title)
		flags := uint32(0)
		if l.IsVisible {
			flags |= mdfLayerVisible
		}
		if l.IsPositionLocked {
			flags |= mdfLayerPositionLocked
		}
		if l.IsLocked {
			flags |= mdfLayerEditLocked
		}
		if l.HasAlphaChannel {
			flags |= mdfLayerAlphaChannel
		}
		out = binary.BigEndian.AppendUint32(out, flags)
		cells := l.ToClipboardData()
		out = binary.BigEndian.AppendUint64(out, uint64(len(cells)))
		out = append(out, cells...)
	}

	out = append(out, mdfBlockEnd)
	crc := crc32.ChecksumIEEE(out[len(mdfID)+4:])
	binary.BigEndian.PutUint32(out[len(mdfID):], crc)
	return out, nil
}

func (f *MdfFormat) Load(data []byte, sauce *SauceRecord, opts LoadOptions) (*Buffer, error) {
	if len(data) < mdfHeaderLen || string(data[:len(mdfID)]) != mdfID {
		return nil, loadErr("mdf", "bad header")
	}
	o := len(mdfID)
	crc := binary.BigEndian.Uint32(data[o:])
	o += 4
	if got := crc32.ChecksumIEEE(data[o:]); got != crc {
		return nil, loadErr("mdf", "checksum mismatch: stored %08X, computed %08X", crc, got)
	}
	version := binary.LittleEndian.Uint16(data[o:])
	o += 2
	if version > mdfVersion {
		return nil, loadErr("mdf", "unsupported version %d", version)
	}
	o++ // buffer type reserved
	width := int(binary.BigEndian.Uint32(data[o:]))
	height := int(binary.BigEndian.Uint32(data[o+4:]))
	o += 8
	if width <= 0 || height <= 0 {
		return nil, loadErr("mdf", "invalid size %dx%d", width, height)
	}

	buf := NewBuffer(width, height)
	var layers []*Layer
	for {
		if o >= len(data) {
			return nil, loadErr("mdf", "missing end block")
		}
		blockType := data[o]
		o++
		if blockType == mdfBlockEnd {
			break
		}
		switch blockType {
		case mdfBlockSauce:
			var ok bool
			if buf.Sauce.Title, o, ok = mdfReadString(data, o); !ok {
				return nil, loadErr("mdf", "truncated sauce block")
			}
			if buf.Sauce.Author, o, ok = mdfReadString(data, o); !ok {
				return nil, loadErr("mdf", "truncated sauce block")
			}
			if buf.Sauce.Group, o, ok = mdfReadString(data, o); !ok {
				return nil, loadErr("mdf", "truncated sauce block")
			}
			if o >= len(data) {
				return nil, loadErr("mdf", "truncated sauce block")
			}
			count := int(data[o])
			o++
			for i := 0; i < count; i++ {
				var c string
				if c, o, ok = mdfReadString(data, o); !ok {
					return nil, loadErr("mdf", "truncated sauce comment")
				}
				buf.Sauce.Comments = append(buf.Sauce.Comments, c)
			}
		case mdfBlockPalette:
			if o+4 > len(data) {
				return nil, loadErr("mdf", "truncated palette block")
			}
			count := int(binary.BigEndian.Uint32(data[o:]))
			o += 4
			if o+count*4 > len(data) {
				return nil, loadErr("mdf", "truncated palette block")
			}
			buf.Palette = &Palette{}
			for i := 0; i < count; i++ {
				buf.Palette.Colors = append(buf.Palette.Colors, RGB(data[o], data[o+1], data[o+2]))
				o += 4 // alpha ignored
			}
		case mdfBlockFont:
			if o+4 > len(data) {
				return nil, loadErr("mdf", "truncated font block")
			}
			slot := int(binary.BigEndian.Uint32(data[o:]))
			o += 4
			name, next, ok := mdfReadString(data, o)
			if !ok {
				return nil, loadErr("mdf", "truncated font block")
			}
			o = next
			if o+2+4 > len(data) {
				return nil, loadErr("mdf", "truncated font block")
			}
			fw, fh := int(data[o]), int(data[o+1])
			o += 2
			n := int(binary.BigEndian.Uint32(data[o:]))
			o += 4
			if o+n > len(data) {
				return nil, loadErr("mdf", "truncated font data")
			}
			buf.SetFont(slot, FontFromBytes(name, fw, fh, data[o:o+n]))
			o += n
		case mdfBlockLayer:
			title, next, ok := mdfReadString(data, o)
			if !ok {
				return nil, loadErr("mdf", "truncated layer block")
			}
			o = next
			if o+4+8 > len(data) {
				return nil, loadErr("mdf", "truncated layer block")
			}
			flags := binary.BigEndian.Uint32(data[o:])
			o += 4
			n := int(binary.BigEndian.Uint64(data[o:]))
			o += 8
			if n < 0 || o+n > len(data) {
				return nil, loadErr("mdf", "truncated layer data")
			}
			l := LayerFromClipboardData(data[o : o+n])
			if l == nil {
				return nil, loadErr("mdf", "malformed layer data")
			}
			o += n
			l.Title = title
			l.Role = LayerRoleNormal
			l.IsVisible = flags&mdfLayerVisible != 0
			l.IsPositionLocked = flags&mdfLayerPositionLocked != 0
			l.IsLocked = flags&mdfLayerEditLocked != 0
			l.HasAlphaChannel = flags&mdfLayerAlphaChannel != 0
			layers = append(layers, l)
		default:
			return nil, loadErr("mdf", "unknown block type %d", blockType)
		}
	}
	if len(layers) > 0 {
		buf.Layers = layers
	}
	return buf, nil
}
