package textart

import (
	"bytes"
	"encoding/binary"
	"time"
)

const (
	sauceRecordLen  = 128
	sauceCommentLen = 64
	sauceID         = "SAUCE"
	sauceCommentID  = "COMNT"
	sauceVersion    = "00"
	sauceMaxWidth   = 510

	// ansiFlagNonBlinkMode marks ice colors in the SAUCE TFlags byte.
	ansiFlagNonBlinkMode = 0x01
)

// SauceDataType is the coarse SAUCE content class.
type SauceDataType uint8

const (
	SauceDataNone SauceDataType = iota
	SauceDataCharacter
	SauceDataBitmap
	SauceDataVector
	SauceDataAudio
	SauceDataBinaryText
	SauceDataXBin
	SauceDataArchive
	SauceDataExecutable
)

// Character file types the loaders care about.
const (
	SauceFileASCII   = 0
	SauceFileANSI    = 1
	SauceFileANSIMat = 2
	SauceFilePCBoard = 4
	SauceFileAvatar  = 5
	SauceFileTundra  = 8
)

// SauceMeta is the user-visible metadata carried on a buffer.
type SauceMeta struct {
	Title    string
	Author   string
	Group    string
	Comments []string
}

// Clone deep-copies the metadata.
func (m SauceMeta) Clone() SauceMeta {
	m.Comments = append([]string(nil), m.Comments...)
	return m
}

// SauceRecord is a decoded SAUCE trailer.
type SauceRecord struct {
	Meta     SauceMeta
	Date     string // CCYYMMDD
	FileSize uint32
	DataType SauceDataType
	FileType uint8
	TInfo1   uint16
	TInfo2   uint16
	TInfo3   uint16
	TInfo4   uint16
	TFlags   uint8
	FontName string
}

// UseIce reports the non-blink flag.
func (r *SauceRecord) UseIce() bool { return r.TFlags&ansiFlagNonBlinkMode != 0 }

// ContentSize returns the length of the payload preceding the SAUCE
// trailer within data.
func (r *SauceRecord) ContentSize(data []byte) int {
	size := len(data) - sauceRecordLen
	if n := len(r.Meta.Comments); n > 0 {
		size -= len(sauceCommentID) + n*sauceCommentLen
	}
	// trailing EOF marker
	if size > 0 && data[size-1] == 0x1A {
		size--
	}
	return maxInt(0, size)
}

// cp437String decodes a space or zero padded CP437 field.
func cp437String(raw []byte) string {
	end := len(raw)
	for end > 0 && (raw[end-1] == ' ' || raw[end-1] == 0) {
		end--
	}
	out := make([]rune, 0, end)
	for _, b := range raw[:end] {
		out = append(out, UnicodeFromCP437(b))
	}
	return string(out)
}

// cp437Field encodes s into a fixed-size space padded CP437 field.
func cp437Field(s string, size int) []byte {
	out := bytes.Repeat([]byte{' '}, size)
	i := 0
	for _, ch := range s {
		if i >= size {
			break
		}
		out[i] = CP437FromUnicode(ch)
		i++
	}
	return out
}

// ReadSauce decodes the SAUCE trailer of data, if any. A missing
// record is reported as SauceErrNoSauce.
func ReadSauce(data []byte) (*SauceRecord, error) {
	if len(data) < sauceRecordLen {
		return nil, sauceErr(SauceErrNoSauce, "%d bytes", len(data))
	}
	rec := data[len(data)-sauceRecordLen:]
	if string(rec[0:5]) != sauceID {
		return nil, sauceErr(SauceErrNoSauce, "missing id")
	}
	if string(rec[5:7]) != sauceVersion {
		return nil, sauceErr(SauceErrUnsupportedVersion, "%q", rec[5:7])
	}
	r := &SauceRecord{
		Date:     string(rec[82:90]),
		FileSize: binary.LittleEndian.Uint32(rec[90:94]),
		DataType: SauceDataType(rec[94]),
		FileType: rec[95],
		TInfo1:   binary.LittleEndian.Uint16(rec[96:98]),
		TInfo2:   binary.LittleEndian.Uint16(rec[98:100]),
		TInfo3:   binary.LittleEndian.Uint16(rec[100:102]),
		TInfo4:   binary.LittleEndian.Uint16(rec[102:104]),
		TFlags:   rec[105],
		FontName: cp437String(rec[106:128]),
	}
	r.Meta.Title = cp437String(rec[7:42])
	r.Meta.Author = cp437String(rec[42:62])
	r.Meta.Group = cp437String(rec[62:82])

	if comments := int(rec[104]); comments > 0 {
		blockLen := len(sauceCommentID) + comments*sauceCommentLen
		start := len(data) - sauceRecordLen - blockLen
		if start < 0 {
			return nil, sauceErr(SauceErrInvalidCommentBlock, "%d comments", comments)
		}
		block := data[start : start+blockLen]
		if string(block[0:5]) != sauceCommentID {
			return nil, sauceErr(SauceErrInvalidCommentID, "%q", block[0:5])
		}
		for i := 0; i < comments; i++ {
			off := len(sauceCommentID) + i*sauceCommentLen
			r.Meta.Comments = append(r.Meta.Comments, cp437String(block[off:off+sauceCommentLen]))
		}
	}
	return r, nil
}

// ApplyTo writes the record's dimensions, ice flag and font choice into
// the buffer.
func (r *SauceRecord) ApplyTo(buf *Buffer) {
	buf.Sauce = r.Meta.Clone()
	switch r.DataType {
	case SauceDataCharacter:
		if r.TInfo1 > 0 {
			buf.SetWidth(int(r.TInfo1))
		}
		if r.TInfo2 > 0 {
			buf.SetHeight(int(r.TInfo2))
		}
		buf.TerminalState.SetUseIceColors(r.UseIce())
		if r.UseIce() {
			buf.BufferType = BufferTypeLegacyIce
			buf.IceMode = IceModeIce
		}
	case SauceDataBinaryText:
		// width is half-encoded in the file type byte
		if r.FileType > 0 {
			buf.SetWidth(int(r.FileType) << 1)
		}
		buf.TerminalState.SetUseIceColors(r.UseIce())
		if r.UseIce() {
			buf.BufferType = BufferTypeLegacyIce
			buf.IceMode = IceModeIce
		}
	case SauceDataXBin:
		if r.TInfo1 > 0 {
			buf.SetWidth(int(r.TInfo1))
		}
		if r.TInfo2 > 0 {
			buf.SetHeight(int(r.TInfo2))
		}
	}
	if r.FontName != "" {
		if f := FontFromName(r.FontName); f != nil {
			buf.SetFont(0, f)
		}
	}
}

// SauceBuilder assembles a SAUCE trailer for a payload.
type SauceBuilder struct {
	rec SauceRecord
}

// NewSauceBuilder starts a record dated today.
func NewSauceBuilder(dataType SauceDataType, fileType uint8) *SauceBuilder {
	return &SauceBuilder{rec: SauceRecord{
		DataType: dataType,
		FileType: fileType,
		Date:     time.Now().UTC().Format("20060102"),
	}}
}

func (b *SauceBuilder) WithMeta(m SauceMeta) *SauceBuilder {
	b.rec.Meta = m.Clone()
	return b
}

func (b *SauceBuilder) WithSize(w, h int) *SauceBuilder {
	b.rec.TInfo1 = uint16(w)
	b.rec.TInfo2 = uint16(h)
	return b
}

func (b *SauceBuilder) WithIce(ice bool) *SauceBuilder {
	if ice {
		b.rec.TFlags |= ansiFlagNonBlinkMode
	} else {
		b.rec.TFlags &^= ansiFlagNonBlinkMode
	}
	return b
}

func (b *SauceBuilder) WithFontName(name string) *SauceBuilder {
	b.rec.FontName = name
	return b
}

// AppendTo writes the EOF marker, comment block and record after
// payload.
func (b *SauceBuilder) AppendTo(payload []byte) ([]byte, error) {
	r := &b.rec
	if len(r.Meta.Comments) > 255 {
		return nil, sauceErr(SauceErrCommentLimit, "%d comments", len(r.Meta.Comments))
	}
	r.FileSize = uint32(len(payload))
	out := append(payload, 0x1A)
	if len(r.Meta.Comments) > 0 {
		out = append(out, sauceCommentID...)
		for _, c := range r.Meta.Comments {
			out = append(out, cp437Field(c, sauceCommentLen)...)
		}
	}
	rec := make([]byte, 0, sauceRecordLen)
	rec = append(rec, sauceID...)
	rec = append(rec, sauceVersion...)
	rec = append(rec, cp437Field(r.Meta.Title, 35)...)
	rec = append(rec, cp437Field(r.Meta.Author, 20)...)
	rec = append(rec, cp437Field(r.Meta.Group, 20)...)
	rec = append(rec, []byte(r.Date)...)
	rec = binary.LittleEndian.AppendUint32(rec, r.FileSize)
	rec = append(rec, byte(r.DataType), r.FileType)
	rec = binary.LittleEndian.AppendUint16(rec, r.TInfo1)
	rec = binary.LittleEndian.AppendUint16(rec, r.TInfo2)
	rec = binary.LittleEndian.AppendUint16(rec, r.TInfo3)
	rec = binary.LittleEndian.AppendUint16(rec, r.TInfo4)
	rec = append(rec, byte(len(r.Meta.Comments)), r.TFlags)
	font := make([]byte, 22)
	copy(font, cp437Field(r.FontName, 22))
	// TInfoS is zero padded, not space padded
	for i := len(r.FontName); i < 22; i++ {
		font[i] = 0
	}
	rec = append(rec, font...)
	return append(out, rec...), nil
}
