package textart

import (
	"path/filepath"
	"strings"
)

// LoadOptions tunes the format loaders.
type LoadOptions struct {
	// SkipErrors keeps parsing past recoverable stream errors,
	// collecting them instead of failing.
	SkipErrors bool
	// AnsiMusic selects which sequences the ANSI loader treats as
	// music.
	AnsiMusic MusicOption
	// Width overrides the default width when no SAUCE record says
	// otherwise.
	Width int
	// Sink receives the side-band actions (responses, bell, music)
	// produced while parsing; nil drops them.
	Sink ActionSink
}

// SaveOptions tunes the format writers.
type SaveOptions struct {
	// WriteSauce forces the SAUCE trailer on or off; nil means write
	// one only when the buffer carries SAUCE-relevant data.
	WriteSauce *bool
	// Compress enables run compression where the format supports it.
	Compress bool
	// Modern switches the ANSI writer to UTF-8 output with 38;2
	// colors.
	Modern bool
	// LongerThan25Lines suppresses the screen height clamp.
	LongerThan25Lines bool
	// OptimizeOutput rewrites visually irrelevant color halves before
	// text serialization so fewer attribute changes are emitted.
	OptimizeOutput bool
}

func (o SaveOptions) shouldWriteSauce(buf *Buffer) bool {
	if o.WriteSauce != nil {
		return *o.WriteSauce
	}
	return buf.HasSauceRelevantData()
}

// FileFormat is one on-disk artwork codec.
type FileFormat interface {
	Name() string
	Extensions() []string
	Load(data []byte, sauce *SauceRecord, opts LoadOptions) (*Buffer, error)
	Save(buf *Buffer, opts SaveOptions) ([]byte, error)
}

// Formats lists every registered codec, most specific first.
func Formats() []FileFormat {
	return []FileFormat{
		&MdfFormat{},
		&XBinFormat{},
		&ArtworxFormat{},
		&IceDrawFormat{},
		&TundraFormat{},
		&BinaryFormat{},
		&AnsiFormat{},
		&AsciiFormat{},
	}
}

// FormatForExtension matches a codec by file extension.
func FormatForExtension(ext string) FileFormat {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, f := range Formats() {
		for _, e := range f.Extensions() {
			if e == ext {
				return f
			}
		}
	}
	return nil
}

// formatForSauce picks a codec from SAUCE type information; SAUCE wins
// over the file extension.
func formatForSauce(rec *SauceRecord) FileFormat {
	switch rec.DataType {
	case SauceDataBinaryText:
		return &BinaryFormat{}
	case SauceDataXBin:
		return &XBinFormat{}
	case SauceDataCharacter:
		switch rec.FileType {
		case SauceFileASCII:
			return &AsciiFormat{}
		case SauceFileTundra:
			return &TundraFormat{}
		default:
			return &AnsiFormat{}
		}
	}
	return nil
}

// LoadBuffer decodes artwork bytes into a buffer. Self-describing
// containers decode directly from their extension; otherwise the codec
// is chosen by the SAUCE record when present, the file extension next,
// and plain text as the last resort.
func LoadBuffer(fileName string, data []byte, opts LoadOptions) (*Buffer, error) {
	if strings.EqualFold(strings.TrimPrefix(filepath.Ext(fileName), "."), "mdf") {
		buf, err := (&MdfFormat{}).Load(data, nil, opts)
		if err != nil {
			return nil, err
		}
		buf.FileName = fileName
		return buf, nil
	}
	var rec *SauceRecord
	if r, err := ReadSauce(data); err == nil {
		rec = r
		data = data[:r.ContentSize(data)]
	}
	var format FileFormat
	if rec != nil {
		format = formatForSauce(rec)
	}
	if format == nil {
		format = FormatForExtension(filepath.Ext(fileName))
	}
	if format == nil {
		format = &AsciiFormat{}
	}
	buf, err := format.Load(data, rec, opts)
	if err != nil {
		return nil, err
	}
	buf.FileName = fileName
	if rec != nil {
		buf.Sauce = rec.Meta.Clone()
	}
	return buf, nil
}

// SaveBuffer encodes a buffer with the codec matching the file name's
// extension.
func SaveBuffer(fileName string, buf *Buffer, opts SaveOptions) ([]byte, error) {
	format := FormatForExtension(filepath.Ext(fileName))
	if format == nil {
		return nil, saveErr(filepath.Ext(fileName), "no codec for extension")
	}
	return format.Save(buf, opts)
}

// cropLoadedHeight trims trailing blank lines after a load when the
// SAUCE record declared a smaller canvas.
func cropLoadedHeight(buf *Buffer, rec *SauceRecord) {
	if rec == nil || rec.DataType != SauceDataCharacter || rec.TInfo2 == 0 {
		return
	}
	h := int(rec.TInfo2)
	if len(buf.Layers) > 0 && len(buf.Layers[0].Lines) > h {
		buf.Layers[0].Lines = buf.Layers[0].Lines[:h]
		buf.Layers[0].Size.Height = h
	}
	buf.SetHeight(h)
}
