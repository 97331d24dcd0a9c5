// Package textart loads, edits, renders, and saves text-mode artwork.
//
// It covers the classic scene formats (ANSI, plain ASCII, BIN, XBin,
// ArtWorx ADF, iCE Draw IDF, TundraDraw TND) plus SAUCE metadata and
// inline Sixel raster images. The core is a 2D cell model: a [Buffer]
// owns a stack of [Layer] values, each a grid of [AttributedChar]
// cells with palette, font table, and Sixel overlays.
//
// # Loading and saving
//
// [LoadBuffer] dispatches on the SAUCE record first, then the file
// extension, falling back to plain text:
//
//	data, _ := os.ReadFile("artwork.ans")
//	buf, err := textart.LoadBuffer("artwork.ans", data, textart.LoadOptions{})
//
// [SaveBuffer] runs the matching serializer and appends a SAUCE
// trailer when the buffer carries metadata worth keeping:
//
//	out, err := textart.SaveBuffer("artwork.xb", buf, textart.SaveOptions{Compress: true})
//
// # Parsing
//
// [AnsiParser] is a full escape-sequence state machine: SGR, cursor
// motion, DEC private modes, macros, fonts over DCS, OSC 8
// hyperlinks, Sixel graphics, and ANSI music. Feed it a byte at a
// time through [BufferParser.Print], or a whole stream with
// [ParseBytes]. Side-band events such as answerback strings, bell,
// and music surface as [Action] values; route them with an
// [ActionSink].
//
// # Editing
//
// [EditState] wraps a buffer with a caret, a selection, and an undo
// log. Every mutation pushes its inverse, so [EditState.Undo] and
// [EditState.Redo] walk edits cell by cell; [AtomicUndoGuard] groups
// compound operations into one step. Layer management, font and
// palette switches, clipboard transfer, and cropping all go through
// the edit state.
//
// # Rendering
//
// [Buffer.RenderRGBA] rasterizes a cell region to an RGBA image using
// the buffer's bitmap fonts and palette, compositing Sixel tiles on
// top. [WriteScreenshot] encodes that as PNG.
//
// Sixel payloads decode on a bounded worker pool; results install in
// submission order when [Buffer.UpdateSixelWorkers] or
// [Buffer.FinishSixelWorkers] drains them. Everything else is
// single-threaded: a Buffer belongs to one goroutine at a time.
package textart
