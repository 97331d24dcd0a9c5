package textart

import (
	"errors"
	"fmt"
)

// Undo stack sentinels.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// ParserErrorKind enumerates stream-parsing failures.
type ParserErrorKind uint8

const (
	ErrInvalidChar ParserErrorKind = iota
	ErrInvalidBuffer
	ErrUnsupportedEscapeSequence
	ErrUnsupportedCustomCommand
	ErrUnsupportedControlCode
	ErrUnsupportedFont
	ErrUnsupportedSGR
	ErrInvalidColorInSixelSequence
	ErrNumberMissingInSixelRepeat
	ErrInvalidSixelChar
	ErrUnsupportedSixelColorFormat
	ErrInvalidPictureSize
	ErrUnsupportedOSCSequence
	ErrOSCTerminatorMissing
)

var parserErrorText = map[ParserErrorKind]string{
	ErrInvalidChar:                 "invalid character",
	ErrInvalidBuffer:               "buffer has no layer 0",
	ErrUnsupportedEscapeSequence:   "unsupported escape sequence",
	ErrUnsupportedCustomCommand:    "unsupported custom command",
	ErrUnsupportedControlCode:      "unsupported control code",
	ErrUnsupportedFont:             "unsupported font",
	ErrUnsupportedSGR:              "unsupported graphic rendition",
	ErrInvalidColorInSixelSequence: "invalid color in sixel sequence",
	ErrNumberMissingInSixelRepeat:  "sixel repeat needs a count",
	ErrInvalidSixelChar:            "invalid sixel character",
	ErrUnsupportedSixelColorFormat: "unsupported sixel color format",
	ErrInvalidPictureSize:          "invalid picture size",
	ErrUnsupportedOSCSequence:      "unsupported OSC sequence",
	ErrOSCTerminatorMissing:        "OSC terminator missing",
}

// ParserError is a structured per-byte parse failure.
type ParserError struct {
	Kind   ParserErrorKind
	Detail string
}

func (e *ParserError) Error() string {
	if e.Detail == "" {
		return parserErrorText[e.Kind]
	}
	return fmt.Sprintf("%s: %s", parserErrorText[e.Kind], e.Detail)
}

func parserErr(kind ParserErrorKind, format string, args ...any) error {
	return &ParserError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// SauceErrorKind enumerates SAUCE codec failures.
type SauceErrorKind uint8

const (
	SauceErrFileTooShort SauceErrorKind = iota
	SauceErrNoSauce
	SauceErrUnsupportedVersion
	SauceErrInvalidCommentBlock
	SauceErrInvalidCommentID
	SauceErrUnsupportedDate
	SauceErrCommentLimit
	SauceErrBinWidthLimit
)

var sauceErrorText = map[SauceErrorKind]string{
	SauceErrFileTooShort:        "file too short for SAUCE",
	SauceErrNoSauce:             "no SAUCE record",
	SauceErrUnsupportedVersion:  "unsupported SAUCE version",
	SauceErrInvalidCommentBlock: "invalid SAUCE comment block",
	SauceErrInvalidCommentID:    "invalid SAUCE comment id",
	SauceErrUnsupportedDate:     "unsupported SAUCE date",
	SauceErrCommentLimit:        "SAUCE comment limit exceeded",
	SauceErrBinWidthLimit:       "BIN files wider than 510 columns cannot carry SAUCE",
}

// SauceError is a structured SAUCE codec failure.
type SauceError struct {
	Kind   SauceErrorKind
	Detail string
}

func (e *SauceError) Error() string {
	if e.Detail == "" {
		return sauceErrorText[e.Kind]
	}
	return fmt.Sprintf("%s: %s", sauceErrorText[e.Kind], e.Detail)
}

func sauceErr(kind SauceErrorKind, format string, args ...any) error {
	return &SauceError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// EditorError is a structured edit-state failure.
type EditorError struct {
	Layer   int
	Message string
}

func (e *EditorError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("layer %d is invalid", e.Layer)
	}
	return "editor error: " + e.Message
}

func editorErr(format string, args ...any) error {
	return &EditorError{Message: fmt.Sprintf(format, args...)}
}

func invalidLayerErr(layer int) error {
	return &EditorError{Layer: layer}
}

// LoadError is a file-format load failure.
type LoadError struct {
	Format string
	Reason string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("invalid %s file: %s", e.Format, e.Reason)
}

func loadErr(format, reason string, args ...any) error {
	return &LoadError{Format: format, Reason: fmt.Sprintf(reason, args...)}
}

// SaveError is a file-format save failure.
type SaveError struct {
	Format string
	Reason string
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("cannot save %s file: %s", e.Format, e.Reason)
}

func saveErr(format, reason string, args ...any) error {
	return &SaveError{Format: format, Reason: fmt.Sprintf(reason, args...)}
}
