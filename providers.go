package textart

import (
	"context"
	"io"
)

// ActionSink consumes the side-band events a parser produces while the
// buffer is being mutated: terminal responses, bell, music, baud and
// resize requests. Implementations decide which kinds they care about
// and ignore the rest.
type ActionSink interface {
	HandleAction(Action) error
}

// ActionSinkFunc adapts a function to the ActionSink interface.
type ActionSinkFunc func(Action) error

func (f ActionSinkFunc) HandleAction(a Action) error { return f(a) }

// NoopSink discards every action.
type NoopSink struct{}

func (NoopSink) HandleAction(Action) error { return nil }

// ResponseSink forwards terminal responses (cursor reports, device
// attributes, checksums) to a writer, typically the transport the
// stream arrived on.
type ResponseSink struct {
	W io.Writer
}

func (s ResponseSink) HandleAction(a Action) error {
	if a.Kind != ActionSendString || s.W == nil {
		return nil
	}
	_, err := io.WriteString(s.W, a.Text)
	return err
}

// BellCounter counts bell events.
type BellCounter struct {
	Rings int
}

func (s *BellCounter) HandleAction(a Action) error {
	if a.Kind == ActionBeep {
		s.Rings++
	}
	return nil
}

// MusicSink plays parsed music through a MusicPlayer. Playback is
// synchronous; the stream pauses for the duration of the piece, the
// way a BBS-era terminal would.
type MusicSink struct {
	Player *MusicPlayer
	Ctx    context.Context
}

func (s MusicSink) HandleAction(a Action) error {
	if a.Kind != ActionPlayMusic || a.Music == nil || s.Player == nil {
		return nil
	}
	ctx := s.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	return s.Player.Play(ctx, a.Music)
}

// MultiSink fans every action out to all members, stopping at the
// first error.
type MultiSink []ActionSink

func (s MultiSink) HandleAction(a Action) error {
	for _, m := range s {
		if err := m.HandleAction(a); err != nil {
			return err
		}
	}
	return nil
}

// ParseBytesTo feeds a byte stream through a parser, routing every
// non-empty action to the sink. Parse and sink errors are collected,
// not fatal.
func ParseBytesTo(parser BufferParser, buf *Buffer, caret *Caret, data []byte, sink ActionSink) []error {
	var errs []error
	for _, b := range data {
		action, err := parser.Print(buf, caret, rune(b))
		if err != nil {
			errs = append(errs, err)
		}
		if action.Kind == ActionNone || sink == nil {
			continue
		}
		if err := sink.HandleAction(action); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
