package textart

import (
	"context"
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

// MusicOption selects which CSI finals are treated as ANSI music
// introducers. The M final conflicts with delete-line, so it has to be
// opted into.
type MusicOption uint8

const (
	MusicOff MusicOption = iota
	MusicConflicting
	MusicBanana
	MusicBoth
)

// MusicStyle is the articulation selected with the M prefix inside a
// music sequence.
type MusicStyle uint8

const (
	MusicStyleForeground MusicStyle = iota
	MusicStyleBackground
	MusicStyleNormal
	MusicStyleLegato
	MusicStyleStaccato
)

// MusicActionKind discriminates music events.
type MusicActionKind uint8

const (
	MusicPlayNote MusicActionKind = iota
	MusicPause
)

// MusicAction is one event of a parsed music score: a note with its
// frequency and duration, or a rest.
type MusicAction struct {
	Kind      MusicActionKind
	Frequency float64
	// Duration is tempo*length ticks; see NoteDuration.
	Duration int
}

// NoteDuration converts the tick count into wall time. A quarter note
// at tempo 120 has 480 ticks and lasts half a second.
func (a MusicAction) NoteDuration() time.Duration {
	if a.Duration <= 0 {
		return 0
	}
	return 4 * time.Minute / time.Duration(a.Duration)
}

// AnsiMusic is a parsed music sequence.
type AnsiMusic struct {
	Style   MusicStyle
	Actions []MusicAction
}

// noteFrequencies holds seven octaves of equal temperament starting at
// C2.
var noteFrequencies [84]float64

func init() {
	const c2 = 65.40639
	for i := range noteFrequencies {
		noteFrequencies[i] = c2 * math.Pow(2, float64(i)/12)
	}
}

// noteSemitones maps note letters onto semitone offsets within an
// octave.
var noteSemitones = map[rune]int{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

type musicPending uint8

const (
	pendingNone musicPending = iota
	pendingStyle
	pendingTempo
	pendingOctave
	pendingLength
	pendingNote
	pendingNoteNumber
	pendingPause
)

// musicBuilder parses the GW-BASIC PLAY dialect used by ANSI music: M
// style prefixes, T tempo, O octave, L default length, letter notes
// with sharps, flats, lengths and dots, N numbered notes and P rests,
// terminated by 0x0E.
type musicBuilder struct {
	music      AnsiMusic
	tempo      int
	octave     int
	defaultLen int

	pending  musicPending
	number   int
	hasDigit bool
	semitone int
	noteLen  int
	dotted   bool
}

func newMusicBuilder() *musicBuilder {
	return &musicBuilder{tempo: 120, octave: 3, defaultLen: 4}
}

// feed consumes one character, reporting completion at the terminator.
func (b *musicBuilder) feed(ch rune) (bool, error) {
	if ch == 0x0E {
		b.flush()
		return true, nil
	}
	if ch >= 'a' && ch <= 'z' {
		ch -= 'a' - 'A'
	}
	if b.pending == pendingStyle {
		switch ch {
		case 'F':
			b.music.Style = MusicStyleForeground
		case 'B':
			b.music.Style = MusicStyleBackground
		case 'N':
			b.music.Style = MusicStyleNormal
		case 'L':
			b.music.Style = MusicStyleLegato
		case 'S':
			b.music.Style = MusicStyleStaccato
		}
		b.pending = pendingNone
		return false, nil
	}
	if b.pending == pendingNote {
		switch {
		case ch == '#' || ch == '+':
			b.semitone++
			return false, nil
		case ch == '-':
			b.semitone--
			return false, nil
		case ch >= '0' && ch <= '9':
			b.noteLen = b.noteLen*10 + int(ch-'0')
			return false, nil
		case ch == '.':
			b.dotted = true
			return false, nil
		}
		b.flush()
	} else if b.pending != pendingNone {
		switch {
		case ch >= '0' && ch <= '9':
			b.number = b.number*10 + int(ch-'0')
			b.hasDigit = true
			return false, nil
		case ch == '.' && b.pending == pendingPause:
			b.dotted = true
			return false, nil
		}
		b.flush()
	}
	switch {
	case ch == 'M':
		b.pending = pendingStyle
	case ch == 'T':
		b.pending = pendingTempo
	case ch == 'O':
		b.pending = pendingOctave
	case ch == 'L':
		b.pending = pendingLength
	case ch == 'N':
		b.pending = pendingNoteNumber
	case ch == 'P':
		b.pending = pendingPause
	case ch == '<':
		b.octave = maxInt(0, b.octave-1)
	case ch == '>':
		b.octave = minInt(6, b.octave+1)
	default:
		if sem, ok := noteSemitones[ch]; ok {
			b.pending = pendingNote
			b.semitone = sem
			b.noteLen = 0
			b.dotted = false
		}
	}
	return false, nil
}

// flush commits the pending operator.
func (b *musicBuilder) flush() {
	switch b.pending {
	case pendingTempo:
		if b.hasDigit {
			b.tempo = clampInt(b.number, 32, 255)
		}
	case pendingOctave:
		if b.hasDigit {
			b.octave = clampInt(b.number, 0, 6)
		}
	case pendingLength:
		if b.hasDigit {
			b.defaultLen = clampInt(b.number, 1, 64)
		}
	case pendingNoteNumber:
		if b.hasDigit {
			n := clampInt(b.number, 0, len(noteFrequencies)-1)
			b.music.Actions = append(b.music.Actions, MusicAction{
				Kind:      MusicPlayNote,
				Frequency: noteFrequencies[n],
				Duration:  b.tempo * b.defaultLen,
			})
		}
	case pendingPause:
		length := b.defaultLen
		if b.hasDigit {
			length = clampInt(b.number, 1, 64)
		}
		if b.dotted {
			length = length * 3 / 2
		}
		b.music.Actions = append(b.music.Actions, MusicAction{
			Kind:     MusicPause,
			Duration: b.tempo * length,
		})
	case pendingNote:
		n := clampInt(b.semitone+b.octave*12, 0, len(noteFrequencies)-1)
		length := b.defaultLen
		if b.noteLen > 0 {
			length = clampInt(b.noteLen, 1, 64)
		}
		if b.dotted {
			length = length * 3 / 2
		}
		b.music.Actions = append(b.music.Actions, MusicAction{
			Kind:      MusicPlayNote,
			Frequency: noteFrequencies[n],
			Duration:  b.tempo * length,
		})
	}
	b.pending = pendingNone
	b.number = 0
	b.hasDigit = false
	b.dotted = false
}

func (b *musicBuilder) finish() *AnsiMusic {
	b.flush()
	m := b.music
	return &m
}

// MusicPlayer renders parsed music scores through the system audio
// device.
type MusicPlayer struct {
	sampleRate beep.SampleRate
}

// NewMusicPlayer initializes the speaker once for score playback.
func NewMusicPlayer() (*MusicPlayer, error) {
	sr := beep.SampleRate(44100)
	if err := speaker.Init(sr, sr.N(time.Second/10)); err != nil {
		return nil, err
	}
	return &MusicPlayer{sampleRate: sr}, nil
}

// Play performs a score, honoring ctx cancellation between events.
func (p *MusicPlayer) Play(ctx context.Context, m *AnsiMusic) error {
	for _, action := range m.Actions {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		d := action.NoteDuration()
		if action.Kind == MusicPause {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(d):
			}
			continue
		}
		tone, err := generators.SineTone(p.sampleRate, action.Frequency)
		if err != nil {
			return err
		}
		done := make(chan struct{})
		speaker.Play(beep.Seq(beep.Take(p.sampleRate.N(d), tone), beep.Callback(func() {
			close(done)
		})))
		select {
		case <-ctx.Done():
			speaker.Clear()
			return ctx.Err()
		case <-done:
		}
	}
	return nil
}
