package model

import "fmt"

// Tone is a resolved note spanning a start and a stop event.
type Tone struct {
	Start      int64
	End        int64
	Instrument uint8
	Pitch      uint8
	Loudness   uint8
}

// NewTone takes the times of both events and everything else from start.
func NewTone(start, stop Event) Tone {
	return Tone{
		Start:      start.Time,
		End:        stop.Time,
		Instrument: start.Instrument,
		Pitch:      start.Pitch,
		Loudness:   start.Loudness,
	}
}

// Compare orders tones by (start, end, pitch, instrument). Tones that tie on
// all four are equal regardless of loudness.
func (t Tone) Compare(o Tone) int {
	switch {
	case t.Start != o.Start:
		return compareInt(t.Start, o.Start)
	case t.End != o.End:
		return compareInt(t.End, o.End)
	case t.Pitch != o.Pitch:
		return compareInt(t.Pitch, o.Pitch)
	}
	return compareInt(t.Instrument, o.Instrument)
}

// String renders the note line. Channels are printed 1-based.
func (t Tone) String() string {
	return fmt.Sprintf("note %d %d %d %d %d", t.Start, t.End, int(t.Instrument)+1, t.Pitch, t.Loudness)
}
