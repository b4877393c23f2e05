package midi

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/jsphweid/midi2text/model"
	"gitlab.com/gomidi/midi/v2/smf"
)

// DefaultTempo is the tempo a file has before any tempo meta event, in
// microseconds per quarter note (120 bpm).
const DefaultTempo = 500000

// ErrDecode marks every failure to turn input bytes into a sequence.
var ErrDecode = errors.New("could not decode midi")

// Source is everything the converter needs from a decoded file.
type Source struct {
	Messages        []model.Message
	Tempo           int64
	TicksPerQuarter int
}

func ReadMidiFile(filepath string) (*smf.SMF, error) {
	dat, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("Error reading midi file %v: %w", filepath, err)
	}
	return Read(bytes.NewReader(dat))
}

func Read(r io.Reader) (s *smf.SMF, e error) {
	// handle panics
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if r := recover(); r != nil {
			s = nil
			e = fmt.Errorf("%w: decoder panicked: %v", ErrDecode, r)
		}
	}()

	res, err := smf.ReadFrom(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return res, nil
}

// Decode reads a whole file from r.
func Decode(r io.Reader) (Source, error) {
	s, err := Read(r)
	if err != nil {
		return Source{}, err
	}
	return FromSMF(s), nil
}

func DecodeFile(filepath string) (Source, error) {
	s, err := ReadMidiFile(filepath)
	if err != nil {
		return Source{}, err
	}
	return FromSMF(s), nil
}

func FromSMF(s *smf.SMF) Source {
	src := Source{
		Messages: Messages(s),
		Tempo:    Tempo(s),
	}
	if tf, ok := s.TimeFormat.(smf.MetricTicks); ok {
		src.TicksPerQuarter = int(tf)
	}
	return src
}

// Messages flattens all tracks into channel messages at absolute ticks.
// Zero velocity note-ons are kept as note-ons; deciding what they mean is
// up to the caller.
func Messages(s *smf.SMF) []model.Message {
	var res []model.Message
	for _, events := range s.Tracks {
		var absTicks int64
		for _, event := range events {
			absTicks += int64(event.Delta)
			var channel, key, velocity uint8
			switch {
			case event.Message.GetNoteOn(&channel, &key, &velocity):
				res = append(res, model.Message{
					Time:     absTicks,
					Channel:  channel,
					Key:      key,
					Velocity: velocity,
					Command:  model.CommandNoteOn,
				})
			case event.Message.GetNoteOff(&channel, &key, &velocity):
				res = append(res, model.Message{
					Time:     absTicks,
					Channel:  channel,
					Key:      key,
					Velocity: velocity,
					Command:  model.CommandNoteOff,
				})
			default:
				res = append(res, model.Message{Time: absTicks, Command: model.CommandOther})
			}
		}
	}
	return res
}

// Tempo returns the earliest tempo meta event in microseconds per quarter
// note. Ties go to the lower track.
func Tempo(s *smf.SMF) int64 {
	found := false
	var at int64
	var bpm float64
	for _, events := range s.Tracks {
		var absTicks int64
		for _, event := range events {
			absTicks += int64(event.Delta)
			if found && absTicks >= at {
				break
			}
			var b float64
			if event.Message.GetMetaTempo(&b) && b > 0 {
				found, at, bpm = true, absTicks, b
				break
			}
		}
	}
	if !found {
		return DefaultTempo
	}
	return int64(math.Round(60000000 / bpm))
}
