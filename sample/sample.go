package sample

import (
	"bytes"
	"fmt"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// Event is a single raw message to place in a track at an absolute tick.
type Event struct {
	Tick    uint32
	Message []byte
}

func On(tick uint32, channel, key, velocity uint8) Event {
	return Event{Tick: tick, Message: midi.NoteOn(channel, key, velocity)}
}

func Off(tick uint32, channel, key uint8) Event {
	return Event{Tick: tick, Message: midi.NoteOff(channel, key)}
}

func Tempo(tick uint32, bpm float64) Event {
	return Event{Tick: tick, Message: smf.MetaTempo(bpm)}
}

// Track converts absolute ticks to deltas. Events are stably sorted by tick
// so callers may list them in any order.
func Track(events ...Event) smf.Track {
	sorted := append([]Event(nil), events...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Tick < sorted[j].Tick
	})

	var track smf.Track
	var last uint32
	for _, evt := range sorted {
		track.Add(evt.Tick-last, evt.Message)
		last = evt.Tick
	}
	track.Close(0)
	return track
}

func Create(ticksPerQuarter uint16, tracks ...smf.Track) *smf.SMF {
	res := smf.New()
	res.TimeFormat = smf.MetricTicks(ticksPerQuarter)
	for _, track := range tracks {
		res.Add(track)
	}
	return res
}

func Bytes(s *smf.SMF) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("Could not write sample midi: %w", err)
	}
	return buf.Bytes(), nil
}

// Demo is a short two-channel phrase used by the sample command.
func Demo() *smf.SMF {
	melody := Track(
		Tempo(0, 120),
		On(0, 0, 60, 100), Off(480, 0, 60),
		On(480, 0, 64, 90), Off(960, 0, 64),
		On(960, 0, 67, 90), Event{Tick: 1440, Message: midi.NoteOn(0, 67, 0)},
		On(1440, 0, 72, 110), Off(2400, 0, 72),
	)
	bass := Track(
		On(0, 1, 36, 80), Off(960, 1, 36),
		On(960, 1, 43, 80), Off(1920, 1, 43),
	)
	return Create(480, melody, bass)
}
