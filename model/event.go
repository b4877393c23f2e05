package model

import "fmt"

// Command is the note-state tag the decoder attaches to each message.
type Command uint8

const (
	CommandOther Command = iota
	CommandNoteOn
	CommandNoteOff
)

func (c Command) String() string {
	switch c {
	case CommandNoteOn:
		return "note-on"
	case CommandNoteOff:
		return "note-off"
	}
	return "other"
}

// Message is one decoded channel message positioned at an absolute tick.
type Message struct {
	Time     int64
	Channel  uint8
	Key      uint8
	Velocity uint8
	Command  Command
}

// EventKey identifies an Event. Two events with the same key are the same
// event even when their velocities differ.
type EventKey struct {
	Time       int64
	Pitch      uint8
	Instrument uint8
}

func (k EventKey) Compare(o EventKey) int {
	switch {
	case k.Time != o.Time:
		return compareInt(k.Time, o.Time)
	case k.Pitch != o.Pitch:
		return compareInt(k.Pitch, o.Pitch)
	}
	return compareInt(k.Instrument, o.Instrument)
}

// Voice is the (instrument, pitch) pair that matching never crosses.
type Voice struct {
	Instrument uint8
	Pitch      uint8
}

func (v Voice) Compare(o Voice) int {
	if v.Pitch != o.Pitch {
		return compareInt(v.Pitch, o.Pitch)
	}
	return compareInt(v.Instrument, o.Instrument)
}

// Event is one half of a tone: the moment a note starts or stops.
type Event struct {
	Time       int64
	Instrument uint8
	Pitch      uint8
	Loudness   uint8
}

func NewEvent(m Message) Event {
	return Event{
		Time:       m.Time,
		Instrument: m.Channel,
		Pitch:      m.Key,
		Loudness:   m.Velocity,
	}
}

func (e Event) Key() EventKey {
	return EventKey{Time: e.Time, Pitch: e.Pitch, Instrument: e.Instrument}
}

func (e Event) Voice() Voice {
	return Voice{Instrument: e.Instrument, Pitch: e.Pitch}
}

// Compare orders events by (time, pitch, instrument). Loudness is ignored.
func (e Event) Compare(o Event) int {
	return e.Key().Compare(o.Key())
}

func (e Event) String() string {
	return fmt.Sprintf("@%d channel=%d key=%d velocity=%d", e.Time, e.Instrument, e.Pitch, e.Loudness)
}

func compareInt[A int64 | uint8](a, b A) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
