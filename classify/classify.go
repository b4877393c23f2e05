package classify

import "github.com/jsphweid/midi2text/model"

type Result struct {
	Starts  *EventIndex
	Stops   *EventIndex
	Ignored int

	// events dropped because an event with the same key was already indexed
	Duplicates int
}

// IsStop reports whether m ends a note. A note-on with zero velocity counts
// as a note-off.
func IsStop(m model.Message) bool {
	return m.Command == model.CommandNoteOff ||
		(m.Command == model.CommandNoteOn && m.Velocity == 0)
}

func Classify(msgs []model.Message) Result {
	res := Result{
		Starts: NewEventIndex(),
		Stops:  NewEventIndex(),
	}
	for _, m := range msgs {
		var added bool
		switch {
		case m.Command == model.CommandOther:
			res.Ignored++
			continue
		case IsStop(m):
			added = res.Stops.Add(model.NewEvent(m))
		default:
			added = res.Starts.Add(model.NewEvent(m))
		}
		if !added {
			res.Duplicates++
		}
	}
	return res
}

// LastTick is the greatest time present in either collection.
func (r Result) LastTick() int64 {
	a, _ := r.Starts.MaxTime()
	b, _ := r.Stops.MaxTime()
	if b > a {
		return b
	}
	return a
}
