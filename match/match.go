package match

import (
	"sync"

	"github.com/jsphweid/midi2text/classify"
	"github.com/jsphweid/midi2text/model"
	"github.com/jsphweid/midi2text/util"
	"golang.org/x/exp/slices"
)

// Pairing is the result of looking for a start event's stop. Stop is only
// meaningful when Matched is true.
type Pairing struct {
	Start   model.Event
	Stop    model.Event
	Matched bool
}

type Options struct {
	// Workers > 1 matches voices concurrently. Output does not change.
	Workers int
}

type Outcome struct {
	Tones       []model.Tone
	Unmatched   []model.Event
	UnusedStops int
}

// queue holds the stops of one voice in time order. Everything before head
// has been taken or can no longer be taken.
type queue struct {
	stops []model.Event
	head  int
}

// take pops the earliest stop at or after t.
func (q *queue) take(t int64) (model.Event, bool) {
	for q.head < len(q.stops) && q.stops[q.head].Time < t {
		q.head++
	}
	if q.head == len(q.stops) {
		return model.Event{}, false
	}
	e := q.stops[q.head]
	q.head++
	return e, true
}

func byVoice(events []model.Event) map[model.Voice][]model.Event {
	res := make(map[model.Voice][]model.Event)
	for _, e := range events {
		res[e.Voice()] = append(res[e.Voice()], e)
	}
	return res
}

// pairVoice expects starts and stops of a single voice in ascending time.
// Since starts are visited in time order and a stop is taken at most once,
// each start gets the earliest unused stop at or after it.
func pairVoice(starts, stops []model.Event) []Pairing {
	q := queue{stops: stops}
	res := make([]Pairing, len(starts))
	for i, s := range starts {
		res[i].Start = s
		res[i].Stop, res[i].Matched = q.take(s.Time)
	}
	return res
}

// Pair matches every start with a stop of the same instrument and pitch.
// Pairings come back in (time, pitch, instrument) order of their starts.
func Pair(starts, stops *classify.EventIndex, opts Options) []Pairing {
	all := starts.All()
	startsByVoice := byVoice(all)
	stopsByVoice := byVoice(stops.All())

	voices := util.GetKeys(startsByVoice)
	slices.SortFunc(voices, model.Voice.Compare)

	results := make([][]Pairing, len(voices))
	workers := util.Min(opts.Workers, len(voices))
	if workers <= 1 {
		for i, v := range voices {
			results[i] = pairVoice(startsByVoice[v], stopsByVoice[v])
		}
	} else {
		// each voice owns its stops, so workers never share one
		jobs := make(chan int)
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range jobs {
					v := voices[i]
					results[i] = pairVoice(startsByVoice[v], stopsByVoice[v])
				}
			}()
		}
		for i := range voices {
			jobs <- i
		}
		close(jobs)
		wg.Wait()
	}

	// stitch voices back into global start order
	cursor := make(map[model.Voice]int, len(voices))
	lookup := make(map[model.Voice][]Pairing, len(voices))
	for i, v := range voices {
		lookup[v] = results[i]
	}
	res := make([]Pairing, 0, len(all))
	for _, s := range all {
		v := s.Voice()
		res = append(res, lookup[v][cursor[v]])
		cursor[v]++
	}
	return res
}

// Resolve turns pairings into tones according to policy. lastTick is the
// end given to unmatched starts under PolicyExtend.
func Resolve(pairings []Pairing, policy Policy, lastTick int64) (Outcome, error) {
	var out Outcome
	for _, p := range pairings {
		if p.Matched {
			out.Tones = append(out.Tones, model.NewTone(p.Start, p.Stop))
			continue
		}
		out.Unmatched = append(out.Unmatched, p.Start)
		if policy == PolicyExtend {
			out.Tones = append(out.Tones, model.Tone{
				Start:      p.Start.Time,
				End:        lastTick,
				Instrument: p.Start.Instrument,
				Pitch:      p.Start.Pitch,
				Loudness:   p.Start.Loudness,
			})
		}
	}
	if policy == PolicyError && len(out.Unmatched) > 0 {
		return out, &UnmatchedError{Start: out.Unmatched[0], Count: len(out.Unmatched)}
	}
	out.Tones = SortTones(out.Tones)
	return out, nil
}

// Match runs Pair and Resolve over a classified input.
func Match(res classify.Result, policy Policy, opts Options) (Outcome, error) {
	pairings := Pair(res.Starts, res.Stops, opts)
	out, err := Resolve(pairings, policy, res.LastTick())
	out.UnusedStops = res.Stops.Len() - (len(pairings) - len(out.Unmatched))
	return out, err
}

// SortTones sorts by (start, end, pitch, instrument) and drops tones equal
// to their predecessor under that order.
func SortTones(tones []model.Tone) []model.Tone {
	slices.SortStableFunc(tones, model.Tone.Compare)
	return slices.CompactFunc(tones, func(a, b model.Tone) bool {
		return a.Compare(b) == 0
	})
}
