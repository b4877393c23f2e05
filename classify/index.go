package classify

import (
	"github.com/jsphweid/midi2text/model"
	"github.com/jsphweid/midi2text/util"
	"golang.org/x/exp/slices"
)

// EventIndex groups events by time. Each bucket stays sorted by
// (pitch, instrument), so walking Times() and then At() visits events in
// (time, pitch, instrument) order.
type EventIndex struct {
	buckets map[int64][]model.Event
	size    int
}

func NewEventIndex() *EventIndex {
	return &EventIndex{buckets: make(map[int64][]model.Event)}
}

// Add inserts e unless an event with the same key is already present, in
// which case the existing event (and its loudness) is kept and Add returns
// false.
func (idx *EventIndex) Add(e model.Event) bool {
	bucket := idx.buckets[e.Time]
	i, found := slices.BinarySearchFunc(bucket, e, model.Event.Compare)
	if found {
		return false
	}
	idx.buckets[e.Time] = slices.Insert(bucket, i, e)
	idx.size++
	return true
}

func (idx *EventIndex) Len() int {
	return idx.size
}

func (idx *EventIndex) Times() []int64 {
	return util.GetSortedKeys(idx.buckets)
}

// At returns a copy of the bucket at time t.
func (idx *EventIndex) At(t int64) []model.Event {
	return slices.Clone(idx.buckets[t])
}

func (idx *EventIndex) All() []model.Event {
	res := make([]model.Event, 0, idx.size)
	for _, t := range idx.Times() {
		res = append(res, idx.buckets[t]...)
	}
	return res
}

func (idx *EventIndex) MaxTime() (int64, bool) {
	if idx.size == 0 {
		return 0, false
	}
	var max int64
	for t := range idx.buckets {
		max = util.Max(max, t)
	}
	return max, true
}
