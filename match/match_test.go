package match

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/jsphweid/midi2text/classify"
	"github.com/jsphweid/midi2text/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func on(t int64, ch, key, vel uint8) model.Message {
	return model.Message{Time: t, Channel: ch, Key: key, Velocity: vel, Command: model.CommandNoteOn}
}

func off(t int64, ch, key uint8) model.Message {
	return model.Message{Time: t, Channel: ch, Key: key, Command: model.CommandNoteOff}
}

func run(t *testing.T, policy Policy, msgs ...model.Message) Outcome {
	out, err := Match(classify.Classify(msgs), policy, Options{})
	require.NoError(t, err)
	return out
}

func TestSingleNote(t *testing.T) {
	out := run(t, PolicyDrop, on(0, 0, 60, 100), off(10, 0, 60))

	assert.Equal(t, []model.Tone{{Start: 0, End: 10, Instrument: 0, Pitch: 60, Loudness: 100}}, out.Tones)
}

func TestEarliestAvailableStopWins(t *testing.T) {
	out := run(t, PolicyDrop,
		on(0, 0, 60, 90), on(5, 0, 60, 80),
		off(3, 0, 60), off(8, 0, 60),
	)

	assert.Equal(t, []model.Tone{
		{Start: 0, End: 3, Pitch: 60, Loudness: 90},
		{Start: 5, End: 8, Pitch: 60, Loudness: 80},
	}, out.Tones)
}

func TestOverlappingStartsNeverCross(t *testing.T) {
	// both starts precede both stops; the first start takes the first stop
	out := run(t, PolicyDrop,
		on(0, 0, 60, 90), on(1, 0, 60, 80),
		off(10, 0, 60), off(4, 0, 60),
	)

	assert.Equal(t, []model.Tone{
		{Start: 0, End: 4, Pitch: 60, Loudness: 90},
		{Start: 1, End: 10, Pitch: 60, Loudness: 80},
	}, out.Tones)
}

func TestStopsOnlyMatchSameVoice(t *testing.T) {
	out := run(t, PolicyDrop,
		on(0, 0, 60, 90), on(0, 1, 60, 90), on(0, 0, 61, 90),
		off(2, 1, 60), off(3, 0, 61), off(4, 0, 60),
	)

	assert.Equal(t, []model.Tone{
		{Start: 0, End: 2, Instrument: 1, Pitch: 60, Loudness: 90},
		{Start: 0, End: 3, Instrument: 0, Pitch: 61, Loudness: 90},
		{Start: 0, End: 4, Instrument: 0, Pitch: 60, Loudness: 90},
	}, out.Tones)
}

func TestStopAtSameTickAsStart(t *testing.T) {
	out := run(t, PolicyDrop, on(7, 0, 60, 90), off(7, 0, 60))

	assert.Equal(t, []model.Tone{{Start: 7, End: 7, Pitch: 60, Loudness: 90}}, out.Tones)
}

func TestStopAtLastTickIsReachable(t *testing.T) {
	out := run(t, PolicyDrop, on(0, 0, 60, 90), off(3, 0, 61), off(9, 0, 60))

	require.Len(t, out.Tones, 1)
	assert.Equal(t, int64(9), out.Tones[0].End)
	assert.Equal(t, 1, out.UnusedStops)
}

func TestUnmatchedPolicies(t *testing.T) {
	msgs := []model.Message{
		on(0, 0, 60, 90), off(4, 0, 60),
		on(6, 2, 50, 70),
		off(2, 2, 50), // before the start, unusable
		on(1, 0, 70, 40), off(12, 0, 71),
	}

	t.Run("drop", func(t *testing.T) {
		out := run(t, PolicyDrop, msgs...)

		assert := assert.New(t)
		assert.Equal([]model.Tone{{Start: 0, End: 4, Pitch: 60, Loudness: 90}}, out.Tones)
		assert.Equal([]model.Event{
			{Time: 1, Instrument: 0, Pitch: 70, Loudness: 40},
			{Time: 6, Instrument: 2, Pitch: 50, Loudness: 70},
		}, out.Unmatched)
		assert.Equal(2, out.UnusedStops)
	})

	t.Run("extend", func(t *testing.T) {
		out := run(t, PolicyExtend, msgs...)

		assert.Equal(t, []model.Tone{
			{Start: 0, End: 4, Pitch: 60, Loudness: 90},
			{Start: 1, End: 12, Pitch: 70, Loudness: 40},
			{Start: 6, End: 12, Instrument: 2, Pitch: 50, Loudness: 70},
		}, out.Tones)
	})

	t.Run("error", func(t *testing.T) {
		_, err := Match(classify.Classify(msgs), PolicyError, Options{})

		var unmatched *UnmatchedError
		require.True(t, errors.As(err, &unmatched))
		assert.Equal(t, 2, unmatched.Count)
		assert.Equal(t, int64(1), unmatched.Start.Time)
	})
}

func TestNoStopsAtAll(t *testing.T) {
	out := run(t, PolicyDrop, on(0, 0, 60, 90))

	assert := assert.New(t)
	assert.Empty(out.Tones)
	assert.Len(out.Unmatched, 1)
}

func TestParsePolicy(t *testing.T) {
	for _, p := range Policies {
		got, err := ParsePolicy(string(p))
		assert.NoError(t, err)
		assert.Equal(t, p, got)
	}
	_, err := ParsePolicy("zero")
	assert.Error(t, err)
}

func TestSortTonesCollapsesEqualKeys(t *testing.T) {
	tones := SortTones([]model.Tone{
		{Start: 1, End: 2, Pitch: 60, Loudness: 1},
		{Start: 0, End: 9, Pitch: 60},
		{Start: 1, End: 2, Pitch: 60, Loudness: 2},
	})

	assert.Equal(t, []model.Tone{
		{Start: 0, End: 9, Pitch: 60},
		{Start: 1, End: 2, Pitch: 60, Loudness: 1},
	}, tones)
}

func randomMessages(r *rand.Rand, n int) []model.Message {
	var msgs []model.Message
	for i := 0; i < n; i++ {
		ch := uint8(r.Intn(3))
		key := uint8(60 + r.Intn(4))
		t := int64(r.Intn(200))
		msgs = append(msgs, on(t, ch, key, uint8(1+r.Intn(127))))
		if r.Intn(10) > 0 {
			msgs = append(msgs, off(t+int64(r.Intn(30)), ch, key))
		}
	}
	return msgs
}

func TestPropertiesOnRandomInput(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for round := 0; round < 20; round++ {
		res := classify.Classify(randomMessages(r, 300))
		pairings := Pair(res.Starts, res.Stops, Options{})

		assert := assert.New(t)

		// same output when voices are matched concurrently
		assert.Equal(pairings, Pair(res.Starts, res.Stops, Options{Workers: 8}))

		used := make(map[model.EventKey]bool)
		starts := res.Starts.All()
		require.Len(t, pairings, len(starts))
		for i, p := range pairings {
			assert.Equal(starts[i], p.Start)
			if !p.Matched {
				continue
			}
			assert.False(used[p.Stop.Key()], "stop %v used twice", p.Stop)
			used[p.Stop.Key()] = true
			assert.Equal(p.Start.Voice(), p.Stop.Voice())
			assert.GreaterOrEqual(p.Stop.Time, p.Start.Time)
		}

		out, err := Resolve(pairings, PolicyDrop, res.LastTick())
		require.NoError(t, err)
		for i := 1; i < len(out.Tones); i++ {
			assert.Equal(-1, out.Tones[i-1].Compare(out.Tones[i]))
		}
	}
}
