package notation

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/jsphweid/midi2text/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, 500000, []model.Tone{
		{Start: 0, End: 10, Instrument: 0, Pitch: 60, Loudness: 100},
		{Start: 5, End: 8, Instrument: 9, Pitch: 36, Loudness: 64},
	})
	require.NoError(t, err)

	assert.Equal(t, "tempo 500000\nnote 0 10 1 60 100\nnote 5 8 10 36 64\n", buf.String())
}

func TestWriteHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, 500000, nil))
	assert.Equal(t, "tempo 500000\n", buf.String())
}

// failingWriter accepts limit bytes and then fails.
type failingWriter struct {
	limit   int
	written bytes.Buffer
}

var errFull = errors.New("disk full")

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.written.Len()+len(p) > w.limit {
		return 0, errFull
	}
	return w.written.Write(p)
}

func TestWritePropagatesErrors(t *testing.T) {
	tones := make([]model.Tone, 10000)
	for i := range tones {
		tones[i] = model.Tone{Start: int64(i), End: int64(i + 1), Pitch: 60, Loudness: 100}
	}
	w := &failingWriter{limit: 100000}
	err := Write(w, 500000, tones)

	assert := assert.New(t)
	assert.True(errors.Is(err, errFull))
	assert.Greater(w.written.Len(), 0)
	assert.True(strings.HasSuffix(w.written.String(), "\n"))
}

func TestParseRoundTrip(t *testing.T) {
	text := "tempo 600000\nnote 0 10 1 60 100\n\nnote 5 8 16 36 64\n"
	doc, err := Parse(strings.NewReader(text))
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal(int64(600000), doc.Tempo)
	assert.Equal([]model.Tone{
		{Start: 0, End: 10, Instrument: 0, Pitch: 60, Loudness: 100},
		{Start: 5, End: 8, Instrument: 15, Pitch: 36, Loudness: 64},
	}, doc.Tones)

	var buf bytes.Buffer
	require.NoError(t, WriteDocument(&buf, doc))
	assert.Equal(strings.Replace(text, "\n\n", "\n", 1), buf.String())
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"missing tempo":     "",
		"note before tempo": "note 0 1 1 60 100\ntempo 1\n",
		"two tempos":        "tempo 1\ntempo 2\n",
		"short note":        "tempo 1\nnote 0 1 1 60\n",
		"channel zero":      "tempo 1\nnote 0 1 0 60 100\n",
		"bad number":        "tempo 1\nnote 0 x 1 60 100\n",
		"unknown":           "tempo 1\nchord 1 2 3\n",
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(text))
			assert.Error(t, err)
		})
	}
}
