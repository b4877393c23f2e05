// Package notation reads and writes the line-oriented tone format:
//
//	tempo <microseconds per quarter note>
//	note <start> <end> <channel> <key> <velocity>
//
// Channels are 1-based in text and 0-based everywhere else.
package notation

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jsphweid/midi2text/model"
)

type Document struct {
	Tempo int64
	Tones []model.Tone
}

func TempoLine(tempo int64) string {
	return "tempo " + strconv.FormatInt(tempo, 10)
}

// chunkSize is how much text Write collects before handing it to the writer.
const chunkSize = 64 * 1024

// Write emits the tempo header and one line per tone, in the order given.
// The writer only ever sees whole lines, and the first error stops the output.
func Write(w io.Writer, tempo int64, tones []model.Tone) error {
	var buf bytes.Buffer
	flush := func() error {
		if buf.Len() == 0 {
			return nil
		}
		_, err := w.Write(buf.Bytes())
		buf.Reset()
		return err
	}

	buf.WriteString(TempoLine(tempo))
	buf.WriteByte('\n')
	for i, t := range tones {
		buf.WriteString(t.String())
		buf.WriteByte('\n')
		if buf.Len() >= chunkSize {
			if err := flush(); err != nil {
				return fmt.Errorf("Could not write notes up to %d of %d: %w", i+1, len(tones), err)
			}
		}
	}
	if err := flush(); err != nil {
		return fmt.Errorf("Could not write notes: %w", err)
	}
	return nil
}

func WriteDocument(w io.Writer, doc Document) error {
	return Write(w, doc.Tempo, doc.Tones)
}

// Parse reads a document back. It expects exactly one tempo line before any
// note lines; blank lines are skipped.
func Parse(r io.Reader) (Document, error) {
	var doc Document
	sawTempo := false
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "tempo":
			if sawTempo {
				return doc, fmt.Errorf("line %d: second tempo line", lineNum)
			}
			if len(fields) != 2 {
				return doc, fmt.Errorf("line %d: tempo takes 1 value, got %d", lineNum, len(fields)-1)
			}
			tempo, err := strconv.ParseInt(fields[1], 10, 64)
			if err != nil {
				return doc, fmt.Errorf("line %d: bad tempo: %w", lineNum, err)
			}
			doc.Tempo = tempo
			sawTempo = true
		case "note":
			if !sawTempo {
				return doc, fmt.Errorf("line %d: note before tempo line", lineNum)
			}
			t, err := parseNote(fields[1:])
			if err != nil {
				return doc, fmt.Errorf("line %d: %w", lineNum, err)
			}
			doc.Tones = append(doc.Tones, t)
		default:
			return doc, fmt.Errorf("line %d: unknown directive %q", lineNum, fields[0])
		}
	}
	if err := scanner.Err(); err != nil {
		return doc, err
	}
	if !sawTempo {
		return doc, fmt.Errorf("missing tempo line")
	}
	return doc, nil
}

func parseNote(fields []string) (model.Tone, error) {
	if len(fields) != 5 {
		return model.Tone{}, fmt.Errorf("note takes 5 values, got %d", len(fields))
	}
	var nums [5]int64
	for i, f := range fields {
		n, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return model.Tone{}, fmt.Errorf("bad note value %q: %w", f, err)
		}
		nums[i] = n
	}
	if nums[2] < 1 || nums[2] > 256 {
		return model.Tone{}, fmt.Errorf("channel %d out of range", nums[2])
	}
	for _, n := range nums[3:] {
		if n < 0 || n > 255 {
			return model.Tone{}, fmt.Errorf("value %d out of range", n)
		}
	}
	return model.Tone{
		Start:      nums[0],
		End:        nums[1],
		Instrument: uint8(nums[2] - 1),
		Pitch:      uint8(nums[3]),
		Loudness:   uint8(nums[4]),
	}, nil
}
