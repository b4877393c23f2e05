package convert

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jsphweid/midi2text/classify"
	"github.com/jsphweid/midi2text/match"
	"github.com/jsphweid/midi2text/midi"
	"github.com/jsphweid/midi2text/notation"
	"go.uber.org/zap"
)

// ErrWrite marks failures to produce the output text.
var ErrWrite = errors.New("could not write output")

type Stats struct {
	Tempo       int64
	Starts      int
	Stops       int
	Ignored     int
	Duplicates  int
	Tones       int
	Unmatched   int
	UnusedStops int

	Load     time.Duration
	Classify time.Duration
	Match    time.Duration
	Write    time.Duration
}

type Converter struct {
	Policy  match.Policy
	Workers int
	Logger  *zap.Logger
}

func New(policy match.Policy, workers int, logger *zap.Logger) *Converter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Converter{Policy: policy, Workers: workers, Logger: logger}
}

// Result is a finished conversion that has not been written yet.
type Result struct {
	Document notation.Document
	Outcome  match.Outcome
	Stats    Stats
}

// Run classifies and matches an already decoded source.
func (c *Converter) Run(src midi.Source) (Result, error) {
	var res Result
	res.Stats.Tempo = src.Tempo

	start := time.Now()
	classified := classify.Classify(src.Messages)
	res.Stats.Classify = time.Since(start)
	res.Stats.Starts = classified.Starts.Len()
	res.Stats.Stops = classified.Stops.Len()
	res.Stats.Ignored = classified.Ignored
	res.Stats.Duplicates = classified.Duplicates
	c.Logger.Info("classified events",
		zap.Int("starts", res.Stats.Starts),
		zap.Int("stops", res.Stats.Stops),
		zap.Int("ignored", res.Stats.Ignored),
		zap.Duration("took", res.Stats.Classify))

	start = time.Now()
	outcome, err := match.Match(classified, c.Policy, match.Options{Workers: c.Workers})
	res.Stats.Match = time.Since(start)
	res.Outcome = outcome
	res.Stats.Tones = len(outcome.Tones)
	res.Stats.Unmatched = len(outcome.Unmatched)
	res.Stats.UnusedStops = outcome.UnusedStops
	if err != nil {
		return res, err
	}
	for _, e := range outcome.Unmatched {
		c.Logger.Debug("unmatched start", zap.Stringer("event", e))
	}
	if len(outcome.Unmatched) > 0 {
		c.Logger.Warn("start events without a stop",
			zap.Int("count", len(outcome.Unmatched)),
			zap.String("policy", string(c.Policy)))
	}
	if outcome.UnusedStops > 0 {
		c.Logger.Debug("stop events never used", zap.Int("count", outcome.UnusedStops))
	}
	c.Logger.Info("generated tones",
		zap.Int("tones", res.Stats.Tones),
		zap.Duration("took", res.Stats.Match))

	res.Document = notation.Document{Tempo: src.Tempo, Tones: outcome.Tones}
	return res, nil
}

// Convert decodes r and writes the notation to w.
func (c *Converter) Convert(r io.Reader, w io.Writer) (Stats, error) {
	start := time.Now()
	src, err := midi.Decode(r)
	if err != nil {
		return Stats{}, err
	}
	load := time.Since(start)

	res, err := c.Run(src)
	res.Stats.Load = load
	if err != nil {
		return res.Stats, err
	}

	start = time.Now()
	if err := notation.WriteDocument(w, res.Document); err != nil {
		return res.Stats, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	res.Stats.Write = time.Since(start)
	return res.Stats, nil
}

// ConvertFile converts input into output. The text goes to a temporary file
// next to output that is renamed into place only once it is complete.
func (c *Converter) ConvertFile(input, output string) (Stats, error) {
	start := time.Now()
	src, err := midi.DecodeFile(input)
	if err != nil {
		return Stats{}, err
	}
	load := time.Since(start)
	c.Logger.Info("loaded midi file", zap.String("path", input), zap.Duration("took", load))

	res, err := c.Run(src)
	res.Stats.Load = load
	if err != nil {
		return res.Stats, err
	}

	start = time.Now()
	if err := writeAtomic(output, res.Document); err != nil {
		return res.Stats, err
	}
	res.Stats.Write = time.Since(start)
	c.Logger.Info("wrote text file",
		zap.String("path", output),
		zap.Duration("took", res.Stats.Write))
	return res.Stats, nil
}

func writeAtomic(output string, doc notation.Document) (err error) {
	tmp := filepath.Join(filepath.Dir(output),
		fmt.Sprintf(".%s.%s.tmp", filepath.Base(output), uuid.New().String()))
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(tmp)
		}
	}()

	if err = notation.WriteDocument(f, doc); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err = os.Rename(tmp, output); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}
