package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jsphweid/midi2text/midi"
	"github.com/jsphweid/midi2text/notation"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Inspects a midi or text file",
	Long: `Inspects a midi file (event counts and notes that would be dropped)
or a .txt file produced by convert (validates it and prints a summary).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.EqualFold(filepath.Ext(args[0]), ".txt") {
			return inspectText(cmd.OutOrStdout(), args[0])
		}
		return inspectMidi(cmd.OutOrStdout(), args[0])
	},
}

func inspectMidi(w io.Writer, path string) error {
	src, err := midi.DecodeFile(path)
	if err != nil {
		return err
	}
	res, err := newConverter().Run(src)
	stats := res.Stats
	fmt.Fprintf(w, "tempo: %v\n", src.Tempo)
	fmt.Fprintf(w, "ticks per quarter: %v\n", src.TicksPerQuarter)
	fmt.Fprintf(w, "start events: %v\n", stats.Starts)
	fmt.Fprintf(w, "stop events: %v\n", stats.Stops)
	fmt.Fprintf(w, "ignored messages: %v\n", stats.Ignored)
	fmt.Fprintf(w, "duplicate events: %v\n", stats.Duplicates)
	fmt.Fprintf(w, "tones: %v\n", stats.Tones)
	fmt.Fprintf(w, "unmatched starts: %v\n", stats.Unmatched)
	fmt.Fprintf(w, "unused stops: %v\n", stats.UnusedStops)
	for _, e := range res.Outcome.Unmatched {
		fmt.Fprintf(w, "  unmatched: %v\n", e)
	}
	return err
}

func inspectText(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	doc, err := notation.Parse(f)
	if err != nil {
		return fmt.Errorf("%v: %w", path, err)
	}
	fmt.Fprintf(w, "tempo: %v\n", doc.Tempo)
	fmt.Fprintf(w, "notes: %v\n", len(doc.Tones))
	if len(doc.Tones) > 0 {
		var last int64
		for _, t := range doc.Tones {
			if t.End > last {
				last = t.End
			}
		}
		fmt.Fprintf(w, "span: %v-%v\n", doc.Tones[0].Start, last)
	}
	return nil
}
