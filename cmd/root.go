package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/jsphweid/midi2text/config"
	"github.com/jsphweid/midi2text/convert"
	"github.com/jsphweid/midi2text/logger"
	"github.com/jsphweid/midi2text/match"
	"github.com/jsphweid/midi2text/midi"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	ExitOK        = 0
	ExitUsage     = 1
	ExitDecode    = 2
	ExitIO        = 3
	ExitUnmatched = 4
	ExitConfig    = 5
)

var errConfig = errors.New("bad configuration")

var (
	configPath string
	unmatched  string
	workers    int
	quiet      bool

	cfg *config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "midi2text <input.mid> <output.txt>",
	Short: "Converts midi files to note text",
	Long: `Converts a Standard MIDI File into a line based text format:
a "tempo" line followed by one "note <start> <end> <channel> <key> <velocity>"
line per note, sorted by start, end, key and channel.`,
	Args:              cobra.ExactArgs(2),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE: func(cmd *cobra.Command, args []string) error {
		return convertFile(args[0], args[1])
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "YAML config file")
	flags.StringVar(&unmatched, "unmatched", "", "what to do with notes that never stop: drop, extend or error")
	flags.IntVar(&workers, "workers", 0, "match voices on this many goroutines")
	flags.BoolVarP(&quiet, "quiet", "q", false, "only log errors")
}

func setup(cmd *cobra.Command, args []string) error {
	c, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("%w: %w", errConfig, err)
	}
	if cmd.Flags().Changed("unmatched") {
		c.Unmatched = unmatched
	}
	if cmd.Flags().Changed("workers") {
		c.Workers = workers
	}
	if quiet {
		c.LogLevel = "error"
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("%w: %w", errConfig, err)
	}
	l, err := logger.New(c.LogLevel)
	if err != nil {
		return fmt.Errorf("%w: %w", errConfig, err)
	}
	cfg, log = c, l
	return nil
}

func newConverter() *convert.Converter {
	return convert.New(cfg.Policy(), cfg.Workers, log)
}

func convertFile(input, output string) error {
	defer log.Sync()
	stats, err := newConverter().ConvertFile(input, output)
	if err != nil {
		return err
	}
	log.Info("done",
		zap.Int("tones", stats.Tones),
		zap.Int("unmatched", stats.Unmatched),
		zap.Duration("total", stats.Load+stats.Classify+stats.Match+stats.Write))
	return nil
}

// ExitCode maps an error returned by a command to the process exit status.
func ExitCode(err error) int {
	var unmatchedErr *match.UnmatchedError
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, errConfig):
		return ExitConfig
	case errors.Is(err, midi.ErrDecode):
		return ExitDecode
	case errors.As(err, &unmatchedErr):
		return ExitUnmatched
	case errors.Is(err, convert.ErrWrite), errors.Is(err, os.ErrNotExist), errors.Is(err, os.ErrPermission):
		return ExitIO
	}
	return ExitUsage
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(ExitCode(err))
}
