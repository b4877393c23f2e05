package cmd

import (
	"os"

	"github.com/jsphweid/midi2text/sample"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(sampleCmd)
}

var sampleCmd = &cobra.Command{
	Use:   "sample <output.mid>",
	Short: "Writes a small demo midi file",
	Long:  `Writes a small two channel demo midi file, handy for trying out convert.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := sample.Bytes(sample.Demo())
		if err != nil {
			return err
		}
		return os.WriteFile(args[0], data, 0644)
	},
}
