package cmd

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(convertCmd)
}

var convertCmd = &cobra.Command{
	Use:   "convert <input.mid> <output.txt>",
	Short: "Converts a midi file",
	Long:  `Converts a midi file. Same as running midi2text with two arguments.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return convertFile(args[0], args[1])
	},
}
