package commands

import (
	"github.com/spf13/cobra"

	"github.com/DreamStack-us/redisTOON/pkg/toon"
)

// NewEncodeCommand creates the encode command.
func NewEncodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "encode [file]",
		Short: "Convert JSON to TOON text",
		Long: `Encode a JSON document from a file or stdin as TOON text. Uniform
arrays of flat objects come out in tabular form.`,
		Example: `  redistoon encode config.json
  curl -s https://api.example.com/users | redistoon encode`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			v, err := toon.FromJSON(string(input))
			if err != nil {
				return err
			}
			printText(cmd.OutOrStdout(), toon.Encode(v))
			return nil
		},
	}
}
