package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DreamStack-us/redisTOON/pkg/toon"
)

// NewDecodeCommand creates the decode command.
func NewDecodeCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "decode [file]",
		Short: "Check TOON text and optionally convert it to JSON",
		Long: `Decode TOON text from a file or stdin. Reports the first syntax error
with its line and column. With --json the decoded value is printed as JSON.`,
		Example: `  redistoon decode config.toon
  cat config.toon | redistoon decode --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			v, err := toon.Decode(string(input))
			if err != nil {
				return err
			}
			if asJSON {
				text, err := toon.ToJSON(v)
				if err != nil {
					return err
				}
				printText(cmd.OutOrStdout(), text)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "OK %s\n", v.Kind())
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the decoded value as JSON")

	return cmd
}
