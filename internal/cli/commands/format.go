package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/DreamStack-us/redisTOON/pkg/toon"
)

// NewFmtCommand creates the fmt command.
func NewFmtCommand() *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "fmt [file]",
		Short: "Rewrite TOON text in canonical form",
		Long: `Parse TOON text and print it back in canonical form: two-space
indentation, minimal quoting, tabular arrays where rows allow it.
With -w the file is rewritten in place.`,
		Example: `  redistoon fmt config.toon
  redistoon fmt -w config.toon`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if write && (len(args) == 0 || args[0] == "-") {
				return fmt.Errorf("-w requires a file argument")
			}
			input, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			doc, err := toon.Parse(string(input))
			if err != nil {
				return err
			}
			formatted := doc.Encode()
			if write {
				if err := os.WriteFile(args[0], []byte(formatted), 0644); err != nil {
					return fmt.Errorf("failed to write file: %w", err)
				}
				return nil
			}
			printText(cmd.OutOrStdout(), formatted)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "Rewrite the file in place instead of printing")

	return cmd
}
