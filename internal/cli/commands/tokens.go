package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/DreamStack-us/redisTOON/pkg/toon"
)

// NewTokensCommand creates the tokens command.
func NewTokensCommand() *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "tokens [file]",
		Short: "Compare token counts between TOON and JSON",
		Long: `Estimate how many LLM tokens a document costs as TOON text versus
the equivalent JSON. Input is TOON from a file or stdin, or a stored
document with --key.`,
		Example: `  redistoon tokens config.toon
  cat config.toon | redistoon tokens
  redistoon tokens --key user`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var toonTokens, jsonTokens int

			if key != "" {
				if len(args) > 0 {
					return fmt.Errorf("--key and a file argument are mutually exclusive")
				}
				client := newAPIClient(getConfig().ServerURL)
				var err error
				toonTokens, jsonTokens, err = client.tokenCounts(cmd.Context(), key)
				if err != nil {
					return err
				}
			} else {
				input, err := readInput(cmd, args)
				if err != nil {
					return err
				}
				doc, err := toon.Parse(string(input))
				if err != nil {
					return err
				}
				toonTokens, jsonTokens, err = toon.TokenSavings(doc.Root())
				if err != nil {
					return err
				}
			}

			return renderTokenCounts(cmd.OutOrStdout(), toonTokens, jsonTokens, getConfig().OutputFormat)
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "Report on a stored document instead of a file")

	return cmd
}

func renderTokenCounts(out io.Writer, toonTokens, jsonTokens int, format string) error {
	results := []map[string]any{
		{"format": "toon", "tokens": toonTokens},
		{"format": "json", "tokens": jsonTokens},
	}
	if err := renderRows(out, []string{"format", "tokens"}, results, format); err != nil {
		return err
	}
	if jsonTokens > 0 {
		saved := 100 * float64(jsonTokens-toonTokens) / float64(jsonTokens)
		_, _ = fmt.Fprintf(out, "savings: %.1f%%\n", saved)
	}
	return nil
}
