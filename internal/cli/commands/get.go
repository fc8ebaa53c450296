package commands

import (
	"github.com/spf13/cobra"
)

// NewGetCommand creates the get command.
func NewGetCommand() *cobra.Command {
	var filePath string

	cmd := &cobra.Command{
		Use:   "get [key] [path]",
		Short: "Print a document, or the fragment a path points at",
		Long: `Print a stored document as TOON text, or just the fragment a path
points at. Paths start at the document root: $.name, $.users[0].id.

Reads from the running server by default. With --file the document is read
from a local TOON file instead and no key argument is given.`,
		Example: `  # Whole document from the server
  redistoon get user

  # A single field
  redistoon get user $.name

  # From a local file, no server needed
  redistoon get --file user.toon $.tags`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, rest, err := splitKeyArgs(filePath, args)
			if err != nil {
				return err
			}
			path := ""
			if len(rest) > 0 {
				path = rest[0]
			}

			if filePath != "" {
				doc, err := openLocalDocument(filePath)
				if err != nil {
					return err
				}
				text, err := doc.fragment(path)
				if err != nil {
					return err
				}
				printText(cmd.OutOrStdout(), text)
				return nil
			}

			client := newAPIClient(getConfig().ServerURL)
			text, err := client.getDocument(cmd.Context(), key, path)
			if err != nil {
				return err
			}
			printText(cmd.OutOrStdout(), text)
			return nil
		},
	}

	cmd.Flags().StringVar(&filePath, "file", "", "Operate on a local TOON file instead of the server")
	return cmd
}
