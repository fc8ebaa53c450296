package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewDelCommand creates the del command.
func NewDelCommand() *cobra.Command {
	var filePath string

	cmd := &cobra.Command{
		Use:   "del [key] [path]",
		Short: "Delete a document or the value at a path",
		Long: `Delete a stored document, or only the value a path points at. Deleting
an array element shifts the elements after it left.

With --file the path is deleted from a local TOON file in place; a path is
required since removing the file itself is not a document operation.`,
		Example: `  # Remove one field
  redistoon del user $.email

  # Remove the whole document
  redistoon del user`,
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
				if path == "" || path == "$" {
					return fmt.Errorf("a path is required with --file")
				}
				doc, err := openLocalDocument(filePath)
				if err != nil {
					return err
				}
				if err := doc.doc.Delete(path); err != nil {
					return err
				}
				if err := doc.save(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "OK")
				return nil
			}

			client := newAPIClient(getConfig().ServerURL)
			reply, err := client.deleteDocument(cmd.Context(), key, path)
			if err != nil {
				return err
			}
			if reply == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "OK")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "OK %s\n", reply.Revision)
			return nil
		},
	}

	cmd.Flags().StringVar(&filePath, "file", "", "Operate on a local TOON file instead of the server")
	return cmd
}
