package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewTypeCommand creates the type command.
func NewTypeCommand() *cobra.Command {
	var filePath string

	cmd := &cobra.Command{
		Use:   "type [key] [path]",
		Short: "Print the kind of the value at a path",
		Long: `Print the kind of a stored document or of the value a path points at:
object, array, tabular_array, string, number, boolean or null.`,
		Example: `  redistoon type user
  redistoon type user $.tags
  redistoon type --file user.toon $.age`,
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
				if path == "" || path == "$" {
					fmt.Fprintln(cmd.OutOrStdout(), doc.doc.Root().Kind().String())
					return nil
				}
				v, err := doc.doc.Get(path)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), v.Kind().String())
				return nil
			}

			client := newAPIClient(getConfig().ServerURL)
			kind, err := client.docType(cmd.Context(), key, path)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), kind)
			return nil
		},
	}

	cmd.Flags().StringVar(&filePath, "file", "", "Operate on a local TOON file instead of the server")
	return cmd
}
