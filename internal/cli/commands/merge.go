package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DreamStack-us/redisTOON/pkg/toon"
)

// NewMergeCommand creates the merge command.
func NewMergeCommand() *cobra.Command {
	var filePath string

	cmd := &cobra.Command{
		Use:   "merge [key] [source-file]",
		Short: "Deep-merge a TOON object into a document",
		Long: `Deep-merge a TOON object into a stored document. The source is read
from the given file, or from stdin when no file is given. Object fields
merge recursively; arrays and scalars replace the existing value. Both the
document root and the source must be objects.`,
		Example: `  # Merge a patch file into a stored document
  redistoon merge user patch.toon

  # Merge stdin into a local file
  echo 'plan: pro' | redistoon merge --file user.toon`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, rest, err := splitKeyArgs(filePath, args)
			if err != nil {
				return err
			}
			source, err := readInput(cmd, rest)
			if err != nil {
				return err
			}

			if filePath != "" {
				doc, err := openLocalDocument(filePath)
				if err != nil {
					return err
				}
				src, err := toon.Decode(source)
				if err != nil {
					return err
				}
				if err := doc.doc.Merge(src); err != nil {
					return err
				}
				if err := doc.save(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "OK")
				return nil
			}

			client := newAPIClient(getConfig().ServerURL)
			reply, err := client.merge(cmd.Context(), key, source)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "OK %s\n", reply.Revision)
			return nil
		},
	}

	cmd.Flags().StringVar(&filePath, "file", "", "Operate on a local TOON file instead of the server")
	return cmd
}
