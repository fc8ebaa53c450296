package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	var filePath string

	cmd := &cobra.Command{
		Use:   "validate [key]",
		Short: "Check a document for structural defects",
		Long: `Check a stored document for structural defects: tabular rows whose width
does not match their headers, empty object keys, and missing values. Prints
"valid" and exits zero on success; a defect is reported as an error naming
the offending location.`,
		Example: `  redistoon validate user
  redistoon validate --file user.toon`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, _, err := splitKeyArgs(filePath, args)
			if err != nil {
				return err
			}

			if filePath != "" {
				doc, err := openLocalDocument(filePath)
				if err != nil {
					return err
				}
				if err := doc.doc.Validate(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "valid")
				return nil
			}

			client := newAPIClient(getConfig().ServerURL)
			if err := client.validate(cmd.Context(), key); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "valid")
			return nil
		},
	}

	cmd.Flags().StringVar(&filePath, "file", "", "Operate on a local TOON file instead of the server")
	return cmd
}
