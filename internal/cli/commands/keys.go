package commands

import (
	"github.com/spf13/cobra"
)

// NewKeysCommand creates the keys command.
func NewKeysCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "List the documents in the running server",
		Long: `List the documents stored in the running server with their revision,
last update time and token estimate.`,
		Example: `  redistoon keys
  redistoon keys --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := getConfig()
			client := newAPIClient(cfg.ServerURL)
			docs, err := client.listDocuments(cmd.Context())
			if err != nil {
				return err
			}

			cols := []string{"key", "revision", "updated_at", "tokens"}
			results := make([]map[string]any, 0, len(docs))
			for _, d := range docs {
				results = append(results, map[string]any{
					"key":        d.Key,
					"revision":   d.Revision,
					"updated_at": d.UpdatedAt.Format("2006-01-02 15:04:05"),
					"tokens":     d.Tokens,
				})
			}
			return renderRows(cmd.OutOrStdout(), cols, results, cfg.OutputFormat)
		},
	}
	return cmd
}
