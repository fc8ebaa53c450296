package commands

import (
	"fmt"
	"io"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/DreamStack-us/redisTOON/pkg/toon"
)

// NewSetCommand creates the set command.
func NewSetCommand() *cobra.Command {
	var filePath string

	cmd := &cobra.Command{
		Use:   "set [key] <path> <value>",
		Short: "Set the value at a path in a document",
		Long: `Set the value at a path in a stored document. The value is TOON text:
a scalar (42, true, "hello"), a compact array ([2]: a,b) or a nested
document. Setting path $ replaces the whole document, creating it if the
key does not exist yet. Pass - as the value to read it from stdin.

With --file the mutation is applied to a local TOON file in place.`,
		Example: `  # Create or replace a whole document
  cat user.toon | redistoon set user $ -

  # Change one field
  redistoon set user $.name Alice

  # Append-free array replacement in a local file
  redistoon set --file user.toon $.tags '[2]: a,b'`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, rest, err := splitKeyArgs(filePath, args)
			if err != nil {
				return err
			}
			if len(rest) != 2 {
				return fmt.Errorf("set needs a path and a value")
			}
			path, raw := rest[0], rest[1]
			if raw == "-" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				raw = string(data)
			}

			value, err := toon.Decode(raw)
			if err != nil {
				return err
			}

			if filePath != "" {
				doc, err := openLocalDocument(filePath)
				if err != nil {
					return err
				}
				if err := doc.doc.Set(path, value); err != nil {
					return err
				}
				if err := doc.save(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "OK")
				return nil
			}

			// Replacing the root is a plain document PUT. Anything deeper
			// goes through the path operation endpoint as JSON.
			client := newAPIClient(getConfig().ServerURL)
			var reply *documentReply
			if path == "" || path == "$" {
				reply, err = client.putDocument(cmd.Context(), key, toon.Encode(value))
			} else {
				var jsonValue string
				jsonValue, err = toon.ToJSON(value)
				if err != nil {
					return err
				}
				reply, err = client.setPath(cmd.Context(), key, path, json.RawMessage(jsonValue))
			}
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
