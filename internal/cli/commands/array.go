package commands

import (
	"fmt"
	"strconv"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/DreamStack-us/redisTOON/pkg/toon"
)

// ArrOptions holds options shared by the arr subcommands.
type ArrOptions struct {
	File string
}

// NewArrCommand creates the arr command and its subcommands.
func NewArrCommand() *cobra.Command {
	opts := &ArrOptions{}

	cmd := &cobra.Command{
		Use:   "arr",
		Short: "Array operations on documents",
		Long: `Operate on an array inside a stored document. Values are TOON text;
negative indexes count from the end of the array.`,
	}

	cmd.PersistentFlags().StringVar(&opts.File, "file", "", "Operate on a local TOON file instead of the server")

	cmd.AddCommand(newArrAppendCommand(opts))
	cmd.AddCommand(newArrInsertCommand(opts))
	cmd.AddCommand(newArrPopCommand(opts))
	cmd.AddCommand(newArrLenCommand(opts))

	return cmd
}

// decodeValueArgs parses TOON value arguments.
func decodeValueArgs(args []string) ([]*toon.Value, error) {
	values := make([]*toon.Value, 0, len(args))
	for _, raw := range args {
		v, err := toon.Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("value %q: %w", raw, err)
		}
		values = append(values, v)
	}
	return values, nil
}

// valuesToJSON converts decoded TOON values into JSON payload elements.
func valuesToJSON(values []*toon.Value) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(values))
	for _, v := range values {
		text, err := toon.ToJSON(v)
		if err != nil {
			return nil, err
		}
		out = append(out, json.RawMessage(text))
	}
	return out, nil
}

func newArrAppendCommand(opts *ArrOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "append [key] <path> <value>...",
		Short: "Append values to an array",
		Long:  `Append one or more values to the array at path and print its new length.`,
		Example: `  redistoon arr append user $.tags admin
  redistoon arr append metrics $.samples 1 2 3`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, rest, err := splitKeyArgs(opts.File, args)
			if err != nil {
				return err
			}
			if len(rest) < 2 {
				return fmt.Errorf("append needs a path and at least one value")
			}
			path := rest[0]
			values, err := decodeValueArgs(rest[1:])
			if err != nil {
				return err
			}

			if opts.File != "" {
				doc, err := openLocalDocument(opts.File)
				if err != nil {
					return err
				}
				length, err := doc.doc.Append(path, values...)
				if err != nil {
					return err
				}
				if err := doc.save(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), length)
				return nil
			}

			payload, err := valuesToJSON(values)
			if err != nil {
				return err
			}
			client := newAPIClient(getConfig().ServerURL)
			reply, err := client.arrayAppend(cmd.Context(), key, path, payload)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), reply.Length)
			return nil
		},
	}
}

func newArrInsertCommand(opts *ArrOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "insert [key] <path> <index> <value>",
		Short: "Insert a value at an index in an array",
		Long: `Insert a value at index in the array at path. Index may equal the
array length to insert at the end; negative indexes count from the end.`,
		Example: `  redistoon arr insert user $.tags 0 first
  redistoon arr insert --file user.toon $.tags -1 last`,
		Args: cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, rest, err := splitKeyArgs(opts.File, args)
			if err != nil {
				return err
			}
			if len(rest) != 3 {
				return fmt.Errorf("insert needs a path, an index and a value")
			}
			path := rest[0]
			index, err := strconv.Atoi(rest[1])
			if err != nil {
				return fmt.Errorf("invalid index %q", rest[1])
			}
			value, err := toon.Decode(rest[2])
			if err != nil {
				return fmt.Errorf("value %q: %w", rest[2], err)
			}

			if opts.File != "" {
				doc, err := openLocalDocument(opts.File)
				if err != nil {
					return err
				}
				if err := doc.doc.Insert(path, index, value); err != nil {
					return err
				}
				if err := doc.save(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "OK")
				return nil
			}

			text, err := toon.ToJSON(value)
			if err != nil {
				return err
			}
			client := newAPIClient(getConfig().ServerURL)
			reply, err := client.arrayInsert(cmd.Context(), key, path, index, json.RawMessage(text))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "OK %s\n", reply.Revision)
			return nil
		},
	}
}

func newArrPopCommand(opts *ArrOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pop [key] <path> [index]",
		Short: "Remove and print an array element",
		Long: `Remove the element at index from the array at path and print it as
TOON text. Without an index the last element is removed.`,
		Example: `  redistoon arr pop user $.tags
  redistoon arr pop user $.tags 0`,
		Args: cobra.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, rest, err := splitKeyArgs(opts.File, args)
			if err != nil {
				return err
			}
			if len(rest) < 1 {
				return fmt.Errorf("pop needs a path")
			}
			path := rest[0]
			index := -1
			hasIndex := false
			if len(rest) > 1 {
				index, err = strconv.Atoi(rest[1])
				if err != nil {
					return fmt.Errorf("invalid index %q", rest[1])
				}
				hasIndex = true
			}

			if opts.File != "" {
				doc, err := openLocalDocument(opts.File)
				if err != nil {
					return err
				}
				popped, err := doc.doc.Pop(path, index)
				if err != nil {
					return err
				}
				if err := doc.save(); err != nil {
					return err
				}
				printText(cmd.OutOrStdout(), toon.Encode(popped))
				return nil
			}

			var indexArg *int
			if hasIndex {
				indexArg = &index
			}
			client := newAPIClient(getConfig().ServerURL)
			reply, err := client.arrayPop(cmd.Context(), key, path, indexArg)
			if err != nil {
				return err
			}
			popped, err := toon.FromJSON(string(reply.Value))
			if err != nil {
				return fmt.Errorf("unexpected server response: %w", err)
			}
			printText(cmd.OutOrStdout(), toon.Encode(popped))
			return nil
		},
	}
}

func newArrLenCommand(opts *ArrOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "len [key] <path>",
		Short: "Print the length of an array",
		Example: `  redistoon arr len user $.tags
  redistoon arr len --file user.toon $.tags`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, rest, err := splitKeyArgs(opts.File, args)
			if err != nil {
				return err
			}
			if len(rest) != 1 {
				return fmt.Errorf("len needs a path")
			}
			path := rest[0]

			if opts.File != "" {
				doc, err := openLocalDocument(opts.File)
				if err != nil {
					return err
				}
				length, err := doc.doc.Length(path)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), length)
				return nil
			}

			client := newAPIClient(getConfig().ServerURL)
			length, err := client.arrayLength(cmd.Context(), key, path)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), length)
			return nil
		},
	}
}
