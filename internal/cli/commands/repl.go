package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/DreamStack-us/redisTOON/internal/cli/config"
	"github.com/DreamStack-us/redisTOON/internal/state"
	"github.com/DreamStack-us/redisTOON/internal/store"
	"github.com/DreamStack-us/redisTOON/pkg/toon"
)

// NewReplCommand creates the repl command.
func NewReplCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactive document shell",
		Long: `Start an interactive shell against an in-memory document store.
Verbs mirror the store surface (set, get, del, type, append, insert,
pop, len, merge, validate, tokens, tojson, fromjson); open and save
exchange the store with a snapshot file. Multi-line documents end
with "." on its own line.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(cmd)
		},
	}
}

// replSession executes shell lines against an in-memory store. It is
// separate from the readline loop so line handling stays testable.
type replSession struct {
	store     *store.Store
	statePath string
	format    string
	out       io.Writer
	errOut    io.Writer
}

// pendingBody tracks a multi-line document entry in progress.
type pendingBody struct {
	verb string
	key  string
}

func runREPL(cmd *cobra.Command) error {
	ctx := cmd.Context()
	cfg := getConfig()

	statePath := cfg.StatePath
	if statePath == "" {
		statePath = config.DefaultStateFile
	}

	historyFile := cfg.HistoryFile
	if historyFile == "" {
		historyFile = filepath.Join(filepath.Dir(statePath), "repl_history")
	}

	st := store.New()
	defer func() { _ = st.Close() }()

	session := &replSession{
		store:     st,
		statePath: statePath,
		format:    cfg.OutputFormat,
		out:       cmd.OutOrStdout(),
		errOut:    cmd.ErrOrStderr(),
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "redistoon> ",
		HistoryFile:     historyFile,
		AutoComplete:    newREPLCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "redisTOON REPL")
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	var pending *pendingBody
	var body strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			pending = nil
			body.Reset()
			rl.SetPrompt("redistoon> ")
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		if pending != nil {
			// Body lines keep their leading whitespace. Indentation is
			// structure in TOON, so only the terminator may be trimmed.
			if strings.TrimSpace(line) == "." {
				session.complete(pending, body.String())
				pending = nil
				body.Reset()
				rl.SetPrompt("redistoon> ")
				continue
			}
			body.WriteString(line)
			body.WriteString("\n")
			continue
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		p, quit := session.dispatch(ctx, trimmed)
		if quit {
			break
		}
		if p != nil {
			pending = p
			rl.SetPrompt("      ...> ")
		}
	}

	return nil
}

// splitArgs splits off the first n whitespace-separated words of line and
// returns them together with whatever text follows. The remainder keeps its
// internal spacing so TOON values with spaces survive.
func splitArgs(line string, n int) ([]string, string) {
	words := make([]string, 0, n)
	rest := strings.TrimSpace(line)
	for len(words) < n && rest != "" {
		i := strings.IndexFunc(rest, unicode.IsSpace)
		if i < 0 {
			words = append(words, rest)
			rest = ""
			break
		}
		words = append(words, rest[:i])
		rest = strings.TrimSpace(rest[i:])
	}
	return words, rest
}

// dispatch handles one shell line. It returns a pending body when the verb
// expects multi-line input, and quit=true when the session should end.
func (s *replSession) dispatch(ctx context.Context, line string) (*pendingBody, bool) {
	if strings.HasPrefix(line, ".") {
		return nil, s.dotCommand(line)
	}

	words, rest := splitArgs(line, 1)
	verb := strings.ToLower(words[0])

	switch verb {
	case "quit", "exit":
		return nil, true

	case "set", "merge", "fromjson":
		args, value := splitArgs(rest, 1)
		if len(args) < 1 {
			_, _ = fmt.Fprintf(s.errOut, "Usage: %s <key> [value]\n", verb)
			return nil, false
		}
		p := &pendingBody{verb: verb, key: args[0]}
		if value == "" {
			if verb == "fromjson" {
				_, _ = fmt.Fprintln(s.out, `Enter JSON text, end with "." on its own line`)
			} else {
				_, _ = fmt.Fprintln(s.out, `Enter TOON text, end with "." on its own line`)
			}
			return p, false
		}
		s.complete(p, value)

	case "get":
		args, _ := splitArgs(rest, 2)
		if len(args) < 1 {
			_, _ = fmt.Fprintln(s.errOut, "Usage: get <key> [path]")
			return nil, false
		}
		body, _, err := s.store.Get(args[0], optionalArg(args, 1))
		if err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
			return nil, false
		}
		printText(s.out, body)

	case "del":
		args, _ := splitArgs(rest, 2)
		if len(args) < 1 {
			_, _ = fmt.Fprintln(s.errOut, "Usage: del <key> [path]")
			return nil, false
		}
		if _, _, err := s.store.Del(args[0], optionalArg(args, 1)); err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
			return nil, false
		}
		_, _ = fmt.Fprintln(s.out, "OK")

	case "type":
		args, _ := splitArgs(rest, 2)
		if len(args) < 1 {
			_, _ = fmt.Fprintln(s.errOut, "Usage: type <key> [path]")
			return nil, false
		}
		name, err := s.store.Type(args[0], optionalArg(args, 1))
		if err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
			return nil, false
		}
		_, _ = fmt.Fprintln(s.out, name)

	case "append":
		args, value := splitArgs(rest, 2)
		if len(args) < 2 || value == "" {
			_, _ = fmt.Fprintln(s.errOut, "Usage: append <key> <path> <value>")
			return nil, false
		}
		v, err := toon.Decode(value)
		if err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
			return nil, false
		}
		length, _, _, err := s.store.ArrAppend(args[0], args[1], v)
		if err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
			return nil, false
		}
		_, _ = fmt.Fprintln(s.out, length)

	case "insert":
		args, value := splitArgs(rest, 3)
		if len(args) < 3 || value == "" {
			_, _ = fmt.Fprintln(s.errOut, "Usage: insert <key> <path> <index> <value>")
			return nil, false
		}
		index, err := strconv.Atoi(args[2])
		if err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: invalid index %q\n", args[2])
			return nil, false
		}
		v, err := toon.Decode(value)
		if err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
			return nil, false
		}
		if _, _, err := s.store.ArrInsert(args[0], args[1], index, v); err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
			return nil, false
		}
		_, _ = fmt.Fprintln(s.out, "OK")

	case "pop":
		args, _ := splitArgs(rest, 3)
		if len(args) < 2 {
			_, _ = fmt.Fprintln(s.errOut, "Usage: pop <key> <path> [index]")
			return nil, false
		}
		index := -1
		if len(args) > 2 {
			var err error
			index, err = strconv.Atoi(args[2])
			if err != nil {
				_, _ = fmt.Fprintf(s.errOut, "Error: invalid index %q\n", args[2])
				return nil, false
			}
		}
		v, _, _, err := s.store.ArrPop(args[0], args[1], index)
		if err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
			return nil, false
		}
		printText(s.out, toon.Encode(v))

	case "len":
		args, _ := splitArgs(rest, 2)
		if len(args) < 2 {
			_, _ = fmt.Fprintln(s.errOut, "Usage: len <key> <path>")
			return nil, false
		}
		n, err := s.store.ArrLen(args[0], args[1])
		if err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
			return nil, false
		}
		_, _ = fmt.Fprintln(s.out, n)

	case "validate":
		args, _ := splitArgs(rest, 1)
		if len(args) < 1 {
			_, _ = fmt.Fprintln(s.errOut, "Usage: validate <key>")
			return nil, false
		}
		if err := s.store.Validate(args[0]); err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
			return nil, false
		}
		_, _ = fmt.Fprintln(s.out, "valid")

	case "tokens":
		args, _ := splitArgs(rest, 1)
		if len(args) < 1 {
			_, _ = fmt.Fprintln(s.errOut, "Usage: tokens <key>")
			return nil, false
		}
		toonTokens, jsonTokens, err := s.store.TokenCount(args[0])
		if err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
			return nil, false
		}
		_, _ = fmt.Fprintf(s.out, "toon: %d tokens, json: %d tokens\n", toonTokens, jsonTokens)

	case "tojson":
		args, _ := splitArgs(rest, 1)
		if len(args) < 1 {
			_, _ = fmt.Fprintln(s.errOut, "Usage: tojson <key>")
			return nil, false
		}
		text, _, err := s.store.ToJSON(args[0])
		if err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
			return nil, false
		}
		printText(s.out, text)

	case "open":
		args, _ := splitArgs(rest, 1)
		path := s.statePath
		if len(args) > 0 {
			path = args[0]
		}
		if err := s.openSnapshot(ctx, path); err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
		}

	case "save":
		args, _ := splitArgs(rest, 1)
		path := s.statePath
		if len(args) > 0 {
			path = args[0]
		}
		if err := s.saveSnapshot(ctx, path); err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
		}

	default:
		_, _ = fmt.Fprintf(s.errOut, "Unknown command: %s (type .help for commands)\n", verb)
	}

	return nil, false
}

// complete finishes a multi-line set, merge or fromjson entry.
func (s *replSession) complete(p *pendingBody, body string) {
	var err error
	switch p.verb {
	case "set":
		_, _, err = s.store.Set(p.key, body)
	case "merge":
		var v *toon.Value
		v, err = toon.Decode(body)
		if err == nil {
			_, _, err = s.store.Merge(p.key, v)
		}
	case "fromjson":
		_, _, err = s.store.FromJSON(p.key, body)
	}
	if err != nil {
		_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
		return
	}
	_, _ = fmt.Fprintln(s.out, "OK")
}

func (s *replSession) dotCommand(line string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(s.out)

	case ".keys":
		if err := s.listKeys(); err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
		}

	case ".clear":
		fmt.Print("\033[H\033[2J")

	default:
		_, _ = fmt.Fprintf(s.errOut, "Unknown command: %s (type .help for commands)\n", command)
	}
	return false
}

func (s *replSession) listKeys() error {
	stats, err := s.store.Stats()
	if err != nil {
		return err
	}
	results := make([]map[string]any, 0, len(stats))
	for _, st := range stats {
		results = append(results, map[string]any{
			"key":      st.Key,
			"revision": st.Revision,
			"tokens":   st.Tokens,
		})
	}
	return renderRows(s.out, []string{"key", "revision", "tokens"}, results, s.format)
}

// openSnapshot replaces matching store entries with the snapshot's documents.
func (s *replSession) openSnapshot(ctx context.Context, path string) error {
	sqlStore := state.NewSQLiteStore()
	if err := sqlStore.Open(path); err != nil {
		return fmt.Errorf("failed to open state database: %w", err)
	}
	defer func() { _ = sqlStore.Close() }()

	if err := sqlStore.Migrate(); err != nil {
		return fmt.Errorf("failed to migrate state database: %w", err)
	}
	n, err := sqlStore.Restore(ctx, s.store)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(s.out, "loaded %d documents from %s\n", n, path)
	return nil
}

func (s *replSession) saveSnapshot(ctx context.Context, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create state directory: %w", err)
		}
	}
	sqlStore := state.NewSQLiteStore()
	if err := sqlStore.Open(path); err != nil {
		return fmt.Errorf("failed to open state database: %w", err)
	}
	defer func() { _ = sqlStore.Close() }()

	if err := sqlStore.Migrate(); err != nil {
		return fmt.Errorf("failed to migrate state database: %w", err)
	}
	n, err := sqlStore.Snapshot(ctx, s.store)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(s.out, "saved %d documents to %s\n", n, path)
	return nil
}

func optionalArg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  set <key> [toon]                 Store a document
  get <key> [path]                 Print a document or a fragment
  del <key> [path]                 Delete a document or a value inside it
  type <key> [path]                Print the kind of a value
  append <key> <path> <value>      Append to an array, prints the new length
  insert <key> <path> <i> <value>  Insert into an array at index i
  pop <key> <path> [i]             Remove and print an array element
  len <key> <path>                 Print an array length
  merge <key> [toon]               Deep-merge an object into a document
  validate <key>                   Check tabular row shapes
  tokens <key>                     Compare TOON and JSON token estimates
  tojson <key>                     Print a document as JSON
  fromjson <key>                   Store a document from JSON
  open [file]                      Load documents from a snapshot
  save [file]                      Write documents to a snapshot
  .help                            Show this help message
  .keys                            List stored documents
  .clear                           Clear the screen
  .quit / .exit                    Exit the REPL

Tips:
  - set/merge/fromjson without a value read lines until "." on its own line
  - Use arrow keys to navigate history
`
	_, _ = fmt.Fprintln(w, help)
}

// newREPLCompleter creates a readline completer for shell verbs.
func newREPLCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("set"),
		readline.PcItem("get"),
		readline.PcItem("del"),
		readline.PcItem("type"),
		readline.PcItem("append"),
		readline.PcItem("insert"),
		readline.PcItem("pop"),
		readline.PcItem("len"),
		readline.PcItem("merge"),
		readline.PcItem("validate"),
		readline.PcItem("tokens"),
		readline.PcItem("tojson"),
		readline.PcItem("fromjson"),
		readline.PcItem("open"),
		readline.PcItem("save"),
		readline.PcItem(".help"),
		readline.PcItem(".keys"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}
