package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/pastedock/internal/errors"
	"github.com/hpungsan/pastedock/internal/logging"
	"github.com/hpungsan/pastedock/internal/macos"
	"github.com/hpungsan/pastedock/internal/ops"
	"github.com/hpungsan/pastedock/internal/paste"
	"github.com/hpungsan/pastedock/internal/web"
)

// maxStdinBytes bounds text piped to `capture`.
const maxStdinBytes = 16 << 20

// newCLIApp creates the CLI application with all commands. a is nil when
// only help or version output is needed.
func newCLIApp(a *app) *cli.App {
	cliApp := &cli.App{
		Name:    "pastedock",
		Usage:   "Clipboard history for macOS",
		Version: Version,
		Commands: []*cli.Command{
			captureCmd(a),
			listCmd(a),
			searchCmd(a),
			showCmd(a),
			pickCmd(a),
			pinCmd(a, true),
			pinCmd(a, false),
			deleteCmd(a),
			clearCmd(a),
			restoreCmd(a),
			pasteCmd(a),
			trimCmd(a),
			statusCmd(a),
			checkCmd(a),
			watchCmd(a),
			uiCmd(a),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	cliApp.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return cliApp
}

// captureCmd creates the capture command.
func captureCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "capture",
		Usage: "Add content to history as if it had been copied (text is read from stdin)",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "file", Aliases: []string{"f"}, Usage: "Capture file paths instead of text (repeatable)"},
			&cli.StringFlag{Name: "image", Aliases: []string{"i"}, Usage: "Capture the image at this path instead of text"},
			&cli.StringFlag{Name: "source", Aliases: []string{"s"}, Usage: "Bundle id of the originating app"},
		},
		Action: func(c *cli.Context) error {
			input := ops.CaptureInput{SourceBundleID: c.String("source")}

			switch {
			case len(c.StringSlice("file")) > 0:
				input.Kind = "file"
				input.Files = c.StringSlice("file")

			case c.String("image") != "":
				data, err := os.ReadFile(c.String("image"))
				if err != nil {
					return outputError(errors.NewInvalidRequest(fmt.Sprintf("cannot read image: %v", err)))
				}
				input.Kind = "image"
				input.Image = data

			default:
				if !stdinHasData() {
					return outputError(errors.NewInvalidRequest("text must be piped via stdin (or use --file / --image)"))
				}
				text, err := readStdin(maxStdinBytes)
				if err != nil {
					return outputError(errors.NewInvalidRequest(err.Error()))
				}
				input.Kind = "text"
				input.Text = &text
			}

			output, err := ops.Capture(c.Context, a.deps, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// listCmd creates the list command.
func listCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List recent items, newest first",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Usage: "Maximum items to return (default: quick_picker_result_limit)"},
			&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Usage: "Only items whose preview contains this text"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.List(c.Context, a.deps, ops.ListInput{
				Query: c.String("query"),
				Limit: c.Int("limit"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// searchCmd creates the search command.
func searchCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Find items whose preview contains the query (case-insensitive)",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Usage: "Maximum items to return"},
		},
		Action: func(c *cli.Context) error {
			query := strings.Join(c.Args().Slice(), " ")
			if strings.TrimSpace(query) == "" {
				return outputError(errors.NewInvalidRequest("query is required"))
			}
			output, err := ops.List(c.Context, a.deps, ops.ListInput{Query: query, Limit: c.Int("limit")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// showCmd creates the show command.
func showCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show one item and its content",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "no-content", Usage: "Omit text and file paths"},
		},
		Action: func(c *cli.Context) error {
			input := ops.FetchInput{ID: c.Args().First()}
			if c.Bool("no-content") {
				include := false
				input.IncludeContent = &include
			}
			output, err := ops.Fetch(c.Context, a.deps, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// pickCmd creates the pick command: the terminal quick picker.
func pickCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:      "pick",
		Usage:     "Show numbered entries; with --select, paste the chosen one",
		ArgsUsage: "[query]",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Usage: "Maximum entries (default: quick_picker_result_limit)"},
			&cli.IntFlag{Name: "select", Aliases: []string{"n"}, Usage: "1-based entry to paste"},
			&cli.BoolFlag{Name: "restore-only", Usage: "With --select, restore without pasting"},
			&cli.BoolFlag{Name: "json", Usage: "Print entries as JSON"},
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Restore even if referenced files are missing"},
		},
		Action: func(c *cli.Context) error {
			picked, err := ops.Pick(c.Context, a.deps, ops.PickInput{
				Query: strings.Join(c.Args().Slice(), " "),
				Limit: c.Int("limit"),
			})
			if err != nil {
				return outputError(err)
			}

			if !c.IsSet("select") {
				if c.Bool("json") {
					return outputJSON(c, picked)
				}
				printEntries(c.App.Writer, picked.Entries)
				return nil
			}

			entry, err := picked.Select(c.Int("select"))
			if err != nil {
				return outputError(err)
			}
			if err := confirmMissingFile(c, a, entry.ID); err != nil {
				return outputError(err)
			}
			var output *ops.RestoreOutput
			if c.Bool("restore-only") {
				output, err = ops.Restore(c.Context, a.deps, ops.RestoreInput{ID: entry.ID})
			} else {
				output, err = ops.Paste(c.Context, a.deps, ops.RestoreInput{ID: entry.ID})
			}
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// pinCmd creates the pin or unpin command.
func pinCmd(a *app, pinned bool) *cli.Command {
	name, usage := "pin", "Pin an item so retention never evicts it"
	if !pinned {
		name, usage = "unpin", "Unpin an item"
	}
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.Pin(c.Context, a.deps, ops.PinInput{ID: c.Args().First(), Pinned: pinned})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete an item and its stored payload",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.Delete(c.Context, a.deps, ops.DeleteInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// clearCmd creates the clear command.
func clearCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "Delete every item, pinned ones included",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Confirm clearing all history"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Clear(c.Context, a.deps, ops.ClearInput{Confirm: c.Bool("yes")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// restoreCmd creates the restore command.
func restoreCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:      "restore",
		Usage:     "Put an item back on the pasteboard without pasting",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Restore even if referenced files are missing"},
		},
		Action: func(c *cli.Context) error {
			if err := confirmMissingFile(c, a, c.Args().First()); err != nil {
				return outputError(err)
			}
			output, err := ops.Restore(c.Context, a.deps, ops.RestoreInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return outputResult(c, output)
		},
	}
}

// pasteCmd creates the paste command.
func pasteCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:      "paste",
		Usage:     "Restore an item and paste it into the target app",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "target", Aliases: []string{"t"}, Usage: "Bundle id to activate before pasting (default: frontmost app)"},
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Restore even if referenced files are missing"},
		},
		Action: func(c *cli.Context) error {
			if err := confirmMissingFile(c, a, c.Args().First()); err != nil {
				return outputError(err)
			}
			input := ops.RestoreInput{ID: c.Args().First()}
			if bid := strings.TrimSpace(c.String("target")); bid != "" {
				input.Target = &paste.TargetApp{BundleID: bid}
			}
			output, err := ops.Paste(c.Context, a.deps, input)
			if err != nil {
				return outputError(err)
			}
			return outputResult(c, output)
		},
	}
}

// trimCmd creates the trim command.
func trimCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "trim",
		Usage: "Enforce max_items and max_bytes now",
		Action: func(c *cli.Context) error {
			output, err := ops.Trim(c.Context, a.deps)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// statusCmd creates the status command.
func statusCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show history size, settings and the paste permission reminder",
		Action: func(c *cli.Context) error {
			output, err := ops.Status(c.Context, a.deps)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// checkCmd creates the check command.
func checkCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Check pasteboard tools and the Accessibility permission",
		Action: func(c *cli.Context) error {
			return outputJSON(c, map[string]any{"checks": macos.SetupChecks(c.Context, a.paster)})
		},
	}
}

// watchCmd creates the watch command.
func watchCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Capture pasteboard changes until interrupted (reloads config.json on change)",
		Action: func(c *cli.Context) error {
			ctx, stop := signalContext(c.Context)
			defer stop()
			if err := a.watch(ctx); err != nil {
				return outputError(err)
			}
			return nil
		},
	}
}

// uiCmd creates the ui command.
func uiCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "ui",
		Usage: "Serve the history browser",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 8470, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			ctx, stop := signalContext(c.Context)
			defer stop()
			srv := web.NewServer(a.deps, Version, c.String("bind"), c.Int("port"))
			if err := web.Run(ctx, srv); err != nil {
				return outputError(err)
			}
			return nil
		},
	}
}

// Helper functions

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// outputJSON marshals result to the app writer as JSON.
func outputJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputResult prints a restore or paste result and exits non-zero when
// nothing reached the pasteboard.
func outputResult(c *cli.Context, out *ops.RestoreOutput) error {
	if err := outputJSON(c, out); err != nil {
		return err
	}
	if out.Result.Status == paste.StatusFailed {
		return cli.Exit(out.Summary, 1)
	}
	return nil
}

// missingFilePrompt is asked before restoring a file item whose files are gone.
const missingFilePrompt = "Missing file detected. This clipboard item references a missing file. Continue anyway?"

// confirmMissingFile blocks restoring a file item with missing files unless
// --yes is set or the user confirms at the terminal. Lookup errors are left
// for the restore itself to report.
func confirmMissingFile(c *cli.Context, a *app, id string) error {
	need, err := ops.NeedsMissingFileConfirm(c.Context, a.deps, ops.MissingFileCheckInput{ID: id})
	if err != nil || !need || c.Bool("yes") {
		return nil
	}
	log := logging.L("cli")
	if a.confirm != nil && a.confirm(missingFilePrompt) {
		log.Info().Str("id", id).Msg("missing file confirmed")
		return nil
	}
	log.Info().Str("id", id).Msg("missing file restore cancelled")
	return errors.NewInvalidRequest("item references a missing file; pass --yes to restore anyway")
}

// outputError formats error for CLI.
func outputError(err error) error {
	if cErr, ok := errors.As(err); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", cErr.Code, cErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// printEntries writes one quick-picker line per entry.
func printEntries(w io.Writer, entries []ops.PickEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No clipboard history.")
		return
	}
	for _, e := range entries {
		pin := " "
		if e.Pinned {
			pin = "*"
		}
		missing := ""
		if e.Status == ops.EntryMissing {
			missing = " [missing]"
		}
		fmt.Fprintf(w, "%3d %s %-5s %s  (%s)%s\n", e.Index, pin, e.Kind, truncate(e.DisplayText, 72), e.Age, missing)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads stdin up to maxBytes. Unlike other inputs the text is not
// trimmed: clipboard content keeps its whitespace.
func readStdin(maxBytes int64) (string, error) {
	data, err := io.ReadAll(io.LimitReader(os.Stdin, maxBytes+1))
	if err != nil {
		return "", err
	}
	if int64(len(data)) > maxBytes {
		return "", fmt.Errorf("stdin exceeds %d bytes", maxBytes)
	}
	return string(data), nil
}
