package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/hpungsan/pastedock/internal/config"
	"github.com/hpungsan/pastedock/internal/logging"
	"github.com/hpungsan/pastedock/internal/macos"
	"github.com/hpungsan/pastedock/internal/mcp"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"capture": true, "list": true, "search": true, "show": true, "pick": true,
	"pin": true, "unpin": true, "delete": true, "clear": true,
	"restore": true, "paste": true, "trim": true, "status": true,
	"check": true, "watch": true, "ui": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	// Known subcommand → CLI
	if cliCommands[arg] {
		return true
	}
	// --help or --version → CLI
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
	}
	return false // Default → MCP server
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// promptConfirm asks question on stderr and reads a y/N answer from stdin.
func promptConfirm(question string) bool {
	fmt.Fprintf(os.Stderr, "%s [y/N] ", question)
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
  pastedock - clipboard history for macOS

  Usage: pastedock <command> [options]
         pastedock watch      start capturing
         pastedock --help

  MCP server mode requires piped input.`)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before opening anything
	if isHelpOrVersion() {
		if err := newCLIApp(nil).Run(os.Args); err != nil {
			fatal("%v", err)
		}
		return
	}

	baseDir, err := config.BaseDir()
	if err != nil {
		fatal("could not determine home directory: %v", err)
	}

	cfg, err := config.Load(baseDir)
	if err != nil {
		fatal("failed to load config: %v", err)
	}

	// stdout carries CLI JSON and MCP frames; diagnostics go to stderr
	logging.Init(cfg.LogLevel, "console", os.Stderr)

	cliMode := isCLIMode()

	// Unknown argument + terminal → show error (don't start MCP server)
	if !cliMode && len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'pastedock --help' for usage.\n")
		os.Exit(1)
	}

	if !cliMode {
		if unknown := mcp.ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
			logging.L("config").Warn().Strs("tools", unknown).Msg("unknown tools in disabled_tools")
		}
	}

	a, err := newApp(baseDir, cfg, macos.ExecRunner{})
	if err != nil {
		fatal("%v", err)
	}
	defer a.Close()
	if isTerminal() {
		a.confirm = promptConfirm
	}

	if cliMode {
		if err := newCLIApp(a).Run(os.Args); err != nil {
			a.Close()
			fatal("%v", err)
		}
		return
	}

	// MCP server mode (default)
	if err := mcp.Run(a.deps, cfg, Version); err != nil {
		a.Close()
		fatal("%v", err)
	}
}
