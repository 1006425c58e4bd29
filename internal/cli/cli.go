// Copyright (c) 2025-2026 Nyay Setu Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command handlers for nyay.
//
// CLI: Comprehensive help and examples for all commands
package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdChat Command = iota
	CmdAsk
	CmdSources
	CmdConfig
	CmdDoctor
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet     bool
	Verbose   bool
	JSON      bool   // Output in JSON format
	Backend   string // Backend URL override
	NoSources bool   // Skip source retrieval
	Plain     bool   // Force plain output (no markdown rendering)

	// Command-specific
	Query      string
	TopK       int
	Subcommand string
	ConfigKey  string
	ConfigVal  string

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `nyay - terminal client for the Nyay legal assistant

Nyay answers questions about Indian law by streaming responses from a
local retrieval-augmented backend.

Usage:
  nyay                        Start interactive chat (default)
  nyay chat                   Interactive chat
  nyay ask "question"         Ask a single question
  nyay sources "question"     Show retrieved passages for a question
  nyay config [show|set|path] Configuration
  nyay doctor                 Backend diagnostics
  nyay version                Show version

Ask Command:
  nyay ask "What does Article 21 guarantee?"
  echo "What is anticipatory bail?" | nyay ask
    --plain                   Stream raw text, skip markdown rendering
    --no-sources              Skip the supporting-passages lookup
    --json                    Output answer and sources as JSON

Sources Command:
  nyay sources "right to privacy"
    --top-k N                 Passages to request (1-20, default from config)

Config Commands:
  nyay config show            Show current configuration
  nyay config set KEY VALUE   Set a value (e.g. backend.base_url)
  nyay config path            Print config file location
  nyay config reset           Restore defaults

Interactive Commands (during chat):
  /help, /h                   Show available commands
  /clear, /c                  Clear conversation history
  /history                    Show conversation history
  /sources                    Toggle source display
  /quit, /q                   Exit chat
  Ctrl+C                      Cancel current answer
  Ctrl+D                      Exit chat

Global Flags:
  --backend URL               Override backend URL for this run
  -q, --quiet                 Minimal output
  -v, --verbose               Debug output
  --json                      Output in JSON format

Examples:
  nyay                                  Start interactive chat
  nyay ask "What is Section 498A?"      Ask a single question
  nyay ask --json "Define FIR" | jq .   Machine-readable output
  nyay sources "habeas corpus" --top-k 10
  nyay doctor                           Check backend connectivity

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("nyay version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
}

// Parse parses command-line arguments and returns the command and args.
func Parse() (Command, Args) {
	args := os.Args[1:]

	remaining, parsedArgs := parseGlobalFlags(args)

	// No arguments means interactive chat
	if len(remaining) == 0 {
		return CmdChat, parsedArgs
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsedArgs.Raw = remaining

	switch cmd {
	case "chat":
		return CmdChat, parsedArgs

	case "ask":
		parseAskArgs(&parsedArgs, remaining)
		return CmdAsk, parsedArgs

	case "sources", "retrieve":
		parseSourcesArgs(&parsedArgs, remaining)
		return CmdSources, parsedArgs

	case "config":
		parseConfigArgs(&parsedArgs, remaining)
		return CmdConfig, parsedArgs

	case "doctor":
		return CmdDoctor, parsedArgs

	case "version", "-v", "--version":
		return CmdVersion, parsedArgs

	case "help", "-h", "--help":
		return CmdHelp, parsedArgs

	default:
		// Unknown command - treat the whole line as a question
		parsedArgs.Raw = append([]string{cmd}, remaining...)
		parseAskArgs(&parsedArgs, parsedArgs.Raw)
		return CmdAsk, parsedArgs
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsedArgs Args

	i := 0
	for i < len(args) {
		arg := args[i]

		switch arg {
		case "-q", "--quiet":
			parsedArgs.Quiet = true
		case "-v", "--verbose":
			parsedArgs.Verbose = true
		case "--json":
			parsedArgs.JSON = true
		case "--plain":
			parsedArgs.Plain = true
		case "--no-sources":
			parsedArgs.NoSources = true
		case "--backend":
			if i+1 < len(args) {
				i++
				parsedArgs.Backend = args[i]
			}
		default:
			if strings.HasPrefix(arg, "--backend=") {
				parsedArgs.Backend = strings.TrimPrefix(arg, "--backend=")
			} else {
				remaining = append(remaining, arg)
			}
		}
		i++
	}

	return remaining, parsedArgs
}

// parseAskArgs parses ask command specific arguments.
func parseAskArgs(args *Args, remaining []string) {
	var query []string

	for i := 0; i < len(remaining); i++ {
		arg := remaining[i]

		switch arg {
		case "--plain":
			args.Plain = true
		case "--no-sources":
			args.NoSources = true
		default:
			if !strings.HasPrefix(arg, "-") {
				query = append(query, arg)
			}
		}
	}

	args.Query = strings.Join(query, " ")
}

// parseSourcesArgs parses sources command specific arguments.
func parseSourcesArgs(args *Args, remaining []string) {
	var query []string

	for i := 0; i < len(remaining); i++ {
		arg := remaining[i]

		switch arg {
		case "--top-k", "-k":
			if i+1 < len(remaining) {
				i++
				if n, err := strconv.Atoi(remaining[i]); err == nil && n > 0 {
					args.TopK = n
				}
			}
		default:
			if strings.HasPrefix(arg, "--top-k=") {
				if n, err := strconv.Atoi(strings.TrimPrefix(arg, "--top-k=")); err == nil && n > 0 {
					args.TopK = n
				}
			} else if !strings.HasPrefix(arg, "-") {
				query = append(query, arg)
			}
		}
	}

	args.Query = strings.Join(query, " ")
}

// parseConfigArgs parses config command specific arguments.
func parseConfigArgs(args *Args, remaining []string) {
	if len(remaining) > 0 {
		args.Subcommand = remaining[0]
		if len(remaining) > 1 {
			args.ConfigKey = remaining[1]
		}
		if len(remaining) > 2 {
			args.ConfigVal = remaining[2]
		}
	}
}

// =============================================================================
// COMMAND HANDLERS
// =============================================================================

// ERROR HANDLING: Errors must not be silently ignored

// HandleAsk handles the "ask" command.
// This delegates to the full implementation in ask.go.
func HandleAsk(args Args) {
	if err := HandleAskCommand(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(GetExitCode(err))
	}
}

// HandleChat handles the "chat" command.
// This delegates to the full implementation in chat.go.
func HandleChat(args Args) {
	if err := HandleChatCommand(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(GetExitCode(err))
	}
}

// HandleSources handles the "sources" command.
func HandleSources(args Args) {
	if err := HandleSourcesCommand(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(GetExitCode(err))
	}
}

// HandleDoctor handles the "doctor" command.
func HandleDoctor(args Args) {
	if err := HandleDoctorCommand(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(GetExitCode(err))
	}
}

// HandleConfig handles the "config" command.
func HandleConfig(args Args) {
	if err := HandleConfigCommand(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(GetExitCode(err))
	}
}

// HandleVersion handles the "version" command.
func HandleVersion(args Args) {
	if args.JSON {
		outputJSON(map[string]string{
			"version":    Version,
			"git_commit": GitCommit,
			"build_date": BuildDate,
		})
		return
	}
	PrintVersion()
}

// HandleHelp handles the "help" command.
func HandleHelp() {
	PrintUsage()
}
