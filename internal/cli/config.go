// Copyright (c) 2025-2026 Nyay Setu Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - Config command implementation for nyay.
//
// CLI: Comprehensive help and examples for all commands
//
// Command: config [subcommand]
// Short:   View and modify configuration
//
// Subcommands:
//   show (default)      Display current configuration
//   set <key> <value>   Set a configuration value
//   reset               Reset to default configuration
//   path                Show configuration file path
//
// Examples:
//   nyay config                              Show current config (default)
//   nyay config show --json                 Config in JSON format
//   nyay config set backend.base_url http://127.0.0.1:9000
//   nyay config set retrieval.top_k 10
//   nyay config set ui.markdown never
//   nyay config reset                       Reset to defaults
//   nyay config path                        Show config file location
//
// Configuration Keys:
//   backend.base_url               Backend root URL
//   backend.api_prefix             API route prefix
//   backend.alternate_url          Loopback retry target override
//   backend.request_timeout_secs   Non-streaming request timeout
//   backend.idle_timeout_secs      Stream idle timeout
//   retrieval.enabled              Fetch sources after answers (true/false)
//   retrieval.top_k                Passages requested (1-20)
//   retrieval.min_score            Relevance cutoff for display
//   retrieval.max_shown            Passages displayed
//   ui.markdown                    Answer rendering (auto/always/never)
//   ui.quiet                       Suppress status lines (true/false)
package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nyaysetu/nyay-cli/internal/config"
	"github.com/nyaysetu/nyay-cli/internal/util"
)

// HandleConfigCommand handles the "config" command.
func HandleConfigCommand(args Args) error {
	switch args.Subcommand {
	case "", "show":
		return handleConfigShow(args)
	case "set":
		return handleConfigSet(args)
	case "reset":
		return handleConfigReset(args)
	case "path":
		return handleConfigPath()
	default:
		return NewValidationError("subcommand", args.Subcommand,
			"expected show, set, reset or path")
	}
}

// handleConfigShow displays the current configuration.
func handleConfigShow(args Args) error {
	cfg := config.Global()

	if args.JSON {
		return outputJSON(cfg)
	}

	fmt.Println(TitleStyle.Render("nyay configuration"))
	fmt.Println()
	printConfigLine("backend.base_url", cfg.Backend.BaseURL)
	printConfigLine("backend.api_prefix", cfg.Backend.APIPrefix)
	printConfigLine("backend.alternate_url", orDefault(cfg.Backend.AlternateURL, "(derived)"))
	printConfigLine("backend.request_timeout_secs", util.IntToString(cfg.Backend.RequestTimeoutSecs))
	printConfigLine("backend.idle_timeout_secs", util.IntToString(cfg.Backend.IdleTimeoutSecs))
	printConfigLine("retrieval.enabled", strconv.FormatBool(cfg.Retrieval.Enabled))
	printConfigLine("retrieval.top_k", util.IntToString(cfg.Retrieval.TopK))
	printConfigLine("retrieval.min_score", util.FloatToString(cfg.Retrieval.MinScore))
	printConfigLine("retrieval.max_shown", util.IntToString(cfg.Retrieval.MaxShown))
	printConfigLine("ui.markdown", cfg.UI.Markdown)
	printConfigLine("ui.quiet", strconv.FormatBool(cfg.UI.Quiet))

	if path, err := config.ConfigPathTOML(); err == nil {
		fmt.Println()
		fmt.Printf("%s %s\n", LabelStyle.Render("File:"), DimStyle.Render(path))
	}
	return nil
}

func printConfigLine(key, value string) {
	fmt.Printf("  %-32s %s\n", LabelStyle.Render(key), value)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// handleConfigSet sets a configuration value and saves the file.
func handleConfigSet(args Args) error {
	if args.ConfigKey == "" || args.ConfigVal == "" {
		return NewValidationError("arguments", "",
			"usage: nyay config set <key> <value>")
	}

	// Mutate a copy so a rejected value never leaks into the running
	// process. The config holds only value types, so a struct copy is
	// a full copy.
	copied := *config.Global()
	cfg := &copied
	key := strings.ToLower(args.ConfigKey)
	val := args.ConfigVal

	switch key {
	case "backend.base_url", "base_url":
		cfg.Backend.BaseURL = val
	case "backend.api_prefix", "api_prefix":
		cfg.Backend.APIPrefix = val
	case "backend.alternate_url", "alternate_url":
		cfg.Backend.AlternateURL = val
	case "backend.request_timeout_secs":
		n, err := strconv.Atoi(val)
		if err != nil || n <= 0 {
			return NewValidationError(key, val, "must be a positive integer")
		}
		cfg.Backend.RequestTimeoutSecs = n
	case "backend.idle_timeout_secs":
		n, err := strconv.Atoi(val)
		if err != nil || n <= 0 {
			return NewValidationError(key, val, "must be a positive integer")
		}
		cfg.Backend.IdleTimeoutSecs = n
	case "retrieval.enabled":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return NewValidationError(key, val, "must be true or false")
		}
		cfg.Retrieval.Enabled = b
	case "retrieval.top_k":
		n, err := strconv.Atoi(val)
		if err != nil || n < 1 || n > 20 {
			return NewValidationError(key, val, "must be an integer between 1 and 20")
		}
		cfg.Retrieval.TopK = n
	case "retrieval.min_score":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f < 0 || f > 1 {
			return NewValidationError(key, val, "must be a number between 0 and 1")
		}
		cfg.Retrieval.MinScore = f
	case "retrieval.max_shown":
		n, err := strconv.Atoi(val)
		if err != nil || n < 1 {
			return NewValidationError(key, val, "must be a positive integer")
		}
		cfg.Retrieval.MaxShown = n
	case "ui.markdown", "markdown":
		if val != "auto" && val != "always" && val != "never" {
			return NewValidationError(key, val, "must be auto, always or never")
		}
		cfg.UI.Markdown = val
	case "ui.quiet":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return NewValidationError(key, val, "must be true or false")
		}
		cfg.UI.Quiet = b
	default:
		return NewValidationError("key", args.ConfigKey, "unknown configuration key")
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return err
	}
	config.SetGlobal(cfg)

	fmt.Printf("%s %s = %s\n", SuccessStyle.Render("[OK]"), key, val)
	return nil
}

// handleConfigReset restores the default configuration.
func handleConfigReset(args Args) error {
	cfg := config.Default()
	if err := config.Save(cfg); err != nil {
		return err
	}
	config.SetGlobal(cfg)

	if !args.Quiet {
		fmt.Println(SuccessStyle.Render("[OK]") + " configuration reset to defaults")
	}
	return nil
}

// handleConfigPath prints the config file location.
func handleConfigPath() error {
	path, err := config.ConfigPathTOML()
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}
