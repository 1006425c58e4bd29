// Copyright (c) 2025-2026 Nyay Setu Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line interface parsing and execution for nyay.
//
// This package implements all CLI commands for the nyay client, providing
// both interactive and non-interactive modes.
//
// # Key Types
//
//   - Command: Enumeration of all available CLI commands
//   - Args: Parsed command-line arguments with global and command-specific flags
//
// # Usage
//
// Parse and execute commands:
//
//	cmd, args := cli.Parse()
//	switch cmd {
//	case cli.CmdAsk:
//	    cli.HandleAsk(args)
//	case cli.CmdChat:
//	    cli.HandleChat(args)
//	// ... other commands
//	}
//
// # Commands Overview
//
//   - chat: Interactive chat session (default)
//   - ask: Single question query
//   - sources: Retrieval inspection
//   - config: Configuration management
//   - doctor: Backend diagnostics
//
// Most commands support --json for machine-readable output.
package cli
