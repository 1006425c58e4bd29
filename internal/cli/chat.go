// Copyright (c) 2025-2026 Nyay Setu Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat command handler for nyay CLI.
//
// CLI: Comprehensive help and examples for all commands
// USABILITY: Markdown rendering and history for better CLI experience
//
// Handles the "nyay chat" command which provides an interactive REPL
// for conversing with the Nyay backend.
//
// Command: chat
//
// Interactive Commands (during chat):
//   /help, /h           Show available commands
//   /clear, /c          Clear conversation history
//   /history            Show conversation history
//   /sources            Toggle source display
//   /quit, /q           Exit chat
//   Ctrl+C              Cancel current answer
//   Ctrl+D              Exit chat
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/nyaysetu/nyay-cli/internal/api"
	"github.com/nyaysetu/nyay-cli/internal/chat"
	"github.com/nyaysetu/nyay-cli/internal/config"
	"github.com/nyaysetu/nyay-cli/internal/conversation"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	// Prompt style
	promptStyle = lipgloss.NewStyle().
			Foreground(Cyan).
			Bold(true)

	// Welcome banner style
	welcomeStyle = lipgloss.NewStyle().
			Foreground(Purple).
			Bold(true)

	// Command feedback style
	commandStyle = lipgloss.NewStyle().
			Foreground(Emerald)
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for interactive chat.
// USABILITY: Supports arrow keys for history navigation and line editing.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a new ChatCLI with input history support.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	// History lives next to the config file
	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}
	historyFile := filepath.Join(configDir, "chat_history")

	cli := &ChatCLI{
		line:        line,
		historyFile: historyFile,
	}
	cli.LoadHistory()
	return cli
}

// LoadHistory loads command history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt.
// Supports history navigation with arrow keys.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists command history to file with secure permissions.
func (c *ChatCLI) SaveHistory() {
	if err := config.EnsureConfigDir(); err != nil {
		return
	}

	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	c.line.WriteHistory(f)
}

// Close saves history and closes the liner.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// SESSION STATE
// =============================================================================

// turnResult carries one finished question/answer exchange from the
// controller callbacks back to the REPL loop.
type turnResult struct {
	Answer   string
	Fallback bool
	Sources  []api.SourcePassage
}

// ChatSession holds the state for an interactive chat session.
type ChatSession struct {
	Controller *chat.Controller

	Config      *config.Config
	Quiet       bool
	ShowSources bool
	UseMarkdown bool

	// Tracking
	StartTime time.Time
	Questions int

	// turnDone receives the result when a question completes. Buffered
	// so a late callback never blocks after a cancel.
	turnDone chan turnResult

	// pending accumulates callback results for the in-flight question.
	pending turnResult

	// Input history handler
	InputCLI *ChatCLI
}

// NewChatSession creates a new chat session wired to the backend.
func NewChatSession(args Args) *ChatSession {
	cfg := config.Global()
	client := buildClient(args)
	retrieval := buildRetrieval(args)

	session := &ChatSession{
		Config:      cfg,
		Quiet:       args.Quiet,
		ShowSources: retrieval.Enabled,
		StartTime:   time.Now(),
		turnDone:    make(chan turnResult, 1),
		InputCLI:    NewChatCLI(),
	}

	if !args.Plain && IsStdoutTTY() {
		session.UseMarkdown = markdownEnabled(cfg, client)
	}

	session.Controller = chat.NewController(client, chat.Events{
		OnToken: func(token string) {
			if !session.UseMarkdown {
				fmt.Print(token)
			}
		},
		OnAnswer: func(turn conversation.Turn, fromFallback bool) {
			session.pending.Answer = turn.Text
			session.pending.Fallback = fromFallback
		},
		OnSources: func(passages []api.SourcePassage) {
			session.pending.Sources = passages
			session.turnDone <- session.pending
			session.pending = turnResult{}
		},
	}, chat.Options{Retrieval: retrieval})

	return session
}

// drainTurnDone discards a stale result left buffered by a cancelled or
// abandoned turn.
func (s *ChatSession) drainTurnDone() {
	select {
	case <-s.turnDone:
	default:
	}
}

// =============================================================================
// CHAT HANDLER
// =============================================================================

// HandleChatCommand handles the "chat" command with full interactive support.
func HandleChatCommand(args Args) error {
	session := NewChatSession(args)

	// Quick reachability probe so the user hears about a dead backend
	// before typing a question.
	if !session.Quiet {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		client := buildClient(args)
		if err := client.Health(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "%s backend not reachable at %s, answers will use the fallback path\n",
				WarningStyle.Render("[warning]"),
				session.Config.Backend.BaseURL)
		}
		cancel()
	}

	if !session.Quiet {
		printWelcome(session)
	}

	// USABILITY: Save history for future sessions
	defer session.InputCLI.Close()

	// Ctrl+C during generation cancels the in-flight answer
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	for {
		input, err := session.InputCLI.ReadInput(promptStyle.Render("nyay> "))
		if err != nil {
			// liner.ErrPromptAborted (Ctrl+C) or EOF (Ctrl+D)
			fmt.Println()
			printExitSummary(session)
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			shouldContinue, err := handleSlashCommand(input, session)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s %v\n", ErrorStyle.Render("[Error]"), err)
			}
			if !shouldContinue {
				printExitSummary(session)
				return nil
			}
			continue
		}

		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			printExitSummary(session)
			return nil
		}

		if err := processMessage(session, input, interrupt); err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", ErrorStyle.Render("[Error]"), err)
		}
	}
}

// =============================================================================
// MESSAGE PROCESSING
// =============================================================================

// processMessage sends a question and waits for the streamed answer,
// honoring Ctrl+C as a cancel of the in-flight question only.
func processMessage(session *ChatSession, input string, interrupt <-chan os.Signal) error {
	start := time.Now()

	fmt.Println() // Space before response

	session.drainTurnDone()

	if err := session.Controller.Send(context.Background(), input); err != nil {
		return err
	}
	session.Questions++

	select {
	case result := <-session.turnDone:
		if session.UseMarkdown {
			displayAnswer(result.Answer, true)
		} else if result.Fallback {
			// Fallback answers bypass the live token printer.
			fmt.Print(result.Answer)
		}
		fmt.Println()

		if result.Fallback && result.Answer != api.UnreachableAnswer && !session.Quiet {
			fmt.Fprintln(os.Stderr, WarningStyle.Render("[fallback]")+" streamed connection failed, used direct ask")
		}
		if session.ShowSources {
			printSources(result.Sources)
		}
		if !session.Quiet {
			fmt.Fprintf(os.Stderr, "%s %s\n",
				InfoStyle.Render("[Done]"),
				DimStyle.Render(formatDurationShort(time.Since(start))))
		}
		fmt.Println()
		return nil

	case <-interrupt:
		session.Controller.Cancel()
		// A turn that finished in the race with Ctrl+C must not be
		// served as the next question's answer.
		session.drainTurnDone()
		fmt.Fprintln(os.Stderr, "\n"+WarningStyle.Render("[Cancelled]"))
		fmt.Println()
		return nil
	}
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlashCommand processes slash commands.
// Returns (shouldContinue, error) where shouldContinue=false means exit.
func handleSlashCommand(cmd string, session *ChatSession) (bool, error) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return true, nil
	}

	switch strings.ToLower(parts[0]) {
	case "/help", "/h", "/?", "/":
		printChatHelp()
		return true, nil

	case "/clear", "/c":
		session.Controller.Transcript().Clear()
		fmt.Println(commandStyle.Render("[Conversation cleared]"))
		return true, nil

	case "/history":
		printHistory(session)
		return true, nil

	case "/sources", "/s":
		session.ShowSources = !session.ShowSources
		if session.ShowSources {
			fmt.Println(commandStyle.Render("[Sources on]"))
		} else {
			fmt.Println(commandStyle.Render("[Sources off]"))
		}
		return true, nil

	case "/quit", "/q", "/exit":
		return false, nil

	default:
		return true, fmt.Errorf("unknown command: %s (type /help for commands)", parts[0])
	}
}

// =============================================================================
// DISPLAY
// =============================================================================

// printWelcome shows the welcome banner.
func printWelcome(session *ChatSession) {
	fmt.Println(welcomeStyle.Render("nyay " + Version))
	fmt.Printf("%s %s\n",
		LabelStyle.Render("Backend:"),
		session.Config.Backend.BaseURL)
	fmt.Println(DimStyle.Render("Type /help for commands, Ctrl+D to exit."))
	fmt.Println()
}

// printChatHelp shows the in-chat command reference.
func printChatHelp() {
	fmt.Println(TitleStyle.Render("Commands"))
	fmt.Println("  /help, /h     Show this help")
	fmt.Println("  /clear, /c    Clear conversation history")
	fmt.Println("  /history      Show conversation history")
	fmt.Println("  /sources, /s  Toggle source display")
	fmt.Println("  /quit, /q     Exit chat")
	fmt.Println("  Ctrl+C        Cancel current answer")
	fmt.Println("  Ctrl+D        Exit chat")
	fmt.Println()
}

// printHistory prints the conversation so far.
func printHistory(session *ChatSession) {
	turns := session.Controller.Transcript().Turns()
	if len(turns) == 0 {
		fmt.Println(DimStyle.Render("(no conversation yet)"))
		return
	}

	fmt.Println()
	for _, turn := range turns {
		switch turn.Role {
		case conversation.RoleUser:
			fmt.Printf("%s %s\n", promptStyle.Render("you:"), turn.Text)
		case conversation.RoleAssistant:
			fmt.Printf("%s %s\n", commandStyle.Render("nyay:"), turn.Text)
		}
	}
	fmt.Println()
}

// printExitSummary shows a brief summary when leaving chat.
func printExitSummary(session *ChatSession) {
	if session.Quiet || session.Questions == 0 {
		return
	}
	fmt.Println(RenderSeparator())
	fmt.Printf("%s %d questions in %s\n",
		LabelStyle.Render("Session:"),
		session.Questions,
		formatDurationShort(time.Since(session.StartTime)))
}
