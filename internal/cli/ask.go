// Copyright (c) 2025-2026 Nyay Setu Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - Single question command handler for nyay CLI.
//
// CLI: Comprehensive help and examples for all commands
// USABILITY: Markdown rendering and history for better CLI experience
//
// Handles the "nyay ask" command which sends a single question to the
// backend and streams the answer to stdout.
//
// Command: ask [question]
//
// Examples:
//   nyay ask "What does Article 21 guarantee?"
//   echo "What is anticipatory bail?" | nyay ask
//   nyay ask --json "Define FIR"
//   nyay ask --plain "What is Section 498A?"
//
// Flags:
//   --plain        Stream raw text, skip markdown rendering
//   --no-sources   Skip the supporting-passages lookup
//   --json         Output answer and sources as JSON
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog/log"

	"github.com/nyaysetu/nyay-cli/internal/api"
	"github.com/nyaysetu/nyay-cli/internal/chat"
	"github.com/nyaysetu/nyay-cli/internal/config"
	"github.com/nyaysetu/nyay-cli/internal/conversation"
	"github.com/nyaysetu/nyay-cli/internal/docparse"
	"github.com/nyaysetu/nyay-cli/internal/render"
	"github.com/nyaysetu/nyay-cli/internal/util"
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// markdownRenderer is the global glamour renderer for markdown output.
// USABILITY: Renders markdown answers with formatting on TTY output.
var markdownRenderer *glamour.TermRenderer

func init() {
	var err error
	markdownRenderer, err = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		// Fallback to plain text if renderer initialization fails
		markdownRenderer = nil
	}
}

// renderMarkdown renders markdown content for terminal display.
// Returns the original content if rendering fails or renderer is unavailable.
func renderMarkdown(content string) string {
	if markdownRenderer == nil {
		return content
	}

	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// markdownEnabled decides whether answers should be rendered as markdown,
// combining the local preference with the backend's client-config flag.
func markdownEnabled(cfg *config.Config, client *api.Client) bool {
	switch cfg.UI.Markdown {
	case "always":
		return true
	case "never":
		return false
	}

	// "auto" follows the backend
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	features, err := client.FetchFeatures(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("client-config fetch failed, markdown off")
		return false
	}
	return features.Markdown
}

// displayAnswer prints an answer, picking the best representation for
// the output target: glamour markdown on a TTY when the backend sends
// markdown, the structured plain renderer otherwise, and raw text for
// pipes.
func displayAnswer(text string, markdown bool) {
	if !IsStdoutTTY() {
		fmt.Println(text)
		return
	}
	if markdown {
		fmt.Print(renderMarkdown(text))
		return
	}
	doc := docparse.Parse(text)
	if doc.IsEmpty() {
		fmt.Println(text)
		return
	}
	fmt.Print(render.Document(doc, render.DefaultOptions()))
}

// printSources displays supporting passages below an answer.
func printSources(passages []api.SourcePassage) {
	if len(passages) == 0 {
		return
	}

	fmt.Println()
	fmt.Println(LabelStyle.Render("Sources:"))
	width := GetTerminalWidth()
	for i, p := range passages {
		ref := fmt.Sprintf("  [%d] %s #%d", i+1, p.DocID, p.ChunkID)
		score := DimStyle.Render("(" + util.FloatToString(p.Score) + ")")
		fmt.Printf("%s %s\n", InfoStyle.Render(ref), score)
		fmt.Printf("      %s\n", util.TruncateWidth(p.Text, width-8))
	}
}

// =============================================================================
// ASK RESULT
// =============================================================================

// askResult collects what a single question produced.
type askResult struct {
	Answer   string              `json:"answer"`
	Fallback bool                `json:"fallback"`
	Sources  []api.SourcePassage `json:"sources,omitempty"`
}

// =============================================================================
// ASK HANDLER
// =============================================================================

// buildClient constructs a backend client from the global config and
// CLI overrides.
func buildClient(args Args) *api.Client {
	cfg := config.Global()

	clientCfg := &api.ClientConfig{
		BaseURL:      cfg.Backend.BaseURL,
		APIPrefix:    cfg.Backend.APIPrefix,
		AlternateURL: cfg.Backend.AlternateURL,
		Timeout:      cfg.RequestTimeout(),
		IdleTimeout:  cfg.IdleTimeout(),
	}
	if args.Backend != "" {
		clientCfg.BaseURL = args.Backend
	}
	return api.NewClientWithConfig(clientCfg)
}

// buildRetrieval constructs retrieval options from config and CLI flags.
func buildRetrieval(args Args) chat.Retrieval {
	cfg := config.Global()
	return chat.Retrieval{
		Enabled:  cfg.Retrieval.Enabled && !args.NoSources,
		TopK:     cfg.Retrieval.TopK,
		MinScore: cfg.Retrieval.MinScore,
		MaxShown: cfg.Retrieval.MaxShown,
	}
}

// HandleAskCommand handles the "ask" command.
func HandleAskCommand(args Args) error {
	question := args.Query
	if question == "" {
		question = readStdinQuestion()
	}
	if question == "" {
		return NewValidationError("question", "", "no question provided. Usage: nyay ask \"your question\"")
	}

	cfg := config.Global()
	client := buildClient(args)

	// Decide rendering mode up front so tokens can stream live when no
	// post-processing is needed.
	useMarkdown := false
	if !args.Plain && !args.JSON && IsStdoutTTY() {
		useMarkdown = markdownEnabled(cfg, client)
	}
	streamLive := !args.JSON && !useMarkdown && (args.Plain || !IsStdoutTTY())

	done := make(chan askResult, 1)

	var res askResult
	controller := chat.NewController(client, chat.Events{
		OnToken: func(token string) {
			if streamLive {
				fmt.Print(token)
			}
		},
		OnAnswer: func(turn conversation.Turn, fromFallback bool) {
			res.Answer = turn.Text
			res.Fallback = fromFallback
		},
		OnSources: func(passages []api.SourcePassage) {
			res.Sources = passages
			done <- res
		},
	}, chat.Options{Retrieval: buildRetrieval(args)})

	ctx := context.Background()
	if err := controller.Send(ctx, question); err != nil {
		return err
	}

	// Wait for the answer and sources
	out := <-done

	if args.JSON {
		return outputJSON(out)
	}

	if streamLive {
		// A fallback answer produced no token events, so nothing has
		// been printed yet.
		if out.Fallback {
			fmt.Print(out.Answer)
		}
		fmt.Println()
	} else {
		displayAnswer(out.Answer, useMarkdown)
	}

	if out.Fallback && out.Answer != api.UnreachableAnswer && !args.Quiet {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("[fallback]")+" streamed connection failed, used direct ask")
	}

	if !args.Quiet && !args.JSON {
		printSources(out.Sources)
	}

	return nil
}
