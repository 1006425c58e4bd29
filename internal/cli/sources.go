// Copyright (c) 2025-2026 Nyay Setu Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// sources.go - Retrieval inspection command for nyay CLI.
//
// Handles the "nyay sources" command which shows which passages the
// backend would retrieve for a question, with their relevance scores.
//
// Command: sources [question]
//
// Examples:
//   nyay sources "right to privacy"
//   nyay sources "habeas corpus" --top-k 10
//   nyay sources --json "Section 420" | jq .
package cli

import (
	"context"
	"fmt"

	"github.com/nyaysetu/nyay-cli/internal/api"
	"github.com/nyaysetu/nyay-cli/internal/config"
	"github.com/nyaysetu/nyay-cli/internal/util"
)

// HandleSourcesCommand handles the "sources" command.
func HandleSourcesCommand(args Args) error {
	question := args.Query
	if question == "" {
		question = readStdinQuestion()
	}
	if question == "" {
		return NewValidationError("question", "", "no question provided. Usage: nyay sources \"your question\"")
	}

	cfg := config.Global()
	client := buildClient(args)

	topK := args.TopK
	if topK == 0 {
		topK = cfg.Retrieval.TopK
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout())
	defer cancel()

	passages, err := client.Retrieve(ctx, question, topK)
	if err != nil {
		return err
	}

	if args.JSON {
		return outputJSON(map[string]interface{}{
			"query":    question,
			"top_k":    topK,
			"contexts": passages,
		})
	}

	if len(passages) == 0 {
		fmt.Println(DimStyle.Render("(no passages retrieved)"))
		return nil
	}

	// The raw debug view shows everything the backend returned, with
	// the display cutoff marked so low-scoring passages are visible.
	fmt.Println(TitleStyle.Render("Retrieved passages"))
	width := GetTerminalWidth()
	for i, p := range passages {
		ref := fmt.Sprintf("[%d] %s #%d", i+1, p.DocID, p.ChunkID)
		score := util.FloatToString(p.Score)
		if p.Score >= cfg.Retrieval.MinScore {
			fmt.Printf("%s %s\n", InfoStyle.Render(ref), SuccessStyle.Render(score))
		} else {
			fmt.Printf("%s %s %s\n", InfoStyle.Render(ref), DimStyle.Render(score),
				DimStyle.Render("(below cutoff)"))
		}
		fmt.Printf("    %s\n", util.TruncateWidth(p.Text, width-6))
	}

	filtered := api.FilterSources(passages, cfg.Retrieval.MinScore, cfg.Retrieval.MaxShown)
	fmt.Println()
	fmt.Printf("%s %d of %d passages pass the %s cutoff\n",
		LabelStyle.Render("Summary:"),
		len(filtered), len(passages),
		util.FloatToString(cfg.Retrieval.MinScore))

	return nil
}
