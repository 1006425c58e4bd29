// Copyright (c) 2025-2026 Nyay Setu Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render formats parsed answer documents for terminal display.
package render

import (
	"strings"

	"github.com/nyaysetu/nyay-cli/internal/docparse"
	"github.com/nyaysetu/nyay-cli/internal/util"
)

// Options controls document rendering.
type Options struct {
	// Width wraps paragraph text at this column. Zero disables wrapping.
	Width int
	// Indent is prepended to list items and section bodies.
	Indent string
}

// DefaultOptions returns rendering defaults for an 80-column terminal.
func DefaultOptions() Options {
	return Options{Width: 78, Indent: "  "}
}

// Document renders a parsed document as plain text. Styling is left to
// the caller so piped output stays clean.
func Document(doc docparse.Document, opts Options) string {
	var b strings.Builder

	if doc.Title != "" {
		b.WriteString(doc.Title)
		b.WriteString("\n\n")
	}

	for i, sec := range doc.Sections {
		if sec.Name != "" {
			b.WriteString(sec.Name)
			b.WriteString("\n")
		}
		for _, block := range sec.Blocks {
			renderBlock(&b, block, opts, sec.Name != "")
		}
		if i < len(doc.Sections)-1 {
			b.WriteString("\n")
		}
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

func renderBlock(b *strings.Builder, block docparse.Block, opts Options, indented bool) {
	indent := ""
	if indented {
		indent = opts.Indent
	}

	switch block.Kind {
	case docparse.BlockOrderedList:
		for i, item := range block.Items {
			b.WriteString(indent)
			b.WriteString(util.IntToString(i + 1))
			b.WriteString(". ")
			b.WriteString(item)
			b.WriteString("\n")
		}
	case docparse.BlockUnorderedList:
		for _, item := range block.Items {
			b.WriteString(indent)
			b.WriteString("- ")
			b.WriteString(item)
			b.WriteString("\n")
		}
	default:
		text := block.Text
		if opts.Width > 0 {
			text = wrap(text, opts.Width-len(indent))
		}
		for _, line := range strings.Split(text, "\n") {
			b.WriteString(indent)
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
}

// wrap word-wraps text at the given width, preserving existing newlines.
func wrap(text string, width int) string {
	if width <= 0 {
		return text
	}

	var result strings.Builder
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			result.WriteString("\n")
		}
		if util.StringWidth(line) <= width {
			result.WriteString(line)
			continue
		}

		words := strings.Fields(line)
		if len(words) == 0 {
			continue
		}
		current := words[0]
		curWidth := util.StringWidth(current)
		for _, word := range words[1:] {
			w := util.StringWidth(word)
			if curWidth+1+w <= width {
				current += " " + word
				curWidth += 1 + w
			} else {
				result.WriteString(current)
				result.WriteString("\n")
				current = word
				curWidth = w
			}
		}
		result.WriteString(current)
	}
	return result.String()
}
