// Copyright (c) 2025-2026 Nyay Setu Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package docparse reconstructs the implicit structure of a finalized
// answer: title, numbered sections, paragraphs and lists.
package docparse

import (
	"regexp"
	"strings"
)

// =============================================================================
// LINE PATTERNS
// =============================================================================

// PERFORMANCE: Pre-compiled regex (compiled once at startup)
var (
	// headerRe matches numbered section headers: "3. Scope", "2.1 Remedies",
	// or a bare "4." with no trailing text.
	headerRe = regexp.MustCompile(`^(\d+(?:\.\d+)*)\.?\s*(.*)$`)

	// orderedItemRe matches a single-level ordered list item with content.
	orderedItemRe = regexp.MustCompile(`^\d+\.\s+(.+)$`)

	// unorderedItemRe matches a dash bullet with content.
	unorderedItemRe = regexp.MustCompile(`^-\s+(.+)$`)

	// reservedHeadingRe matches legal heading forms ("Article 21",
	// "Section 3") that must never be mistaken for a document title.
	reservedHeadingRe = regexp.MustCompile(`(?i)^(article|section|chapter|clause|part)\s+\d+`)
)

// =============================================================================
// PARSER
// =============================================================================

// Parse reconstructs the document structure of a finalized answer.
//
// The scan is a single forward pass over trimmed lines. Header detection
// runs before list detection; a line matching both patterns starts an
// ordered list only when the next line is also an ordered item, so a
// lone "1. Heading" stays a section header while "1. a" / "2. b" runs
// become lists.
//
// Parse never fails: input with no recognizable structure degenerates to
// a single anonymous section holding one paragraph with the whole body.
func Parse(text string) Document {
	lines := splitLines(text)

	i := 0
	for i < len(lines) && lines[i] == "" {
		i++
	}

	var doc Document

	// Title extraction: a standalone first line (set off by a blank line)
	// that is neither a numbered header, a list marker, nor a reserved
	// legal heading.
	if i < len(lines) && isTitle(lines, i) {
		doc.Title = lines[i]
		i++
	}

	var current Section
	var para []string

	flushPara := func() {
		if len(para) == 0 {
			return
		}
		current.Blocks = append(current.Blocks, NewParagraph(strings.Join(para, "\n")))
		para = nil
	}

	// An anonymous section is only worth committing when it gathered
	// content; a named section is preserved even when empty.
	commitSection := func() {
		if current.Name == "" && len(current.Blocks) == 0 {
			return
		}
		doc.Sections = append(doc.Sections, current)
		current = Section{}
	}

	for i < len(lines) {
		line := lines[i]

		if line == "" {
			flushPara()
			i++
			continue
		}

		if m := headerRe.FindStringSubmatch(line); m != nil {
			if startsOrderedRun(lines, i) {
				flushPara()
				var items []string
				for i < len(lines) {
					im := orderedItemRe.FindStringSubmatch(lines[i])
					if im == nil {
						break
					}
					items = append(items, im[1])
					i++
				}
				current.Blocks = append(current.Blocks, NewOrderedList(items))
				continue
			}

			flushPara()
			commitSection()
			name := m[2]
			if name == "" {
				name = "Section " + m[1]
			}
			current = Section{Name: name}
			i++
			continue
		}

		if unorderedItemRe.MatchString(line) {
			flushPara()
			var items []string
			for i < len(lines) {
				im := unorderedItemRe.FindStringSubmatch(lines[i])
				if im == nil {
					break
				}
				items = append(items, im[1])
				i++
			}
			current.Blocks = append(current.Blocks, NewUnorderedList(items))
			continue
		}

		para = append(para, line)
		i++
	}

	flushPara()
	commitSection()

	return doc
}

// =============================================================================
// CLASSIFICATION HELPERS
// =============================================================================

// splitLines splits input into lines with trailing whitespace trimmed.
// Trailing blank lines are dropped so end-of-input flushes cleanly.
func splitLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, len(raw))
	for i, l := range raw {
		lines[i] = strings.TrimRight(l, " \t\r")
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// isTitle reports whether the first non-blank line should be consumed as
// the document title: it must be immediately followed by a blank line and
// must not read as a header, a list item, or a reserved legal heading.
func isTitle(lines []string, i int) bool {
	line := lines[i]
	if headerRe.MatchString(line) {
		return false
	}
	if unorderedItemRe.MatchString(line) {
		return false
	}
	if reservedHeadingRe.MatchString(line) {
		return false
	}
	return i+1 < len(lines) && lines[i+1] == ""
}

// startsOrderedRun reports whether the line at i opens an ordered-list
// run: the line itself and its immediate successor must both be ordered
// items. A lone numbered line keeps its header classification.
func startsOrderedRun(lines []string, i int) bool {
	if !orderedItemRe.MatchString(lines[i]) {
		return false
	}
	return i+1 < len(lines) && orderedItemRe.MatchString(lines[i+1])
}
