// Copyright (c) 2025-2026 Nyay Setu Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package docparse reconstructs the implicit structure of a finalized
// answer: title, numbered sections, paragraphs and lists.
package docparse

// BlockKind tags the variant held by a Block.
type BlockKind int

const (
	// BlockParagraph holds free text, possibly spanning several source
	// lines joined with line breaks.
	BlockParagraph BlockKind = iota

	// BlockOrderedList holds the items of a contiguous "1. item" run.
	BlockOrderedList

	// BlockUnorderedList holds the items of a contiguous "- item" run.
	BlockUnorderedList
)

// Block is one unit of section content: a paragraph or a list.
// Text is set for paragraphs, Items for lists; the other field is empty.
type Block struct {
	Kind  BlockKind
	Text  string
	Items []string
}

// NewParagraph builds a paragraph block.
func NewParagraph(text string) Block {
	return Block{Kind: BlockParagraph, Text: text}
}

// NewOrderedList builds an ordered-list block.
func NewOrderedList(items []string) Block {
	return Block{Kind: BlockOrderedList, Items: items}
}

// NewUnorderedList builds an unordered-list block.
func NewUnorderedList(items []string) Block {
	return Block{Kind: BlockUnorderedList, Items: items}
}

// Section is a named or anonymous grouping of content blocks.
// A section introduced by a bare numeric header keeps a synthetic name;
// leading content before any header lives in an anonymous section.
type Section struct {
	Name   string
	Blocks []Block
}

// Document is the parsed representation of one answer.
// Sections preserve input order. Title may be empty.
type Document struct {
	Title    string
	Sections []Section
}

// IsEmpty reports whether the document carries no content at all.
func (d Document) IsEmpty() bool {
	return d.Title == "" && len(d.Sections) == 0
}
