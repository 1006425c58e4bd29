// Copyright (c) 2025-2026 Nyay Setu Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package docparse

import (
	"strings"
	"testing"
)

// =============================================================================
// PARSER TESTS
// =============================================================================

func TestParse_PlainSentence(t *testing.T) {
	doc := Parse("Article 21 protects life.")

	if doc.Title != "" {
		t.Errorf("Title = %q, want empty (reserved legal heading)", doc.Title)
	}
	if len(doc.Sections) != 1 {
		t.Fatalf("got %d sections, want 1", len(doc.Sections))
	}
	sec := doc.Sections[0]
	if sec.Name != "" {
		t.Errorf("section name = %q, want anonymous", sec.Name)
	}
	if len(sec.Blocks) != 1 || sec.Blocks[0].Kind != BlockParagraph {
		t.Fatalf("blocks = %+v, want one paragraph", sec.Blocks)
	}
	if sec.Blocks[0].Text != "Article 21 protects life." {
		t.Errorf("paragraph = %q", sec.Blocks[0].Text)
	}
}

func TestParse_TitleRequiresBlankLine(t *testing.T) {
	withBlank := Parse("Right to Life\n\nIt is a fundamental right.")
	if withBlank.Title != "Right to Life" {
		t.Errorf("Title = %q, want %q", withBlank.Title, "Right to Life")
	}

	withoutBlank := Parse("Right to Life\nIt is a fundamental right.")
	if withoutBlank.Title != "" {
		t.Errorf("Title = %q, want empty when no blank line follows", withoutBlank.Title)
	}
	// Both lines collapse into one paragraph instead.
	if len(withoutBlank.Sections) != 1 || len(withoutBlank.Sections[0].Blocks) != 1 {
		t.Fatalf("sections = %+v", withoutBlank.Sections)
	}
	if withoutBlank.Sections[0].Blocks[0].Text != "Right to Life\nIt is a fundamental right." {
		t.Errorf("paragraph = %q", withoutBlank.Sections[0].Blocks[0].Text)
	}
}

// Legal heading forms never become the document title even when a blank
// line follows.
func TestParse_ReservedHeadingsAreNotTitles(t *testing.T) {
	for _, heading := range []string{
		"Article 21",
		"Section 3 of the Act",
		"CHAPTER 4",
		"clause 2",
		"Part 5",
	} {
		doc := Parse(heading + "\n\nBody text.")
		if doc.Title != "" {
			t.Errorf("Parse(%q...) Title = %q, want empty", heading, doc.Title)
		}
	}

	// A word merely starting with a reserved prefix is still a title.
	doc := Parse("Articles of the Constitution\n\nBody text.")
	if doc.Title != "Articles of the Constitution" {
		t.Errorf("Title = %q, want the full line", doc.Title)
	}
}

func TestParse_NumberedSections(t *testing.T) {
	doc := Parse("1. Background\nSome context.\n\n2. Remedies\nFile a writ petition.")

	if len(doc.Sections) != 2 {
		t.Fatalf("got %d sections, want 2", len(doc.Sections))
	}
	if doc.Sections[0].Name != "Background" {
		t.Errorf("first section = %q", doc.Sections[0].Name)
	}
	if doc.Sections[1].Name != "Remedies" {
		t.Errorf("second section = %q", doc.Sections[1].Name)
	}
	if len(doc.Sections[1].Blocks) != 1 || doc.Sections[1].Blocks[0].Text != "File a writ petition." {
		t.Errorf("remedies blocks = %+v", doc.Sections[1].Blocks)
	}
}

func TestParse_BareNumericHeaderGetsSyntheticName(t *testing.T) {
	doc := Parse("3.\nOrphan content.")

	if len(doc.Sections) != 1 {
		t.Fatalf("got %d sections, want 1", len(doc.Sections))
	}
	if doc.Sections[0].Name != "Section 3" {
		t.Errorf("name = %q, want %q", doc.Sections[0].Name, "Section 3")
	}
}

func TestParse_NestedHeaderNumbers(t *testing.T) {
	doc := Parse("2.1 Interim relief\nCourts may grant a stay.")

	if len(doc.Sections) != 1 || doc.Sections[0].Name != "Interim relief" {
		t.Fatalf("sections = %+v", doc.Sections)
	}
}

// A run of two or more numbered lines is an ordered list; a lone numbered
// line stays a section header.
func TestParse_OrderedListNeedsRunOfTwo(t *testing.T) {
	doc := Parse("Intro\n\n1. Apple\n2. Banana\n\nTail")

	if doc.Title != "Intro" {
		t.Errorf("Title = %q, want %q", doc.Title, "Intro")
	}
	if len(doc.Sections) != 1 {
		t.Fatalf("got %d sections, want 1", len(doc.Sections))
	}

	blocks := doc.Sections[0].Blocks
	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want list + paragraph", len(blocks))
	}
	if blocks[0].Kind != BlockOrderedList {
		t.Fatalf("first block kind = %v, want ordered list", blocks[0].Kind)
	}
	if len(blocks[0].Items) != 2 || blocks[0].Items[0] != "Apple" || blocks[0].Items[1] != "Banana" {
		t.Errorf("items = %v", blocks[0].Items)
	}
	if blocks[1].Kind != BlockParagraph || blocks[1].Text != "Tail" {
		t.Errorf("second block = %+v", blocks[1])
	}
}

func TestParse_LoneNumberedLineIsHeader(t *testing.T) {
	doc := Parse("1. Conclusion\nThe petition succeeds.")

	if len(doc.Sections) != 1 {
		t.Fatalf("got %d sections, want 1", len(doc.Sections))
	}
	if doc.Sections[0].Name != "Conclusion" {
		t.Errorf("name = %q, want header, not list", doc.Sections[0].Name)
	}
}

func TestParse_UnorderedList(t *testing.T) {
	doc := Parse("Available remedies:\n- habeas corpus\n- mandamus\n- certiorari")

	blocks := doc.Sections[0].Blocks
	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want paragraph + list", len(blocks))
	}
	if blocks[1].Kind != BlockUnorderedList {
		t.Fatalf("second block kind = %v", blocks[1].Kind)
	}
	if len(blocks[1].Items) != 3 || blocks[1].Items[0] != "habeas corpus" {
		t.Errorf("items = %v", blocks[1].Items)
	}
}

// An unordered list does not need a run: a single dash bullet is a list.
func TestParse_SingleBulletIsList(t *testing.T) {
	doc := Parse("- only item")

	blocks := doc.Sections[0].Blocks
	if len(blocks) != 1 || blocks[0].Kind != BlockUnorderedList {
		t.Fatalf("blocks = %+v, want one unordered list", blocks)
	}
}

func TestParse_ParagraphsSplitOnBlankLines(t *testing.T) {
	doc := Parse("First paragraph\nstill first.\n\nSecond paragraph.")

	blocks := doc.Sections[0].Blocks
	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2 paragraphs", len(blocks))
	}
	if blocks[0].Text != "First paragraph\nstill first." {
		t.Errorf("first paragraph = %q", blocks[0].Text)
	}
	if blocks[1].Text != "Second paragraph." {
		t.Errorf("second paragraph = %q", blocks[1].Text)
	}
}

func TestParse_Empty(t *testing.T) {
	for _, input := range []string{"", "\n\n\n", "   \n\t\n"} {
		doc := Parse(input)
		if !doc.IsEmpty() {
			t.Errorf("Parse(%q) = %+v, want empty document", input, doc)
		}
	}
}

func TestParse_TrailingWhitespaceTrimmed(t *testing.T) {
	doc := Parse("Line with trailing spaces   \r\n\r\nNext.")
	if doc.Title != "Line with trailing spaces" {
		t.Errorf("Title = %q", doc.Title)
	}
}

// Every non-blank input line survives parsing somewhere: as the title, a
// section name, a list item, or paragraph text.
func TestParse_NoContentLost(t *testing.T) {
	input := "Overview\n\n1. Grounds\nThe detention was illegal.\n\n" +
		"Steps to take:\n1. File the petition\n2. Serve notice\n\n" +
		"- keep copies\n\nFinal note."

	doc := Parse(input)

	var collected []string
	if doc.Title != "" {
		collected = append(collected, doc.Title)
	}
	for _, sec := range doc.Sections {
		if sec.Name != "" {
			collected = append(collected, sec.Name)
		}
		for _, b := range sec.Blocks {
			if b.Text != "" {
				collected = append(collected, strings.Split(b.Text, "\n")...)
			}
			collected = append(collected, b.Items...)
		}
	}

	for _, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		found := false
		for _, c := range collected {
			if strings.Contains(line, c) || strings.Contains(c, line) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("input line %q lost during parsing", line)
		}
	}
}

// A full answer shape: title, numbered sections, a list run inside a
// section, and loose closing text.
func TestParse_CompleteAnswer(t *testing.T) {
	input := "Anticipatory Bail\n\n" +
		"1. Meaning\n" +
		"A direction to release a person on bail before arrest.\n\n" +
		"2. Procedure\n\n" +
		"1. Apply to the Sessions Court\n" +
		"2. Or apply to the High Court\n\n" +
		"Consult a lawyer for your specific case."

	doc := Parse(input)

	if doc.Title != "Anticipatory Bail" {
		t.Fatalf("Title = %q", doc.Title)
	}
	if len(doc.Sections) != 2 {
		t.Fatalf("got %d sections, want 2", len(doc.Sections))
	}
	if doc.Sections[0].Name != "Meaning" || doc.Sections[1].Name != "Procedure" {
		t.Errorf("sections = %q, %q", doc.Sections[0].Name, doc.Sections[1].Name)
	}

	proc := doc.Sections[1].Blocks
	if len(proc) != 2 {
		t.Fatalf("procedure blocks = %+v", proc)
	}
	if proc[0].Kind != BlockOrderedList || len(proc[0].Items) != 2 {
		t.Errorf("procedure list = %+v", proc[0])
	}
	if proc[1].Kind != BlockParagraph || !strings.HasPrefix(proc[1].Text, "Consult") {
		t.Errorf("closing block = %+v", proc[1])
	}
}
