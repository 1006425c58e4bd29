// Copyright (c) 2025-2026 Nyay Setu Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package docparse turns a finalized answer string into a structured,
// renderable document using punctuation-based heuristics only: no
// indentation, no markup. The parser is pure and total: it performs no
// I/O and always succeeds, degenerating to a single anonymous paragraph
// section for unstructured input.
//
// Recognized structure:
//
//   - a standalone leading line set off by a blank line becomes the title
//   - "3. Scope" / "2.1 Remedies" / bare "4." open numbered sections
//   - contiguous "1. item" runs of two or more lines form ordered lists
//   - contiguous "- item" runs form unordered lists
//   - everything else accumulates into paragraphs, flushed on blank lines
package docparse
