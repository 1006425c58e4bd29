// Copyright (c) 2025-2026 Nyay Setu Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for communicating with the Nyay backend.
package api

// Display defaults for retrieved passages. MinSourceScore mirrors the
// backend's relevance cutoff.
const (
	MinSourceScore = 0.35
	MaxSources     = 3
)

// FilterSources keeps the passages worth showing: relevance score at or
// above minScore, original relative order preserved, at most max entries.
// A passage whose score was absent on the wire decodes to 0 and is
// excluded by the default threshold.
func FilterSources(passages []SourcePassage, minScore float64, max int) []SourcePassage {
	if max <= 0 || len(passages) == 0 {
		return nil
	}

	filtered := make([]SourcePassage, 0, max)
	for _, p := range passages {
		if p.Score < minScore {
			continue
		}
		filtered = append(filtered, p)
		if len(filtered) == max {
			break
		}
	}

	if len(filtered) == 0 {
		return nil
	}
	return filtered
}
