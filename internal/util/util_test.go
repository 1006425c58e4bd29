// Copyright (c) 2025-2026 Nyay Setu Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"testing"
)

// =============================================================================
// STRING TESTS
// =============================================================================

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxRunes int
		want     string
	}{
		{"shorter than limit", "hello", 10, "hello"},
		{"exactly at limit", "hello", 5, "hello"},
		{"truncated with ellipsis", "hello world", 8, "hello..."},
		{"tiny limit keeps raw cut", "hello", 3, "hel"},
		{"zero limit", "hello", 0, ""},
		{"negative limit", "hello", -1, ""},
		{"devanagari preserved", "अनुच्छेद इक्कीस", 6, "अनु..."},
		{"empty input", "", 5, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateRunes(tt.input, tt.maxRunes); got != tt.want {
				t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tt.input, tt.maxRunes, got, tt.want)
			}
		})
	}
}

func TestTruncateWidth(t *testing.T) {
	// Fits within the column budget.
	if got := TruncateWidth("short", 10); got != "short" {
		t.Errorf("TruncateWidth = %q", got)
	}

	// Truncation appends the ellipsis and never exceeds the budget.
	got := TruncateWidth("a much longer line of text", 10)
	if StringWidth(got) > 10 {
		t.Errorf("TruncateWidth width = %d, want <= 10", StringWidth(got))
	}
	if got == "a much longer line of text" {
		t.Error("TruncateWidth did not truncate")
	}

	if got := TruncateWidth("anything", 0); got != "" {
		t.Errorf("TruncateWidth(_, 0) = %q", got)
	}
}

func TestStringWidth(t *testing.T) {
	if got := StringWidth("abc"); got != 3 {
		t.Errorf("StringWidth(abc) = %d", got)
	}
	// CJK characters occupy two columns each.
	if got := StringWidth("你好"); got != 4 {
		t.Errorf("StringWidth(你好) = %d, want 4", got)
	}
}

func TestRuneLen(t *testing.T) {
	if got := RuneLen("abc"); got != 3 {
		t.Errorf("RuneLen(abc) = %d", got)
	}
	if got := RuneLen("न्याय"); got != 5 {
		t.Errorf("RuneLen(न्याय) = %d, want 5", got)
	}
}

// =============================================================================
// CONVERSION TESTS
// =============================================================================

func TestFloatToString(t *testing.T) {
	tests := []struct {
		input float64
		want  string
	}{
		{0.35, "0.35"},
		{0.9, "0.90"},
		{1, "1.00"},
		{0.456, "0.46"},
	}
	for _, tt := range tests {
		if got := FloatToString(tt.input); got != tt.want {
			t.Errorf("FloatToString(%v) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFloatToStringPrec(t *testing.T) {
	if got := FloatToStringPrec(0.12345, 3); got != "0.123" {
		t.Errorf("FloatToStringPrec = %q", got)
	}
}

func TestIntToString(t *testing.T) {
	if got := IntToString(42); got != "42" {
		t.Errorf("IntToString = %q", got)
	}
}

// =============================================================================
// ATOMIC WRITE TESTS
// =============================================================================

func TestAtomicWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	if err := AtomicWriteFile(path, []byte("first"), 0600); err != nil {
		t.Fatalf("AtomicWriteFile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "first" {
		t.Errorf("content = %q", data)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("permissions = %v, want 0600", info.Mode().Perm())
	}

	// Overwrite replaces the content in full.
	if err := AtomicWriteFile(path, []byte("second"), 0600); err != nil {
		t.Fatalf("overwrite error = %v", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != "second" {
		t.Errorf("content after overwrite = %q", data)
	}

	// No stray temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want just the target file", len(entries))
	}
}
