// Copyright (c) 2025-2026 Nyay Setu Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conversation holds the in-memory conversation transcript.
package conversation

import (
	"sync"

	"github.com/google/uuid"
)

// =============================================================================
// TURNS
// =============================================================================

// Role identifies who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in the transcript. An assistant turn's text grows
// while its reply streams in and is immutable afterwards.
type Turn struct {
	ID   string
	Role Role
	Text string
}

// NewUserTurn creates a user turn for an outgoing question.
func NewUserTurn(text string) *Turn {
	return &Turn{ID: uuid.NewString(), Role: RoleUser, Text: text}
}

// NewAssistantTurn creates an assistant turn seeded with the first
// increment of a reply.
func NewAssistantTurn(text string) *Turn {
	return &Turn{ID: uuid.NewString(), Role: RoleAssistant, Text: text}
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// Transcript is the append-only, chronologically ordered sequence of
// turns for one conversation.
//
// Only two writers exist by design: turn creation on user send, and
// increment merging while a reply streams. The mutex serializes them so
// multi-goroutine callers keep the single-writer guarantee.
type Transcript struct {
	mu    sync.Mutex
	turns []*Turn
}

// New creates an empty transcript.
func New() *Transcript {
	return &Transcript{}
}

// AddUser appends a user turn for an outgoing question.
func (t *Transcript) AddUser(text string) *Turn {
	t.mu.Lock()
	defer t.mu.Unlock()
	turn := NewUserTurn(text)
	t.turns = append(t.turns, turn)
	return turn
}

// Merge folds one streamed increment into the transcript: appended to the
// trailing assistant turn when one exists, otherwise a new assistant turn
// is created from it. Returns the turn that absorbed the increment.
func (t *Transcript) Merge(increment string) *Turn {
	t.mu.Lock()
	defer t.mu.Unlock()

	if last := t.lastLocked(); last != nil && last.Role == RoleAssistant {
		last.Text += increment
		return last
	}

	turn := NewAssistantTurn(increment)
	t.turns = append(t.turns, turn)
	return turn
}

// SetAssistantText overwrites the trailing assistant turn's text, or
// creates the turn when none exists yet. This is the fallback path for a
// session that streamed zero increments.
func (t *Transcript) SetAssistantText(text string) *Turn {
	t.mu.Lock()
	defer t.mu.Unlock()

	if last := t.lastLocked(); last != nil && last.Role == RoleAssistant {
		last.Text = text
		return last
	}

	turn := NewAssistantTurn(text)
	t.turns = append(t.turns, turn)
	return turn
}

// Last returns the most recent turn, or nil for an empty transcript.
func (t *Transcript) Last() *Turn {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastLocked()
}

// Len returns the number of turns.
func (t *Transcript) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.turns)
}

// Turns returns a snapshot of the transcript in chronological order.
func (t *Transcript) Turns() []Turn {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Turn, len(t.turns))
	for i, turn := range t.turns {
		out[i] = *turn
	}
	return out
}

// Clear drops all turns. The caller must not clear while a reply is
// streaming.
func (t *Transcript) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.turns = nil
}

func (t *Transcript) lastLocked() *Turn {
	if len(t.turns) == 0 {
		return nil
	}
	return t.turns[len(t.turns)-1]
}
