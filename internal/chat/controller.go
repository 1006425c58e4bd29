// Copyright (c) 2025-2026 Nyay Setu Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat coordinates one conversation against the Nyay backend.
package chat

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/nyaysetu/nyay-cli/internal/api"
	"github.com/nyaysetu/nyay-cli/internal/conversation"
)

// ErrBusy is returned when a question is sent while a reply is still
// streaming. The rejected send has no side effect on the transcript.
var ErrBusy = &api.ClientError{Type: api.ErrTypeBusy, Message: "a question is already in flight"}

// =============================================================================
// EVENTS
// =============================================================================

// Events carries the callbacks a frontend registers with the controller.
// All callbacks fire sequentially from the session goroutine; none fires
// after the session they belong to was cancelled or superseded.
type Events struct {
	// OnToken receives each streamed increment after it has been merged
	// into the transcript.
	OnToken func(token string)

	// OnAnswer fires once per question with the finalized assistant
	// turn. fromFallback is true when the text came from the one-shot
	// fallback (or its failure substitution) instead of the stream.
	OnAnswer func(turn conversation.Turn, fromFallback bool)

	// OnSources delivers the filtered supporting passages for the
	// answered question. It fires with a nil slice when retrieval was
	// disabled, throttled, or failed.
	OnSources func(sources []api.SourcePassage)
}

// =============================================================================
// OPTIONS
// =============================================================================

// Retrieval configures the supporting-passage fetch that follows each
// answer.
type Retrieval struct {
	Enabled  bool
	TopK     int
	MinScore float64
	MaxShown int
}

// Options configures a Controller.
type Options struct {
	Retrieval Retrieval
}

// DefaultOptions returns the default controller options.
func DefaultOptions() Options {
	return Options{
		Retrieval: Retrieval{
			Enabled:  true,
			TopK:     6,
			MinScore: api.MinSourceScore,
			MaxShown: api.MaxSources,
		},
	}
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller owns one conversation: the transcript, the single in-flight
// streaming session, the zero-increment fallback, and source retrieval.
//
// At most one session is active at a time. Every stream callback carries
// the session ownership token minted at send time, so a stale callback
// from a cancelled or superseded session can never mutate a newer turn.
type Controller struct {
	mu sync.Mutex

	client     *api.Client
	transcript *conversation.Transcript
	events     Events
	retrieval  Retrieval

	// limiter throttles hits on the retrieval debug endpoint.
	limiter *rate.Limiter

	session   *api.StreamSession
	sessionID string
}

// NewController creates a controller around a backend client.
func NewController(client *api.Client, events Events, opts Options) *Controller {
	if opts.Retrieval.TopK <= 0 {
		opts.Retrieval.TopK = 6
	}
	if opts.Retrieval.MaxShown <= 0 {
		opts.Retrieval.MaxShown = api.MaxSources
	}

	return &Controller{
		client:     client,
		transcript: conversation.New(),
		events:     events,
		retrieval:  opts.Retrieval,
		limiter:    rate.NewLimiter(rate.Every(2*time.Second), 3),
	}
}

// Transcript exposes the conversation transcript.
func (c *Controller) Transcript() *conversation.Transcript {
	return c.transcript
}

// IsStreaming reports whether a reply is currently in flight.
func (c *Controller) IsStreaming() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session != nil
}

// Send submits a question. It appends the user turn, opens a streaming
// session and returns immediately; the registered Events receive the
// reply. A send while a session is active is rejected with ErrBusy and
// leaves the transcript untouched.
func (c *Controller) Send(ctx context.Context, question string) error {
	if question == "" {
		return api.ErrEmptyQuestion
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil {
		return ErrBusy
	}

	sid := uuid.NewString()
	c.sessionID = sid
	c.transcript.AddUser(question)

	handler := api.StreamHandler{
		OnToken: func(token string) {
			if !c.owns(sid) {
				return
			}
			c.transcript.Merge(token)
			if c.events.OnToken != nil {
				c.events.OnToken(token)
			}
		},
		OnEnd: func(info api.EndInfo) {
			c.finishSession(ctx, sid, question, info)
		},
	}

	session, err := c.client.OpenStream(ctx, question, handler)
	if err != nil {
		c.sessionID = ""
		return err
	}

	c.session = session
	return nil
}

// Cancel tears down the in-flight session, if any. Safe to call at any
// time; cancelling twice or after completion is a no-op. No OnAnswer
// fires for a cancelled question.
func (c *Controller) Cancel() {
	c.mu.Lock()
	session := c.session
	c.session = nil
	c.sessionID = ""
	c.mu.Unlock()

	if session != nil {
		session.Cancel()
	}
}

// owns reports whether the given ownership token still names the active
// session.
func (c *Controller) owns(sid string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID == sid
}

// finishSession resolves the end of a streaming session: the fallback
// path for a zero-increment stream, the OnAnswer notification, and the
// follow-up source retrieval.
func (c *Controller) finishSession(ctx context.Context, sid, question string, info api.EndInfo) {
	c.mu.Lock()
	if c.sessionID != sid {
		// A stale end event from a superseded session.
		c.mu.Unlock()
		return
	}
	c.session = nil
	c.sessionID = ""
	c.mu.Unlock()

	fromFallback := false
	if info.Tokens == 0 {
		log.Debug().Err(info.Err).Msg("stream delivered zero increments, invoking fallback")
		answer, err := c.client.AskWithFallback(ctx, question)
		if err != nil {
			log.Debug().Err(err).Msg("fallback exhausted, substituting failure answer")
			answer = api.UnreachableAnswer
		}
		c.transcript.SetAssistantText(answer)
		fromFallback = true
	}

	if c.events.OnAnswer != nil {
		if turn := c.transcript.Last(); turn != nil {
			c.events.OnAnswer(*turn, fromFallback)
		}
	}

	if c.events.OnSources != nil {
		c.events.OnSources(c.fetchSources(ctx, question))
	}
}

// fetchSources retrieves and filters supporting passages. Every failure
// mode degrades to "no sources": retrieval must never block or fail the
// answer flow.
func (c *Controller) fetchSources(ctx context.Context, question string) []api.SourcePassage {
	if !c.retrieval.Enabled {
		return nil
	}
	if !c.limiter.Allow() {
		log.Debug().Msg("source retrieval throttled")
		return nil
	}

	passages, err := c.client.Retrieve(ctx, question, c.retrieval.TopK)
	if err != nil {
		log.Debug().Err(err).Msg("source retrieval failed, showing no sources")
		return nil
	}

	return api.FilterSources(passages, c.retrieval.MinScore, c.retrieval.MaxShown)
}
