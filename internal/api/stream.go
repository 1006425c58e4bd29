// Copyright (c) 2025-2026 Nyay Setu Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for communicating with the Nyay backend.
package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// =============================================================================
// STREAM STATES
// =============================================================================

// StreamState is the lifecycle state of a streaming session.
type StreamState int

const (
	// StateConnecting means a connection attempt is in flight but no
	// increment has arrived yet.
	StateConnecting StreamState = iota

	// StateStreaming means at least one increment has been delivered on
	// the currently active host.
	StateStreaming

	// StateEnded is terminal: the stream finished or failed for good.
	StateEnded

	// StateCancelled is terminal: the caller tore the session down.
	StateCancelled
)

// String returns a human-readable state name.
func (s StreamState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateStreaming:
		return "streaming"
	case StateEnded:
		return "ended"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// =============================================================================
// HANDLER
// =============================================================================

// EndInfo describes how a streaming session ended.
type EndInfo struct {
	// Tokens is the total number of increments delivered over the whole
	// session, across any host switch.
	Tokens int

	// Err is the final transport error when the session ended without a
	// clean end-of-stream signal. Nil on normal completion.
	Err error
}

// StreamHandler receives streaming callbacks. Both callbacks are invoked
// sequentially from the session goroutine, in receipt order; neither is
// invoked after Cancel.
type StreamHandler struct {
	// OnToken receives one increment of answer text.
	OnToken func(token string)

	// OnEnd fires exactly once when the session reaches a terminal state
	// other than cancellation. A failed session reports Tokens so the
	// caller can detect the zero-increment outcome and fall back.
	OnEnd func(info EndInfo)
}

// ErrEmptyQuestion is returned when OpenStream is called without a question.
var ErrEmptyQuestion = &ClientError{Type: ErrTypeTransport, Message: "question must not be empty"}

// errStreamEnded signals a clean end-of-stream inside the session loop.
var errStreamEnded = errors.New("stream ended")

// =============================================================================
// STREAM SESSION
// =============================================================================

// StreamSession owns one live streaming exchange for a single question.
// At most one increment source is active at a time: on a transport error
// the session retries once against the alternate host, then gives up.
type StreamSession struct {
	mu sync.Mutex

	state     StreamState
	altTried  bool
	tokens    int
	cancelled bool

	// cancelAttempt aborts the currently active connection attempt.
	cancelAttempt context.CancelFunc
}

// State returns the current session state.
func (s *StreamSession) State() StreamState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Tokens returns how many increments have been delivered so far.
func (s *StreamSession) Tokens() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens
}

// Cancel tears the session down: the underlying connection is closed and
// no further callbacks are invoked, OnEnd included. Cancelling twice, or
// cancelling after natural completion, is a no-op.
func (s *StreamSession) Cancel() {
	s.mu.Lock()
	if s.cancelled || s.state == StateEnded {
		s.mu.Unlock()
		return
	}
	s.cancelled = true
	s.state = StateCancelled
	cancel := s.cancelAttempt
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// deliverToken invokes the token callback unless the session was cancelled.
func (s *StreamSession) deliverToken(token string, handler StreamHandler) bool {
	s.mu.Lock()
	if s.cancelled {
		s.mu.Unlock()
		return false
	}
	s.state = StateStreaming
	s.tokens++
	s.mu.Unlock()

	if handler.OnToken != nil {
		handler.OnToken(token)
	}
	return true
}

// finish moves the session to its terminal state and fires OnEnd, unless
// the caller already cancelled.
func (s *StreamSession) finish(err error, handler StreamHandler) {
	s.mu.Lock()
	if s.cancelled {
		s.mu.Unlock()
		return
	}
	s.state = StateEnded
	tokens := s.tokens
	s.mu.Unlock()

	if handler.OnEnd != nil {
		handler.OnEnd(EndInfo{Tokens: tokens, Err: err})
	}
}

// setAttemptCancel records the cancel func of the active attempt, or
// reports false when the session is already cancelled.
func (s *StreamSession) setAttemptCancel(cancel context.CancelFunc) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelled {
		return false
	}
	s.cancelAttempt = cancel
	s.state = StateConnecting
	return true
}

// markAltTried flips the alternate-host flag, returning false when the
// alternate was already used.
func (s *StreamSession) markAltTried() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.altTried {
		return false
	}
	s.altTried = true
	return true
}

func (s *StreamSession) isCancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelled
}

// =============================================================================
// OPENING A STREAM
// =============================================================================

// OpenStream starts a streaming exchange for one question.
//
// Increments arrive through handler.OnToken in receipt order. On a
// transport error the session switches to the alternate host once; a
// switch starts a fresh increment sequence but already-delivered
// increments stand. handler.OnEnd fires exactly once unless the caller
// cancels first.
func (c *Client) OpenStream(ctx context.Context, question string, handler StreamHandler) (*StreamSession, error) {
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	session := &StreamSession{state: StateConnecting}
	go c.runStream(ctx, session, question, handler)
	return session, nil
}

// runStream drives the session until a terminal state.
func (c *Client) runStream(ctx context.Context, s *StreamSession, question string, handler StreamHandler) {
	base := c.config.BaseURL

	for {
		err := c.streamOnce(ctx, s, base, question, handler)
		if err == nil || errors.Is(err, errStreamEnded) {
			s.finish(nil, handler)
			return
		}
		if s.isCancelled() {
			return
		}

		alt, ok := c.alternateBase()
		if ok && alt != base && s.markAltTried() {
			log.Debug().Str("from", base).Str("to", alt).Err(err).Msg("stream transport error, switching host")
			base = alt
			continue
		}

		log.Debug().Str("host", base).Err(err).Msg("stream failed with no alternate left")
		s.finish(err, handler)
		return
	}
}

// streamOnce opens one connection against a single host and relays its
// events. Returns errStreamEnded on a clean end event, or a transport
// error otherwise.
func (c *Client) streamOnce(ctx context.Context, s *StreamSession, base, question string, handler StreamHandler) error {
	attemptCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if !s.setAttemptCancel(cancel) {
		return nil
	}

	params := url.Values{}
	params.Set("query", question)
	endpoint := c.apiURL(base, "/chat/stream") + "?" + params.Encode()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &ClientError{Type: ErrTypeTransport, Message: "failed to create stream request", Cause: err}
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	// No client-level timeout on a long-lived stream; silence is bounded
	// by the idle timer instead.
	streamClient := &http.Client{}

	// The idle timer aborts the attempt when the backend goes silent.
	// It is armed before the request so a server that accepts the
	// connection but never sends headers cannot hang the session;
	// expiry is indistinguishable from any other transport error.
	idle := time.AfterFunc(c.config.IdleTimeout, cancel)
	defer idle.Stop()

	resp, err := streamClient.Do(req)
	if err != nil {
		return &ClientError{Type: ErrTypeTransport, Message: "failed to open stream", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &ClientError{
			Type:    ErrTypeTransport,
			Message: "stream request failed: " + resp.Status,
		}
	}

	idle.Reset(c.config.IdleTimeout)

	reader := NewEventReader(resp.Body)
	for {
		ev, err := reader.Next()
		if err != nil {
			// EOF without an end event means the connection dropped
			// mid-stream.
			return &ClientError{Type: ErrTypeTransport, Message: "stream connection dropped", Cause: err}
		}

		idle.Reset(c.config.IdleTimeout)

		switch ev.Name {
		case "token":
			if !s.deliverToken(ev.Data, handler) {
				return nil
			}
		case "end":
			return errStreamEnded
		default:
			// Unknown events are ignored for forward compatibility.
		}
	}
}
