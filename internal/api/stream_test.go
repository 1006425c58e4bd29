// Copyright (c) 2025-2026 Nyay Setu Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// =============================================================================
// STREAM TEST HELPERS
// =============================================================================

// sseHandler writes the given tokens as an event stream. When end is true
// the stream terminates cleanly; otherwise the connection just drops.
func sseHandler(t *testing.T, tokens []string, end bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t.Helper()
		if r.URL.Path != "/api/chat/stream" {
			t.Errorf("path = %q, want /api/chat/stream", r.URL.Path)
		}
		flusher, ok := w.(http.Flusher)
		if !ok {
			t.Fatal("response writer does not support flushing")
		}
		w.Header().Set("Content-Type", "text/event-stream")

		for _, token := range tokens {
			fmt.Fprintf(w, "event: token\ndata: %s\n\n", token)
			flusher.Flush()
		}
		if end {
			fmt.Fprint(w, "event: end\ndata: [DONE]\n\n")
			flusher.Flush()
		}
	}
}

// collectStream opens a session and drains it to completion.
func collectStream(t *testing.T, client *Client, question string) ([]string, EndInfo, *StreamSession) {
	t.Helper()

	var tokens []string
	endCh := make(chan EndInfo, 1)

	session, err := client.OpenStream(context.Background(), question, StreamHandler{
		OnToken: func(token string) { tokens = append(tokens, token) },
		OnEnd:   func(info EndInfo) { endCh <- info },
	})
	if err != nil {
		t.Fatalf("OpenStream() error = %v", err)
	}

	select {
	case info := <-endCh:
		return tokens, info, session
	case <-time.After(5 * time.Second):
		t.Fatal("stream did not end within 5s")
		return nil, EndInfo{}, nil
	}
}

// =============================================================================
// STREAM SESSION TESTS
// =============================================================================

func TestOpenStream_DeliversTokensInOrder(t *testing.T) {
	want := []string{"Article", " 21", " protects", " life."}
	server := httptest.NewServer(sseHandler(t, want, true))
	defer server.Close()

	tokens, info, session := collectStream(t, newTestClient(server.URL), "article 21")

	if strings.Join(tokens, "") != "Article 21 protects life." {
		t.Errorf("concatenated tokens = %q", strings.Join(tokens, ""))
	}
	if info.Err != nil {
		t.Errorf("EndInfo.Err = %v, want nil", info.Err)
	}
	if info.Tokens != len(want) {
		t.Errorf("EndInfo.Tokens = %d, want %d", info.Tokens, len(want))
	}
	if session.State() != StateEnded {
		t.Errorf("State() = %v, want ended", session.State())
	}
}

func TestOpenStream_EmptyQuestion(t *testing.T) {
	_, err := NewClient().OpenStream(context.Background(), "", StreamHandler{})
	if err == nil {
		t.Fatal("empty question must be rejected")
	}
}

// A connection dropped mid-stream triggers exactly one switch to the
// alternate host. Increments delivered before the drop stand; the total
// spans both hosts.
func TestOpenStream_SwitchesHostOnce(t *testing.T) {
	primary := httptest.NewServer(sseHandler(t, []string{"Right", " to"}, false))
	defer primary.Close()

	alternate := httptest.NewServer(sseHandler(t, []string{"Right", " to", " life"}, true))
	defer alternate.Close()

	client := NewClientWithConfig(&ClientConfig{
		BaseURL:      primary.URL,
		AlternateURL: alternate.URL,
	})

	tokens, info, _ := collectStream(t, client, "q")

	if info.Err != nil {
		t.Fatalf("EndInfo.Err = %v, want nil after successful switch", info.Err)
	}
	// 2 from the primary plus 3 from the alternate.
	if info.Tokens != 5 {
		t.Errorf("EndInfo.Tokens = %d, want 5", info.Tokens)
	}
	if len(tokens) != 5 {
		t.Errorf("delivered %d tokens, want 5", len(tokens))
	}
}

// When both hosts fail before any increment arrives, OnEnd reports zero
// tokens so the caller can fall back to the one-shot endpoint.
func TestOpenStream_ZeroIncrementFailure(t *testing.T) {
	failing := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	primary := httptest.NewServer(failing)
	defer primary.Close()
	alternate := httptest.NewServer(failing)
	defer alternate.Close()

	client := NewClientWithConfig(&ClientConfig{
		BaseURL:      primary.URL,
		AlternateURL: alternate.URL,
	})

	tokens, info, _ := collectStream(t, client, "q")

	if len(tokens) != 0 {
		t.Errorf("delivered %d tokens, want 0", len(tokens))
	}
	if info.Tokens != 0 {
		t.Errorf("EndInfo.Tokens = %d, want 0", info.Tokens)
	}
	if info.Err == nil {
		t.Error("EndInfo.Err = nil, want transport error")
	}
}

// A server that accepts the connection but never sends response headers
// must not hang the session: the idle timer covers the connect phase.
func TestOpenStream_IdleTimeoutCoversConnect(t *testing.T) {
	release := make(chan struct{})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release // never write headers
	}))
	defer server.Close()
	defer close(release)

	// The derived loopback alternate points at the same server, so
	// both attempts hang the same way.
	client := NewClientWithConfig(&ClientConfig{
		BaseURL:     server.URL,
		IdleTimeout: 200 * time.Millisecond,
	})

	tokens, info, _ := collectStream(t, client, "q")

	if len(tokens) != 0 {
		t.Errorf("delivered %d tokens, want 0", len(tokens))
	}
	if info.Err == nil {
		t.Error("EndInfo.Err = nil, want transport error from idle timeout")
	}
}

// Silence after delivered tokens also trips the idle timer.
func TestOpenStream_IdleTimeoutDuringStream(t *testing.T) {
	release := make(chan struct{})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "event: token\ndata: partial\n\n")
		flusher.Flush()
		<-release // go silent without an end event
	}))
	defer server.Close()
	defer close(release)

	client := NewClientWithConfig(&ClientConfig{
		BaseURL:     server.URL,
		IdleTimeout: 200 * time.Millisecond,
	})

	// The derived loopback alternate hits the same server, so both
	// attempts deliver one token before the silence trips the timer.
	tokens, info, _ := collectStream(t, client, "q")

	if len(tokens) != 2 {
		t.Errorf("delivered %d tokens, want 2 (one per attempted host)", len(tokens))
	}
	if info.Err == nil {
		t.Error("EndInfo.Err = nil, want transport error from idle timeout")
	}
}

// Cancellation suppresses every later callback, OnEnd included.
func TestStreamSession_Cancel(t *testing.T) {
	firstToken := make(chan struct{})
	release := make(chan struct{})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "event: token\ndata: partial\n\n")
		flusher.Flush()
		<-release
	}))
	defer server.Close()
	defer close(release)

	ended := make(chan EndInfo, 1)
	client := newTestClient(server.URL)
	session, err := client.OpenStream(context.Background(), "q", StreamHandler{
		OnToken: func(string) {
			select {
			case firstToken <- struct{}{}:
			default:
			}
		},
		OnEnd: func(info EndInfo) { ended <- info },
	})
	if err != nil {
		t.Fatalf("OpenStream() error = %v", err)
	}

	select {
	case <-firstToken:
	case <-time.After(5 * time.Second):
		t.Fatal("first token never arrived")
	}

	session.Cancel()

	if session.State() != StateCancelled {
		t.Errorf("State() = %v, want cancelled", session.State())
	}

	select {
	case info := <-ended:
		t.Errorf("OnEnd fired after Cancel: %+v", info)
	case <-time.After(200 * time.Millisecond):
	}

	// Cancelling twice is a no-op.
	session.Cancel()
}

func TestStreamState_String(t *testing.T) {
	tests := []struct {
		state StreamState
		want  string
	}{
		{StateConnecting, "connecting"},
		{StateStreaming, "streaming"},
		{StateEnded, "ended"},
		{StateCancelled, "cancelled"},
		{StreamState(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("StreamState(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
