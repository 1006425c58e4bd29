// Copyright (c) 2025-2026 Nyay Setu Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/nyaysetu/nyay-cli/internal/config"
)

// =============================================================================
// ASK COMMAND TESTS
// =============================================================================

// captureStdout runs fn with os.Stdout redirected to a pipe and returns
// everything written to it.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe() error = %v", err)
	}
	os.Stdout = w
	defer func() { os.Stdout = old }()

	fn()

	w.Close()
	os.Stdout = old
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("reading captured stdout: %v", err)
	}
	return string(out)
}

// A backend whose stream ends without a single token forces the direct
// ask fallback; the fallback answer must still reach stdout in plain
// (live-streaming) mode, where no token events ever print it.
func TestHandleAskCommand_PrintsFallbackAnswerInPlainMode(t *testing.T) {
	config.ResetGlobalForTesting()
	t.Cleanup(config.ResetGlobalForTesting)

	const answer = "Answers must arrive even when streaming is disabled."

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/chat/stream":
			flusher := w.(http.Flusher)
			w.Header().Set("Content-Type", "text/event-stream")
			fmt.Fprint(w, "event: end\ndata: [DONE]\n\n")
			flusher.Flush()
		case "/api/chat/ask":
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"answer": answer})
		default:
			t.Errorf("unexpected request path %q", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	args := Args{
		Query:     "what is anticipatory bail",
		Backend:   server.URL,
		Plain:     true,
		Quiet:     true,
		NoSources: true,
	}

	var cmdErr error
	out := captureStdout(t, func() {
		cmdErr = HandleAskCommand(args)
	})

	if cmdErr != nil {
		t.Fatalf("HandleAskCommand() error = %v", cmdErr)
	}
	if !strings.Contains(out, answer) {
		t.Errorf("stdout = %q, want it to contain the fallback answer %q", out, answer)
	}
}

// A streamed answer in plain mode prints through the live token path.
func TestHandleAskCommand_PrintsStreamedAnswerInPlainMode(t *testing.T) {
	config.ResetGlobalForTesting()
	t.Cleanup(config.ResetGlobalForTesting)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat/stream" {
			t.Errorf("unexpected request path %q", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		flusher := w.(http.Flusher)
		w.Header().Set("Content-Type", "text/event-stream")
		for _, token := range []string{"Bail ", "is ", "discretionary."} {
			fmt.Fprintf(w, "event: token\ndata: %s\n\n", token)
			flusher.Flush()
		}
		fmt.Fprint(w, "event: end\ndata: [DONE]\n\n")
		flusher.Flush()
	}))
	defer server.Close()

	args := Args{
		Query:     "is bail discretionary",
		Backend:   server.URL,
		Plain:     true,
		Quiet:     true,
		NoSources: true,
	}

	var cmdErr error
	out := captureStdout(t, func() {
		cmdErr = HandleAskCommand(args)
	})

	if cmdErr != nil {
		t.Fatalf("HandleAskCommand() error = %v", cmdErr)
	}
	if !strings.Contains(out, "Bail is discretionary.") {
		t.Errorf("stdout = %q, want the streamed answer", out)
	}
}
