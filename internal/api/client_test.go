// Copyright (c) 2025-2026 Nyay Setu Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// newTestClient points a client at a mock backend with the standard prefix.
func newTestClient(serverURL string) *Client {
	return NewClientWithConfig(&ClientConfig{
		BaseURL:   serverURL,
		APIPrefix: "/api",
		Timeout:   2 * time.Second,
	})
}

// =============================================================================
// CONFIGURATION TESTS
// =============================================================================

func TestNewClientWithConfig_FillsDefaults(t *testing.T) {
	client := NewClientWithConfig(&ClientConfig{})
	cfg := client.GetConfig()

	if cfg.BaseURL != "http://127.0.0.1:8000" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.APIPrefix != "/api" {
		t.Errorf("APIPrefix = %q", cfg.APIPrefix)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}
	if cfg.IdleTimeout != 90*time.Second {
		t.Errorf("IdleTimeout = %v", cfg.IdleTimeout)
	}
}

func TestNewClientWithConfig_NilUsesDefaults(t *testing.T) {
	client := NewClientWithConfig(nil)
	if client.GetConfig().BaseURL == "" {
		t.Error("nil config must fall back to defaults")
	}
}

func TestAlternateBaseOverride(t *testing.T) {
	client := NewClientWithConfig(&ClientConfig{
		BaseURL:      "http://nyay.example.com:8000",
		AlternateURL: "http://10.0.0.5:8000",
	})
	alt, ok := client.alternateBase()
	if !ok || alt != "http://10.0.0.5:8000" {
		t.Errorf("alternateBase() = (%q, %v), want configured override", alt, ok)
	}
}

// =============================================================================
// LIVENESS TESTS
// =============================================================================

// The liveness probe targets the server root, not the API prefix.
func TestHealth_BypassesAPIPrefix(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	if err := client.Health(context.Background()); err != nil {
		t.Fatalf("Health() error = %v", err)
	}
	if gotPath != "/health/live" {
		t.Errorf("probe path = %q, want /health/live", gotPath)
	}
}

func TestHealth_Unreachable(t *testing.T) {
	client := newTestClient("http://127.0.0.1:1")

	err := client.Health(context.Background())
	if err == nil {
		t.Fatal("Health() against a closed port must fail")
	}
	if !IsUnreachable(err) {
		t.Errorf("IsUnreachable(%v) = false", err)
	}
}

func TestHealth_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	if err := newTestClient(server.URL).Health(context.Background()); err == nil {
		t.Error("Health() must reject a non-200 status")
	}
}

// =============================================================================
// CLIENT FEATURES TESTS
// =============================================================================

func TestFetchFeatures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/client-config" {
			t.Errorf("path = %q, want /api/client-config", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"markdown": true, "future_flag": 1}`))
	}))
	defer server.Close()

	features, err := newTestClient(server.URL).FetchFeatures(context.Background())
	if err != nil {
		t.Fatalf("FetchFeatures() error = %v", err)
	}
	if !features.Markdown {
		t.Error("Markdown = false, want true")
	}
}

func TestFetchFeatures_FailureIsZeroValue(t *testing.T) {
	client := newTestClient("http://127.0.0.1:1")
	features, err := client.FetchFeatures(context.Background())
	if err == nil {
		t.Fatal("expected error from unreachable backend")
	}
	if features.Markdown {
		t.Error("failed fetch must leave features at their zero value")
	}
}

// =============================================================================
// RETRIEVAL TESTS
// =============================================================================

func TestRetrieve(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat/debug/retrieve" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("query"); got != "article 21" {
			t.Errorf("query = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"contexts": [
			{"doc_id": "constitution", "chunk_id": 3, "text": "No person shall be deprived...", "score": 0.91},
			{"doc_id": "crpc", "chunk_id": 12, "text": "...", "score": 0.41}
		]}`))
	}))
	defer server.Close()

	passages, err := newTestClient(server.URL).Retrieve(context.Background(), "article 21", 6)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(passages) != 2 {
		t.Fatalf("got %d passages, want 2", len(passages))
	}
	if passages[0].DocID != "constitution" || passages[0].ChunkID != 3 {
		t.Errorf("first passage = %+v", passages[0])
	}
}

func TestRetrieve_ClampsTopK(t *testing.T) {
	tests := []struct {
		topK int
		want string
	}{
		{0, "1"},
		{-5, "1"},
		{6, "6"},
		{20, "20"},
		{100, "20"},
	}

	var gotTopK string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTopK = r.URL.Query().Get("top_k")
		w.Write([]byte(`{"contexts": []}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	for _, tt := range tests {
		if _, err := client.Retrieve(context.Background(), "q", tt.topK); err != nil {
			t.Fatalf("Retrieve(topK=%d) error = %v", tt.topK, err)
		}
		if gotTopK != tt.want {
			t.Errorf("Retrieve(topK=%d) sent top_k=%q, want %q", tt.topK, gotTopK, tt.want)
		}
	}
}

// =============================================================================
// DIAGNOSTICS TESTS
// =============================================================================

func TestDebugLLM(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat/debug/llm" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"env_provider": "google",
			"resolved_provider": "google",
			"resolved_model": "gemini-2.0-flash",
			"has_google_key": true
		}`))
	}))
	defer server.Close()

	info, err := newTestClient(server.URL).DebugLLM(context.Background())
	if err != nil {
		t.Fatalf("DebugLLM() error = %v", err)
	}
	if info.ResolvedModel != "gemini-2.0-flash" || !info.HasGoogleKey {
		t.Errorf("info = %+v", info)
	}
	if info.InitError != "" {
		t.Errorf("InitError = %q, want empty", info.InitError)
	}
}

// =============================================================================
// ERROR TAXONOMY TESTS
// =============================================================================

func TestErrorTypeString(t *testing.T) {
	tests := []struct {
		typ  ErrorType
		want string
	}{
		{ErrTypeUnreachable, "unreachable"},
		{ErrTypeTimeout, "timeout"},
		{ErrTypeTransport, "transport"},
		{ErrTypeInvalidResponse, "invalid_response"},
		{ErrTypeExhausted, "exhausted"},
		{ErrTypeBusy, "busy"},
		{ErrTypeUnknown, "unknown"},
		{ErrorType(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("ErrorType(%d).String() = %q, want %q", tt.typ, got, tt.want)
		}
	}
}

func TestClientError_Unwrap(t *testing.T) {
	cause := context.DeadlineExceeded
	err := &ClientError{Type: ErrTypeTimeout, Message: "slow", Cause: cause}

	if err.Error() != "slow: context deadline exceeded" {
		t.Errorf("Error() = %q", err.Error())
	}
	if err.Unwrap() != cause {
		t.Error("Unwrap() must expose the cause")
	}
	if !IsTimeout(err) {
		t.Error("IsTimeout must match on Type")
	}
}
