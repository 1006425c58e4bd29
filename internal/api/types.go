// Copyright (c) 2025-2026 Nyay Setu Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for communicating with the Nyay backend.
package api

// =============================================================================
// WIRE TYPES
// =============================================================================

// AskRequest is the JSON body for the one-shot ask endpoint.
type AskRequest struct {
	Query string `json:"query"`
}

// AskResponse is the reply shape shared by the structured and degraded
// ask variants.
type AskResponse struct {
	Answer string `json:"answer"`
}

// Features holds the public client configuration flags served by the
// backend. Unknown flags are ignored so older clients keep working.
type Features struct {
	// Markdown switches answer rendering from the structured parser to
	// a generic markdown renderer.
	Markdown bool `json:"markdown"`
}

// SourcePassage is one retrieved supporting passage.
type SourcePassage struct {
	DocID   string  `json:"doc_id"`
	ChunkID int     `json:"chunk_id"`
	Text    string  `json:"text"`
	Score   float64 `json:"score"`
}

// RetrieveResponse wraps the retrieval debug endpoint reply.
type RetrieveResponse struct {
	Contexts []SourcePassage `json:"contexts"`
}

// LLMInfo reports the backend's resolved LLM provider and model.
// No secrets are ever included in this payload.
type LLMInfo struct {
	EnvProvider      string `json:"env_provider"`
	EnvModel         string `json:"env_model"`
	ResolvedProvider string `json:"resolved_provider"`
	ResolvedModel    string `json:"resolved_model"`
	HasOpenAIKey     bool   `json:"has_openai_key"`
	HasGoogleKey     bool   `json:"has_google_key"`
	InitError        string `json:"init_error,omitempty"`
}
