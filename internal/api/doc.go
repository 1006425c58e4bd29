// Copyright (c) 2025-2026 Nyay Setu Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the HTTP client for the Nyay backend.
//
// The package covers four concerns:
//
//   - A streaming transport (OpenStream) that relays server-sent "token"
//     events for one question, retries once against the localhost/loopback
//     alternate host, and never surfaces a transport error as anything
//     other than an ended session with a token count.
//   - A one-shot fallback requester (AskWithFallback) used only when a
//     stream ends having delivered zero increments.
//   - Retrieval and diagnostics endpoints (Retrieve, DebugLLM, Health,
//     FetchFeatures).
//   - Relevance filtering for retrieved passages (FilterSources).
//
// All network operations take a context.Context and fail soft: errors are
// categorized through ClientError so callers can degrade instead of crash.
package api
