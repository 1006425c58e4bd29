// Copyright (c) 2025-2026 Nyay Setu Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conversation models the chat transcript: an append-only
// sequence of user and assistant turns, with increment merging for the
// in-flight reply. Nothing here is persisted; the transcript lives and
// dies with the process.
package conversation
