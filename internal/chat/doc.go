// Copyright (c) 2025-2026 Nyay Setu Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat glues the streaming transport, the transcript, the
// one-shot fallback and source retrieval into one conversation
// controller. Frontends register Events callbacks and call Send; the
// controller guarantees a single in-flight session and an assistant turn
// that is never left empty.
package chat
