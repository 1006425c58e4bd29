// Copyright (c) 2025-2026 Nyay Setu Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for communicating with the Nyay backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/rs/zerolog/log"
)

// UnreachableAnswer is the fixed answer text the caller substitutes when
// every fallback attempt fails. The assistant turn must never be left
// empty.
const UnreachableAnswer = "Sorry, I can't reach the Nyay service right now. " +
	"Please check that the backend is running and try again."

// =============================================================================
// FALLBACK REQUESTER
// =============================================================================

// AskWithFallback performs the one-shot exchange used when streaming
// produced zero increments. Four attempts run strictly in sequence,
// stopping at the first success:
//
//  1. POST <primary>/chat/ask with a JSON body
//  2. POST <alternate>/chat/ask with a JSON body
//  3. GET  <primary>/chat/ask?query=... (degraded variant)
//  4. GET  <alternate>/chat/ask?query=...
//
// When all four fail, ErrExhausted is returned and the caller substitutes
// UnreachableAnswer as the assistant text.
func (c *Client) AskWithFallback(ctx context.Context, question string) (string, error) {
	if question == "" {
		return "", ErrEmptyQuestion
	}

	bases := []string{c.config.BaseURL}
	if alt, ok := c.alternateBase(); ok && alt != c.config.BaseURL {
		bases = append(bases, alt)
	}

	var lastErr error

	for _, base := range bases {
		answer, err := c.askPost(ctx, base, question)
		if err == nil {
			return answer, nil
		}
		lastErr = err
		log.Debug().Str("host", base).Err(err).Msg("structured ask attempt failed")
	}

	for _, base := range bases {
		answer, err := c.askGet(ctx, base, question)
		if err == nil {
			return answer, nil
		}
		lastErr = err
		log.Debug().Str("host", base).Err(err).Msg("degraded ask attempt failed")
	}

	return "", &ClientError{Type: ErrTypeExhausted, Message: "all fallback attempts failed", Cause: lastErr}
}

// askPost performs the structured request variant: parameters travel in a
// JSON body.
func (c *Client) askPost(ctx context.Context, base, question string) (string, error) {
	body, err := json.Marshal(AskRequest{Query: question})
	if err != nil {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal ask request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL(base, "/chat/ask"), bytes.NewReader(body))
	if err != nil {
		return "", &ClientError{Type: ErrTypeTransport, Message: "failed to create ask request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	return c.doAsk(req)
}

// askGet performs the degraded request variant: parameters are encoded in
// the address instead of a structured body.
func (c *Client) askGet(ctx context.Context, base, question string) (string, error) {
	params := url.Values{}
	params.Set("query", question)

	endpoint := c.apiURL(base, "/chat/ask") + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", &ClientError{Type: ErrTypeTransport, Message: "failed to create ask request", Cause: err}
	}

	return c.doAsk(req)
}

// doAsk executes one ask attempt and decodes the shared response shape.
func (c *Client) doAsk(req *http.Request) (string, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &ClientError{Type: ErrTypeTransport, Message: "ask request failed", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: "ask request failed: " + resp.Status,
		}
	}

	var result AskResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode ask response", Cause: err}
	}

	return result.Answer, nil
}
