// Copyright (c) 2025-2026 Nyay Setu Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for communicating with the Nyay backend.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the Nyay backend client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeUnreachable
	ErrTypeTimeout
	ErrTypeTransport
	ErrTypeInvalidResponse
	ErrTypeExhausted
	ErrTypeBusy
)

// String returns a stable name for the error type.
func (t ErrorType) String() string {
	switch t {
	case ErrTypeUnreachable:
		return "unreachable"
	case ErrTypeTimeout:
		return "timeout"
	case ErrTypeTransport:
		return "transport"
	case ErrTypeInvalidResponse:
		return "invalid_response"
	case ErrTypeExhausted:
		return "exhausted"
	case ErrTypeBusy:
		return "busy"
	default:
		return "unknown"
	}
}

// Sentinel errors for easy checking.
var (
	ErrUnreachable = &ClientError{Type: ErrTypeUnreachable, Message: "Nyay backend is not reachable"}
	ErrTimeout     = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrExhausted   = &ClientError{Type: ErrTypeExhausted, Message: "all fallback attempts failed"}
)

// IsUnreachable checks if an error indicates the backend is not reachable.
func IsUnreachable(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeUnreachable
	}
	return errors.Is(err, ErrUnreachable)
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeTimeout
	}
	return errors.Is(err, ErrTimeout)
}

// IsExhausted checks if an error means every fallback attempt failed.
func IsExhausted(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeExhausted
	}
	return errors.Is(err, ErrExhausted)
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the backend client.
type ClientConfig struct {
	// BaseURL is the backend root URL (default: http://127.0.0.1:8000)
	BaseURL string

	// APIPrefix is prepended to every chat/config route. The liveness
	// probe bypasses it. (default: /api)
	APIPrefix string

	// AlternateURL overrides the derived localhost/loopback dual. When
	// empty the alternate is computed with AlternateBase.
	AlternateURL string

	// Timeout for non-streaming requests (default: 30s)
	Timeout time.Duration

	// IdleTimeout is the maximum silence tolerated on a live stream
	// before the connection is treated as failed (default: 90s)
	IdleTimeout time.Duration
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:     "http://127.0.0.1:8000",
		APIPrefix:   "/api",
		Timeout:     30 * time.Second,
		IdleTimeout: 90 * time.Second,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the Nyay backend API.
//
// The Client is safe for concurrent use. Streaming sessions created with
// OpenStream manage their own connection lifecycle; everything else goes
// through a shared http.Client with a request timeout.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
}

// NewClient creates a new backend client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a new backend client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	// Fill in defaults for any zero values
	if config.BaseURL == "" {
		config.BaseURL = "http://127.0.0.1:8000"
	}
	if config.APIPrefix == "" {
		config.APIPrefix = "/api"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.IdleTimeout == 0 {
		config.IdleTimeout = 90 * time.Second
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// GetConfig returns the client configuration.
func (c *Client) GetConfig() *ClientConfig {
	return c.config
}

// apiURL joins the base URL, API prefix and a route path.
func (c *Client) apiURL(base, path string) string {
	return base + c.config.APIPrefix + path
}

// alternateBase returns the secondary base URL to retry against, if any.
func (c *Client) alternateBase() (string, bool) {
	if c.config.AlternateURL != "" {
		return c.config.AlternateURL, true
	}
	return AlternateBase(c.config.BaseURL)
}

// =============================================================================
// LIVENESS
// =============================================================================

// Health verifies that the backend is reachable and live.
// The probe targets <root>/health/live and bypasses the API prefix.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/health/live", nil)
	if err != nil {
		return &ClientError{Type: ErrTypeTransport, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ErrUnreachable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &ClientError{
			Type:    ErrTypeTransport,
			Message: "unexpected status from backend: " + resp.Status,
		}
	}

	return nil
}

// =============================================================================
// CLIENT FEATURES
// =============================================================================

// FetchFeatures retrieves the public client configuration flags.
// Intended to be read once at startup; callers should treat a failure as
// "no features enabled" rather than an error worth surfacing.
func (c *Client) FetchFeatures(ctx context.Context) (Features, error) {
	var features Features

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL(c.config.BaseURL, "/client-config"), nil)
	if err != nil {
		return features, &ClientError{Type: ErrTypeTransport, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return features, ErrTimeout
		}
		return features, ErrUnreachable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return features, &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: "failed to fetch client config: " + resp.Status,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(&features); err != nil {
		return features, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode client config", Cause: err}
	}

	return features, nil
}

// =============================================================================
// RETRIEVAL
// =============================================================================

// Retrieve fetches the top supporting passages for a query from the
// retrieval debug endpoint. topK is clamped to the backend's accepted
// 1..20 range.
func (c *Client) Retrieve(ctx context.Context, query string, topK int) ([]SourcePassage, error) {
	if topK < 1 {
		topK = 1
	}
	if topK > 20 {
		topK = 20
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("top_k", strconv.Itoa(topK))

	endpoint := c.apiURL(c.config.BaseURL, "/chat/debug/retrieve") + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeTransport, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, ErrUnreachable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: "retrieval request failed: " + resp.Status,
		}
	}

	var result RetrieveResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode retrieval response", Cause: err}
	}

	log.Debug().Int("contexts", len(result.Contexts)).Msg("retrieval complete")
	return result.Contexts, nil
}

// =============================================================================
// DIAGNOSTICS
// =============================================================================

// DebugLLM reports which LLM provider and model the backend has resolved.
// Used by the doctor command only.
func (c *Client) DebugLLM(ctx context.Context) (*LLMInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL(c.config.BaseURL, "/chat/debug/llm"), nil)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeTransport, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, ErrUnreachable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: "llm diagnostics request failed: " + resp.Status,
		}
	}

	var info LLMInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode llm diagnostics", Cause: err}
	}

	return &info, nil
}
