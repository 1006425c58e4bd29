// Copyright (c) 2025-2026 Nyay Setu Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for nyay.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.nyay/config.toml
//   - ~/.nyay/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/nyaysetu/nyay-cli/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete nyay configuration.
type Config struct {
	// Version of the config schema
	Version string `toml:"version" json:"version"`

	// Backend configuration
	Backend BackendConfig `toml:"backend" json:"backend"`

	// Retrieval configuration
	Retrieval RetrievalConfig `toml:"retrieval" json:"retrieval"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`
}

// BackendConfig describes how the client reaches the Nyay backend.
type BackendConfig struct {
	// BaseURL is the backend root URL
	BaseURL string `toml:"base_url" json:"base_url"`
	// APIPrefix is prepended to every API route (liveness probe excepted)
	APIPrefix string `toml:"api_prefix" json:"api_prefix"`
	// AlternateURL overrides the derived loopback retry target.
	// Leave empty to derive it from BaseURL automatically.
	AlternateURL string `toml:"alternate_url" json:"alternate_url"`
	// RequestTimeoutSecs bounds non-streaming requests
	RequestTimeoutSecs int `toml:"request_timeout_secs" json:"request_timeout_secs"`
	// IdleTimeoutSecs is the longest silence tolerated on a live stream
	IdleTimeoutSecs int `toml:"idle_timeout_secs" json:"idle_timeout_secs"`
}

// RetrievalConfig controls the supporting-passage fetch shown after answers.
type RetrievalConfig struct {
	// Enabled toggles source retrieval
	Enabled bool `toml:"enabled" json:"enabled"`
	// TopK passages requested from the backend (clamped to 1-20)
	TopK int `toml:"top_k" json:"top_k"`
	// MinScore is the relevance cutoff for displayed passages
	MinScore float64 `toml:"min_score" json:"min_score"`
	// MaxShown caps how many passages are displayed
	MaxShown int `toml:"max_shown" json:"max_shown"`
}

// UIConfig contains output preferences.
type UIConfig struct {
	// Markdown selects answer rendering: "auto" follows the backend's
	// client-config flag, "always" and "never" override it
	Markdown string `toml:"markdown" json:"markdown"`
	// Quiet suppresses status lines
	Quiet bool `toml:"quiet" json:"quiet"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in default configuration.
func Default() *Config {
	return &Config{
		Version: "1",
		Backend: BackendConfig{
			BaseURL:            "http://127.0.0.1:8000",
			APIPrefix:          "/api",
			RequestTimeoutSecs: 30,
			IdleTimeoutSecs:    90,
		},
		Retrieval: RetrievalConfig{
			Enabled:  true,
			TopK:     6,
			MinScore: 0.35,
			MaxShown: 3,
		},
		UI: UIConfig{
			Markdown: "auto",
		},
	}
}

// RequestTimeout returns the request timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Backend.RequestTimeoutSecs) * time.Second
}

// IdleTimeout returns the stream idle timeout as a duration.
func (c *Config) IdleTimeout() time.Duration {
	return time.Duration(c.Backend.IdleTimeoutSecs) * time.Second
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns the nyay configuration directory (~/.nyay).
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".nyay"), nil
}

// ConfigPathTOML returns the TOML config file path.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the JSON config file path.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the configuration: TOML first, JSON second, defaults last.
// Environment overrides are applied on top of whatever was loaded.
func Load() (*Config, error) {
	cfg := Default()

	if path, err := ConfigPathTOML(); err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := LoadTOML(cfg, path); err != nil {
				return nil, err
			}
			cfg.ApplyEnvOverrides()
			return cfg, cfg.Validate()
		}
	}

	if path, err := ConfigPathJSON(); err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := LoadJSON(cfg, path); err != nil {
				return nil, err
			}
			cfg.ApplyEnvOverrides()
			return cfg, cfg.Validate()
		}
	}

	cfg.ApplyEnvOverrides()
	return cfg, cfg.Validate()
}

// LoadTOML decodes a TOML config file over cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// LoadJSON decodes a JSON config file over cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// LoadFromPath loads a config from an explicit path, picking the decoder
// by extension. Used by the --config flag and tests.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = LoadJSON(cfg, path)
	default:
		err = LoadTOML(cfg, path)
	}
	if err != nil {
		return nil, err
	}

	cfg.ApplyEnvOverrides()
	return cfg, cfg.Validate()
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes the configuration as TOML with secure permissions.
func Save(cfg *Config) error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}

	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}

	var buf strings.Builder
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, []byte(buf.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the configuration for values the client cannot work with.
// Recoverable problems are normalized instead of rejected.
func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend.base_url must not be empty")
	}
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("backend.base_url is not a valid URL: %q", c.Backend.BaseURL)
	}

	if c.Backend.APIPrefix != "" && !strings.HasPrefix(c.Backend.APIPrefix, "/") {
		c.Backend.APIPrefix = "/" + c.Backend.APIPrefix
	}
	if c.Backend.RequestTimeoutSecs <= 0 {
		c.Backend.RequestTimeoutSecs = 30
	}
	if c.Backend.IdleTimeoutSecs <= 0 {
		c.Backend.IdleTimeoutSecs = 90
	}

	if c.Retrieval.TopK < 1 {
		c.Retrieval.TopK = 1
	}
	if c.Retrieval.TopK > 20 {
		c.Retrieval.TopK = 20
	}
	if c.Retrieval.MinScore < 0 {
		c.Retrieval.MinScore = 0
	}
	if c.Retrieval.MaxShown < 1 {
		c.Retrieval.MaxShown = 1
	}

	switch c.UI.Markdown {
	case "auto", "always", "never":
	case "":
		c.UI.Markdown = "auto"
	default:
		return fmt.Errorf("ui.markdown must be auto, always or never (got %q)", c.UI.Markdown)
	}

	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides lets NYAY_* environment variables override file values.
// Useful for one-off runs against a different backend.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("NYAY_BACKEND_URL"); v != "" {
		c.Backend.BaseURL = v
	}
	if v := os.Getenv("NYAY_API_PREFIX"); v != "" {
		c.Backend.APIPrefix = v
	}
	if v := os.Getenv("NYAY_ALTERNATE_URL"); v != "" {
		c.Backend.AlternateURL = v
	}
	if v := os.Getenv("NYAY_REQUEST_TIMEOUT_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Backend.RequestTimeoutSecs = n
		}
	}
	if v := os.Getenv("NYAY_IDLE_TIMEOUT_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Backend.IdleTimeoutSecs = n
		}
	}
	if v := os.Getenv("NYAY_RETRIEVAL"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Retrieval.Enabled = b
		}
	}
	if v := os.Getenv("NYAY_MARKDOWN"); v != "" {
		c.UI.Markdown = v
	}
}

// =============================================================================
// GLOBAL CONFIG
// =============================================================================

var (
	globalConfig *Config
	globalMu     sync.RWMutex
	globalOnce   sync.Once
)

// Global returns the process-wide configuration, loading it on first use.
// A load failure falls back to defaults so the CLI always starts.
func Global() *Config {
	globalOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			cfg = Default()
			cfg.ApplyEnvOverrides()
		}
		globalMu.Lock()
		globalConfig = cfg
		globalMu.Unlock()
	})

	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalConfig
}

// ReloadGlobal re-reads the configuration from disk.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	SetGlobal(cfg)
	return nil
}

// SetGlobal replaces the process-wide configuration.
func SetGlobal(cfg *Config) {
	globalOnce.Do(func() {})
	globalMu.Lock()
	defer globalMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting clears the global config so tests start clean.
func ResetGlobalForTesting() {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalConfig = nil
	globalOnce = sync.Once{}
}
