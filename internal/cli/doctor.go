// Copyright (c) 2025-2026 Nyay Setu Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// doctor.go - Doctor command implementation for nyay.
//
// CLI: Comprehensive help and examples for all commands
//
// Command: doctor
// Short:   Run backend health checks and diagnostics
//
// Examples:
//   nyay doctor                  Run all health checks
//   nyay doctor --json           Health check results in JSON
//
// Health Checks Performed:
//   1. Config Valid       - Validates configuration file
//   2. Backend Reachable  - Liveness probe on the configured URL
//   3. Alternate Host     - Probes the loopback dual (localhost/127.0.0.1)
//   4. Client Config      - Fetches backend feature flags
//   5. Retrieval          - Exercises the retrieval debug endpoint
//   6. LLM Backend        - Queries the generation backend diagnostics
//
// Exit Codes:
//   0   All checks passed
//   1   One or more checks failed
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/nyaysetu/nyay-cli/internal/api"
	"github.com/nyaysetu/nyay-cli/internal/config"
)

// =============================================================================
// DOCTOR STYLES
// =============================================================================

var (
	doctorTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(Cyan).
				MarginBottom(1)

	checkPassStyle = lipgloss.NewStyle().
			Foreground(Emerald).
			Bold(true)

	checkWarnStyle = lipgloss.NewStyle().
			Foreground(Amber).
			Bold(true)

	checkFailStyle = lipgloss.NewStyle().
			Foreground(Rose).
			Bold(true)

	fixStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Italic(true).
			PaddingLeft(2)
)

// =============================================================================
// HEALTH CHECK TYPES
// =============================================================================

// CheckStatus represents the status of a health check.
type CheckStatus int

const (
	// CheckPass indicates the check passed successfully.
	CheckPass CheckStatus = iota
	// CheckWarn indicates the check passed with warnings.
	CheckWarn
	// CheckFail indicates the check failed.
	CheckFail
)

// String returns the string representation of the check status.
func (s CheckStatus) String() string {
	switch s {
	case CheckPass:
		return "Pass"
	case CheckWarn:
		return "Warn"
	case CheckFail:
		return "Fail"
	default:
		return "Unknown"
	}
}

// Symbol returns the styled symbol for the check status.
func (s CheckStatus) Symbol() string {
	switch s {
	case CheckPass:
		return checkPassStyle.Render("[OK]")
	case CheckWarn:
		return checkWarnStyle.Render("[!!]")
	case CheckFail:
		return checkFailStyle.Render("[FAIL]")
	default:
		return "?"
	}
}

// HealthCheck represents a single health check result.
type HealthCheck struct {
	Name    string
	Status  CheckStatus
	Message string
	Fix     string // Suggested fix command or instruction
}

// Render returns a formatted string representation of the health check.
func (c *HealthCheck) Render() string {
	result := fmt.Sprintf("%s %s", c.Status.Symbol(), c.Message)
	if c.Status != CheckPass && c.Fix != "" {
		result += "\n" + fixStyle.Render("-> "+c.Fix)
	}
	return result
}

// =============================================================================
// HANDLE DOCTOR
// =============================================================================

// HandleDoctorCommand runs the health checks and reports the results.
func HandleDoctorCommand(args Args) error {
	checks := runAllChecks(args)

	passed, warned, failed := 0, 0, 0
	for _, check := range checks {
		switch check.Status {
		case CheckPass:
			passed++
		case CheckWarn:
			warned++
		case CheckFail:
			failed++
		}
	}

	if args.JSON {
		type checkJSON struct {
			Name    string `json:"name"`
			Status  string `json:"status"`
			Message string `json:"message"`
			Fix     string `json:"fix,omitempty"`
		}
		out := struct {
			Checks []checkJSON `json:"checks"`
			Passed int         `json:"passed"`
			Warned int         `json:"warned"`
			Failed int         `json:"failed"`
		}{Passed: passed, Warned: warned, Failed: failed}
		for _, c := range checks {
			out.Checks = append(out.Checks, checkJSON{
				Name: c.Name, Status: c.Status.String(), Message: c.Message, Fix: c.Fix,
			})
		}
		if err := outputJSON(out); err != nil {
			return err
		}
	} else {
		fmt.Println(doctorTitleStyle.Render("nyay doctor"))
		for _, check := range checks {
			fmt.Println(check.Render())
		}
		fmt.Println()
		fmt.Printf("%s %d passed, %d warnings, %d failed\n",
			LabelStyle.Render("Summary:"), passed, warned, failed)
	}

	if failed > 0 {
		os.Exit(ExitGeneralError)
	}
	return nil
}

// runAllChecks runs every health check against the configured backend.
func runAllChecks(args Args) []HealthCheck {
	checks := []HealthCheck{checkConfig()}

	client := buildClient(args)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	reachable := checkBackend(ctx, client)
	checks = append(checks, reachable)
	checks = append(checks, checkAlternate(ctx, args))

	if reachable.Status == CheckFail {
		checks = append(checks, HealthCheck{
			Name:    "client-config",
			Status:  CheckWarn,
			Message: "Client config: skipped (backend unreachable)",
		}, HealthCheck{
			Name:    "retrieval",
			Status:  CheckWarn,
			Message: "Retrieval: skipped (backend unreachable)",
		}, HealthCheck{
			Name:    "llm",
			Status:  CheckWarn,
			Message: "LLM backend: skipped (backend unreachable)",
		})
		return checks
	}

	checks = append(checks,
		checkClientConfig(ctx, client),
		checkRetrieval(ctx, client),
		checkLLM(ctx, client),
	)
	return checks
}

// checkConfig validates the loaded configuration.
func checkConfig() HealthCheck {
	cfg := config.Global()
	if err := cfg.Validate(); err != nil {
		return HealthCheck{
			Name:    "config",
			Status:  CheckFail,
			Message: fmt.Sprintf("Config: %v", err),
			Fix:     "Run: nyay config reset",
		}
	}
	return HealthCheck{
		Name:    "config",
		Status:  CheckPass,
		Message: "Config: valid (" + cfg.Backend.BaseURL + ")",
	}
}

// checkBackend probes the liveness endpoint.
func checkBackend(ctx context.Context, client *api.Client) HealthCheck {
	if err := client.Health(ctx); err != nil {
		return HealthCheck{
			Name:    "backend",
			Status:  CheckFail,
			Message: fmt.Sprintf("Backend: not reachable (%v)", err),
			Fix:     "Check that the Nyay backend is running, or set NYAY_BACKEND_URL",
		}
	}
	return HealthCheck{
		Name:    "backend",
		Status:  CheckPass,
		Message: "Backend: reachable",
	}
}

// checkAlternate probes the loopback dual of the configured host.
func checkAlternate(ctx context.Context, args Args) HealthCheck {
	cfg := config.Global()
	base := cfg.Backend.BaseURL
	if args.Backend != "" {
		base = args.Backend
	}

	alt := cfg.Backend.AlternateURL
	if alt == "" {
		derived, ok := api.AlternateBase(base)
		if !ok {
			return HealthCheck{
				Name:    "alternate",
				Status:  CheckWarn,
				Message: "Alternate host: none (backend is not on localhost)",
			}
		}
		alt = derived
	}

	altClient := api.NewClientWithConfig(&api.ClientConfig{
		BaseURL:   alt,
		APIPrefix: cfg.Backend.APIPrefix,
	})
	if err := altClient.Health(ctx); err != nil {
		return HealthCheck{
			Name:    "alternate",
			Status:  CheckWarn,
			Message: fmt.Sprintf("Alternate host %s: not reachable", alt),
		}
	}
	return HealthCheck{
		Name:    "alternate",
		Status:  CheckPass,
		Message: "Alternate host " + alt + ": reachable",
	}
}

// checkClientConfig fetches the backend feature flags.
func checkClientConfig(ctx context.Context, client *api.Client) HealthCheck {
	features, err := client.FetchFeatures(ctx)
	if err != nil {
		return HealthCheck{
			Name:    "client-config",
			Status:  CheckWarn,
			Message: fmt.Sprintf("Client config: fetch failed (%v)", err),
		}
	}
	return HealthCheck{
		Name:    "client-config",
		Status:  CheckPass,
		Message: fmt.Sprintf("Client config: ok (markdown=%t)", features.Markdown),
	}
}

// checkRetrieval exercises the retrieval debug endpoint with a fixed probe.
func checkRetrieval(ctx context.Context, client *api.Client) HealthCheck {
	passages, err := client.Retrieve(ctx, "article 21", 1)
	if err != nil {
		return HealthCheck{
			Name:    "retrieval",
			Status:  CheckFail,
			Message: fmt.Sprintf("Retrieval: failed (%v)", err),
			Fix:     "Check the backend's vector index",
		}
	}
	return HealthCheck{
		Name:    "retrieval",
		Status:  CheckPass,
		Message: fmt.Sprintf("Retrieval: ok (%d passages)", len(passages)),
	}
}

// checkLLM queries the generation backend diagnostics.
func checkLLM(ctx context.Context, client *api.Client) HealthCheck {
	info, err := client.DebugLLM(ctx)
	if err != nil {
		return HealthCheck{
			Name:    "llm",
			Status:  CheckWarn,
			Message: fmt.Sprintf("LLM backend: diagnostics unavailable (%v)", err),
		}
	}
	if info.InitError != "" {
		return HealthCheck{
			Name:    "llm",
			Status:  CheckFail,
			Message: "LLM backend: init error: " + info.InitError,
			Fix:     "Check the backend's provider credentials",
		}
	}
	msg := "LLM backend: ok"
	if info.ResolvedModel != "" {
		msg = fmt.Sprintf("LLM backend: %s (%s)", info.ResolvedModel, info.ResolvedProvider)
	}
	return HealthCheck{
		Name:    "llm",
		Status:  CheckPass,
		Message: msg,
	}
}
