// Copyright (c) 2025-2026 Nyay Setu Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for communicating with the Nyay backend.
package api

import (
	"net"
	"net/url"
)

// =============================================================================
// HOST RESOLUTION
// =============================================================================

// AlternateBase derives the single retry target for a configured base URL:
// the localhost / loopback-IP dual. "http://localhost:8000" yields
// "http://127.0.0.1:8000" and vice versa. Any other host, and anything
// that does not parse as a URL, has no alternate.
//
// The swap is deliberately narrow. It papers over the common local-dev
// mismatch where one of the two names resolves (IPv6 localhost, hosts
// file quirks) and the other does not; it is not general failover.
func AlternateBase(base string) (string, bool) {
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return "", false
	}

	host := u.Host
	port := ""
	if h, p, err := net.SplitHostPort(u.Host); err == nil {
		host, port = h, p
	}

	switch host {
	case "localhost":
		host = "127.0.0.1"
	case "127.0.0.1":
		host = "localhost"
	default:
		return "", false
	}

	if port != "" {
		u.Host = net.JoinHostPort(host, port)
	} else {
		u.Host = host
	}

	return u.String(), true
}
