// Copyright (c) 2025-2026 Nyay Setu Project
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for communicating with the Nyay backend.
package api

import (
	"bufio"
	"io"
	"strings"
)

// =============================================================================
// SSE EVENT READER
// =============================================================================

// Event is one server-sent event from the streaming endpoint.
// The backend emits two named events: "token" (payload = one increment of
// answer text) and "end" (payload ignored).
type Event struct {
	Name string
	Data string
}

// EventReader parses a text/event-stream body line by line.
type EventReader struct {
	reader *bufio.Reader

	// fields of the event currently being assembled
	name string
	data []string
}

// NewEventReader creates an event reader from a raw response body.
func NewEventReader(r io.Reader) *EventReader {
	return &EventReader{
		reader: bufio.NewReader(r),
	}
}

// Next reads until one complete event has been dispatched.
// Returns io.EOF when the stream is exhausted. An event left incomplete
// when the connection drops is discarded, per the event-stream format.
func (r *EventReader) Next() (*Event, error) {
	for {
		line, err := r.reader.ReadString('\n')
		if err != nil {
			return nil, err
		}

		line = strings.TrimRight(line, "\r\n")

		// Blank line dispatches the buffered event.
		if line == "" {
			if r.name == "" && len(r.data) == 0 {
				continue
			}
			ev := &Event{
				Name: r.name,
				Data: strings.Join(r.data, "\n"),
			}
			if ev.Name == "" {
				ev.Name = "message"
			}
			r.name = ""
			r.data = nil
			return ev, nil
		}

		// Comment lines keep the connection alive and carry nothing.
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value := splitField(line)
		switch field {
		case "event":
			r.name = value
		case "data":
			r.data = append(r.data, value)
		default:
			// "id", "retry" and unknown fields are not used by the
			// backend; skip them.
		}
	}
}

// splitField splits "field: value", trimming the single optional space
// after the colon.
func splitField(line string) (string, string) {
	field, value, found := strings.Cut(line, ":")
	if !found {
		return line, ""
	}
	value = strings.TrimPrefix(value, " ")
	return field, value
}
