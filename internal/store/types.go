// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package store

import "time"

// Status is the outcome of one query.
type Status string

const (
	StatusOK     Status = "ok"
	StatusFailed Status = "failed"
	// StatusStale marks a response that arrived after a newer query was
	// issued and was discarded.
	StatusStale Status = "stale"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusOK, StatusFailed, StatusStale:
		return true
	}
	return false
}

// Entry is one executed query.
type Entry struct {
	ID        string        `json:"id"`
	Seq       uint64        `json:"seq"`
	Query     string        `json:"query"`
	Endpoint  string        `json:"endpoint,omitempty"`
	Status    Status        `json:"status"`
	Rows      int           `json:"rows"`
	Nodes     int           `json:"nodes"`
	Edges     int           `json:"edges"`
	Skipped   int           `json:"skipped"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration_ns"`
	CreatedAt time.Time     `json:"created_at"`
}

// ListOpts pages through history.
type ListOpts struct {
	Limit  int
	Offset int
}
