// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

// Package store records the query history of one board session.
package store

import "context"

// HistoryStore appends and lists query outcomes. Implementations must be
// safe for concurrent use.
type HistoryStore interface {
	// Record assigns an ID and CreatedAt when empty and appends entry.
	Record(ctx context.Context, entry *Entry) error
	Get(ctx context.Context, id string) (*Entry, error)
	// List returns entries newest first.
	List(ctx context.Context, opts ListOpts) ([]*Entry, error)
	Count(ctx context.Context) (int64, error)
	Clear(ctx context.Context) error
	Close() error
}
