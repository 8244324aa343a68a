// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	sberr "github.com/sigil-dev/sparqlboard/pkg/errors"
)

func init() {
	RegisterBackend("memory", func(cfg StorageConfig) (HistoryStore, error) {
		return NewMemoryHistory(cfg.HistoryLimit), nil
	})
}

var _ HistoryStore = (*MemoryHistory)(nil)

// MemoryHistory keeps entries in a slice, oldest first.
type MemoryHistory struct {
	mu      sync.Mutex
	limit   int
	entries []Entry
}

// NewMemoryHistory returns an empty store keeping at most limit entries.
func NewMemoryHistory(limit int) *MemoryHistory {
	return &MemoryHistory{limit: limit}
}

// Fill assigns the ID and CreatedAt of entry when they are empty.
func Fill(entry *Entry) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
}

func (m *MemoryHistory) Record(_ context.Context, entry *Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	Fill(entry)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, *entry)
	if m.limit > 0 && len(m.entries) > m.limit {
		m.entries = append([]Entry(nil), m.entries[len(m.entries)-m.limit:]...)
	}
	return nil
}

func (m *MemoryHistory) Get(_ context.Context, id string) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.entries {
		if m.entries[i].ID == id {
			e := m.entries[i]
			return &e, nil
		}
	}
	return nil, sberr.New(sberr.CodeStoreEntityNotFound, "history entry not found", sberr.Field("id", id))
}

func (m *MemoryHistory) List(_ context.Context, opts ListOpts) ([]*Entry, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*Entry, 0, len(m.entries))
	for i := len(m.entries) - 1 - opts.Offset; i >= 0; i-- {
		if opts.Limit > 0 && len(out) == opts.Limit {
			break
		}
		e := m.entries[i]
		out = append(out, &e)
	}
	return out, nil
}

func (m *MemoryHistory) Count(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.entries)), nil
}

func (m *MemoryHistory) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = nil
	return nil
}

func (m *MemoryHistory) Close() error { return nil }
