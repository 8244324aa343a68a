// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package store

// StorageConfig controls which backend the store factory uses.
type StorageConfig struct {
	Backend      string // "sqlite" or "memory"; empty means sqlite.
	DSN          string // Backend-specific; empty means in-memory.
	HistoryLimit int    // Entries kept, newest first; 0 keeps everything.
}
