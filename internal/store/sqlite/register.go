// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package sqlite

import (
	"github.com/sigil-dev/sparqlboard/internal/store"
)

func init() {
	store.RegisterBackend("sqlite", newHistoryStore)
}

func newHistoryStore(cfg store.StorageConfig) (store.HistoryStore, error) {
	return NewHistoryStore(cfg.DSN, cfg.HistoryLimit)
}
