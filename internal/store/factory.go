// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package store

import (
	"sort"
	"sync"

	sberr "github.com/sigil-dev/sparqlboard/pkg/errors"
)

// DefaultBackend is used when StorageConfig.Backend is empty.
const DefaultBackend = "sqlite"

// HistoryStoreFactory opens a history store for cfg.
type HistoryStoreFactory func(cfg StorageConfig) (HistoryStore, error)

var (
	factories   = map[string]HistoryStoreFactory{}
	factoriesMu sync.RWMutex
)

// RegisterBackend registers a factory for a named storage backend.
// Backend packages call this from init(). This function is goroutine-safe.
func RegisterBackend(name string, f HistoryStoreFactory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[name] = f
}

// Backends lists the registered backend names.
func Backends() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func resolveBackend(cfg *StorageConfig) string {
	if cfg.Backend == "" {
		return DefaultBackend
	}
	return cfg.Backend
}

// NewHistoryStore opens the history store for cfg.
func NewHistoryStore(cfg *StorageConfig) (HistoryStore, error) {
	if cfg == nil {
		cfg = &StorageConfig{}
	}
	backend := resolveBackend(cfg)

	factoriesMu.RLock()
	factory, ok := factories[backend]
	factoriesMu.RUnlock()
	if !ok {
		return nil, sberr.Errorf(sberr.CodeStoreBackendUnsupported, "unsupported storage backend: %q", backend)
	}
	if cfg.HistoryLimit < 0 {
		return nil, sberr.New(sberr.CodeStoreInvalidInput, "history limit must be non-negative")
	}

	return factory(*cfg)
}
