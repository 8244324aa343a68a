// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigil-dev/sparqlboard/internal/store"
	sberr "github.com/sigil-dev/sparqlboard/pkg/errors"
)

func TestNewHistoryStore_Memory(t *testing.T) {
	hs, err := store.NewHistoryStore(&store.StorageConfig{Backend: "memory", HistoryLimit: 5})
	require.NoError(t, err)
	assert.IsType(t, &store.MemoryHistory{}, hs)
	require.NoError(t, hs.Close())
}

func TestNewHistoryStore_UnknownBackend(t *testing.T) {
	_, err := store.NewHistoryStore(&store.StorageConfig{Backend: "unknown"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown")
	assert.True(t, sberr.HasCode(err, sberr.CodeStoreBackendUnsupported))
}

func TestNewHistoryStore_NegativeLimit(t *testing.T) {
	_, err := store.NewHistoryStore(&store.StorageConfig{Backend: "memory", HistoryLimit: -1})
	assert.True(t, sberr.IsInvalidInput(err))
}

func TestBackends(t *testing.T) {
	assert.Contains(t, store.Backends(), "memory")
}
