// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory_PersistsAcrossRuns(t *testing.T) {
	isolate(t)
	fakeEndpoint(t)
	t.Setenv("SPARQLBOARD_STORAGE_DSN", filepath.Join(t.TempDir(), "data", "history.db"))

	out, err := runCLI(t, nil, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No queries recorded.")

	_, err = runCLI(t, nil, "query", selectAll)
	require.NoError(t, err)

	out, err = runCLI(t, nil, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "#1")
	assert.Contains(t, out, "ok")
	assert.Contains(t, out, selectAll)

	out, err = runCLI(t, nil, "history", "--clear")
	require.NoError(t, err)
	assert.Contains(t, out, "History cleared.")

	out, err = runCLI(t, nil, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No queries recorded.")
}

func TestHistory_MemoryBackendStartsEmpty(t *testing.T) {
	isolate(t)
	t.Setenv("SPARQLBOARD_STORAGE_BACKEND", "memory")

	out, err := runCLI(t, nil, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No queries recorded.")
}

func TestOneLine(t *testing.T) {
	assert.Equal(t, "SELECT * WHERE { ?s ?p ?o }", oneLine("SELECT *\n  WHERE {\t?s ?p ?o }", 60))
	assert.Equal(t, "abcd…", oneLine("abcdefgh", 5))
}
