// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sberr "github.com/sigil-dev/sparqlboard/pkg/errors"
)

func TestSecretList(t *testing.T) {
	store := isolate(t)
	store.data["endpoint-token"] = "t"
	store.data["endpoint-password"] = "p"

	out, err := runCLI(t, nil, "secret", "list")
	require.NoError(t, err)
	assert.Equal(t, "endpoint-password\nendpoint-token\n", out)
}

func TestSecretList_Empty(t *testing.T) {
	isolate(t)
	out, err := runCLI(t, nil, "secret", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No secrets stored.")
}

func TestSecretSet(t *testing.T) {
	store := isolate(t)

	out, err := runCLI(t, strings.NewReader("hunter2\n"), "secret", "set", "endpoint-password")
	require.NoError(t, err)
	assert.Contains(t, out, "keyring://sparqlboard/endpoint-password")
	assert.Equal(t, "hunter2", store.data["endpoint-password"])
}

func TestSecretSet_EmptyValue(t *testing.T) {
	store := isolate(t)

	_, err := runCLI(t, strings.NewReader("\n"), "secret", "set", "endpoint-password")
	require.Error(t, err)
	assert.True(t, sberr.HasCode(err, sberr.CodeSecretInvalidInput))
	assert.Empty(t, store.data)
}

func TestSecretDelete(t *testing.T) {
	store := isolate(t)
	store.data["endpoint-token"] = "t"

	out, err := runCLI(t, nil, "secret", "delete", "endpoint-token")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted secret: endpoint-token")
	assert.NotContains(t, store.data, "endpoint-token")
}

func TestSecretDelete_NotFound(t *testing.T) {
	isolate(t)
	_, err := runCLI(t, nil, "secret", "delete", "missing")
	require.Error(t, err)
	assert.True(t, sberr.HasCode(err, sberr.CodeSecretNotFound))
	assert.Contains(t, err.Error(), `"missing"`)
}

func TestSecretDelete_RequiresName(t *testing.T) {
	isolate(t)
	_, err := runCLI(t, nil, "secret", "delete")
	require.Error(t, err)
}
