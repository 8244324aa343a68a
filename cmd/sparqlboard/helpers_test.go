// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/sigil-dev/sparqlboard/internal/board"
	"github.com/sigil-dev/sparqlboard/internal/secrets"
	"github.com/sigil-dev/sparqlboard/internal/store"
	sberr "github.com/sigil-dev/sparqlboard/pkg/errors"
)

const tripleResults = `{
  "head": {"vars": ["s", "p", "o"]},
  "results": {"bindings": [
    {"s": {"type": "uri", "value": "http://x/A"}, "p": {"type": "uri", "value": "http://x/knows"}, "o": {"type": "uri", "value": "http://x/B"}},
    {"s": {"type": "uri", "value": "http://x/B"}, "p": {"type": "uri", "value": "http://x/knows"}, "o": {"type": "uri", "value": "http://x/C"}}
  ]}
}`

const askTrue = `{"head": {}, "boolean": true}`

// mockSecretStore is an in-memory secrets.Store for testing.
type mockSecretStore struct {
	data map[string]string
}

var _ secrets.Store = (*mockSecretStore)(nil)

func newMockSecretStore(keys ...string) *mockSecretStore {
	m := &mockSecretStore{data: make(map[string]string)}
	for _, k := range keys {
		m.data[k] = "redacted"
	}
	return m
}

func (m *mockSecretStore) Service() string { return secrets.DefaultService }

func (m *mockSecretStore) Set(key, value string) error {
	m.data[key] = value
	return nil
}

func (m *mockSecretStore) Get(key string) (string, error) {
	v, ok := m.data[key]
	if !ok {
		return "", sberr.Errorf(sberr.CodeSecretNotFound, "not found")
	}
	return v, nil
}

func (m *mockSecretStore) Delete(key string) error {
	if _, ok := m.data[key]; !ok {
		return sberr.Errorf(sberr.CodeSecretNotFound, "not found")
	}
	delete(m.data, key)
	return nil
}

func (m *mockSecretStore) Keys() ([]string, error) {
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, nil
}

// isolate gives the test a private HOME, a fresh global viper, and a mock
// keyring, and restores the process-wide logger afterwards.
func isolate(t *testing.T) *mockSecretStore {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("HOME", t.TempDir())

	oldLogger := slog.Default()
	t.Cleanup(func() { slog.SetDefault(oldLogger) })

	store := newMockSecretStore()
	oldFactory := secretStoreFactory
	secretStoreFactory = func() secrets.Store { return store }
	t.Cleanup(func() { secretStoreFactory = oldFactory })
	return store
}

// runCLI executes the root command with args and returns combined output.
func runCLI(t *testing.T, stdin io.Reader, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	if stdin != nil {
		root.SetIn(stdin)
	}
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

// fakeEndpoint serves ASK queries with true and everything else with the
// two-triple result, and points the config at itself.
func fakeEndpoint(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/sparql-results+json")
		if strings.HasPrefix(strings.TrimSpace(r.URL.Query().Get("query")), "ASK") {
			_, _ = w.Write([]byte(askTrue))
			return
		}
		_, _ = w.Write([]byte(tripleResults))
	}))
	t.Cleanup(srv.Close)
	t.Setenv("SPARQLBOARD_ENDPOINT_URL", srv.URL)
	return srv
}

// newTestBoard returns a board that answers every query with the
// two-triple result.
func newTestBoard(t *testing.T) *board.Board {
	t.Helper()
	b := board.New(board.Options{
		Executor: board.ExecutorFunc(func(context.Context, string) ([]byte, error) {
			return []byte(tripleResults), nil
		}),
		History: store.NewMemoryHistory(0),
	})
	t.Cleanup(b.Close)
	return b
}
