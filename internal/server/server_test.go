// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package server_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigil-dev/sparqlboard/internal/board"
	"github.com/sigil-dev/sparqlboard/internal/server"
	"github.com/sigil-dev/sparqlboard/internal/store"
	sberr "github.com/sigil-dev/sparqlboard/pkg/errors"
)

const triples = `{
  "head": {"vars": ["s", "p", "o"]},
  "results": {"bindings": [
    {"s": {"type": "uri", "value": "http://x/A"}, "p": {"type": "uri", "value": "http://x/rel"}, "o": {"type": "uri", "value": "http://x/B"}},
    {"s": {"type": "uri", "value": "http://x/B"}, "p": {"type": "uri", "value": "http://x/rel"}, "o": {"type": "uri", "value": "http://x/C"}}
  ]}
}`

func newTestBoard(t *testing.T, exec board.Executor) *board.Board {
	t.Helper()
	if exec == nil {
		exec = board.ExecutorFunc(func(context.Context, string) ([]byte, error) {
			return []byte(triples), nil
		})
	}
	b := board.New(board.Options{Executor: exec, History: store.NewMemoryHistory(0)})
	t.Cleanup(b.Close)
	return b
}

func newTestServer(t *testing.T, b *board.Board) *server.Server {
	t.Helper()
	if b == nil {
		b = newTestBoard(t, nil)
	}
	srv, err := server.New(server.Config{ListenAddr: "127.0.0.1:0"}, b)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = srv.Close()
	})
	return srv
}

func do(t *testing.T, srv *server.Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func submit(t *testing.T, srv *server.Server) {
	t.Helper()
	w := do(t, srv, http.MethodPost, "/api/v1/query", `{"query":"SELECT * WHERE { ?s ?p ?o }"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestServer_New(t *testing.T) {
	srv, err := server.New(server.Config{ListenAddr: "127.0.0.1:0"}, newTestBoard(t, nil))
	require.NoError(t, err)
	defer func() { _ = srv.Close() }()
	assert.NotNil(t, srv)
	assert.NotNil(t, srv.API())
}

func TestServer_New_InvalidConfig(t *testing.T) {
	b := newTestBoard(t, nil)
	tests := []struct {
		name string
		cfg  server.Config
		b    *board.Board
		want string
	}{
		{name: "empty listen addr", cfg: server.Config{}, b: b, want: "listen address is required"},
		{name: "no board", cfg: server.Config{ListenAddr: ":0"}, want: "board is required"},
		{
			name: "bad rate limit",
			cfg:  server.Config{ListenAddr: ":0", RateLimit: server.RateLimitConfig{RequestsPerSecond: 1}},
			b:    b,
			want: "burst must be positive",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := server.New(tt.cfg, tt.b)
			require.Error(t, err)
			assert.True(t, sberr.HasCode(err, sberr.CodeServerConfigInvalid), "got %s", sberr.CodeOf(err))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestServer_HealthEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	w := do(t, srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestServer_OpenAPISpec(t *testing.T) {
	srv := newTestServer(t, nil)

	w := do(t, srv, http.MethodGet, "/openapi.json", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "openapi")

	body := w.Body.String()
	for _, path := range []string{"/api/v1/query", "/api/v1/graph/select", "/api/v1/events", "/export/graph.png"} {
		assert.Contains(t, body, path)
	}
}

func TestServer_QueryAndTable(t *testing.T) {
	srv := newTestServer(t, nil)

	w := do(t, srv, http.MethodPost, "/api/v1/query", `{"query":"SELECT * WHERE { ?s ?p ?o }"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	sum := decode[board.Summary](t, w)
	assert.Equal(t, uint64(1), sum.Seq)
	assert.Equal(t, store.StatusOK, sum.Status)
	assert.Equal(t, []string{"s", "p", "o"}, sum.Variables)
	assert.Equal(t, 2, sum.Rows)
	assert.Equal(t, 3, sum.Nodes)
	assert.Equal(t, 2, sum.Edges)

	w = do(t, srv, http.MethodGet, "/api/v1/table", "")
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[map[string]any](t, w)
	assert.Equal(t, "table", view["mode"])
	assert.EqualValues(t, 2, view["total_rows"])
	assert.Len(t, view["columns"], 3)
	assert.Len(t, view["rows"], 2)

	w = do(t, srv, http.MethodGet, "/api/v1/results", "")
	require.Equal(t, http.StatusOK, w.Code)
	rs := decode[struct {
		Variables []string         `json:"variables"`
		Rows      []map[string]any `json:"rows"`
	}](t, w)
	assert.Equal(t, []string{"s", "p", "o"}, rs.Variables)
	assert.Len(t, rs.Rows, 2)
}

func TestServer_QueryValidation(t *testing.T) {
	srv := newTestServer(t, nil)

	w := do(t, srv, http.MethodPost, "/api/v1/query", `{"query":""}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(t, srv, http.MethodPost, "/api/v1/query", `{"query":"   "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_QueryUpstreamFailure(t *testing.T) {
	b := newTestBoard(t, board.ExecutorFunc(func(context.Context, string) ([]byte, error) {
		return nil, sberr.New(sberr.CodeSparqlUpstreamFailure, "endpoint returned 503")
	}))
	srv := newTestServer(t, b)

	w := do(t, srv, http.MethodPost, "/api/v1/query", `{"query":"ASK {}"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "endpoint returned 503")

	w = do(t, srv, http.MethodGet, "/api/v1/graph", "")
	require.Equal(t, http.StatusOK, w.Code)
	g := decode[map[string]any](t, w)
	assert.Equal(t, true, g["empty"])
}

func TestServer_TablePagingAndMode(t *testing.T) {
	srv := newTestServer(t, nil)
	submit(t, srv)

	w := do(t, srv, http.MethodPost, "/api/v1/table/page", `{"action":"size","size":1}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	view := decode[map[string]any](t, w)
	assert.EqualValues(t, 1, view["page_size"])
	assert.EqualValues(t, 2, view["total_pages"])

	w = do(t, srv, http.MethodPost, "/api/v1/table/page", `{"action":"next"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode[map[string]any](t, w)["page_index"])

	w = do(t, srv, http.MethodPost, "/api/v1/table/page", `{"action":"next"}`)
	assert.EqualValues(t, 1, decode[map[string]any](t, w)["page_index"], "clamped at the last page")

	w = do(t, srv, http.MethodPost, "/api/v1/table/page", `{"action":"first"}`)
	assert.EqualValues(t, 0, decode[map[string]any](t, w)["page_index"])

	w = do(t, srv, http.MethodPost, "/api/v1/table/page", `{"action":"size","size":0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, srv, http.MethodPost, "/api/v1/table/page", `{"action":"sideways"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(t, srv, http.MethodPost, "/api/v1/table/mode", `{"mode":"csv"}`)
	require.Equal(t, http.StatusOK, w.Code)
	view = decode[map[string]any](t, w)
	assert.Equal(t, "csv", view["mode"])
	assert.Contains(t, view["text"], `"s","p","o"`)
}

func TestServer_ResizeColumn(t *testing.T) {
	srv := newTestServer(t, nil)
	submit(t, srv)

	w := do(t, srv, http.MethodPost, "/api/v1/table/columns/0/resize", `{"delta":-1000}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	out := decode[map[string]any](t, w)
	assert.EqualValues(t, 0, out["index"])
	assert.EqualValues(t, 60, out["width"])

	w = do(t, srv, http.MethodPost, "/api/v1/table/columns/9/resize", `{"delta":10}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_GraphSelection(t *testing.T) {
	srv := newTestServer(t, nil)
	submit(t, srv)

	w := do(t, srv, http.MethodPost, "/api/v1/graph/select", `{"kind":"node","id":"http://x/B"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	sel := decode[map[string]any](t, w)
	node := sel["selected"].(map[string]any)
	assert.Equal(t, "http://x/B", node["id"])
	assert.Equal(t, "B", node["label"])
	assert.Len(t, node["rows"], 2, "B is object of row 0 and subject of row 1")

	w = do(t, srv, http.MethodGet, "/api/v1/graph", "")
	g := decode[map[string]any](t, w)
	assert.Equal(t, []any{"http://x/B"}, g["highlighted"])
	assert.Len(t, g["nodes"], 3)
	assert.Len(t, g["edges"], 2)
	assert.Len(t, g["positions"], 3)

	edges := g["edges"].([]any)
	edgeID := edges[0].(map[string]any)["data"].(map[string]any)["id"].(string)
	w = do(t, srv, http.MethodPost, "/api/v1/graph/select", `{"kind":"edge","id":"`+edgeID+`"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	sel = decode[map[string]any](t, w)
	assert.NotNil(t, sel["edge"])
	assert.Equal(t, "http://x/B", sel["selected"].(map[string]any)["id"], "edge click keeps the node selection")

	w = do(t, srv, http.MethodPost, "/api/v1/graph/select", `{"kind":"node","id":"http://x/Z"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, srv, http.MethodDelete, "/api/v1/graph/select", "")
	require.Equal(t, http.StatusOK, w.Code)
	g = decode[map[string]any](t, w)
	assert.Empty(t, g["highlighted"])
	assert.Nil(t, g["selected"])
}

func TestServer_LayoutAndViewport(t *testing.T) {
	srv := newTestServer(t, nil)
	submit(t, srv)

	w := do(t, srv, http.MethodPut, "/api/v1/graph/layout", `{"name":"grid"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "grid", decode[map[string]any](t, w)["layout"])

	w = do(t, srv, http.MethodPut, "/api/v1/graph/layout", `{"name":"cose-bilkent"}`)
	require.Equal(t, http.StatusOK, w.Code)
	g := decode[map[string]any](t, w)
	assert.Equal(t, "cose", g["layout"], "enhanced layout falls back")
	assert.Equal(t, "cose-bilkent", g["requested_layout"])

	w = do(t, srv, http.MethodPut, "/api/v1/graph/layout", `{"name":"spiral"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, srv, http.MethodPost, "/api/v1/graph/viewport", `{"action":"zoom_in"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.InDelta(t, 1.2, decode[map[string]any](t, w)["zoom"], 1e-9)

	w = do(t, srv, http.MethodPost, "/api/v1/graph/viewport", `{"action":"reset"}`)
	assert.InDelta(t, 1.0, decode[map[string]any](t, w)["zoom"], 1e-9)

	w = do(t, srv, http.MethodPost, "/api/v1/graph/viewport", `{"action":"spin"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(t, srv, http.MethodGet, "/api/v1/layouts", "")
	require.Equal(t, http.StatusOK, w.Code)
	layouts := decode[map[string]any](t, w)
	assert.Len(t, layouts["layouts"], 6)
	assert.Equal(t, "cose", layouts["current"])
}

func TestServer_ResetAndHistory(t *testing.T) {
	srv := newTestServer(t, nil)
	submit(t, srv)

	w := do(t, srv, http.MethodPost, "/api/v1/reset", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, decode[board.Summary](t, w).Rows)

	w = do(t, srv, http.MethodGet, "/api/v1/table", "")
	assert.Equal(t, true, decode[map[string]any](t, w)["empty"])

	w = do(t, srv, http.MethodGet, "/api/v1/history?limit=10", "")
	require.Equal(t, http.StatusOK, w.Code)
	hist := decode[struct {
		Entries []store.Entry `json:"entries"`
	}](t, w)
	require.Len(t, hist.Entries, 1)
	assert.Equal(t, "SELECT * WHERE { ?s ?p ?o }", hist.Entries[0].Query)
	assert.Equal(t, store.StatusOK, hist.Entries[0].Status)
}

func TestServer_Exports(t *testing.T) {
	srv := newTestServer(t, nil)
	submit(t, srv)

	tests := []struct {
		file        string
		contentType string
		contains    string
	}{
		{file: "results.csv", contentType: "text/csv", contains: `"http://x/A","http://x/rel","http://x/B"`},
		{file: "results.json", contentType: "application/json", contains: `"vars"`},
		{file: "graph.json", contentType: "application/json", contains: `"elements"`},
		{file: "graph.png", contentType: "image/png", contains: "\x89PNG"},
		{file: "query.sparql", contentType: "application/sparql-query", contains: "SELECT * WHERE"},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			w := do(t, srv, http.MethodGet, "/export/"+tt.file, "")
			require.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Header().Get("Content-Type"), tt.contentType)
			assert.Equal(t, `attachment; filename="`+tt.file+`"`, w.Header().Get("Content-Disposition"))
			assert.Contains(t, w.Body.String(), tt.contains)
		})
	}
}

func TestServer_Metrics(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.RegisterMetrics(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("sparqlboard_queries_total 0\n"))
	}))

	w := do(t, srv, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "sparqlboard_queries_total")
}

func TestServer_StartAndShutdown(t *testing.T) {
	srv := newTestServer(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(ctx) }()

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServer_StartListenFailure(t *testing.T) {
	srv, err := server.New(server.Config{ListenAddr: "256.0.0.1:bad"}, newTestBoard(t, nil))
	require.NoError(t, err)

	err = srv.Start(context.Background())
	require.Error(t, err)
	assert.True(t, sberr.HasCode(err, sberr.CodeServerStartFailure))
}
