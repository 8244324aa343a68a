// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package sparql_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigil-dev/sparqlboard/internal/sparql"
	sberr "github.com/sigil-dev/sparqlboard/pkg/errors"
)

const payload = `{"head":{"vars":["s"]},"results":{"bindings":[{"s":{"type":"uri","value":"http://ex.org/A"}}]}}`

func TestClient_Execute(t *testing.T) {
	var gotQuery, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", sparql.ResultsJSON)
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	c, err := sparql.New(sparql.Options{Endpoint: srv.URL + "/sparql"})
	require.NoError(t, err)

	body, err := c.Execute(context.Background(), "SELECT * WHERE { ?s ?p ?o } LIMIT 1")
	require.NoError(t, err)
	assert.JSONEq(t, payload, string(body))
	assert.Equal(t, "SELECT * WHERE { ?s ?p ?o } LIMIT 1", gotQuery)
	assert.Equal(t, sparql.ResultsJSON, gotAccept)
}

func TestClient_PreservesEndpointQuery(t *testing.T) {
	var got map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	c, err := sparql.New(sparql.Options{Endpoint: srv.URL + "/sparql?default-graph-uri=http://ex.org"})
	require.NoError(t, err)
	_, err = c.Execute(context.Background(), "ASK {}")
	require.NoError(t, err)
	assert.Equal(t, []string{"http://ex.org"}, got["default-graph-uri"])
	assert.Equal(t, []string{"ASK {}"}, got["query"])
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		code    sberr.Code
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
			code: sberr.CodeSparqlUpstreamFailure,
		},
		{
			name: "bad request",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "parse error", http.StatusBadRequest)
			},
			code: sberr.CodeSparqlUpstreamFailure,
		},
		{
			name: "html body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "text/html")
				_, _ = w.Write([]byte("<html>nope</html>"))
			},
			code: sberr.CodeSparqlResponseInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c, err := sparql.New(sparql.Options{Endpoint: srv.URL})
			require.NoError(t, err)
			_, err = c.Execute(context.Background(), "SELECT * {}")
			require.Error(t, err)
			assert.Equal(t, tt.code, sberr.CodeOf(err))
		})
	}
}

func TestClient_UpstreamStatusMapsToBadGateway(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, err := sparql.New(sparql.Options{Endpoint: srv.URL})
	require.NoError(t, err)
	_, err = c.Execute(context.Background(), "SELECT * {}")
	assert.Equal(t, http.StatusBadGateway, sberr.HTTPStatus(err))
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c, err := sparql.New(sparql.Options{Endpoint: srv.URL})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.Execute(ctx, "SELECT * {}")
	require.Error(t, err)
	assert.True(t, sberr.IsTimeout(err))
}

func TestClient_InvalidInput(t *testing.T) {
	_, err := sparql.New(sparql.Options{Endpoint: "ftp://ex.org"})
	assert.True(t, sberr.IsInvalidInput(err))

	c, err := sparql.New(sparql.Options{})
	require.NoError(t, err)
	assert.Equal(t, sparql.DefaultEndpoint, c.Endpoint())

	_, err = c.Execute(context.Background(), "   ")
	assert.True(t, sberr.IsInvalidInput(err))
}

func TestClient_Credentials(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	tests := []struct {
		name string
		opts sparql.Options
		want string
	}{
		{name: "anonymous", want: ""},
		{name: "basic", opts: sparql.Options{Username: "alice", Password: "pw"}, want: "Basic YWxpY2U6cHc="},
		{name: "bearer wins", opts: sparql.Options{Username: "alice", Password: "pw", Token: "t0k"}, want: "Bearer t0k"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			opts.Endpoint = srv.URL
			c, err := sparql.New(opts)
			require.NoError(t, err)
			_, err = c.Execute(context.Background(), "ASK {}")
			require.NoError(t, err)
			assert.Equal(t, tt.want, gotAuth)
		})
	}
}
