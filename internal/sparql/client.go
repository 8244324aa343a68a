// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

// Package sparql fetches query results from a SPARQL protocol endpoint.
package sparql

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	sberr "github.com/sigil-dev/sparqlboard/pkg/errors"
)

const (
	// DefaultEndpoint is used when no endpoint is configured.
	DefaultEndpoint = "https://dbpedia.org/sparql"
	// ResultsJSON is the SPARQL 1.1 JSON results media type.
	ResultsJSON = "application/sparql-results+json"
	// DefaultTimeout bounds a single request.
	DefaultTimeout = 30 * time.Second

	maxBodyBytes  = 64 << 20
	maxErrorBytes = 512
)

// Options configures a Client.
type Options struct {
	Endpoint string
	Accept   string
	Timeout  time.Duration
	// Username and Password send HTTP basic auth when Username is set.
	Username string
	Password string
	// Token is sent as a bearer token and takes precedence over basic auth.
	Token string
	// HTTPClient overrides the default client; tests point it at httptest.
	HTTPClient *http.Client
}

// Client issues GET requests of the form endpoint?query=... and returns the
// raw results document.
type Client struct {
	endpoint *url.URL
	accept   string
	auth     func(*http.Request)
	http     *http.Client
}

// New validates opts and returns a client.
func New(opts Options) (*Client, error) {
	raw := strings.TrimSpace(opts.Endpoint)
	if raw == "" {
		raw = DefaultEndpoint
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, sberr.New(sberr.CodeSparqlRequestInvalid, "endpoint must be an absolute http(s) url",
			sberr.FieldEndpoint(raw))
	}

	accept := opts.Accept
	if accept == "" {
		accept = ResultsJSON
	}
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}

	return &Client{endpoint: u, accept: accept, auth: authenticator(opts), http: hc}, nil
}

func authenticator(opts Options) func(*http.Request) {
	switch {
	case opts.Token != "":
		return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+opts.Token) }
	case opts.Username != "":
		return func(r *http.Request) { r.SetBasicAuth(opts.Username, opts.Password) }
	default:
		return func(*http.Request) {}
	}
}

// Endpoint returns the configured endpoint url.
func (c *Client) Endpoint() string { return c.endpoint.String() }

// Execute runs query and returns the response body. The body is checked to
// be JSON but is otherwise untouched; normalization happens downstream.
func (c *Client) Execute(ctx context.Context, query string) ([]byte, error) {
	if strings.TrimSpace(query) == "" {
		return nil, sberr.New(sberr.CodeSparqlRequestInvalid, "query is empty")
	}

	u := *c.endpoint
	q := u.Query()
	q.Set("query", query)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, sberr.Wrap(err, sberr.CodeSparqlRequestInvalid, "building request", sberr.FieldEndpoint(c.Endpoint()))
	}
	req.Header.Set("Accept", c.accept)
	c.auth(req)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, sberr.Wrap(err, sberr.CodeSparqlTimeout, "endpoint did not answer in time", sberr.FieldEndpoint(c.Endpoint()))
		}
		return nil, sberr.Wrap(err, sberr.CodeSparqlUpstreamFailure, "request failed", sberr.FieldEndpoint(c.Endpoint()))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBytes))
		return nil, sberr.New(sberr.CodeSparqlUpstreamFailure,
			fmt.Sprintf("endpoint returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
			sberr.FieldEndpoint(c.Endpoint()),
			sberr.Field("status", resp.StatusCode),
		)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, sberr.Wrap(err, sberr.CodeSparqlTimeout, "reading response timed out", sberr.FieldEndpoint(c.Endpoint()))
		}
		return nil, sberr.Wrap(err, sberr.CodeSparqlUpstreamFailure, "reading response", sberr.FieldEndpoint(c.Endpoint()))
	}
	if !gjson.ValidBytes(body) {
		return nil, sberr.New(sberr.CodeSparqlResponseInvalid, "endpoint did not return json",
			sberr.FieldEndpoint(c.Endpoint()),
			sberr.Field("content_type", resp.Header.Get("Content-Type")),
		)
	}

	slog.Debug("sparql query executed",
		"endpoint", c.Endpoint(),
		"bytes", len(body),
		"duration", time.Since(start),
	)
	return body, nil
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}
