// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

// Package board glues query execution to the table and graph views. It
// normalizes every delivered payload, projects it, binds it to the
// presenter and the surface together, and owns the selection shared
// between them.
package board

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sigil-dev/sparqlboard/internal/events"
	"github.com/sigil-dev/sparqlboard/internal/graph"
	"github.com/sigil-dev/sparqlboard/internal/metrics"
	"github.com/sigil-dev/sparqlboard/internal/results"
	"github.com/sigil-dev/sparqlboard/internal/store"
	"github.com/sigil-dev/sparqlboard/internal/surface"
	"github.com/sigil-dev/sparqlboard/internal/table"
	sberr "github.com/sigil-dev/sparqlboard/pkg/errors"
)

// Executor runs a query and returns the raw results document.
type Executor interface {
	Execute(ctx context.Context, query string) ([]byte, error)
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, query string) ([]byte, error)

func (f ExecutorFunc) Execute(ctx context.Context, query string) ([]byte, error) {
	return f(ctx, query)
}

// Options configures a Board. Only Executor is required for Submit.
type Options struct {
	Executor Executor
	History  store.HistoryStore
	Metrics  metrics.Recorder
	// Endpoint is recorded with each history entry.
	Endpoint string

	Table   table.Options
	Layout  surface.Layout
	Surface surface.Options
	Image   surface.ImageOptions
	// Bus carries host events to the views. New creates one when nil.
	Bus *events.Bus
}

// Summary describes the outcome of one delivered response.
type Summary struct {
	Seq       uint64       `json:"seq"`
	Status    store.Status `json:"status"`
	Variables []string     `json:"variables"`
	Rows      int          `json:"rows"`
	Nodes     int          `json:"nodes"`
	Edges     int          `json:"edges"`
	Skipped   int          `json:"skipped"`
	Error     string       `json:"error,omitempty"`
}

type pending struct {
	query string
	start time.Time
}

// Board is safe for concurrent use; every state transition runs under one
// mutex.
type Board struct {
	opts Options

	mu        sync.Mutex
	seq       uint64
	applied   uint64
	inflight  map[uint64]pending
	query     string
	rs        results.ResultSet
	graph     graph.Graph
	presenter *table.Presenter
	surface   *surface.Surface
	selected  surface.Selection
	lastErr   error
	watchers  watchers
}

// New returns a board with empty views.
func New(opts Options) *Board {
	if opts.Metrics == nil {
		opts.Metrics = metrics.Default()
	}
	if opts.Layout == "" {
		opts.Layout = surface.DefaultLayout
	}
	if opts.Image.Width <= 0 || opts.Image.Height <= 0 {
		opts.Image = surface.DefaultImageOptions()
	}
	if opts.Bus == nil {
		opts.Bus = &events.Bus{}
	}

	b := &Board{
		opts:      opts,
		inflight:  make(map[uint64]pending),
		rs:        results.Empty(),
		graph:     graph.Empty(),
		presenter: table.NewPresenter(opts.Table),
	}

	so := opts.Surface
	if so.Bus == nil {
		so.Bus = opts.Bus
	}
	// Both callbacks run with b.mu held.
	userNode, userEdge := so.OnNodeSelected, so.OnEdgeSelected
	so.OnNodeSelected = func(e graph.Entity) {
		b.selected = surface.Selected(e.ID)
		if userNode != nil {
			userNode(e)
		}
	}
	so.OnEdgeSelected = userEdge
	b.surface = surface.New(so)
	b.renderLocked(context.Background())
	return b
}

// Begin registers a new request for query and returns its sequence number.
// Any response still in flight becomes stale.
func (b *Board) Begin(query string) (uint64, error) {
	if strings.TrimSpace(query) == "" {
		return 0, sberr.New(sberr.CodeBoardQueryInvalid, "query is empty")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	b.inflight[b.seq] = pending{query: query, start: time.Now()}
	b.query = query
	return b.seq, nil
}

// Latest returns the most recently issued sequence number.
func (b *Board) Latest() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.seq
}

// Deliver applies the response for seq. A response whose seq is not the
// latest issued is discarded and reported as stale. A failed execution
// clears every view to its empty state and returns execErr.
func (b *Board) Deliver(ctx context.Context, seq uint64, raw []byte, execErr error) (Summary, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	req, known := b.inflight[seq]
	delete(b.inflight, seq)
	if !known {
		return Summary{Seq: seq}, sberr.New(sberr.CodeBoardQueryInvalid, "unknown request sequence", sberr.FieldSeq(seq))
	}
	elapsed := time.Since(req.start)
	observe := func(status string) { metrics.ObserveQuery(b.opts.Metrics, status, elapsed) }

	if seq != b.seq {
		observe(metrics.StatusStale)
		slog.Debug("discarding stale response", "seq", seq, "latest", b.seq)
		sum := Summary{Seq: seq, Status: store.StatusStale, Variables: []string{}}
		b.record(ctx, req, sum, elapsed)
		return sum, sberr.New(sberr.CodeBoardResultStale, "a newer query superseded this response",
			sberr.FieldSeq(seq), sberr.Field("latest", b.seq))
	}

	b.applied = seq
	if execErr != nil {
		observe(metrics.StatusFailed)
		slog.Warn("query execution failed", "seq", seq, "error", execErr)
		b.lastErr = execErr
		b.applyLocked(ctx, results.Empty())
		sum := b.summaryLocked(seq, store.StatusFailed)
		sum.Error = execErr.Error()
		b.record(ctx, req, sum, elapsed)
		b.watchers.notify(sum)
		return sum, execErr
	}

	observe(metrics.StatusOK)
	b.lastErr = nil
	b.applyLocked(ctx, results.Normalize(raw))
	sum := b.summaryLocked(seq, store.StatusOK)
	b.record(ctx, req, sum, elapsed)
	b.watchers.notify(sum)
	return sum, nil
}

// Submit executes query through the configured executor and delivers the
// response. The lock is not held while the executor runs.
func (b *Board) Submit(ctx context.Context, query string) (Summary, error) {
	if b.opts.Executor == nil {
		return Summary{}, sberr.New(sberr.CodeBoardQueryInvalid, "board has no executor")
	}
	seq, err := b.Begin(query)
	if err != nil {
		return Summary{}, err
	}
	raw, err := b.opts.Executor.Execute(ctx, query)
	return b.Deliver(ctx, seq, raw, err)
}

// Reset clears the query text, results, and selection. Responses still in
// flight become stale.
func (b *Board) Reset(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	b.applied = b.seq
	b.query = ""
	b.lastErr = nil
	b.applyLocked(ctx, results.Empty())
	b.watchers.notify(b.summaryLocked(b.seq, store.StatusOK))
}

// applyLocked replaces every view wholesale and clears the selection.
func (b *Board) applyLocked(ctx context.Context, rs results.ResultSet) {
	b.rs = rs
	b.graph = graph.Project(rs)
	b.opts.Metrics.AddSkippedRows(b.graph.Skipped)
	b.presenter.Bind(rs)
	b.selected = surface.NoSelection()
	b.renderLocked(ctx)
}

func (b *Board) renderLocked(ctx context.Context) {
	layout := b.surface.RequestedLayout()
	if layout == "" {
		layout = b.opts.Layout
	}
	if err := b.surface.Render(ctx, b.graph, layout); err != nil {
		slog.Warn("rendering graph", "error", err, "layout", layout)
	}
}

func (b *Board) summaryLocked(seq uint64, status store.Status) Summary {
	vars := b.rs.Variables
	if vars == nil {
		vars = []string{}
	}
	return Summary{
		Seq:       seq,
		Status:    status,
		Variables: vars,
		Rows:      len(b.rs.Rows),
		Nodes:     len(b.graph.Nodes),
		Edges:     len(b.graph.Edges),
		Skipped:   b.graph.Skipped,
	}
}

func (b *Board) record(ctx context.Context, req pending, sum Summary, elapsed time.Duration) {
	if b.opts.History == nil {
		return
	}
	err := b.opts.History.Record(ctx, &store.Entry{
		Seq:      sum.Seq,
		Query:    req.query,
		Endpoint: b.opts.Endpoint,
		Status:   sum.Status,
		Rows:     sum.Rows,
		Nodes:    sum.Nodes,
		Edges:    sum.Edges,
		Skipped:  sum.Skipped,
		Error:    sum.Error,
		Duration: elapsed,
	})
	if err != nil {
		slog.Warn("recording query history", "seq", sum.Seq, "error", err)
	}
}

// Query returns the text of the last submitted query.
func (b *Board) Query() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.query
}

// Results returns the bound result set.
func (b *Board) Results() results.ResultSet {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rs
}

// Graph returns the projected graph.
func (b *Board) Graph() graph.Graph {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.graph
}

// LastError returns the failure of the last applied response, if any.
func (b *Board) LastError() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastErr
}

// Status summarizes the currently applied response.
func (b *Board) Status() Summary {
	b.mu.Lock()
	defer b.mu.Unlock()
	status := store.StatusOK
	if b.lastErr != nil {
		status = store.StatusFailed
	}
	sum := b.summaryLocked(b.applied, status)
	if b.lastErr != nil {
		sum.Error = b.lastErr.Error()
	}
	return sum
}

// History lists recorded queries newest first. Without a store it is empty.
func (b *Board) History(ctx context.Context, opts store.ListOpts) ([]*store.Entry, error) {
	if b.opts.History == nil {
		return []*store.Entry{}, nil
	}
	return b.opts.History.List(ctx, opts)
}

// Close destroys the rendered graph and releases every bus listener.
func (b *Board) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.presenter.CancelDrag()
	b.surface.Destroy()
	b.watchers.closeAll()
}

func (b *Board) exportResult(kind string, err error) {
	b.opts.Metrics.IncExportTotal(kind, err == nil)
	if err != nil {
		slog.Warn("export failed", "kind", kind, "error", err)
	}
}

// ExportCSV renders the full result set as CSV.
func (b *Board) ExportCSV() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.presenter.CSV()
	b.exportResult("csv", nil)
	return out
}

// ExportResultsJSON renders the full result set as indented JSON.
func (b *Board) ExportResultsJSON() ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, err := b.presenter.JSON()
	b.exportResult("results_json", err)
	return data, err
}

// ExportGraphJSON dumps the rendered graph.
func (b *Board) ExportGraphJSON() ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, err := b.surface.ExportGraphJSON()
	b.exportResult("graph_json", err)
	return data, err
}

// ExportImage writes a PNG snapshot of the rendered graph to w.
func (b *Board) ExportImage(w io.Writer) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	err := b.surface.ExportImage(w, b.opts.Image)
	b.exportResult("png", err)
	return err
}

// ExportQuery returns the last submitted query text for download.
func (b *Board) ExportQuery() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.exportResult("query", nil)
	return b.query
}
