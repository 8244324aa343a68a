// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/sigil-dev/sparqlboard/internal/board"
	"github.com/sigil-dev/sparqlboard/internal/graph"
	"github.com/sigil-dev/sparqlboard/internal/results"
	"github.com/sigil-dev/sparqlboard/internal/store"
	"github.com/sigil-dev/sparqlboard/internal/surface"
	"github.com/sigil-dev/sparqlboard/internal/table"
	sberr "github.com/sigil-dev/sparqlboard/pkg/errors"
)

func (s *Server) registerRoutes() {
	// Query endpoints
	huma.Register(s.api, huma.Operation{
		OperationID: "run-query",
		Method:      http.MethodPost,
		Path:        "/api/v1/query",
		Summary:     "Execute a query and bind its results",
		Tags:        []string{"query"},
	}, s.handleQuery)

	huma.Register(s.api, huma.Operation{
		OperationID: "reset-query",
		Method:      http.MethodPost,
		Path:        "/api/v1/reset",
		Summary:     "Clear the query, results, and selection",
		Tags:        []string{"query"},
	}, s.handleReset)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-results",
		Method:      http.MethodGet,
		Path:        "/api/v1/results",
		Summary:     "Normalized result set",
		Tags:        []string{"query"},
	}, s.handleResults)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-history",
		Method:      http.MethodGet,
		Path:        "/api/v1/history",
		Summary:     "Recorded queries, newest first",
		Tags:        []string{"query"},
	}, s.handleHistory)

	// Table endpoints
	huma.Register(s.api, huma.Operation{
		OperationID: "get-table",
		Method:      http.MethodGet,
		Path:        "/api/v1/table",
		Summary:     "Current table page",
		Tags:        []string{"table"},
	}, s.handleTable)

	huma.Register(s.api, huma.Operation{
		OperationID: "page-table",
		Method:      http.MethodPost,
		Path:        "/api/v1/table/page",
		Summary:     "Move between pages or change the page size",
		Tags:        []string{"table"},
	}, s.handleTablePage)

	huma.Register(s.api, huma.Operation{
		OperationID: "set-table-mode",
		Method:      http.MethodPost,
		Path:        "/api/v1/table/mode",
		Summary:     "Switch between table, json, and csv views",
		Tags:        []string{"table"},
	}, s.handleTableMode)

	huma.Register(s.api, huma.Operation{
		OperationID: "resize-column",
		Method:      http.MethodPost,
		Path:        "/api/v1/table/columns/{index}/resize",
		Summary:     "Resize one column",
		Tags:        []string{"table"},
	}, s.handleResizeColumn)

	// Graph endpoints
	huma.Register(s.api, huma.Operation{
		OperationID: "get-graph",
		Method:      http.MethodGet,
		Path:        "/api/v1/graph",
		Summary:     "Projected graph with positions and selection",
		Tags:        []string{"graph"},
	}, s.handleGraph)

	huma.Register(s.api, huma.Operation{
		OperationID: "set-graph-layout",
		Method:      http.MethodPut,
		Path:        "/api/v1/graph/layout",
		Summary:     "Re-render the graph with a layout",
		Tags:        []string{"graph"},
	}, s.handleSetLayout)

	huma.Register(s.api, huma.Operation{
		OperationID: "select-graph-element",
		Method:      http.MethodPost,
		Path:        "/api/v1/graph/select",
		Summary:     "Select a node or inspect an edge",
		Tags:        []string{"graph"},
	}, s.handleSelect)

	huma.Register(s.api, huma.Operation{
		OperationID: "clear-graph-selection",
		Method:      http.MethodDelete,
		Path:        "/api/v1/graph/select",
		Summary:     "Clear the selection",
		Tags:        []string{"graph"},
	}, s.handleClearSelection)

	huma.Register(s.api, huma.Operation{
		OperationID: "graph-viewport",
		Method:      http.MethodPost,
		Path:        "/api/v1/graph/viewport",
		Summary:     "Zoom, fit, or reset the viewport",
		Tags:        []string{"graph"},
	}, s.handleViewport)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-layouts",
		Method:      http.MethodGet,
		Path:        "/api/v1/layouts",
		Summary:     "Selectable layouts",
		Tags:        []string{"graph"},
	}, s.handleLayouts)
}

// apiError maps a coded error onto its HTTP status.
func apiError(msg string, err error) error {
	status := sberr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		slog.Warn(msg, "error", err, "code", sberr.CodeOf(err))
	}
	return huma.NewError(status, msg+": "+err.Error())
}

// --- Request/Response types for huma ---

type queryInput struct {
	Body struct {
		Query string `json:"query" minLength:"1" doc:"SPARQL query text"`
	}
}

type summaryOutput struct {
	Body board.Summary
}

type resultsBody struct {
	Variables []string          `json:"variables"`
	Rows      []results.Binding `json:"rows"`
}

type resultsOutput struct {
	Body resultsBody
}

type historyInput struct {
	Limit  int `query:"limit" minimum:"0" default:"50" doc:"Maximum entries, 0 for all"`
	Offset int `query:"offset" minimum:"0" doc:"Entries to skip"`
}

type historyOutput struct {
	Body struct {
		Entries []*store.Entry `json:"entries"`
	}
}

type tableOutput struct {
	Body table.View
}

// Page actions accepted by the table page operation.
const (
	PageNext  = "next"
	PagePrev  = "prev"
	PageFirst = "first"
	PageSize  = "size"
)

type tablePageInput struct {
	Body struct {
		Action string `json:"action" enum:"next,prev,first,size" doc:"Page action"`
		Size   int    `json:"size,omitempty" doc:"New page size for the size action"`
	}
}

type tableModeInput struct {
	Body struct {
		Mode string `json:"mode" enum:"table,json,csv" doc:"View mode"`
	}
}

type resizeColumnInput struct {
	Index int `path:"index" minimum:"0"`
	Body  struct {
		Delta int `json:"delta" doc:"Pixels to add to the current width, negative to shrink"`
	}
}

type resizeColumnOutput struct {
	Body struct {
		Index int `json:"index"`
		Width int `json:"width"`
	}
}

type graphBody struct {
	Layout          surface.Layout           `json:"layout"`
	RequestedLayout surface.Layout           `json:"requested_layout"`
	Nodes           []graph.NodeElement      `json:"nodes"`
	Edges           []graph.EdgeElement      `json:"edges"`
	Positions       map[string]surface.Point `json:"positions"`
	Highlighted     []string                 `json:"highlighted"`
	Selected        *graph.Entity            `json:"selected,omitempty"`
	Tooltip         *board.Tooltip           `json:"tooltip,omitempty"`
	FocusOpen       bool                     `json:"focus_open"`
	Viewport        surface.Viewport         `json:"viewport"`
	Empty           bool                     `json:"empty"`
	Message         string                   `json:"message,omitempty"`
}

type graphOutput struct {
	Body graphBody
}

type setLayoutInput struct {
	Body struct {
		Name string `json:"name" doc:"Layout name"`
	}
}

type selectInput struct {
	Body struct {
		Kind string `json:"kind" enum:"node,edge"`
		ID   string `json:"id" minLength:"1"`
	}
}

type selectOutput struct {
	Body struct {
		Kind     string        `json:"kind"`
		Node     *graph.Entity `json:"node,omitempty"`
		Edge     *graph.Edge   `json:"edge,omitempty"`
		Selected *graph.Entity `json:"selected,omitempty"`
	}
}

type viewportInput struct {
	Body struct {
		Action string `json:"action" enum:"zoom_in,zoom_out,fit,reset"`
	}
}

type viewportOutput struct {
	Body surface.Viewport
}

type layoutsOutput struct {
	Body struct {
		Layouts   []surface.LayoutOption `json:"layouts"`
		Current   surface.Layout         `json:"current"`
		Requested surface.Layout         `json:"requested"`
	}
}

// --- Handlers ---

func (s *Server) handleQuery(ctx context.Context, input *queryInput) (*summaryOutput, error) {
	sum, err := s.board.Submit(ctx, input.Body.Query)
	if err != nil {
		return nil, apiError("executing query", err)
	}
	return &summaryOutput{Body: sum}, nil
}

func (s *Server) handleReset(ctx context.Context, _ *struct{}) (*summaryOutput, error) {
	s.board.Reset(ctx)
	return &summaryOutput{Body: s.board.Status()}, nil
}

func (s *Server) handleResults(_ context.Context, _ *struct{}) (*resultsOutput, error) {
	rs := s.board.Results()
	return &resultsOutput{Body: resultsBody{Variables: rs.Variables, Rows: rs.Rows}}, nil
}

func (s *Server) handleHistory(ctx context.Context, input *historyInput) (*historyOutput, error) {
	entries, err := s.board.History(ctx, store.ListOpts{Limit: input.Limit, Offset: input.Offset})
	if err != nil {
		return nil, apiError("listing history", err)
	}
	out := &historyOutput{}
	out.Body.Entries = entries
	return out, nil
}

func (s *Server) tableView() (*tableOutput, error) {
	v, err := s.board.Table()
	if err != nil {
		return nil, apiError("rendering table", err)
	}
	return &tableOutput{Body: v}, nil
}

func (s *Server) handleTable(_ context.Context, _ *struct{}) (*tableOutput, error) {
	return s.tableView()
}

func (s *Server) handleTablePage(_ context.Context, input *tablePageInput) (*tableOutput, error) {
	switch input.Body.Action {
	case PageNext:
		s.board.NextPage()
	case PagePrev:
		s.board.PrevPage()
	case PageFirst:
		s.board.FirstPage()
	case PageSize:
		if err := s.board.SetPageSize(input.Body.Size); err != nil {
			return nil, apiError("setting page size", err)
		}
	}
	return s.tableView()
}

func (s *Server) handleTableMode(_ context.Context, input *tableModeInput) (*tableOutput, error) {
	if err := s.board.SetMode(table.Mode(input.Body.Mode)); err != nil {
		return nil, apiError("setting table mode", err)
	}
	return s.tableView()
}

func (s *Server) handleResizeColumn(_ context.Context, input *resizeColumnInput) (*resizeColumnOutput, error) {
	w, err := s.board.ResizeColumn(input.Index, input.Body.Delta)
	if err != nil {
		return nil, apiError("resizing column", err)
	}
	out := &resizeColumnOutput{}
	out.Body.Index = input.Index
	out.Body.Width = w
	return out, nil
}

func (s *Server) graphView() *graphOutput {
	v := s.board.GraphView()
	body := graphBody{
		Layout:          v.Layout,
		RequestedLayout: v.Requested,
		Nodes:           v.Elements.Nodes,
		Edges:           v.Elements.Edges,
		Positions:       make(map[string]surface.Point, len(v.Nodes)),
		Highlighted:     v.Highlighted,
		Selected:        v.Selected,
		Tooltip:         v.Tooltip,
		FocusOpen:       v.FocusOpen,
		Viewport:        v.Viewport,
		Empty:           v.Empty,
		Message:         v.Message,
	}
	for _, n := range v.Nodes {
		body.Positions[n.ID] = n.Position
	}
	return &graphOutput{Body: body}
}

func (s *Server) handleGraph(_ context.Context, _ *struct{}) (*graphOutput, error) {
	return s.graphView(), nil
}

func (s *Server) handleSetLayout(ctx context.Context, input *setLayoutInput) (*graphOutput, error) {
	if _, err := s.board.SetLayout(ctx, surface.Layout(input.Body.Name)); err != nil {
		return nil, apiError("setting layout", err)
	}
	return s.graphView(), nil
}

func (s *Server) handleSelect(_ context.Context, input *selectInput) (*selectOutput, error) {
	out := &selectOutput{}
	out.Body.Kind = input.Body.Kind
	switch input.Body.Kind {
	case "edge":
		e, err := s.board.SelectEdge(input.Body.ID)
		if err != nil {
			return nil, apiError("selecting edge", err)
		}
		out.Body.Edge = &e
	default:
		n, err := s.board.SelectNode(input.Body.ID)
		if err != nil {
			return nil, apiError("selecting node", err)
		}
		out.Body.Node = &n
	}
	if sel, ok := s.board.Selected(); ok {
		out.Body.Selected = &sel
	}
	return out, nil
}

func (s *Server) handleClearSelection(_ context.Context, _ *struct{}) (*graphOutput, error) {
	s.board.ClearSelection()
	return s.graphView(), nil
}

func (s *Server) handleViewport(_ context.Context, input *viewportInput) (*viewportOutput, error) {
	vp, err := s.board.ApplyViewport(input.Body.Action)
	if err != nil {
		return nil, apiError("updating viewport", err)
	}
	return &viewportOutput{Body: vp}, nil
}

func (s *Server) handleLayouts(_ context.Context, _ *struct{}) (*layoutsOutput, error) {
	v := s.board.GraphView()
	out := &layoutsOutput{}
	out.Body.Layouts = surface.LayoutOptions()
	out.Body.Current = v.Layout
	out.Body.Requested = v.Requested
	return out, nil
}
