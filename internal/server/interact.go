// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/sigil-dev/sparqlboard/internal/events"
	"github.com/sigil-dev/sparqlboard/internal/surface"
)

// registerInteractionRoutes mounts the pointer, hover, and focus
// operations a browser front end drives while the user works the views.
func (s *Server) registerInteractionRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "begin-column-drag",
		Method:      http.MethodPost,
		Path:        "/api/v1/table/columns/{index}/drag",
		Summary:     "Start a pointer resize of one column",
		Description: "Subsequent pointermove input events resize the column from the pointer delta; pointerup ends the drag.",
		Tags:        []string{"table"},
	}, s.handleBeginDrag)

	huma.Register(s.api, huma.Operation{
		OperationID: "dispatch-input",
		Method:      http.MethodPost,
		Path:        "/api/v1/input",
		Summary:     "Deliver a pointer, resize, or key event to the views",
		Tags:        []string{"input"},
	}, s.handleInput)

	huma.Register(s.api, huma.Operation{
		OperationID: "hover-node",
		Method:      http.MethodPost,
		Path:        "/api/v1/graph/hover",
		Summary:     "Show the tooltip for a node",
		Tags:        []string{"graph"},
	}, s.handleHover)

	huma.Register(s.api, huma.Operation{
		OperationID: "clear-hover",
		Method:      http.MethodDelete,
		Path:        "/api/v1/graph/hover",
		Summary:     "Hide the tooltip",
		Tags:        []string{"graph"},
	}, s.handleUnhover)

	huma.Register(s.api, huma.Operation{
		OperationID: "open-focus",
		Method:      http.MethodPost,
		Path:        "/api/v1/graph/focus",
		Summary:     "Open the enlarged focus view",
		Description: "The focus view is an independent rendering of the same graph. A keydown input event with key Escape closes it.",
		Tags:        []string{"graph"},
	}, s.handleOpenFocus)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-focus",
		Method:      http.MethodGet,
		Path:        "/api/v1/graph/focus",
		Summary:     "Snapshot of the open focus view",
		Tags:        []string{"graph"},
	}, s.handleGetFocus)

	huma.Register(s.api, huma.Operation{
		OperationID: "close-focus",
		Method:      http.MethodDelete,
		Path:        "/api/v1/graph/focus",
		Summary:     "Close the focus view",
		Tags:        []string{"graph"},
	}, s.handleCloseFocus)
}

type beginDragInput struct {
	Index int `path:"index" minimum:"0"`
	Body  struct {
		X float64 `json:"x" doc:"Pointer x position where the drag starts"`
	}
}

type inputEventInput struct {
	Body struct {
		Name string  `json:"name" enum:"pointermove,pointerup,resize,keydown"`
		X    float64 `json:"x,omitempty"`
		Y    float64 `json:"y,omitempty"`
		Key  string  `json:"key,omitempty"`
	}
}

type inputEventOutput struct {
	Body struct {
		Listeners int `json:"listeners" doc:"Handlers still registered after dispatch"`
	}
}

type hoverInput struct {
	Body struct {
		ID string `json:"id" minLength:"1"`
	}
}

type hoverOutput struct {
	Body struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	}
}

type focusOutput struct {
	Body surface.Snapshot
}

func (s *Server) handleBeginDrag(_ context.Context, input *beginDragInput) (*resizeColumnOutput, error) {
	w, err := s.board.BeginColumnDrag(input.Index, input.Body.X)
	if err != nil {
		return nil, apiError("starting column drag", err)
	}
	out := &resizeColumnOutput{}
	out.Body.Index = input.Index
	out.Body.Width = w
	return out, nil
}

func (s *Server) handleInput(_ context.Context, input *inputEventInput) (*inputEventOutput, error) {
	err := s.board.Dispatch(events.Event{
		Name: input.Body.Name,
		X:    input.Body.X,
		Y:    input.Body.Y,
		Key:  input.Body.Key,
	})
	if err != nil {
		return nil, apiError("dispatching input", err)
	}
	out := &inputEventOutput{}
	out.Body.Listeners = s.board.Listeners()
	return out, nil
}

func (s *Server) handleHover(_ context.Context, input *hoverInput) (*hoverOutput, error) {
	text, err := s.board.Hover(input.Body.ID)
	if err != nil {
		return nil, apiError("hovering node", err)
	}
	out := &hoverOutput{}
	out.Body.ID = input.Body.ID
	out.Body.Text = text
	return out, nil
}

func (s *Server) handleUnhover(_ context.Context, _ *struct{}) (*graphOutput, error) {
	s.board.Unhover()
	return s.graphView(), nil
}

func (s *Server) handleOpenFocus(ctx context.Context, _ *struct{}) (*focusOutput, error) {
	snap, err := s.board.OpenFocus(ctx)
	if err != nil {
		return nil, apiError("opening focus view", err)
	}
	return &focusOutput{Body: snap}, nil
}

func (s *Server) handleGetFocus(_ context.Context, _ *struct{}) (*focusOutput, error) {
	snap, ok := s.board.FocusView()
	if !ok {
		return nil, huma.Error404NotFound("focus view is not open")
	}
	return &focusOutput{Body: snap}, nil
}

func (s *Server) handleCloseFocus(_ context.Context, _ *struct{}) (*graphOutput, error) {
	s.board.CloseFocus()
	return s.graphView(), nil
}
