// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

// Package surface owns the live rendered graph: single-node selection,
// hover tooltip, viewport transform, layout resolution, and exports.
//
// A Surface is not safe for concurrent use; callers serialize access.
package surface

import (
	"context"
	"log/slog"

	"github.com/sigil-dev/sparqlboard/internal/events"
	"github.com/sigil-dev/sparqlboard/internal/graph"
	sberr "github.com/sigil-dev/sparqlboard/pkg/errors"
)

// EmptyMessage is shown when the rendered graph has no nodes.
const EmptyMessage = "No graph data yet, run a query to visualize results"

// State is the lifecycle of one surface.
type State int

const (
	StateUninitialized State = iota
	StateRendered
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRendered:
		return "rendered"
	case StateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Options configures a Surface.
type Options struct {
	Renderer Renderer
	Layouts  *LayoutProvider
	// Bus receives resize and keydown listeners; nil disables them.
	Bus           *events.Bus
	Size          Size
	ZoomStep      float64
	RenderOptions RenderOptions
	// OnNodeSelected and OnEdgeSelected receive the full data of clicked
	// elements.
	OnNodeSelected func(graph.Entity)
	OnEdgeSelected func(graph.Edge)
}

// Surface is one rendered graph instance.
type Surface struct {
	opts Options

	state     State
	graph     graph.Graph
	requested Layout
	layout    Layout
	inst      Instance
	scope     events.Scope

	selection Selection
	hover     Selection
	viewport  Viewport

	focus *Surface
}

// New returns an uninitialized surface.
func New(opts Options) *Surface {
	if opts.Renderer == nil {
		opts.Renderer = &Headless{}
	}
	if opts.Layouts == nil {
		opts.Layouts = NewLayoutProvider(DefaultLayout, 0)
		if p, ok := opts.Renderer.(EnhancedProber); ok {
			opts.Layouts.RegisterEnhanced(LayoutCoseBilkent, p.ProbeEnhanced)
		}
	}
	if opts.ZoomStep <= 1 {
		opts.ZoomStep = ZoomStep
	}
	if opts.Size.Width <= 0 || opts.Size.Height <= 0 {
		opts.Size = Size{Width: 1200, Height: 800}
	}
	if opts.RenderOptions == (RenderOptions{}) {
		opts.RenderOptions = DefaultRenderOptions()
	}
	return &Surface{
		opts:     opts,
		graph:    graph.Empty(),
		viewport: BaseViewport(),
	}
}

// State returns the lifecycle state.
func (s *Surface) State() State { return s.state }

// Graph returns the graph currently rendered.
func (s *Surface) Graph() graph.Graph { return s.graph }

// Layout returns the layout actually drawn, after any fallback.
func (s *Surface) Layout() Layout { return s.layout }

// RequestedLayout returns the layout last asked for.
func (s *Surface) RequestedLayout() Layout { return s.requested }

// Viewport returns the current pan/zoom.
func (s *Surface) Viewport() Viewport { return s.viewport }

// Selection returns the current node highlight.
func (s *Surface) Selection() Selection { return s.selection }

// Render tears down any prior rendering and draws g with layout. Selection,
// hover, and viewport start fresh. An open focus view is closed.
func (s *Surface) Render(ctx context.Context, g graph.Graph, layout Layout) error {
	if s.state == StateDestroyed {
		return sberr.New(sberr.CodeSurfaceStateInvalid, "surface already destroyed")
	}
	if _, err := ParseLayout(string(layout)); err != nil {
		return err
	}
	if layout == "" {
		layout = DefaultLayout
	}

	s.teardown()

	resolved := s.opts.Layouts.Resolve(ctx, layout)
	inst, err := s.opts.Renderer.Render(ctx, Scene{
		Elements: g.Elements(),
		Layout:   resolved,
		Options:  s.opts.RenderOptions,
	})
	if err != nil {
		s.state = StateUninitialized
		return sberr.Wrap(err, sberr.CodeSurfaceRenderFailure, "rendering graph", sberr.FieldLayout(string(resolved)))
	}

	s.inst = inst
	s.graph = g
	s.requested = layout
	s.layout = resolved
	s.state = StateRendered
	s.scope.On(s.opts.Bus, events.Resize, func(events.Event) {
		if s.inst != nil {
			s.inst.Resize()
		}
	})

	slog.Debug("graph rendered",
		"nodes", len(g.Nodes),
		"edges", len(g.Edges),
		"layout", resolved,
	)
	return nil
}

// SetLayout re-renders the current graph with a different layout.
func (s *Surface) SetLayout(ctx context.Context, layout Layout) error {
	return s.Render(ctx, s.graph, layout)
}

// Destroy releases the rendering and every listener. The surface cannot be
// rendered again.
func (s *Surface) Destroy() {
	if s.state == StateDestroyed {
		return
	}
	s.teardown()
	s.graph = graph.Empty()
	s.state = StateDestroyed
}

func (s *Surface) teardown() {
	s.CloseFocus()
	s.scope.Close()
	if s.inst != nil {
		if err := s.inst.Destroy(); err != nil {
			slog.Warn("destroying graph rendering", "error", err)
		}
		s.inst = nil
	}
	s.selection = NoSelection()
	s.hover = NoSelection()
	s.viewport = BaseViewport()
}

func (s *Surface) requireRendered() error {
	if s.state != StateRendered {
		return sberr.Errorf(sberr.CodeSurfaceStateInvalid, "surface is %s", s.state)
	}
	return nil
}

// SelectNode highlights id, replacing any previous highlight in one step,
// and reports the node's data to OnNodeSelected.
func (s *Surface) SelectNode(id string) (graph.Entity, error) {
	if err := s.requireRendered(); err != nil {
		return graph.Entity{}, err
	}
	n, ok := s.graph.Node(id)
	if !ok {
		return graph.Entity{}, sberr.New(sberr.CodeSurfaceNodeNotFound, "node not in rendered graph", sberr.FieldNodeID(id))
	}

	s.selection = Selected(id)
	if s.opts.OnNodeSelected != nil {
		s.opts.OnNodeSelected(n)
	}
	return n, nil
}

// SelectEdge reports the edge's data to OnEdgeSelected. Node highlight is
// left unchanged.
func (s *Surface) SelectEdge(id string) (graph.Edge, error) {
	if err := s.requireRendered(); err != nil {
		return graph.Edge{}, err
	}
	e, ok := s.graph.Edge(id)
	if !ok {
		return graph.Edge{}, sberr.New(sberr.CodeSurfaceEdgeNotFound, "edge not in rendered graph", sberr.FieldEdgeID(id))
	}
	if s.opts.OnEdgeSelected != nil {
		s.opts.OnEdgeSelected(e)
	}
	return e, nil
}

// ClearSelection removes the node highlight.
func (s *Surface) ClearSelection() {
	s.selection = NoSelection()
}

// Highlighted returns the ids currently highlighted. It holds at most one.
func (s *Surface) Highlighted() []string {
	if id, ok := s.selection.ID(); ok {
		return []string{id}
	}
	return nil
}

// Hover shows a tooltip for id and returns its text: the node label, or
// the id when the label is empty.
func (s *Surface) Hover(id string) (string, error) {
	if err := s.requireRendered(); err != nil {
		return "", err
	}
	n, ok := s.graph.Node(id)
	if !ok {
		return "", sberr.New(sberr.CodeSurfaceNodeNotFound, "node not in rendered graph", sberr.FieldNodeID(id))
	}
	s.hover = Selected(id)
	if n.Label == "" {
		return n.ID, nil
	}
	return n.Label, nil
}

// Unhover hides the tooltip.
func (s *Surface) Unhover() {
	s.hover = NoSelection()
}

// Tooltip returns the hovered node id and its screen position.
func (s *Surface) Tooltip() (string, Point, bool) {
	id, ok := s.hover.ID()
	if !ok || s.inst == nil {
		return "", Point{}, false
	}
	p, ok := s.inst.Positions()[id]
	if !ok {
		return "", Point{}, false
	}
	return id, s.viewport.Apply(p), true
}

// ZoomIn multiplies the zoom factor by the configured step.
func (s *Surface) ZoomIn() error {
	if err := s.requireRendered(); err != nil {
		return err
	}
	s.viewport.ZoomIn(s.opts.ZoomStep)
	return nil
}

// ZoomOut divides the zoom factor by the configured step.
func (s *Surface) ZoomOut() error {
	if err := s.requireRendered(); err != nil {
		return err
	}
	s.viewport.ZoomOut(s.opts.ZoomStep)
	return nil
}

// Fit frames all rendered content. With nothing to frame it resets.
func (s *Surface) Fit() error {
	if err := s.requireRendered(); err != nil {
		return err
	}
	box, ok := Bounds(s.inst.Positions())
	if !ok {
		s.viewport.Reset()
		return nil
	}
	s.viewport.Fit(box, s.opts.Size)
	return nil
}

// Reset returns to origin at zoom 1.
func (s *Surface) Reset() error {
	if err := s.requireRendered(); err != nil {
		return err
	}
	s.viewport.Reset()
	return nil
}

// Positions returns the rendered node positions.
func (s *Surface) Positions() map[string]Point {
	if s.inst == nil {
		return map[string]Point{}
	}
	return s.inst.Positions()
}
