// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package board

import (
	"context"

	"github.com/sigil-dev/sparqlboard/internal/graph"
	"github.com/sigil-dev/sparqlboard/internal/surface"
	"github.com/sigil-dev/sparqlboard/internal/table"
	sberr "github.com/sigil-dev/sparqlboard/pkg/errors"
)

// Table renders the presenter in its current mode.
func (b *Board) Table() (table.View, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.presenter.View()
}

// NextPage advances the table one page.
func (b *Board) NextPage() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.presenter.NextPage()
}

// PrevPage moves the table back one page.
func (b *Board) PrevPage() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.presenter.PrevPage()
}

// FirstPage returns the table to page 0.
func (b *Board) FirstPage() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.presenter.FirstPage()
}

// SetPageSize changes the page size and returns to page 0.
func (b *Board) SetPageSize(n int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.presenter.SetPageSize(n)
}

// SetMode switches the table between table, json, and csv views.
func (b *Board) SetMode(m table.Mode) error {
	if _, err := table.ParseMode(string(m)); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.presenter.SetMode(m)
	return nil
}

// CycleMode advances to the next view mode and returns it.
func (b *Board) CycleMode() table.Mode {
	b.mu.Lock()
	defer b.mu.Unlock()
	m := b.presenter.Mode().Next()
	b.presenter.SetMode(m)
	return m
}

// ResizeColumn drags column i by delta pixels and returns its new width.
func (b *Board) ResizeColumn(i, delta int) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.presenter.ResizeColumn(i, delta)
}

// GraphView is the rendered graph plus the shared selection.
type GraphView struct {
	surface.Snapshot
	Requested surface.Layout `json:"requested_layout"`
	Selected  *graph.Entity  `json:"selected,omitempty"`
	Tooltip   *Tooltip       `json:"tooltip,omitempty"`
	FocusOpen bool           `json:"focus_open"`
	// Elements is the renderer-facing form of the same graph.
	Elements graph.Elements `json:"-"`
}

// GraphView snapshots the surface.
func (b *Board) GraphView() GraphView {
	b.mu.Lock()
	defer b.mu.Unlock()
	v := GraphView{
		Snapshot:  b.surface.Snapshot(),
		Requested: b.surface.RequestedLayout(),
		Elements:  b.graph.Elements(),
	}
	if e, ok := b.selectedLocked(); ok {
		v.Selected = &e
	}
	v.Tooltip = b.tooltipLocked()
	_, v.FocusOpen = b.surface.Focus()
	return v
}

// Elements returns the renderer-facing node and edge lists.
func (b *Board) Elements() graph.Elements {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.graph.Elements()
}

// SetLayout re-renders the graph with layout. The selection is cleared
// because the rendering is replaced.
func (b *Board) SetLayout(ctx context.Context, layout surface.Layout) (surface.Layout, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.surface.SetLayout(ctx, layout); err != nil {
		return "", err
	}
	b.selected = surface.NoSelection()
	return b.surface.Layout(), nil
}

// SelectNode highlights id and makes it the shared selection.
func (b *Board) SelectNode(id string) (graph.Entity, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.surface.SelectNode(id)
}

// SelectEdge returns the edge data without changing the selection.
func (b *Board) SelectEdge(id string) (graph.Edge, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.surface.SelectEdge(id)
}

// ClearSelection removes the shared selection and the highlight.
func (b *Board) ClearSelection() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.surface.ClearSelection()
	b.selected = surface.NoSelection()
}

// Selected returns the selected entity, whose Rows are every row touching
// it.
func (b *Board) Selected() (graph.Entity, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.selectedLocked()
}

func (b *Board) selectedLocked() (graph.Entity, bool) {
	id, ok := b.selected.ID()
	if !ok {
		return graph.Entity{}, false
	}
	return b.graph.Node(id)
}

// Hover returns the tooltip text for node id.
func (b *Board) Hover(id string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.surface.Hover(id)
}

// Unhover hides the tooltip.
func (b *Board) Unhover() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.surface.Unhover()
}

// Viewport actions accepted by ApplyViewport.
const (
	ViewportZoomIn  = "zoom_in"
	ViewportZoomOut = "zoom_out"
	ViewportFit     = "fit"
	ViewportReset   = "reset"
)

// ApplyViewport runs one pan/zoom action and returns the new viewport.
func (b *Board) ApplyViewport(action string) (surface.Viewport, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var err error
	switch action {
	case ViewportZoomIn:
		err = b.surface.ZoomIn()
	case ViewportZoomOut:
		err = b.surface.ZoomOut()
	case ViewportFit:
		err = b.surface.Fit()
	case ViewportReset:
		err = b.surface.Reset()
	default:
		err = sberr.New(sberr.CodeSurfaceViewportInvalid, "unknown viewport action", sberr.FieldValue("action", action))
	}
	if err != nil {
		return surface.Viewport{}, err
	}
	return b.surface.Viewport(), nil
}

// OpenFocus opens the enlarged focus view of the current graph. A KeyDown
// of surface.EscapeKey dispatched on the board closes it.
func (b *Board) OpenFocus(ctx context.Context) (surface.Snapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	f, err := b.surface.OpenFocus(ctx)
	if err != nil {
		return surface.Snapshot{}, err
	}
	return f.Snapshot(), nil
}

// CloseFocus dismisses the focus view.
func (b *Board) CloseFocus() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.surface.CloseFocus()
}
