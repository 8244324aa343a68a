// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package board

import (
	"github.com/sigil-dev/sparqlboard/internal/events"
	"github.com/sigil-dev/sparqlboard/internal/surface"
	sberr "github.com/sigil-dev/sparqlboard/pkg/errors"
)

// Dispatch delivers a host event to the listeners the views registered on
// the board's bus. Handlers run with the board lock held.
func (b *Board) Dispatch(e events.Event) error {
	switch e.Name {
	case events.PointerMove, events.PointerUp, events.Resize, events.KeyDown:
	default:
		return sberr.New(sberr.CodeBoardEventInvalid, "unknown host event", sberr.FieldValue("name", e.Name))
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.opts.Bus.Emit(e)
	return nil
}

// Listeners returns the number of handlers held on the board's bus.
func (b *Board) Listeners() int {
	return b.opts.Bus.Total()
}

// BeginColumnDrag starts a pointer resize of column i at x and returns the
// column's starting width. Dispatched PointerMove events then set the width
// from the pointer delta, and PointerUp ends the gesture.
func (b *Board) BeginColumnDrag(i int, x float64) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, err := b.presenter.BeginColumnDrag(b.opts.Bus, i, x); err != nil {
		return 0, err
	}
	return b.presenter.Columns().Width(i)
}

// ColumnWidth returns the current width of column i.
func (b *Board) ColumnWidth(i int) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.presenter.Columns().Width(i)
}

// Tooltip is the hover text shown next to a node.
type Tooltip struct {
	ID       string        `json:"id"`
	Text     string        `json:"text"`
	Position surface.Point `json:"position"`
}

func (b *Board) tooltipLocked() *Tooltip {
	id, pos, ok := b.surface.Tooltip()
	if !ok {
		return nil
	}
	text := id
	if n, ok := b.graph.Node(id); ok && n.Label != "" {
		text = n.Label
	}
	return &Tooltip{ID: id, Text: text, Position: pos}
}

// FocusView returns a snapshot of the open focus view.
func (b *Board) FocusView() (surface.Snapshot, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	f, ok := b.surface.Focus()
	if !ok {
		return surface.Snapshot{}, false
	}
	return f.Snapshot(), true
}
