// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package surface

import (
	"context"

	"github.com/sigil-dev/sparqlboard/internal/events"
	sberr "github.com/sigil-dev/sparqlboard/pkg/errors"
)

// EscapeKey dismisses an open focus view.
const EscapeKey = "Escape"

// OpenFocus opens an enlarged view of the current graph. It is a second,
// independent rendering with its own viewport and no selection callbacks.
// Pressing Escape on the bus closes it.
func (s *Surface) OpenFocus(ctx context.Context) (*Surface, error) {
	if err := s.requireRendered(); err != nil {
		return nil, err
	}
	if s.focus != nil {
		return nil, sberr.New(sberr.CodeSurfaceFocusStateConflict, "focus view already open")
	}

	opts := s.opts
	opts.OnNodeSelected = nil
	opts.OnEdgeSelected = nil
	opts.Size = Size{Width: s.opts.Size.Width * 2, Height: s.opts.Size.Height * 2}

	f := New(opts)
	if err := f.Render(ctx, s.graph, s.requested); err != nil {
		f.Destroy()
		return nil, err
	}
	f.scope.On(s.opts.Bus, events.KeyDown, func(e events.Event) {
		if e.Key == EscapeKey {
			s.CloseFocus()
		}
	})
	s.focus = f
	return f, nil
}

// Focus returns the open focus view, if any.
func (s *Surface) Focus() (*Surface, bool) {
	return s.focus, s.focus != nil
}

// CloseFocus destroys the focus view and its listeners. Closing when none
// is open is a no-op.
func (s *Surface) CloseFocus() {
	if s.focus == nil {
		return
	}
	f := s.focus
	s.focus = nil
	f.Destroy()
}
