// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package table

import (
	"slices"

	"github.com/sigil-dev/sparqlboard/internal/events"
	sberr "github.com/sigil-dev/sparqlboard/pkg/errors"
)

const (
	// MinColumnWidth floors the evenly divided initial width.
	MinColumnWidth = 80
	// MinDragWidth floors a width set by dragging.
	MinDragWidth = 60
)

// Column is a named column and its pixel width.
type Column struct {
	Name  string `json:"name"`
	Width int    `json:"width"`
}

// Columns holds one independently adjustable width per variable.
type Columns struct {
	names    []string
	widths   []int
	minWidth int
	dragMin  int
	active   *Drag
}

// NewColumns returns an empty width model with the given floors. Zero
// floors take the package defaults.
func NewColumns(minWidth, dragMin int) *Columns {
	if minWidth <= 0 {
		minWidth = MinColumnWidth
	}
	if dragMin <= 0 {
		dragMin = MinDragWidth
	}
	return &Columns{minWidth: minWidth, dragMin: dragMin}
}

// Reset reassigns widths when the variable set differs from the current
// one, dividing available evenly with a floor. It reports whether widths
// were reassigned.
func (c *Columns) Reset(names []string, available int) bool {
	if slices.Equal(c.names, names) && len(c.widths) == len(names) {
		return false
	}

	c.cancelDrag()
	c.names = slices.Clone(names)
	c.widths = make([]int, len(names))
	if len(names) == 0 {
		return true
	}

	w := max(available/len(names), c.minWidth)
	for i := range c.widths {
		c.widths[i] = w
	}
	return true
}

// List returns a copy of the current columns in variable order.
func (c *Columns) List() []Column {
	out := make([]Column, len(c.names))
	for i, n := range c.names {
		out[i] = Column{Name: n, Width: c.widths[i]}
	}
	return out
}

// Width returns the width of column i.
func (c *Columns) Width(i int) (int, error) {
	if i < 0 || i >= len(c.widths) {
		return 0, sberr.Errorf(sberr.CodeTableColumnNotFound, "column %d out of range [0,%d)", i, len(c.widths))
	}
	return c.widths[i], nil
}

// Len is the number of columns.
func (c *Columns) Len() int { return len(c.widths) }

// Drag is one resize gesture on a single column. It holds pointer
// listeners on the bus it was started with until Release.
type Drag struct {
	cols   *Columns
	index  int
	startW int
	startX float64
	scope  events.Scope
	done   bool
}

// BeginDrag starts resizing column i from pointer position x. When bus is
// non-nil the drag follows PointerMove events and ends on PointerUp. Any
// drag already in progress is released first.
func (c *Columns) BeginDrag(bus *events.Bus, i int, x float64) (*Drag, error) {
	w, err := c.Width(i)
	if err != nil {
		return nil, err
	}
	c.cancelDrag()

	d := &Drag{cols: c, index: i, startW: w, startX: x}
	d.scope.On(bus, events.PointerMove, func(e events.Event) { d.MoveTo(e.X) })
	d.scope.On(bus, events.PointerUp, func(events.Event) { d.Release() })
	c.active = d
	return d, nil
}

// MoveTo sets the column width from the pointer delta since drag start.
func (d *Drag) MoveTo(x float64) {
	d.Move(int(x - d.startX))
}

// Move sets the column width to start width + delta, floored.
func (d *Drag) Move(delta int) {
	if d.done {
		return
	}
	d.cols.widths[d.index] = max(d.startW+delta, d.cols.dragMin)
}

// Release ends the gesture and removes its listeners. It is idempotent.
func (d *Drag) Release() {
	if d.done {
		return
	}
	d.done = true
	d.scope.Close()
	if d.cols.active == d {
		d.cols.active = nil
	}
}

// Active reports whether the gesture is still in progress.
func (d *Drag) Active() bool { return !d.done }

// Resize applies a complete drag of delta pixels to column i and returns
// the resulting width.
func (c *Columns) Resize(i, delta int) (int, error) {
	d, err := c.BeginDrag(nil, i, 0)
	if err != nil {
		return 0, err
	}
	defer d.Release()
	d.Move(delta)
	return c.widths[i], nil
}

func (c *Columns) cancelDrag() {
	if c.active != nil {
		c.active.Release()
	}
}
