// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

// Package table paginates bindings, tracks column widths, and serializes
// result sets to CSV and JSON.
package table

import (
	"github.com/sigil-dev/sparqlboard/internal/events"
	"github.com/sigil-dev/sparqlboard/internal/results"
)

// EmptyMessage is shown by every view when no results are bound.
const EmptyMessage = "No results yet. Run a query to see output."

// Options configures a Presenter.
type Options struct {
	PageSize       int
	AvailableWidth int
	MinColumnWidth int
	MinDragWidth   int
}

// DefaultAvailableWidth is the width divided across columns when Options
// leaves it unset.
const DefaultAvailableWidth = 960

// View is a snapshot of what the presenter currently displays.
type View struct {
	Mode       Mode              `json:"mode"`
	PageIndex  int               `json:"page_index"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
	TotalRows  int               `json:"total_rows"`
	Start      int               `json:"start"`
	End        int               `json:"end"`
	Columns    []Column          `json:"columns"`
	Rows       []results.Binding `json:"rows,omitempty"`
	Text       string            `json:"text,omitempty"`
	Empty      bool              `json:"empty"`
	Message    string            `json:"message,omitempty"`
}

// Presenter owns pagination, column widths, and the display mode for one
// bound result set.
type Presenter struct {
	rs        results.ResultSet
	pager     Pager
	columns   *Columns
	mode      Mode
	available int
}

// NewPresenter returns a presenter bound to an empty result set in table
// mode.
func NewPresenter(opts Options) *Presenter {
	if opts.AvailableWidth <= 0 {
		opts.AvailableWidth = DefaultAvailableWidth
	}
	return &Presenter{
		rs:        results.Empty(),
		pager:     NewPager(opts.PageSize),
		columns:   NewColumns(opts.MinColumnWidth, opts.MinDragWidth),
		mode:      ModeTable,
		available: opts.AvailableWidth,
	}
}

// Bind replaces the bound result set. Pagination returns to the first page
// at the current size; widths are reassigned only if the variables changed.
func (p *Presenter) Bind(rs results.ResultSet) {
	p.rs = rs
	p.pager.Bind(len(rs.Rows))
	p.columns.Reset(rs.Variables, p.available)
}

// Results returns the bound result set.
func (p *Presenter) Results() results.ResultSet { return p.rs }

// Pager returns a copy of the pagination state.
func (p *Presenter) Pager() Pager { return p.pager }

// Columns exposes the width model.
func (p *Presenter) Columns() *Columns { return p.columns }

// Mode returns the current view mode.
func (p *Presenter) Mode() Mode { return p.mode }

// SetMode switches views without touching pagination.
func (p *Presenter) SetMode(m Mode) { p.mode = m }

// SetPageSize changes the page size and returns to the first page.
func (p *Presenter) SetPageSize(n int) error { return p.pager.SetPageSize(n) }

// NextPage advances one page.
func (p *Presenter) NextPage() { p.pager.Next() }

// PrevPage goes back one page.
func (p *Presenter) PrevPage() { p.pager.Prev() }

// FirstPage returns to page 0.
func (p *Presenter) FirstPage() { p.pager.First() }

// ResizeColumn applies a complete drag of delta pixels to column i.
func (p *Presenter) ResizeColumn(i, delta int) (int, error) {
	return p.columns.Resize(i, delta)
}

// BeginColumnDrag starts a pointer-driven resize of column i on bus.
func (p *Presenter) BeginColumnDrag(bus *events.Bus, i int, x float64) (*Drag, error) {
	return p.columns.BeginDrag(bus, i, x)
}

// CancelDrag releases any column drag in progress.
func (p *Presenter) CancelDrag() { p.columns.cancelDrag() }

// PageRows returns the rows of the current page.
func (p *Presenter) PageRows() []results.Binding {
	start, end := p.pager.Bounds()
	return p.rs.Rows[start:end]
}

// CSV renders the full bound result set as CSV.
func (p *Presenter) CSV() string {
	return ToCSV(p.rs.Variables, p.rs.Rows)
}

// JSON renders the full bound result set as indented JSON.
func (p *Presenter) JSON() ([]byte, error) {
	return ToJSON(p.rs)
}

// View renders the current mode. JSON and CSV views carry the whole result
// set as Text; the table view carries only the current page rows.
func (p *Presenter) View() (View, error) {
	start, end := p.pager.Bounds()
	v := View{
		Mode:       p.mode,
		PageIndex:  p.pager.Index(),
		PageSize:   p.pager.Size(),
		TotalPages: p.pager.TotalPages(),
		TotalRows:  p.pager.TotalRows(),
		Start:      start,
		End:        end,
		Columns:    p.columns.List(),
		Empty:      p.rs.IsEmpty() && len(p.rs.Variables) == 0,
	}
	if v.Empty {
		v.Message = EmptyMessage
	}

	switch p.mode {
	case ModeJSON:
		data, err := p.JSON()
		if err != nil {
			return View{}, err
		}
		v.Text = string(data)
	case ModeCSV:
		v.Text = p.CSV()
	default:
		v.Rows = p.rs.Rows[start:end]
	}

	return v, nil
}
