// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package table

import (
	sberr "github.com/sigil-dev/sparqlboard/pkg/errors"
)

// DefaultPageSize is the initial page size of a new pager.
const DefaultPageSize = 25

// Pager tracks {pageIndex, pageSize} over a bound row count.
type Pager struct {
	index int
	size  int
	total int
}

// NewPager returns a pager at page 0. A non-positive size falls back to
// DefaultPageSize.
func NewPager(size int) Pager {
	if size <= 0 {
		size = DefaultPageSize
	}
	return Pager{size: size}
}

// Index is the zero-based current page.
func (p Pager) Index() int { return p.index }

// Size is the number of rows per page.
func (p Pager) Size() int { return p.size }

// TotalRows is the number of bound rows.
func (p Pager) TotalRows() int { return p.total }

// TotalPages is max(1, ceil(total/size)).
func (p Pager) TotalPages() int {
	if p.total == 0 {
		return 1
	}
	return (p.total + p.size - 1) / p.size
}

// Bind attaches a new row count and returns to the first page, keeping the
// page size.
func (p *Pager) Bind(total int) {
	if total < 0 {
		total = 0
	}
	p.total = total
	p.index = 0
}

// SetPageSize changes the page size and always returns to the first page.
func (p *Pager) SetPageSize(n int) error {
	if n <= 0 {
		return sberr.Errorf(sberr.CodeTablePageSizeInvalid, "page size must be positive, got %d", n)
	}
	p.size = n
	p.index = 0
	return nil
}

// Next advances one page, stopping at the last page.
func (p *Pager) Next() {
	p.index = min(p.index+1, p.TotalPages()-1)
}

// Prev goes back one page, stopping at the first page.
func (p *Pager) Prev() {
	p.index = max(p.index-1, 0)
}

// First returns to page 0.
func (p *Pager) First() {
	p.index = 0
}

// Bounds returns the half-open row range [start, end) of the current page
// clipped to the bound row count.
func (p Pager) Bounds() (start, end int) {
	start = min(p.index*p.size, p.total)
	end = min(start+p.size, p.total)
	return start, end
}
