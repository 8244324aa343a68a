// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package surface

import "math"

// ZoomStep is the factor applied by one zoom in or out.
const ZoomStep = 1.2

const (
	minZoom    = 1e-3
	maxZoom    = 1e3
	fitPadding = 30
)

// Point is a 2D position in model coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a viewport size in pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Rect is an axis-aligned bounding box.
type Rect struct {
	Min Point `json:"min"`
	Max Point `json:"max"`
}

// Width of the box.
func (r Rect) Width() float64 { return r.Max.X - r.Min.X }

// Height of the box.
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// Center of the box.
func (r Rect) Center() Point {
	return Point{X: (r.Min.X + r.Max.X) / 2, Y: (r.Min.Y + r.Max.Y) / 2}
}

// Bounds returns the bounding box of positions and false when empty.
func Bounds(positions map[string]Point) (Rect, bool) {
	if len(positions) == 0 {
		return Rect{}, false
	}
	r := Rect{
		Min: Point{X: math.Inf(1), Y: math.Inf(1)},
		Max: Point{X: math.Inf(-1), Y: math.Inf(-1)},
	}
	for _, p := range positions {
		r.Min.X = math.Min(r.Min.X, p.X)
		r.Min.Y = math.Min(r.Min.Y, p.Y)
		r.Max.X = math.Max(r.Max.X, p.X)
		r.Max.Y = math.Max(r.Max.Y, p.Y)
	}
	return r, true
}

// Viewport is the pan/zoom transform applied to model coordinates:
// screen = model*Zoom + Pan.
type Viewport struct {
	Zoom float64 `json:"zoom"`
	Pan  Point   `json:"pan"`
}

// BaseViewport is the canonical origin at zoom 1.
func BaseViewport() Viewport {
	return Viewport{Zoom: 1}
}

// ZoomIn multiplies the zoom by step.
func (v *Viewport) ZoomIn(step float64) {
	v.Zoom = clampZoom(v.Zoom * step)
}

// ZoomOut divides the zoom by step.
func (v *Viewport) ZoomOut(step float64) {
	v.Zoom = clampZoom(v.Zoom / step)
}

// Reset returns to BaseViewport.
func (v *Viewport) Reset() {
	*v = BaseViewport()
}

// Fit frames box inside size with padding. A degenerate box (single point)
// keeps zoom 1 and centers it.
func (v *Viewport) Fit(box Rect, size Size) {
	availW := size.Width - 2*fitPadding
	availH := size.Height - 2*fitPadding

	zoom := 1.0
	if box.Width() > 0 || box.Height() > 0 {
		zx, zy := math.Inf(1), math.Inf(1)
		if box.Width() > 0 {
			zx = availW / box.Width()
		}
		if box.Height() > 0 {
			zy = availH / box.Height()
		}
		zoom = math.Min(zx, zy)
	}
	zoom = clampZoom(zoom)

	c := box.Center()
	v.Zoom = zoom
	v.Pan = Point{
		X: size.Width/2 - c.X*zoom,
		Y: size.Height/2 - c.Y*zoom,
	}
}

// Apply maps a model point to screen coordinates.
func (v Viewport) Apply(p Point) Point {
	return Point{X: p.X*v.Zoom + v.Pan.X, Y: p.Y*v.Zoom + v.Pan.Y}
}

func clampZoom(z float64) float64 {
	if z <= 0 || math.IsNaN(z) {
		return minZoom
	}
	return math.Max(minZoom, math.Min(maxZoom, z))
}
