// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package surface

import (
	"context"

	"github.com/sigil-dev/sparqlboard/internal/graph"
)

// RenderOptions are passed through to the renderer unchanged.
type RenderOptions struct {
	WheelSensitivity    float64 `json:"wheel_sensitivity"`
	BoxSelectionEnabled bool    `json:"box_selection_enabled"`
	HighlightColor      string  `json:"highlight_color"`
	NodeColor           string  `json:"node_color"`
	EdgeColor           string  `json:"edge_color"`
}

// DefaultRenderOptions matches the stock node/edge styling.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		WheelSensitivity:    0.2,
		BoxSelectionEnabled: false,
		HighlightColor:      "#ffeb3b",
		NodeColor:           "#61dafb",
		EdgeColor:           "#cccccc",
	}
}

// Scene is everything a renderer needs to draw one graph.
type Scene struct {
	Elements graph.Elements
	Layout   Layout
	Options  RenderOptions
}

// Renderer draws scenes. It owns layout computation; the surface only
// consumes the resulting positions.
type Renderer interface {
	Render(ctx context.Context, scene Scene) (Instance, error)
}

// Instance is one live rendering. Destroy must release every resource the
// renderer acquired for it.
type Instance interface {
	Positions() map[string]Point
	Resize()
	Destroy() error
}

// EnhancedProber is implemented by renderers that may bundle cose-bilkent.
type EnhancedProber interface {
	ProbeEnhanced(ctx context.Context) error
}
