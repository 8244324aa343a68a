// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package surface

import (
	"encoding/json"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/sigil-dev/sparqlboard/internal/graph"
	sberr "github.com/sigil-dev/sparqlboard/pkg/errors"
)

const nodeRadius = 12

// ImageOptions controls PNG export.
type ImageOptions struct {
	Width  int
	Height int
}

// DefaultImageOptions is a 1200x800 frame.
func DefaultImageOptions() ImageOptions {
	return ImageOptions{Width: 1200, Height: 800}
}

// ExportImage writes the whole graph as a PNG framed to opts. The current
// zoom and pan are ignored. The highlighted node is drawn in the highlight
// color.
func (s *Surface) ExportImage(w io.Writer, opts ImageOptions) error {
	if err := s.requireRendered(); err != nil {
		return err
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts = DefaultImageOptions()
	}

	img := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	positions := s.inst.Positions()
	frame := BaseViewport()
	if box, ok := Bounds(positions); ok {
		frame.Fit(box, Size{Width: float64(opts.Width), Height: float64(opts.Height)})
	}

	ro := s.opts.RenderOptions
	edgeColor := parseHexColor(ro.EdgeColor, color.RGBA{R: 0xcc, G: 0xcc, B: 0xcc, A: 0xff})
	nodeColor := parseHexColor(ro.NodeColor, color.RGBA{R: 0x61, G: 0xda, B: 0xfb, A: 0xff})
	highlight := parseHexColor(ro.HighlightColor, color.RGBA{R: 0xff, G: 0xeb, B: 0x3b, A: 0xff})

	for _, e := range s.graph.Edges {
		src, ok1 := positions[e.Source]
		dst, ok2 := positions[e.Target]
		if !ok1 || !ok2 {
			continue
		}
		drawLine(img, frame.Apply(src), frame.Apply(dst), edgeColor)
	}
	for _, n := range s.graph.Nodes {
		p, ok := positions[n.ID]
		if !ok {
			continue
		}
		c := nodeColor
		if s.selection.Is(n.ID) {
			c = highlight
		}
		fillCircle(img, frame.Apply(p), nodeRadius, c)
	}

	if err := png.Encode(w, img); err != nil {
		return sberr.Wrap(err, sberr.CodeSurfaceExportFailure, "encoding png")
	}
	return nil
}

type elementJSON struct {
	Group    string `json:"group"`
	Data     any    `json:"data"`
	Position *Point `json:"position,omitempty"`
	Selected bool   `json:"selected,omitempty"`
}

type nodeData struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Full  string `json:"full"`
}

type graphJSON struct {
	Elements []elementJSON `json:"elements"`
	Layout   Layout        `json:"layout"`
	Viewport Viewport      `json:"viewport"`
}

// ExportGraphJSON serializes every node and edge, with positions and the
// current viewport.
func (s *Surface) ExportGraphJSON() ([]byte, error) {
	if err := s.requireRendered(); err != nil {
		return nil, err
	}

	positions := s.inst.Positions()
	out := graphJSON{
		Elements: make([]elementJSON, 0, len(s.graph.Nodes)+len(s.graph.Edges)),
		Layout:   s.layout,
		Viewport: s.viewport,
	}
	for _, n := range s.graph.Nodes {
		el := elementJSON{
			Group:    "nodes",
			Data:     nodeData{ID: n.ID, Label: n.Label, Full: n.Full},
			Selected: s.selection.Is(n.ID),
		}
		if p, ok := positions[n.ID]; ok {
			el.Position = &p
		}
		out.Elements = append(out.Elements, el)
	}
	for _, e := range s.graph.Edges {
		out.Elements = append(out.Elements, elementJSON{Group: "edges", Data: e})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, sberr.Wrap(err, sberr.CodeSurfaceExportFailure, "encoding graph json")
	}
	return data, nil
}

// Snapshot is the whole graph with positions: what the host surfaces draw.
type Snapshot struct {
	Nodes       []SnapshotNode `json:"nodes"`
	Edges       []graph.Edge   `json:"edges"`
	Layout      Layout         `json:"layout"`
	Viewport    Viewport       `json:"viewport"`
	Highlighted []string       `json:"highlighted"`
	Empty       bool           `json:"empty"`
	Message     string         `json:"message,omitempty"`
}

// SnapshotNode is a node and its position.
type SnapshotNode struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Full     string `json:"full"`
	Position Point  `json:"position"`
}

// Snapshot returns the current view. An empty graph carries EmptyMessage.
func (s *Surface) Snapshot() Snapshot {
	positions := s.Positions()
	snap := Snapshot{
		Nodes:       make([]SnapshotNode, 0, len(s.graph.Nodes)),
		Edges:       append([]graph.Edge{}, s.graph.Edges...),
		Layout:      s.layout,
		Viewport:    s.viewport,
		Highlighted: s.Highlighted(),
		Empty:       len(s.graph.Nodes) == 0,
	}
	if snap.Highlighted == nil {
		snap.Highlighted = []string{}
	}
	if snap.Empty {
		snap.Message = EmptyMessage
	}
	for _, n := range s.graph.Nodes {
		snap.Nodes = append(snap.Nodes, SnapshotNode{
			ID:       n.ID,
			Label:    n.Label,
			Full:     n.Full,
			Position: positions[n.ID],
		})
	}
	return snap
}

func parseHexColor(hex string, fallback color.RGBA) color.RGBA {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return fallback
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return fallback
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}

func drawLine(img *image.RGBA, a, b Point, c color.RGBA) {
	steps := int(math.Ceil(math.Max(math.Abs(b.X-a.X), math.Abs(b.Y-a.Y))))
	if steps == 0 {
		img.SetRGBA(int(a.X), int(a.Y), c)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		img.SetRGBA(int(math.Round(a.X+(b.X-a.X)*t)), int(math.Round(a.Y+(b.Y-a.Y)*t)), c)
	}
}

func fillCircle(img *image.RGBA, center Point, r int, c color.RGBA) {
	cx, cy := int(math.Round(center.X)), int(math.Round(center.Y))
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				img.SetRGBA(cx+dx, cy+dy, c)
			}
		}
	}
}
