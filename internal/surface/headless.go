// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package surface

import (
	"context"
	"math"

	"github.com/sigil-dev/sparqlboard/internal/graph"
	sberr "github.com/sigil-dev/sparqlboard/pkg/errors"
)

const headlessSpacing = 100.0

// Headless computes deterministic positions without a drawing engine so
// snapshots can be produced from the CLI and server. Force-directed
// layouts are approximated by a circle.
type Headless struct {
	// Enhanced reports whether cose-bilkent is bundled.
	Enhanced bool
}

var (
	_ Renderer       = (*Headless)(nil)
	_ EnhancedProber = (*Headless)(nil)
)

// ProbeEnhanced is the LayoutProvider probe for cose-bilkent.
func (h *Headless) ProbeEnhanced(context.Context) error {
	if !h.Enhanced {
		return sberr.New(sberr.CodeSurfaceLayoutUnavailable, "cose-bilkent is not bundled with the headless renderer",
			sberr.FieldLayout(string(LayoutCoseBilkent)))
	}
	return nil
}

// Render lays out scene.
func (h *Headless) Render(ctx context.Context, scene Scene) (Instance, error) {
	if err := ctx.Err(); err != nil {
		return nil, sberr.Wrap(err, sberr.CodeSurfaceRenderFailure, "rendering cancelled")
	}

	ids := make([]string, len(scene.Elements.Nodes))
	for i, n := range scene.Elements.Nodes {
		ids[i] = n.Data.ID
	}

	var pos map[string]Point
	switch scene.Layout {
	case LayoutGrid:
		pos = gridPositions(ids)
	case LayoutBreadthFirst:
		pos = breadthFirstPositions(ids, scene.Elements.Edges)
	case LayoutConcentric:
		pos = concentricPositions(ids)
	default:
		pos = circlePositions(ids)
	}

	return &headlessInstance{positions: pos}, nil
}

type headlessInstance struct {
	positions map[string]Point
	resizes   int
	destroyed bool
}

func (i *headlessInstance) Positions() map[string]Point {
	out := make(map[string]Point, len(i.positions))
	for k, v := range i.positions {
		out[k] = v
	}
	return out
}

func (i *headlessInstance) Resize() { i.resizes++ }

func (i *headlessInstance) Destroy() error {
	i.destroyed = true
	i.positions = nil
	return nil
}

func circlePositions(ids []string) map[string]Point {
	pos := make(map[string]Point, len(ids))
	if len(ids) == 1 {
		pos[ids[0]] = Point{}
		return pos
	}
	radius := math.Max(headlessSpacing, float64(len(ids))*headlessSpacing/(2*math.Pi))
	for i, id := range ids {
		theta := 2 * math.Pi * float64(i) / float64(len(ids))
		pos[id] = Point{X: radius * math.Cos(theta), Y: radius * math.Sin(theta)}
	}
	return pos
}

func gridPositions(ids []string) map[string]Point {
	pos := make(map[string]Point, len(ids))
	cols := int(math.Ceil(math.Sqrt(float64(len(ids)))))
	for i, id := range ids {
		pos[id] = Point{
			X: float64(i%cols) * headlessSpacing,
			Y: float64(i/cols) * headlessSpacing,
		}
	}
	return pos
}

// concentricPositions places one node at the center and 6k nodes on ring k.
func concentricPositions(ids []string) map[string]Point {
	pos := make(map[string]Point, len(ids))
	ring, slot, capacity := 0, 0, 1
	for _, id := range ids {
		if slot == capacity {
			ring++
			slot = 0
			capacity = 6 * ring
		}
		if ring == 0 {
			pos[id] = Point{}
		} else {
			theta := 2 * math.Pi * float64(slot) / float64(capacity)
			r := float64(ring) * headlessSpacing
			pos[id] = Point{X: r * math.Cos(theta), Y: r * math.Sin(theta)}
		}
		slot++
	}
	return pos
}

// breadthFirstPositions assigns levels by BFS from nodes without incoming
// edges; unreachable components start new roots in node order.
func breadthFirstPositions(ids []string, edges []graph.EdgeElement) map[string]Point {
	out := make(map[string][]string)
	indeg := make(map[string]int)
	for _, e := range edges {
		out[e.Data.Source] = append(out[e.Data.Source], e.Data.Target)
		if e.Data.Source != e.Data.Target {
			indeg[e.Data.Target]++
		}
	}

	level := make(map[string]int, len(ids))
	visit := func(root string) {
		if _, seen := level[root]; seen {
			return
		}
		level[root] = 0
		queue := []string{root}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, next := range out[cur] {
				if _, seen := level[next]; seen {
					continue
				}
				level[next] = level[cur] + 1
				queue = append(queue, next)
			}
		}
	}
	for _, id := range ids {
		if indeg[id] == 0 {
			visit(id)
		}
	}
	for _, id := range ids {
		visit(id)
	}

	pos := make(map[string]Point, len(ids))
	width := make(map[int]int)
	for _, id := range ids {
		l := level[id]
		pos[id] = Point{X: float64(width[l]) * headlessSpacing, Y: float64(l) * headlessSpacing}
		width[l]++
	}
	return pos
}
