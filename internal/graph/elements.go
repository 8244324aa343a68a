// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package graph

// NodeElement wraps an entity the way renderers expect it.
type NodeElement struct {
	Data Entity `json:"data"`
}

// EdgeElement wraps an edge the way renderers expect it.
type EdgeElement struct {
	Data Edge `json:"data"`
}

// Elements is the renderer-facing form of a graph.
type Elements struct {
	Nodes []NodeElement `json:"nodes"`
	Edges []EdgeElement `json:"edges"`
}

// Len is the total number of elements.
func (e Elements) Len() int {
	return len(e.Nodes) + len(e.Edges)
}

// Elements converts the graph into renderer elements, preserving node and
// edge order.
func (g Graph) Elements() Elements {
	out := Elements{
		Nodes: make([]NodeElement, 0, len(g.Nodes)),
		Edges: make([]EdgeElement, 0, len(g.Edges)),
	}
	for _, n := range g.Nodes {
		out.Nodes = append(out.Nodes, NodeElement{Data: n})
	}
	for _, e := range g.Edges {
		out.Edges = append(out.Edges, EdgeElement{Data: e})
	}
	return out
}
