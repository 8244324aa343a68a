// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

// Package graph projects normalized SPARQL bindings into a deduplicated
// node/edge graph.
package graph

import (
	"log/slog"
	"strconv"

	"github.com/sigil-dev/sparqlboard/internal/results"
)

// Entity is a distinct subject or object value. ID is the exact binding
// value; Rows holds every row that touched the entity, once per role, in
// encounter order.
type Entity struct {
	ID    string            `json:"id"`
	Label string            `json:"label"`
	Full  string            `json:"full"`
	Rows  []results.Binding `json:"rows"`
}

// Edge connects the subject and object of one row.
type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label"`
}

// Graph is the result of one projection. It is replaced wholesale when a
// new result set arrives and is never patched.
type Graph struct {
	Nodes   []Entity `json:"nodes"`
	Edges   []Edge   `json:"edges"`
	Roles   Roles    `json:"roles"`
	Skipped int      `json:"skipped"`

	nodeIndex map[string]int
	edgeIndex map[string]int
}

// Empty returns a graph with no nodes or edges.
func Empty() Graph {
	return Graph{Nodes: []Entity{}, Edges: []Edge{}}
}

// IsEmpty reports whether the graph has no nodes.
func (g Graph) IsEmpty() bool {
	return len(g.Nodes) == 0
}

// Node looks up an entity by id.
func (g Graph) Node(id string) (Entity, bool) {
	i, ok := g.nodeIndex[id]
	if !ok {
		return Entity{}, false
	}
	return g.Nodes[i], true
}

// Edge looks up an edge by id.
func (g Graph) Edge(id string) (Edge, bool) {
	i, ok := g.edgeIndex[id]
	if !ok {
		return Edge{}, false
	}
	return g.Edges[i], true
}

// EdgeID builds the identifier for the edge produced by row i.
func EdgeID(row int, source, target string) string {
	return "e" + strconv.Itoa(row) + "_" + source + "_" + target
}

// Project maps rs into a graph. Rows missing a subject or object value are
// skipped and counted; a missing predicate yields an empty edge label.
func Project(rs results.ResultSet) Graph {
	g := Empty()

	roles, ok := InferRoles(rs.Variables)
	if !ok || len(rs.Rows) == 0 {
		return g
	}
	g.Roles = roles
	g.nodeIndex = make(map[string]int)
	g.edgeIndex = make(map[string]int)

	for i, row := range rs.Rows {
		s, sok := row.Value(roles.Subject)
		o, ook := row.Value(roles.Object)
		if !sok || !ook {
			slog.Debug("skipping incomplete row",
				"row", i,
				"subject_bound", sok,
				"object_bound", ook,
			)
			g.Skipped++
			continue
		}
		p, _ := row.Value(roles.Predicate)

		g.touch(s, row)
		g.touch(o, row)

		id := EdgeID(i, s, o)
		g.edgeIndex[id] = len(g.Edges)
		g.Edges = append(g.Edges, Edge{ID: id, Source: s, Target: o, Label: p})
	}

	if g.Skipped > 0 {
		slog.Debug("projection skipped rows", "skipped", g.Skipped, "rows", len(rs.Rows))
	}

	return g
}

func (g *Graph) touch(id string, row results.Binding) {
	i, ok := g.nodeIndex[id]
	if !ok {
		i = len(g.Nodes)
		g.nodeIndex[id] = i
		g.Nodes = append(g.Nodes, Entity{
			ID:    id,
			Label: ShortLabel(id),
			Full:  id,
		})
	}
	g.Nodes[i].Rows = append(g.Nodes[i].Rows, row)
}
