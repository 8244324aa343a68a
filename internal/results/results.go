// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

// Package results normalizes SPARQL JSON result payloads into a stable
// variable list plus ordered binding rows.
package results

import (
	"encoding/json"
	"log/slog"

	"github.com/tidwall/gjson"
)

// Kind is the RDF term type reported for a bound value.
type Kind string

const (
	KindUnspecified  Kind = ""
	KindURI          Kind = "uri"
	KindLiteral      Kind = "literal"
	KindTypedLiteral Kind = "typed-literal"
	KindBlankNode    Kind = "bnode"
)

// Cell is a single bound value. Only Value is consumed by projection; the
// remaining fields are carried through to exports untouched.
type Cell struct {
	Kind     Kind   `json:"type,omitempty"`
	Value    string `json:"value"`
	Datatype string `json:"datatype,omitempty"`
	Lang     string `json:"xml:lang,omitempty"`
}

// Binding maps variable names to cells. A missing key means the variable is
// unbound in that row.
type Binding map[string]Cell

// Value returns the bound value for name and whether it was bound.
func (b Binding) Value(name string) (string, bool) {
	c, ok := b[name]
	if !ok {
		return "", false
	}
	return c.Value, true
}

// ResultSet is the normalized form of a SELECT result. Every key in a row is
// guaranteed to be present in Variables.
type ResultSet struct {
	Variables []string
	Rows      []Binding
}

// Empty returns the result set used for "no results".
func Empty() ResultSet {
	return ResultSet{Variables: []string{}, Rows: []Binding{}}
}

// IsEmpty reports whether the set has no rows.
func (rs ResultSet) IsEmpty() bool {
	return len(rs.Rows) == 0
}

type wireHead struct {
	Vars []string `json:"vars"`
}

type wireResults struct {
	Bindings []Binding `json:"bindings"`
}

type wireResultSet struct {
	Head    wireHead    `json:"head"`
	Results wireResults `json:"results"`
}

// MarshalJSON renders the set in the SPARQL 1.1 JSON results shape.
func (rs ResultSet) MarshalJSON() ([]byte, error) {
	w := wireResultSet{
		Head:    wireHead{Vars: rs.Variables},
		Results: wireResults{Bindings: rs.Rows},
	}
	if w.Head.Vars == nil {
		w.Head.Vars = []string{}
	}
	if w.Results.Bindings == nil {
		w.Results.Bindings = []Binding{}
	}
	return json.Marshal(w)
}

// UnmarshalJSON accepts the SPARQL 1.1 JSON results shape and never fails on
// malformed substructure; it degrades to Empty instead.
func (rs *ResultSet) UnmarshalJSON(data []byte) error {
	*rs = Normalize(data)
	return nil
}

// Normalize converts a raw results payload into a ResultSet. A nil, invalid,
// or structurally incomplete payload yields Empty; it never returns an error.
func Normalize(raw []byte) ResultSet {
	if len(raw) == 0 {
		return Empty()
	}
	if !gjson.ValidBytes(raw) {
		slog.Debug("results payload is not valid json", "bytes", len(raw))
		return Empty()
	}

	doc := gjson.ParseBytes(raw)
	vars := doc.Get("head.vars")
	bindings := doc.Get("results.bindings")
	if !vars.IsArray() || !bindings.IsArray() {
		slog.Debug("results payload missing head.vars or results.bindings")
		return Empty()
	}

	rs := Empty()
	known := make(map[string]bool)
	for _, v := range vars.Array() {
		if v.Type != gjson.String || known[v.Str] {
			continue
		}
		known[v.Str] = true
		rs.Variables = append(rs.Variables, v.Str)
	}

	for _, row := range bindings.Array() {
		if !row.IsObject() {
			continue
		}
		b := make(Binding)
		row.ForEach(func(key, cell gjson.Result) bool {
			if !known[key.String()] || !cell.IsObject() {
				return true
			}
			fields := cell.Map()
			value, ok := fields["value"]
			if !ok {
				return true
			}
			b[key.String()] = Cell{
				Kind:     Kind(fields["type"].String()),
				Value:    value.String(),
				Datatype: fields["datatype"].String(),
				Lang:     fields["xml:lang"].String(),
			}
			return true
		})
		rs.Rows = append(rs.Rows, b)
	}

	return rs
}

// Boolean reads the answer of an ASK result document. ok is false when raw
// is not an ASK result.
func Boolean(raw []byte) (answer, ok bool) {
	if !gjson.ValidBytes(raw) {
		return false, false
	}
	b := gjson.GetBytes(raw, "boolean")
	if b.Type != gjson.True && b.Type != gjson.False {
		return false, false
	}
	return b.Bool(), true
}
