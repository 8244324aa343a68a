// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package graph_test

import (
	"testing"

	"github.com/sigil-dev/sparqlboard/internal/graph"
	"github.com/stretchr/testify/assert"
)

func TestInferRoles(t *testing.T) {
	tests := []struct {
		name string
		vars []string
		want graph.Roles
		ok   bool
	}{
		{name: "empty", vars: nil, ok: false},
		{name: "single", vars: []string{"x"}, want: graph.Roles{Subject: "x", Predicate: "x", Object: "x"}, ok: true},
		{name: "two", vars: []string{"food", "price"}, want: graph.Roles{Subject: "food", Predicate: "price", Object: "price"}, ok: true},
		{name: "positional", vars: []string{"a", "b", "c", "d"}, want: graph.Roles{Subject: "a", Predicate: "b", Object: "c"}, ok: true},
		{name: "by name", vars: []string{"theObj", "Predicate", "mySubject"}, want: graph.Roles{Subject: "mySubject", Predicate: "Predicate", Object: "theObj"}, ok: true},
		{name: "case insensitive", vars: []string{"SUBJ", "PRED", "OBJ"}, want: graph.Roles{Subject: "SUBJ", Predicate: "PRED", Object: "OBJ"}, ok: true},
		{name: "partial names", vars: []string{"x", "subj", "y"}, want: graph.Roles{Subject: "subj", Predicate: "subj", Object: "y"}, ok: true},
		{name: "first match wins", vars: []string{"obj1", "obj2", "s"}, want: graph.Roles{Subject: "obj1", Predicate: "obj2", Object: "obj1"}, ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := graph.InferRoles(tt.vars)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestShortLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"http://x/A", "A"},
		{"https://example.org/foodpriceontology#hasPrice", "hasPrice"},
		{"HTTP://Example.org/Thing", "Thing"},
		{"http://x/rel/", "rel"},
		{"http://x/ns#", "ns"},
		{"http://example.org", "example.org"},
		{"http://", "http://"},
		{"https:///#/", "https:///#/"},
		{"urn:isbn:123/456", "urn:isbn:123/456"},
		{"plain literal", "plain literal"},
		{"", ""},
		{"_:b0", "_:b0"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, graph.ShortLabel(tt.in))
		})
	}
}

func TestShortLabel_IdempotentWithoutScheme(t *testing.T) {
	for _, in := range []string{"A", "a/b#c", "", "urn:x:y", "42", "  spaced  "} {
		once := graph.ShortLabel(in)
		assert.Equal(t, once, graph.ShortLabel(once), in)
	}
}
