// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package table_test

import (
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sigil-dev/sparqlboard/internal/results"
	"github.com/sigil-dev/sparqlboard/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lit(v string) results.Cell {
	return results.Cell{Kind: results.KindLiteral, Value: v}
}

func TestToCSV_QuotesEveryField(t *testing.T) {
	vars := []string{"food", "price"}
	rows := []results.Binding{
		{"food": lit("Apple"), "price": lit("1.20")},
		{"food": lit(`say "cheese"`)},
	}

	got := table.ToCSV(vars, rows)
	want := "\"food\",\"price\"\n\"Apple\",\"1.20\"\n\"say \"\"cheese\"\"\",\"\""
	assert.Equal(t, want, got)
}

func TestToCSV_NoVariables(t *testing.T) {
	rows := []results.Binding{{}, {}}

	got := table.ToCSV(nil, rows)
	assert.Equal(t, "\"\"\n\"\"\n\"\"", got)

	records, err := csv.NewReader(strings.NewReader(got)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1+len(rows), "header plus one record per row")
	assert.Equal(t, []string{""}, records[0])

	assert.Equal(t, `""`, table.ToCSV(nil, nil))
}

func TestToCSV_RoundTripsThroughStandardReader(t *testing.T) {
	vars := []string{"s", "note", "o"}
	rows := []results.Binding{
		{"s": lit("a,b"), "note": lit("line1\nline2"), "o": lit(`"q"`)},
		{},
		{"o": lit("only object")},
	}

	records, err := csv.NewReader(strings.NewReader(table.ToCSV(vars, rows))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, len(rows)+1)
	assert.Equal(t, vars, records[0])
	assert.Equal(t, []string{"a,b", "line1\nline2", `"q"`}, records[1])
	assert.Equal(t, []string{"", "", ""}, records[2])
}

func TestToCSV_Deterministic(t *testing.T) {
	vars := []string{"a", "b"}
	rows := []results.Binding{{"a": lit("1"), "b": lit("2")}}
	assert.Equal(t, table.ToCSV(vars, rows), table.ToCSV(vars, rows))
}

func TestToJSON_PrettyPrinted(t *testing.T) {
	rs := results.ResultSet{Variables: []string{"a"}, Rows: []results.Binding{{"a": lit("1")}}}
	data, err := table.ToJSON(rs)
	require.NoError(t, err)

	assert.Contains(t, string(data), "\n  \"head\"")
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "results")

	again, err := table.ToJSON(rs)
	require.NoError(t, err)
	assert.Equal(t, data, again)
}
