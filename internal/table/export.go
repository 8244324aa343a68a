// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package table

import (
	"encoding/json"
	"strings"

	"github.com/sigil-dev/sparqlboard/internal/results"
	sberr "github.com/sigil-dev/sparqlboard/pkg/errors"
)

// ToCSV renders a header of vars followed by one line per row. Every field
// is double-quoted with embedded quotes doubled; unbound cells are empty.
// Lines are joined by "\n" with no trailing newline.
//
// With no variables every line is a single empty field, so readers that
// skip blank lines still see one record per row.
func ToCSV(vars []string, rows []results.Binding) string {
	var b strings.Builder

	writeRecord := func(fields func(i int) string) {
		if len(vars) == 0 {
			b.WriteString(`""`)
			return
		}
		for i := range vars {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('"')
			b.WriteString(strings.ReplaceAll(fields(i), `"`, `""`))
			b.WriteByte('"')
		}
	}

	writeRecord(func(i int) string { return vars[i] })
	for _, row := range rows {
		b.WriteByte('\n')
		writeRecord(func(i int) string {
			v, _ := row.Value(vars[i])
			return v
		})
	}

	return b.String()
}

// ToJSON pretty-prints rs in the SPARQL JSON results shape.
func ToJSON(rs results.ResultSet) ([]byte, error) {
	data, err := json.MarshalIndent(rs, "", "  ")
	if err != nil {
		return nil, sberr.Wrap(err, sberr.CodeTableExportFailure, "encoding results json")
	}
	return data, nil
}
