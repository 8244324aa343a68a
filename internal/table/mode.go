// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package table

import (
	sberr "github.com/sigil-dev/sparqlboard/pkg/errors"
)

// Mode is one of the mutually exclusive result views.
type Mode string

const (
	ModeTable Mode = "table"
	ModeJSON  Mode = "json"
	ModeCSV   Mode = "csv"
)

// Modes lists the views in display order.
var Modes = []Mode{ModeTable, ModeJSON, ModeCSV}

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", sberr.Errorf(sberr.CodeTableModeInvalid, "unknown view mode %q", s)
}

// Next cycles to the following view.
func (m Mode) Next() Mode {
	for i, candidate := range Modes {
		if candidate == m {
			return Modes[(i+1)%len(Modes)]
		}
	}
	return ModeTable
}
