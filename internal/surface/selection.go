// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package surface

// Selection is either none or exactly one selected node id. The zero value
// is none.
type Selection struct {
	id  string
	set bool
}

// NoSelection returns the empty selection.
func NoSelection() Selection { return Selection{} }

// Selected returns a selection holding id.
func Selected(id string) Selection { return Selection{id: id, set: true} }

// ID returns the selected id and whether anything is selected.
func (s Selection) ID() (string, bool) { return s.id, s.set }

// IsNone reports whether nothing is selected.
func (s Selection) IsNone() bool { return !s.set }

// Is reports whether id is the selected node.
func (s Selection) Is(id string) bool { return s.set && s.id == id }
