// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package graph

import (
	"regexp"
	"strings"
)

var schemePrefix = regexp.MustCompile(`(?i)^https?://`)

// ShortLabel returns a display label for a raw binding value. HTTP(S) IRIs
// are reduced to their last non-empty path or fragment segment; anything
// else is returned unchanged. When no usable segment exists the raw value
// is returned.
func ShortLabel(value string) string {
	loc := schemePrefix.FindStringIndex(value)
	if loc == nil {
		return value
	}

	segments := strings.FieldsFunc(value[loc[1]:], func(r rune) bool {
		return r == '/' || r == '#'
	})
	if len(segments) == 0 {
		return value
	}
	return segments[len(segments)-1]
}
