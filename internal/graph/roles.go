// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package graph

import "strings"

// Roles names the variables that play subject, predicate, and object in a
// projection. Any two roles may resolve to the same variable.
type Roles struct {
	Subject   string `json:"subject"`
	Predicate string `json:"predicate"`
	Object    string `json:"object"`
}

// InferRoles picks role variables by case-insensitive name match ("subj",
// "pred", "obj") and falls back to position. The precedence is user visible:
//
//	subject:   /subj/ else vars[0]
//	predicate: /pred/ else vars[1] else subject
//	object:    /obj/  else vars[2] else vars[1] else subject
//
// ok is false when vars is empty.
func InferRoles(vars []string) (Roles, bool) {
	if len(vars) == 0 {
		return Roles{}, false
	}

	var r Roles

	r.Subject = firstMatching(vars, "subj")
	if r.Subject == "" {
		r.Subject = vars[0]
	}

	r.Predicate = firstMatching(vars, "pred")
	if r.Predicate == "" {
		if len(vars) > 1 {
			r.Predicate = vars[1]
		} else {
			r.Predicate = r.Subject
		}
	}

	r.Object = firstMatching(vars, "obj")
	if r.Object == "" {
		switch {
		case len(vars) > 2:
			r.Object = vars[2]
		case len(vars) > 1:
			r.Object = vars[1]
		default:
			r.Object = r.Subject
		}
	}

	return r, true
}

func firstMatching(vars []string, needle string) string {
	for _, v := range vars {
		if strings.Contains(strings.ToLower(v), needle) {
			return v
		}
	}
	return ""
}
