// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

// Package health holds the diagnostic check results reported by
// sparqlboard doctor. All fields are point-in-time snapshots safe to
// serialize to JSON.
package health

import "time"

// Status is the outcome of one check.
type Status string

const (
	StatusOK   Status = "ok"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

// Check is one named diagnostic.
type Check struct {
	Name    string        `json:"name"`
	Status  Status        `json:"status"`
	Detail  string        `json:"detail"`
	Elapsed time.Duration `json:"elapsed_ns,omitempty"`
}

// OK, Warn, and Fail build checks without an elapsed time.
func OK(name, detail string) Check { return Check{Name: name, Status: StatusOK, Detail: detail} }
func Warn(name, detail string) Check { return Check{Name: name, Status: StatusWarn, Detail: detail} }
func Fail(name, detail string) Check { return Check{Name: name, Status: StatusFail, Detail: detail} }

// Report is an ordered list of checks.
type Report struct {
	Checks []Check `json:"checks"`
}

// Add appends c.
func (r *Report) Add(c Check) { r.Checks = append(r.Checks, c) }

// Healthy reports whether no check failed. Warnings do not count.
func (r Report) Healthy() bool {
	for _, c := range r.Checks {
		if c.Status == StatusFail {
			return false
		}
	}
	return true
}

// Count returns how many checks ended with s.
func (r Report) Count(s Status) int {
	n := 0
	for _, c := range r.Checks {
		if c.Status == s {
			n++
		}
	}
	return n
}
