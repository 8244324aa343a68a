// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package store

import (
	"strings"

	sberr "github.com/sigil-dev/sparqlboard/pkg/errors"
)

// Validate checks the fields a backend requires.
func (e *Entry) Validate() error {
	if e == nil {
		return sberr.New(sberr.CodeStoreInvalidInput, "entry is nil")
	}
	if strings.TrimSpace(e.Query) == "" {
		return sberr.New(sberr.CodeStoreInvalidInput, "entry query is empty")
	}
	if !e.Status.Valid() {
		return sberr.New(sberr.CodeStoreInvalidInput, "entry status is invalid",
			sberr.FieldValue("status", string(e.Status)))
	}
	if e.Rows < 0 || e.Nodes < 0 || e.Edges < 0 || e.Skipped < 0 {
		return sberr.New(sberr.CodeStoreInvalidInput, "entry counts must be non-negative")
	}
	return nil
}

// Validate checks paging bounds.
func (o ListOpts) Validate() error {
	if o.Limit < 0 {
		return sberr.New(sberr.CodeStoreInvalidInput, "limit must be non-negative", sberr.FieldValue("limit", o.Limit))
	}
	if o.Offset < 0 {
		return sberr.New(sberr.CodeStoreInvalidInput, "offset must be non-negative", sberr.FieldValue("offset", o.Offset))
	}
	return nil
}
