// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package health_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigil-dev/sparqlboard/pkg/health"
)

func TestReport_Healthy(t *testing.T) {
	tests := []struct {
		name   string
		checks []health.Check
		want   bool
	}{
		{"empty", nil, true},
		{"all ok", []health.Check{health.OK("a", ""), health.OK("b", "")}, true},
		{"warning only", []health.Check{health.OK("a", ""), health.Warn("b", "slow")}, true},
		{"one failure", []health.Check{health.OK("a", ""), health.Fail("b", "down")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r health.Report
			for _, c := range tt.checks {
				r.Add(c)
			}
			assert.Equal(t, tt.want, r.Healthy())
		})
	}
}

func TestReport_Count(t *testing.T) {
	var r health.Report
	r.Add(health.OK("a", ""))
	r.Add(health.Warn("b", ""))
	r.Add(health.Warn("c", ""))
	r.Add(health.Fail("d", ""))

	assert.Equal(t, 1, r.Count(health.StatusOK))
	assert.Equal(t, 2, r.Count(health.StatusWarn))
	assert.Equal(t, 1, r.Count(health.StatusFail))
}

func TestReport_JSON(t *testing.T) {
	r := health.Report{Checks: []health.Check{health.Fail("Endpoint", "connection refused")}}
	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"checks":[{"name":"Endpoint","status":"fail","detail":"connection refused"}]}`, string(data))
}
