// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

// Package metrics is the instrumentation surface for query execution and
// exports. The default recorder is a no-op; Prometheus is opt-in.
package metrics

import (
	"sync"
	"time"
)

// Query outcome labels.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
	StatusStale  = "stale"
)

// Recorder receives instrumentation events.
type Recorder interface {
	IncQueryTotal(status string)
	ObserveQuerySeconds(status string, seconds float64)
	AddSkippedRows(n int)
	IncExportTotal(kind string, success bool)
}

type noopRecorder struct{}

func (noopRecorder) IncQueryTotal(string)                {}
func (noopRecorder) ObserveQuerySeconds(string, float64) {}
func (noopRecorder) AddSkippedRows(int)                  {}
func (noopRecorder) IncExportTotal(string, bool)         {}

// Noop returns a recorder that drops everything.
func Noop() Recorder { return noopRecorder{} }

var (
	recMu    sync.RWMutex
	recorder Recorder = noopRecorder{}
)

// Default returns the process-wide recorder.
func Default() Recorder {
	recMu.RLock()
	defer recMu.RUnlock()
	return recorder
}

// SetRecorder swaps the process-wide recorder. A nil r restores the no-op.
func SetRecorder(r Recorder) {
	recMu.Lock()
	defer recMu.Unlock()
	if r == nil {
		r = noopRecorder{}
	}
	recorder = r
}

// ObserveQuery counts one query outcome and its round trip.
func ObserveQuery(r Recorder, status string, d time.Duration) {
	r.IncQueryTotal(status)
	r.ObserveQuerySeconds(status, d.Seconds())
}
