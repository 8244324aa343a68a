// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package metrics

import (
	"net/http"
	"strconv"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus records into its own registry.
type Prometheus struct {
	registry     *prom.Registry
	queryTotal   *prom.CounterVec
	querySeconds *prom.HistogramVec
	skippedRows  prom.Counter
	exportTotal  *prom.CounterVec
}

var _ Recorder = (*Prometheus)(nil)

// NewPrometheus builds a recorder with a fresh registry.
func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prom.NewRegistry(),
		queryTotal: prom.NewCounterVec(prom.CounterOpts{
			Name: "sparqlboard_queries_total",
			Help: "Total number of SPARQL queries by outcome",
		}, []string{"status"}),
		querySeconds: prom.NewHistogramVec(prom.HistogramOpts{
			Name:    "sparqlboard_query_seconds",
			Help:    "SPARQL query round trip in seconds",
			Buckets: prom.DefBuckets,
		}, []string{"status"}),
		skippedRows: prom.NewCounter(prom.CounterOpts{
			Name: "sparqlboard_projection_rows_skipped_total",
			Help: "Rows dropped from the graph for lacking a subject or object",
		}),
		exportTotal: prom.NewCounterVec(prom.CounterOpts{
			Name: "sparqlboard_exports_total",
			Help: "Total number of exports by kind",
		}, []string{"kind", "success"}),
	}
	p.registry.MustRegister(p.queryTotal, p.querySeconds, p.skippedRows, p.exportTotal)
	return p
}

func (p *Prometheus) IncQueryTotal(status string) {
	p.queryTotal.WithLabelValues(status).Inc()
}

func (p *Prometheus) ObserveQuerySeconds(status string, seconds float64) {
	p.querySeconds.WithLabelValues(status).Observe(seconds)
}

func (p *Prometheus) AddSkippedRows(n int) {
	if n > 0 {
		p.skippedRows.Add(float64(n))
	}
}

func (p *Prometheus) IncExportTotal(kind string, success bool) {
	p.exportTotal.WithLabelValues(kind, strconv.FormatBool(success)).Inc()
}

// Registry exposes the underlying registry.
func (p *Prometheus) Registry() *prom.Registry { return p.registry }

// Handler serves the registry in the Prometheus text format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
