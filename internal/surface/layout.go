// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package surface

import (
	"context"
	"log/slog"
	"sync"
	"time"

	sberr "github.com/sigil-dev/sparqlboard/pkg/errors"
)

// Layout names a graph-drawing algorithm understood by the renderer.
type Layout string

const (
	LayoutCose         Layout = "cose"
	LayoutGrid         Layout = "grid"
	LayoutBreadthFirst Layout = "breadthfirst"
	LayoutCircle       Layout = "circle"
	LayoutConcentric   Layout = "concentric"
	LayoutCoseBilkent  Layout = "cose-bilkent"
)

// DefaultLayout is used when nothing else is requested and as the fallback
// for unavailable enhanced layouts.
const DefaultLayout = LayoutCose

// LayoutOption is a selectable layout with its display label.
type LayoutOption struct {
	Value Layout `json:"value"`
	Label string `json:"label"`
}

var layoutOptions = []LayoutOption{
	{Value: LayoutCose, Label: "Force-directed (cose)"},
	{Value: LayoutGrid, Label: "Grid"},
	{Value: LayoutBreadthFirst, Label: "Breadth-first"},
	{Value: LayoutCircle, Label: "Circle"},
	{Value: LayoutConcentric, Label: "Concentric"},
	{Value: LayoutCoseBilkent, Label: "Cose-Bilkent"},
}

// LayoutOptions returns every selectable layout in display order.
func LayoutOptions() []LayoutOption {
	out := make([]LayoutOption, len(layoutOptions))
	copy(out, layoutOptions)
	return out
}

// ParseLayout validates a layout name. The empty string selects
// DefaultLayout.
func ParseLayout(name string) (Layout, error) {
	if name == "" {
		return DefaultLayout, nil
	}
	for _, o := range layoutOptions {
		if string(o.Value) == name {
			return o.Value, nil
		}
	}
	return "", sberr.New(sberr.CodeSurfaceLayoutInvalid, "unknown layout", sberr.FieldLayout(name))
}

// Probe reports whether an optional layout implementation can be used.
type Probe func(ctx context.Context) error

type probeState struct {
	probe    Probe
	once     sync.Once
	done     chan struct{}
	err      error
	reported sync.Once
}

// LayoutProvider resolves requested layouts to ones that can actually be
// drawn. Built-in layouts resolve to themselves. Enhanced layouts are
// probed once in the background; until the probe succeeds, or when it fails
// or outlasts the wait budget, they resolve to the fallback.
type LayoutProvider struct {
	fallback Layout
	wait     time.Duration

	mu       sync.Mutex
	enhanced map[Layout]*probeState
}

// NewLayoutProvider returns a provider with the given fallback and probe
// wait budget. A zero wait means Resolve never waits on a probe in flight.
func NewLayoutProvider(fallback Layout, wait time.Duration) *LayoutProvider {
	if fallback == "" {
		fallback = DefaultLayout
	}
	return &LayoutProvider{
		fallback: fallback,
		wait:     wait,
		enhanced: make(map[Layout]*probeState),
	}
}

// Fallback returns the layout used when an enhanced one is unavailable.
func (p *LayoutProvider) Fallback() Layout { return p.fallback }

// RegisterEnhanced marks l as optional, available only once probe succeeds.
func (p *LayoutProvider) RegisterEnhanced(l Layout, probe Probe) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.enhanced[l] = &probeState{probe: probe, done: make(chan struct{})}
}

// Resolve returns the layout to draw for l. It never fails; unavailable
// enhanced layouts fall back silently apart from one warning log per
// failed probe.
func (p *LayoutProvider) Resolve(ctx context.Context, l Layout) Layout {
	p.mu.Lock()
	st, ok := p.enhanced[l]
	p.mu.Unlock()
	if !ok {
		return l
	}

	st.once.Do(func() {
		go func() {
			defer close(st.done)
			if st.probe == nil {
				st.err = sberr.New(sberr.CodeSurfaceLayoutUnavailable, "no probe registered", sberr.FieldLayout(string(l)))
				return
			}
			// The probe outlives the request that triggered it.
			st.err = st.probe(context.WithoutCancel(ctx))
		}()
	})

	if p.wait <= 0 {
		select {
		case <-st.done:
			return p.settle(st, l)
		default:
			slog.Debug("enhanced layout probe pending, falling back", "requested", l, "fallback", p.fallback)
			return p.fallback
		}
	}

	t := time.NewTimer(p.wait)
	defer t.Stop()

	select {
	case <-st.done:
		return p.settle(st, l)
	case <-t.C:
		slog.Warn("enhanced layout probe still pending, falling back",
			"requested", l, "fallback", p.fallback)
	case <-ctx.Done():
		slog.Warn("layout resolution cancelled, falling back",
			"requested", l, "fallback", p.fallback, "error", ctx.Err())
	}
	return p.fallback
}

func (p *LayoutProvider) settle(st *probeState, l Layout) Layout {
	if st.err == nil {
		return l
	}
	// The failure is cached, so only the first fallback is worth a warning.
	warned := false
	st.reported.Do(func() {
		warned = true
		slog.Warn("enhanced layout unavailable, falling back",
			"requested", l, "fallback", p.fallback, "error", st.err)
	})
	if !warned {
		slog.Debug("enhanced layout unavailable, falling back", "requested", l, "fallback", p.fallback)
	}
	return p.fallback
}
