// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package events_test

import (
	"testing"

	"github.com/sigil-dev/sparqlboard/internal/events"
	"github.com/stretchr/testify/assert"
)

func TestBus_OnEmitRelease(t *testing.T) {
	var bus events.Bus
	var got []string

	release := bus.On(events.Resize, func(e events.Event) { got = append(got, "first") })
	bus.On(events.Resize, func(e events.Event) { got = append(got, "second") })

	bus.Emit(events.Event{Name: events.Resize})
	assert.Equal(t, []string{"first", "second"}, got)

	release()
	release()
	assert.Equal(t, 1, bus.Count(events.Resize))

	got = nil
	bus.Emit(events.Event{Name: events.Resize})
	assert.Equal(t, []string{"second"}, got)
}

func TestBus_HandlerCanReleaseItself(t *testing.T) {
	var bus events.Bus
	calls := 0
	var release func()
	release = bus.On(events.PointerUp, func(events.Event) {
		calls++
		release()
	})

	bus.Emit(events.Event{Name: events.PointerUp})
	bus.Emit(events.Event{Name: events.PointerUp})
	assert.Equal(t, 1, calls)
	assert.Zero(t, bus.Total())
}

func TestScope_CloseReleasesAll(t *testing.T) {
	var bus events.Bus
	var scope events.Scope

	scope.On(&bus, events.PointerMove, func(events.Event) {})
	scope.On(&bus, events.PointerUp, func(events.Event) {})
	scope.On(nil, events.KeyDown, func(events.Event) {})
	assert.Equal(t, 2, scope.Len())
	assert.Equal(t, 2, bus.Total())

	scope.Close()
	assert.Zero(t, scope.Len())
	assert.Zero(t, bus.Total())

	scope.Close()
}
