// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

// Package events is the host event bus interactive surfaces attach to.
// Every registration returns its own release so acquisition and release
// stay paired.
package events

import (
	"sort"
	"sync"
)

// Well-known event names.
const (
	PointerMove = "pointermove"
	PointerUp   = "pointerup"
	Resize      = "resize"
	KeyDown     = "keydown"
)

// Event is delivered to handlers registered for Name.
type Event struct {
	Name string
	X    float64
	Y    float64
	Key  string
}

// Handler receives events.
type Handler func(Event)

// Bus dispatches events to registered handlers. The zero value is ready to use.
type Bus struct {
	mu       sync.Mutex
	next     uint64
	handlers map[string]map[uint64]Handler
}

// On registers h for name and returns a release func. Release is safe to
// call more than once.
func (b *Bus) On(name string, h Handler) (release func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handlers == nil {
		b.handlers = make(map[string]map[uint64]Handler)
	}
	if b.handlers[name] == nil {
		b.handlers[name] = make(map[uint64]Handler)
	}
	b.next++
	id := b.next
	b.handlers[name][id] = h

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.handlers[name], id)
			if len(b.handlers[name]) == 0 {
				delete(b.handlers, name)
			}
		})
	}
}

// Emit delivers e to every handler registered for e.Name in registration
// order. Handlers may release themselves while being dispatched.
func (b *Bus) Emit(e Event) {
	b.mu.Lock()
	ids := make([]uint64, 0, len(b.handlers[e.Name]))
	for id := range b.handlers[e.Name] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	hs := make([]Handler, 0, len(ids))
	for _, id := range ids {
		hs = append(hs, b.handlers[e.Name][id])
	}
	b.mu.Unlock()

	for _, h := range hs {
		h(e)
	}
}

// Count returns the number of live handlers for name.
func (b *Bus) Count(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers[name])
}

// Total returns the number of live handlers across all names.
func (b *Bus) Total() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, hs := range b.handlers {
		n += len(hs)
	}
	return n
}

// Scope groups registrations so they can be released together.
type Scope struct {
	mu       sync.Mutex
	releases []func()
}

// On registers h on bus and tracks its release in the scope. A nil bus is
// a no-op.
func (s *Scope) On(bus *Bus, name string, h Handler) {
	if bus == nil {
		return
	}
	release := bus.On(name, h)
	s.mu.Lock()
	s.releases = append(s.releases, release)
	s.mu.Unlock()
}

// Close releases every registration in reverse order.
func (s *Scope) Close() {
	s.mu.Lock()
	releases := s.releases
	s.releases = nil
	s.mu.Unlock()

	for i := len(releases) - 1; i >= 0; i-- {
		releases[i]()
	}
}

// Len returns the number of registrations still held.
func (s *Scope) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.releases)
}
