// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package board

import "log/slog"

// watchBuffer bounds the summaries queued for one slow watcher.
const watchBuffer = 8

// watchers fans applied summaries out to subscribers. It is guarded by
// Board.mu.
type watchers struct {
	next uint64
	subs map[uint64]chan Summary
	done bool
}

func (w *watchers) add() (uint64, chan Summary) {
	if w.subs == nil {
		w.subs = make(map[uint64]chan Summary)
	}
	w.next++
	ch := make(chan Summary, watchBuffer)
	if w.done {
		close(ch)
		return w.next, ch
	}
	w.subs[w.next] = ch
	return w.next, ch
}

func (w *watchers) remove(id uint64) {
	if ch, ok := w.subs[id]; ok {
		delete(w.subs, id)
		close(ch)
	}
}

// notify never blocks: a watcher whose buffer is full misses sum.
func (w *watchers) notify(sum Summary) {
	for id, ch := range w.subs {
		select {
		case ch <- sum:
		default:
			slog.Debug("dropping summary for slow watcher", "watcher", id, "seq", sum.Seq)
		}
	}
}

func (w *watchers) closeAll() {
	for id := range w.subs {
		w.remove(id)
	}
	w.done = true
}

// Watch subscribes to the summary of every applied response and reset.
// The channel is closed by cancel or when the board closes; cancel is safe
// to call more than once.
func (b *Board) Watch() (<-chan Summary, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id, ch := b.watchers.add()
	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.watchers.remove(id)
	}
}
