package livepoller

import (
	"sync"

	"lol-match-exporter/internal/lcutypes"
)

// EventBuffer is the shared mutable event buffer described for the
// live poller: a mutex-guarded append-only slice the session state
// machine drains when a recording finishes. A lock-free SPSC queue
// would remove the mutex but isn't warranted at this event rate.
type EventBuffer struct {
	mu     sync.Mutex
	events []lcutypes.LiveGameEvent
}

func NewEventBuffer() *EventBuffer {
	return &EventBuffer{}
}

func (b *EventBuffer) Append(events ...lcutypes.LiveGameEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, events...)
}

// Drain returns and clears all buffered events.
func (b *EventBuffer) Drain() []lcutypes.LiveGameEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.events
	b.events = nil
	return out
}

// Snapshot returns a copy of the current buffer without clearing it.
func (b *EventBuffer) Snapshot() []lcutypes.LiveGameEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]lcutypes.LiveGameEvent, len(b.events))
	copy(out, b.events)
	return out
}
