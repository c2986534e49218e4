package service

import (
	"sync"
	"sync/atomic"
)

// Action names the kind of change an Event reports.
type Action string

const (
	ActionLoaded      Action = "loaded"
	ActionOpened      Action = "opened"
	ActionUpdated     Action = "updated"
	ActionUndo        Action = "undo"
	ActionRedo        Action = "redo"
	ActionSelected    Action = "selected"
	ActionRevalidated Action = "revalidated"
	ActionFailed      Action = "failed"
)

// Event describes a change to the editor state.
type Event struct {
	Action   Action   `json:"action"`
	Revision string   `json:"revision,omitempty"`
	Errors   int      `json:"errors"`
	Messages []string `json:"messages,omitempty"`
}

const subscriberBuffer = 16

// EventBus fans events out to subscribers. A subscriber whose buffer is full
// misses the event rather than blocking the publisher.
type EventBus struct {
	mu      sync.RWMutex
	subs    map[chan Event]struct{}
	dropped atomic.Uint64
}

// NewEventBus creates an event bus with no subscribers.
func NewEventBus() *EventBus {
	return &EventBus{subs: map[chan Event]struct{}{}}
}

// Publish delivers e to every subscriber with room in its buffer.
func (b *EventBus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- e:
		default:
			b.dropped.Add(1)
		}
	}
}

// Subscribe registers a buffered channel for future events.
func (b *EventBus) Subscribe() chan Event {
	ch := make(chan Event, subscriberBuffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes ch and closes it. Unknown channels are ignored.
func (b *EventBus) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[ch]; !ok {
		return
	}
	delete(b.subs, ch)
	close(ch)
}

// Subscribers returns the number of registered subscribers.
func (b *EventBus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Dropped returns how many deliveries were skipped because a subscriber
// was full.
func (b *EventBus) Dropped() uint64 {
	return b.dropped.Load()
}
