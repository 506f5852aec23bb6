// Package events is the in-process replacement for the dashboard's browser
// event fan-out: writes publish typed invalidation events, the SSE endpoint
// subscribes per user.
package events

import (
	"sync"
	"time"
)

// Kind identifies which entity a change event refers to.
type Kind string

const (
	KindAccount      Kind = "account"
	KindTransaction  Kind = "transaction"
	KindBudget       Kind = "budget"
	KindNotification Kind = "notification"
	KindProfile      Kind = "profile"
)

// Event is one change announcement. Payload carries the inserted/updated row
// when the publisher has it; subscribers treat it as advisory and re-fetch.
type Event struct {
	Kind    Kind        `json:"kind"`
	UserID  string      `json:"user_id"`
	Payload interface{} `json:"payload,omitempty"`
	At      time.Time   `json:"at"`
}

// Publisher is the write side of the bus.
type Publisher interface {
	Publish(evt Event)
}

type subscriber struct {
	userID string
	kinds  map[Kind]bool
	ch     chan Event
}

// Bus is a channel-backed fan-out. Publish never blocks: a subscriber whose
// buffer is full misses the event, which is acceptable because consumers
// re-fetch state rather than replay streams.
type Bus struct {
	mu     sync.RWMutex
	subs   map[int]*subscriber
	nextID int
	closed bool
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]*subscriber)}
}

// Subscribe registers for events matching userID and, when kinds are given,
// only those kinds. The returned cancel func must be called to release the
// subscription.
func (b *Bus) Subscribe(userID string, kinds ...Kind) (<-chan Event, func()) {
	kindSet := make(map[Kind]bool, len(kinds))
	for _, k := range kinds {
		kindSet[k] = true
	}

	sub := &subscriber{
		userID: userID,
		kinds:  kindSet,
		ch:     make(chan Event, 16),
	}

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	if !b.closed {
		b.subs[id] = sub
	} else {
		close(sub.ch)
	}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if s, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(s.ch)
		}
		b.mu.Unlock()
	}
	return sub.ch, cancel
}

// Publish delivers evt to every matching subscriber without blocking.
func (b *Bus) Publish(evt Event) {
	if evt.At.IsZero() {
		evt.At = time.Now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}
	for _, sub := range b.subs {
		if sub.userID != "" && sub.userID != evt.UserID {
			continue
		}
		if len(sub.kinds) > 0 && !sub.kinds[evt.Kind] {
			continue
		}
		select {
		case sub.ch <- evt:
		default:
			// Slow consumer; it will re-fetch on its next event.
		}
	}
}

// Close drops all subscriptions. Further publishes are no-ops.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subs {
		delete(b.subs, id)
		close(sub.ch)
	}
}

var _ Publisher = (*Bus)(nil)
