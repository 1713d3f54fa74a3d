// Package events provides the notification bus for account and transaction
// status changes. Each channel buffers published events while it has no
// subscribers and flushes the backlog, in order, to the first subscriber.
package events

import (
	"sync"

	"github.com/mrz1836/nearlight/internal/metrics"
)

// Logger is the minimal logging surface the bus needs to report subscriber
// panics without depending on the config package.
type Logger interface {
	Error(format string, args ...any)
}

// Feed is a single typed publish/subscribe channel. Delivery is synchronous
// and in publish order per subscriber. A subscriber that panics does not
// prevent delivery to the remaining subscribers.
type Feed[T any] struct {
	mu          sync.Mutex
	subscribers []func(T)
	buffer      []T
	logger      Logger
}

// NewFeed creates a feed. A nil logger silently discards panic reports.
func NewFeed[T any](logger Logger) *Feed[T] {
	return &Feed[T]{logger: logger}
}

// Subscribe registers a callback. Buffered events published before the first
// subscription are delivered to the new subscriber immediately, in FIFO
// order, and the buffer is cleared. The backlog is flushed under the feed
// lock so a concurrent Publish cannot slip a newer event ahead of it.
// Callbacks must not call back into the same feed.
func (f *Feed[T]) Subscribe(fn func(T)) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.subscribers = append(f.subscribers, fn)
	backlog := f.buffer
	f.buffer = nil

	for _, ev := range backlog {
		f.deliver(fn, ev)
	}
}

// Publish delivers the event to every subscriber, or appends it to the
// buffer when none are registered yet. Delivery happens under the feed lock,
// which is what makes per-subscriber ordering total across publishers.
func (f *Feed[T]) Publish(ev T) {
	f.mu.Lock()

	if len(f.subscribers) == 0 {
		f.buffer = append(f.buffer, ev)
		f.mu.Unlock()
		metrics.Global.RecordEventBuffered()
		return
	}

	defer f.mu.Unlock()
	for _, fn := range f.subscribers {
		f.deliver(fn, ev)
	}
}

// Buffered returns the number of undelivered events.
func (f *Feed[T]) Buffered() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.buffer)
}

// deliver invokes one callback, containing any panic so the remaining
// subscribers still receive the event.
func (f *Feed[T]) deliver(fn func(T), ev T) {
	defer func() {
		if r := recover(); r != nil && f.logger != nil {
			f.logger.Error("event subscriber panicked: %v", r)
		}
	}()
	fn(ev)
}

// AccountEvent reports a change of the active account. AccountID is empty
// after sign-out.
type AccountEvent struct {
	AccountID string
}

// TxEvent reports a transaction status change. Record is the full updated
// history entry, carried as an opaque value so the bus does not depend on
// the client package.
type TxEvent struct {
	TxID   string
	Status string
	Record any
}

// Bus bundles the two channels the client publishes on.
type Bus struct {
	Account *Feed[AccountEvent]
	Tx      *Feed[TxEvent]
}

// NewBus creates a bus with empty, unbuffered-state channels.
func NewBus(logger Logger) *Bus {
	return &Bus{
		Account: NewFeed[AccountEvent](logger),
		Tx:      NewFeed[TxEvent](logger),
	}
}
