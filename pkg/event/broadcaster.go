// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package event

import (
	"sync"
	"sync/atomic"

	"github.com/AccelByte/extend-reading-challenge/pkg/challenge"
)

const defaultSubscriberCapacity = 64

// Filter selects the events a subscription receives.
type Filter func(challenge.Event) bool

// All accepts every event.
func All(challenge.Event) bool { return true }

// LifecycleOnly accepts phase-change events only.
func LifecycleOnly(e challenge.Event) bool { return e.Type.Lifecycle() }

// Option customizes Broadcaster construction.
type Option func(*Broadcaster)

// WithSubscriberCapacity overrides the buffered channel size per subscriber.
func WithSubscriberCapacity(capacity int) Option {
	return func(b *Broadcaster) {
		if capacity > 0 {
			b.capacity = capacity
		}
	}
}

// WithDropHandler is called for every event a full subscriber could not take.
// It runs inside Publish and must not block.
func WithDropHandler(fn func(subscriber string, e challenge.Event)) Option {
	return func(b *Broadcaster) {
		b.onDrop = fn
	}
}

// Broadcaster fans machine events out to subscribers.
//
// Publish never blocks: it runs under the machine lock, so a slow subscriber
// loses events instead of stalling the session. When a buffer is full a
// lifecycle event evicts the oldest queued event; anything else is dropped.
// Drops are counted and handed to the drop handler, never logged inline.
type Broadcaster struct {
	mu       sync.RWMutex
	subs     map[*Subscription]struct{}
	capacity int
	onDrop   func(subscriber string, e challenge.Event)
	dropped  atomic.Uint64
	closed   bool
}

var _ challenge.Sink = (*Broadcaster)(nil)

// NewBroadcaster creates a broadcaster with no subscribers.
func NewBroadcaster(opts ...Option) *Broadcaster {
	b := &Broadcaster{
		subs:     make(map[*Subscription]struct{}),
		capacity: defaultSubscriberCapacity,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Subscription is a live registration with the broadcaster.
type Subscription struct {
	name   string
	filter Filter
	ch     chan challenge.Event
	b      *Broadcaster
	once   sync.Once
}

// Name returns the subscriber name used in logs and metrics.
func (s *Subscription) Name() string {
	return s.name
}

// Events returns the delivery channel. It is closed by Close.
func (s *Subscription) Events() <-chan challenge.Event {
	return s.ch
}

// Close unregisters the subscription and closes its channel.
func (s *Subscription) Close() {
	s.b.remove(s)
}

// Subscribe registers a named subscriber. A nil filter accepts everything.
// Subscribing to a closed broadcaster returns an already closed subscription.
func (b *Broadcaster) Subscribe(name string, filter Filter) *Subscription {
	if filter == nil {
		filter = All
	}
	sub := &Subscription{
		name:   name,
		filter: filter,
		ch:     make(chan challenge.Event, b.capacity),
		b:      b,
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		sub.once.Do(func() { close(sub.ch) })
		return sub
	}
	b.subs[sub] = struct{}{}
	return sub
}

// Publish delivers events to every matching subscriber.
func (b *Broadcaster) Publish(events ...challenge.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, e := range events {
		for sub := range b.subs {
			if sub.filter(e) {
				b.deliver(sub, e)
			}
		}
	}
}

// Count returns the number of live subscriptions.
func (b *Broadcaster) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.subs)
}

// Dropped returns the number of events lost on full subscriber buffers.
func (b *Broadcaster) Dropped() uint64 {
	return b.dropped.Load()
}

// Close closes every subscription. Later publishes are discarded.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	for sub := range b.subs {
		delete(b.subs, sub)
		sub.once.Do(func() { close(sub.ch) })
	}
}

func (b *Broadcaster) remove(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.subs, sub)
	sub.once.Do(func() { close(sub.ch) })
}

func (b *Broadcaster) deliver(sub *Subscription, e challenge.Event) {
	select {
	case sub.ch <- e:
		return
	default:
	}

	if !e.Type.Lifecycle() {
		b.drop(sub, e)
		return
	}

	select {
	case oldest := <-sub.ch:
		b.drop(sub, oldest)
	default:
	}
	select {
	case sub.ch <- e:
	default:
		b.drop(sub, e)
	}
}

func (b *Broadcaster) drop(sub *Subscription, e challenge.Event) {
	b.dropped.Add(1)
	if b.onDrop != nil {
		b.onDrop(sub.name, e)
	}
}
