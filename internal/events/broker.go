package events

import (
	"context"
	"sync"
	"sync/atomic"

	"alugaai-backend/internal/domain"
	"alugaai-backend/internal/logger"
)

const defaultBuffer = 64

// Broker fans events out to in-process subscribers. Publish never blocks:
// a subscriber whose buffer is full misses the event.
type Broker struct {
	mu      sync.RWMutex
	subs    map[uint64]chan domain.Event
	nextID  uint64
	buffer  int
	dropped atomic.Uint64
}

func NewBroker(buffer int) *Broker {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Broker{subs: make(map[uint64]chan domain.Event), buffer: buffer}
}

func (b *Broker) Publish(ctx context.Context, ev domain.Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for id, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			b.dropped.Add(1)
			logger.Warn("Dropping event for slow subscriber", "subscriber", id, "type", ev.Type)
		}
	}
	return nil
}

func (b *Broker) Subscribe() (<-chan domain.Event, func()) {
	ch := make(chan domain.Event, b.buffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			close(ch)
			b.mu.Unlock()
		})
	}
	return ch, cancel
}

// Subscribers is the number of live subscriptions.
func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Dropped is the number of deliveries skipped because a subscriber was full.
func (b *Broker) Dropped() uint64 {
	return b.dropped.Load()
}

// Watcher is a store that pushes its own change notifications.
type Watcher interface {
	WatchRentals(ctx context.Context, emit func(domain.Event)) error
}

// Relay delivers a store's change notifications to local subscribers only.
// Every replica runs its own listener and sees every change, so the events
// must not go out again through a shared channel.
func (b *Broker) Relay(ctx context.Context, w Watcher) error {
	return w.WatchRentals(ctx, func(ev domain.Event) {
		_ = b.Publish(ctx, ev)
	})
}
