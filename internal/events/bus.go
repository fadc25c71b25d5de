package events

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// Listener handles one redirect. It runs on the publisher's goroutine.
type Listener func(RedirectEvent)

// Bus fans redirect events out to listeners and channel subscribers.
//
// Listeners run synchronously in subscription order; a panicking listener is
// logged and skipped. Channel subscribers never block Publish: a full buffer
// drops the event and bumps Dropped.
type Bus struct {
	logger *slog.Logger

	mu        sync.RWMutex
	nextID    uint64
	listeners map[uint64]Listener
	order     []uint64
	chans     map[uint64]chan RedirectEvent
	closed    bool

	dropped atomic.Int64
}

func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Bus{
		logger:    logger,
		listeners: make(map[uint64]Listener),
		chans:     make(map[uint64]chan RedirectEvent),
	}
}

// Subscribe registers fn and returns a func that removes it.
func (b *Bus) Subscribe(fn Listener) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed || fn == nil {
		return func() {}
	}

	b.nextID++
	id := b.nextID
	b.listeners[id] = fn
	b.order = append(b.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.listeners, id)
			for i, candidate := range b.order {
				if candidate == id {
					b.order = append(b.order[:i], b.order[i+1:]...)
					break
				}
			}
		})
	}
}

// SubscribeChan returns a buffered channel that receives every event until
// unsubscribe or Close is called, after which the channel is closed.
func (b *Bus) SubscribeChan(buffer int) (<-chan RedirectEvent, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan RedirectEvent, buffer)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	b.nextID++
	id := b.nextID
	b.chans[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if existing, ok := b.chans[id]; ok {
				delete(b.chans, id)
				close(existing)
			}
		})
	}
}

// Publish delivers event to every current subscriber.
func (b *Bus) Publish(event RedirectEvent) {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return
	}
	listeners := make([]Listener, 0, len(b.order))
	for _, id := range b.order {
		listeners = append(listeners, b.listeners[id])
	}
	for _, ch := range b.chans {
		select {
		case ch <- event:
		default:
			b.dropped.Add(1)
			b.logger.Warn("redirect event dropped; subscriber buffer full", "event_id", event.ID)
		}
	}
	b.mu.RUnlock()

	for _, fn := range listeners {
		b.call(fn, event)
	}
}

func (b *Bus) call(fn Listener, event RedirectEvent) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("redirect listener panicked", "event_id", event.ID, "panic", r)
		}
	}()
	fn(event)
}

// Len returns the number of active subscriptions of either kind.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners) + len(b.chans)
}

// Dropped returns how many channel deliveries were skipped.
func (b *Bus) Dropped() int64 {
	return b.dropped.Load()
}

// Close drops all subscriptions and closes subscriber channels. Later
// publishes are ignored.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.chans {
		delete(b.chans, id)
		close(ch)
	}
	clear(b.listeners)
	b.order = nil
}
