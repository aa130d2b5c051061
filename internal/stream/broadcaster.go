// Package stream fans completed simulations out to live subscribers.
package stream

import (
	"sync"
	"sync/atomic"

	"github.com/mr1hm/go-impact-sim/internal/models"
	"github.com/mr1hm/go-impact-sim/internal/observability"
)

const subscriberBuffer = 64

type Broadcaster struct {
	subscribers map[uint64]chan *models.SimulationSummary
	nextID      atomic.Uint64
	mu          sync.RWMutex
	closed      bool
	metrics     *observability.Metrics
}

// NewBroadcaster creates a broadcaster. metrics may be nil.
func NewBroadcaster(metrics *observability.Metrics) *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[uint64]chan *models.SimulationSummary),
		metrics:     metrics,
	}
}

// Subscribe registers a new subscriber. The channel is closed by
// Unsubscribe or Close; after Close it is returned already closed.
func (b *Broadcaster) Subscribe() (uint64, <-chan *models.SimulationSummary) {
	id := b.nextID.Add(1)
	ch := make(chan *models.SimulationSummary, subscriberBuffer)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return id, ch
	}
	b.subscribers[id] = ch
	b.reportLocked()

	return id, ch
}

func (b *Broadcaster) Unsubscribe(id uint64) {
	b.mu.Lock()
	if ch, ok := b.subscribers[id]; ok {
		close(ch)
		delete(b.subscribers, id)
		b.reportLocked()
	}
	b.mu.Unlock()
}

// Broadcast delivers s to every subscriber with buffer room. Slow
// subscribers miss the message.
func (b *Broadcaster) Broadcast(s *models.SimulationSummary) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- s:
		default:
		}
	}
}

func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Close closes all subscriber channels, causing streams to exit gracefully
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
	}
	b.reportLocked()
}

func (b *Broadcaster) reportLocked() {
	if b.metrics != nil {
		b.metrics.StreamSubscribers.Set(float64(len(b.subscribers)))
	}
}
