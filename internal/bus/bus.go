package bus

import (
	"sync"

	"zep-authrelay/internal/authflow"
	"zep-authrelay/internal/metrics"
	"zep-authrelay/pkg/logger"
)

// Envelope is what subscribers receive: the topic plus the published event.
type Envelope struct {
	Topic string
	Event authflow.Event
}

type subscriber struct {
	ch    chan Envelope
	topic string // "" subscribes to every topic
}

// Bus is an in-process broadcast channel for auth events. Publish is
// fire-and-forget: it never blocks, and a subscriber whose buffer is full
// misses the event (counted, logged, not retried). That matches the
// delivery contract the interception layer assumes — no acknowledgments.
type Bus struct {
	mu   sync.RWMutex
	subs []*subscriber
}

// New returns an empty bus.
func New() *Bus {
	return &Bus{}
}

// Subscribe registers interest in one topic ("" for all topics) with the
// given channel buffer size. The returned cancel func removes the
// subscription and closes the channel.
func (b *Bus) Subscribe(topic string, buffer int) (<-chan Envelope, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	sub := &subscriber{
		ch:    make(chan Envelope, buffer),
		topic: topic,
	}

	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		for i, s := range b.subs {
			if s == sub {
				b.subs = append(b.subs[:i], b.subs[i+1:]...)
				close(sub.ch)
				break
			}
		}
		b.mu.Unlock()
	}
	return sub.ch, cancel
}

// Publish broadcasts ev to every matching subscriber without blocking.
// Implements authflow.Notifier.
func (b *Bus) Publish(topic string, ev authflow.Event) {
	metrics.EventsPublishedCounter.WithLabelValues(topic).Inc()

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		if sub.topic != "" && sub.topic != topic {
			continue
		}
		select {
		case sub.ch <- Envelope{Topic: topic, Event: ev}:
		default:
			metrics.EventsDroppedCounter.Inc()
			logger.Warn("bus: dropped event %s for slow subscriber", topic)
		}
	}
}
