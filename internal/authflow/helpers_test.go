package authflow

import (
	"context"
	"sync"
)

// fakeTransport records every issued config and answers via respond. An
// optional gate channel holds all issues until it is closed, which lets
// tests interleave buffer operations with in-flight replays.
type fakeTransport struct {
	mu      sync.Mutex
	issued  []*RequestConfig
	respond func(cfg *RequestConfig) (*Response, error)
	gate    chan struct{}
}

func (f *fakeTransport) Issue(ctx context.Context, cfg *RequestConfig) (*Response, error) {
	f.mu.Lock()
	f.issued = append(f.issued, cfg)
	f.mu.Unlock()

	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.respond != nil {
		return f.respond(cfg)
	}
	return &Response{StatusCode: 200}, nil
}

func (f *fakeTransport) issuedConfigs() []*RequestConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*RequestConfig(nil), f.issued...)
}

type publishedEvent struct {
	Topic string
	Event Event
}

// recordingNotifier captures everything published, with an optional callback
// invoked inline on each publish for ordering assertions.
type recordingNotifier struct {
	mu        sync.Mutex
	published []publishedEvent
	onPublish func(topic string, ev Event)
}

func (n *recordingNotifier) Publish(topic string, ev Event) {
	n.mu.Lock()
	n.published = append(n.published, publishedEvent{Topic: topic, Event: ev})
	cb := n.onPublish
	n.mu.Unlock()

	if cb != nil {
		cb(topic, ev)
	}
}

func (n *recordingNotifier) events() []publishedEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]publishedEvent(nil), n.published...)
}
