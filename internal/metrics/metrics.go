package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BufferDepthGauge tracks the current number of parked requests
	BufferDepthGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "auth_relay",
		Name:      "buffer_depth",
		Help:      "Current number of requests parked awaiting authentication",
	})

	// ParkedCounter tracks requests parked, labeled by auth category
	ParkedCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "auth_relay",
		Name:      "parked_total",
		Help:      "Total number of requests parked in the auth buffer",
	}, []string{"category"})

	// ReplayedCounter tracks parked requests replayed successfully
	ReplayedCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "auth_relay",
		Name:      "replayed_total",
		Help:      "Total number of parked requests replayed with a success outcome",
	})

	// ReplayFailedCounter tracks replays whose reissued request failed
	ReplayFailedCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "auth_relay",
		Name:      "replay_failed_total",
		Help:      "Total number of replayed requests that failed again on reissue",
	})

	// RejectedCounter tracks parked requests rejected by a cancelled login
	RejectedCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "auth_relay",
		Name:      "rejected_total",
		Help:      "Total number of parked requests rejected on login cancellation",
	})

	// AbandonedCounter tracks parked requests dropped without settling.
	// A non-zero value means callers were left waiting forever (no-reason
	// cancellation), which operators usually want to know about.
	AbandonedCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "auth_relay",
		Name:      "abandoned_total",
		Help:      "Total number of parked requests abandoned without resolution",
	})

	// EventsPublishedCounter tracks auth events broadcast, labeled by topic
	EventsPublishedCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "auth_relay",
		Name:      "events_published_total",
		Help:      "Total number of auth events published on the notification bus",
	}, []string{"topic"})

	// EventsDroppedCounter tracks events dropped because a subscriber was slow
	EventsDroppedCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "auth_relay",
		Name:      "events_dropped_total",
		Help:      "Total number of auth events dropped due to full subscriber buffers",
	})
)
