package bus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zep-authrelay/internal/authflow"
)

func recv(t *testing.T, ch <-chan Envelope) Envelope {
	t.Helper()
	select {
	case env := <-ch:
		return env
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Envelope{}
	}
}

func TestBus_PublishReachesTopicSubscriber(t *testing.T) {
	b := New()
	ch, cancel := b.Subscribe(authflow.TopicLoginRequired, 4)
	defer cancel()

	b.Publish(authflow.TopicLoginRequired, authflow.Event{
		Category:  authflow.CategoryLoginRequired,
		Rejection: &authflow.Rejection{StatusCode: 401},
	})

	env := recv(t, ch)
	assert.Equal(t, authflow.TopicLoginRequired, env.Topic)
	require.NotNil(t, env.Event.Rejection)
	assert.Equal(t, 401, env.Event.Rejection.StatusCode)
}

func TestBus_TopicFiltering(t *testing.T) {
	b := New()
	ch, cancel := b.Subscribe(authflow.TopicForbidden, 4)
	defer cancel()

	b.Publish(authflow.TopicLoginRequired, authflow.Event{})
	b.Publish(authflow.TopicForbidden, authflow.Event{Category: authflow.CategoryForbidden})

	env := recv(t, ch)
	assert.Equal(t, authflow.TopicForbidden, env.Topic)
	assert.Empty(t, ch, "subscriber must not see other topics")
}

func TestBus_WildcardSubscriberSeesEverything(t *testing.T) {
	b := New()
	ch, cancel := b.Subscribe("", 8)
	defer cancel()

	topics := []string{
		authflow.TopicMissingParameter,
		authflow.TopicLoginRequired,
		authflow.TopicForbidden,
		authflow.TopicLoginConfirmed,
		authflow.TopicLoginCancelled,
	}
	for _, topic := range topics {
		b.Publish(topic, authflow.Event{})
	}
	for _, topic := range topics {
		assert.Equal(t, topic, recv(t, ch).Topic)
	}
}

func TestBus_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	b := New()
	ch, cancel := b.Subscribe("", 1)
	defer cancel()

	start := time.Now()
	for i := 0; i < 10; i++ {
		b.Publish(authflow.TopicLoginRequired, authflow.Event{})
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond, "publish must never block")
	assert.Len(t, ch, 1, "overflow events are dropped, not queued")
}

func TestBus_CancelStopsDelivery(t *testing.T) {
	b := New()
	ch, cancel := b.Subscribe("", 4)

	cancel()
	b.Publish(authflow.TopicLoginConfirmed, authflow.Event{})

	_, open := <-ch
	assert.False(t, open, "cancel must close the channel")
}
