package authflow

import (
	"context"

	"zep-authrelay/pkg/logger"
)

// Coordinator is the host-facing control surface of the interception layer:
// it installs classifier hooks and terminates a pending authentication
// episode by draining the buffer one way or the other.
type Coordinator struct {
	classifier *Classifier
	buffer     *Buffer
	notifier   Notifier
}

// NewCoordinator wires the coordinator to the classifier, buffer, and
// notification channel shared with the pipeline.
func NewCoordinator(classifier *Classifier, buffer *Buffer, notifier Notifier) *Coordinator {
	return &Coordinator{
		classifier: classifier,
		buffer:     buffer,
		notifier:   notifier,
	}
}

// SetResponseErrorFilter installs the response-error scope hook.
func (co *Coordinator) SetResponseErrorFilter(fn ResponseErrorFilter) {
	co.classifier.SetResponseErrorFilter(fn)
}

// SetRequestFilter installs the request scope hook.
func (co *Coordinator) SetRequestFilter(fn RequestFilter) {
	co.classifier.SetRequestFilter(fn)
}

// SetRequestPreprocessor installs the request preprocessing hook.
func (co *Coordinator) SetRequestPreprocessor(fn RequestPreprocessor) {
	co.classifier.SetRequestPreprocessor(fn)
}

// Pending returns the number of requests currently parked.
func (co *Coordinator) Pending() int {
	return co.buffer.Len()
}

// LoginConfirmed ends a pending episode successfully: it broadcasts the
// confirmation carrying data, then replays every parked request with update
// applied to each config (nil update replays configs as-is). Calling it with
// an empty buffer still broadcasts and replays nothing.
func (co *Coordinator) LoginConfirmed(ctx context.Context, data any, update ConfigUpdater) {
	logger.Info("coordinator: login confirmed, %d request(s) parked", co.buffer.Len())
	co.notifier.Publish(TopicLoginConfirmed, Event{Data: data})
	co.buffer.RetryAll(ctx, update)
}

// LoginCancelled ends a pending episode unsuccessfully. The buffer is
// drained before the cancellation broadcast so observers reacting to the
// event can assume no rejected work is still outstanding. With a nil reason
// the parked callers are abandoned rather than rejected (see Buffer.RejectAll);
// observers must tolerate that caveat.
func (co *Coordinator) LoginCancelled(_ context.Context, data any, reason error) {
	logger.Info("coordinator: login cancelled, %d request(s) parked", co.buffer.Len())
	co.buffer.RejectAll(reason)
	co.notifier.Publish(TopicLoginCancelled, Event{Data: data})
}
