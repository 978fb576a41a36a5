package authflow

// Topics published by the interception layer. The park topics and the
// forbidden topic carry the original rejection; the confirmed/cancelled
// topics carry whatever data the host passed to the coordinator.
const (
	TopicMissingParameter = "event:auth-missingParameter"
	TopicLoginRequired    = "event:auth-loginRequired"
	TopicForbidden        = "event:auth-forbidden"
	TopicLoginConfirmed   = "event:auth-loginConfirmed"
	TopicLoginCancelled   = "event:auth-loginCancelled"
)

// Event is the payload broadcast on every auth topic.
type Event struct {
	Category  Category
	Rejection *Rejection
	Data      any
}

// Notifier broadcasts auth events to the host application. Delivery is
// fire-and-forget; the interception layer never waits on subscribers.
type Notifier interface {
	Publish(topic string, ev Event)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(topic string, ev Event)

func (f NotifierFunc) Publish(topic string, ev Event) {
	f(topic, ev)
}
