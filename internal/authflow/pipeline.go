package authflow

import (
	"context"
	"errors"

	"zep-authrelay/internal/metrics"
	"zep-authrelay/pkg/logger"
)

// Pipeline is the interception hook sitting between callers and the
// transport. Every outbound request goes through Do, which applies the
// classifier, issues the request, and on auth-relevant failures parks the
// caller until the coordinator resolves the episode.
type Pipeline struct {
	classifier *Classifier
	buffer     *Buffer
	notifier   Notifier
	transport  Transport
}

// NewPipeline wires the pipeline to its collaborators. All dependencies are
// required; there is no lazy lookup.
func NewPipeline(classifier *Classifier, buffer *Buffer, notifier Notifier, transport Transport) *Pipeline {
	return &Pipeline{
		classifier: classifier,
		buffer:     buffer,
		notifier:   notifier,
		transport:  transport,
	}
}

// Do issues cfg against the transport with auth interception applied.
//
// In-scope requests are preprocessed before sending. Failures outside the
// classifier's scope, opted out via IgnoreAuthModule, or with a status other
// than 400/401/403 surface unchanged. A 403 broadcasts a forbidden event and
// surfaces unchanged. A 400 or 401 parks the request: the entry joins the
// buffer, the matching event is broadcast, and the caller blocks on the
// completion handle until the coordinator replays or rejects it — or until
// ctx is done, which releases this caller but leaves the entry parked.
func (p *Pipeline) Do(ctx context.Context, cfg *RequestConfig) (*Response, error) {
	errFilter, reqFilter, pre := p.classifier.hooks()

	if reqFilter(cfg) {
		processed, err := pre(ctx, cfg)
		if err != nil {
			return nil, err
		}
		cfg = processed
	}

	resp, err := p.transport.Issue(ctx, cfg)
	if err == nil {
		return resp, nil
	}

	var rej *Rejection
	if !errors.As(err, &rej) {
		// Below-HTTP failure; nothing for the auth layer to classify.
		return nil, err
	}
	if cfg.IgnoreAuthModule || !errFilter(rej) {
		return nil, err
	}

	switch cat := Categorize(rej); cat {
	case CategoryMissingParameter:
		return p.park(ctx, cfg, rej, cat, TopicMissingParameter)
	case CategoryLoginRequired:
		return p.park(ctx, cfg, rej, cat, TopicLoginRequired)
	case CategoryForbidden:
		p.notifier.Publish(TopicForbidden, Event{Category: cat, Rejection: rej})
		return nil, err
	default:
		return nil, err
	}
}

// park appends the request to the buffer, broadcasts the category event, and
// blocks until the entry's handle settles. The original failure never
// reaches the caller; the replay's (or rejection's) outcome does.
func (p *Pipeline) park(ctx context.Context, cfg *RequestConfig, rej *Rejection, cat Category, topic string) (*Response, error) {
	done := NewCompletion()
	ent := p.buffer.Append(cfg, done)
	metrics.ParkedCounter.WithLabelValues(string(cat)).Inc()

	logger.Info("pipeline: parked %s %s id=%s (%s)", cfg.Method, cfg.URL, ent.ID, cat)
	p.notifier.Publish(topic, Event{Category: cat, Rejection: rej})

	return done.Wait(ctx)
}
