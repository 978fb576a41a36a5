package authflow

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"zep-authrelay/internal/metrics"
	"zep-authrelay/pkg/logger"
)

// Entry is one parked request: its config paired with the completion handle
// its original caller is waiting on. The ID exists for log correlation only.
type Entry struct {
	ID     string
	Config *RequestConfig
	Done   *Completion
}

// ConfigUpdater transforms a parked config before replay, typically to
// inject a freshly obtained credential.
type ConfigUpdater func(cfg *RequestConfig) *RequestConfig

// Buffer is the insertion-ordered collection of parked requests. It is
// mutated by Append (pipeline, inline with a failed response) and drained by
// RetryAll/RejectAll (coordinator). Every drain snapshots and clears the
// entry slice under the lock before touching any handle, so an Append racing
// a drain lands in a fresh buffer and is neither lost nor double-replayed.
type Buffer struct {
	mu        sync.Mutex
	entries   []*Entry
	transport Transport
	replayCap int64
}

// NewBuffer creates a buffer replaying against tr with at most
// replayConcurrency requests in flight at once.
func NewBuffer(tr Transport, replayConcurrency int) *Buffer {
	if replayConcurrency <= 0 {
		replayConcurrency = 8
	}
	return &Buffer{
		transport: tr,
		replayCap: int64(replayConcurrency),
	}
}

// Append parks a request at the tail of the buffer. It always succeeds.
func (b *Buffer) Append(cfg *RequestConfig, done *Completion) *Entry {
	ent := &Entry{
		ID:     uuid.New().String(),
		Config: cfg,
		Done:   done,
	}
	b.mu.Lock()
	b.entries = append(b.entries, ent)
	depth := len(b.entries)
	b.mu.Unlock()

	metrics.BufferDepthGauge.Set(float64(depth))
	logger.Debug("buffer: parked request id=%s method=%s url=%s depth=%d", ent.ID, cfg.Method, cfg.URL, depth)
	return ent
}

// Len returns the current number of parked requests.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// drain atomically snapshots and empties the buffer.
func (b *Buffer) drain() []*Entry {
	b.mu.Lock()
	snapshot := b.entries
	b.entries = nil
	b.mu.Unlock()

	metrics.BufferDepthGauge.Set(0)
	return snapshot
}

// RetryAll reissues every parked request in insertion order, applying update
// to each config first (nil means identity). Each reissue routes its own
// success or failure to the corresponding entry's completion handle;
// RetryAll itself never fails. Issue order follows insertion order, but
// completions race freely within the concurrency bound.
//
// The buffer is cleared before any I/O starts, so a request parked while
// replays are in flight waits for the next RetryAll.
func (b *Buffer) RetryAll(ctx context.Context, update ConfigUpdater) {
	snapshot := b.drain()
	if len(snapshot) == 0 {
		return
	}
	if update == nil {
		update = func(cfg *RequestConfig) *RequestConfig { return cfg }
	}

	logger.Info("buffer: replaying %d parked request(s)", len(snapshot))

	sem := semaphore.NewWeighted(b.replayCap)
	var wg sync.WaitGroup
	for _, ent := range snapshot {
		cfg := update(ent.Config.Clone())
		if err := sem.Acquire(ctx, 1); err != nil {
			// Context died mid-drain; the remaining callers still get
			// exactly one settlement.
			ent.Done.Reject(err)
			metrics.ReplayFailedCounter.Inc()
			continue
		}
		wg.Add(1)
		go func(ent *Entry, cfg *RequestConfig) {
			defer wg.Done()
			defer sem.Release(1)

			resp, err := b.transport.Issue(ctx, cfg)
			if err != nil {
				logger.Warn("buffer: replay failed id=%s url=%s: %v", ent.ID, cfg.URL, err)
				metrics.ReplayFailedCounter.Inc()
				ent.Done.Reject(err)
				return
			}
			logger.Debug("buffer: replay succeeded id=%s status=%d", ent.ID, resp.StatusCode)
			metrics.ReplayedCounter.Inc()
			ent.Done.Resolve(resp)
		}(ent, cfg)
	}
	wg.Wait()
}

// RejectAll drains the buffer. With a non-nil reason every handle is
// rejected with it, in insertion order. With a nil reason the entries are
// forgotten without ever settling their handles: the original callers are
// abandoned. That asymmetry is deliberate ("cancel without reason" means
// "forget these ever happened"), so the abandoned count is surfaced as a
// metric rather than papered over with a synthetic error.
func (b *Buffer) RejectAll(reason error) {
	snapshot := b.drain()
	if len(snapshot) == 0 {
		return
	}

	if reason == nil {
		logger.Warn("buffer: abandoning %d parked request(s) without resolution", len(snapshot))
		metrics.AbandonedCounter.Add(float64(len(snapshot)))
		return
	}

	logger.Info("buffer: rejecting %d parked request(s): %v", len(snapshot), reason)
	for _, ent := range snapshot {
		ent.Done.Reject(reason)
		metrics.RejectedCounter.Inc()
	}
}
