// Package reaper implements the background deletion protocol that
// guarantees no Stream or SampleStore is freed while the mixer might
// still reference it: batch end-of-life Stop commands, wait for the
// mixer to acknowledge the last one in the batch, then free.
package reaper

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/hypersonik/mixer"
)

// Task describes one stream (and, if this caller owns it, its
// SampleStore) awaiting teardown. Cmd is a Command already allocated
// by the caller (typically a PlaybackObject's reserved teardown
// command) — the Reaper never allocates from its own Client's private
// pool on a foreign goroutine; it only ever calls the thread-safe
// Client.Submit, matching the single-owner discipline Client.Alloc
// requires.
type Task struct {
	Stream *mixer.Stream
	Store  *mixer.SampleStore
	Cmd    *mixer.Command
}

// Reaper is a dedicated background goroutine that batches teardown
// across many PlaybackObject destructions so that no single caller
// pays the mixer-tick latency of a synchronous Stop/ack round trip.
type Reaper struct {
	client *mixer.Client
	logger *zap.Logger

	mu       sync.Mutex
	cond     *sync.Cond
	pending  []Task
	stopping bool

	sem *semaphore.Weighted

	group *errgroup.Group
}

// New returns a Reaper driving commands through client. maxPending
// bounds how many outstanding (unprocessed) tasks Submit will accept
// before it blocks the calling goroutine — backpressure against a
// pathological burst of destructions outrunning the reaper.
func New(client *mixer.Client, maxPending int64, logger *zap.Logger) *Reaper {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Reaper{
		client: client,
		logger: logger,
		sem:    semaphore.NewWeighted(maxPending),
	}
	r.cond = sync.NewCond(&r.mu)
	return r
}

// Start launches the reaper's background loop under an errgroup whose
// result Wait returns. The loop itself always returns nil, once Stop
// has been called and the final drain is done.
func (r *Reaper) Start(ctx context.Context) {
	r.group, _ = errgroup.WithContext(ctx)
	r.group.Go(func() error {
		r.run()
		return nil
	})
}

// Wait blocks until the reaper's background loop has exited (after
// Stop has been called and the final drain completes).
func (r *Reaper) Wait() error {
	if r.group == nil {
		return nil
	}
	return r.group.Wait()
}

// Submit enqueues task. Safe to call from any producer thread.
func (r *Reaper) Submit(ctx context.Context, task Task) error {
	if err := r.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	r.mu.Lock()
	wasEmpty := len(r.pending) == 0
	r.pending = append(r.pending, task)
	r.mu.Unlock()
	if wasEmpty {
		r.cond.Signal()
	}
	return nil
}

// Stop signals the background loop to drain whatever is pending one
// more time and exit. It does not itself wait for that to happen; use
// Wait for that.
func (r *Reaper) Stop() {
	r.mu.Lock()
	r.stopping = true
	r.mu.Unlock()
	r.cond.Broadcast()
}

func (r *Reaper) run() {
	for {
		r.mu.Lock()
		for len(r.pending) == 0 && !r.stopping {
			r.cond.Wait()
		}
		if len(r.pending) == 0 && r.stopping {
			r.mu.Unlock()
			return
		}
		batch := r.pending
		r.pending = nil
		r.mu.Unlock()

		r.flush(batch)
	}
}

// flush submits a Stop for every task in the batch, attaching a
// completion callback only to the last one, then waits for that
// single callback before freeing every task's resources. Batching
// amortizes the one-tick wait across the whole batch instead of
// paying it once per destruction.
func (r *Reaper) flush(batch []Task) {
	fence := make(chan struct{})
	for i, task := range batch {
		task.Cmd.SetStop(task.Stream)
		if i == len(batch)-1 {
			task.Cmd.WithCallback(func(any) { close(fence) }, nil)
		}
		r.client.Submit(task.Cmd)
	}
	<-fence

	r.logger.Debug("reaper flushed batch", zap.Int("size", len(batch)))
	for _, task := range batch {
		if task.Store != nil {
			task.Store.Release()
		}
		r.sem.Release(1)
	}
}
