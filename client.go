package mixer

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// Client is a per-producer handle. It owns a private command pool and
// recycles commands exhausted by the mixer back from the engine's
// exhaust stack. A Client is not safe for concurrent use by more than
// one producer goroutine at a time — that's the whole point: batching
// pool refills through a single owner is what makes Alloc race-free
// without a general MPSC pop.
type Client struct {
	ID uuid.UUID

	engine *MixerEngine
	pool   commandFIFO

	// AllocCount/RecycleCount are plain counters exposed for tests
	// and telemetry; they are only ever touched by this Client's
	// owning goroutine, matching the single-owner discipline of
	// the pool itself, but are atomics so a logger on another
	// goroutine can read them without racing.
	AllocCount   atomic.Uint64
	RecycleCount atomic.Uint64
}

// newClient is called by MixerEngine.NewClient.
func newClient(engine *MixerEngine) *Client {
	return &Client{ID: uuid.New(), engine: engine}
}

// Alloc returns an idle Command to the producer, refilling the
// private pool from the engine's exhaust stack (drained and reversed
// into FIFO order) if the pool is empty, and allocating a fresh
// Command only if the exhaust stack had nothing to offer either.
func (c *Client) Alloc() *Command {
	if c.pool.empty() {
		drained := c.engine.exhaust.drain()
		if drained != nil {
			tail := drained // pre-reversal head becomes the new tail
			head := reverseChain(drained)
			c.pool.pushBack(head, tail)
		}
	}
	cmd := c.pool.pop()
	if cmd == nil {
		cmd = &Command{}
		c.AllocCount.Add(1)
	} else {
		c.RecycleCount.Add(1)
	}
	cmd.reset()
	return cmd
}

// Submit pushes cmd onto the engine's intake stack and relinquishes
// ownership of it: after Submit returns, the producer must not touch
// cmd again.
func (c *Client) Submit(cmd *Command) {
	c.engine.intake.push(cmd)
}

// Release frees every command still sitting in this client's private
// pool. Called when the owning producer (a PlaybackObject, the
// Reaper) is torn down.
func (c *Client) Release() {
	for !c.pool.empty() {
		c.pool.pop()
	}
}
