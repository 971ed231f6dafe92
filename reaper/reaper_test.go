package reaper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hypersonik/mixer"
)

func newStream(t *testing.T) *mixer.Stream {
	t.Helper()
	store, err := mixer.NewSampleStore(2)
	require.NoError(t, err)
	return mixer.NewStream(store)
}

// Scenario 6 from spec.md §8: 3 terminations submitted to a running
// reaper are all acknowledged by the mixer, and every task's store is
// released before Wait returns. How the tasks split into batches
// depends on timing.
func TestReaperBatchFreesAll(t *testing.T) {
	eng := mixer.NewEngine(4)
	producer := eng.NewClient()
	reaperClient := eng.NewClient()
	r := New(reaperClient, 8, nil)
	out := make([]int16, eng.NFrames()*2)

	streams := make([]*mixer.Stream, 3)
	stores := make([]*mixer.SampleStore, 3)
	for i := range streams {
		store, err := mixer.NewSampleStore(2)
		require.NoError(t, err)
		stores[i] = store
		streams[i] = mixer.NewStream(store)

		play := producer.Alloc()
		play.SetPlay(streams[i], false)
		producer.Submit(play)
	}
	eng.Tick(out) // put every stream into the active list first

	r.Start(context.Background())
	for i := range streams {
		err := r.Submit(context.Background(), Task{
			Stream: streams[i],
			Store:  stores[i],
			Cmd:    producer.Alloc(),
		})
		require.NoError(t, err)
	}

	// Keep the mixer ticking on a background goroutine so the
	// reaper's batched Stop commands eventually get acknowledged,
	// however many ticks that takes.
	stopTicking := make(chan struct{})
	tickDone := make(chan struct{})
	go func() {
		defer close(tickDone)
		ticker := time.NewTicker(time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				eng.Tick(out)
			case <-stopTicking:
				return
			}
		}
	}()

	waitErr := make(chan error, 1)
	go func() {
		r.Stop()
		waitErr <- r.Wait()
	}()

	select {
	case err := <-waitErr:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("reaper did not finish within timeout")
	}
	close(stopTicking)
	<-tickDone

	for _, store := range stores {
		assert.Nil(t, store.SamplesRO(), "every task's store should be released")
	}
}

func TestReaperSubmitBackpressure(t *testing.T) {
	eng := mixer.NewEngine(4)
	client := eng.NewClient()
	r := New(client, 1, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	s := newStream(t)
	require.NoError(t, r.Submit(context.Background(), Task{Stream: s, Cmd: client.Alloc()}))

	s2 := newStream(t)
	err := r.Submit(ctx, Task{Stream: s2, Cmd: client.Alloc()})
	assert.ErrorIs(t, err, context.DeadlineExceeded, "second submit should block on the bounded semaphore until the reaper drains")
}
