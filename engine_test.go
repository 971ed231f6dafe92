package mixer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineSilenceWithNoActiveStreams(t *testing.T) {
	eng := NewEngine(4)
	out := make([]int16, 8)
	for i := range out {
		out[i] = 1234
	}
	eng.Tick(out)
	for _, v := range out {
		assert.Zero(t, v)
	}
}

// Scenario 2 from spec.md §8.
func TestEngineTwoStreamsSameStoreMix(t *testing.T) {
	eng := NewEngine(1)
	store, err := NewSampleStore(2)
	require.NoError(t, err)
	copy(store.SamplesRW(), []int16{100, 100})

	s1 := NewStream(store)
	s2 := NewStream(store)

	client := eng.NewClient()
	play1 := client.Alloc()
	play1.SetPlay(s1, false)
	client.Submit(play1)
	play2 := client.Alloc()
	play2.SetPlay(s2, false)
	client.Submit(play2)
	vol2 := client.Alloc()
	vol2.SetVolume(s2, 128, 128)
	client.Submit(vol2)

	out := make([]int16, 2)
	eng.Tick(out)
	assert.Equal(t, []int16{150, 150}, out)
}

// Scenario 3 from spec.md §8: two clients submitting concurrently are
// both observed within one tick, in per-client order.
func TestEngineTwoClientsOneTick(t *testing.T) {
	eng := NewEngine(1)
	storeA, _ := NewSampleStore(2)
	copy(storeA.SamplesRW(), []int16{50, 50})
	storeB, _ := NewSampleStore(2)
	copy(storeB.SamplesRW(), []int16{10, 10})

	s1 := NewStream(storeA)
	s2 := NewStream(storeB)

	clientA := eng.NewClient()
	play1 := clientA.Alloc()
	play1.SetPlay(s1, false)
	clientA.Submit(play1)
	vol1 := clientA.Alloc()
	vol1.SetVolume(s1, 0, 0)
	clientA.Submit(vol1)

	clientB := eng.NewClient()
	play2 := clientB.Alloc()
	play2.SetPlay(s2, false)
	clientB.Submit(play2)

	out := make([]int16, 2)
	eng.Tick(out)

	assert.EqualValues(t, 10, out[0])
	assert.EqualValues(t, 10, out[1])
	assert.EqualValues(t, 0, s1.volumes[0])
}

func TestEnginePlayThenStopSameTickNetsStop(t *testing.T) {
	eng := NewEngine(2)
	store, _ := NewSampleStore(4)
	copy(store.SamplesRW(), []int16{1, 1, 1, 1})
	s := NewStream(store)

	client := eng.NewClient()
	play := client.Alloc()
	play.SetPlay(s, false)
	client.Submit(play)
	stop := client.Alloc()
	stop.SetStop(s)
	client.Submit(stop)

	out := make([]int16, 4)
	eng.Tick(out)
	for _, v := range out {
		assert.Zero(t, v)
	}
	eng.Tick(out)
	for _, v := range out {
		assert.Zero(t, v)
	}
}

func TestEngineAddAndRemoveAreIdempotent(t *testing.T) {
	var list activeList
	store, _ := NewSampleStore(2)
	s := NewStream(store)

	list.add(s)
	list.add(s) // no-op
	assert.Same(t, s, list.head)
	assert.Same(t, s, list.tail)

	list.remove(s)
	list.remove(s) // no-op
	assert.Nil(t, list.head)
	assert.Nil(t, list.tail)
}

func TestEngineCallbackFiresExactlyOnce(t *testing.T) {
	eng := NewEngine(2)
	store, _ := NewSampleStore(2)
	s := NewStream(store)
	client := eng.NewClient()

	fired := 0
	stop := client.Alloc()
	stop.SetStop(s)
	stop.WithCallback(func(any) { fired++ }, nil)
	client.Submit(stop)

	out := make([]int16, 4)
	eng.Tick(out)
	assert.Equal(t, 1, fired)

	eng.Tick(out)
	assert.Equal(t, 1, fired, "callback must not fire again once the command is recycled")
}

func TestEngineUnknownVerbIsFatal(t *testing.T) {
	eng := NewEngine(2)
	client := eng.NewClient()
	cmd := client.Alloc()
	cmd.verb = Verb(99)
	client.Submit(cmd)

	out := make([]int16, 4)
	assert.Panics(t, func() { eng.Tick(out) })
}

// Scenario 6 from spec.md §8: batched reaper-style terminations land
// in the same tick and share one callback.
func TestEngineBatchedStopSharesOneCallback(t *testing.T) {
	eng := NewEngine(4)
	client := eng.NewClient()
	streams := make([]*Stream, 3)
	for i := range streams {
		store, _ := NewSampleStore(2)
		streams[i] = NewStream(store)
		eng.active.add(streams[i])
	}

	var cmds []*Command
	for _, s := range streams {
		c := client.Alloc()
		c.SetStop(s)
		cmds = append(cmds, c)
	}
	fired := 0
	cmds[len(cmds)-1].WithCallback(func(any) { fired++ }, nil)
	for _, c := range cmds {
		client.Submit(c)
	}

	out := make([]int16, 8)
	eng.Tick(out)

	assert.Equal(t, 1, fired)
	for _, s := range streams {
		assert.False(t, s.inActive)
	}
}
