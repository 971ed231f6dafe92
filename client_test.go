package mixer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStream(t *testing.T) *Stream {
	t.Helper()
	store, err := NewSampleStore(2)
	require.NoError(t, err)
	return NewStream(store)
}

func TestClientAllocRecyclesViaExhaust(t *testing.T) {
	eng := NewEngine(4)
	client := eng.NewClient()
	s := testStream(t)

	cmd := client.Alloc()
	assert.EqualValues(t, 1, client.AllocCount.Load())
	cmd.SetStop(s)
	client.Submit(cmd)

	// Drive the engine so the submitted command lands in the
	// exhaust stack.
	out := make([]int16, eng.NFrames()*2)
	eng.Tick(out)

	cmd2 := client.Alloc()
	assert.EqualValues(t, 1, client.RecycleCount.Load(), "second alloc should recycle the exhausted command")
	assert.EqualValues(t, unityGain, cmd2.vol0)
}

func TestClientReleaseDrainsPool(t *testing.T) {
	eng := NewEngine(4)
	client := eng.NewClient()
	s := testStream(t)

	c1 := client.Alloc()
	c1.SetStop(s)
	client.Submit(c1)
	c2 := client.Alloc()
	c2.SetStop(s)
	client.Submit(c2)

	out := make([]int16, eng.NFrames()*2)
	eng.Tick(out)

	// Pulls both recycled commands into the pool, pops one, leaves
	// one behind.
	client.Alloc()
	assert.False(t, client.pool.empty())

	client.Release()
	assert.True(t, client.pool.empty())
}
