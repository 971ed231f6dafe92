package mixer

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandStackDrainIsFIFOOnReverse(t *testing.T) {
	var stack commandStack
	a, b, c := &Command{}, &Command{}, &Command{}
	stack.push(a)
	stack.push(b)
	stack.push(c)

	drained := stack.drain()
	require.NotNil(t, drained)
	head := reverseChain(drained)

	var order []*Command
	for cmd := head; cmd != nil; cmd = cmd.next {
		order = append(order, cmd)
	}
	assert.Equal(t, []*Command{a, b, c}, order, "reversed drain must preserve submission order")
}

func TestCommandStackDrainEmpty(t *testing.T) {
	var stack commandStack
	assert.Nil(t, stack.drain())
}

func TestCommandStackConcurrentPushPreservesPerProducerOrder(t *testing.T) {
	var stack commandStack
	const perProducer = 200
	const producers = 8

	var wg sync.WaitGroup
	results := make([][]*Command, producers)
	for p := 0; p < producers; p++ {
		cmds := make([]*Command, perProducer)
		for i := range cmds {
			cmds[i] = &Command{}
		}
		results[p] = cmds
		wg.Add(1)
		go func(cmds []*Command) {
			defer wg.Done()
			for _, cmd := range cmds {
				stack.push(cmd)
			}
		}(cmds)
	}
	wg.Wait()

	drained := stack.drain()
	head := reverseChain(drained)

	position := make(map[*Command]int)
	i := 0
	for cmd := head; cmd != nil; cmd = cmd.next {
		position[cmd] = i
		i++
	}
	assert.Equal(t, perProducer*producers, i)

	for _, cmds := range results {
		for j := 1; j < len(cmds); j++ {
			assert.Less(t, position[cmds[j-1]], position[cmds[j]], "a single producer's submissions must stay ordered")
		}
	}
}

func TestCommandFIFOPushPop(t *testing.T) {
	var f commandFIFO
	assert.True(t, f.empty())
	a, b := &Command{}, &Command{}
	a.next = b
	f.pushBack(a, b)
	assert.False(t, f.empty())

	got := f.pop()
	assert.Same(t, a, got)
	got = f.pop()
	assert.Same(t, b, got)
	assert.True(t, f.empty())
	assert.Nil(t, f.pop())
}
