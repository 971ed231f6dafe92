package mixer

import "sync/atomic"

// commandStack is the shared multi-producer/single-consumer LIFO:
// push is a CAS loop, drain atomically swaps the head with nil and
// hands the whole chain to the single consumer. No ABA protection is
// needed because the only consumer-side operation is swap-to-null:
// between a producer's load of head and its CAS, the consumer may
// have drained and the head become null, which the CAS simply fails
// and retries against.
type commandStack struct {
	head atomic.Pointer[Command]
}

// push adds cmd to the stack. Transfers ownership of cmd to the
// stack's eventual consumer.
func (q *commandStack) push(cmd *Command) {
	for {
		old := q.head.Load()
		cmd.next = old
		if q.head.CompareAndSwap(old, cmd) {
			return
		}
	}
}

// pushChain splices an already-linked chain [head..tail] onto the
// stack in one CAS loop, used by MixerEngine to return a whole
// chamber's worth of consumed commands to the exhaust stack at once.
func (q *commandStack) pushChain(head, tail *Command) {
	if head == nil {
		return
	}
	for {
		old := q.head.Load()
		tail.next = old
		if q.head.CompareAndSwap(old, head) {
			return
		}
	}
}

// drain atomically detaches the whole chain and returns its head,
// in LIFO (most-recently-pushed-first) order. Returns nil if the
// stack was empty.
func (q *commandStack) drain() *Command {
	return q.head.Swap(nil)
}

// reverseChain reverses a singly-linked chain in place, turning the
// LIFO order drain() returns into FIFO (submission) order. It returns
// the new head; the caller already knows the new tail is the chain's
// original head.
func reverseChain(head *Command) *Command {
	var prev *Command
	for head != nil {
		next := head.next
		head.next = prev
		prev = head
		head = next
	}
	return prev
}

// commandFIFO is a singly-linked FIFO owned by exactly one consumer:
// a Client's private command pool. No synchronization of any kind.
type commandFIFO struct {
	head, tail *Command
}

func (f *commandFIFO) empty() bool {
	return f.head == nil
}

// pushBack appends chain (possibly more than one node, already linked
// through next, ending in tail) to the end of the FIFO.
func (f *commandFIFO) pushBack(head, tail *Command) {
	if head == nil {
		return
	}
	if f.tail == nil {
		f.head = head
	} else {
		f.tail.next = head
	}
	f.tail = tail
}

// pop removes and returns the front Command, or nil if empty.
func (f *commandFIFO) pop() *Command {
	cmd := f.head
	if cmd == nil {
		return nil
	}
	f.head = cmd.next
	if f.head == nil {
		f.tail = nil
	}
	cmd.next = cmd
	return cmd
}
