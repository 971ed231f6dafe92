package mixer

// MixerEngine is the realtime kernel: drains intake, updates the
// active-stream list, renders mixed audio into a 32-bit accumulator of
// fixed frame count, saturates to 16 bits, fires completion callbacks,
// and returns consumed commands to the exhaust stack. Tick is the only
// entry point that runs on the realtime thread; it performs no
// allocation and no blocking.
type MixerEngine struct {
	nFrames int

	intake  commandStack
	exhaust commandStack

	active activeList
	accum  []int32
}

// NewEngine returns an engine that renders nFrames stereo frames per
// Tick. nFrames is fixed for the engine's lifetime: it is the buffer
// size negotiated once with the audio endpoint.
func NewEngine(nFrames int) *MixerEngine {
	return &MixerEngine{
		nFrames: nFrames,
		accum:   make([]int32, nFrames*2),
	}
}

// NFrames returns the fixed per-tick frame count.
func (e *MixerEngine) NFrames() int {
	return e.nFrames
}

// NewClient allocates a Client bound to this engine. Safe to call
// from any thread; the returned Client is not itself safe for
// concurrent use by more than one goroutine.
func (e *MixerEngine) NewClient() *Client {
	return newClient(e)
}

// Tick performs one mixer invocation: intake, render, exhaust. out
// must have length NFrames()*2; it receives mixer-native
// interleaved stereo 16-bit samples.
func (e *MixerEngine) Tick(out []int16) {
	if len(out) != e.nFrames*2 {
		panic("mixer: output buffer does not match negotiated frame count")
	}

	chamberHead, chamberTail := e.intakeDrain()
	e.applyChamber(chamberHead)
	e.render(out)
	e.exhaustChamber(chamberHead, chamberTail)
}

// intakeDrain atomically drains the intake stack and reverses it into
// submission (FIFO) order, returning both ends of the resulting chain
// so the caller can splice it onto the exhaust stack without
// re-walking it.
func (e *MixerEngine) intakeDrain() (head, tail *Command) {
	drained := e.intake.drain()
	if drained == nil {
		return nil, nil
	}
	tail = drained // the pre-reversal head is the post-reversal tail
	head = reverseChain(drained)
	return head, tail
}

// applyChamber walks the chamber in submission order, mutating Stream
// state and active-list membership. An unrecognized verb indicates
// queue/command corruption and is a fatal invariant violation.
func (e *MixerEngine) applyChamber(cmd *Command) {
	for ; cmd != nil; cmd = cmd.next {
		switch cmd.verb {
		case Play:
			cmd.stream.SetLooping(cmd.loop)
			cmd.stream.Rewind()
			e.active.add(cmd.stream)
		case Stop:
			e.active.remove(cmd.stream)
		case SetVolume:
			cmd.stream.setVolume(0, cmd.vol0)
			cmd.stream.setVolume(1, cmd.vol1)
		default:
			panic("mixer: invariant violation: unknown command verb")
		}
	}
}

// render zeroes the accumulator, additively mixes every active stream
// into it, removes any stream that finished during this tick, and
// saturates the result into out.
func (e *MixerEngine) render(out []int16) {
	accum := e.accum
	for i := range accum {
		accum[i] = 0
	}

	for s := e.active.head; s != nil; {
		next := s.next
		s.Render(accum)
		if s.IsFinished() {
			e.active.remove(s)
		}
		s = next
	}

	for i, v := range accum {
		out[i] = saturate(v)
	}
}

// saturate converts a 32-bit accumulator sample to 16-bit output:
// shift right 8 bits (undoing the fixed-point gain multiply), then
// clamp to the int16 range. Symmetric; no DC offset removal.
func saturate(v int32) int16 {
	v >>= 8
	switch {
	case v > 32767:
		return 32767
	case v < -32768:
		return -32768
	default:
		return int16(v)
	}
}

// exhaustChamber invokes each chamber command's completion callback
// (if any) in submission order, then splices the whole chamber chain
// onto the exhaust stack for clients to reclaim.
func (e *MixerEngine) exhaustChamber(head, tail *Command) {
	if head == nil {
		return
	}
	for cmd := head; cmd != nil; cmd = cmd.next {
		if cmd.callback != nil {
			cmd.callback(cmd.ctx)
		}
	}
	e.exhaust.pushChain(head, tail)
}
