package mixer

// Verb tags the action a Command carries.
type Verb int

const (
	// Play starts (or restarts) a Stream: it implicitly rewinds.
	Play Verb = iota
	// Stop removes a Stream from the mixer's active list.
	Stop
	// SetVolume writes both of a Stream's channel gains.
	SetVolume
)

// Callback is invoked on the mixer thread once a Command's verb has
// taken effect, immediately before the Command is recycled. It must
// be non-blocking and allocation-free: it runs inline on the realtime
// thread. Anything that needs to do real work (signal a waiter,
// enqueue to a background goroutine) must do so without blocking.
type Callback func(ctx any)

// Command is a tagged message addressed to a Stream, pooled for reuse
// by a Client. verb, stream, loop and the volumes are the payload;
// callback/ctx are optional. next is the intrusive link used by every
// structure a Command can be a member of (a Client's private pool, the
// mixer's chamber FIFO, or a shared MPSC stack) — a Command is only
// ever in one of those at a time, so one link field suffices.
//
// While a producer holds a Command (from Client.Alloc until Submit),
// next points to the Command itself; this is just a debug invariant
// (detectable corruption), not something the pool/queue logic
// depends on.
type Command struct {
	verb   Verb
	stream *Stream
	loop   bool
	vol0   uint16
	vol1   uint16

	callback Callback
	ctx      any

	next *Command
}

// reset restores a Command to its idle state before handing it back
// to a producer from Client.Alloc.
func (c *Command) reset() {
	c.verb = Play
	c.stream = nil
	c.loop = false
	c.vol0 = unityGain
	c.vol1 = unityGain
	c.callback = nil
	c.ctx = nil
	c.next = c
}

// SetPlay configures the Command as a Play verb targeting stream.
func (c *Command) SetPlay(stream *Stream, loop bool) {
	c.verb = Play
	c.stream = stream
	c.loop = loop
}

// SetStop configures the Command as a Stop verb targeting stream.
func (c *Command) SetStop(stream *Stream) {
	c.verb = Stop
	c.stream = stream
}

// SetVolume configures the Command as a SetVolume verb targeting
// stream with the given per-channel fixed-point gains.
func (c *Command) SetVolume(stream *Stream, vol0, vol1 uint16) {
	c.verb = SetVolume
	c.stream = stream
	c.vol0 = vol0
	c.vol1 = vol1
}

// WithCallback attaches a completion callback and opaque context,
// invoked on the mixer thread after the command's verb has taken
// effect and before it is recycled.
func (c *Command) WithCallback(cb Callback, ctx any) *Command {
	c.callback = cb
	c.ctx = ctx
	return c
}
