// Package playback implements the external-facing PlaybackObject
// façade over mixer.MixerEngine: client-format buffers in, Stream/
// Command plumbing underneath.
package playback

import (
	"context"
	"encoding/binary"
	"math"
	"sync"
	"sync/atomic"

	"github.com/hypersonik/mixer"
	"github.com/hypersonik/mixer/reaper"
)

// LockFlags selects the span Lock returns.
type LockFlags int

const (
	// EntireBuffer is accepted by Lock but does not change the span
	// it returns: the span is always nbytes long, starting at the
	// beginning of the buffer, with or without this flag.
	EntireBuffer LockFlags = 1 << iota
	// FromWriteCursor is not supported; Lock returns ErrUnsupported.
	FromWriteCursor
)

// PlayFlags modifies Play.
type PlayFlags int

// Looping starts playback in a loop.
const Looping PlayFlags = 1 << iota

// StatusFlags is the bitset returned by GetStatus.
type StatusFlags int

const (
	// Playing is set while the last of Play/Stop the object submitted
	// was Play; it stays set after a non-looping Stream runs out.
	Playing StatusFlags = 1 << iota
	// LoopingStatus is set while the object's Stream loops.
	LoopingStatus
)

// Object is a PlaybackObject: a client-format view over a
// mixer.SampleStore, plus the Stream/Client/reserved-Command plumbing
// needed to drive it through the mixer and tear it down without
// failing.
type Object struct {
	engine       *mixer.MixerEngine
	clientFormat mixer.Format
	converter    Converter

	store  *mixer.SampleStore
	stream *mixer.Stream
	client *mixer.Client

	owner    bool
	reserved *mixer.Command

	mu       sync.Mutex
	staging  []byte
	lockLen  int

	playIntent atomic.Bool
}

// Create allocates a fresh Object: nbytes of clientFormat determines
// the equivalent mixer-native sample count (rounded up to a whole
// number of stereo frames). converter may be nil when clientFormat
// equals mixer.NativeFormat.
func Create(engine *mixer.MixerEngine, clientFormat mixer.Format, nbytes int, converter Converter) (*Object, error) {
	nSamples, err := nativeSampleCount(clientFormat, nbytes)
	if err != nil {
		return nil, err
	}
	store, err := mixer.NewSampleStore(nSamples)
	if err != nil {
		return nil, err
	}
	return newObject(engine, clientFormat, converter, store, true), nil
}

// Duplicate returns a new Object sharing other's SampleStore (retained
// for the lifetime of whichever Object outlives the other), with its
// own Stream, Client and reserved teardown Command.
func Duplicate(other *Object) *Object {
	other.store.Retain()
	return newObject(other.engine, other.clientFormat, other.converter, other.store, false)
}

func newObject(engine *mixer.MixerEngine, clientFormat mixer.Format, converter Converter, store *mixer.SampleStore, owner bool) *Object {
	client := engine.NewClient()
	o := &Object{
		engine:       engine,
		clientFormat: clientFormat,
		converter:    converter,
		store:        store,
		stream:       mixer.NewStream(store),
		client:       client,
		owner:        owner,
		reserved:     client.Alloc(),
	}
	return o
}

// nativeSampleCount converts a client-format byte count into a mixer-
// native stereo sample count, rounded up.
func nativeSampleCount(clientFormat mixer.Format, nbytes int) (int, error) {
	if nbytes <= 0 || clientFormat.BytesPerFrame() <= 0 {
		return 0, mixer.ErrInvalidArg
	}
	frames := (nbytes + clientFormat.BytesPerFrame() - 1) / clientFormat.BytesPerFrame()
	nativeFrames := frames
	if clientFormat.SampleRate != mixer.NativeFormat.SampleRate {
		nativeFrames = (frames*mixer.NativeFormat.SampleRate + clientFormat.SampleRate - 1) / clientFormat.SampleRate
	}
	return nativeFrames * 2, nil
}

// Lock returns a writable client-format byte span of length nbytes,
// which Unlock copies to the beginning of the buffer. posBytes is
// ignored and EntireBuffer does not widen the span; FromWriteCursor
// is unimplemented and returns ErrUnsupported.
func (o *Object) Lock(posBytes, nbytes int, flags LockFlags) ([]byte, error) {
	if flags&FromWriteCursor != 0 {
		return nil, mixer.ErrUnsupported
	}
	if nbytes <= 0 {
		return nil, mixer.ErrInvalidArg
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if cap(o.staging) < nbytes {
		o.staging = make([]byte, nbytes)
	}
	o.staging = o.staging[:nbytes]
	o.lockLen = nbytes
	return o.staging, nil
}

// Unlock commits buf (as returned by Lock, or a same-length copy of
// it) into the SampleStore, converting from clientFormat to
// mixer.NativeFormat via the attached Converter if one is set.
func (o *Object) Unlock(buf []byte, nbytes int) error {
	if nbytes <= 0 || nbytes > len(buf) {
		return mixer.ErrInvalidArg
	}
	dst := o.store.SamplesRW()
	if o.converter == nil {
		return bytesToSamplesLE(dst, buf[:nbytes])
	}
	staging := make([]byte, len(dst)*2)
	n, err := o.converter.Convert(o.clientFormat, mixer.NativeFormat, buf[:nbytes], staging)
	if err != nil {
		return err
	}
	return bytesToSamplesLE(dst, staging[:n])
}

func bytesToSamplesLE(dst []int16, src []byte) error {
	n := len(src) / 2
	if n > len(dst) {
		n = len(dst)
	}
	for i := 0; i < n; i++ {
		dst[i] = int16(binary.LittleEndian.Uint16(src[i*2:]))
	}
	return nil
}

// Play submits a Play command for this object's Stream.
func (o *Object) Play(flags PlayFlags) {
	cmd := o.client.Alloc()
	cmd.SetPlay(o.stream, flags&Looping != 0)
	o.client.Submit(cmd)
	o.playIntent.Store(true)
}

// Stop submits a Stop command for this object's Stream.
func (o *Object) Stop() {
	cmd := o.client.Alloc()
	cmd.SetStop(o.stream)
	o.client.Submit(cmd)
	o.playIntent.Store(false)
}

// SetVolume sets both channel gains from a millibel attenuation in
// [-10000, 0] via 256 * 10^(mB/2000), clamped to [0, 256].
func (o *Object) SetVolume(millibels int) error {
	if millibels < -10000 || millibels > 0 {
		return mixer.ErrInvalidArg
	}
	gain := millibelsToGain(millibels)
	cmd := o.client.Alloc()
	cmd.SetVolume(o.stream, gain, gain)
	o.client.Submit(cmd)
	return nil
}

func millibelsToGain(millibels int) uint16 {
	g := 256 * math.Pow(10, float64(millibels)/2000)
	switch {
	case g < 0:
		return 0
	case g > 256:
		return 256
	default:
		return uint16(math.Round(g))
	}
}

// SetCurrentPosition honors only position 0 (rewind); nonzero values
// are silently accepted and ignored.
func (o *Object) SetCurrentPosition(pos uint32) {
	if pos == 0 {
		o.stream.Rewind()
	}
}

// GetStatus reports the object's last-commanded play intent and the
// Stream's current looping flag.
func (o *Object) GetStatus() StatusFlags {
	var flags StatusFlags
	if o.playIntent.Load() {
		flags |= Playing
	}
	if o.stream.Looping() {
		flags |= LoopingStatus
	}
	return flags
}

// GetCurrentPosition returns the play cursor in client-format bytes;
// the write cursor is always 0 (unsupported, per the Endpoint
// contract's lack of read-ahead reporting).
func (o *Object) GetCurrentPosition() (playByte, writeByte uint32) {
	frames := o.stream.PeekPosition()
	clientFrames := frames
	if o.clientFormat.SampleRate != mixer.NativeFormat.SampleRate {
		clientFrames = frames * uint32(o.clientFormat.SampleRate) / uint32(mixer.NativeFormat.SampleRate)
	}
	return clientFrames * uint32(o.clientFormat.BytesPerFrame()), 0
}

// Destroy submits the object's reserved Stop command, blocks until the
// mixer has acknowledged it (at most one tick), then frees the Stream,
// Client and, if this Object owns it, the SampleStore. This is the
// direct teardown path; DestroyViaReaper is the amortized alternative.
func (o *Object) Destroy() {
	fence := make(chan struct{})
	o.reserved.SetStop(o.stream)
	o.reserved.WithCallback(func(any) { close(fence) }, nil)
	o.client.Submit(o.reserved)
	<-fence

	o.client.Release()
	if o.owner {
		o.store.Release()
	}
}

// DestroyViaReaper hands this object's teardown to r, amortizing the
// fence wait across a batch of destructions instead of paying it here.
// The object's Client pool is released immediately since draining it
// is independent of when the Stream's Stop is acknowledged.
func (o *Object) DestroyViaReaper(ctx context.Context, r *reaper.Reaper) error {
	task := reaper.Task{Stream: o.stream, Cmd: o.reserved}
	if o.owner {
		task.Store = o.store
	}
	o.client.Release()
	return r.Submit(ctx, task)
}
