package mixer

import "sync/atomic"

// unityGain is the fixed-point value representing 0 dB attenuation.
const unityGain = 0x0100

// Stream is playback state over a SampleStore: a sample position, two
// per-channel gains, a loop flag, and the intrusive link used for
// membership in MixerEngine's active list.
//
// pos and looping are touched by more than one thread (the mixer
// thread during render, and the rewind/set-looping producer-visible
// operations) and so are atomics. volumes is mutated only on the
// mixer thread, in response to a SetVolume command, and is therefore
// a plain field.
type Stream struct {
	store *SampleStore

	pos     atomic.Uint32
	looping atomic.Bool

	volumes [2]uint16

	// active-list intrusive links; mixer-thread only, no
	// synchronization.
	prev, next *Stream
	inActive   bool
}

// NewStream allocates playback state over store. The stream starts at
// position 0, non-looping, unity gain on both channels.
func NewStream(store *SampleStore) *Stream {
	s := &Stream{store: store}
	s.volumes[0] = unityGain
	s.volumes[1] = unityGain
	return s
}

// SetLooping is safe to call from any thread.
func (s *Stream) SetLooping(looping bool) {
	s.looping.Store(looping)
}

// Looping is safe to call from any thread.
func (s *Stream) Looping() bool {
	return s.looping.Load()
}

// setVolume writes one channel's gain. Mixer-thread only: it runs in
// response to a SetVolume command while MixerEngine drains the
// intake queue.
func (s *Stream) setVolume(channel int, v uint16) {
	s.volumes[channel] = v
}

// Rewind resets the sample position to 0. Safe to call from any
// thread; the mixer thread calls it itself when it processes a Play
// command.
func (s *Stream) Rewind() {
	s.pos.Store(0)
}

// PeekPosition returns the current playback position in frames. Safe
// to call from any thread.
func (s *Stream) PeekPosition() uint32 {
	return s.pos.Load() / 2
}

// IsFinished reports whether the stream has reached the end of its
// store and is not looping. Mixer-thread only for a point-in-time
// answer that matters (any thread may call it, but only the mixer's
// view drives active-list membership).
func (s *Stream) IsFinished() bool {
	return !s.looping.Load() && s.pos.Load() >= uint32(s.store.Len())
}

// Render accumulates (not overwrites) this stream's contribution into
// dest, a 32-bit signed accumulator of even length, advancing pos.
// It returns the number of accumulator samples actually written: a
// non-looping stream that reaches the end of its store mid-buffer
// writes fewer than len(dest) and contributes nothing for the
// remainder, which the caller must have already zeroed (MixerEngine
// clears the whole accumulator once per tick, not per stream — see
// the open question in the design notes about dest_nsamples).
//
// Mixer-thread only.
func (s *Stream) Render(dest []int32) int {
	if len(dest)%2 != 0 {
		panic("mixer: odd accumulator length")
	}
	nSamples := uint32(s.store.Len())
	if nSamples == 0 {
		return 0
	}
	src := s.store.SamplesRO()
	v0 := int32(s.volumes[0])
	v1 := int32(s.volumes[1])
	pos := s.pos.Load()
	looping := s.looping.Load()

	written := 0
	want := len(dest)
	for written < want {
		avail := int(nSamples - pos)
		chunk := want - written
		if chunk > avail {
			chunk = avail
		}
		for i := 0; i < chunk; i += 2 {
			dest[written+i] += int32(src[int(pos)+i]) * v0
			dest[written+i+1] += int32(src[int(pos)+i+1]) * v1
		}
		written += chunk
		pos += uint32(chunk)
		if pos == nSamples {
			if looping {
				pos = 0
				continue
			}
			break
		}
	}
	s.pos.Store(pos)
	return written
}
