package mixer

import "sync/atomic"

// SampleStore is an immutable-after-publish block of interleaved
// stereo 16-bit PCM samples shared by one or more Streams. It imposes
// no synchronization of its own: the creator may write freely until a
// Stream over the store has been observed by the mixer (a Play
// command has been processed), after which it is treated as
// read-only.
//
// A store may be shared by more than one PlaybackObject (see §4.7 of
// the design notes, Duplicate); refs tracks how many owners are still
// alive so the last one to go frees the backing array.
type SampleStore struct {
	samples []int16
	refs    atomic.Int32
}

// NewSampleStore allocates a store of nSamples signed 16-bit samples.
// nSamples must be even (stereo interleaved pairs) and positive.
func NewSampleStore(nSamples int) (*SampleStore, error) {
	if nSamples <= 0 || nSamples%2 != 0 {
		return nil, ErrUnsupported
	}
	s := &SampleStore{samples: make([]int16, nSamples)}
	s.refs.Store(1)
	return s, nil
}

// Len returns the sample count (not frame count).
func (s *SampleStore) Len() int {
	return len(s.samples)
}

// SamplesRW returns a writable view of the store. Callers must ensure
// no Stream referencing this store is currently in the mixer's active
// list while writing.
func (s *SampleStore) SamplesRW() []int16 {
	return s.samples
}

// SamplesRO returns a read-only view of the store, for the mixer's
// render loop.
func (s *SampleStore) SamplesRO() []int16 {
	return s.samples
}

// Retain increments the store's reference count. Called when a
// PlaybackObject duplicates another and starts sharing its store.
func (s *SampleStore) Retain() {
	s.refs.Add(1)
}

// Release decrements the reference count and frees the backing array
// once the last owner has released it. Called by the Reaper or by
// playback.Object.Destroy, in both cases only after the mixer has
// acknowledged the Stop for the Stream that refers to this store.
func (s *SampleStore) Release() {
	if s.refs.Add(-1) == 0 {
		s.samples = nil
	}
}
