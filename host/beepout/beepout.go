// Package beepout adapts github.com/gopxl/beep's pull-based Streamer
// model to the host.Endpoint push/event contract, so mixer.MixerEngine
// can be driven through an ordinary OS speaker during development
// without a platform-specific WASAPI/CoreAudio/ALSA binding.
package beepout

import (
	"context"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/pkg/errors"

	"github.com/hypersonik/mixer"
	"github.com/hypersonik/mixer/host"
)

// sampleRate is fixed at mixer.NativeFormat's rate; beep's SampleRate
// type only affects buffer-duration math, not the samples themselves.
var sampleRate = beep.SampleRate(mixer.NativeFormat.SampleRate)

// pullTimeout bounds how long Endpoint waits inside the beep callback
// for the host to hand it a filled buffer, before falling back to
// silence. beep's own audio thread must never block indefinitely: a
// slow or wedged host degrades to silence rather than stalling audio
// output entirely.
const pullTimeout = 50 * time.Millisecond

// Endpoint is a host.Endpoint backed by the default system speaker via
// gopxl/beep. It negotiates exactly one frame count (whatever the
// engine asked for) — beep has no notion of renegotiation, so
// Negotiate never returns host.ErrBufferUnaligned.
type Endpoint struct {
	nFrames    int
	bufferSize int

	ready    chan struct{}
	fillReq  chan []int16
	fillResp chan struct{}

	started bool
}

// New returns a beepout.Endpoint. bufferSize is beep's internal
// driver/player buffer size in samples (see speaker.Init); it is
// independent of the per-tick frame count negotiated later.
func New(bufferSize int) *Endpoint {
	return &Endpoint{
		bufferSize: bufferSize,
		ready:      make(chan struct{}, 1),
		fillReq:    make(chan []int16),
		fillResp:   make(chan struct{}),
	}
}

// Negotiate always grants wantFrames: beep has no fixed hardware
// period to align to.
func (e *Endpoint) Negotiate(ctx context.Context, wantFrames int) (int, error) {
	e.nFrames = wantFrames
	return wantFrames, nil
}

// PreferredPeriod is never consulted since Negotiate never fails, but
// is implemented to satisfy host.Endpoint.
func (e *Endpoint) PreferredPeriod(ctx context.Context) (int, error) {
	return e.nFrames, nil
}

// Start initializes the speaker and begins pulling from e.
func (e *Endpoint) Start(ctx context.Context) error {
	if err := speaker.Init(sampleRate, e.bufferSize); err != nil {
		return errors.Wrap(err, "beepout: speaker init")
	}
	speaker.Play(e)
	e.started = true
	return nil
}

// Stop silences and releases the speaker. beep's speaker package does
// not support re-initialization after Close, matching a one-shot
// device lifetime.
func (e *Endpoint) Stop() error {
	if !e.started {
		return nil
	}
	speaker.Clear()
	speaker.Close()
	e.started = false
	return nil
}

// BufferReady fires once per beep pull.
func (e *Endpoint) BufferReady() <-chan struct{} {
	return e.ready
}

// GetBuffer hands the host a fresh buffer to fill; it is the same
// slice the pending beep Stream call is waiting to receive back via
// ReleaseBuffer.
func (e *Endpoint) GetBuffer() ([]int16, error) {
	return make([]int16, e.nFrames*2), nil
}

// ReleaseBuffer delivers a filled buffer to the waiting beep pull.
func (e *Endpoint) ReleaseBuffer(buf []int16) error {
	select {
	case e.fillReq <- buf:
	default:
		// No pull is currently waiting (beep timed out and already
		// fell back to silence); drop the late buffer.
		return nil
	}
	<-e.fillResp
	return nil
}

// Stream implements beep.Streamer: beep's audio thread calls this
// directly. It signals BufferReady, waits up to pullTimeout for the
// host to deliver a filled int16 buffer via ReleaseBuffer, converts it
// to beep's [][2]float64 samples, and falls back to silence on
// timeout so the audio thread never stalls.
func (e *Endpoint) Stream(samples [][2]float64) (int, bool) {
	select {
	case e.ready <- struct{}{}:
	default:
	}

	select {
	case buf := <-e.fillReq:
		n := len(buf) / 2
		if n > len(samples) {
			n = len(samples)
		}
		for i := 0; i < n; i++ {
			samples[i][0] = float64(buf[i*2]) / (1 << 15)
			samples[i][1] = float64(buf[i*2+1]) / (1 << 15)
		}
		e.fillResp <- struct{}{}
		return n, true
	case <-time.After(pullTimeout):
		for i := range samples {
			samples[i][0] = 0
			samples[i][1] = 0
		}
		return len(samples), true
	}
}

// Err always returns nil: this adapter has no decode errors of its
// own to surface, only the underlying mixer's.
func (e *Endpoint) Err() error {
	return nil
}

var _ host.Endpoint = (*Endpoint)(nil)
var _ beep.Streamer = (*Endpoint)(nil)
