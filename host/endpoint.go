// Package host owns the realtime thread: it negotiates a fixed-size
// event-driven output buffer with an audio endpoint and invokes the
// MixerEngine once per endpoint wake-up. The endpoint itself is an
// external collaborator, out of scope per spec.md §6 — this package
// only depends on the Endpoint boundary contract below, never on a
// concrete driver.
package host

import (
	"context"
	"errors"
)

// ErrBufferUnaligned is returned by Endpoint.Negotiate when the
// requested buffer size is not one the endpoint can honor; Host
// re-queries the endpoint's preferred period and re-negotiates once.
var ErrBufferUnaligned = errors.New("host: requested buffer size not aligned")

// Endpoint is the boundary contract for an OS audio output: an
// event-driven exclusive-mode buffer source. A real implementation
// (WASAPI, CoreAudio, ALSA) signals BufferReady when a buffer of
// exactly the negotiated frame count is available; GetBuffer/
// ReleaseBuffer hand that buffer to the host and back.
type Endpoint interface {
	// Negotiate requests a buffer of wantFrames stereo frames in
	// mixer.NativeFormat. It returns the frame count the endpoint
	// actually granted, or ErrBufferUnaligned if wantFrames can't
	// be honored at all (the caller should call PreferredPeriod and
	// retry once).
	Negotiate(ctx context.Context, wantFrames int) (gotFrames int, err error)
	// PreferredPeriod returns the endpoint's preferred frame count,
	// used to re-negotiate after ErrBufferUnaligned.
	PreferredPeriod(ctx context.Context) (frames int, err error)
	// Start begins delivering BufferReady events.
	Start(ctx context.Context) error
	// Stop halts the endpoint; BufferReady must not fire again
	// afterward.
	Stop() error
	// BufferReady fires once per buffer the endpoint wants filled.
	BufferReady() <-chan struct{}
	// GetBuffer returns the next output buffer to fill: exactly
	// the negotiated frame count, interleaved stereo int16.
	GetBuffer() ([]int16, error)
	// ReleaseBuffer hands a filled buffer back to the endpoint.
	ReleaseBuffer(buf []int16) error
}

// negotiateWithRetry implements the §4.6 handshake: try the wanted
// frame count, and on ErrBufferUnaligned re-query the endpoint's
// preferred period and retry exactly once.
func negotiateWithRetry(ctx context.Context, ep Endpoint, wantFrames int) (int, error) {
	got, err := ep.Negotiate(ctx, wantFrames)
	if err == nil {
		return got, nil
	}
	if !errors.Is(err, ErrBufferUnaligned) {
		return 0, err
	}
	preferred, perr := ep.PreferredPeriod(ctx)
	if perr != nil {
		return 0, perr
	}
	return ep.Negotiate(ctx, preferred)
}

// preroll fills one buffer of silence, matching the real endpoint's
// pre-roll requirement before Start.
func preroll(ep Endpoint) error {
	buf, err := ep.GetBuffer()
	if err != nil {
		return err
	}
	for i := range buf {
		buf[i] = 0
	}
	return ep.ReleaseBuffer(buf)
}
