package host

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hypersonik/mixer"
)

// Host owns the realtime thread. It negotiates a fixed buffer size
// with an Endpoint, pre-rolls one buffer of silence, starts the
// endpoint, then runs the render loop until Stop is called.
type Host struct {
	endpoint Endpoint
	engine   *mixer.MixerEngine
	logger   *zap.Logger

	cancel context.CancelFunc
	group  *errgroup.Group
}

// New returns a Host that will drive engine's Tick once per buffer
// endpoint signals ready. engine's NFrames() is the frame count the
// host negotiates for; a logger of nil is treated as a no-op sink.
func New(endpoint Endpoint, engine *mixer.MixerEngine, logger *zap.Logger) *Host {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Host{endpoint: endpoint, engine: engine, logger: logger}
}

// Start negotiates with the endpoint, pre-rolls silence, starts the
// endpoint and launches the render loop. It returns once the loop has
// confirmed it started, or immediately with an error if the loop (or
// negotiation) failed before that point.
func (h *Host) Start(parent context.Context) error {
	got, err := negotiateWithRetry(parent, h.endpoint, h.engine.NFrames())
	if err != nil {
		return errors.Wrap(err, "host: negotiate")
	}
	if got != h.engine.NFrames() {
		return fmt.Errorf("%w: endpoint granted %d frames, engine expects %d", mixer.ErrEndpointFailure, got, h.engine.NFrames())
	}
	if err := preroll(h.endpoint); err != nil {
		return errors.Wrap(err, "host: preroll")
	}
	if err := h.endpoint.Start(parent); err != nil {
		return errors.Wrap(err, "host: endpoint start")
	}

	ctx, cancel := context.WithCancel(parent)
	h.cancel = cancel
	group, gctx := errgroup.WithContext(ctx)
	h.group = group

	started := make(chan struct{})
	runErr := make(chan error, 1)
	group.Go(func() error {
		close(started)
		err := h.run(gctx)
		runErr <- err
		return err
	})

	select {
	case <-started:
		h.logger.Info("host started", zap.Int("frames", h.engine.NFrames()))
		return nil
	case err := <-runErr:
		return errors.Wrap(err, "host: realtime thread exited before starting")
	}
}

// run is the realtime thread's main loop: wait on buffer-ready or
// shutdown, render exactly one tick per buffer-ready.
func (h *Host) run(ctx context.Context) error {
	ready := h.endpoint.BufferReady()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ready:
			buf, err := h.endpoint.GetBuffer()
			if err != nil {
				return errors.Wrap(err, "host: get buffer")
			}
			h.engine.Tick(buf)
			if err := h.endpoint.ReleaseBuffer(buf); err != nil {
				return errors.Wrap(err, "host: release buffer")
			}
		}
	}
}

// Stop signals the realtime thread to exit and waits for it,
// unbounded — the render loop is expected to observe the stop signal
// within one tick period; if the endpoint has stalled the process is
// already broken and there is nothing better to do than wait.
func (h *Host) Stop() error {
	if h.cancel == nil {
		return nil
	}
	h.cancel()
	err := h.group.Wait()
	if stopErr := h.endpoint.Stop(); err == nil {
		err = stopErr
	}
	return err
}
