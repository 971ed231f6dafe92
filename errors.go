package mixer

import "errors"

// Sentinel errors returned by producer-visible operations. Realtime
// mixer operations (Render, Tick) never return errors: a failure there
// is either unreachable (checked by invariant, see panics in engine.go)
// or logged and suppressed by the caller.
var (
	// ErrInvalidArg marks malformed parameters: millibels out of
	// range, a non-positive byte count.
	ErrInvalidArg = errors.New("mixer: invalid argument")
	// ErrResourceExhausted marks an allocation failure.
	ErrResourceExhausted = errors.New("mixer: resource exhausted")
	// ErrUnsupported marks API surface the mixer does not
	// implement (write-cursor locks) and SampleStore sizes that
	// are not a positive, even sample count.
	ErrUnsupported = errors.New("mixer: unsupported")
	// ErrEndpointFailure marks a fault reported by the audio
	// endpoint during setup or render.
	ErrEndpointFailure = errors.New("mixer: endpoint failure")
)
