// Package mixer implements a realtime software audio mixer: the
// lock-free command protocol between producer threads and a mixer
// thread, per-stream playback state, and the additive mixing kernel
// that renders a fixed-format stereo PCM stream.
//
// The package is split so that the realtime-safe core (SampleStore,
// Stream, Command, the command queues, Client and MixerEngine) has no
// dependency on anything that can allocate, block or fail on the mixer
// thread. Everything around it — negotiating with an audio endpoint,
// background teardown, the producer-facing façade — lives in the
// sibling host, reaper and playback packages.
package mixer
