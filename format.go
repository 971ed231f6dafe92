package mixer

// Format describes interleaved PCM: a sample rate, a channel count and
// a bit depth. NativeFormat is the mixer's fixed rendering format;
// everything that isn't NativeFormat is a client format that must pass
// through an external Converter (see the playback package) before it
// reaches a SampleStore.
type Format struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
}

// NativeFormat is the mixer-native format: interleaved stereo 16-bit
// signed PCM at 44100 Hz. It never changes at runtime.
var NativeFormat = Format{
	SampleRate:    44100,
	Channels:      2,
	BitsPerSample: 16,
}

// BytesPerFrame returns the number of bytes one frame occupies in f.
func (f Format) BytesPerFrame() int {
	return f.Channels * (f.BitsPerSample / 8)
}
