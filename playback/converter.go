package playback

import "github.com/hypersonik/mixer"

// Converter is the boundary contract for client-format to mixer-native
// format conversion, invoked synchronously on a producer thread during
// Unlock. A real implementation resamples/rechannels/rebits a staging
// buffer in srcFormat into the destination SampleStore span in
// mixer.NativeFormat. Two-span lock (wraparound) conversion is out of
// scope: an Object always locks a single contiguous span.
type Converter interface {
	// Convert writes dst (mixer.NativeFormat) from src (srcFormat) and
	// returns the number of destination bytes written.
	Convert(srcFormat, dstFormat mixer.Format, src, dst []byte) (int, error)
}
