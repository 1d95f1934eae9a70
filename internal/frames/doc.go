// Package frames selects keyframes from a uniformly sampled frame stream.
//
// A Sampler wraps a Stream and only yields frames that differ materially from
// the last frame it yielded. The first frame of a non-empty stream is always
// yielded. A later frame is yielded when the number of samples (channel
// values) that differ from the previous keyframe is strictly greater than
//
//	width * height * diffPct / 100
//
// Selection is single pass with no lookahead: a frame judged too similar is
// dropped and never becomes a comparison reference.
package frames
