package frames

import (
	"errors"
	"fmt"
	"image"
	"io"

	"vid2pdf/internal/logging"
)

// Stream is a finite, non-restartable sequence of decoded frames. Next
// returns io.EOF once the stream is exhausted.
type Stream interface {
	Next() (*image.NRGBA, error)
}

// Stats summarises how many frames a Sampler has consumed and kept.
type Stats struct {
	FramesRead int
	Keyframes  int
}

// Sampler yields keyframes from a Stream.
type Sampler struct {
	stream  Stream
	minDiff float64
	prev    *image.NRGBA
	stats   Stats
	done    bool
}

// NewSampler creates a Sampler for frames of the given dimensions. diffPct is
// the percentage threshold in [0,100].
func NewSampler(stream Stream, width, height, diffPct int) *Sampler {
	return &Sampler{
		stream:  stream,
		minDiff: MinDiff(width, height, diffPct),
	}
}

// MinDiff returns the number of differing samples a frame must exceed to be
// kept. It is a count, not a ratio.
func MinDiff(width, height, diffPct int) float64 {
	return float64(height) * float64(width) * float64(diffPct) / 100
}

// Next returns the next keyframe, or io.EOF when the stream has no more
// frames. Errors from the underlying stream are returned as-is.
func (s *Sampler) Next() (*image.NRGBA, error) {
	if s.done {
		return nil, io.EOF
	}

	for {
		frame, err := s.stream.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.done = true
				logging.Debug("Frame stream exhausted: %d frames read, %d keyframes", s.stats.FramesRead, s.stats.Keyframes)
				return nil, io.EOF
			}
			return nil, fmt.Errorf("read frame %d: %w", s.stats.FramesRead+1, err)
		}
		s.stats.FramesRead++

		if s.prev == nil {
			s.keep(frame)
			logging.Debug("Frame %d: first frame, kept", s.stats.FramesRead)
			return frame, nil
		}

		diff := CountDiff(s.prev, frame)
		if float64(diff) > s.minDiff {
			s.keep(frame)
			logging.Debug("Frame %d: %d samples differ (> %.0f), kept", s.stats.FramesRead, diff, s.minDiff)
			return frame, nil
		}
		logging.Debug("Frame %d: %d samples differ (<= %.0f), skipped", s.stats.FramesRead, diff, s.minDiff)
	}
}

func (s *Sampler) keep(frame *image.NRGBA) {
	s.prev = frame
	s.stats.Keyframes++
}

// Stats returns the counters accumulated so far.
func (s *Sampler) Stats() Stats {
	return s.stats
}

// CountDiff counts the samples whose values differ between a and b, using
// exact inequality per channel value. Frames of different sizes are treated
// as differing in every sample of the larger frame.
func CountDiff(a, b *image.NRGBA) int {
	ab, bb := a.Bounds(), b.Bounds()
	if ab.Dx() != bb.Dx() || ab.Dy() != bb.Dy() {
		return max(ab.Dx()*ab.Dy(), bb.Dx()*bb.Dy()) * 4
	}

	rowLen := ab.Dx() * 4
	count := 0
	for y := 0; y < ab.Dy(); y++ {
		ra := a.Pix[y*a.Stride : y*a.Stride+rowLen]
		rb := b.Pix[y*b.Stride : y*b.Stride+rowLen]
		for i := range ra {
			if ra[i] != rb[i] {
				count++
			}
		}
	}
	return count
}
