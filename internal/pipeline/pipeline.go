package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"sync/atomic"
	"time"

	"vid2pdf/internal/document"
	"vid2pdf/internal/frames"
	"vid2pdf/internal/logging"
	"vid2pdf/internal/media"
	"vid2pdf/internal/memory"
	"vid2pdf/internal/metrics"
	"vid2pdf/internal/scratch"
	"vid2pdf/internal/video"
)

// ErrNoKeyframes reports that the source produced no frames at all.
var ErrNoKeyframes = errors.New("no keyframes produced")

// FrameSource is an open frame stream that must be closed.
type FrameSource interface {
	frames.Stream
	Close() error
}

// Decoder probes and opens source videos.
type Decoder interface {
	Probe(ctx context.Context, path string) (*video.Info, error)
	Open(ctx context.Context, path string, info *video.Info) (FrameSource, error)
}

// WriterFactory creates the document writer for one run.
type WriterFactory func(pageWidth, pageHeight float64, creator string) document.Writer

// Options configures a Pipeline.
type Options struct {
	Diff       int
	Background int

	PageWidth   int
	PageHeight  int
	JPEGQuality int
	UseVips     bool
	// Workers is passed to document.Config; zero stages strips one at a time.
	Workers int

	Output     string
	Preview    string
	ScratchDir string
	Creator    string

	// NewWriter defaults to a PDF writer.
	NewWriter WriterFactory

	// Memory is optional. When set, the pipeline relieves heap pressure
	// between frames and checks the frame budget against its limit.
	Memory *memory.Monitor
}

// Result summarises a finished run.
type Result struct {
	Info        video.Info
	Frames      int
	Keyframes   int
	RowsTrimmed int
	Pages       []document.Page
	Output      string
	Preview     string
	Duration    time.Duration
}

// Strips returns the number of strips placed across all pages.
func (r *Result) Strips() int {
	n := 0
	for _, p := range r.Pages {
		n += len(p.Placements)
	}
	return n
}

// Pipeline converts a video into a paged document.
type Pipeline struct {
	dec  Decoder
	opts Options

	frames    atomic.Int64
	keyframes atomic.Int64
	strips    atomic.Int64
}

// New creates a Pipeline.
func New(dec Decoder, opts Options) *Pipeline {
	if opts.NewWriter == nil {
		opts.NewWriter = func(w, h float64, creator string) document.Writer {
			return document.NewPDFWriter(w, h, creator)
		}
	}
	if opts.JPEGQuality <= 0 {
		opts.JPEGQuality = document.DefaultJPEGQuality
	}
	return &Pipeline{dec: dec, opts: opts}
}

// Progress implements metrics.ProgressProvider. It is safe to call from
// another goroutine while Run is in progress.
func (p *Pipeline) Progress() metrics.Progress {
	return metrics.Progress{
		Frames:    int(p.frames.Load()),
		Keyframes: int(p.keyframes.Load()),
		Strips:    int(p.strips.Load()),
	}
}

// Run converts the video at input. Cancelling ctx stops decoding and strip
// staging; scratch storage is released either way.
func (p *Pipeline) Run(ctx context.Context, input string) (res *Result, err error) {
	start := time.Now()
	defer func() {
		metrics.RunsTotal.WithLabelValues(Status(err)).Inc()
		metrics.RunDuration.Observe(time.Since(start).Seconds())
	}()

	p.frames.Store(0)
	p.keyframes.Store(0)
	p.strips.Store(0)

	stageStart := time.Now()
	info, err := p.dec.Probe(ctx, input)
	observeStage(metrics.StageProbe, stageStart)
	if err != nil {
		return nil, err
	}
	logging.Info("Source %s: %dx%d %s, %.1fs", input, info.Width, info.Height, info.Codec, info.Duration)

	var limit int64
	if p.opts.Memory != nil {
		limit = p.opts.Memory.Limit()
	}
	memory.CheckFrameBudget(info.Width, info.Height, limit)

	strips, sampled, err := p.extract(ctx, input, info)
	res = &Result{
		Info:        *info,
		Frames:      sampled.frames,
		Keyframes:   sampled.keyframes,
		RowsTrimmed: sampled.rowsTrimmed,
		Output:      p.opts.Output,
	}
	if err != nil {
		return nil, err
	}
	if len(strips) == 0 {
		return nil, fmt.Errorf("%w: %s yielded %d frames", ErrNoKeyframes, input, sampled.frames)
	}

	stageStart = time.Now()
	res.Pages, err = p.compose(ctx, strips)
	observeStage(metrics.StageCompose, stageStart)
	if err != nil {
		return nil, err
	}
	p.strips.Store(int64(len(strips)))
	metrics.StripsPlacedTotal.Add(float64(len(strips)))
	metrics.PagesWrittenTotal.Add(float64(len(res.Pages)))

	if p.opts.Preview != "" {
		stageStart = time.Now()
		err = media.SaveContactSheet(strips, p.opts.Preview)
		observeStage(metrics.StagePreview, stageStart)
		if err != nil {
			return nil, fmt.Errorf("preview: %w", err)
		}
		res.Preview = p.opts.Preview
		if dims, derr := media.GetImageDimensions(p.opts.Preview); derr != nil {
			logging.Warn("Preview written but could not be read back: %v", derr)
		} else {
			logging.Info("Wrote %dx%d preview contact sheet to %s", dims.Width, dims.Height, p.opts.Preview)
		}
	}

	if p.opts.Memory != nil && p.opts.Memory.Limit() > 0 {
		heap, lim, usage := p.opts.Memory.GetStats()
		logging.Debug("Heap after run: %s of %s (%.0f%%)", memory.FormatBytes(heap), memory.FormatBytes(lim), usage*100)
	}

	res.Duration = time.Since(start)
	return res, nil
}

type sampleCounts struct {
	frames      int
	keyframes   int
	rowsTrimmed int
}

// extract runs the sampler over the decoded frames and turns every keyframe
// into a page-width strip.
func (p *Pipeline) extract(ctx context.Context, input string, info *video.Info) ([]*image.Gray, sampleCounts, error) {
	var counts sampleCounts

	src, err := p.dec.Open(ctx, input, info)
	if err != nil {
		return nil, counts, err
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			logging.Warn("closing frame stream for %s: %v", input, cerr)
		}
	}()

	sampler := frames.NewSampler(&countingStream{src: src, n: &p.frames}, info.Width, info.Height, p.opts.Diff)
	thumb := media.NewThumbnailer(p.opts.PageWidth, p.opts.UseVips)
	logging.Debug("Fitting strips into a %dx%d box", thumb.Box(), thumb.Box())

	var strips []*image.Gray
	for {
		if err := ctx.Err(); err != nil {
			return nil, counts, err
		}

		stageStart := time.Now()
		kf, err := sampler.Next()
		observeStage(metrics.StageSample, stageStart)
		counts.frames = sampler.Stats().FramesRead
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, counts, err
		}
		counts.keyframes++
		p.keyframes.Add(1)
		metrics.KeyframesTotal.Inc()

		stageStart = time.Now()
		trimmed, removed := media.TrimBackground(media.Luminance(kf), p.opts.Background)
		observeStage(metrics.StageTrim, stageStart)
		counts.rowsTrimmed += removed
		metrics.RowsTrimmedTotal.Add(float64(removed))

		stageStart = time.Now()
		strip, err := thumb.Fit(trimmed)
		observeStage(metrics.StageResize, stageStart)
		if err != nil {
			return nil, counts, fmt.Errorf("keyframe %d (frame %d): %w", counts.keyframes, counts.frames, err)
		}

		logging.Debug("Keyframe %d: %d background rows removed, strip %dx%d",
			counts.keyframes, removed, strip.Bounds().Dx(), strip.Bounds().Dy())
		strips = append(strips, strip)

		if p.opts.Memory != nil {
			p.opts.Memory.Relieve()
		}
	}

	logging.Info("Sampled %d frames, kept %d keyframes, trimmed %d background rows",
		counts.frames, counts.keyframes, counts.rowsTrimmed)
	return strips, counts, nil
}

func (p *Pipeline) compose(ctx context.Context, strips []*image.Gray) ([]document.Page, error) {
	imgs := make([]image.Image, len(strips))
	for i, s := range strips {
		imgs[i] = s
	}

	w := p.opts.NewWriter(float64(p.opts.PageWidth), float64(p.opts.PageHeight), p.opts.Creator)
	return document.Compose(ctx, w, imgs, document.Config{
		ScratchRoot:   p.opts.ScratchDir,
		MaxPageHeight: p.opts.PageHeight,
		JPEGQuality:   p.opts.JPEGQuality,
		Workers:       p.opts.Workers,
	}, p.opts.Output)
}

// Status maps a Run error to its outcome label.
func Status(err error) string {
	switch {
	case err == nil:
		return metrics.StatusSuccess
	case errors.Is(err, ErrNoKeyframes):
		return metrics.StatusNoKeyframes
	case errors.Is(err, media.ErrDegenerateStrip):
		return metrics.StatusDegenerateStrip
	case errors.Is(err, video.ErrInputUnreadable):
		return metrics.StatusInputUnreadable
	case errors.Is(err, scratch.ErrScratchIO):
		return metrics.StatusScratchIO
	case errors.Is(err, document.ErrWriterFailure):
		return metrics.StatusWriterFailure
	default:
		return metrics.StatusError
	}
}

func observeStage(stage string, start time.Time) {
	metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// countingStream counts frames as they are decoded.
type countingStream struct {
	src frames.Stream
	n   *atomic.Int64
}

func (c *countingStream) Next() (*image.NRGBA, error) {
	f, err := c.src.Next()
	if err == nil {
		c.n.Add(1)
		metrics.FramesDecodedTotal.Inc()
	}
	return f, err
}
