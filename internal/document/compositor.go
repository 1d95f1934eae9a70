package document

import (
	"context"
	"errors"
	"fmt"
	"image"

	"vid2pdf/internal/logging"
	"vid2pdf/internal/scratch"
	"vid2pdf/internal/workers"
)

// DefaultJPEGQuality is used for staged strips when Config leaves it unset.
const DefaultJPEGQuality = 75

// Config controls page layout and strip staging.
type Config struct {
	// ScratchRoot is the parent of the per-run scratch directory. Empty
	// means the OS temporary directory.
	ScratchRoot string

	// MaxPageHeight bounds the stacked height of strips on one page.
	MaxPageHeight int

	JPEGQuality int

	// Workers is the number of concurrent encoders Compose uses to stage
	// strips. Values below 2 stage strictly one after another.
	Workers int
}

// Placement is one strip drawn on a page.
type Placement struct {
	Index  int // position of the strip in the input sequence
	Y      int
	Width  int
	Height int
}

// Page lists the strips drawn on one page, top to bottom.
type Page struct {
	Placements []Placement
}

// Height returns the stacked height of all strips on the page.
func (p Page) Height() int {
	h := 0
	for _, pl := range p.Placements {
		h += pl.Height
	}
	return h
}

type state int

const (
	awaitingStrip state = iota
	placing
	newPage
	finalized
)

func (s state) String() string {
	switch s {
	case awaitingStrip:
		return "awaiting-strip"
	case placing:
		return "placing"
	case newPage:
		return "new-page"
	case finalized:
		return "finalized"
	default:
		return "unknown"
	}
}

var errFinalized = errors.New("compositor already finalized")

// Compositor packs strips greedily into pages of bounded height.
type Compositor struct {
	w   Writer
	dir *scratch.Dir
	cfg Config

	state      state
	pages      []Page
	pageHeight int
	placed     int
}

// NewCompositor returns a Compositor that stages strips in dir and hands them
// to w. The caller owns dir and must release it.
func NewCompositor(w Writer, dir *scratch.Dir, cfg Config) *Compositor {
	if cfg.JPEGQuality <= 0 {
		cfg.JPEGQuality = DefaultJPEGQuality
	}
	return &Compositor{w: w, dir: dir, cfg: cfg, state: awaitingStrip}
}

// Place stages strip and draws it below the previous one. See PlaceStaged.
func (c *Compositor) Place(strip image.Image) error {
	if c.state == finalized {
		return errFinalized
	}

	path, err := c.dir.WriteImage(strip, c.cfg.JPEGQuality)
	if err != nil {
		return fmt.Errorf("stage strip %d: %w", c.placed, err)
	}
	b := strip.Bounds()
	return c.PlaceStaged(path, b.Dx(), b.Dy())
}

// PlaceStaged draws the already staged image at path below the previous
// strip, starting a new page first if it would not fit. A strip taller than
// the page limit is placed alone on its own page without being split.
func (c *Compositor) PlaceStaged(path string, width, height int) error {
	if c.state == finalized {
		return errFinalized
	}

	if len(c.pages) == 0 || (c.pageHeight > 0 && c.pageHeight+height > c.cfg.MaxPageHeight) {
		c.state = newPage
		if err := c.w.AddPage(); err != nil {
			return fmt.Errorf("%w: add page %d: %w", ErrWriterFailure, len(c.pages)+1, err)
		}
		c.pages = append(c.pages, Page{})
		c.pageHeight = 0
		logging.Debug("Started page %d", len(c.pages))
	}

	c.state = placing
	if err := c.w.PlaceImage(path, 0, float64(c.pageHeight), float64(width), float64(height)); err != nil {
		return fmt.Errorf("%w: place strip %d: %w", ErrWriterFailure, c.placed, err)
	}

	page := &c.pages[len(c.pages)-1]
	page.Placements = append(page.Placements, Placement{
		Index:  c.placed,
		Y:      c.pageHeight,
		Width:  width,
		Height: height,
	})
	if height > c.cfg.MaxPageHeight {
		logging.Warn("Strip %d is %d high, taller than the page limit of %d", c.placed, height, c.cfg.MaxPageHeight)
	}

	c.pageHeight += height
	c.placed++
	c.state = awaitingStrip
	return nil
}

// Finalize writes the document to outputPath and returns the page layout.
// No more strips can be placed afterwards.
func (c *Compositor) Finalize(outputPath string) ([]Page, error) {
	if c.state == finalized {
		return nil, errFinalized
	}
	c.state = finalized

	if err := c.w.Write(outputPath); err != nil {
		return nil, fmt.Errorf("%w: write %s: %w", ErrWriterFailure, outputPath, err)
	}

	logging.Info("Wrote %d strips on %d pages to %s", c.placed, len(c.pages), outputPath)
	return c.pages, nil
}

// Compose lays out strips with w and writes the result to outputPath.
// Strips are encoded into scratch storage, concurrently when cfg.Workers > 1,
// then placed in input order. The scratch directory it allocates is removed on every return path.
func Compose(ctx context.Context, w Writer, strips []image.Image, cfg Config, outputPath string) (pages []Page, err error) {
	dir, err := scratch.Acquire(cfg.ScratchRoot)
	if err != nil {
		return nil, err
	}
	defer func() {
		if rerr := dir.Release(); rerr != nil && err == nil {
			err = rerr
		}
	}()

	c := NewCompositor(w, dir, cfg)
	paths, err := stage(ctx, dir, strips, c.cfg)
	if err != nil {
		return nil, err
	}

	for i, strip := range strips {
		b := strip.Bounds()
		if err := c.PlaceStaged(paths[i], b.Dx(), b.Dy()); err != nil {
			return nil, err
		}
	}
	return c.Finalize(outputPath)
}

// stage writes every strip to dir and returns the paths in input order.
func stage(ctx context.Context, dir *scratch.Dir, strips []image.Image, cfg Config) ([]string, error) {
	n := max(cfg.Workers, 1)

	paths := make([]string, len(strips))
	err := workers.Run(ctx, len(strips), n, func(_ context.Context, i int) error {
		path, err := dir.WriteImage(strips[i], cfg.JPEGQuality)
		if err != nil {
			return fmt.Errorf("stage strip %d: %w", i, err)
		}
		paths[i] = path
		return nil
	})
	if err != nil {
		return nil, err
	}
	logging.Debug("Staged %d strips in %s with %d workers", len(strips), dir.Path(), n)
	return paths, nil
}
