package media

import (
	"fmt"
	"image"

	"vid2pdf/internal/logging"

	"github.com/disintegration/imaging"
)

// Thumbnailer fits strips into a square bounding box, preserving aspect
// ratio. Strips already inside the box are not enlarged.
type Thumbnailer struct {
	box     int
	useVips bool
}

// NewThumbnailer creates a Thumbnailer for a box of box×box pixels. When
// useVips is set and libvips is initialized, resizing goes through libvips.
func NewThumbnailer(box int, useVips bool) *Thumbnailer {
	if useVips && !IsVipsAvailable() {
		logging.Warn("Thumbnailer: libvips requested but not initialized, falling back to imaging")
		useVips = false
	}
	return &Thumbnailer{box: box, useVips: useVips}
}

// Box returns the bounding box edge length in pixels.
func (t *Thumbnailer) Box() int {
	return t.box
}

// Fit downsizes strip so both sides are at most the box size. It returns
// ErrDegenerateStrip when the input or the resized result is empty.
func (t *Thumbnailer) Fit(strip *image.Gray) (*image.Gray, error) {
	if isDegenerate(strip) {
		return nil, fmt.Errorf("%w: cannot resize %dx%d strip", ErrDegenerateStrip, strip.Bounds().Dx(), strip.Bounds().Dy())
	}

	b := strip.Bounds()
	if b.Dx() <= t.box && b.Dy() <= t.box {
		return strip, nil
	}

	var resized image.Image
	if t.useVips {
		var err error
		resized, err = FitWithVips(strip, t.box, t.box)
		if err != nil {
			return nil, fmt.Errorf("vips thumbnail: %w", err)
		}
	} else {
		resized = imaging.Fit(strip, t.box, t.box, imaging.Lanczos)
	}

	if isDegenerate(resized) {
		return nil, fmt.Errorf("%w: %dx%d strip collapsed to %dx%d", ErrDegenerateStrip,
			b.Dx(), b.Dy(), resized.Bounds().Dx(), resized.Bounds().Dy())
	}

	logging.Debug("Thumbnail: %dx%d -> %dx%d", b.Dx(), b.Dy(), resized.Bounds().Dx(), resized.Bounds().Dy())
	return Luminance(resized), nil
}
