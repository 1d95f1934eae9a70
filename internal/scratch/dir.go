package scratch

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"
	"time"

	"vid2pdf/internal/logging"

	"github.com/disintegration/imaging"
)

// ErrScratchIO reports a failure to create, write, or read back staged data.
var ErrScratchIO = errors.New("scratch storage I/O failure")

// Dir is a private staging directory owned by a single pipeline run.
type Dir struct {
	path  string
	retry RetryConfig

	mu       sync.Mutex
	seq      int
	released bool
}

// Acquire creates a fresh scratch directory under root. An empty root means
// the OS temporary directory.
func Acquire(root string) (*Dir, error) {
	return AcquireWithRetry(root, DefaultRetryConfig())
}

// AcquireWithRetry is Acquire with an explicit retry configuration.
func AcquireWithRetry(root string, retry RetryConfig) (*Dir, error) {
	if root != "" {
		if err := os.MkdirAll(root, 0o755); err != nil {
			return nil, fmt.Errorf("%w: create scratch root %s: %w", ErrScratchIO, root, err)
		}
	}

	path, err := os.MkdirTemp(root, "vid2pdf-*")
	if err != nil {
		return nil, fmt.Errorf("%w: create scratch directory: %w", ErrScratchIO, err)
	}

	logging.Debug("Scratch directory acquired: %s", path)
	return &Dir{path: path, retry: retry}, nil
}

// Path returns the directory location.
func (d *Dir) Path() string {
	return d.path
}

// WriteImage encodes img as JPEG with the given quality under a new file name
// and returns its path. The file is closed and its header decodes to the
// expected size before WriteImage returns. It is safe for concurrent use.
func (d *Dir) WriteImage(img image.Image, quality int) (string, error) {
	d.mu.Lock()
	if d.released {
		d.mu.Unlock()
		return "", fmt.Errorf("%w: scratch directory %s already released", ErrScratchIO, d.path)
	}
	d.seq++
	path := filepath.Join(d.path, fmt.Sprintf("strip_%05d.jpg", d.seq))
	d.mu.Unlock()

	start := time.Now()
	err := withRetry("write", path, d.retry, func() error {
		return imaging.Save(img, path, imaging.JPEGQuality(quality))
	})
	if err != nil {
		observe().ObserveWrite(time.Since(start).Seconds(), 0, err)
		return "", fmt.Errorf("%w: write %s: %w", ErrScratchIO, path, err)
	}

	var info os.FileInfo
	err = withRetry("stat", path, d.retry, func() error {
		var statErr error
		info, statErr = os.Stat(path)
		return statErr
	})
	if err == nil {
		err = verifyImage(path, img.Bounds())
	}
	if err != nil {
		observe().ObserveWrite(time.Since(start).Seconds(), 0, err)
		return "", fmt.Errorf("%w: verify %s: %w", ErrScratchIO, path, err)
	}

	observe().ObserveWrite(time.Since(start).Seconds(), info.Size(), nil)
	logging.Debug("Scratch staged %s (%d bytes)", filepath.Base(path), info.Size())
	return path, nil
}

// verifyImage decodes the header of a staged file and checks its size.
func verifyImage(path string, want image.Rectangle) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return err
	}
	if cfg.Width != want.Dx() || cfg.Height != want.Dy() {
		return fmt.Errorf("staged image is %dx%d, want %dx%d", cfg.Width, cfg.Height, want.Dx(), want.Dy())
	}
	return nil
}

// Release removes the directory and everything in it. It is safe to call
// more than once; only the first call does any work.
func (d *Dir) Release() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.released {
		return nil
	}
	d.released = true

	if err := os.RemoveAll(d.path); err != nil {
		logging.Warn("failed to remove scratch directory %s: %v", d.path, err)
		return fmt.Errorf("%w: remove %s: %w", ErrScratchIO, d.path, err)
	}
	logging.Debug("Scratch directory released: %s (%d files staged)", d.path, d.seq)
	return nil
}
