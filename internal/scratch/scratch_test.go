package scratch

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"
)

func testStrip(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = uint8(i % 251)
	}
	img.SetGray(0, 0, color.Gray{Y: 255})
	return img
}

func fastRetry() RetryConfig {
	return RetryConfig{MaxRetries: 3, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond}
}

func TestAcquireWriteRelease(t *testing.T) {
	root := t.TempDir()

	dir, err := Acquire(root)
	if err != nil {
		t.Fatalf("Acquire() error: %v", err)
	}
	if filepath.Dir(dir.Path()) != root {
		t.Errorf("scratch dir %s not created under %s", dir.Path(), root)
	}

	first, err := dir.WriteImage(testStrip(40, 30), 75)
	if err != nil {
		t.Fatalf("WriteImage() error: %v", err)
	}
	second, err := dir.WriteImage(testStrip(20, 10), 75)
	if err != nil {
		t.Fatalf("WriteImage() error: %v", err)
	}
	if first == second {
		t.Errorf("each strip needs its own file, both written to %s", first)
	}
	if filepath.Base(first) != "strip_00001.jpg" || filepath.Base(second) != "strip_00002.jpg" {
		t.Errorf("unexpected file names %s, %s", filepath.Base(first), filepath.Base(second))
	}

	if err := dir.Release(); err != nil {
		t.Fatalf("Release() error: %v", err)
	}
	if _, err := os.Stat(dir.Path()); !os.IsNotExist(err) {
		t.Errorf("scratch dir should be gone after Release, stat err = %v", err)
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	dir, err := Acquire(t.TempDir())
	if err != nil {
		t.Fatalf("Acquire() error: %v", err)
	}
	if err := dir.Release(); err != nil {
		t.Fatalf("first Release() error: %v", err)
	}
	if err := dir.Release(); err != nil {
		t.Errorf("second Release() error: %v", err)
	}
}

func TestWriteAfterRelease(t *testing.T) {
	dir, err := Acquire(t.TempDir())
	if err != nil {
		t.Fatalf("Acquire() error: %v", err)
	}
	_ = dir.Release()

	if _, err := dir.WriteImage(testStrip(4, 4), 75); !errors.Is(err, ErrScratchIO) {
		t.Errorf("WriteImage after Release error = %v, want ErrScratchIO", err)
	}
}

func TestAcquireFailsWhenRootIsAFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Acquire(file); !errors.Is(err, ErrScratchIO) {
		t.Errorf("Acquire(file) error = %v, want ErrScratchIO", err)
	}
}

func TestWriteImageFailsWhenDirectoryVanishes(t *testing.T) {
	dir, err := AcquireWithRetry(t.TempDir(), fastRetry())
	if err != nil {
		t.Fatalf("Acquire() error: %v", err)
	}
	defer dir.Release()

	if err := os.RemoveAll(dir.Path()); err != nil {
		t.Fatal(err)
	}
	if _, err := dir.WriteImage(testStrip(4, 4), 75); !errors.Is(err, ErrScratchIO) {
		t.Errorf("WriteImage() error = %v, want ErrScratchIO", err)
	}
}

func TestIsNFSStaleError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("boom"), false},
		{"ESTALE", syscall.ESTALE, true},
		{"wrapped ESTALE", &os.PathError{Op: "open", Path: "/x", Err: syscall.ESTALE}, true},
		{"ENOENT", syscall.ENOENT, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isNFSStaleError(tt.err); got != tt.want {
				t.Errorf("isNFSStaleError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

type countingObserver struct {
	attempts, successes, failures, stale int
	writes                              int
}

func (o *countingObserver) ObserveWrite(float64, int64, error) { o.writes++ }
func (o *countingObserver) ObserveRetryAttempt(string)          { o.attempts++ }
func (o *countingObserver) ObserveRetrySuccess(string)          { o.successes++ }
func (o *countingObserver) ObserveRetryFailure(string)          { o.failures++ }
func (o *countingObserver) ObserveStaleError(string)            { o.stale++ }

func TestWithRetry(t *testing.T) {
	obs := &countingObserver{}
	SetObserver(obs)
	t.Cleanup(func() { SetObserver(nil) })

	t.Run("recovers after stale handles", func(t *testing.T) {
		*obs = countingObserver{}
		calls := 0
		err := withRetry("write", "/x", fastRetry(), func() error {
			calls++
			if calls < 3 {
				return &os.PathError{Op: "write", Path: "/x", Err: syscall.ESTALE}
			}
			return nil
		})
		if err != nil {
			t.Fatalf("withRetry() error: %v", err)
		}
		if calls != 3 || obs.stale != 2 || obs.attempts != 2 || obs.successes != 1 {
			t.Errorf("calls=%d observer=%+v", calls, *obs)
		}
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		*obs = countingObserver{}
		calls := 0
		err := withRetry("write", "/x", fastRetry(), func() error {
			calls++
			return syscall.ESTALE
		})
		if !errors.Is(err, syscall.ESTALE) {
			t.Fatalf("withRetry() error = %v, want ESTALE", err)
		}
		if calls != 4 || obs.failures != 1 {
			t.Errorf("calls=%d observer=%+v", calls, *obs)
		}
	})

	t.Run("other errors are not retried", func(t *testing.T) {
		calls := 0
		err := withRetry("write", "/x", fastRetry(), func() error {
			calls++
			return fmt.Errorf("disk full")
		})
		if err == nil || calls != 1 {
			t.Errorf("calls=%d err=%v, want one failing call", calls, err)
		}
	})
}

func TestWriteImageReportsToObserver(t *testing.T) {
	obs := &countingObserver{}
	SetObserver(obs)
	t.Cleanup(func() { SetObserver(nil) })

	dir, err := Acquire(t.TempDir())
	if err != nil {
		t.Fatalf("Acquire() error: %v", err)
	}
	defer dir.Release()

	if _, err := dir.WriteImage(testStrip(8, 8), 90); err != nil {
		t.Fatalf("WriteImage() error: %v", err)
	}
	if obs.writes != 1 {
		t.Errorf("observer saw %d writes, want 1", obs.writes)
	}
}
