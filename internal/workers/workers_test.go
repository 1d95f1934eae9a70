package workers

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestCount(t *testing.T) {
	availableCPU := runtime.GOMAXPROCS(0)

	tests := []struct {
		name       string
		multiplier float64
		limit      int
		minExpect  int
		maxExpect  int
	}{
		{
			name:       "CPU-bound task (1.0x multiplier)",
			multiplier: 1.0,
			minExpect:  1,
			maxExpect:  availableCPU,
		},
		{
			name:       "I/O-bound task (2.0x multiplier)",
			multiplier: 2.0,
			minExpect:  1,
			maxExpect:  availableCPU * 2,
		},
		{
			name:       "With limit lower than calculated",
			multiplier: 2.0,
			limit:      2,
			minExpect:  1,
			maxExpect:  2,
		},
		{
			name:       "Zero multiplier",
			multiplier: 0,
			minExpect:  1,
			maxExpect:  1,
		},
		{
			name:       "Negative multiplier",
			multiplier: -1,
			minExpect:  1,
			maxExpect:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Count(tt.multiplier, tt.limit)

			if got < tt.minExpect {
				t.Errorf("Count(%v, %d) = %d, expected >= %d", tt.multiplier, tt.limit, got, tt.minExpect)
			}
			if got > tt.maxExpect {
				t.Errorf("Count(%v, %d) = %d, expected <= %d", tt.multiplier, tt.limit, got, tt.maxExpect)
			}
		})
	}
}

func TestForCPU(t *testing.T) {
	if got := ForCPU(1); got != 1 {
		t.Errorf("ForCPU(1) = %d, want 1", got)
	}
	if got := ForCPU(0); got < 1 || got > runtime.GOMAXPROCS(0) {
		t.Errorf("ForCPU(0) = %d, want between 1 and %d", got, runtime.GOMAXPROCS(0))
	}
}

func TestRunVisitsEveryIndex(t *testing.T) {
	const n = 50
	seen := make([]int32, n)

	err := Run(context.Background(), n, 4, func(_ context.Context, i int) error {
		atomic.AddInt32(&seen[i], 1)
		return nil
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	for i, c := range seen {
		if c != 1 {
			t.Errorf("index %d visited %d times, want 1", i, c)
		}
	}
}

func TestRunRespectsPoolSize(t *testing.T) {
	var (
		mu      sync.Mutex
		running int
		peak    int
	)

	err := Run(context.Background(), 20, 3, func(_ context.Context, _ int) error {
		mu.Lock()
		running++
		if running > peak {
			peak = running
		}
		mu.Unlock()

		time.Sleep(2 * time.Millisecond)

		mu.Lock()
		running--
		mu.Unlock()
		return nil
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if peak > 3 {
		t.Errorf("peak concurrency = %d, want <= 3", peak)
	}
}

func TestRunStopsOnFirstError(t *testing.T) {
	boom := errors.New("boom")
	var started int32

	err := Run(context.Background(), 100, 1, func(_ context.Context, i int) error {
		atomic.AddInt32(&started, 1)
		if i == 2 {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Run() error = %v, want %v", err, boom)
	}
	if got := atomic.LoadInt32(&started); got == 100 {
		t.Error("all jobs started despite an early failure")
	}
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var started int32
	err := Run(ctx, 10, 2, func(_ context.Context, _ int) error {
		atomic.AddInt32(&started, 1)
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if started != 0 {
		t.Errorf("%d jobs started on a cancelled context", started)
	}
}

func TestRunZeroSize(t *testing.T) {
	var calls int32
	if err := Run(context.Background(), 3, 0, func(_ context.Context, _ int) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}
