package memory

import (
	"math"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"vid2pdf/internal/logging"
	"vid2pdf/internal/metrics"
)

// Config holds memory monitor configuration
type Config struct {
	// MemoryLimitBytes is the soft memory limit (0 = use GOMEMLIMIT or no limit)
	MemoryLimitBytes int64

	// HighWaterMark is the fraction of the limit above which Relieve forces a GC (0.0-1.0)
	HighWaterMark float64

	// CheckInterval is how often to check memory usage
	CheckInterval time.Duration
}

// DefaultConfig returns sensible defaults for memory monitoring
func DefaultConfig() Config {
	return Config{
		MemoryLimitBytes: 0, // Use GOMEMLIMIT if set
		HighWaterMark:    0.8,
		CheckInterval:    2 * time.Second,
	}
}

// Monitor samples heap usage in the background. The pipeline calls Relieve
// between frames so decoded frames that are no longer referenced get
// collected before the next one is allocated.
type Monitor struct {
	config   Config
	limit    int64
	stopChan chan struct{}
	stopOnce sync.Once
	mu       sync.RWMutex
	current  uint64
}

// NewMonitor creates a new memory monitor
func NewMonitor(config Config) *Monitor {
	limit := config.MemoryLimitBytes

	if limit == 0 {
		if goMemLimit := debug.SetMemoryLimit(-1); goMemLimit > 0 && goMemLimit < 1<<62 {
			limit = goMemLimit
			logging.Debug("Memory monitor using GOMEMLIMIT: %s", FormatBytes(limit))
		}
	}

	return &Monitor{
		config:   config,
		limit:    limit,
		stopChan: make(chan struct{}),
	}
}

// Limit returns the limit the monitor measures against, 0 if none.
func (m *Monitor) Limit() int64 {
	return m.limit
}

// Start begins monitoring memory usage. It does nothing without a limit.
func (m *Monitor) Start() {
	if m.limit == 0 {
		return
	}

	m.checkMemory()
	go m.monitorLoop()
}

// Stop stops the memory monitor. It is safe to call more than once.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopChan) })
}

func (m *Monitor) monitorLoop() {
	ticker := time.NewTicker(m.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.checkMemory()
		case <-m.stopChan:
			return
		}
	}
}

func (m *Monitor) checkMemory() {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	m.mu.Lock()
	m.current = stats.Alloc
	m.mu.Unlock()

	if m.limit > 0 {
		metrics.MemoryUsageRatio.Set(float64(stats.Alloc) / float64(m.limit))
	}
}

// ShouldThrottle returns true if memory usage is above the high water mark
func (m *Monitor) ShouldThrottle() bool {
	if m.limit == 0 {
		return false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	return float64(m.current) >= float64(m.limit)*m.config.HighWaterMark
}

// Relieve forces a garbage collection when usage is above the high water
// mark and reports whether it did.
func (m *Monitor) Relieve() bool {
	if !m.ShouldThrottle() {
		return false
	}

	logging.Debug("Memory at %.1f%% of limit, forcing GC", m.GetUsage()*100)
	runtime.GC()
	metrics.MemoryForcedGC.Inc()
	m.checkMemory()
	return true
}

// GetUsage returns current memory usage as a fraction of the limit (0.0-1.0)
// Returns 0 if no limit is configured
func (m *Monitor) GetUsage() float64 {
	if m.limit == 0 {
		return 0
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	return float64(m.current) / float64(m.limit)
}

// GetStats returns current memory statistics
func (m *Monitor) GetStats() (current, limit int64, usage float64) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var currentInt64 int64
	if m.current > math.MaxInt64 {
		currentInt64 = math.MaxInt64
	} else {
		currentInt64 = int64(m.current)
	}

	var usageRatio float64
	if m.limit > 0 {
		usageRatio = float64(m.current) / float64(m.limit)
	}

	return currentInt64, m.limit, usageRatio
}
