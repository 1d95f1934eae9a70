package metrics

import (
	"math"
	"runtime"
	"runtime/debug"
	"time"

	"vid2pdf/internal/logging"
)

// ProgressProvider reports the counts of the run in progress.
type ProgressProvider interface {
	Progress() Progress
}

// Progress holds running totals for a conversion.
type Progress struct {
	Frames    int
	Keyframes int
	Strips    int
}

// Collector periodically samples run progress and Go runtime memory.
type Collector struct {
	provider ProgressProvider
	interval time.Duration
	stopChan chan struct{}
	done     chan struct{}
}

// NewCollector creates a new metrics collector. provider may be nil.
func NewCollector(provider ProgressProvider, interval time.Duration) *Collector {
	return &Collector{
		provider: provider,
		interval: interval,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the collection loop after one final sample.
func (c *Collector) Stop() {
	close(c.stopChan)
	<-c.done
}

func (c *Collector) collectLoop() {
	defer close(c.done)

	// Collect immediately on start
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			c.collect()
			return
		}
	}
}

func (c *Collector) collect() {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	GoMemAllocBytes.Set(float64(stats.Alloc))
	GoMemSysBytes.Set(float64(stats.Sys))
	GoGCRuns.Set(float64(stats.NumGC))

	if limit := debug.SetMemoryLimit(-1); limit > 0 && limit < math.MaxInt64 {
		GoMemLimit.Set(float64(limit))
	}

	if c.provider == nil {
		return
	}

	p := c.provider.Progress()
	RunProgress.WithLabelValues("frames").Set(float64(p.Frames))
	RunProgress.WithLabelValues("keyframes").Set(float64(p.Keyframes))
	RunProgress.WithLabelValues("strips").Set(float64(p.Strips))

	logging.Debug("Metrics collected: frames=%d, keyframes=%d, strips=%d, alloc=%.1f MB",
		p.Frames, p.Keyframes, p.Strips, float64(stats.Alloc)/(1024*1024))
}
