package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run metrics
var (
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vid2pdf_runs_total",
			Help: "Total number of conversion runs by outcome",
		},
		[]string{"status"}, // "success", "no_keyframes", "degenerate_strip", "input_unreadable", "scratch_io", "writer_failure", "error"
	)

	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vid2pdf_run_duration_seconds",
			Help:    "Duration of a complete conversion run in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800, 3600},
		},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vid2pdf_stage_duration_seconds",
			Help:    "Time spent in each pipeline stage per call",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"stage"}, // "probe", "sample", "trim", "resize", "compose", "preview"
	)
)

// Pipeline progress metrics
var (
	FramesDecodedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vid2pdf_frames_decoded_total",
			Help: "Total number of frames read from the decoder",
		},
	)

	KeyframesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vid2pdf_keyframes_total",
			Help: "Total number of frames kept by the sampler",
		},
	)

	RowsTrimmedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vid2pdf_rows_trimmed_total",
			Help: "Total number of background rows removed from keyframes",
		},
	)

	StripsPlacedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vid2pdf_strips_placed_total",
			Help: "Total number of strips placed on pages",
		},
	)

	PagesWrittenTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vid2pdf_pages_written_total",
			Help: "Total number of pages in written documents",
		},
	)

	RunProgress = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vid2pdf_run_progress",
			Help: "Counts for the run in progress, sampled periodically",
		},
		[]string{"kind"}, // "frames", "keyframes", "strips"
	)
)

// Metrics endpoint request metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vid2pdf_http_requests_total",
			Help: "Total number of requests to the metrics endpoint",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vid2pdf_http_request_duration_seconds",
			Help:    "Request duration on the metrics endpoint in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vid2pdf_http_requests_in_flight",
			Help: "Number of metrics endpoint requests currently being served",
		},
	)
)

// Scratch storage metrics
var (
	ScratchWriteDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vid2pdf_scratch_write_duration_seconds",
			Help:    "Time to stage one strip in scratch storage",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)

	ScratchWriteBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vid2pdf_scratch_write_bytes_total",
			Help: "Total bytes written to scratch storage",
		},
	)

	ScratchWriteErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vid2pdf_scratch_write_errors_total",
			Help: "Total number of failed scratch writes",
		},
	)

	ScratchRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vid2pdf_scratch_retry_attempts_total",
			Help: "Total number of scratch operation retries after a stale file handle",
		},
		[]string{"operation"},
	)

	ScratchRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vid2pdf_scratch_retry_success_total",
			Help: "Total number of scratch operations that succeeded after retrying",
		},
		[]string{"operation"},
	)

	ScratchRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vid2pdf_scratch_retry_failures_total",
			Help: "Total number of scratch operations that failed after all retries",
		},
		[]string{"operation"},
	)

	ScratchStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vid2pdf_scratch_stale_errors_total",
			Help: "Total number of stale file handle errors seen in scratch storage",
		},
		[]string{"operation"},
	)
)

// Memory metrics
var (
	GoMemLimit = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vid2pdf_go_memlimit_bytes",
			Help: "Configured GOMEMLIMIT in bytes (0 if unlimited)",
		},
	)

	GoMemAllocBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vid2pdf_go_memory_alloc_bytes",
			Help: "Bytes of allocated heap objects",
		},
	)

	GoMemSysBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vid2pdf_go_memory_sys_bytes",
			Help: "Total bytes of memory obtained from the OS",
		},
	)

	GoGCRuns = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vid2pdf_go_gc_runs",
			Help: "Number of completed GC cycles",
		},
	)

	MemoryUsageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vid2pdf_memory_usage_ratio",
			Help: "Heap allocation as a ratio of the memory limit (0.0-1.0)",
		},
	)

	MemoryForcedGC = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vid2pdf_memory_forced_gc_total",
			Help: "Total number of garbage collections forced under memory pressure",
		},
	)
)

// Application info
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vid2pdf_app_info",
			Help: "Application build information",
		},
		[]string{"version", "commit", "go_version"},
	)
)
