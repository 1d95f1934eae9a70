// Package metrics provides Prometheus instrumentation for vid2pdf.
//
// All metrics are registered with the default registry through promauto and
// are prefixed with "vid2pdf_".
//
// # Metric Categories
//
// ## Run Metrics
//   - RunsTotal: Counter of runs by outcome (success or error kind)
//   - RunDuration: Histogram of complete run duration
//   - StageDuration: Histogram of time per stage call (probe, sample, trim, resize, compose, preview)
//
// ## Pipeline Progress
//   - FramesDecodedTotal, KeyframesTotal, RowsTrimmedTotal
//   - StripsPlacedTotal, PagesWrittenTotal
//   - RunProgress: Gauge of the in-flight run, sampled by the [Collector]
//
// ## Scratch Storage
//   - ScratchWriteDuration, ScratchWriteBytes, ScratchWriteErrors
//   - ScratchRetryAttempts, ScratchRetrySuccess, ScratchRetryFailures, ScratchStaleErrors
//
// These are fed through [NewScratchObserver], which implements
// scratch.Observer so the scratch package stays free of Prometheus imports.
//
// ## Metrics Endpoint
//   - HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight
//
// These are recorded by the middleware package around the router.
//
// ## Memory
//   - GoMemLimit, GoMemAllocBytes, GoMemSysBytes, GoGCRuns
//   - MemoryUsageRatio, MemoryForcedGC
//
// # Serving
//
// A conversion is a batch job, so metrics are only served when asked for:
//
//	srv, err := metrics.StartServer(":9090", metrics.NewRouter(p, startup.Version))
//	defer srv.Shutdown(ctx)
//
// Call [InitializeMetrics] once so every label combination is exported from
// the first scrape.
package metrics
