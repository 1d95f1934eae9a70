// Package memory controls Go runtime memory for long conversions.
//
// Decoded frames are large (width x height x 4 bytes each) and ffmpeg and
// libvips allocate outside the Go heap, so GOMEMLIMIT is worth setting when
// running in a container.
//
// # Configuration
//
// Call [ConfigureFromEnv] early in main, before any frames are decoded:
//
//   - GOMEMLIMIT: Standard Go environment variable. If set, takes precedence
//     over all other configuration.
//
//   - MEMORY_LIMIT: Container memory limit in bytes, for example from the
//     Kubernetes Downward API.
//
//   - MEMORY_RATIO: Fraction of MEMORY_LIMIT given to the Go heap, between
//     0.0 and 1.0. Default is 0.85. Lower it for very high resolution input,
//     since ffmpeg keeps its own decode buffers.
//
// # Monitoring
//
// [Monitor] samples heap usage in the background and exports it as
// vid2pdf_memory_usage_ratio. The pipeline calls [Monitor.Relieve] between
// frames, which forces a collection once usage passes the high water mark.
//
// [CheckFrameBudget] logs a warning up front when the frames held by the
// sampler alone would take more than half of the limit.
package memory
