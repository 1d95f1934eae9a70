package metrics

// Run outcome labels for RunsTotal.
const (
	StatusSuccess         = "success"
	StatusNoKeyframes     = "no_keyframes"
	StatusDegenerateStrip = "degenerate_strip"
	StatusInputUnreadable = "input_unreadable"
	StatusScratchIO       = "scratch_io"
	StatusWriterFailure   = "writer_failure"
	StatusError           = "error"
)

// Stage labels for StageDuration.
const (
	StageProbe   = "probe"
	StageSample  = "sample"
	StageTrim    = "trim"
	StageResize  = "resize"
	StageCompose = "compose"
	StagePreview = "preview"
)

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, status := range []string{StatusSuccess, StatusNoKeyframes, StatusDegenerateStrip,
		StatusInputUnreadable, StatusScratchIO, StatusWriterFailure, StatusError} {
		RunsTotal.WithLabelValues(status)
	}

	for _, stage := range []string{StageProbe, StageSample, StageTrim, StageResize, StageCompose, StagePreview} {
		StageDuration.WithLabelValues(stage)
	}

	for _, kind := range []string{"frames", "keyframes", "strips"} {
		RunProgress.WithLabelValues(kind)
	}

	for _, op := range []string{"write", "stat"} {
		ScratchRetryAttempts.WithLabelValues(op)
		ScratchRetrySuccess.WithLabelValues(op)
		ScratchRetryFailures.WithLabelValues(op)
		ScratchStaleErrors.WithLabelValues(op)
	}
}
