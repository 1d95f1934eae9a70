package metrics

import "vid2pdf/internal/scratch"

// scratchObserver implements scratch.Observer using the Prometheus
// metrics declared in this package.
type scratchObserver struct{}

// NewScratchObserver creates an observer that records scratch storage metrics
// into the Prometheus counters and histograms declared in metrics.go.
func NewScratchObserver() scratch.Observer {
	return &scratchObserver{}
}

func (o *scratchObserver) ObserveWrite(durationSeconds float64, bytes int64, err error) {
	ScratchWriteDuration.Observe(durationSeconds)
	if err != nil {
		ScratchWriteErrors.Inc()
		return
	}
	ScratchWriteBytes.Add(float64(bytes))
}

func (o *scratchObserver) ObserveRetryAttempt(op string) {
	ScratchRetryAttempts.WithLabelValues(op).Inc()
}

func (o *scratchObserver) ObserveRetrySuccess(op string) {
	ScratchRetrySuccess.WithLabelValues(op).Inc()
}

func (o *scratchObserver) ObserveRetryFailure(op string) {
	ScratchRetryFailures.WithLabelValues(op).Inc()
}

func (o *scratchObserver) ObserveStaleError(op string) {
	ScratchStaleErrors.WithLabelValues(op).Inc()
}
