package scratch

// Observer records scratch storage metrics. Implementations are provided by
// the metrics package to keep this package free of Prometheus imports.
type Observer interface {
	// ObserveWrite records duration and error status for staging one raster.
	ObserveWrite(durationSeconds float64, bytes int64, err error)

	// Retry-specific metrics for NFS resilience; op is "write" or "stat".
	ObserveRetryAttempt(op string)
	ObserveRetrySuccess(op string)
	ObserveRetryFailure(op string)
	ObserveStaleError(op string)
}

// defaultObserver is the package-level observer set at startup.
// If nil, metric recording is silently skipped (safe for tests).
var defaultObserver Observer

// SetObserver sets the package-level metrics observer.
func SetObserver(o Observer) {
	defaultObserver = o
}

type nopObserver struct{}

func (nopObserver) ObserveWrite(float64, int64, error) {}
func (nopObserver) ObserveRetryAttempt(string)          {}
func (nopObserver) ObserveRetrySuccess(string)          {}
func (nopObserver) ObserveRetryFailure(string)          {}
func (nopObserver) ObserveStaleError(string)            {}

// observe is a nil-safe helper for the package-level observer.
func observe() Observer {
	if defaultObserver == nil {
		return nopObserver{}
	}
	return defaultObserver
}
