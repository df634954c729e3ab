package filesystem

// Observer records retry metrics for filesystem operations. The metrics
// package provides the implementation so that filesystem does not import it.
type Observer interface {
	// retryOp is the operation being retried: "stat", "open" or "create".
	ObserveRetryAttempt(retryOp, volume string)
	ObserveRetrySuccess(retryOp, volume string)
	ObserveRetryFailure(retryOp, volume string)
	ObserveRetryDuration(retryOp, volume string, durationSeconds float64)
	ObserveStaleError(retryOp, volume string)
}

// defaultObserver is the package-level observer set at startup.
// If nil, metric recording is skipped.
var defaultObserver Observer

// SetObserver sets the package-level metrics observer.
func SetObserver(o Observer) {
	defaultObserver = o
}

type nopObserver struct{}

func (nopObserver) ObserveRetryAttempt(string, string)           {}
func (nopObserver) ObserveRetrySuccess(string, string)           {}
func (nopObserver) ObserveRetryFailure(string, string)           {}
func (nopObserver) ObserveRetryDuration(string, string, float64) {}
func (nopObserver) ObserveStaleError(string, string)             {}

func observe() Observer {
	if defaultObserver == nil {
		return nopObserver{}
	}
	return defaultObserver
}
