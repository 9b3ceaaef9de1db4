package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncRedirect is a no-op.
func (n *NoopRecorder) IncRedirect() {}

// IncCodeIssued is a no-op.
func (n *NoopRecorder) IncCodeIssued() {}

// IncAttributionFailure is a no-op.
func (n *NoopRecorder) IncAttributionFailure() {}

// IncClickLogFailure is a no-op.
func (n *NoopRecorder) IncClickLogFailure() {}

// ObserveRedirectDuration is a no-op.
func (n *NoopRecorder) ObserveRedirectDuration(duration time.Duration) {}

// IncResolveCacheHit is a no-op.
func (n *NoopRecorder) IncResolveCacheHit() {}

// IncResolveCacheMiss is a no-op.
func (n *NoopRecorder) IncResolveCacheMiss() {}

// IncCodeResolved is a no-op.
func (n *NoopRecorder) IncCodeResolved() {}

// IncTamperRejected is a no-op.
func (n *NoopRecorder) IncTamperRejected() {}
