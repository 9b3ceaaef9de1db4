// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Redirect path metrics
	IncRedirect()
	IncCodeIssued()
	IncAttributionFailure()
	IncClickLogFailure()
	ObserveRedirectDuration(duration time.Duration)

	// Resolution path metrics
	IncResolveCacheHit()
	IncResolveCacheMiss()
	IncCodeResolved()
	IncTamperRejected()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
