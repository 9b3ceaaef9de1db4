package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	Redirects               uint64
	CodesIssued             uint64
	AttributionFailures     uint64
	ClickLogFailures        uint64
	RedirectDurationCount   uint64
	RedirectDurationTotalNs int64
	ResolveCacheHits        uint64
	ResolveCacheMisses      uint64
	CodesResolved           uint64
	TamperRejections        uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	redirects               uint64
	codesIssued             uint64
	attributionFailures     uint64
	clickLogFailures        uint64
	redirectDurationCount   uint64
	redirectDurationTotalNs int64
	resolveCacheHits        uint64
	resolveCacheMisses      uint64
	codesResolved           uint64
	tamperRejections        uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		Redirects:               atomic.LoadUint64(&m.redirects),
		CodesIssued:             atomic.LoadUint64(&m.codesIssued),
		AttributionFailures:     atomic.LoadUint64(&m.attributionFailures),
		ClickLogFailures:        atomic.LoadUint64(&m.clickLogFailures),
		RedirectDurationCount:   atomic.LoadUint64(&m.redirectDurationCount),
		RedirectDurationTotalNs: atomic.LoadInt64(&m.redirectDurationTotalNs),
		ResolveCacheHits:        atomic.LoadUint64(&m.resolveCacheHits),
		ResolveCacheMisses:      atomic.LoadUint64(&m.resolveCacheMisses),
		CodesResolved:           atomic.LoadUint64(&m.codesResolved),
		TamperRejections:        atomic.LoadUint64(&m.tamperRejections),
	}
}

// IncRedirect increments the served redirect counter.
func (m *InMemoryRecorder) IncRedirect() {
	atomic.AddUint64(&m.redirects, 1)
}

// IncCodeIssued increments the issued code counter.
func (m *InMemoryRecorder) IncCodeIssued() {
	atomic.AddUint64(&m.codesIssued, 1)
}

// IncAttributionFailure increments the lost-attribution counter.
func (m *InMemoryRecorder) IncAttributionFailure() {
	atomic.AddUint64(&m.attributionFailures, 1)
}

// IncClickLogFailure increments the click log write failure counter.
func (m *InMemoryRecorder) IncClickLogFailure() {
	atomic.AddUint64(&m.clickLogFailures, 1)
}

// ObserveRedirectDuration records redirect duration.
func (m *InMemoryRecorder) ObserveRedirectDuration(duration time.Duration) {
	atomic.AddUint64(&m.redirectDurationCount, 1)
	atomic.AddInt64(&m.redirectDurationTotalNs, duration.Nanoseconds())
}

// IncResolveCacheHit increments the cache hit counter.
func (m *InMemoryRecorder) IncResolveCacheHit() {
	atomic.AddUint64(&m.resolveCacheHits, 1)
}

// IncResolveCacheMiss increments the cache miss counter.
func (m *InMemoryRecorder) IncResolveCacheMiss() {
	atomic.AddUint64(&m.resolveCacheMisses, 1)
}

// IncCodeResolved increments the resolved code counter.
func (m *InMemoryRecorder) IncCodeResolved() {
	atomic.AddUint64(&m.codesResolved, 1)
}

// IncTamperRejected increments the rejected tampered code counter.
func (m *InMemoryRecorder) IncTamperRejected() {
	atomic.AddUint64(&m.tamperRejections, 1)
}
