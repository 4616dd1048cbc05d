package careauth

import (
	"sync/atomic"
	"time"
)

// MetricID identifies one internal counter or latency histogram.
type MetricID uint16

const (
	// MetricLoginSuccess counts successful sign-ins.
	MetricLoginSuccess MetricID = iota
	// MetricLoginFailure counts rejected or failed sign-ins.
	MetricLoginFailure
	// MetricRestoreSuccess counts restorations that resolved an identity.
	MetricRestoreSuccess
	// MetricRestoreAnonymous counts restorations with no stored session.
	MetricRestoreAnonymous
	// MetricRestoreFailure counts restorations that had tokens and failed.
	MetricRestoreFailure
	// MetricRefreshSuccess counts successful token pair rotations.
	MetricRefreshSuccess
	// MetricRefreshFailure counts failed rotations, each of which forced a
	// logout.
	MetricRefreshFailure
	// MetricLogout counts explicit logouts.
	MetricLogout
	// MetricLoginLatency is the sign-in round trip histogram.
	MetricLoginLatency
	// MetricRestoreLatency is the restoration round trip histogram.
	MetricRestoreLatency
	// MetricRefreshLatency is the rotation round trip histogram.
	MetricRefreshLatency
	metricIDCount
)

// String returns the exposition name of the metric.
func (id MetricID) String() string {
	switch id {
	case MetricLoginSuccess:
		return "login_success"
	case MetricLoginFailure:
		return "login_failure"
	case MetricRestoreSuccess:
		return "restore_success"
	case MetricRestoreAnonymous:
		return "restore_anonymous"
	case MetricRestoreFailure:
		return "restore_failure"
	case MetricRefreshSuccess:
		return "refresh_success"
	case MetricRefreshFailure:
		return "refresh_failure"
	case MetricLogout:
		return "logout"
	case MetricLoginLatency:
		return "login_latency"
	case MetricRestoreLatency:
		return "restore_latency"
	case MetricRefreshLatency:
		return "refresh_latency"
	default:
		return "unknown"
	}
}

// latencyIDs are the MetricIDs recorded as histograms instead of counters.
var latencyIDs = [...]MetricID{MetricLoginLatency, MetricRestoreLatency, MetricRefreshLatency}

// latencyIndex maps a MetricID to its slot in the histogram array, or -1
// for counter IDs.
func latencyIndex(id MetricID) int {
	for i, l := range latencyIDs {
		if id == l {
			return i
		}
	}
	return -1
}

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

// HistogramBounds are the upper bounds, in milliseconds, of the latency
// buckets; the last bucket is unbounded.
var HistogramBounds = [histBucketCount - 1]int64{5, 10, 25, 50, 100, 250, 500}

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

// paddedCounter keeps hot counters on separate cache lines.
type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// metrics holds one padded counter per counter ID and one bucket array per
// latency ID, addressed through latencyIndex.
type metrics struct {
	counters   [metricIDCount]paddedCounter
	histograms [len(latencyIDs)]metricHistogram
}

// MetricsSnapshot is a point-in-time copy of all counters and histogram
// buckets, keyed by MetricID.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

func newMetrics() *metrics {
	return &metrics{}
}

// inc is a no-op on a nil receiver so call sites need no enabled check.
func (m *metrics) inc(id MetricID) {
	if m == nil || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

func (m *metrics) observe(id MetricID, d time.Duration) {
	if m == nil {
		return
	}
	idx := latencyIndex(id)
	if idx < 0 {
		return
	}
	atomic.AddUint64(&m.histograms[idx].buckets[bucketIndex(d)], 1)
}

func (m *metrics) value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

func (m *metrics) snapshot() MetricsSnapshot {
	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, len(latencyIDs)),
	}
	if m == nil {
		return s
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		if latencyIndex(id) >= 0 {
			continue
		}
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	for idx, id := range latencyIDs {
		buckets := make([]uint64, histBucketCount)
		for i := range buckets {
			buckets[i] = atomic.LoadUint64(&m.histograms[idx].buckets[i])
		}
		s.Histograms[id] = buckets
	}
	return s
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()
	for i, bound := range HistogramBounds {
		if ms <= bound {
			return i
		}
	}
	return histBucketCount - 1
}
