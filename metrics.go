package authgate

import "sync/atomic"

// MetricID identifies one engine counter.
type MetricID uint16

const (
	// MetricLoginSuccess counts logins that issued a token.
	MetricLoginSuccess MetricID = iota
	// MetricLoginFailure counts rejected logins (bad credential, disabled,
	// admin-locked).
	MetricLoginFailure
	// MetricLoginLockout counts logins refused by the brute-force lock.
	MetricLoginLockout
	// MetricValidateSuccess counts tokens that validated and resolved to a
	// principal.
	MetricValidateSuccess
	// MetricValidateFailure counts token validations that produced no
	// principal.
	MetricValidateFailure
	// MetricRateAllowed counts rate-limiter acquisitions within budget.
	MetricRateAllowed
	// MetricRateLimited counts rate-limiter acquisitions over budget.
	MetricRateLimited
	metricIDCount
)

var metricNames = [metricIDCount]string{
	MetricLoginSuccess:    "login_success",
	MetricLoginFailure:    "login_failure",
	MetricLoginLockout:    "login_lockout",
	MetricValidateSuccess: "validate_success",
	MetricValidateFailure: "validate_failure",
	MetricRateAllowed:     "rate_allowed",
	MetricRateLimited:     "rate_limited",
}

// Name returns the stable exposition name of the metric.
func (id MetricID) Name() string {
	if id >= metricIDCount {
		return "unknown"
	}
	return metricNames[id]
}

// MetricIDs returns every defined metric ID in stable order.
func MetricIDs() []MetricID {
	out := make([]MetricID, 0, metricIDCount)
	for id := MetricID(0); id < metricIDCount; id++ {
		out = append(out, id)
	}
	return out
}

// Metrics is a fixed array of atomic counters. Increments are lock-free;
// snapshots are advisory and not mutually consistent across counters.
type Metrics struct {
	counters [metricIDCount]atomic.Uint64
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

func (m *Metrics) inc(id MetricID) {
	if m == nil || id >= metricIDCount {
		return
	}
	m.counters[id].Add(1)
}

// Snapshot copies the current counter values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	out := MetricsSnapshot{Counters: make(map[MetricID]uint64, metricIDCount)}
	if m == nil {
		return out
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		out.Counters[id] = m.counters[id].Load()
	}
	return out
}
