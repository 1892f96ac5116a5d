package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/orbitlms/authgate"
)

// MetricsSource is the reduced engine surface the exporter reads.
type MetricsSource interface {
	MetricsSnapshot() authgate.MetricsSnapshot
	AuditDropped() uint64
}

var _ prometheus.Collector = (*Exporter)(nil)

// Exporter is a prometheus.Collector over a MetricsSource. Collection is a
// point-in-time snapshot; counters are not mutually consistent with each
// other within one scrape.
type Exporter struct {
	source  MetricsSource
	descs   map[authgate.MetricID]*prometheus.Desc
	dropped *prometheus.Desc
}

// NewExporter creates an Exporter reading from the given engine.
func NewExporter(engine *authgate.Engine) *Exporter {
	return NewExporterFromSource(engine)
}

// NewExporterFromSource creates an Exporter from a custom source.
func NewExporterFromSource(source MetricsSource) *Exporter {
	descs := make(map[authgate.MetricID]*prometheus.Desc)
	for _, id := range authgate.MetricIDs() {
		descs[id] = prometheus.NewDesc(
			"authgate_"+id.Name()+"_total",
			"Total authgate "+id.Name()+" events.",
			nil, nil,
		)
	}

	return &Exporter{
		source: source,
		descs:  descs,
		dropped: prometheus.NewDesc(
			"authgate_audit_dropped_total",
			"Audit events dropped because the dispatcher queue was full.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (e *Exporter) Describe(ch chan<- *prometheus.Desc) {
	for _, desc := range e.descs {
		ch <- desc
	}
	ch <- e.dropped
}

// Collect implements prometheus.Collector.
func (e *Exporter) Collect(ch chan<- prometheus.Metric) {
	if e == nil || e.source == nil {
		return
	}

	snapshot := e.source.MetricsSnapshot()
	for id, desc := range e.descs {
		ch <- prometheus.MustNewConstMetric(desc, prometheus.CounterValue, float64(snapshot.Counters[id]))
	}
	ch <- prometheus.MustNewConstMetric(e.dropped, prometheus.CounterValue, float64(e.source.AuditDropped()))
}
