// Package prometheus exposes authgate engine counters as a
// prometheus/client_golang Collector.
//
// [NewExporter] accepts an [authgate.Engine] and returns a Collector that
// renders every engine counter as authgate_<name>_total plus the audit
// drop counter as authgate_audit_dropped_total. Callers register it in a
// registry of their choice; the package never touches the global default
// registry on its own.
package prometheus
