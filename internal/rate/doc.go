// Package rate bounds request volume per caller-supplied key with
// fixed-window Redis counters.
package rate
