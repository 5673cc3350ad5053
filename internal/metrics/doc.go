// Package metrics defines the Prometheus instrumentation for the
// conversion service: HTTP traffic, per-operation conversion outcomes,
// engine loads, and database query timing.
package metrics
