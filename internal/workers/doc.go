// Package workers determines how many conversion contexts to run based on
// available CPUs, with environment variable overrides.
package workers
