// Package capability probes the host environment once at startup and
// reports whether the transcoding engine can run and which build mode is
// active. Callers consult the record before submitting transcode jobs.
package capability
