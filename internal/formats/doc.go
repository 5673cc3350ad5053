// Package formats is the registry of supported source and target formats
// and the pipeline family each belongs to. Handlers use it to validate a
// requested conversion pair before a job is built.
package formats
