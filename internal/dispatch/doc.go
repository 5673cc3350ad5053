// Package dispatch implements the job protocol: a conversion context
// accepts one job descriptor per submission, routes it to a pipeline
// adapter, emits zero or more progress frames, and always finishes with
// exactly one terminal frame carrying a payload or a typed failure.
package dispatch
