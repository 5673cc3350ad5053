// Package logging provides leveled logging with environment-based
// configuration via the LOG_LEVEL and DEBUG variables.
package logging
