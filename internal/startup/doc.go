// Package startup handles configuration loading from environment
// variables, build information, and startup/shutdown logging.
package startup
