// Package orchestrator owns conversion contexts on behalf of callers:
// it serializes jobs against a context, reassembles results into named
// artifacts, and optionally saves them to an output directory.
package orchestrator
