// Package engine adapts ffmpeg for audio/video transcoding. Argument
// construction is a pure lookup keyed by target format; same-family
// repackaging attempts stream copy before re-encoding, and GIF output
// runs the mandatory two-pass palette pipeline. Each job creates its own
// temporary files and deletes them afterward.
package engine
