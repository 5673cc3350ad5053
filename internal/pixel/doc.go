// Package pixel provides the RGBA buffer that bridges decode and encode
// adapters, plus the pixel-level operations the recompression heuristics
// need: transparency detection, channel quantization, and downscaling.
package pixel
