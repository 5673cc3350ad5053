// Package rastercodec converts between raster image encodings via the
// common pixel buffer. Most formats decode through the registered Go
// decoders; the HEIF family routes through a dedicated libvips adapter
// loaded once and cached. Encoders never return partial output: a
// conversion yields either a complete payload or a tagged failure.
package rastercodec
