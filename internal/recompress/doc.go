// Package recompress shrinks raster images within their own format
// using an ordered sequence of strategies: lossy JPEG re-wrap for opaque
// inputs, a WebP intermediate behind a size-acceptance threshold, and a
// transparency-preserving quantization fallback.
package recompress
