// Package document renders paged documents (PDF) into one raster image
// per page at a fixed 2x scale, flattening onto white when the target
// encoding cannot represent transparency.
package document
