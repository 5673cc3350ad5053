// Package handlers implements the HTTP API surface: health and version
// probes, capability and format discovery, the multipart conversion
// endpoint, and job history.
package handlers
