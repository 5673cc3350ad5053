package handlers

import (
	"net/http"

	"media-convert/internal/capability"
	"media-convert/internal/formats"
)

// CapabilitiesResponse is the capability record plus the target formats
// this environment can actually produce.
type CapabilitiesResponse struct {
	capability.Record
	RasterTargets []string `json:"rasterTargets"`
	VideoTargets  []string `json:"videoTargets"`
	AudioTargets  []string `json:"audioTargets"`
}

// GetCapabilities reports the environment's capability record. Clients
// consult this before offering transcode targets in the UI.
func (h *Handlers) GetCapabilities(w http.ResponseWriter, _ *http.Request) {
	caps := capability.Get()

	response := CapabilitiesResponse{
		Record:        caps,
		RasterTargets: sortedKeys(formats.RasterEncodeTargets),
		VideoTargets:  []string{},
		AudioTargets:  []string{},
	}
	if caps.TranscodeSupported {
		response.VideoTargets = sortedKeys(formats.VideoFormats)
		response.AudioTargets = sortedKeys(formats.AudioFormats)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	writeJSON(w, response)
}
