package handlers

import (
	"net/http"
	"sort"

	"media-convert/internal/capability"
	"media-convert/internal/formats"
)

// FormatsResponse is the supported conversion matrix.
type FormatsResponse struct {
	RasterSources   []string `json:"rasterSources"`
	RasterTargets   []string `json:"rasterTargets"`
	DocumentSources []string `json:"documentSources"`
	VideoTargets    []string `json:"videoTargets,omitempty"`
	AudioTargets    []string `json:"audioTargets,omitempty"`
}

// GetFormats returns the supported source and target format lists.
// Engine targets are omitted when transcoding is unsupported.
func (h *Handlers) GetFormats(w http.ResponseWriter, _ *http.Request) {
	response := FormatsResponse{
		RasterSources:   sortedKeys(formats.RasterFormats),
		RasterTargets:   sortedKeys(formats.RasterEncodeTargets),
		DocumentSources: sortedKeys(formats.DocumentFormats),
	}

	if capability.Get().TranscodeSupported {
		response.VideoTargets = sortedKeys(formats.VideoFormats)
		response.AudioTargets = sortedKeys(formats.AudioFormats)
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, response)
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
