package handlers

import (
	"net/http"
	"runtime"

	"media-convert/internal/capability"
	"media-convert/internal/startup"
)

const (
	statusHealthy  = "healthy"
	statusDegraded = "degraded"
)

// HealthResponse contains the health check response
type HealthResponse struct {
	Status             string `json:"status"`
	Version            string `json:"version"`
	TranscodeSupported bool   `json:"transcodeSupported"`
	HistoryEnabled     bool   `json:"historyEnabled"`

	// System info
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// HealthCheck returns the health status of the service. A missing
// transcoding engine degrades but does not fail health: raster and
// document pipelines still work.
func (h *Handlers) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	caps := capability.Get()

	response := HealthResponse{
		Status:             statusHealthy,
		Version:            startup.Version,
		TranscodeSupported: caps.TranscodeSupported,
		HistoryEnabled:     h.db != nil,
		GoVersion:          runtime.Version(),
		NumCPU:             runtime.NumCPU(),
		NumGoroutine:       runtime.NumGoroutine(),
	}

	if !caps.TranscodeSupported {
		response.Status = statusDegraded
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	writeJSON(w, response)
}

// LivenessCheck is a simple liveness probe (always returns 200 if the
// server is running)
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if r.Method != http.MethodHead {
		writeJSON(w, map[string]string{"status": "alive"})
	}
}

// ReadinessCheck returns 200 when the service can accept conversions
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	writeJSON(w, map[string]string{"status": "ready"})
}
