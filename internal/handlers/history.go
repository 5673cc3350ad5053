package handlers

import (
	"net/http"
	"strconv"

	"media-convert/internal/database"
)

// GetHistory returns recent conversion jobs, newest first.
func (h *Handlers) GetHistory(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		writeJSONError(w, "job history is disabled", http.StatusNotFound)
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	records, err := h.db.RecentJobs(r.Context(), limit)
	if err != nil {
		writeJSONError(w, "failed to load job history", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []database.JobRecord{} // never encode null
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, records)
}
