package metrics

// InitializeMetrics pre-populates all expected label combinations so
// that every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	operations := []string{"raster-convert", "document-pages", "transcode", "recompress"}
	statuses := []string{
		"success",
		"error_unsupported_operation",
		"error_decode",
		"error_encode",
		"error_unsupported_environment",
		"error_engine",
		"error_empty_output",
	}

	for _, op := range operations {
		for _, status := range statuses {
			ConversionsTotal.WithLabelValues(op, status)
		}
		ConversionDuration.WithLabelValues(op)
		ConversionInputBytes.WithLabelValues(op)
		ConversionOutputBytes.WithLabelValues(op)
	}

	for _, op := range []string{"initialize_schema", "insert_job", "recent_jobs", "prune"} {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}
}
