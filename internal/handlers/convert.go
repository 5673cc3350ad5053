package handlers

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"media-convert/internal/database"
	"media-convert/internal/dispatch"
	"media-convert/internal/formats"
	"media-convert/internal/logging"
	"media-convert/internal/metrics"
	"media-convert/internal/orchestrator"
)

// Convert handles POST /api/convert: a multipart upload with fields
//
//	file    - the source media (required)
//	target  - target format name, lowercase without dot (required)
//	quality - lossy-encode hint in 0..1 (optional)
//	page    - single 1-based document page (optional)
//
// Single-output jobs are streamed back as an attachment; multi-page
// document jobs are delivered as one zip archive.
func (h *Handlers) Convert(w http.ResponseWriter, r *http.Request) {
	maxBytes := int64(h.config.MaxUploadMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		writeJSONError(w, fmt.Sprintf("failed to parse upload: %v", err), http.StatusBadRequest)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	payload, err := io.ReadAll(file)
	if err != nil {
		writeJSONError(w, "failed to read upload", http.StatusBadRequest)
		return
	}
	if len(payload) == 0 {
		writeJSONError(w, "uploaded file is empty", http.StatusBadRequest)
		return
	}

	sourceFormat := normalizeFormat(filepath.Ext(header.Filename))
	targetFormat := normalizeFormat(r.FormValue("target"))
	if targetFormat == "" {
		writeJSONError(w, "missing target field", http.StatusBadRequest)
		return
	}

	req, err := resolveRequest(sourceFormat, targetFormat)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if raw := r.FormValue("quality"); raw != "" {
		quality, err := strconv.ParseFloat(raw, 64)
		if err != nil || quality <= 0 || quality > 1 {
			writeJSONError(w, "quality must be in (0, 1]", http.StatusBadRequest)
			return
		}
		req.Quality = quality
	}
	if raw := r.FormValue("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			writeJSONError(w, "page must be a positive integer", http.StatusBadRequest)
			return
		}
		req.Page = page
	}

	logging.Info("convert request: %s %s -> %s (%d bytes)",
		req.Op, sourceFormat, targetFormat, len(payload))

	orch := h.pool.Acquire()
	defer h.pool.Release(orch)

	start := time.Now()
	artifacts, err := orch.Convert(header.Filename, payload, req, func(p dispatch.Progress) {
		logging.Debug("job progress: %s %d%%", p.Phase, p.Percent)
	})
	duration := time.Since(start)

	h.recordJob(r, req, len(payload), artifacts, duration, err)

	if err != nil {
		status, message := classifyError(err)
		writeJSONError(w, message, status)
		return
	}

	if len(artifacts) == 1 {
		h.writeArtifact(w, artifacts[0], targetFormat)
		return
	}
	h.writeArchive(w, header.Filename, artifacts)
}

// resolveRequest maps a source/target format pair onto a pipeline
// operation. A raster source converting to its own format is a
// recompression.
func resolveRequest(sourceFormat, targetFormat string) (orchestrator.Request, error) {
	req := orchestrator.Request{SourceFormat: sourceFormat, TargetFormat: targetFormat}

	switch formats.GetFamily(sourceFormat) {
	case formats.FamilyRaster:
		if !formats.RasterEncodeTargets[targetFormat] {
			return req, fmt.Errorf("unsupported raster target format %q", targetFormat)
		}
		if sameRasterFormat(sourceFormat, targetFormat) {
			req.Op = dispatch.OpRecompress
		} else {
			req.Op = dispatch.OpRasterConvert
		}
	case formats.FamilyDocument:
		if !formats.RasterEncodeTargets[targetFormat] {
			return req, fmt.Errorf("unsupported page target format %q", targetFormat)
		}
		req.Op = dispatch.OpDocumentPages
	case formats.FamilyVideo, formats.FamilyAudio:
		if !formats.VideoFormats[targetFormat] && !formats.AudioFormats[targetFormat] {
			return req, fmt.Errorf("unsupported transcode target format %q", targetFormat)
		}
		req.Op = dispatch.OpTranscode
	default:
		return req, fmt.Errorf("unsupported source format %q", sourceFormat)
	}
	return req, nil
}

func sameRasterFormat(a, b string) bool {
	alias := func(f string) string {
		switch f {
		case "jpeg":
			return "jpg"
		case "tif":
			return "tiff"
		}
		return f
	}
	return alias(a) == alias(b)
}

func normalizeFormat(name string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "."))
}

// classifyError maps a dispatch error kind onto an HTTP status.
func classifyError(err error) (int, string) {
	tagged, ok := err.(*dispatch.Error)
	if !ok {
		return http.StatusInternalServerError, err.Error()
	}
	switch tagged.Kind {
	case dispatch.KindUnsupportedOperation:
		return http.StatusBadRequest, tagged.Message
	case dispatch.KindDecodeFailed, dispatch.KindEncodeFailed:
		return http.StatusUnprocessableEntity, tagged.Message
	case dispatch.KindUnsupportedEnvironment:
		return http.StatusServiceUnavailable, tagged.Message
	default:
		return http.StatusInternalServerError, tagged.Message
	}
}

// statusLabel converts an outcome to the metric status label.
func statusLabel(err error) string {
	if err == nil {
		return "success"
	}
	tagged, ok := err.(*dispatch.Error)
	if !ok {
		return "error_engine"
	}
	switch tagged.Kind {
	case dispatch.KindUnsupportedOperation:
		return "error_unsupported_operation"
	case dispatch.KindDecodeFailed:
		return "error_decode"
	case dispatch.KindEncodeFailed:
		return "error_encode"
	case dispatch.KindUnsupportedEnvironment:
		return "error_unsupported_environment"
	case dispatch.KindEmptyOutput:
		return "error_empty_output"
	default:
		return "error_engine"
	}
}

func (h *Handlers) recordJob(r *http.Request, req orchestrator.Request, inputBytes int, artifacts []orchestrator.Artifact, duration time.Duration, jobErr error) {
	op := string(req.Op)
	outputBytes := 0
	for _, a := range artifacts {
		outputBytes += len(a.Data)
	}

	metrics.ConversionsTotal.WithLabelValues(op, statusLabel(jobErr)).Inc()
	metrics.ConversionDuration.WithLabelValues(op).Observe(duration.Seconds())
	metrics.ConversionInputBytes.WithLabelValues(op).Observe(float64(inputBytes))
	if jobErr == nil {
		metrics.ConversionOutputBytes.WithLabelValues(op).Observe(float64(outputBytes))
	}

	if h.db == nil {
		return
	}
	rec := database.JobRecord{
		Operation:    op,
		SourceFormat: req.SourceFormat,
		TargetFormat: req.TargetFormat,
		InputBytes:   int64(inputBytes),
		OutputBytes:  int64(outputBytes),
		DurationMs:   duration.Milliseconds(),
		Status:       "success",
	}
	if jobErr != nil {
		rec.Status = "error"
		rec.Message = jobErr.Error()
	}
	if err := h.db.RecordJob(r.Context(), rec); err != nil {
		logging.Warn("failed to record job history: %v", err)
	}
}

func (h *Handlers) writeArtifact(w http.ResponseWriter, artifact orchestrator.Artifact, targetFormat string) {
	w.Header().Set("Content-Type", formats.GetMimeType(targetFormat))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(artifact.Data)))
	if _, err := w.Write(artifact.Data); err != nil {
		logging.Error("failed to write conversion response: %v", err)
	}
}

func (h *Handlers) writeArchive(w http.ResponseWriter, filename string, artifacts []orchestrator.Artifact) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, artifact := range artifacts {
		entry, err := zw.Create(artifact.Name)
		if err == nil {
			_, err = entry.Write(artifact.Data)
		}
		if err != nil {
			writeJSONError(w, "failed to build page archive", http.StatusInternalServerError)
			return
		}
	}
	if err := zw.Close(); err != nil {
		writeJSONError(w, "failed to build page archive", http.StatusInternalServerError)
		return
	}

	stem := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	if stem == "" {
		stem = "output"
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", stem+"_pages.zip"))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := w.Write(buf.Bytes()); err != nil {
		logging.Error("failed to write archive response: %v", err)
	}
}
