package capability

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"

	"media-convert/internal/logging"
)

// Build modes reported in the capability record.
const (
	BuildModeStatic = "static"
	BuildModeServer = "server"
)

// Record reports whether the transcoding engine can run in this
// environment and which build mode is active. Computed once at startup,
// read-only afterward; re-evaluated only on process restart.
type Record struct {
	TranscodeSupported bool   `json:"transcodeSupported"`
	BuildMode          string `json:"buildMode"`
	Reason             string `json:"reason,omitempty"`
}

var (
	record Record
	once   sync.Once
)

// Get returns the process-wide capability record, probing the
// environment on first call.
func Get() Record {
	once.Do(func() {
		record = probe(exec.LookPath, os.Getenv)
		if record.TranscodeSupported {
			logging.Info("Capability probe: transcoding supported (build mode: %s)", record.BuildMode)
		} else {
			logging.Warn("Capability probe: transcoding unavailable: %s", record.Reason)
		}
	})
	return record
}

// probe inspects the host environment. Pure function of its inputs so
// tests can substitute both.
func probe(lookPath func(string) (string, error), getenv func(string) string) Record {
	rec := Record{BuildMode: buildMode(getenv)}

	if rec.BuildMode == BuildModeStatic {
		rec.Reason = "static build: transcoding engine not bundled"
		return rec
	}

	ffmpeg := getenv("FFMPEG_PATH")
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}

	if _, err := lookPath(ffmpeg); err != nil {
		rec.Reason = fmt.Sprintf("%s not found on PATH", ffmpeg)
		return rec
	}
	if _, err := lookPath("ffprobe"); err != nil {
		rec.Reason = "ffprobe not found on PATH"
		return rec
	}

	rec.TranscodeSupported = true
	return rec
}

func buildMode(getenv func(string) string) string {
	switch strings.ToLower(getenv("BUILD_MODE")) {
	case BuildModeStatic:
		return BuildModeStatic
	default:
		return BuildModeServer
	}
}
