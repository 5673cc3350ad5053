package engine

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"sync/atomic"

	"media-convert/internal/capability"
	"media-convert/internal/dispatch"
	"media-convert/internal/logging"
	"media-convert/internal/metrics"
)

// Engine drives ffmpeg for audio/video container and codec conversion.
// One Engine belongs to one conversion context; the binary is resolved
// at most once per Engine, guarded so concurrent callers share a single
// initialization.
type Engine struct {
	workDir      string
	maxDimension int
	caps         capability.Record

	loadOnce     sync.Once
	loadErr      error
	ffmpegPath   string
	ffprobePath  string
	loadAttempts atomic.Int64

	progressCfg SyntheticProgress
}

// New creates an engine writing temporary files under workDir.
// maxDimension bounds output video resolution.
func New(workDir string, maxDimension int, caps capability.Record) *Engine {
	if maxDimension <= 0 {
		maxDimension = 1280
	}
	return &Engine{
		workDir:      workDir,
		maxDimension: maxDimension,
		caps:         caps,
		progressCfg:  DefaultSyntheticProgress(),
	}
}

// LoadAttempts reports how many times engine initialization ran. The
// capability gate guarantees zero when transcoding is unsupported.
func (e *Engine) LoadAttempts() int64 {
	return e.loadAttempts.Load()
}

// Transcode converts the payload from sourceFormat to targetFormat and
// returns the result bytes. Progress percentages (0..100) are reported
// through the callback; monotonicity is the dispatcher's concern.
// Implements dispatch.Transcoder.
func (e *Engine) Transcode(sourceFormat, targetFormat string, payload []byte, progress func(int)) ([]byte, error) {
	// Capability gate comes first: fail fast without touching the engine
	if !e.caps.TranscodeSupported {
		return nil, dispatch.NewError(dispatch.KindUnsupportedEnvironment, "%s", e.caps.Reason)
	}

	spec, ok := targetSpecs[targetFormat]
	if !ok {
		return nil, dispatch.NewError(dispatch.KindUnsupportedOperation, "no transcode target %q", targetFormat)
	}

	if err := e.ensureLoaded(); err != nil {
		return nil, dispatch.NewError(dispatch.KindUnsupportedEnvironment, "engine load failed: %v", err)
	}

	job, err := e.newJobFiles(sourceFormat, targetFormat, spec)
	if err != nil {
		return nil, dispatch.NewError(dispatch.KindEngineExecutionFailed, "%v", err)
	}
	defer job.cleanup()

	if err := os.WriteFile(job.input, payload, 0o600); err != nil {
		return nil, dispatch.NewError(dispatch.KindEngineExecutionFailed, "writing engine input: %v", err)
	}

	duration := e.probeDuration(job.input)

	if err := e.run(job, spec, duration, progress); err != nil {
		return nil, err
	}

	out, err := os.ReadFile(job.output)
	if err != nil {
		return nil, dispatch.NewError(dispatch.KindEngineExecutionFailed, "engine produced no output: %v", err)
	}
	if len(out) == 0 {
		return nil, dispatch.NewError(dispatch.KindEmptyOutput, "engine produced a zero-byte output")
	}
	return out, nil
}

// run picks the execution strategy: stream copy for same-family
// repackaging (with re-encode fallback), the two-pass palette pipeline
// for GIF, or a plain re-encode from the argument table.
func (e *Engine) run(job *jobFiles, spec targetSpec, duration float64, progress func(int)) error {
	if spec.twoPass {
		if err := e.execute(buildPaletteArgs(job.input, job.palette), duration, progress); err != nil {
			return err
		}
		return e.execute(buildPaletteUseArgs(job.input, job.palette, job.output), duration, progress)
	}

	if mp4Family[job.sourceFormat] && mp4Family[job.targetFormat] {
		if err := e.execute(buildCopyArgs(job.input, job.output), duration, progress); err == nil {
			return nil
		}
		logging.Debug("stream copy %s->%s failed, falling back to re-encode", job.sourceFormat, job.targetFormat)
		// A failed copy can leave a partial output behind
		if err := os.Remove(job.output); err != nil && !os.IsNotExist(err) {
			logging.Warn("removing partial copy output: %v", err)
		}
	}

	return e.execute(buildArgs(spec, job.input, job.output, e.maxDimension), duration, progress)
}

// ensureLoaded resolves the ffmpeg/ffprobe binaries exactly once.
func (e *Engine) ensureLoaded() error {
	e.loadOnce.Do(func() {
		e.loadAttempts.Add(1)
		metrics.EngineLoadsTotal.Inc()

		ffmpeg := os.Getenv("FFMPEG_PATH")
		if ffmpeg == "" {
			ffmpeg = "ffmpeg"
		}

		path, err := exec.LookPath(ffmpeg)
		if err != nil {
			e.loadErr = fmt.Errorf("resolving ffmpeg: %w", err)
			return
		}
		e.ffmpegPath = path

		probePath, err := exec.LookPath("ffprobe")
		if err != nil {
			e.loadErr = fmt.Errorf("resolving ffprobe: %w", err)
			return
		}
		e.ffprobePath = probePath

		if err := os.MkdirAll(e.workDir, 0o755); err != nil {
			e.loadErr = fmt.Errorf("creating work directory: %w", err)
			return
		}

		logging.Info("Transcoding engine loaded: %s", path)
	})
	return e.loadErr
}

// jobFiles names one job's temporary files. Every job creates its own
// inputs and deletes its outputs; nothing from a prior job can be
// assumed to still exist.
type jobFiles struct {
	sourceFormat string
	targetFormat string
	input        string
	output       string
	palette      string
}

func (e *Engine) newJobFiles(sourceFormat, targetFormat string, spec targetSpec) (*jobFiles, error) {
	token := make([]byte, 8)
	if _, err := rand.Read(token); err != nil {
		return nil, fmt.Errorf("generating job token: %w", err)
	}
	stem := filepath.Join(e.workDir, "job-"+hex.EncodeToString(token))

	// Some targets are packaged in a different container than their
	// nominal name; the output file carries the real extension
	outExt := targetFormat
	if spec.container != "" {
		outExt = spec.container
	}

	j := &jobFiles{
		sourceFormat: sourceFormat,
		targetFormat: targetFormat,
		input:        stem + ".in." + sourceFormat,
		output:       stem + ".out." + outExt,
	}
	if spec.twoPass {
		j.palette = stem + ".palette.png"
	}
	return j, nil
}

// cleanup deletes the job's temporary files. Failures are logged and
// swallowed; they never override the job's own outcome.
func (j *jobFiles) cleanup() {
	for _, path := range []string{j.input, j.output, j.palette} {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logging.Warn("failed to remove engine temp file %s: %v", path, err)
		}
	}
}
