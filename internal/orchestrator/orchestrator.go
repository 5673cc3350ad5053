package orchestrator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"media-convert/internal/dispatch"
	"media-convert/internal/logging"
)

// Artifact is a named conversion output ready for delivery.
type Artifact struct {
	Name string
	Data []byte
}

// Request describes what a caller wants done with one file.
type Request struct {
	Op           dispatch.Operation
	SourceFormat string
	TargetFormat string
	Quality      float64
	Page         int
}

// Orchestrator owns one conversion context, created lazily on first use
// and reused for the orchestrator's lifetime. Jobs are serialized: a
// second Convert call waits for the first job's terminal message.
type Orchestrator struct {
	adapters  dispatch.Adapters
	outputDir string

	mu  sync.Mutex
	ctx *dispatch.Context
}

// New creates an orchestrator. outputDir may be empty to skip the save
// side effect.
func New(adapters dispatch.Adapters, outputDir string) *Orchestrator {
	return &Orchestrator{adapters: adapters, outputDir: outputDir}
}

// Convert submits one job and reassembles the output into named
// artifacts: `<stem>.<target>` for single-output jobs,
// `<stem>_page<N>.<target>` (N 1-based) for multi-page jobs. Progress
// frames are forwarded to onProgress when non-nil. On failure the
// terminal message's text is surfaced directly and the orchestrator is
// immediately reusable.
func (o *Orchestrator) Convert(filename string, payload []byte, req Request, onProgress func(dispatch.Progress)) ([]Artifact, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.ctx == nil {
		o.ctx = dispatch.NewContext(o.adapters)
	}

	messages, err := o.ctx.Submit(dispatch.Job{
		Op:           req.Op,
		SourceFormat: req.SourceFormat,
		TargetFormat: req.TargetFormat,
		Quality:      req.Quality,
		Page:         req.Page,
		Payload:      payload,
	})
	if err != nil {
		return nil, err
	}

	var result *dispatch.Result
	for msg := range messages {
		if msg.Progress != nil && onProgress != nil {
			onProgress(*msg.Progress)
		}
		if msg.Result != nil {
			result = msg.Result
		}
	}

	// A channel closed without a terminal message means the context was
	// torn down mid-job
	if result == nil {
		return nil, fmt.Errorf("conversion context torn down before job completed")
	}
	if !result.OK {
		return nil, dispatch.NewError(result.ErrKind, "%s", result.Message)
	}

	artifacts := assemble(filename, req.TargetFormat, result)
	if err := o.save(artifacts); err != nil {
		return nil, err
	}
	return artifacts, nil
}

// Close destroys the context, abandoning any in-flight job. The next
// Convert call creates a fresh context.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.ctx != nil {
		o.ctx.Close()
		o.ctx = nil
	}
}

func assemble(filename, targetFormat string, result *dispatch.Result) []Artifact {
	stem := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	if stem == "" {
		stem = "output"
	}

	if result.Payloads != nil {
		artifacts := make([]Artifact, len(result.Payloads))
		for i, data := range result.Payloads {
			artifacts[i] = Artifact{
				Name: fmt.Sprintf("%s_page%d.%s", stem, i+1, targetFormat),
				Data: data,
			}
		}
		return artifacts
	}

	return []Artifact{{Name: stem + "." + targetFormat, Data: result.Payload}}
}

func (o *Orchestrator) save(artifacts []Artifact) error {
	if o.outputDir == "" {
		return nil
	}
	for _, artifact := range artifacts {
		path := filepath.Join(o.outputDir, artifact.Name)
		if err := os.WriteFile(path, artifact.Data, 0o644); err != nil {
			return fmt.Errorf("saving artifact %s: %w", artifact.Name, err)
		}
		logging.Debug("saved artifact %s (%d bytes)", path, len(artifact.Data))
	}
	return nil
}
